package harvest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Forwarder posts captured submissions to a third-party webhook. Delivery is
// best effort: a webhook failure never blocks the local capture.
type Forwarder struct {
	URL    string
	Client *http.Client
}

func NewForwarder(url string) *Forwarder {
	return &Forwarder{
		URL:    url,
		Client: &http.Client{Timeout: 10 * time.Second},
	}
}

func (f *Forwarder) Forward(ctx context.Context, sub Submission) error {
	body, err := json.Marshal(sub)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return fmt.Errorf("forwarding to webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned %s", resp.Status)
	}
	return nil
}
