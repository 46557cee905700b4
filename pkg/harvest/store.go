// Package harvest implements the credential-capture demo sites used during
// phishing exercises: a static lure page, a form endpoint that appends
// submissions to a JSONL log, and an optional webhook forward.
package harvest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Submission is one captured form post.
type Submission struct {
	ID         string            `json:"id"`
	Timestamp  time.Time         `json:"timestamp"`
	Page       string            `json:"page"`
	RemoteAddr string            `json:"remote_addr"`
	UserAgent  string            `json:"user_agent,omitempty"`
	Fields     map[string]string `json:"fields"`
}

// NewSubmission builds a submission from posted form values.
func NewSubmission(page, remoteAddr, userAgent string, form url.Values) Submission {
	fields := make(map[string]string, len(form))
	for k, v := range form {
		if len(v) > 0 {
			fields[k] = v[0]
		}
	}
	return Submission{
		ID:         uuid.NewString(),
		Timestamp:  time.Now().UTC(),
		Page:       page,
		RemoteAddr: remoteAddr,
		UserAgent:  userAgent,
		Fields:     fields,
	}
}

// Store appends submissions to a JSONL file. Appends are serialized with a
// mutex; each record is one line.
type Store struct {
	mu   sync.Mutex
	file *os.File
	path string
}

// OpenStore opens (or creates) the submission log at path.
func OpenStore(path string) (*Store, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening submission log %s: %w", path, err)
	}
	return &Store{file: f, path: path}, nil
}

// Append writes one submission as a JSON line.
func (s *Store) Append(sub Submission) error {
	data, err := json.Marshal(sub)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.file.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("appending to submission log: %w", err)
	}
	return nil
}

// Close closes the backing file.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}

// Path returns the log file location.
func (s *Store) Path() string {
	return s.path
}

// ReadSubmissions loads every record from a JSONL submission log. Malformed
// lines are skipped; the log is best-effort capture, not a database.
func ReadSubmissions(path string) ([]Submission, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var subs []Submission
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var sub Submission
		if err := json.Unmarshal(scanner.Bytes(), &sub); err != nil {
			continue
		}
		subs = append(subs, sub)
	}
	return subs, scanner.Err()
}
