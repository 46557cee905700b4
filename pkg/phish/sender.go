package phish

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strconv"

	"github.com/google/uuid"

	"github.com/praetorian-inc/violet/internal/logs"
	"github.com/praetorian-inc/violet/internal/message"
)

// Message is one rendered email ready for delivery.
type Message struct {
	From     string
	FromName string
	ReplyTo  string
	To       string
	Subject  string
	HTML     string
	Text     string
}

// Mailer delivers a single message.
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Campaign personalizes a template for each recipient and delivers through
// the configured mailer. Per-recipient failures are recorded and skipped so
// one bad address does not abort the batch.
type Campaign struct {
	Mailer   Mailer
	From     string
	FromName string
	ReplyTo  string
	Subject  string
	Template string

	// TextFallback is shown by clients that refuse HTML.
	TextFallback string
}

// Delivery records the outcome for one recipient.
type Delivery struct {
	Email string `json:"email"`
	Sent  bool   `json:"sent"`
	Error string `json:"error,omitempty"`
}

// Report summarizes a campaign send.
type Report struct {
	CampaignID string     `json:"campaign_id"`
	Sent       int        `json:"sent"`
	Failed     int        `json:"failed"`
	Deliveries []Delivery `json:"deliveries"`
}

// Send delivers the campaign to every recipient, in order.
func (c *Campaign) Send(ctx context.Context, recipients []Recipient) (*Report, error) {
	if len(recipients) == 0 {
		return nil, fmt.Errorf("no recipients to send to")
	}
	if c.Template == "" {
		return nil, fmt.Errorf("no template loaded")
	}

	report := &Report{CampaignID: uuid.NewString()}

	for _, r := range recipients {
		msg := Message{
			From:     c.From,
			FromName: c.FromName,
			ReplyTo:  c.ReplyTo,
			To:       r.Email,
			Subject:  c.Subject,
			HTML:     Personalize(c.Template, r),
			Text:     c.TextFallback,
		}
		if msg.Text == "" {
			msg.Text = "Please enable HTML to view this email."
		}

		err := c.Mailer.Send(ctx, msg)
		d := Delivery{Email: r.Email, Sent: err == nil}
		if err != nil {
			d.Error = err.Error()
			report.Failed++
			message.Error("Failed to send to %s: %v", r.Email, err)
			logs.FileLogger().Warn("delivery failed", "campaign", report.CampaignID, "to", r.Email, "error", err.Error())
		} else {
			report.Sent++
			message.Success("Sent to %s", r.Email)
			logs.FileLogger().Info("delivery sent", "campaign", report.CampaignID, "to", r.Email)
		}
		report.Deliveries = append(report.Deliveries, d)
	}

	return report, nil
}

// SMTPMailer delivers over SMTP with STARTTLS and plain auth, matching the
// usual submission-port setup (587).
type SMTPMailer struct {
	Host     string
	Port     int
	Username string
	Password string
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	addr := net.JoinHostPort(m.Host, strconv.Itoa(m.Port))

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connecting to SMTP server %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, m.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("SMTP handshake with %s: %w", addr, err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: m.Host}); err != nil {
			return fmt.Errorf("starting TLS with %s: %w", addr, err)
		}
	}

	if m.Username != "" {
		auth := smtp.PlainAuth("", m.Username, m.Password, m.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("SMTP authentication: %w", err)
		}
	}

	if err := client.Mail(msg.From); err != nil {
		return fmt.Errorf("MAIL FROM: %w", err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return fmt.Errorf("RCPT TO %s: %w", msg.To, err)
	}
	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("DATA: %w", err)
	}
	if _, err := w.Write(BuildMIME(msg)); err != nil {
		w.Close()
		return fmt.Errorf("writing message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finishing message body: %w", err)
	}
	return client.Quit()
}

// BuildMIME renders the multipart/alternative wire form of a message: plain
// text fallback first, HTML last so capable clients prefer it.
func BuildMIME(msg Message) []byte {
	var b bytes.Buffer
	boundary := "violet-" + uuid.NewString()

	from := msg.From
	if msg.FromName != "" {
		from = fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("utf-8", msg.FromName), msg.From)
	}

	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	if msg.ReplyTo != "" {
		fmt.Fprintf(&b, "Reply-To: %s\r\n", msg.ReplyTo)
	}
	fmt.Fprintf(&b, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	b.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%q\r\n", boundary)
	b.WriteString("\r\n")

	writePart(&b, boundary, "text/plain; charset=utf-8", msg.Text)
	writePart(&b, boundary, "text/html; charset=utf-8", msg.HTML)
	fmt.Fprintf(&b, "--%s--\r\n", boundary)

	return b.Bytes()
}

func writePart(b *bytes.Buffer, boundary, contentType, body string) {
	fmt.Fprintf(b, "--%s\r\n", boundary)
	fmt.Fprintf(b, "Content-Type: %s\r\n", contentType)
	b.WriteString("Content-Transfer-Encoding: base64\r\n\r\n")

	encoded := base64.StdEncoding.EncodeToString([]byte(body))
	for len(encoded) > 76 {
		b.WriteString(encoded[:76])
		b.WriteString("\r\n")
		encoded = encoded[76:]
	}
	b.WriteString(encoded)
	b.WriteString("\r\n")
}
