// Package phish implements the email delivery side of a phishing exercise:
// a recipients list, a personalized HTML lure, and a mailer (SMTP or SES).
package phish

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Recipient is one row of the recipients CSV.
type Recipient struct {
	Email string
	Name  string
}

// ReadRecipients parses a recipients CSV with required email and name
// columns. Exports from Windows tooling are frequently UTF-16, so the file
// is decoded through a BOM-aware reader before CSV parsing.
func ReadRecipients(path string) ([]Recipient, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening recipients file: %w", err)
	}
	defer f.Close()

	decoded, err := io.ReadAll(transform.NewReader(f, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	if err != nil {
		return nil, fmt.Errorf("decoding recipients file %s: %w", path, err)
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("recipients file %s is empty", path)
	}
	if err != nil {
		return nil, fmt.Errorf("reading recipients header: %w", err)
	}

	emailIdx, nameIdx := -1, -1
	for i, col := range header {
		switch strings.ToLower(strings.TrimSpace(col)) {
		case "email":
			emailIdx = i
		case "name":
			nameIdx = i
		}
	}
	if emailIdx < 0 || nameIdx < 0 {
		return nil, fmt.Errorf("recipients file %s must contain 'email' and 'name' columns, found %v", path, header)
	}

	var recipients []Recipient
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading recipients row: %w", err)
		}
		if emailIdx >= len(record) || nameIdx >= len(record) {
			continue
		}
		email := strings.TrimSpace(record[emailIdx])
		if email == "" {
			continue
		}
		recipients = append(recipients, Recipient{
			Email: email,
			Name:  strings.TrimSpace(record[nameIdx]),
		})
	}
	return recipients, nil
}

// ReadTemplate loads the HTML lure template with the same BOM-aware decoding
// as the recipients list.
func ReadTemplate(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("opening template file: %w", err)
	}
	defer f.Close()

	decoded, err := io.ReadAll(transform.NewReader(f, unicode.BOMOverride(unicode.UTF8.NewDecoder())))
	if err != nil {
		return "", fmt.Errorf("decoding template file %s: %w", path, err)
	}
	return string(decoded), nil
}
