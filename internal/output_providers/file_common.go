package outputproviders

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"time"
)

// GetFullPath constructs the full file path from filename and output path
func GetFullPath(filename string, outputPath string) string {
	return outputPath + string(os.PathSeparator) + filename
}

// DefaultFileName builds prefix-YYYYMMDD-HHMMSS-<id>.ext for results that
// did not choose their own name.
func DefaultFileName(prefix, ext string) string {
	return fmt.Sprintf("%s-%s-%s.%s", prefix, time.Now().Format("20060102-150405"), GenerateShortUUID(), ext)
}

// GenerateShortUUID generates a random 10-character UUID
func GenerateShortUUID() string {
	b := make([]byte, 5) // 5 bytes = 10 hex characters
	if _, err := rand.Read(b); err != nil {
		return "" // In case of error, return empty string
	}
	return hex.EncodeToString(b)
}
