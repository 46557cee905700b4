package atomic

import (
	"regexp"
	"strings"
)

// Listing lines look like "T1003 - OS Credential Dumping" or
// "T1552.001 - Credentials In Files".
var techniqueLinePattern = regexp.MustCompile(`^\s*(T\d{4}(?:\.\d{3})?)\s*-\s*(.+)$`)

// ParseTechniqueList extracts techniques from -ListTechniques output. Lines
// that do not match the expected shape are ignored.
func ParseTechniqueList(output string) []Technique {
	var techniques []Technique
	for _, line := range strings.Split(output, "\n") {
		m := techniqueLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		techniques = append(techniques, Technique{
			ID:   m[1],
			Name: strings.TrimSpace(m[2]),
		})
	}
	return techniques
}

// FilterTechniques returns the entries whose ID or name contains filter,
// case-insensitively. An empty filter returns the input unchanged.
func FilterTechniques(techniques []Technique, filter string) []Technique {
	if filter == "" {
		return techniques
	}
	filter = strings.ToLower(filter)

	var matched []Technique
	for _, t := range techniques {
		if strings.Contains(strings.ToLower(t.ID), filter) ||
			strings.Contains(strings.ToLower(t.Name), filter) {
			matched = append(matched, t)
		}
	}
	return matched
}
