// Package atomic shells out to the Invoke-AtomicRedTeam PowerShell framework.
//
// The framework itself is treated as opaque: this package builds the
// Invoke-AtomicTest argument string, runs the configured PowerShell binary,
// and classifies the ways that can fail.
package atomic

import "regexp"

// Technique IDs follow the MITRE ATT&CK form T1234 or T1234.001.
var techniqueIDPattern = regexp.MustCompile(`^T\d{4}(\.\d{3})?$`)

// ValidTechniqueID reports whether id is a well-formed technique identifier.
func ValidTechniqueID(id string) bool {
	return techniqueIDPattern.MatchString(id)
}

// Technique is one entry from the framework's technique listing.
type Technique struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}
