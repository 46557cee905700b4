// Package playbook bundles ordered sequences of atomic technique invocations
// under a name, with blue-team guidance for each chain.
package playbook

import (
	"sort"
	"strings"
)

// Step is a single technique invocation within a playbook.
type Step struct {
	Technique   string `yaml:"technique" json:"technique"`
	TestNumbers []int  `yaml:"test_numbers,omitempty" json:"test_numbers,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
}

// Playbook is a named attack chain: an ordered list of steps plus notes for
// the defending side.
type Playbook struct {
	Name             string `yaml:"name" json:"name"`
	Description      string `yaml:"description" json:"description"`
	Steps            []Step `yaml:"steps" json:"steps"`
	BlueTeamGuidance string `yaml:"blue_team_guidance,omitempty" json:"blue_team_guidance,omitempty"`
}

// Library holds the built-in playbooks plus any loaded from disk. Lookup is
// case-insensitive on name.
type Library struct {
	playbooks map[string]*Playbook
}

// NewLibrary returns a library seeded with the built-in playbooks.
func NewLibrary() *Library {
	l := &Library{playbooks: map[string]*Playbook{}}
	for _, pb := range builtins {
		l.Add(pb)
	}
	return l
}

// Add registers a playbook, replacing any existing one of the same name.
func (l *Library) Add(pb *Playbook) {
	l.playbooks[strings.ToLower(pb.Name)] = pb
}

// Get returns the playbook by name, or nil when unknown.
func (l *Library) Get(name string) *Playbook {
	return l.playbooks[strings.ToLower(name)]
}

// All returns every playbook sorted by name.
func (l *Library) All() []*Playbook {
	out := make([]*Playbook, 0, len(l.playbooks))
	for _, pb := range l.playbooks {
		out = append(out, pb)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
