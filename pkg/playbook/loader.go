package playbook

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/praetorian-inc/violet/pkg/atomic"
)

// LoadFile parses one playbook from a YAML file and validates it.
func LoadFile(path string) (*Playbook, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading playbook %s: %w", path, err)
	}

	var pb Playbook
	if err := yaml.Unmarshal(data, &pb); err != nil {
		return nil, fmt.Errorf("parsing playbook %s: %w", path, err)
	}
	if err := Validate(&pb); err != nil {
		return nil, fmt.Errorf("playbook %s: %w", path, err)
	}
	return &pb, nil
}

// LoadDir adds every .yaml/.yml playbook under dir to the library. A missing
// directory is not an error; only built-ins apply.
func (l *Library) LoadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading playbook dir %s: %w", dir, err)
	}

	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := filepath.Ext(e.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}
		pb, err := LoadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return err
		}
		l.Add(pb)
	}
	return nil
}

// Validate checks a playbook is runnable: named, non-empty, and every step
// carries a well-formed technique ID.
func Validate(pb *Playbook) error {
	if pb.Name == "" {
		return fmt.Errorf("playbook has no name")
	}
	if len(pb.Steps) == 0 {
		return fmt.Errorf("playbook %q has no steps", pb.Name)
	}
	for i, step := range pb.Steps {
		if !atomic.ValidTechniqueID(step.Technique) {
			return fmt.Errorf("step %d: invalid technique ID %q", i+1, step.Technique)
		}
	}
	return nil
}
