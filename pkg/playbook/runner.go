package playbook

import (
	"context"

	"github.com/praetorian-inc/violet/pkg/atomic"
)

// Executor runs a single technique invocation. Satisfied by *atomic.Runner.
type Executor interface {
	Run(ctx context.Context, inv atomic.Invocation) (*atomic.Result, error)
}

// RunOptions apply to every step of a playbook run.
type RunOptions struct {
	CheckPrereqs    bool
	GetPrereqs      bool
	Cleanup         bool
	Session         string
	ContinueOnError bool
}

// StepResult is the outcome of one step.
type StepResult struct {
	Technique   string `json:"technique"`
	Description string `json:"description,omitempty"`
	Success     bool   `json:"success"`
	Output      string `json:"output,omitempty"`
	Error       string `json:"error,omitempty"`
}

// Summary aggregates a playbook run.
type Summary struct {
	Playbook  string       `json:"playbook"`
	Steps     []StepResult `json:"steps"`
	Succeeded int          `json:"succeeded"`
	Failed    int          `json:"failed"`
	Halted    bool         `json:"halted"`
}

// AllSucceeded reports whether every declared step ran and passed.
func (s *Summary) AllSucceeded() bool {
	return s.Failed == 0 && !s.Halted
}

// Execute runs the playbook's steps in declared order, one external
// invocation per step. It halts at the first failure unless
// opts.ContinueOnError is set. onStep, when non-nil, is called before each
// invocation so the caller can narrate progress.
func Execute(ctx context.Context, exec Executor, pb *Playbook, opts RunOptions, onStep func(i int, step Step)) *Summary {
	summary := &Summary{Playbook: pb.Name}

	for i, step := range pb.Steps {
		if onStep != nil {
			onStep(i, step)
		}

		inv := atomic.Invocation{
			Technique:        step.Technique,
			TestNumbers:      step.TestNumbers,
			CheckPrereqs:     opts.CheckPrereqs,
			GetPrereqs:       opts.GetPrereqs,
			Cleanup:          opts.Cleanup,
			Session:          opts.Session,
			ShowDetailsBrief: true,
		}

		res, err := exec.Run(ctx, inv)

		sr := StepResult{
			Technique:   step.Technique,
			Description: step.Description,
			Success:     err == nil,
		}
		if res != nil {
			sr.Output = res.Stdout
		}
		if err != nil {
			sr.Error = err.Error()
		}
		summary.Steps = append(summary.Steps, sr)

		if err != nil {
			summary.Failed++
			if !opts.ContinueOnError {
				summary.Halted = i < len(pb.Steps)-1
				break
			}
			continue
		}
		summary.Succeeded++
	}

	return summary
}
