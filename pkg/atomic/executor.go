package atomic

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/praetorian-inc/violet/internal/logs"
)

// Sentinel errors for the failure modes callers branch on.
var (
	ErrInvalidTechniqueID = errors.New("invalid technique ID, expected T1234 or T1234.001")
	ErrExecutableNotFound = errors.New("powershell executable not found")
	ErrTimeout            = errors.New("command timed out")
)

// ExitError reports a non-zero exit from the external framework, with the
// streams captured up to that point.
type ExitError struct {
	Code   int
	Stdout string
	Stderr string
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("command failed with exit code %d", e.Code)
}

// Result is the outcome of one external invocation.
type Result struct {
	Technique string        `json:"technique"`
	Command   string        `json:"command"`
	Stdout    string        `json:"stdout,omitempty"`
	Stderr    string        `json:"stderr,omitempty"`
	ExitCode  int           `json:"exit_code"`
	Duration  time.Duration `json:"duration"`
	Captured  bool          `json:"captured"`
}

// Runner executes Invoke-AtomicTest through a PowerShell binary.
type Runner struct {
	// PowerShell is the executable to invoke, e.g. "pwsh" or a full path.
	PowerShell string

	// Timeout bounds each invocation. Zero means no deadline.
	Timeout time.Duration

	// Capture controls whether stdout/stderr are buffered into the Result.
	// When false the child inherits the parent's streams so interactive
	// payloads can display.
	Capture bool
}

// Run executes a single invocation. The returned Result is non-nil whenever
// the process actually started, including on non-zero exit.
func (r *Runner) Run(ctx context.Context, inv Invocation) (*Result, error) {
	if !ValidTechniqueID(inv.Technique) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTechniqueID, inv.Technique)
	}
	return r.exec(ctx, inv.Technique, inv.Args())
}

// ListTechniques asks the framework for every known technique and parses the
// "T1234 - Name" lines of its output.
func (r *Runner) ListTechniques(ctx context.Context) ([]Technique, error) {
	res, err := r.run(ctx, "", []string{"-Command", listTechniquesCommand}, true)
	if err != nil {
		return nil, err
	}
	return ParseTechniqueList(res.Stdout), nil
}

// TestDetails returns the framework's description of a technique's tests.
func (r *Runner) TestDetails(ctx context.Context, technique string, testNumbers []int, full bool) (string, error) {
	if !ValidTechniqueID(technique) {
		return "", fmt.Errorf("%w: %q", ErrInvalidTechniqueID, technique)
	}
	inv := Invocation{
		Technique:        technique,
		TestNumbers:      testNumbers,
		ShowDetails:      full,
		ShowDetailsBrief: !full,
	}
	res, err := r.run(ctx, technique, inv.Args(), true)
	if err != nil {
		return "", err
	}
	return res.Stdout, nil
}

func (r *Runner) exec(ctx context.Context, technique string, args []string) (*Result, error) {
	return r.run(ctx, technique, args, r.Capture)
}

func (r *Runner) run(ctx context.Context, technique string, args []string, capture bool) (*Result, error) {
	if r.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, r.PowerShell, args...)

	var stdout, stderr bytes.Buffer
	if capture {
		cmd.Stdout = &stdout
		cmd.Stderr = &stderr
	} else {
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr
	}

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	result := &Result{
		Technique: technique,
		Command:   r.PowerShell + " " + args[0] + " " + args[1],
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		Duration:  elapsed,
		Captured:  capture,
	}

	logs.FileLogger().Info("external invocation",
		"technique", technique,
		"command", result.Command,
		"duration", elapsed.String(),
		"error", fmt.Sprintf("%v", err))

	if err == nil {
		return result, nil
	}

	if ctx.Err() == context.DeadlineExceeded {
		return result, fmt.Errorf("%w after %s", ErrTimeout, r.Timeout)
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, &ExitError{
			Code:   exitErr.ExitCode(),
			Stdout: result.Stdout,
			Stderr: result.Stderr,
		}
	}

	if errors.Is(err, exec.ErrNotFound) || os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %q", ErrExecutableNotFound, r.PowerShell)
	}

	return result, fmt.Errorf("running %s: %w", r.PowerShell, err)
}
