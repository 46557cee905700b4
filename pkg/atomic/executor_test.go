package atomic

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubPowerShell writes a shell script standing in for the PowerShell binary.
func stubPowerShell(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("stub scripts require a POSIX shell")
	}
	path := filepath.Join(t.TempDir(), "pwsh")
	script := "#!/bin/sh\n" + body + "\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0755))
	return path
}

func TestRunCapturesOutput(t *testing.T) {
	stub := stubPowerShell(t, `echo "stdout line"; echo "stderr line" >&2`)
	r := &Runner{PowerShell: stub, Timeout: 10 * time.Second, Capture: true}

	res, err := r.Run(context.Background(), Invocation{Technique: "T1003"})
	require.NoError(t, err)
	assert.Contains(t, res.Stdout, "stdout line")
	assert.Contains(t, res.Stderr, "stderr line")
	assert.Equal(t, 0, res.ExitCode)
	assert.True(t, res.Captured)
}

func TestRunPassesCommandArgument(t *testing.T) {
	stub := stubPowerShell(t, `echo "$@"`)
	r := &Runner{PowerShell: stub, Timeout: 10 * time.Second, Capture: true}

	res, err := r.Run(context.Background(), Invocation{Technique: "T1016", Cleanup: true})
	require.NoError(t, err)
	assert.Contains(t, res.Stdout, "-Command Invoke-AtomicTest -AtomicTechnique T1016 -Cleanup")
}

func TestRunRejectsInvalidTechnique(t *testing.T) {
	r := &Runner{PowerShell: "pwsh", Capture: true}

	_, err := r.Run(context.Background(), Invocation{Technique: "1003"})
	assert.ErrorIs(t, err, ErrInvalidTechniqueID)
}

func TestRunNonZeroExit(t *testing.T) {
	stub := stubPowerShell(t, `echo "partial"; exit 3`)
	r := &Runner{PowerShell: stub, Timeout: 10 * time.Second, Capture: true}

	res, err := r.Run(context.Background(), Invocation{Technique: "T1003"})
	require.Error(t, err)

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	assert.Equal(t, 3, exitErr.Code)
	assert.Contains(t, exitErr.Stdout, "partial")
	require.NotNil(t, res)
	assert.Equal(t, 3, res.ExitCode)
}

func TestRunExecutableNotFound(t *testing.T) {
	r := &Runner{
		PowerShell: filepath.Join(t.TempDir(), "definitely-not-here"),
		Timeout:    10 * time.Second,
		Capture:    true,
	}

	_, err := r.Run(context.Background(), Invocation{Technique: "T1003"})
	assert.ErrorIs(t, err, ErrExecutableNotFound)
}

func TestRunTimeout(t *testing.T) {
	stub := stubPowerShell(t, `sleep 5`)
	r := &Runner{PowerShell: stub, Timeout: 100 * time.Millisecond, Capture: true}

	start := time.Now()
	_, err := r.Run(context.Background(), Invocation{Technique: "T1003"})
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Less(t, time.Since(start), 3*time.Second)
}

func TestListTechniques(t *testing.T) {
	stub := stubPowerShell(t, `cat <<'EOF'
T1003 - OS Credential Dumping
T1082 - System Information Discovery
EOF`)
	r := &Runner{PowerShell: stub, Timeout: 10 * time.Second}

	techniques, err := r.ListTechniques(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []Technique{
		{ID: "T1003", Name: "OS Credential Dumping"},
		{ID: "T1082", Name: "System Information Discovery"},
	}, techniques)
}

func TestTestDetails(t *testing.T) {
	stub := stubPowerShell(t, `echo "$@"`)
	r := &Runner{PowerShell: stub, Timeout: 10 * time.Second}

	out, err := r.TestDetails(context.Background(), "T1003", []int{1}, false)
	require.NoError(t, err)
	assert.Contains(t, out, "-TestNumbers 1")
	assert.Contains(t, out, "-ShowDetailsBrief")

	out, err = r.TestDetails(context.Background(), "T1003", nil, true)
	require.NoError(t, err)
	assert.Contains(t, out, "-ShowDetails")
	assert.NotContains(t, out, "-ShowDetailsBrief")
}
