package playbook

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLibraryBuiltins(t *testing.T) {
	l := NewLibrary()

	for _, name := range []string{"credential-access", "discovery", "persistence"} {
		pb := l.Get(name)
		require.NotNil(t, pb, name)
		assert.NotEmpty(t, pb.Steps)
		assert.NotEmpty(t, pb.Description)
		assert.NotEmpty(t, pb.BlueTeamGuidance)
		assert.NoError(t, Validate(pb))
	}
}

func TestLibraryGetCaseInsensitive(t *testing.T) {
	l := NewLibrary()
	assert.NotNil(t, l.Get("Persistence"))
	assert.NotNil(t, l.Get("DISCOVERY"))
	assert.Nil(t, l.Get("no-such-playbook"))
}

func TestLibraryAllSorted(t *testing.T) {
	l := NewLibrary()
	all := l.All()
	require.Len(t, all, 3)
	assert.Equal(t, "credential-access", all[0].Name)
	assert.Equal(t, "discovery", all[1].Name)
	assert.Equal(t, "persistence", all[2].Name)
}

const yamlPlaybook = `
name: lateral-movement
description: Simulated lateral movement chain
steps:
  - technique: T1021.002
    test_numbers: [1, 2]
    description: SMB/Windows Admin Shares
  - technique: T1570
    description: Lateral Tool Transfer
blue_team_guidance: |
  Watch for ADMIN$ share access.
`

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lateral.yaml"), []byte(yamlPlaybook), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644))

	l := NewLibrary()
	require.NoError(t, l.LoadDir(dir))

	pb := l.Get("lateral-movement")
	require.NotNil(t, pb)
	require.Len(t, pb.Steps, 2)
	assert.Equal(t, []int{1, 2}, pb.Steps[0].TestNumbers)
	assert.Contains(t, pb.BlueTeamGuidance, "ADMIN$")
}

func TestLoadDirMissingIsNotAnError(t *testing.T) {
	l := NewLibrary()
	assert.NoError(t, l.LoadDir(filepath.Join(t.TempDir(), "nope")))
	assert.Len(t, l.All(), 3)
}

func TestLoadFileRejectsBadTechnique(t *testing.T) {
	dir := t.TempDir()
	bad := `
name: broken
description: bad step
steps:
  - technique: NOT-A-TECHNIQUE
`
	path := filepath.Join(dir, "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte(bad), 0644))

	_, err := LoadFile(path)
	assert.ErrorContains(t, err, "invalid technique ID")
}

func TestValidate(t *testing.T) {
	assert.Error(t, Validate(&Playbook{Name: "", Steps: []Step{{Technique: "T1003"}}}))
	assert.Error(t, Validate(&Playbook{Name: "empty"}))
	assert.NoError(t, Validate(&Playbook{Name: "ok", Steps: []Step{{Technique: "T1003"}}}))
}

func TestLoadDirOverridesBuiltin(t *testing.T) {
	dir := t.TempDir()
	override := `
name: discovery
description: custom discovery
steps:
  - technique: T1082
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "discovery.yaml"), []byte(override), 0644))

	l := NewLibrary()
	require.NoError(t, l.LoadDir(dir))

	pb := l.Get("discovery")
	require.NotNil(t, pb)
	assert.Equal(t, "custom discovery", pb.Description)
	assert.Len(t, pb.Steps, 1)
}
