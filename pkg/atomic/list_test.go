package atomic

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

const sampleListing = `
PathToAtomicsFolder = /opt/atomics

T1003 - OS Credential Dumping
T1016 - System Network Configuration Discovery
T1552.001 - Credentials In Files
some unrelated banner line
T1555.003 - Credentials from Web Browsers
`

func TestParseTechniqueList(t *testing.T) {
	techniques := ParseTechniqueList(sampleListing)

	assert.Equal(t, []Technique{
		{ID: "T1003", Name: "OS Credential Dumping"},
		{ID: "T1016", Name: "System Network Configuration Discovery"},
		{ID: "T1552.001", Name: "Credentials In Files"},
		{ID: "T1555.003", Name: "Credentials from Web Browsers"},
	}, techniques)
}

func TestParseTechniqueListEmpty(t *testing.T) {
	assert.Empty(t, ParseTechniqueList(""))
	assert.Empty(t, ParseTechniqueList("no techniques here"))
}

func TestFilterTechniques(t *testing.T) {
	techniques := ParseTechniqueList(sampleListing)

	t.Run("case-insensitive name match", func(t *testing.T) {
		got := FilterTechniques(techniques, "CREDENTIAL")
		assert.Len(t, got, 3)
		for _, tech := range got {
			assert.Contains(t, tech.Name, "Credential")
		}
	})

	t.Run("matches on ID", func(t *testing.T) {
		got := FilterTechniques(techniques, "t1552")
		assert.Equal(t, []Technique{{ID: "T1552.001", Name: "Credentials In Files"}}, got)
	})

	t.Run("empty filter returns all", func(t *testing.T) {
		assert.Equal(t, techniques, FilterTechniques(techniques, ""))
	})

	t.Run("no matches", func(t *testing.T) {
		assert.Empty(t, FilterTechniques(techniques, "zzzz"))
	})
}
