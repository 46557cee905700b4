package lab

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplateNames(t *testing.T) {
	assert.Equal(t, []string{TemplateAWSLabNetwork, TemplateAzureLabNetwork}, TemplateNames())
}

func TestAWSTemplateEmbedded(t *testing.T) {
	body, err := Template(TemplateAWSLabNetwork)
	require.NoError(t, err)
	assert.Contains(t, body, "AWSTemplateFormatVersion")
	assert.Contains(t, body, "TargetInstance")
}

func TestAzureTemplateParses(t *testing.T) {
	body, err := Template(TemplateAzureLabNetwork)
	require.NoError(t, err)

	template, err := parseARMTemplate(body)
	require.NoError(t, err)
	assert.Contains(t, template, "resources")

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(body), &raw))
	assert.Contains(t, raw, "parameters")
}

func TestUnknownTemplate(t *testing.T) {
	_, err := Template("no-such-range")
	assert.ErrorContains(t, err, "unknown range template")
}

func TestARMParameterEnvelope(t *testing.T) {
	wrapped := armParameters(map[string]string{"operatorCidr": "198.51.100.7/32"})
	assert.Equal(t, map[string]any{
		"operatorCidr": map[string]any{"value": "198.51.100.7/32"},
	}, wrapped)

	assert.Empty(t, armParameters(nil))
}
