package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/omtsf/omtsf-go/update"
)

const sampleYAML = `
resolve:
  warn_threshold: 5
  prominent_threshold: 12
  same_as_confidence: probable
  reject_oversized: true
update:
  unmatched_node_policy: expire
redact:
  selector: 'type == "facility" && jurisdiction == "DE"'
`

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Resolve.WarnThreshold)
	assert.Equal(t, 12, cfg.Resolve.ProminentThreshold)
	assert.Equal(t, "probable", cfg.Resolve.SameAsConfidence)
	assert.True(t, cfg.Resolve.RejectOversized)
	assert.Equal(t, "expire", cfg.Update.UnmatchedNodePolicy)
	assert.NotEmpty(t, cfg.Redact.Selector)
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.NotNil(t, cfg.Resolver(), "empty config yields default engines")
	assert.Empty(t, cfg.UpdateOptions())
}

func TestParse_RejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("resolve:\n  warn_treshold: 5\n"))
	require.Error(t, err, "typos must not silently apply defaults")
}

func TestParse_RejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad confidence", "resolve:\n  same_as_confidence: certain\n"},
		{"bad policy", "update:\n  unmatched_node_policy: archive\n"},
		{"inverted thresholds", "resolve:\n  warn_threshold: 12\n  prominent_threshold: 5\n"},
		{"bad selector", "redact:\n  selector: 'type =='\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
		})
	}
}

func TestOptionMapping(t *testing.T) {
	cfg, err := Parse([]byte(sampleYAML))
	require.NoError(t, err)

	assert.Len(t, cfg.MergeOptions(), 1)

	updateOpts := cfg.UpdateOptions()
	require.Len(t, updateOpts, 1)
	e := update.NewEngine(updateOpts...)
	require.NotNil(t, e)

	redactOpts, err := cfg.RedactOptions()
	require.NoError(t, err)
	assert.Len(t, redactOpts, 1)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "omtsf.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleYAML), 0o644))

	byFile, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 5, byFile.Resolve.WarnThreshold)

	byDir, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, byFile, byDir)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	_, err = Load(t.TempDir())
	require.Error(t, err, "directory without omtsf.yaml")
}
