package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/omtsf/omtsf-go/graph"
	"github.com/omtsf/omtsf-go/merge"
	"github.com/omtsf/omtsf-go/redact"
	"github.com/omtsf/omtsf-go/resolve"
	"github.com/omtsf/omtsf-go/update"
)

// Config represents an omtsf.yaml configuration file.
type Config struct {
	Resolve ResolveConfig `yaml:"resolve,omitempty"`
	Update  UpdateConfig  `yaml:"update,omitempty"`
	Redact  RedactConfig  `yaml:"redact,omitempty"`
}

// ResolveConfig tunes merge grouping and warnings.
type ResolveConfig struct {
	// WarnThreshold is the group size at which warnings start. Default: 4.
	WarnThreshold int `yaml:"warn_threshold,omitempty"`

	// ProminentThreshold is the group size at which warnings become
	// prominent. Default: 10.
	ProminentThreshold int `yaml:"prominent_threshold,omitempty"`

	// SameAsConfidence is the weakest same_as grade that may join merge
	// groups: "definite", "probable", or "possible". Default: "definite".
	SameAsConfidence string `yaml:"same_as_confidence,omitempty"`

	// IgnoreSameAs disables same_as grouping entirely.
	IgnoreSameAs bool `yaml:"ignore_same_as,omitempty"`

	// RejectOversized fails merges whose groups reach the prominent
	// threshold instead of warning.
	RejectOversized bool `yaml:"reject_oversized,omitempty"`
}

// UpdateConfig tunes same-origin updates.
type UpdateConfig struct {
	// UnmatchedNodePolicy is "retain", "flag", or "expire". Default: "retain".
	UnmatchedNodePolicy string `yaml:"unmatched_node_policy,omitempty"`
}

// RedactConfig tunes scope redaction.
type RedactConfig struct {
	// Selector is a CEL expression choosing extra nodes to redact,
	// e.g. `type == "facility" && jurisdiction == "DE"`.
	Selector string `yaml:"selector,omitempty"`
}

// Load reads and parses a configuration file. If the path is a directory it
// looks for omtsf.yaml, then omtsf.yml, inside it.
func Load(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	configPath := path
	if info.IsDir() {
		yamlPath := filepath.Join(path, "omtsf.yaml")
		if _, err := os.Stat(yamlPath); err == nil {
			configPath = yamlPath
		} else {
			ymlPath := filepath.Join(path, "omtsf.yml")
			if _, err := os.Stat(ymlPath); err != nil {
				return nil, fmt.Errorf("no omtsf.yaml or omtsf.yml in %s", path)
			}
			configPath = ymlPath
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration. Unknown fields are rejected, so typos
// surface instead of silently applying defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the enumerated fields.
func (c *Config) Validate() error {
	switch c.Resolve.SameAsConfidence {
	case "", "definite", "probable", "possible":
	default:
		return fmt.Errorf("invalid same_as_confidence %q", c.Resolve.SameAsConfidence)
	}
	if c.Resolve.WarnThreshold < 0 || c.Resolve.ProminentThreshold < 0 {
		return fmt.Errorf("thresholds cannot be negative")
	}
	if c.Resolve.WarnThreshold > 0 && c.Resolve.ProminentThreshold > 0 &&
		c.Resolve.WarnThreshold > c.Resolve.ProminentThreshold {
		return fmt.Errorf("warn_threshold %d exceeds prominent_threshold %d",
			c.Resolve.WarnThreshold, c.Resolve.ProminentThreshold)
	}
	switch c.Update.UnmatchedNodePolicy {
	case "", "retain", "flag", "expire":
	default:
		return fmt.Errorf("invalid unmatched_node_policy %q", c.Update.UnmatchedNodePolicy)
	}
	if c.Redact.Selector != "" {
		if _, err := redact.NewSelector(c.Redact.Selector); err != nil {
			return err
		}
	}
	return nil
}

// Resolver builds a resolver from the resolve section.
func (c *Config) Resolver() *resolve.Resolver {
	var opts []resolve.Option
	if c.Resolve.WarnThreshold > 0 {
		opts = append(opts, resolve.WithWarnThreshold(c.Resolve.WarnThreshold))
	}
	if c.Resolve.ProminentThreshold > 0 {
		opts = append(opts, resolve.WithProminentThreshold(c.Resolve.ProminentThreshold))
	}
	if c.Resolve.SameAsConfidence != "" {
		opts = append(opts, resolve.WithSameAsThreshold(graph.Confidence(c.Resolve.SameAsConfidence)))
	}
	if c.Resolve.IgnoreSameAs {
		opts = append(opts, resolve.WithSameAsIgnored())
	}
	if c.Resolve.RejectOversized {
		opts = append(opts, resolve.WithOversizeRejection())
	}
	return resolve.NewResolver(opts...)
}

// MergeOptions maps the configuration onto merge engine options.
func (c *Config) MergeOptions() []merge.Option {
	return []merge.Option{merge.WithResolver(c.Resolver())}
}

// UpdateOptions maps the configuration onto update engine options.
func (c *Config) UpdateOptions() []update.Option {
	var opts []update.Option
	if c.Update.UnmatchedNodePolicy != "" {
		opts = append(opts, update.WithUnmatchedNodePolicy(
			update.UnmatchedNodePolicy(c.Update.UnmatchedNodePolicy)))
	}
	return opts
}

// RedactOptions maps the configuration onto redactor options.
func (c *Config) RedactOptions() ([]redact.Option, error) {
	var opts []redact.Option
	if c.Redact.Selector != "" {
		sel, err := redact.NewSelector(c.Redact.Selector)
		if err != nil {
			return nil, err
		}
		opts = append(opts, redact.WithSelector(sel))
	}
	return opts, nil
}
