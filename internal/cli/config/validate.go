package config

import (
	"fmt"
	"strings"

	"github.com/leapstack-labs/findrules/pkg/lint"
)

var validOutputs = []string{"auto", "text", "markdown", "json", "yaml"}

// Validate checks if the settings are valid.
func (c *Config) Validate() error {
	if !isValidOutput(c.OutputFormat) {
		return fmt.Errorf("invalid output format %q\nHint: use one of %s", c.OutputFormat, strings.Join(validOutputs, ", "))
	}
	if _, err := lint.ParseMissingDocPolicy(c.MissingDocs); err != nil {
		return err
	}
	if c.ChunkSize < 0 {
		return fmt.Errorf("chunk_size must not be negative, got %d", c.ChunkSize)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency must not be negative, got %d", c.Concurrency)
	}
	return nil
}

// HasSection reports whether at least one report section is enabled.
func (c *Config) HasSection() bool {
	return c.Unused || c.Deprecated || c.Invalid || c.Current || c.Available
}

func isValidOutput(s string) bool {
	if s == "" {
		return true
	}
	for _, v := range validOutputs {
		if s == v {
			return true
		}
	}
	return false
}
