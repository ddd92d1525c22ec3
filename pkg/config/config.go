// Package config provides simple configuration loading for pool-based
// programs
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// PoolConfig describes one pool instance in a configuration file.
// It maps one-to-one onto freelist construction options; the zero
// value of every toggle matches the library default.
type PoolConfig struct {
	// Name labels the pool in traces and metrics
	Name string `yaml:"name"`
	// Capacity is the fixed slot count; must be positive
	Capacity int `yaml:"capacity"`
	// ThreadSafe selects the mutex-guarded variant
	ThreadSafe bool `yaml:"thread_safe"`
	// Validation selects the validated release checks
	Validation bool `yaml:"validate"`
	// OffHeap places the arena in an anonymous mapping
	OffHeap bool `yaml:"off_heap"`
	// Trace enables debug-level operation tracing
	Trace bool `yaml:"trace"`
}

// Validate checks the configuration for values the library would
// reject at construction time
func (c *PoolConfig) Validate() error {
	if c.Capacity <= 0 {
		return fmt.Errorf("pool %q: capacity must be positive, got %d", c.Name, c.Capacity)
	}
	return nil
}

// Load loads a configuration from a YAML file
func Load(filePath string, config interface{}) error {
	data, err := os.ReadFile(filePath) //nolint:gosec // G304: File path is controlled by caller and validated
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	// Substitute environment variables
	content := string(data)
	content = substituteEnvVars(content)

	if err := yaml.Unmarshal([]byte(content), config); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}

	return nil
}

// Save saves a configuration to a YAML file
func Save(filePath string, config interface{}) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal YAML: %w", err)
	}

	if err := os.WriteFile(filePath, data, 0644); err != nil { //nolint:gosec
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// substituteEnvVars replaces ${VAR_NAME} with environment variable values
func substituteEnvVars(content string) string {
	for {
		start := strings.Index(content, "${")
		if start == -1 {
			break
		}
		end := strings.Index(content[start:], "}")
		if end == -1 {
			break
		}
		end += start

		varName := content[start+2 : end]
		envValue := os.Getenv(varName)
		content = content[:start] + envValue + content[end+1:]
	}
	return content
}
