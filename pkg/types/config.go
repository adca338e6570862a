// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// ConversionBackend identifies the document-to-Markdown engine.
type ConversionBackend string

const (
	// BackendMarkitdown runs the markitdown container image via docker or podman.
	BackendMarkitdown ConversionBackend = "markitdown"
	// BackendMarkitdownCLI runs a locally installed markitdown binary.
	BackendMarkitdownCLI ConversionBackend = "markitdown-cli"
	// BackendNative converts in-process with Go libraries.
	BackendNative ConversionBackend = "native"
)

// Valid reports whether b names a known backend.
func (b ConversionBackend) Valid() bool {
	switch b {
	case BackendMarkitdown, BackendMarkitdownCLI, BackendNative:
		return true
	}
	return false
}

// LLMConfig holds settings for LLM-assisted image captioning.
type LLMConfig struct {
	// Enabled turns on image captioning for image inputs.
	Enabled bool `json:"enabled" yaml:"enabled" mapstructure:"enabled"`

	// Model is the chat model used for captions (e.g. "gpt-4o").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the credential passed to the LLM client. It is never written
	// to disk by mdconvert.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Prompt overrides the default caption prompt.
	Prompt string `json:"prompt,omitempty" yaml:"prompt,omitempty" mapstructure:"prompt"`

	// MaxRetries is the number of retry attempts on rate limiting (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`
}

// ConversionConfig holds settings for one batch conversion run.
type ConversionConfig struct {
	// InputDir is the root directory walked for source documents.
	InputDir string `json:"input" yaml:"input" mapstructure:"input"`

	// OutputDir is the root directory that mirrors InputDir with .md files.
	OutputDir string `json:"output" yaml:"output" mapstructure:"output"`

	// Backend selects the conversion engine.
	Backend ConversionBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// LogDir is where conversion_log_<timestamp>.txt files are created.
	LogDir string `json:"log_dir" yaml:"log_dir" mapstructure:"log_dir"`

	// Notify sends a desktop notification when a run finishes.
	Notify bool `json:"notify" yaml:"notify" mapstructure:"notify"`

	LLM LLMConfig `json:"llm" yaml:"llm" mapstructure:"llm"`
}

// Redacted returns a copy of the config with the API key masked, suitable
// for printing.
func (c ConversionConfig) Redacted() ConversionConfig {
	if c.LLM.APIKey != "" {
		c.LLM.APIKey = "********"
	}
	return c
}
