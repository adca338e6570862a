// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/mdconvert/internal/caption"
	"github.com/pdiddy/mdconvert/internal/report"
	"github.com/pdiddy/mdconvert/internal/secrets"
	"github.com/pdiddy/mdconvert/pkg/types"
)

// Viper keys. Nested keys map to MDCONVERT_LLM_* environment variables.
const (
	keyInput      = "input"
	keyOutput     = "output"
	keyBackend    = "backend"
	keyLogDir     = "log_dir"
	keyNotify     = "notify"
	keyLLMEnabled = "llm.enabled"
	keyLLMModel   = "llm.model"
	keyLLMAPIKey  = "llm.api_key"
	keyLLMPrompt  = "llm.prompt"
	keyLLMRetries = "llm.max_retries"
)

func setDefaults(v *viper.Viper) {
	v.SetDefault(keyBackend, string(types.BackendMarkitdown))
	v.SetDefault(keyLogDir, report.DefaultLogDir)
	v.SetDefault(keyLLMModel, caption.DefaultModel)
	v.SetDefault(keyLLMRetries, 3)
	// Registered so AutomaticEnv picks these up during Unmarshal.
	v.SetDefault(keyInput, "")
	v.SetDefault(keyOutput, "")
	v.SetDefault(keyNotify, false)
	v.SetDefault(keyLLMEnabled, false)
	v.SetDefault(keyLLMAPIKey, "")
	v.SetDefault(keyLLMPrompt, "")
}

// loadConfig resolves the effective configuration from flags, environment,
// config file and defaults, then falls back to .secrets/ for the API key.
func loadConfig(v *viper.Viper, loaded map[string]string) (types.ConversionConfig, error) {
	var cfg types.ConversionConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, fmt.Errorf("reading configuration: %w", err)
	}
	cfg.Backend = types.ConversionBackend(strings.ToLower(strings.TrimSpace(string(cfg.Backend))))
	if !cfg.Backend.Valid() {
		return cfg, fmt.Errorf("unknown backend %q (want markitdown, markitdown-cli, or native)", cfg.Backend)
	}
	cfg.LLM.APIKey = secrets.Resolve(cfg.LLM.APIKey, loaded, secrets.OpenAIAPIKey)
	return cfg, nil
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect mdconvert configuration",
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	Long: `Show prints the configuration a convert run would use after merging
flags, MDCONVERT_* environment variables, the config file, and defaults.
The API key is masked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(viper.GetViper(), loadedSecrets)
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(cfg.Redacted())
		if err != nil {
			return fmt.Errorf("encoding configuration: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(out)
		return err
	},
}

func init() {
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}
