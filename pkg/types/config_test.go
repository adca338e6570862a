// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConversionBackendValid(t *testing.T) {
	for _, b := range []ConversionBackend{BackendMarkitdown, BackendMarkitdownCLI, BackendNative} {
		assert.True(t, b.Valid(), b)
	}
	for _, b := range []ConversionBackend{"", "grobid", "Native"} {
		assert.False(t, b.Valid(), b)
	}
}

func TestRedacted(t *testing.T) {
	cfg := ConversionConfig{LLM: LLMConfig{APIKey: "sk-secret"}}
	assert.Equal(t, "********", cfg.Redacted().LLM.APIKey)
	assert.Equal(t, "sk-secret", cfg.LLM.APIKey, "original is untouched")
	assert.Empty(t, ConversionConfig{}.Redacted().LLM.APIKey)
}
