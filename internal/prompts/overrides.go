package prompts

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"rewriter/internal/provider"
)

type stageOverride struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`
	Prompt   string `yaml:"prompt"`
}

type rewriteOverride struct {
	Provider     string `yaml:"provider"`
	Model        string `yaml:"model"`
	SinglePrompt string `yaml:"single_prompt"`
	MultiPrompt  string `yaml:"multi_prompt"`
}

type overrideFile struct {
	Cleanup   stageOverride   `yaml:"cleanup"`
	Translate stageOverride   `yaml:"translate"`
	Rewrite   rewriteOverride `yaml:"rewrite"`
}

// Load returns the default catalog with the overrides from the YAML file at
// path applied. Fields left empty keep their defaults. An empty path yields
// the defaults unchanged.
func Load(path string) (*Catalog, error) {
	catalog := Default()

	path = strings.TrimSpace(path)
	if path == "" {
		return catalog, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts file %s: %w", path, err)
	}

	if err = Apply(catalog, data); err != nil {
		return nil, fmt.Errorf("apply prompts file %s: %w", path, err)
	}

	return catalog, nil
}

// Apply decodes YAML overrides into catalog. Unknown provider names are
// rejected here so that a bad configuration never reaches a provider call.
func Apply(catalog *Catalog, data []byte) error {
	var file overrideFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("parse YAML: %w", err)
	}

	if err := applyStage(&catalog.Cleanup, file.Cleanup); err != nil {
		return fmt.Errorf("cleanup: %w", err)
	}

	if err := applyStage(&catalog.Translate, file.Translate); err != nil {
		return fmt.Errorf("translate: %w", err)
	}

	rewrite := file.Rewrite
	if err := applyProvider(&catalog.Rewrite.Provider, rewrite.Provider); err != nil {
		return fmt.Errorf("rewrite: %w", err)
	}
	applyString(&catalog.Rewrite.Model, rewrite.Model)
	applyString(&catalog.Rewrite.SinglePrompt, rewrite.SinglePrompt)
	applyString(&catalog.Rewrite.MultiPrompt, rewrite.MultiPrompt)

	return nil
}

func applyStage(entry *Entry, override stageOverride) error {
	if err := applyProvider(&entry.Provider, override.Provider); err != nil {
		return err
	}
	applyString(&entry.Model, override.Model)
	applyString(&entry.Prompt, override.Prompt)

	return nil
}

func applyProvider(dst *provider.Provider, name string) error {
	if strings.TrimSpace(name) == "" {
		return nil
	}

	p, err := provider.Parse(name)
	if err != nil {
		return err
	}
	*dst = p

	return nil
}

func applyString(dst *string, value string) {
	if value = strings.TrimSpace(value); value != "" {
		*dst = value
	}
}
