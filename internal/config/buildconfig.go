package config

import (
	"os"

	"gopkg.in/yaml.v3"
)

// DictDuplicateMode mirrors typesystem.DuplicateKeyMode without importing
// that package, so config stays a leaf.
type DictDuplicateMode string

const (
	DictLastWins DictDuplicateMode = "last-wins"
	DictReject   DictDuplicateMode = "reject"
)

// BuildConfig is the optional lumo.yaml project file: extra reserved words
// and the two open-question feature flags spec.md §9 leaves to the
// implementer (see SPEC_FULL.md's Supplemental Features section and
// DESIGN.md for the defaults). ReservedWords is read from the file but is
// not consulted by the lexer or the parser.
type BuildConfig struct {
	ReservedWords     []string          `yaml:"reserved_words"`
	AnyPolymorphism   bool              `yaml:"any_polymorphism"`
	DictDuplicateKeys DictDuplicateMode `yaml:"dict_duplicate_keys"`
}

// DefaultBuildConfig matches the DESIGN.md decisions when no lumo.yaml is
// present.
func DefaultBuildConfig() BuildConfig {
	return BuildConfig{
		AnyPolymorphism:   false,
		DictDuplicateKeys: DictLastWins,
	}
}

// LoadBuildConfig reads and parses path. A missing file is not an error: it
// yields DefaultBuildConfig(). Any other read or parse failure is returned.
func LoadBuildConfig(path string) (BuildConfig, error) {
	cfg := DefaultBuildConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.DictDuplicateKeys == "" {
		cfg.DictDuplicateKeys = DictLastWins
	}
	return cfg, nil
}
