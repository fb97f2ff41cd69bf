package lexicon

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Loader reads and compiles a lexicon override file.
type Loader struct {
	filePath string
}

func NewLoader(filePath string) *Loader {
	return &Loader{filePath: filePath}
}

// Load parses the YAML file and compiles it. A file with no patterns or
// expansions falls back to the built-in entries for the missing half, so an
// operator can override just one of the two lists.
func (l *Loader) Load() (*Lexicon, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon file: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon yaml: %w", err)
	}

	if len(cfg.Patterns) == 0 {
		cfg.Patterns = defaultPatterns
	}
	if len(cfg.Expansions) == 0 {
		cfg.Expansions = defaultExpansions
	}

	return Compile(cfg)
}
