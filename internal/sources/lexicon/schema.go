package lexicon

// FileConfig is the on-disk shape of lexicon.yaml.
//
// Example:
//
//	patterns:
//	  - '(software|web) (developer|engineer)'
//	expansions:
//	  developer: software developer OR web developer
type FileConfig struct {
	Patterns   []string          `yaml:"patterns"`
	Expansions map[string]string `yaml:"expansions"`
}
