// Package lexicon holds the fixed vocabulary the search planner rewrites
// with: job-title patterns that get phrase-quoted, and one-word searches
// that expand to OR queries. The defaults ship compiled in; an operator can
// override them with a YAML file that the scheduler hot-reloads.
package lexicon

import (
	"fmt"
	"regexp"
	"strings"
)

// Lexicon is an immutable compiled vocabulary. Swapped wholesale on reload.
type Lexicon struct {
	patterns   []*regexp.Regexp
	expansions map[string]string
}

// defaultPatterns cover the common job-title phrasings seen in search logs.
var defaultPatterns = []string{
	`(software|web|frontend|backend|full[- ]?stack) (developer|engineer|architect)`,
	`(product|project) (manager|lead|owner)`,
	`(ux|ui) (designer|developer)`,
	`(data scientist|data analyst|machine learning)`,
	`devops|sre`,
	`(marketing|sales|finance|hr) (specialist|manager|coordinator)`,
}

// defaultExpansions map frequent one-word searches to broader OR queries.
var defaultExpansions = map[string]string{
	"developer": "software developer OR web developer",
	"engineer":  "software engineer OR backend engineer",
	"designer":  "ux designer OR ui designer",
	"manager":   "product manager OR project manager",
	"marketing": "marketing specialist OR marketing manager",
	"data":      "data scientist OR data analyst",
	"frontend":  "frontend developer OR frontend engineer",
	"backend":   "backend developer OR backend engineer",
	"fullstack": "full stack developer OR full-stack engineer",
}

// Default returns the compiled built-in vocabulary.
func Default() *Lexicon {
	lex, err := Compile(FileConfig{Patterns: defaultPatterns, Expansions: defaultExpansions})
	if err != nil {
		panic(err) // built-in patterns must compile
	}
	return lex
}

// Compile validates and compiles a configuration into a Lexicon. Every
// pattern is anchored on word boundaries and matched case-insensitively.
func Compile(cfg FileConfig) (*Lexicon, error) {
	patterns := make([]*regexp.Regexp, 0, len(cfg.Patterns))
	for _, raw := range cfg.Patterns {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		re, err := regexp.Compile(`(?i)\b(` + raw + `)\b`)
		if err != nil {
			return nil, fmt.Errorf("invalid lexicon pattern %q: %w", raw, err)
		}
		patterns = append(patterns, re)
	}

	expansions := make(map[string]string, len(cfg.Expansions))
	for word, expanded := range cfg.Expansions {
		word = strings.ToLower(strings.TrimSpace(word))
		expanded = strings.TrimSpace(expanded)
		if word == "" || expanded == "" {
			continue
		}
		expansions[word] = expanded
	}

	return &Lexicon{patterns: patterns, expansions: expansions}, nil
}

// MatchTitle returns the first job-title phrase found in input, or "".
func (l *Lexicon) MatchTitle(input string) string {
	for _, re := range l.patterns {
		if m := re.FindString(input); m != "" {
			return m
		}
	}
	return ""
}

// Expand returns the expansion for a single-word query, if the word is known.
func (l *Lexicon) Expand(word string) (string, bool) {
	v, ok := l.expansions[strings.ToLower(word)]
	return v, ok
}

// PatternCount reports how many title patterns are loaded.
func (l *Lexicon) PatternCount() int { return len(l.patterns) }

// ExpansionCount reports how many one-word expansions are loaded.
func (l *Lexicon) ExpansionCount() int { return len(l.expansions) }
