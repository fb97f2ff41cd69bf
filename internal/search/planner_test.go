package search

import (
	"testing"
)

func TestPlanRewriteRules(t *testing.T) {
	p := NewPlanner(nil)

	tests := []struct {
		name      string
		input     string
		want      string
		wantTitle bool
	}{
		{
			name:  "whitespace normalised",
			input: "  red   widget ",
			want:  "red widget",
		},
		{
			name:  "quoted phrase untouched",
			input: `"exact phrase" extra`,
			want:  `"exact phrase" extra`,
		},
		{
			name:  "explicit OR untouched",
			input: "cats OR dogs",
			want:  "cats OR dogs",
		},
		{
			name:  "explicit AND untouched",
			input: "cats AND dogs",
			want:  "cats AND dogs",
		},
		{
			name:      "job title quoted with remainder appended",
			input:     "frontend developer berlin",
			want:      `"frontend developer" berlin`,
			wantTitle: true,
		},
		{
			name:      "job title alone",
			input:     "product manager",
			want:      `"product manager"`,
			wantTitle: true,
		},
		{
			name:      "one-word expansion",
			input:     "developer",
			want:      "software developer OR web developer",
			wantTitle: true,
		},
		{
			name:  "plain query passes through",
			input: "ergonomic keyboard",
			want:  "ergonomic keyboard",
		},
		{
			name:  "empty input",
			input: "   ",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Plan(tt.input)
			if got.Query != tt.want {
				t.Errorf("Plan(%q).Query = %q, want %q", tt.input, got.Query, tt.want)
			}
			if got.IsJobTitle != tt.wantTitle {
				t.Errorf("Plan(%q).IsJobTitle = %v, want %v", tt.input, got.IsJobTitle, tt.wantTitle)
			}
		})
	}
}

func TestPlanIdempotent(t *testing.T) {
	p := NewPlanner(nil)
	inputs := []string{
		"frontend developer berlin",
		"developer",
		"ergonomic keyboard",
		`"exact phrase"`,
		"cats OR dogs",
		"product manager",
		"data",
	}
	for _, in := range inputs {
		once := p.Plan(in)
		twice := p.Plan(once.Query)
		if twice.Query != once.Query {
			t.Errorf("Plan not idempotent for %q: %q -> %q", in, once.Query, twice.Query)
		}
		if twice.Rewrote {
			t.Errorf("second Plan(%q) should not rewrite", once.Query)
		}
	}
}

func TestChooseBucket(t *testing.T) {
	p := NewPlanner(nil)

	tests := []struct {
		name   string
		raw    string
		counts Counts
		want   Bucket
	}{
		{
			name:   "largest bucket wins",
			raw:    "ergonomic keyboard",
			counts: Counts{Products: 12, Jobs: 3},
			want:   BucketProducts,
		},
		{
			name:   "jobs win when larger",
			raw:    "remote berlin",
			counts: Counts{Products: 1, Jobs: 9},
			want:   BucketJobs,
		},
		{
			name:   "name-like query biases to users",
			raw:    "jane doe",
			counts: Counts{Products: 40, Users: 2},
			want:   BucketUsers,
		},
		{
			name:   "name-like without user hits falls through",
			raw:    "jane doe",
			counts: Counts{Products: 40},
			want:   BucketProducts,
		},
		{
			name:   "job title biases to jobs even when outnumbered",
			raw:    "frontend developer",
			counts: Counts{Products: 100, Jobs: 1},
			want:   BucketJobs,
		},
		{
			name:   "job title without job hits falls through",
			raw:    "frontend developer",
			counts: Counts{Products: 5},
			want:   BucketProducts,
		},
		{
			name:   "all empty defaults to products",
			raw:    "zzqqxx",
			counts: Counts{},
			want:   BucketProducts,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := p.Plan(tt.raw)
			got := ChooseBucket(plan, tt.raw, tt.counts)
			if got != tt.want {
				t.Errorf("ChooseBucket(%q, %+v) = %q, want %q", tt.raw, tt.counts, got, tt.want)
			}
		})
	}
}

func TestCountsTotal(t *testing.T) {
	c := Counts{Products: 1, Jobs: 2, Projects: 3, Users: 4}
	if c.Total() != 10 {
		t.Errorf("Total() = %d, want 10", c.Total())
	}
}
