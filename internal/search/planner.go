// Package search turns free-text input into a query the upstream search API
// handles well, and picks the result bucket a viewer most likely wants.
package search

import (
	"regexp"
	"strings"
	"sync"

	"github.com/productbazar/bazar/internal/sources/lexicon"
)

// Bucket names the entity groups a search can land on.
type Bucket string

const (
	BucketProducts Bucket = "products"
	BucketJobs     Bucket = "jobs"
	BucketProjects Bucket = "projects"
	BucketUsers    Bucket = "users"
)

// bucketOrder resolves count ties deterministically: products first.
var bucketOrder = []Bucket{BucketProducts, BucketJobs, BucketProjects, BucketUsers}

// Plan is the outcome of rewriting one raw search string.
type Plan struct {
	Query      string // the string to send upstream
	IsJobTitle bool   // a known job-title phrase was detected
	Rewrote    bool   // Query differs from the normalised input
}

// nameLike matches short plain queries that tend to be people searches.
var nameLike = regexp.MustCompile(`^[a-z]+( [a-z]+)?$`)

// Planner rewrites queries against a hot-swappable lexicon.
type Planner struct {
	mu  sync.RWMutex
	lex *lexicon.Lexicon
}

func NewPlanner(lex *lexicon.Lexicon) *Planner {
	if lex == nil {
		lex = lexicon.Default()
	}
	return &Planner{lex: lex}
}

// Swap replaces the lexicon. Called by the reload scheduler.
func (p *Planner) Swap(lex *lexicon.Lexicon) {
	if lex == nil {
		return
	}
	p.mu.Lock()
	p.lex = lex
	p.mu.Unlock()
}

func (p *Planner) lexicon() *lexicon.Lexicon {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lex
}

// Plan applies the rewrite rules in order, short-circuiting on the first
// that fires:
//
//  1. normalise whitespace;
//  2. queries already carrying quotes or AND/OR operators pass through;
//  3. a known job-title phrase gets quoted, the remainder appended;
//  4. a known single word expands to its OR query;
//  5. anything else passes through normalised.
//
// Plan is idempotent: planning an already-planned query changes nothing,
// because rules 3 and 4 always produce strings rule 2 recognises.
func (p *Planner) Plan(raw string) Plan {
	q := strings.Join(strings.Fields(raw), " ")
	if q == "" {
		return Plan{}
	}

	lex := p.lexicon()

	if strings.Contains(q, `"`) || hasOperator(q) {
		return Plan{Query: q, IsJobTitle: lex.MatchTitle(q) != ""}
	}

	if title := lex.MatchTitle(q); title != "" {
		rest := strings.Join(strings.Fields(strings.Replace(q, title, "", 1)), " ")
		planned := `"` + title + `"`
		if rest != "" {
			planned += " " + rest
		}
		return Plan{Query: planned, IsJobTitle: true, Rewrote: true}
	}

	if !strings.Contains(q, " ") {
		if expanded, ok := lex.Expand(q); ok {
			return Plan{Query: expanded, IsJobTitle: lex.MatchTitle(expanded) != "", Rewrote: true}
		}
	}

	return Plan{Query: q}
}

// hasOperator reports whether q already uses explicit boolean operators.
func hasOperator(q string) bool {
	for _, tok := range strings.Fields(q) {
		if tok == "AND" || tok == "OR" {
			return true
		}
	}
	return false
}

// Counts carries the per-bucket hit counts an upstream search reply reports.
type Counts struct {
	Products int `json:"products"`
	Jobs     int `json:"jobs"`
	Projects int `json:"projects"`
	Users    int `json:"users"`
}

func (c Counts) of(b Bucket) int {
	switch b {
	case BucketProducts:
		return c.Products
	case BucketJobs:
		return c.Jobs
	case BucketProjects:
		return c.Projects
	case BucketUsers:
		return c.Users
	default:
		return 0
	}
}

// Total sums every bucket.
func (c Counts) Total() int { return c.Products + c.Jobs + c.Projects + c.Users }

// ChooseBucket picks the bucket to present first: the largest non-empty one,
// except that a name-like query with user hits prefers users, and a
// job-title query with job hits prefers jobs.
func ChooseBucket(plan Plan, raw string, counts Counts) Bucket {
	if plan.IsJobTitle && counts.Jobs > 0 {
		return BucketJobs
	}
	normalized := strings.ToLower(strings.Join(strings.Fields(raw), " "))
	if nameLike.MatchString(normalized) && counts.Users > 0 {
		return BucketUsers
	}

	best := BucketProducts
	bestCount := -1
	for _, b := range bucketOrder {
		if n := counts.of(b); n > bestCount {
			best = b
			bestCount = n
		}
	}
	return best
}
