package search

import (
	"strings"

	"talant-web/internal/domain/listing"
)

// Filter is the current filter configuration. Zero-valued fields are
// inactive.
type Filter struct {
	Query      string `json:"q,omitempty"`
	Category   string `json:"category,omitempty"`
	Level      string `json:"level,omitempty"`
	MinSalary  int    `json:"min_salary,omitempty"`
	Skills     string `json:"skills,omitempty"`
	City       string `json:"city,omitempty"`
	WorkFormat string `json:"format,omitempty"`
}

func (f Filter) IsZero() bool {
	return f == Filter{}
}

// RequiredSkills splits the comma-separated skills field into lower-cased,
// trimmed, non-empty tokens.
func (f Filter) RequiredSkills() []string {
	if strings.TrimSpace(f.Skills) == "" {
		return nil
	}
	parts := strings.Split(strings.ToLower(f.Skills), ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Verdict holds the outcome of each predicate for one record.
type Verdict struct {
	Query      bool
	Category   bool
	Level      bool
	Salary     bool
	Skills     bool
	City       bool
	WorkFormat bool
}

func (v Verdict) All() bool {
	return v.Query && v.Category && v.Level && v.Salary && v.Skills && v.City && v.WorkFormat
}

type Predicates struct {
	taxonomy Taxonomy
}

func NewPredicates(t Taxonomy) *Predicates {
	return &Predicates{taxonomy: t}
}

// Explain evaluates every predicate of f against r. None of them
// short-circuits the others.
func (p *Predicates) Explain(r listing.Record, f Filter) Verdict {
	return Verdict{
		Query:      matchQuery(r, f.Query),
		Category:   p.matchCategory(r, f.Category),
		Level:      p.matchLevel(r, f.Level),
		Salary:     matchSalary(r, f.MinSalary),
		Skills:     matchSkills(r, f.RequiredSkills()),
		City:       containsFold(r.City, f.City),
		WorkFormat: p.matchFormat(r, f.WorkFormat),
	}
}

func (p *Predicates) Match(r listing.Record, f Filter) bool {
	return p.Explain(r, f).All()
}

// Apply returns the records that satisfy f, in their original order. The
// input slice is not modified.
func (p *Predicates) Apply(records []listing.Record, f Filter) []listing.Record {
	out := make([]listing.Record, 0, len(records))
	for _, r := range records {
		if p.Match(r, f) {
			out = append(out, r)
		}
	}
	return out
}

func matchQuery(r listing.Record, q string) bool {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return true
	}
	return strings.Contains(r.SearchText, q)
}

func (p *Predicates) matchCategory(r listing.Record, key string) bool {
	if strings.TrimSpace(key) == "" {
		return true
	}
	kws, ok := p.taxonomy.CategoryKeywords(key)
	if !ok {
		return strings.EqualFold(strings.TrimSpace(r.Category), strings.TrimSpace(key))
	}
	return anyKeyword(kws, r.Category, r.Title)
}

func (p *Predicates) matchLevel(r listing.Record, key string) bool {
	if strings.TrimSpace(key) == "" {
		return true
	}
	kws, ok := p.taxonomy.LevelKeywords(key)
	if !ok {
		return true
	}
	return anyKeyword(kws, r.Level, r.Experience)
}

func (p *Predicates) matchFormat(r listing.Record, key string) bool {
	if strings.TrimSpace(key) == "" {
		return true
	}
	kws, ok := p.taxonomy.FormatKeywords(key)
	if !ok {
		return true
	}
	return anyKeyword(kws, r.WorkFormat)
}

func matchSalary(r listing.Record, min int) bool {
	if min <= 0 {
		return true
	}
	return r.Salary >= min
}

// matchSkills requires every requested token to be a substring of at least
// one record skill.
func matchSkills(r listing.Record, required []string) bool {
	for _, want := range required {
		found := false
		for _, have := range r.Skills {
			if strings.Contains(strings.ToLower(have), want) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func containsFold(field, sub string) bool {
	sub = strings.ToLower(strings.TrimSpace(sub))
	if sub == "" {
		return true
	}
	return strings.Contains(strings.ToLower(field), sub)
}

func anyKeyword(keywords []string, fields ...string) bool {
	lowered := make([]string, len(fields))
	for i, f := range fields {
		lowered[i] = strings.ToLower(f)
	}
	for _, kw := range keywords {
		for _, f := range lowered {
			if strings.Contains(f, kw) {
				return true
			}
		}
	}
	return false
}

var defaultPredicates = NewPredicates(DefaultTaxonomy())

// Match evaluates f against r using the default taxonomy.
func (f Filter) Match(r listing.Record) bool {
	return defaultPredicates.Match(r, f)
}

func (f Filter) Explain(r listing.Record) Verdict {
	return defaultPredicates.Explain(r, f)
}

// FilterFunc applies f with the default taxonomy.
func FilterFunc(records []listing.Record, f Filter) []listing.Record {
	return defaultPredicates.Apply(records, f)
}
