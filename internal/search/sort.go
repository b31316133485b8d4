package search

import (
	"sort"
	"strings"

	"talant-web/internal/domain/listing"
)

type SortKey string

const (
	SortRelevance  SortKey = "relevance"
	SortSalaryAsc  SortKey = "salary_asc"
	SortSalaryDesc SortKey = "salary_desc"
	SortExperience SortKey = "experience"
	SortDate       SortKey = "date"
)

// ParseSortKey maps a raw sort value to a key. Unknown values fall back to
// relevance.
func ParseSortKey(s string) SortKey {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case SortSalaryAsc, SortSalaryDesc, SortExperience, SortDate:
		return k
	default:
		return SortRelevance
	}
}

// Sort returns a new ordering of records. Relevance and date keep arrival
// order; ties keep arrival order for every key.
func Sort(records []listing.Record, key SortKey) []listing.Record {
	out := make([]listing.Record, len(records))
	copy(out, records)

	var less func(i, j int) bool
	switch key {
	case SortSalaryAsc:
		less = func(i, j int) bool { return out[i].Salary < out[j].Salary }
	case SortSalaryDesc:
		less = func(i, j int) bool { return out[i].Salary > out[j].Salary }
	case SortExperience:
		less = func(i, j int) bool {
			return listing.ExperienceValue(out[i].Experience) > listing.ExperienceValue(out[j].Experience)
		}
	default:
		return out
	}

	sort.SliceStable(out, less)
	return out
}
