package search

import (
	"fmt"
	"reflect"
	"testing"

	"talant-web/internal/domain/listing"
)

func candidate(id, name, job, salary, skills, city, jobType, exp string) listing.Record {
	return listing.NewCandidate(listing.CandidateFields{
		ID:         id,
		Name:       name,
		Job:        job,
		Experience: exp,
		Age:        "30",
		Salary:     salary,
		Skills:     skills,
		City:       city,
		JobType:    jobType,
	})
}

func fixture() []listing.Record {
	return []listing.Record{
		candidate("1", "Анна Смирнова", "frontend", "150000", "React, TypeScript, Node.js", "Москва", "удаленная работа", "опыт 3 года"),
		candidate("2", "Иван Петров", "backend", "200000", "Go, PostgreSQL", "Санкт-Петербург", "полный день", "5 лет опыта"),
		candidate("3", "Мария Иванова", "designer", "90000", "Figma, Photoshop", "Казань", "гибридный график", "опыт 1 год"),
		candidate("4", "Олег Кузнецов", "fullstack", "", "react, node, docker", "Москва", "фриланс", ""),
	}
}

func ids(rs []listing.Record) []string {
	out := make([]string, 0, len(rs))
	for _, r := range rs {
		out = append(out, r.ID)
	}
	return out
}

func TestPredicates_SkillsRequireEverySubstring(t *testing.T) {
	p := NewPredicates(DefaultTaxonomy())
	got := ids(p.Apply(fixture(), Filter{Skills: "react, node"}))
	want := []string{"1", "4"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	got = ids(p.Apply(fixture(), Filter{Skills: "REACT, Docker"}))
	if !reflect.DeepEqual(got, []string{"4"}) {
		t.Fatalf("expected case-insensitive match on 4, got %v", got)
	}
}

func TestPredicates_SalaryThresholdUsesDerivedSalary(t *testing.T) {
	p := NewPredicates(DefaultTaxonomy())
	r := fixture()[0]
	if r.SalaryText != "от 150 000 ₽" || r.Salary != 150 {
		t.Fatalf("unexpected derived salary %q -> %d", r.SalaryText, r.Salary)
	}
	if p.Match(r, Filter{MinSalary: 100000}) {
		t.Fatalf("expected threshold 100000 to exclude derived salary 150")
	}
	if !p.Match(r, Filter{MinSalary: 150}) {
		t.Fatalf("expected greater-or-equal to include the boundary")
	}
}

func TestPredicates_EachPredicateIndependently(t *testing.T) {
	p := NewPredicates(DefaultTaxonomy())
	r := fixture()[0]

	cases := []struct {
		name   string
		filter Filter
		field  func(Verdict) bool
		want   bool
	}{
		{"query hit", Filter{Query: "анна"}, func(v Verdict) bool { return v.Query }, true},
		{"query miss", Filter{Query: "python"}, func(v Verdict) bool { return v.Query }, false},
		{"category hit", Filter{Category: "frontend"}, func(v Verdict) bool { return v.Category }, true},
		{"category miss", Filter{Category: "qa"}, func(v Verdict) bool { return v.Category }, false},
		{"level hit", Filter{Level: "middle"}, func(v Verdict) bool { return v.Level }, true},
		{"level miss", Filter{Level: "junior"}, func(v Verdict) bool { return v.Level }, false},
		{"level unknown key", Filter{Level: "guru"}, func(v Verdict) bool { return v.Level }, true},
		{"salary miss", Filter{MinSalary: 151}, func(v Verdict) bool { return v.Salary }, false},
		{"skills hit", Filter{Skills: "type"}, func(v Verdict) bool { return v.Skills }, true},
		{"city hit", Filter{City: "моск"}, func(v Verdict) bool { return v.City }, true},
		{"city miss", Filter{City: "казань"}, func(v Verdict) bool { return v.City }, false},
		{"format hit", Filter{WorkFormat: "remote"}, func(v Verdict) bool { return v.WorkFormat }, true},
		{"format miss", Filter{WorkFormat: "office"}, func(v Verdict) bool { return v.WorkFormat }, false},
	}

	for _, tc := range cases {
		v := p.Explain(r, tc.filter)
		if got := tc.field(v); got != tc.want {
			t.Fatalf("%s: expected %v, got %v", tc.name, tc.want, got)
		}
		if v.All() != tc.want {
			t.Fatalf("%s: single active predicate should decide the match", tc.name)
		}
	}
}

func TestPredicates_NoShortCircuit(t *testing.T) {
	p := NewPredicates(DefaultTaxonomy())
	v := p.Explain(fixture()[0], Filter{Query: "python", City: "москва", Skills: "react"})
	if v.Query {
		t.Fatalf("expected query predicate to fail")
	}
	if !v.City || !v.Skills {
		t.Fatalf("expected later predicates to be evaluated, got %+v", v)
	}
	if v.All() {
		t.Fatalf("expected overall mismatch")
	}
}

func TestPredicates_EmptyFilterMatchesAll(t *testing.T) {
	p := NewPredicates(DefaultTaxonomy())
	if got := p.Apply(fixture(), Filter{}); len(got) != len(fixture()) {
		t.Fatalf("expected all records, got %d", len(got))
	}
	if got := p.Apply(nil, Filter{Query: "x"}); len(got) != 0 {
		t.Fatalf("expected empty output for nil input")
	}
}

func TestPredicates_Idempotent(t *testing.T) {
	p := NewPredicates(DefaultTaxonomy())
	filters := []Filter{
		{},
		{Query: "ов"},
		{Skills: "react"},
		{City: "москва", WorkFormat: "remote"},
		{Category: "backend", MinSalary: 100},
	}
	for _, f := range filters {
		once := p.Apply(fixture(), f)
		twice := p.Apply(once, f)
		if !reflect.DeepEqual(ids(once), ids(twice)) {
			t.Fatalf("filter %+v not idempotent: %v vs %v", f, ids(once), ids(twice))
		}
	}
}

func TestFilter_DefaultTaxonomyHelpers(t *testing.T) {
	f := Filter{Category: "frontend", Skills: "react"}
	got := ids(FilterFunc(fixture(), f))
	if !reflect.DeepEqual(got, []string{"1"}) {
		t.Fatalf("expected [1], got %v", got)
	}
	if !f.Match(fixture()[0]) || f.Match(fixture()[3]) {
		t.Fatalf("Match disagrees with FilterFunc")
	}
	v := f.Explain(fixture()[3])
	if v.Category || !v.Skills {
		t.Fatalf("unexpected verdict %+v", v)
	}
	once := FilterFunc(fixture(), f)
	if !reflect.DeepEqual(ids(FilterFunc(once, f)), got) {
		t.Fatalf("FilterFunc not idempotent")
	}
}

func TestPredicates_UnknownCategoryComparesRawValue(t *testing.T) {
	p := NewPredicates(DefaultTaxonomy())
	jobs := []listing.Record{
		listing.NewJob(listing.JobFields{ID: "a", Title: "Go dev", JobType: "remote"}),
		listing.NewJob(listing.JobFields{ID: "b", Title: "PHP dev", JobType: "full"}),
	}
	got := ids(p.Apply(jobs, Filter{Category: "FULL"}))
	if !reflect.DeepEqual(got, []string{"b"}) {
		t.Fatalf("expected exact job type match, got %v", got)
	}
}

func TestSort_SalaryDirectionsAreReversed(t *testing.T) {
	rs := fixture()[:3]
	desc := ids(Sort(rs, SortSalaryDesc))
	asc := ids(Sort(rs, SortSalaryAsc))
	if len(desc) != len(asc) {
		t.Fatalf("length mismatch")
	}
	for i := range desc {
		if desc[i] != asc[len(asc)-1-i] {
			t.Fatalf("expected reversed order, got desc=%v asc=%v", desc, asc)
		}
	}
	if !reflect.DeepEqual(desc, []string{"2", "1", "3"}) {
		t.Fatalf("unexpected desc order %v", desc)
	}
}

func TestSort_RelevanceKeepsArrivalOrder(t *testing.T) {
	rs := fixture()
	for _, k := range []SortKey{SortRelevance, SortDate, ParseSortKey("bogus")} {
		if got := ids(Sort(rs, k)); !reflect.DeepEqual(got, ids(rs)) {
			t.Fatalf("key %q reordered records: %v", k, got)
		}
	}
}

func TestSort_DoesNotMutateInput(t *testing.T) {
	rs := fixture()
	before := ids(rs)
	_ = Sort(rs, SortSalaryDesc)
	if !reflect.DeepEqual(before, ids(rs)) {
		t.Fatalf("input mutated")
	}
}

func TestSort_ExperienceDescendingStable(t *testing.T) {
	rs := []listing.Record{
		{ID: "a", Experience: "3 года"},
		{ID: "b", Experience: "5 лет"},
		{ID: "c", Experience: "3 года"},
		{ID: "d", Experience: ""},
	}
	got := ids(Sort(rs, SortExperience))
	if !reflect.DeepEqual(got, []string{"b", "a", "c", "d"}) {
		t.Fatalf("unexpected order %v", got)
	}
}

func numbered(n int) []listing.Record {
	out := make([]listing.Record, n)
	for i := range out {
		out[i] = listing.Record{ID: fmt.Sprintf("r%02d", i+1)}
	}
	return out
}

func TestPaginate_TwelveRecords(t *testing.T) {
	rs := numbered(12)
	total := TotalPages(len(rs), DefaultPageSize)
	if total != 2 {
		t.Fatalf("expected 2 pages, got %d", total)
	}
	if got := Paginate(rs, 1, DefaultPageSize); len(got) != 10 {
		t.Fatalf("expected 10 on page 1, got %d", len(got))
	}
	if got := Paginate(rs, 2, DefaultPageSize); len(got) != 2 {
		t.Fatalf("expected 2 on page 2, got %d", len(got))
	}
	pager := Window(2, total)
	if pager.HasNext {
		t.Fatalf("expected next disabled on last page")
	}
	if !pager.HasPrev {
		t.Fatalf("expected prev enabled on page 2")
	}
}

func TestPaginate_ConcatenationReproducesSequence(t *testing.T) {
	for _, n := range []int{0, 1, 9, 10, 11, 37} {
		rs := numbered(n)
		var all []string
		for p := 1; p <= TotalPages(n, 10); p++ {
			all = append(all, ids(Paginate(rs, p, 10))...)
		}
		if len(all) != n {
			t.Fatalf("n=%d: expected %d records, got %d", n, n, len(all))
		}
		seen := map[string]bool{}
		for i, id := range all {
			if seen[id] {
				t.Fatalf("n=%d: duplicate %s", n, id)
			}
			seen[id] = true
			if id != rs[i].ID {
				t.Fatalf("n=%d: order broken at %d", n, i)
			}
		}
	}
}

func TestGoto_OutOfRangeIsNoop(t *testing.T) {
	if got := Goto(2, 0, 4); got != 2 {
		t.Fatalf("expected to stay on 2, got %d", got)
	}
	if got := Goto(2, 5, 4); got != 2 {
		t.Fatalf("expected to stay on 2, got %d", got)
	}
	if got := Goto(2, 4, 4); got != 4 {
		t.Fatalf("expected 4, got %d", got)
	}
	if got := Step(4, 1, 4); got != 4 {
		t.Fatalf("expected no wraparound, got %d", got)
	}
	if got := Step(1, -1, 4); got != 1 {
		t.Fatalf("expected no wraparound, got %d", got)
	}
}

func pagerString(p Pager) string {
	s := ""
	for _, it := range p.Items {
		switch {
		case it.Ellipsis:
			s += "… "
		case it.Active:
			s += fmt.Sprintf("[%d] ", it.Page)
		default:
			s += fmt.Sprintf("%d ", it.Page)
		}
	}
	return s
}

func TestWindow(t *testing.T) {
	cases := []struct {
		current, total int
		want           string
	}{
		{1, 1, ""},
		{1, 3, "[1] 2 3 "},
		{1, 10, "[1] 2 3 4 5 … 10 "},
		{5, 10, "1 … 3 4 [5] 6 7 … 10 "},
		{10, 10, "1 … 6 7 8 9 [10] "},
		{4, 6, "1 2 3 [4] 5 6 "},
		{3, 7, "1 2 [3] 4 5 … 7 "},
	}
	for _, tc := range cases {
		got := pagerString(Window(tc.current, tc.total))
		if got != tc.want {
			t.Fatalf("Window(%d,%d) = %q, want %q", tc.current, tc.total, got, tc.want)
		}
	}
	if Window(1, 1).Visible() {
		t.Fatalf("expected no controls for a single page")
	}
}
