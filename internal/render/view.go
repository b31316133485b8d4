package render

import (
	"net/url"
	"strconv"
	"strings"

	"talant-web/internal/domain/listing"
	"talant-web/internal/search"
	"talant-web/internal/usecase"

	"github.com/dustin/go-humanize"
)

const (
	maxSkillTags  = 5
	mainSkillTags = 3
	noSalary      = "Зарплата не указана"
)

type pageView struct {
	AppName     string
	Kind        string
	Heading     string
	LiveChannel bool
	Form        formView
	Results     resultsView
}

type formView struct {
	Action     string
	Filter     search.Filter
	MinSalary  string
	Categories []optionView
	Levels     []optionView
	Formats    []optionView
	Sorts      []optionView
	ShowLevel  bool
}

type optionView struct {
	Value    string
	Label    string
	Selected bool
}

type resultsView struct {
	Kind       string
	State      string
	Count      string
	LoadErr    string
	RefreshURL string
	Candidates []candidateCard
	Jobs       []jobCard
	Pager      pagerView
}

type candidateCard struct {
	ID          string
	Name        string
	Title       string
	Level       string
	LevelClass  string
	Experience  string
	Salary      string
	PhotoURL    string
	Skills      []skillTag
	MoreSkills  int
	City        string
	WorkFormat  string
	Education   string
	Gender      string
	Age         string
	Contact     string
	TelegramURL string
	Description string
}

type skillTag struct {
	Name string
	Main bool
}

type jobCard struct {
	ID          string
	Title       string
	JobType     string
	Company     string
	Salary      string
	Skills      []string
	Description string
	City        string
	Contact     string
	TelegramURL string
}

type pagerView struct {
	Visible  bool
	PrevHref string
	NextHref string
	HasPrev  bool
	HasNext  bool
	Items    []pagerItemView
}

type pagerItemView struct {
	Page     int
	Href     string
	Active   bool
	Ellipsis bool
}

func (r *Renderer) pageView(res usecase.BrowseResult) pageView {
	kind := string(res.Kind)
	heading := "Поиск кандидатов"
	if res.Kind == listing.KindJobs {
		heading = "Вакансии"
	}
	return pageView{
		AppName:     r.opts.AppName,
		Kind:        kind,
		Heading:     heading,
		LiveChannel: r.opts.LiveChannel,
		Form:        r.formView(res),
		Results:     r.resultsView(res),
	}
}

func (r *Renderer) formView(res usecase.BrowseResult) formView {
	f := res.Filter
	minSalary := ""
	if f.MinSalary > 0 {
		minSalary = strconv.Itoa(f.MinSalary)
	}
	return formView{
		Action:     "/" + string(res.Kind),
		Filter:     f,
		MinSalary:  minSalary,
		Categories: options(r.opts.Taxonomy.Categories, f.Category, "Все специальности"),
		Levels:     options(r.opts.Taxonomy.Levels, f.Level, "Любой уровень"),
		Formats:    options(r.opts.Taxonomy.Formats, f.WorkFormat, "Любой формат"),
		Sorts:      sortOptions(res.Sort),
		ShowLevel:  res.Kind == listing.KindCandidates,
	}
}

func options(entries []search.Entry, selected, anyLabel string) []optionView {
	selected = strings.ToLower(strings.TrimSpace(selected))
	out := make([]optionView, 0, len(entries)+1)
	out = append(out, optionView{Value: "", Label: anyLabel, Selected: selected == ""})
	for _, e := range entries {
		out = append(out, optionView{Value: e.Key, Label: e.DisplayName, Selected: e.Key == selected})
	}
	return out
}

var sortLabels = []struct {
	key   search.SortKey
	label string
}{
	{search.SortRelevance, "По релевантности"},
	{search.SortSalaryDesc, "Сначала с высокой зарплатой"},
	{search.SortSalaryAsc, "Сначала с низкой зарплатой"},
	{search.SortExperience, "По опыту"},
}

func sortOptions(current search.SortKey) []optionView {
	out := make([]optionView, 0, len(sortLabels))
	for _, s := range sortLabels {
		out = append(out, optionView{Value: string(s.key), Label: s.label, Selected: s.key == current})
	}
	return out
}

func (r *Renderer) resultsView(res usecase.BrowseResult) resultsView {
	v := resultsView{
		Kind:       string(res.Kind),
		Count:      countMessage(res.Kind, res.Total),
		RefreshURL: "/" + string(res.Kind) + "/refresh",
	}
	switch {
	case res.LoadErr != nil:
		v.State = "error"
		v.LoadErr = "Не удалось загрузить данные. Попробуйте ещё раз."
		return v
	case res.Total == 0:
		v.State = "empty"
		return v
	default:
		v.State = "results"
	}

	for _, rec := range res.Items {
		if res.Kind == listing.KindJobs {
			v.Jobs = append(v.Jobs, newJobCard(rec))
			continue
		}
		v.Candidates = append(v.Candidates, r.newCandidateCard(rec))
	}
	v.Pager = newPagerView(res)
	return v
}

func countMessage(kind listing.Kind, n int) string {
	label := "Найдено кандидатов: "
	if kind == listing.KindJobs {
		label = "Найдено объявлений: "
	}
	return label + strings.ReplaceAll(humanize.Comma(int64(n)), ",", " ")
}

func (r *Renderer) newCandidateCard(rec listing.Record) candidateCard {
	c := candidateCard{
		ID:          rec.ID,
		Name:        rec.Name,
		Title:       rec.Title,
		Level:       orDefault(rec.Level, listing.NotSpecifiedMasc),
		LevelClass:  listing.LevelClass(rec.Level),
		Experience:  orDefault(rec.Experience, listing.NotSpecified),
		Salary:      orDefault(rec.SalaryText, listing.NotSpecified),
		PhotoURL:    r.opts.PlaceholderAvatar,
		City:        orDefault(rec.City, listing.NotSpecifiedMasc),
		WorkFormat:  orDefault(rec.WorkFormat, listing.NotSpecifiedMasc),
		Education:   strings.TrimSpace(rec.Education),
		Gender:      orDefault(rec.Gender, listing.NotSpecifiedMasc),
		Age:         orDefault(rec.Age, listing.NotSpecifiedMasc),
		Contact:     rec.Contact,
		TelegramURL: rec.TelegramURL(),
		Description: orDefault(rec.Description, listing.NoDescription),
	}
	if rec.Photo != "" {
		c.PhotoURL = "/photos/" + url.PathEscape(rec.Photo)
	}
	for i, s := range rec.Skills {
		if i >= maxSkillTags {
			break
		}
		c.Skills = append(c.Skills, skillTag{Name: s, Main: i < mainSkillTags})
	}
	if len(rec.Skills) > maxSkillTags {
		c.MoreSkills = len(rec.Skills) - maxSkillTags
	}
	return c
}

func newJobCard(rec listing.Record) jobCard {
	return jobCard{
		ID:          rec.ID,
		Title:       rec.Title,
		JobType:     orDefault(rec.WorkFormat, listing.NotSpecified),
		Company:     orDefault(rec.Company, listing.NoCompany),
		Salary:      orDefault(rec.SalaryText, noSalary),
		Skills:      rec.Skills,
		Description: orDefault(rec.Description, listing.NoDescription),
		City:        orDefault(rec.City, listing.NoCity),
		Contact:     rec.Contact,
		TelegramURL: rec.TelegramURL(),
	}
}

func orDefault(s, placeholder string) string {
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}

// QueryValues encodes a filter and sort the way the HTML form submits them.
func QueryValues(f search.Filter, sort search.SortKey) url.Values {
	q := url.Values{}
	set := func(k, v string) {
		if v = strings.TrimSpace(v); v != "" {
			q.Set(k, v)
		}
	}
	set("q", f.Query)
	set("category", f.Category)
	set("level", f.Level)
	if f.MinSalary > 0 {
		q.Set("min_salary", strconv.Itoa(f.MinSalary))
	}
	set("skills", f.Skills)
	set("city", f.City)
	set("format", f.WorkFormat)
	if sort != "" && sort != search.SortRelevance {
		q.Set("sort", string(sort))
	}
	return q
}

func newPagerView(res usecase.BrowseResult) pagerView {
	p := res.Pager
	if !p.Visible() {
		return pagerView{}
	}
	base := QueryValues(res.Filter, res.Sort)
	href := func(page int) string {
		q := url.Values{}
		for k, v := range base {
			q[k] = v
		}
		q.Set("page", strconv.Itoa(page))
		q.Set("from", strconv.Itoa(p.Current))
		return "/" + string(res.Kind) + "?" + q.Encode()
	}

	v := pagerView{
		Visible:  true,
		HasPrev:  p.HasPrev,
		HasNext:  p.HasNext,
		PrevHref: href(p.Current - 1),
		NextHref: href(p.Current + 1),
	}
	for _, it := range p.Items {
		item := pagerItemView{Page: it.Page, Active: it.Active, Ellipsis: it.Ellipsis}
		if !it.Ellipsis {
			item.Href = href(it.Page)
		}
		v.Items = append(v.Items, item)
	}
	return v
}
