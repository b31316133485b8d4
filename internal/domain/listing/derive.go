package listing

import (
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

var firstIntRe = regexp.MustCompile(`\d+`)

// ParseSalary returns the first integer embedded in a display salary string,
// or 0 when there is none. Digit groups separated by spaces are not joined,
// so "от 150 000 ₽" yields 150.
func ParseSalary(s string) int {
	return firstInt(s)
}

// ExperienceValue is the first integer of an experience text ("5 лет" -> 5).
func ExperienceValue(s string) int {
	return firstInt(s)
}

func firstInt(s string) int {
	m := firstIntRe.FindString(s)
	if m == "" {
		return 0
	}
	v, err := strconv.Atoi(m)
	if err != nil {
		return 0
	}
	return v
}

// FormatSalary turns a numeric backend salary into the "от 150 000 ₽" form.
// Values that are not plain integers are returned trimmed and unchanged.
func FormatSalary(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return raw
	}
	grouped := strings.ReplaceAll(humanize.Comma(n), ",", " ")
	return "от " + grouped + " ₽"
}

// SplitSkills parses comma-joined skill text into trimmed, non-empty entries.
func SplitSkills(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
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

var jobTitles = map[string]string{
	"frontend":  "Frontend Developer",
	"backend":   "Backend Developer",
	"fullstack": "Fullstack Developer",
	"mobile":    "Mobile Developer",
	"designer":  "UX/UI Designer",
	"analyst":   "Data Analyst",
	"devops":    "DevOps Engineer",
	"qa":        "QA Engineer",
	"manager":   "Project Manager",
	"marketing": "Marketing Specialist",
}

func TitleFromJob(job string) string {
	if t, ok := jobTitles[strings.ToLower(strings.TrimSpace(job))]; ok {
		return t
	}
	return job
}

// RussianYears picks the plural form of "год" for n.
func RussianYears(n int) string {
	if n < 0 {
		n = -n
	}
	switch {
	case n%10 == 1 && n%100 != 11:
		return "год"
	case n%10 >= 2 && n%10 <= 4 && (n%100 < 12 || n%100 > 14):
		return "года"
	default:
		return "лет"
	}
}

// ExperienceFromAge estimates experience as years since 22. The age is the
// first number in the text ("30 лет" -> 30); ages without one count as 25.
func ExperienceFromAge(age string) string {
	a := firstInt(age)
	if a == 0 {
		a = 25
	}
	years := a - 22
	if years < 0 {
		years = 0
	}
	return strconv.Itoa(years) + " " + RussianYears(years)
}

func LevelFromExperience(exp string) string {
	if strings.TrimSpace(exp) == "" {
		return NotSpecifiedMasc
	}
	if strings.Contains(exp, "опыт") || strings.Contains(exp, "год") {
		switch {
		case strings.Contains(exp, "1") || strings.Contains(exp, "младш"):
			return "Junior"
		case strings.Contains(exp, "3") || strings.Contains(exp, "средн"):
			return "Middle"
		case strings.Contains(exp, "5") || strings.Contains(exp, "старш"):
			return "Senior"
		}
	}
	return exp
}

var workFormats = map[string]string{
	"полный день":      "Офис",
	"удаленная работа": "Удалённо",
	"гибридный график": "Гибридный",
	"фриланс":          "Удалённо",
}

func WorkFormatFromJobType(jobType string) string {
	if f, ok := workFormats[strings.TrimSpace(jobType)]; ok {
		return f
	}
	if strings.TrimSpace(jobType) == "" {
		return NotSpecifiedMasc
	}
	return jobType
}

var jobTypeDisplay = map[string]string{
	"full":       "Полная занятость",
	"part":       "Частичная занятость",
	"remote":     "Удалённая работа",
	"internship": "Стажировка",
}

func JobTypeDisplay(jobType string) string {
	if d, ok := jobTypeDisplay[strings.TrimSpace(jobType)]; ok {
		return d
	}
	return NotSpecified
}

// LevelClass maps a level label to the badge style used by candidate cards.
func LevelClass(level string) string {
	l := strings.ToLower(level)
	switch {
	case strings.Contains(l, "senior") || strings.Contains(l, "старш"):
		return "senior"
	case strings.Contains(l, "middle") || strings.Contains(l, "средн"):
		return "middle"
	case strings.Contains(l, "junior") || strings.Contains(l, "младш"):
		return "junior"
	case strings.Contains(l, "intern") || strings.Contains(l, "стажёр"):
		return "intern"
	case strings.Contains(l, "lead") || strings.Contains(l, "руковод"):
		return "lead"
	default:
		return ""
	}
}

type CandidateFields struct {
	ID          string
	Name        string
	Job         string
	Experience  string
	Age         string
	Salary      string
	Skills      string
	City        string
	JobType     string
	School      string
	Description string
	Photo       string
	Gender      string
	Telegram    string
}

func NewCandidate(f CandidateFields) Record {
	exp := strings.TrimSpace(f.Experience)
	if exp == "" {
		exp = ExperienceFromAge(f.Age)
	}
	salaryText := FormatSalary(f.Salary)
	if salaryText == "" {
		salaryText = NotSpecified
	}
	skills := SplitSkills(f.Skills)
	title := TitleFromJob(f.Job)

	r := Record{
		ID:          strings.TrimSpace(f.ID),
		Kind:        KindCandidates,
		Name:        f.Name,
		Title:       title,
		Category:    f.Job,
		Level:       LevelFromExperience(f.Experience),
		Experience:  exp,
		Description: f.Description,
		SalaryText:  salaryText,
		Salary:      ParseSalary(salaryText),
		Skills:      skills,
		City:        f.City,
		WorkFormat:  WorkFormatFromJobType(f.JobType),
		Education:   f.School,
		Gender:      f.Gender,
		Age:         f.Age,
		Photo:       photoBase(f.Photo),
		Contact:     strings.TrimPrefix(strings.TrimSpace(f.Telegram), "@"),
	}
	r.SearchText = strings.ToLower(strings.Join([]string{
		r.Name, f.Job, r.Title, r.Description, strings.Join(skills, " "),
	}, " "))
	return r
}

type JobFields struct {
	ID          string
	Title       string
	Company     string
	Salary      string
	Skills      string
	Description string
	Location    string
	JobType     string
	Telegram    string
}

func NewJob(f JobFields) Record {
	r := Record{
		ID:          strings.TrimSpace(f.ID),
		Kind:        KindJobs,
		Name:        f.Title,
		Title:       f.Title,
		Category:    f.JobType,
		Company:     f.Company,
		Description: f.Description,
		SalaryText:  f.Salary,
		Salary:      ParseSalary(f.Salary),
		Skills:      SplitSkills(f.Skills),
		City:        f.Location,
		WorkFormat:  JobTypeDisplay(f.JobType),
		Contact:     strings.TrimPrefix(strings.TrimSpace(f.Telegram), "@"),
	}
	r.SearchText = strings.ToLower(r.Title + " " + r.Company)
	return r
}

// photoBase keeps only the file name of a stored photo path ("photos/a.png").
func photoBase(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return ""
	}
	return path.Base(p)
}
