package search

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Entry is one selectable filter value and the keywords that identify it.
type Entry struct {
	Key         string   `yaml:"key"`
	DisplayName string   `yaml:"display_name"`
	Keywords    []string `yaml:"keywords"`
}

// Taxonomy holds the keyword tables behind the category, level and
// work-format filters.
type Taxonomy struct {
	Categories []Entry `yaml:"categories"`
	Levels     []Entry `yaml:"levels"`
	Formats    []Entry `yaml:"formats"`
}

func DefaultTaxonomy() Taxonomy {
	return Taxonomy{
		Categories: []Entry{
			{Key: "frontend", DisplayName: "Frontend", Keywords: []string{"frontend", "front-end", "javascript", "react", "vue", "angular"}},
			{Key: "backend", DisplayName: "Backend", Keywords: []string{"backend", "back-end", "python", "java", "php", "node", "django", "spring"}},
			{Key: "fullstack", DisplayName: "Fullstack", Keywords: []string{"fullstack", "full-stack"}},
			{Key: "mobile", DisplayName: "Mobile", Keywords: []string{"mobile", "android", "ios", "react native", "flutter"}},
			{Key: "designer", DisplayName: "Дизайн", Keywords: []string{"designer", "дизайн", "ui", "ux", "figma"}},
			{Key: "analyst", DisplayName: "Аналитика", Keywords: []string{"analyst", "аналитик", "data", "данных"}},
			{Key: "devops", DisplayName: "DevOps", Keywords: []string{"devops", "sre", "инженер"}},
			{Key: "qa", DisplayName: "QA", Keywords: []string{"qa", "тестировщик", "тестирование", "quality"}},
			{Key: "manager", DisplayName: "Менеджмент", Keywords: []string{"manager", "менеджер", "project", "продукта"}},
			{Key: "marketing", DisplayName: "Маркетинг", Keywords: []string{"marketing", "маркетинг", "маркетолог"}},
		},
		Levels: []Entry{
			{Key: "intern", DisplayName: "Стажёр", Keywords: []string{"стажёр", "intern", "trainee"}},
			{Key: "junior", DisplayName: "Junior", Keywords: []string{"junior", "младший"}},
			{Key: "middle", DisplayName: "Middle", Keywords: []string{"middle", "средний"}},
			{Key: "senior", DisplayName: "Senior", Keywords: []string{"senior", "старший"}},
			{Key: "lead", DisplayName: "Lead", Keywords: []string{"lead", "ведущий", "руководитель"}},
		},
		Formats: []Entry{
			{Key: "office", DisplayName: "Офис", Keywords: []string{"офис", "office"}},
			{Key: "remote", DisplayName: "Удалённо", Keywords: []string{"удалённо", "remote", "удаленно"}},
			{Key: "hybrid", DisplayName: "Гибрид", Keywords: []string{"гибридный", "гибрид", "hybrid"}},
		},
	}
}

// LoadTaxonomy reads a YAML override file. Groups present in the file
// replace the defaults; absent groups keep them. An empty path returns the
// defaults.
func LoadTaxonomy(path string) (Taxonomy, error) {
	t := DefaultTaxonomy()
	path = strings.TrimSpace(path)
	if path == "" {
		return t, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return Taxonomy{}, fmt.Errorf("read taxonomy: %w", err)
	}

	var override Taxonomy
	if err := yaml.Unmarshal(b, &override); err != nil {
		return Taxonomy{}, fmt.Errorf("parse taxonomy %s: %w", path, err)
	}

	if len(override.Categories) > 0 {
		t.Categories = normalizeEntries(override.Categories)
	}
	if len(override.Levels) > 0 {
		t.Levels = normalizeEntries(override.Levels)
	}
	if len(override.Formats) > 0 {
		t.Formats = normalizeEntries(override.Formats)
	}
	return t, nil
}

func normalizeEntries(in []Entry) []Entry {
	out := make([]Entry, 0, len(in))
	for _, e := range in {
		e.Key = strings.ToLower(strings.TrimSpace(e.Key))
		if e.Key == "" {
			continue
		}
		kws := make([]string, 0, len(e.Keywords))
		for _, k := range e.Keywords {
			k = strings.ToLower(strings.TrimSpace(k))
			if k == "" {
				continue
			}
			kws = append(kws, k)
		}
		e.Keywords = kws
		if e.DisplayName == "" {
			e.DisplayName = e.Key
		}
		out = append(out, e)
	}
	return out
}

func lookup(entries []Entry, key string) ([]string, bool) {
	key = strings.ToLower(strings.TrimSpace(key))
	for _, e := range entries {
		if e.Key == key {
			return e.Keywords, true
		}
	}
	return nil, false
}

func (t Taxonomy) CategoryKeywords(key string) ([]string, bool) { return lookup(t.Categories, key) }
func (t Taxonomy) LevelKeywords(key string) ([]string, bool)    { return lookup(t.Levels, key) }
func (t Taxonomy) FormatKeywords(key string) ([]string, bool)   { return lookup(t.Formats, key) }
