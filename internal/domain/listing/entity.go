package listing

import (
	"errors"
	"strings"
)

type Kind string

const (
	KindCandidates Kind = "candidates"
	KindJobs       Kind = "jobs"
)

var ErrUnknownKind = errors.New("unknown listing kind")

func ParseKind(s string) (Kind, error) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindCandidates:
		return KindCandidates, nil
	case KindJobs:
		return KindJobs, nil
	default:
		return "", ErrUnknownKind
	}
}

// Placeholders rendered in place of absent fields.
const (
	NotSpecified     = "Не указано"
	NotSpecifiedMasc = "Не указан"
	NoDescription    = "Описание отсутствует"
	NoCompany        = "Компания не указана"
	NoCity           = "Город не указан"
	NoSkills         = "Навыки не указаны"
)

// Record is one candidate profile or job posting of a snapshot. Salary is
// always derived from SalaryText when the record is built.
type Record struct {
	ID          string
	Kind        Kind
	Name        string
	Title       string
	Category    string
	Company     string
	Level       string
	Experience  string
	Description string
	SalaryText  string
	Salary      int
	Skills      []string
	City        string
	WorkFormat  string
	Education   string
	Gender      string
	Age         string
	Photo       string
	Contact     string
	SearchText  string
}

// TelegramURL returns the chat link for the record's contact handle, or ""
// when none is set.
func (r Record) TelegramURL() string {
	h := strings.TrimPrefix(strings.TrimSpace(r.Contact), "@")
	if h == "" {
		return ""
	}
	return "https://t.me/" + h
}
