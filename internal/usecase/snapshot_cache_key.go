package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"

	"talant-web/internal/domain/listing"
	"talant-web/internal/search"
)

const snapshotKeyPrefix = "listing:snapshot:"

func SnapshotCacheKey(kind listing.Kind) string {
	return snapshotKeyPrefix + string(kind)
}

// SnapshotCachePattern matches every snapshot key.
func SnapshotCachePattern() string {
	return snapshotKeyPrefix + "*"
}

type queryFingerprintInput struct {
	Kind       string   `json:"kind"`
	Query      string   `json:"q"`
	Category   string   `json:"category"`
	Level      string   `json:"level"`
	MinSalary  int      `json:"min_salary"`
	Skills     []string `json:"skills"`
	City       string   `json:"city"`
	WorkFormat string   `json:"format"`
	Sort       string   `json:"sort"`
}

// normalizeSearchValue mirrors the predicates: surrounding space and case
// are ignored, inner spacing is matched literally.
func normalizeSearchValue(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// QueryFingerprint identifies a filter and sort combination. Inputs that
// differ only in case or surrounding space yield the same fingerprint.
func QueryFingerprint(kind listing.Kind, f search.Filter, sort search.SortKey) string {
	in := queryFingerprintInput{
		Kind:       string(kind),
		Query:      normalizeSearchValue(f.Query),
		Category:   normalizeSearchValue(f.Category),
		Level:      normalizeSearchValue(f.Level),
		MinSalary:  f.MinSalary,
		Skills:     f.RequiredSkills(),
		City:       normalizeSearchValue(f.City),
		WorkFormat: normalizeSearchValue(f.WorkFormat),
		Sort:       string(search.ParseSortKey(string(sort))),
	}
	if in.MinSalary < 0 {
		in.MinSalary = 0
	}

	b, _ := json.Marshal(in)
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}
