package catalog

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"resourcebank/pkg/domain"
)

// Membership answers favorite lookups for Visible. *Favorites and TitleSet
// both satisfy it.
type Membership interface {
	Contains(title string) bool
}

// TitleSet is a plain Membership for callers holding titles in memory.
type TitleSet map[string]struct{}

// NewTitleSet builds a TitleSet from titles.
func NewTitleSet(titles ...string) TitleSet {
	s := make(TitleSet, len(titles))
	for _, t := range titles {
		s[t] = struct{}{}
	}
	return s
}

// Contains reports membership.
func (s TitleSet) Contains(title string) bool {
	_, ok := s[title]
	return ok
}

// Visible returns the records passing every active criterion, preserving
// input order. Predicates apply in order: favorites, type, competency, then
// case-insensitive search across every field. A nil favorites is empty.
func Visible(records []domain.Resource, favorites Membership, criteria domain.Criteria) []domain.Resource {
	if favorites == nil {
		favorites = TitleSet{}
	}
	// Casers carry state; one per call keeps Visible safe for concurrent use.
	lower := cases.Lower(language.Und)
	needle := lower.String(criteria.Search)
	out := make([]domain.Resource, 0, len(records))
	for _, r := range records {
		if criteria.FavoritesOnly && !favorites.Contains(r.Title) {
			continue
		}
		if criteria.Type != "" && r.Type != criteria.Type {
			continue
		}
		if criteria.Competency != "" && !r.HasCompetency(criteria.Competency) {
			continue
		}
		if needle != "" && !matches(r, needle, lower) {
			continue
		}
		out = append(out, r.Clone())
	}
	return out
}

func matches(r domain.Resource, needle string, lower cases.Caser) bool {
	for _, field := range r.Fields() {
		if strings.Contains(lower.String(field), needle) {
			return true
		}
	}
	for _, c := range r.Competencies {
		if strings.Contains(lower.String(c), needle) {
			return true
		}
	}
	return false
}

// DistinctTypes returns the type values present in records, deduplicated in
// order of first occurrence.
func DistinctTypes(records []domain.Resource) []string {
	seen := make(map[string]struct{}, len(records))
	out := make([]string, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.Type]; ok {
			continue
		}
		seen[r.Type] = struct{}{}
		out = append(out, r.Type)
	}
	return out
}

// Competencies returns the fixed competency vocabulary.
func Competencies() []string { return domain.Competencies() }
