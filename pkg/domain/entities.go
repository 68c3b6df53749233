// Package domain defines the catalog record types, the built-in seed data and
// the validation rules applied to admin submissions.
package domain

import "strings"

// Known resource type tags. Type is free text; these are the values the
// catalog ships with or that presentation knows an icon for.
const (
	TypeGuide     = "Guide"
	TypeVideo     = "Vidéo"
	TypeTraining  = "Formation"
	TypePodcast   = "Balado"
	TypeReading   = "Lecture"
	competencySep = ","
)

// Resource is one catalog entry describing a learning resource. Title acts
// as the natural identifier; there is no surrogate key.
type Resource struct {
	Title        string   `json:"title"`
	Source       string   `json:"source"`
	Competencies []string `json:"competencies"`
	Theme        string   `json:"theme"`
	Type         string   `json:"type"`
	Format       string   `json:"format"`
	Link         string   `json:"link"`
}

// Clone returns a deep copy of the resource. A nil competency sequence is
// normalised to an empty one.
func (r Resource) Clone() Resource {
	out := r
	out.Competencies = make([]string, len(r.Competencies))
	copy(out.Competencies, r.Competencies)
	return out
}

// Fields returns the scalar string fields in persisted order, excluding
// competencies.
func (r Resource) Fields() []string {
	return []string{r.Title, r.Source, r.Theme, r.Type, r.Format, r.Link}
}

// HasCompetency reports whether c is an exact element of the competency sequence.
func (r Resource) HasCompetency(c string) bool {
	for _, existing := range r.Competencies {
		if existing == c {
			return true
		}
	}
	return false
}

// Candidate is the raw admin form. Competencies is comma separated free text.
type Candidate struct {
	Title        string `json:"title"`
	Source       string `json:"source"`
	Competencies string `json:"competencies"`
	Theme        string `json:"theme"`
	Type         string `json:"type"`
	Format       string `json:"format"`
	Link         string `json:"link"`
}

// Resource converts the candidate into a record. It performs no validation;
// callers evaluate Rules first.
func (c Candidate) Resource() Resource {
	return Resource{
		Title:        c.Title,
		Source:       c.Source,
		Competencies: SplitCompetencies(c.Competencies),
		Theme:        c.Theme,
		Type:         c.Type,
		Format:       c.Format,
		Link:         c.Link,
	}
}

// SplitCompetencies splits free text on commas and trims each piece. A
// comma-free value yields a single element, so "" yields [""].
func SplitCompetencies(text string) []string {
	parts := strings.Split(text, competencySep)
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

// Criteria is the transient filter state. The zero value matches everything.
type Criteria struct {
	Search        string `json:"search,omitempty"`
	Competency    string `json:"competency,omitempty"`
	Type          string `json:"type,omitempty"`
	FavoritesOnly bool   `json:"favorites_only,omitempty"`
}

// IsZero reports whether no criterion is active.
func (c Criteria) IsZero() bool {
	return c == Criteria{}
}
