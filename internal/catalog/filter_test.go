package catalog

import (
	"reflect"
	"strings"
	"testing"

	"resourcebank/pkg/domain"
)

func sampleRecords() []domain.Resource {
	return []domain.Resource{
		{Title: "Guide A", Source: "Université de Sherbrooke", Competencies: []string{"Listen", "Adapt"}, Theme: "Team", Type: "Guide", Format: "PDF", Link: "https://a"},
		{Title: "Video B", Source: "CIUSSS", Competencies: []string{"Listen"}, Theme: "Youth", Type: "Video", Format: "8 min", Link: "https://b"},
		{Title: "Training C", Source: "Sherbrooke", Competencies: []string{"Adapt"}, Theme: "Practice", Type: "Training", Format: "45 min", Link: "https://c"},
		{Title: "Guide D", Source: "Elsewhere", Competencies: []string{"Outreach"}, Theme: "Team", Type: "Guide", Format: "PDF", Link: "https://d"},
	}
}

func titles(rs []domain.Resource) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.Title
	}
	return out
}

func TestVisibleIdentity(t *testing.T) {
	rs := sampleRecords()
	if got := Visible(rs, nil, domain.Criteria{}); !reflect.DeepEqual(got, rs) {
		t.Fatalf("empty criteria should be identity")
	}
	if got := Visible(nil, nil, domain.Criteria{}); len(got) != 0 {
		t.Fatalf("expected empty output for empty input")
	}
}

func TestVisibleSearchSubsetAndContainment(t *testing.T) {
	rs := sampleRecords()
	for _, s := range []string{"sherb", "LISTEN", "min", "https://", "team", "zzz"} {
		got := Visible(rs, nil, domain.Criteria{Search: s})
		needle := strings.ToLower(s)
		for _, r := range got {
			hit := false
			for _, f := range append(r.Fields(), r.Competencies...) {
				if strings.Contains(strings.ToLower(f), needle) {
					hit = true
				}
			}
			if !hit {
				t.Fatalf("search %q returned non-matching record %q", s, r.Title)
			}
		}
		if len(got) > len(rs) {
			t.Fatalf("visible larger than input")
		}
	}
	if got := titles(Visible(rs, nil, domain.Criteria{Search: "listen"})); !reflect.DeepEqual(got, []string{"Guide A", "Video B"}) {
		t.Fatalf("competency element search mismatch: %v", got)
	}
}

func TestVisibleSearchUnicodeCase(t *testing.T) {
	rs := []domain.Resource{{Title: "ÉTABLIR des liens", Competencies: []string{}}}
	if got := Visible(rs, nil, domain.Criteria{Search: "établir"}); len(got) != 1 {
		t.Fatalf("expected accented case-insensitive match")
	}
}

func TestVisibleTypeAndCompetencyExact(t *testing.T) {
	rs := sampleRecords()
	if got := titles(Visible(rs, nil, domain.Criteria{Type: "Guide"})); !reflect.DeepEqual(got, []string{"Guide A", "Guide D"}) {
		t.Fatalf("type filter mismatch: %v", got)
	}
	if got := Visible(rs, nil, domain.Criteria{Type: "guide"}); len(got) != 0 {
		t.Fatalf("type filter must be exact")
	}
	if got := titles(Visible(rs, nil, domain.Criteria{Competency: "Adapt"})); !reflect.DeepEqual(got, []string{"Guide A", "Training C"}) {
		t.Fatalf("competency filter mismatch: %v", got)
	}
	if got := Visible(rs, nil, domain.Criteria{Competency: "Adap"}); len(got) != 0 {
		t.Fatalf("competency filter must be exact element match")
	}
}

func TestVisibleFavoritesOnly(t *testing.T) {
	rs := sampleRecords()
	favs := NewTitleSet("Training C", "Guide A", "missing")
	if got := titles(Visible(rs, favs, domain.Criteria{FavoritesOnly: true})); !reflect.DeepEqual(got, []string{"Guide A", "Training C"}) {
		t.Fatalf("favorites filter mismatch: %v", got)
	}
	if got := Visible(rs, nil, domain.Criteria{FavoritesOnly: true}); len(got) != 0 {
		t.Fatalf("nil favorites should filter everything")
	}
}

func TestVisibleCombinedTypeAndSearch(t *testing.T) {
	rs := domain.Seed()
	rs[0].Source = "Université de Sherbrooke"
	got := Visible(rs, nil, domain.Criteria{Type: domain.TypeGuide, Search: "sherbrooke"})
	if len(got) != 1 || got[0].Title != rs[0].Title {
		t.Fatalf("expected only the guide from Sherbrooke, got %v", titles(got))
	}
	for _, r := range got {
		if r.Type != domain.TypeGuide {
			t.Fatalf("type predicate violated")
		}
	}
}

func TestVisibleDoesNotAliasInput(t *testing.T) {
	rs := sampleRecords()
	got := Visible(rs, nil, domain.Criteria{})
	got[0].Competencies[0] = "mutated"
	if rs[0].Competencies[0] == "mutated" {
		t.Fatalf("visible result aliases input")
	}
}

func TestDistinctTypes(t *testing.T) {
	rs := []domain.Resource{{Type: "Guide"}, {Type: "Video"}, {Type: "Guide"}}
	if got := DistinctTypes(rs); !reflect.DeepEqual(got, []string{"Guide", "Video"}) {
		t.Fatalf("unexpected distinct types %v", got)
	}
	if got := DistinctTypes(nil); len(got) != 0 {
		t.Fatalf("expected no types")
	}
}

func TestFavoritesSatisfiesMembership(t *testing.T) {
	var _ Membership = (*Favorites)(nil)
	var _ Membership = TitleSet{}
	if len(Competencies()) != 12 {
		t.Fatalf("expected fixed vocabulary")
	}
}
