package domain

import "testing"

func TestRequiredFieldsRule(t *testing.T) {
	engine := DefaultRulesEngine()
	cases := []struct {
		name     string
		c        Candidate
		blocking bool
		count    int
	}{
		{"complete", Candidate{Title: "T", Link: "L"}, false, 0},
		{"missing title", Candidate{Link: "L"}, true, 1},
		{"missing link", Candidate{Title: "T"}, true, 1},
		{"missing both", Candidate{}, true, 2},
		{"whitespace accepted", Candidate{Title: " ", Link: " "}, false, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res := engine.Evaluate(tc.c)
			if res.HasBlocking() != tc.blocking {
				t.Fatalf("blocking = %v, want %v", res.HasBlocking(), tc.blocking)
			}
			if len(res.Violations) != tc.count {
				t.Fatalf("expected %d violations, got %+v", tc.count, res.Violations)
			}
		})
	}
}

type warnRule struct{}

func (warnRule) Name() string { return "warn" }
func (warnRule) Evaluate(Candidate) Result {
	return Result{Violations: []Violation{{Rule: "warn", Severity: SeverityWarn}}}
}

func TestRulesEngineMergesNonBlocking(t *testing.T) {
	engine := NewRulesEngine(warnRule{})
	engine.Register(RequiredFieldsRule())
	res := engine.Evaluate(Candidate{Title: "T", Link: "L"})
	if res.HasBlocking() {
		t.Fatalf("warn-only result should not block")
	}
	if len(res.Violations) != 1 || res.Violations[0].Rule != "warn" {
		t.Fatalf("unexpected violations %+v", res.Violations)
	}
}
