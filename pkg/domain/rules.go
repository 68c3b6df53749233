package domain

// Severity captures rule outcomes.
type Severity string

const (
	// SeverityBlock refuses the submission.
	SeverityBlock Severity = "block"
	// SeverityWarn is reported but does not refuse the submission.
	SeverityWarn Severity = "warn"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Field    string
	Message  string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// Rule evaluates a candidate before it is appended to the catalog.
type Rule interface {
	Name() string
	Evaluate(Candidate) Result
}

// RulesEngine orchestrates rule evaluation.
type RulesEngine struct {
	rules []Rule
}

// NewRulesEngine constructs an engine with the given rules registered.
func NewRulesEngine(rules ...Rule) *RulesEngine {
	e := &RulesEngine{}
	for _, r := range rules {
		e.Register(r)
	}
	return e
}

// DefaultRulesEngine returns the engine used by the catalog: only presence
// checks on title and link.
func DefaultRulesEngine() *RulesEngine {
	return NewRulesEngine(RequiredFieldsRule())
}

// Register appends a rule to the engine.
func (e *RulesEngine) Register(rule Rule) {
	e.rules = append(e.rules, rule)
}

// Evaluate executes all registered rules and aggregates their results.
func (e *RulesEngine) Evaluate(c Candidate) Result {
	var combined Result
	for _, rule := range e.rules {
		combined.Merge(rule.Evaluate(c))
	}
	return combined
}

type requiredFieldsRule struct{}

// RequiredFieldsRule blocks candidates whose title or link is the empty
// string. Whitespace-only values are accepted.
func RequiredFieldsRule() Rule { return requiredFieldsRule{} }

func (requiredFieldsRule) Name() string { return "required_fields" }

func (r requiredFieldsRule) Evaluate(c Candidate) Result {
	var res Result
	if c.Title == "" {
		res.Violations = append(res.Violations, Violation{Rule: r.Name(), Severity: SeverityBlock, Field: "title", Message: "title is required"})
	}
	if c.Link == "" {
		res.Violations = append(res.Violations, Violation{Rule: r.Name(), Severity: SeverityBlock, Field: "link", Message: "link is required"})
	}
	return res
}
