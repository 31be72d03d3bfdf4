package compare

import (
	"fmt"
	"slices"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/abhisek/clinreason/internal/blockgraph"
)

// Tone says how an insight should be presented.
type Tone string

const (
	ToneWarning  Tone = "warning"
	TonePositive Tone = "positive"
	ToneInfo     Tone = "info"
)

// Insight is an advisory remark about a comparison. Insights never
// affect the score.
type Insight struct {
	Rule    string `json:"rule"`
	Tone    Tone   `json:"tone"`
	Message string `json:"message"`
}

// InsightEnv is the environment insight expressions are evaluated in.
type InsightEnv struct {
	Matched      int      `expr:"matched"`
	Missed       int      `expr:"missed"`
	Incorrect    int      `expr:"incorrect"`
	Alignment    int      `expr:"alignment"`
	MatchRate    float64  `expr:"matchRate"`
	MissedKinds  []string `expr:"missedKinds"`
	LearnerKinds []string `expr:"learnerKinds"`
	NonTerminal  []string `expr:"nonTerminal"`
}

// Rule is a compiled boolean expression that emits an insight when true.
type Rule struct {
	Name    string
	Tone    Tone
	Message string
	Expr    string

	program *vm.Program
}

// NewRule compiles expression against InsightEnv.
func NewRule(name string, tone Tone, expression, message string) (Rule, error) {
	prg, err := expr.Compile(expression, expr.Env(InsightEnv{}), expr.AsBool())
	if err != nil {
		return Rule{}, fmt.Errorf("compile insight rule %q: %w", name, err)
	}
	return Rule{Name: name, Tone: tone, Message: message, Expr: expression, program: prg}, nil
}

// MustRule is like NewRule but panics on a compile error.
func MustRule(name string, tone Tone, expression, message string) Rule {
	r, err := NewRule(name, tone, expression, message)
	if err != nil {
		panic(err)
	}
	return r
}

var defaultRules = []Rule{
	MustRule("critical-gap", ToneWarning,
		`"observation" in missedKinds || "decision" in missedKinds`,
		"Key findings or decisions from the expert reasoning are missing."),
	MustRule("strong-alignment", TonePositive,
		`matchRate > 0.7`,
		"Your reasoning closely follows the expert pathway."),
	MustRule("complete-reasoning", ToneInfo,
		`all(nonTerminal, # in learnerKinds)`,
		"You used every type of reasoning step before deciding."),
}

// DefaultRules returns the built-in insight rules.
func DefaultRules() []Rule {
	return slices.Clone(defaultRules)
}

func newInsightEnv(learner []blockgraph.Block, res Result) InsightEnv {
	env := InsightEnv{
		Matched:      len(res.Matched),
		Missed:       len(res.Missed),
		Incorrect:    len(res.Incorrect),
		Alignment:    res.Alignment,
		MatchRate:    res.MatchRate,
		MissedKinds:  kindSet(res.Missed),
		LearnerKinds: kindSet(learner),
	}
	for _, k := range blockgraph.NonTerminalKinds() {
		env.NonTerminal = append(env.NonTerminal, string(k))
	}
	return env
}

func kindSet(blocks []blockgraph.Block) []string {
	out := []string{}
	for _, b := range blocks {
		if !slices.Contains(out, string(b.Kind)) {
			out = append(out, string(b.Kind))
		}
	}
	return out
}

// evaluate runs rules in order. Rules that fail at run time are skipped.
func evaluate(rules []Rule, env InsightEnv) []Insight {
	var out []Insight
	for _, r := range rules {
		if r.program == nil {
			continue
		}
		v, err := expr.Run(r.program, env)
		if err != nil {
			continue
		}
		if ok, _ := v.(bool); ok {
			out = append(out, Insight{Rule: r.Name, Tone: r.Tone, Message: r.Message})
		}
	}
	return out
}
