// Package interpreter maps a free-text edit instruction onto at most one
// operation from a small, safe vocabulary. It is a fixed list of keyword
// rules, not a language model: the first rule whose predicate matches owns
// the instruction, and an instruction no rule recognises is a no-op.
package interpreter

import (
	"context"
	"strings"

	"dom-engine/internal/application/port/output"
)

// Intent is what a rule's extractor pulled out of the instruction.
type Intent struct {
	Target string
	Text   string
	Color  string
	// Lower is the whole instruction, lower-cased, for keyword targeting.
	Lower string
}

// Rule is one instruction category. Matches sees the lower-cased
// instruction; Extract sees it as written so replacement text keeps its
// case. Apply returns the selector it edited, or "" when nothing matched.
type Rule struct {
	Name    string
	Matches func(lower string) bool
	Extract func(instruction string) (Intent, bool)
	Apply   func(ctx context.Context, t output.Target, in Intent) (string, error)
}

type Outcome struct {
	Rule     string
	Applied  bool
	Selector string
}

type UseCase struct {
	rules  []Rule
	logger output.LoggerPort
}

func New(logger output.LoggerPort) *UseCase {
	return NewWithRules(logger, DefaultRules()...)
}

func NewWithRules(logger output.LoggerPort, rules ...Rule) *UseCase {
	return &UseCase{rules: rules, logger: logger}
}

func (uc *UseCase) Rules() []Rule {
	return uc.rules
}

// Interpret applies the first matching rule to t. An unrecognised
// instruction, or a recognised one whose target cannot be found, leaves t
// untouched and returns a zero Outcome.Applied without error.
func (uc *UseCase) Interpret(ctx context.Context, t output.Target, instruction string) (Outcome, error) {
	lower := strings.ToLower(strings.TrimSpace(instruction))

	for _, rule := range uc.rules {
		if !rule.Matches(lower) {
			continue
		}

		out := Outcome{Rule: rule.Name}
		intent, ok := rule.Extract(instruction)
		if !ok {
			uc.logger.Info("Instruction matched but could not be parsed", "rule", rule.Name)
			return out, nil
		}
		intent.Lower = lower

		sel, err := rule.Apply(ctx, t, intent)
		if err != nil {
			return out, err
		}
		out.Selector = sel
		out.Applied = sel != ""

		uc.logger.Info("Instruction interpreted",
			"rule", rule.Name, "applied", out.Applied, "selector", sel)
		return out, nil
	}

	uc.logger.Info("Instruction not recognised")
	return Outcome{}, nil
}
