package interpreter

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"dom-engine/internal/application/port/output"
	"dom-engine/internal/domain/entity"
)

const (
	RuleTextChange       = "text-change"
	RuleColorChange      = "color-change"
	RuleBackgroundChange = "background-change"
	RuleHide             = "hide"
)

var (
	changeVerbRe = regexp.MustCompile(`\b(change|set|update|make|turn|modify)\b`)
	textWordRe   = regexp.MustCompile(`\btext\b`)
	colorWordRe  = regexp.MustCompile(`\bcolou?r\b`)
	backgroundRe = regexp.MustCompile(`\bbackground\b`)
	hideVerbRe   = regexp.MustCompile(`\b(hide|remove)\b`)

	// Class and id tokens such as .text-blue-500 do not count as keywords.
	selectorTokenRe = regexp.MustCompile(`[.#]\S+`)

	headerWordRe = regexp.MustCompile(`\bheader\b`)
	buttonWordRe = regexp.MustCompile(`\bbuttons?\b`)
	linkWordRe   = regexp.MustCompile(`\blinks?\b`)
)

// DefaultRules returns the categories in dispatch order.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:    RuleTextChange,
			Matches: withoutSelectors(all(changeVerbRe, textWordRe)),
			Extract: extractTextChange,
			Apply:   applyTextChange,
		},
		{
			Name:    RuleColorChange,
			Matches: all(changeVerbRe, colorWordRe),
			Extract: extractColorChange,
			Apply:   applyColorChange,
		},
		{
			Name:    RuleBackgroundChange,
			Matches: all(changeVerbRe, backgroundRe),
			Extract: extractBackgroundChange,
			Apply:   applyBackgroundChange,
		},
		{
			Name:    RuleHide,
			Matches: hideVerbRe.MatchString,
			Extract: extractHide,
			Apply:   applyHide,
		},
	}
}

func all(res ...*regexp.Regexp) func(string) bool {
	return func(s string) bool {
		for _, re := range res {
			if !re.MatchString(s) {
				return false
			}
		}
		return true
	}
}

func withoutSelectors(match func(string) bool) func(string) bool {
	return func(s string) bool {
		return match(selectorTokenRe.ReplaceAllString(s, " "))
	}
}

// text-change

// The replacement may follow "to" or "into" after a space or a colon.
var textPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?is)\bchange\s+(?:the\s+)?(.+?)\s+text\s+(?:to|into)(?::\s*|\s+)(.+)$`),
	regexp.MustCompile(`(?is)\b(?:change|set|update)\s+(?:the\s+)?text\s+(?:of|in|on)\s+(?:the\s+)?(.+?)\s+(?:to|into)(?::\s*|\s+)(.+)$`),
	regexp.MustCompile(`(?is)\bchange\s+(?:the\s+)?(.+?)\s+(?:to|into)(?::\s*|\s+)(.+)$`),
	regexp.MustCompile(`(?is)\b(?:set|update)\s+(?:the\s+)?(.+?)\s+(?:text\s+)?to(?::\s*|\s+)(.+)$`),
}

func extractTextChange(instruction string) (Intent, bool) {
	for _, re := range textPatterns {
		m := re.FindStringSubmatch(instruction)
		if m == nil {
			continue
		}
		target := cleanToken(m[1])
		text := cleanText(m[2])
		if target == "" || colorWordRe.MatchString(strings.ToLower(target)) {
			return Intent{}, false
		}
		return Intent{Target: target, Text: text}, true
	}
	return Intent{}, false
}

func applyTextChange(ctx context.Context, t output.Target, in Intent) (string, error) {
	return applyFirst(ctx, t, textCandidates(in.Target), entity.SetText{Text: in.Text}, false)
}

// color-change

var colorTargetPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bcolou?r\s+of\s+(?:the\s+|all\s+)?([.#]?[\w\-:\[\]/%!@]+)`),
	regexp.MustCompile(`(?i)(?:^|\s)([.#]?[\w\-:\[\]/%!@]+)\s+colou?r\s+(?:to|into)\b`),
}

func extractColorChange(instruction string) (Intent, bool) {
	color := extractColor(instruction)
	if color == "" {
		return Intent{}, false
	}
	in := Intent{Color: color}
	for _, re := range colorTargetPatterns {
		if m := re.FindStringSubmatch(instruction); m != nil {
			token := cleanToken(m[1])
			if !keywordTokens[strings.ToLower(token)] {
				in.Target = token
				break
			}
		}
	}
	return in, true
}

func applyColorChange(ctx context.Context, t output.Target, in Intent) (string, error) {
	style := entity.MergeStyle{Properties: map[string]string{"color": in.Color}}

	if in.Target != "" {
		sel, err := applyFirst(ctx, t, explicitCandidates(in.Target), style, true)
		if err != nil || sel != "" {
			return sel, err
		}
	}

	switch {
	case headerWordRe.MatchString(in.Lower):
		return applyFirst(ctx, t, headerSelectors, style, false)
	case backgroundRe.MatchString(in.Lower):
		return applyFirst(ctx, t, []string{"body"}, backgroundStyle(in.Color), false)
	case buttonWordRe.MatchString(in.Lower):
		return applyFirst(ctx, t, []string{buttonLike}, style, true)
	case linkWordRe.MatchString(in.Lower):
		return applyFirst(ctx, t, []string{"a"}, style, true)
	default:
		return applyFirst(ctx, t, []string{anyHeading}, style, false)
	}
}

// background-change

func extractBackgroundChange(instruction string) (Intent, bool) {
	color := extractColor(instruction)
	if color == "" {
		return Intent{}, false
	}
	return Intent{Color: color}, true
}

func applyBackgroundChange(ctx context.Context, t output.Target, in Intent) (string, error) {
	if headerWordRe.MatchString(in.Lower) {
		return applyFirst(ctx, t, headerSelectors, backgroundStyle(in.Color), false)
	}
	return applyFirst(ctx, t, []string{"body"}, backgroundStyle(in.Color), false)
}

// hide

var hidePattern = regexp.MustCompile(`(?is)\b(?:hide|remove)\s+(?:the\s+|all\s+|this\s+)?(.+?)[\s.!]*$`)

func extractHide(instruction string) (Intent, bool) {
	m := hidePattern.FindStringSubmatch(instruction)
	if m == nil {
		return Intent{}, false
	}
	target := cleanToken(m[1])
	if target == "" {
		return Intent{}, false
	}
	return Intent{Target: target}, true
}

func applyHide(ctx context.Context, t output.Target, in Intent) (string, error) {
	return applyFirst(ctx, t, hideCandidates(in.Target), entity.Hide{}, false)
}

func backgroundStyle(color string) entity.MergeStyle {
	return entity.MergeStyle{Properties: map[string]string{"background-color": color}}
}

// applyFirst applies op using the first candidate that matches at least
// one element. A candidate the query engine rejects is skipped.
func applyFirst(ctx context.Context, t output.Target, candidates []string, op entity.EditOperation, all bool) (string, error) {
	for _, sel := range candidates {
		n, err := t.Count(ctx, sel)
		if err != nil {
			if errors.Is(err, entity.ErrValidation) {
				continue
			}
			return "", err
		}
		if n == 0 {
			continue
		}
		if _, err := t.Apply(ctx, sel, op, all); err != nil {
			return "", err
		}
		return sel, nil
	}
	return "", nil
}
