package interpreter

import (
	"regexp"
	"strings"

	"dom-engine/internal/domain/selector"
)

var namedColors = []string{
	"red", "blue", "green", "yellow", "orange", "purple", "pink", "black",
	"white", "gray", "grey", "brown", "navy", "teal", "cyan", "magenta",
	"indigo", "violet", "gold", "silver", "maroon", "olive", "lime", "aqua",
	"coral", "crimson", "beige", "lavender", "salmon", "turquoise",
}

var (
	namedColorRe = regexp.MustCompile(`(?i)\b(` + strings.Join(namedColors, "|") + `)\b`)
	hexColorRe   = regexp.MustCompile(`#(?:[0-9a-fA-F]{6}|[0-9a-fA-F]{3})\b`)
	toRe         = regexp.MustCompile(`(?i)\s(?:to|into)\s`)
	tagNameRe    = regexp.MustCompile(`^[a-z][a-z0-9]*$`)
	slugStripRe  = regexp.MustCompile(`[^a-z0-9_-]+`)
	hideSuffixRe = regexp.MustCompile(`-(?:section|element|block|area)$`)
)

var (
	headingSelectors = []string{"h1", "h2", ".title", ".heading", ".hero-title", ".section-title"}
	buttonSelectors  = []string{"button", ".btn", ".button", ".cta"}
	headerSelectors  = []string{"header", "nav", ".header", "[class*='header']"}
)

const (
	buttonLike = "button, .btn, [class*='button']"
	anyHeading = "h1, h2, h3, h4, h5, h6"
)

// keywordTokens never resolve as explicit color targets; they are handled
// by keyword targeting instead.
var keywordTokens = map[string]bool{
	"the": true, "text": true, "font": true, "background": true,
	"header": true, "button": true, "buttons": true, "link": true,
	"links": true, "its": true, "this": true, "page": true,
}

// extractColor prefers a color named after "to"/"into" so a hex-looking
// id earlier in the instruction is not mistaken for the new value.
func extractColor(instruction string) string {
	if loc := toRe.FindAllStringIndex(instruction, -1); len(loc) > 0 {
		if c := findColor(instruction[loc[len(loc)-1][1]:]); c != "" {
			return c
		}
	}
	return findColor(instruction)
}

func findColor(s string) string {
	if m := hexColorRe.FindString(s); m != "" {
		return m
	}
	if m := namedColorRe.FindString(s); m != "" {
		return strings.ToLower(m)
	}
	return ""
}

func cleanToken(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"'`+"`")
	s = strings.TrimSuffix(s, ".")
	if lower := strings.ToLower(s); strings.HasPrefix(lower, "the ") {
		s = strings.TrimSpace(s[4:])
	}
	return s
}

// cleanText strips one pair of surrounding quotes, or a trailing full stop
// from unquoted text.
func cleanText(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		first, last := s[0], s[len(s)-1]
		if (first == '"' || first == '\'') && last == first {
			return s[1 : len(s)-1]
		}
	}
	return strings.TrimSuffix(s, ".")
}

func slug(s string) string {
	s = slugStripRe.ReplaceAllString(strings.ToLower(s), "-")
	return strings.Trim(s, "-")
}

// textCandidates resolves a text-change target token, most specific hint
// first.
func textCandidates(token string) []string {
	if strings.HasPrefix(token, ".") || strings.HasPrefix(token, "#") {
		return []string{selector.Escape(token)}
	}
	lower := strings.ToLower(token)

	var out []string
	if containsAny(lower, "header", "title", "heading", "headline") {
		out = append(out, headingSelectors...)
	}
	if containsAny(lower, "button", "btn", "cta") {
		out = append(out, buttonSelectors...)
	}
	out = append(out, genericCandidates(slug(lower), true)...)
	return dedupe(out)
}

// explicitCandidates resolves a token named directly in a color
// instruction.
func explicitCandidates(token string) []string {
	if strings.HasPrefix(token, ".") || strings.HasPrefix(token, "#") {
		return []string{selector.Escape(token)}
	}
	return genericCandidates(slug(token), false)
}

// hideCandidates tries the slug and the slug without a trailing
// section/element/block/area word, each as tag, class, id and
// data-section value.
func hideCandidates(token string) []string {
	if strings.HasPrefix(token, ".") || strings.HasPrefix(token, "#") {
		return []string{selector.Escape(token)}
	}
	full := slug(token)
	if full == "" {
		return nil
	}
	names := []string{full}
	if short := hideSuffixRe.ReplaceAllString(full, ""); short != full && short != "" {
		names = append(names, short)
	}

	var out []string
	for _, name := range names {
		out = append(out, genericCandidates(name, false)...)
		out = append(out, "[data-section='"+name+"']")
	}
	return dedupe(out)
}

func genericCandidates(name string, partial bool) []string {
	if name == "" {
		return nil
	}
	var out []string
	if tagNameRe.MatchString(name) {
		out = append(out, name)
	}
	out = append(out, selector.Escape("."+name), selector.Escape("#"+name))
	if partial {
		out = append(out, "[class*='"+name+"']")
	}
	return out
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := in[:0]
	for _, s := range in {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}
	return out
}
