package markup

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

var (
	colorClassRe = regexp.MustCompile(`^(?:[a-z0-9-]+:)*!?` +
		`(?:bg|text|border|from|via|to|fill|stroke|ring|outline|decoration|divide|accent|caret|shadow)-` +
		`(?:\[(?:#|rgb|hsl)[^\]]*\]|` +
		`(?:slate|gray|grey|zinc|neutral|stone|red|orange|amber|yellow|lime|green|emerald|teal|cyan|sky|blue|indigo|violet|purple|fuchsia|pink|rose|black|white|transparent|current|primary|secondary|accent|muted)` +
		`(?:-\d{2,3})?(?:/\d{1,3})?)$`)

	hexRe        = regexp.MustCompile(`#(?:[0-9a-fA-F]{8}|[0-9a-fA-F]{6}|[0-9a-fA-F]{3})\b`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

const heroSelector = ".hero, #hero, [class*='hero'], [class*='banner'], [id*='hero']"

// IsColorClass reports whether a single class token is a utility class that
// sets a color, such as bg-blue-500, hover:text-white or bg-[#1da1f2].
func IsColorClass(class string) bool {
	return colorClassRe.MatchString(class)
}

// FilterColorClasses keeps the color utility classes of one element.
func FilterColorClasses(classes []string) []string {
	out := []string{}
	for _, c := range classes {
		if IsColorClass(c) {
			out = append(out, c)
		}
	}
	return out
}

// ColorClasses collects distinct color utility classes across a document,
// in document order, up to limit.
func ColorClasses(rawHTML string, limit int) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return []string{}
	}

	out := []string{}
	seen := map[string]bool{}
	doc.Find("[class]").EachWithBreak(func(_ int, el *goquery.Selection) bool {
		for _, c := range strings.Fields(el.AttrOr("class", "")) {
			if seen[c] || !IsColorClass(c) {
				continue
			}
			seen[c] = true
			out = append(out, c)
			if limit > 0 && len(out) >= limit {
				return false
			}
		}
		return true
	})
	return out
}

// HasHero reports whether the document has a recognisable hero or banner
// region.
func HasHero(rawHTML string) bool {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(rawHTML))
	if err != nil {
		return false
	}
	return doc.Find(heroSelector).Length() > 0
}

// StyleSheetColors returns the hex literals declared inside <style>
// elements, lower-cased and deduplicated.
func StyleSheetColors(rawHTML string) []string {
	z := html.NewTokenizer(strings.NewReader(rawHTML))
	out := []string{}
	seen := map[string]bool{}
	inStyle := false

	for {
		switch z.Next() {
		case html.ErrorToken:
			return out
		case html.StartTagToken:
			name, _ := z.TagName()
			inStyle = string(name) == "style"
		case html.EndTagToken:
			inStyle = false
		case html.TextToken:
			if !inStyle {
				continue
			}
			for _, hex := range hexRe.FindAllString(string(z.Text()), -1) {
				hex = strings.ToLower(hex)
				if !seen[hex] {
					seen[hex] = true
					out = append(out, hex)
				}
			}
		}
	}
}

var strict = bluemonday.StrictPolicy()

// PlainText strips all markup from s and collapses whitespace.
func PlainText(s string) string {
	s = html.UnescapeString(strict.Sanitize(s))
	return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
}
