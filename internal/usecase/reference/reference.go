// Package reference turns a rendered external page into a compact design
// summary: palette, fonts, utility color classes and layout hints.
package reference

import (
	"fmt"
	"net/url"
	"sort"
	"strings"

	"dom-engine/internal/domain/entity"
	"dom-engine/internal/infrastructure/markup"
)

// NormalizeURL defaults a missing scheme to https and rejects anything
// that is not an absolute http(s) URL.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: url is required", entity.ErrValidation)
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: invalid url: %v", entity.ErrValidation, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("%w: unsupported url scheme %q", entity.ErrValidation, u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("%w: url has no host", entity.ErrValidation)
	}
	return u.String(), nil
}

// Summarize bounds and deduplicates what was sampled and adds commentary
// for the requested focus area. It does no I/O.
func Summarize(sample *entity.DesignSample, focus string) *entity.DesignExtraction {
	out := &entity.DesignExtraction{
		Title:        markup.PlainText(sample.Title),
		Colors:       bounded(append(append([]string{}, sample.Colors...), markup.StyleSheetColors(sample.HTML)...), entity.MaxDesignColors),
		Fonts:        bounded(normalizeFonts(sample.Fonts), entity.MaxDesignFonts),
		ColorClasses: markup.ColorClasses(sample.HTML, entity.MaxDesignColorClasses),
		Layout:       layoutHints(sample),
	}
	out.StyleNotes = focusNotes(sample, out, focus)
	return out
}

func layoutHints(sample *entity.DesignSample) []string {
	hints := []string{}

	if h := sample.Header; h != nil {
		switch h.Position {
		case "sticky", "fixed":
			hints = append(hints, fmt.Sprintf("%s header (<%s>, %.0fpx tall)", h.Position, h.Tag, h.Height))
		default:
			hints = append(hints, fmt.Sprintf("static header (<%s>, %.0fpx tall)", h.Tag, h.Height))
		}
	}
	if sample.Hero != nil || markup.HasHero(sample.HTML) {
		hints = append(hints, "hero section")
	}

	displays := make([]string, 0, len(sample.DisplayCounts))
	for d := range sample.DisplayCounts {
		displays = append(displays, d)
	}
	sort.Strings(displays)
	for _, d := range displays {
		switch d {
		case "flex", "inline-flex":
			hints = append(hints, fmt.Sprintf("flexbox (%d elements)", sample.DisplayCounts[d]))
		case "grid", "inline-grid":
			hints = append(hints, fmt.Sprintf("css grid (%d elements)", sample.DisplayCounts[d]))
		}
	}
	return hints
}

func focusNotes(sample *entity.DesignSample, out *entity.DesignExtraction, focus string) string {
	focus = strings.ToLower(focus)
	var notes []string

	if strings.Contains(focus, "header") || strings.Contains(focus, "nav") {
		if h := sample.Header; h != nil {
			notes = append(notes, fmt.Sprintf("Header uses %s text on %s, %s positioning, font %s at %s.",
				h.Foreground, h.Background, h.Position, firstFont(h.FontFamily), h.FontSize))
		} else {
			notes = append(notes, "No header or navigation bar was found.")
		}
	}
	if strings.Contains(focus, "hero") || strings.Contains(focus, "banner") {
		if h := sample.Hero; h != nil {
			notes = append(notes, fmt.Sprintf("Hero is a %.0fpx tall <%s> with %s text on %s.",
				h.Height, h.Tag, h.Foreground, h.Background))
		} else {
			notes = append(notes, "No hero or banner section was found.")
		}
	}
	if strings.Contains(focus, "color") || strings.Contains(focus, "colour") || strings.Contains(focus, "palette") {
		if len(out.Colors) > 0 {
			notes = append(notes, fmt.Sprintf("Palette of %d colors led by %s.", len(out.Colors), strings.Join(head(out.Colors, 3), ", ")))
		}
		if len(out.ColorClasses) > 0 {
			notes = append(notes, fmt.Sprintf("Utility color classes in use: %s.", strings.Join(head(out.ColorClasses, 5), ", ")))
		}
	}
	if strings.Contains(focus, "typography") || strings.Contains(focus, "font") {
		if len(out.Fonts) > 0 {
			notes = append(notes, fmt.Sprintf("Primary font %s.", firstFont(out.Fonts[0])))
		}
	}
	return strings.Join(notes, " ")
}

func normalizeFonts(fonts []string) []string {
	out := make([]string, 0, len(fonts))
	for _, f := range fonts {
		out = append(out, strings.Join(strings.Fields(f), " "))
	}
	return out
}

func firstFont(family string) string {
	name, _, _ := strings.Cut(family, ",")
	return strings.Trim(strings.TrimSpace(name), `"'`)
}

// bounded drops empty and repeated entries, keeping first-seen order, and
// caps the result at limit.
func bounded(in []string, limit int) []string {
	out := []string{}
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
		if len(out) == limit {
			break
		}
	}
	return out
}

func head(s []string, n int) []string {
	if len(s) < n {
		return s
	}
	return s[:n]
}
