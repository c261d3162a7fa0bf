package interpreter

import (
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dom-engine/internal/application/port/output"
	"dom-engine/internal/infrastructure/logger"
	"dom-engine/internal/testutil"
)

func load(t *testing.T, body string) *testutil.FakeSession {
	t.Helper()
	s := testutil.NewFakeSession()
	require.NoError(t, s.Load(context.Background(), "<html><head></head><body>"+body+"</body></html>"))
	return s
}

func query(t *testing.T, s *testutil.FakeSession) *goquery.Document {
	t.Helper()
	html, err := s.Document(context.Background())
	require.NoError(t, err)
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func styleOf(sel *goquery.Selection) map[string]string {
	return testutil.ParseStyle(sel.AttrOr("style", ""))
}

func TestInterpret_TextChangeOnHeading(t *testing.T) {
	s := load(t, `<header><h1>Old title</h1><p>keep</p></header>`)
	uc := New(logger.NewNop())

	out, err := uc.Interpret(context.Background(), s, `Change the header text to "Welcome Home"`)
	require.NoError(t, err)

	assert.True(t, out.Applied)
	assert.Equal(t, RuleTextChange, out.Rule)
	assert.Equal(t, "h1", out.Selector)

	doc := query(t, s)
	assert.Equal(t, "Welcome Home", doc.Find("h1").Text())
	assert.Equal(t, "keep", doc.Find("p").Text())
}

func TestInterpret_TextChangeOfPattern(t *testing.T) {
	s := load(t, `<div class="tagline">old</div>`)

	out, err := New(logger.NewNop()).Interpret(context.Background(), s, "update the text of the tagline to Fast and simple.")
	require.NoError(t, err)

	assert.True(t, out.Applied)
	assert.Equal(t, "Fast and simple", query(t, s).Find(".tagline").Text())
}

func TestInterpret_TextChangeEscapesUtilityClass(t *testing.T) {
	s := load(t, `<p class="md:text-lg">small</p>`)

	out, err := New(logger.NewNop()).Interpret(context.Background(), s, "Change .md:text-lg text to Big")
	require.NoError(t, err)

	assert.True(t, out.Applied)
	assert.Equal(t, `.md\:text-lg`, out.Selector)
	assert.Equal(t, "Big", query(t, s).Find("p").Text())
}

func TestInterpret_TextChangeTargetNamingColorIsNoOp(t *testing.T) {
	s := load(t, `<h1 class="hero-title">Hi</h1>`)
	before, _ := s.Document(context.Background())

	out, err := New(logger.NewNop()).Interpret(context.Background(), s, "Change the hero title text color to red")
	require.NoError(t, err)

	assert.False(t, out.Applied)
	assert.Equal(t, RuleTextChange, out.Rule)
	after, _ := s.Document(context.Background())
	assert.Equal(t, before, after)
}

func TestInterpret_ColorOfExplicitSelectorAppliesToAll(t *testing.T) {
	s := load(t, `<button class="cta">One</button><button class="cta">Two</button><h1>x</h1>`)

	out, err := New(logger.NewNop()).Interpret(context.Background(), s, "Change the color of .cta to #ff0000")
	require.NoError(t, err)

	assert.True(t, out.Applied)
	assert.Equal(t, RuleColorChange, out.Rule)
	doc := query(t, s)
	doc.Find(".cta").Each(func(_ int, b *goquery.Selection) {
		assert.Equal(t, "#ff0000", styleOf(b)["color"])
	})
	_, styled := doc.Find("h1").Attr("style")
	assert.False(t, styled)
}

func TestInterpret_ColorKeywordTargets(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		instruction string
		styled      string
		property    string
		value       string
	}{
		{
			name:        "buttons",
			body:        `<button>a</button><a class="btn">b</a><div class="big-button">c</div>`,
			instruction: "make the button color blue",
			styled:      "button, .btn, [class*='button']",
			property:    "color",
			value:       "blue",
		},
		{
			name:        "links",
			body:        `<a href="#">a</a><a href="#">b</a>`,
			instruction: "change link color to green",
			styled:      "a",
			property:    "color",
			value:       "green",
		},
		{
			name:        "header",
			body:        `<header>top</header><nav>nav</nav>`,
			instruction: "set the header color to #333",
			styled:      "header",
			property:    "color",
			value:       "#333",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := load(t, tt.body)
			out, err := New(logger.NewNop()).Interpret(context.Background(), s, tt.instruction)
			require.NoError(t, err)
			require.True(t, out.Applied)

			query(t, s).Find(tt.styled).Each(func(_ int, el *goquery.Selection) {
				assert.Equal(t, tt.value, styleOf(el)[tt.property], goquery.NodeName(el))
			})
		})
	}
}

func TestInterpret_ColorDefaultsToFirstHeading(t *testing.T) {
	s := load(t, `<h2>first</h2><h1>second</h1>`)

	out, err := New(logger.NewNop()).Interpret(context.Background(), s, "change the color to purple")
	require.NoError(t, err)
	require.True(t, out.Applied)

	doc := query(t, s)
	assert.Equal(t, "purple", styleOf(doc.Find("h2"))["color"])
	_, styled := doc.Find("h1").Attr("style")
	assert.False(t, styled)
}

func TestInterpret_BackgroundChange(t *testing.T) {
	s := load(t, `<main>x</main>`)

	out, err := New(logger.NewNop()).Interpret(context.Background(), s, "Change the background to navy")
	require.NoError(t, err)

	assert.True(t, out.Applied)
	assert.Equal(t, RuleBackgroundChange, out.Rule)
	assert.Equal(t, "navy", styleOf(query(t, s).Find("body"))["background-color"])
}

func TestInterpret_HeaderBackground(t *testing.T) {
	s := load(t, `<div class="site-header">x</div>`)

	out, err := New(logger.NewNop()).Interpret(context.Background(), s, "update header background to #fafafa")
	require.NoError(t, err)

	assert.True(t, out.Applied)
	assert.Equal(t, "#fafafa", styleOf(query(t, s).Find(".site-header"))["background-color"])
}

func TestInterpret_HideKeepsElementInDocument(t *testing.T) {
	s := load(t, `<section data-section="pricing"><p>$9</p></section><footer>f</footer>`)

	out, err := New(logger.NewNop()).Interpret(context.Background(), s, "Hide the pricing section")
	require.NoError(t, err)

	assert.True(t, out.Applied)
	assert.Equal(t, RuleHide, out.Rule)
	assert.Equal(t, "[data-section='pricing']", out.Selector)

	doc := query(t, s)
	section := doc.Find("section")
	require.Equal(t, 1, section.Length())
	assert.Equal(t, "none", styleOf(section)["display"])
	_, styled := doc.Find("footer").Attr("style")
	assert.False(t, styled)
}

func TestInterpret_HideByClass(t *testing.T) {
	s := load(t, `<div class="banner">a</div><div class="banner">b</div>`)

	out, err := New(logger.NewNop()).Interpret(context.Background(), s, "remove the banner.")
	require.NoError(t, err)
	require.True(t, out.Applied)

	banners := query(t, s).Find(".banner")
	require.Equal(t, 2, banners.Length())
	assert.Equal(t, "none", styleOf(banners.Eq(0))["display"])
	_, styled := banners.Eq(1).Attr("style")
	assert.False(t, styled)
}

func TestInterpret_NoOps(t *testing.T) {
	for _, instruction := range []string{
		"Make it pop",
		"Hide the testimonials",
		"Change the title to Hello",
		"change the color of the logo to sparkly",
		"",
	} {
		t.Run(instruction, func(t *testing.T) {
			s := load(t, `<h1 class="title">Hi</h1>`)
			before, _ := s.Document(context.Background())

			out, err := New(logger.NewNop()).Interpret(context.Background(), s, instruction)
			require.NoError(t, err)
			assert.False(t, out.Applied)

			after, _ := s.Document(context.Background())
			assert.Equal(t, before, after)
		})
	}
}

func TestNewWithRules_FirstMatchWins(t *testing.T) {
	var calls []string
	rule := func(name string) Rule {
		return Rule{
			Name:    name,
			Matches: func(string) bool { return true },
			Extract: func(string) (Intent, bool) { return Intent{}, true },
			Apply: func(context.Context, output.Target, Intent) (string, error) {
				calls = append(calls, name)
				return "x", nil
			},
		}
	}

	uc := NewWithRules(logger.NewNop(), rule("a"), rule("b"))
	out, err := uc.Interpret(context.Background(), testutil.NewFakeSession(), "anything")
	require.NoError(t, err)

	assert.Equal(t, "a", out.Rule)
	assert.Equal(t, []string{"a"}, calls)
	assert.Len(t, uc.Rules(), 2)
}

func TestExtractColor(t *testing.T) {
	assert.Equal(t, "#ff0000", extractColor("change h1 color to #ff0000"))
	assert.Equal(t, "red", extractColor("change h1 color to RED"))
	assert.Equal(t, "blue", extractColor("change the color of #abc to blue"))
	assert.Equal(t, "#abc", extractColor("change the color of .x to #abc"))
	assert.Equal(t, "", extractColor("change the color to sparkly"))
}

func TestCandidates(t *testing.T) {
	assert.Equal(t,
		[]string{"h1", "h2", ".title", ".heading", ".hero-title", ".section-title", "header", ".header", "#header", "[class*='header']"},
		textCandidates("header"))
	assert.Equal(t,
		[]string{"h1", "h2", ".title", ".heading", ".hero-title", ".section-title", ".main-title", "#main-title", "[class*='main-title']"},
		textCandidates("main title"))
	assert.Equal(t, []string{`.\32 col`, "#2col"}, explicitCandidates("2col"))
	assert.Equal(t,
		[]string{".pricing-section", "#pricing-section", "[data-section='pricing-section']", "pricing", ".pricing", "#pricing", "[data-section='pricing']"},
		hideCandidates("pricing section"))
}

func TestInterpret_ColorOfUtilityClassNamedText(t *testing.T) {
	s := load(t, `<p class="text-blue-500">a</p><h1>keep</h1>`)

	out, err := New(logger.NewNop()).Interpret(context.Background(), s, "change the color of .text-blue-500 to red")
	require.NoError(t, err)

	assert.True(t, out.Applied)
	assert.Equal(t, RuleColorChange, out.Rule)
	doc := query(t, s)
	assert.Equal(t, "red", styleOf(doc.Find("p"))["color"])
	assert.Empty(t, doc.Find("h1").AttrOr("style", ""))
}

func TestInterpret_TextChangeAfterColon(t *testing.T) {
	for _, instruction := range []string{"change title text to: New", "update the heading text to:New"} {
		t.Run(instruction, func(t *testing.T) {
			s := load(t, `<h1>Old</h1>`)

			out, err := New(logger.NewNop()).Interpret(context.Background(), s, instruction)
			require.NoError(t, err)

			assert.True(t, out.Applied)
			assert.Equal(t, RuleTextChange, out.Rule)
			assert.Equal(t, "New", query(t, s).Find("h1").Text())
		})
	}
}
