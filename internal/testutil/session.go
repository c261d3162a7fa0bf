// Package testutil provides in-memory stand-ins for the browser-backed
// ports. FakeSession keeps the document in a goquery tree, so edits and
// queries behave like the real session for everything except layout.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"image/color"
	"sort"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"golang.org/x/net/html"

	"dom-engine/internal/application/port/output"
	"dom-engine/internal/domain/entity"
)

var _ output.Session = (*FakeSession)(nil)

var skipTags = map[string]bool{
	"script": true, "style": true, "noscript": true,
	"meta": true, "link": true, "template": true,
}

type FakeSession struct {
	id  string
	doc *goquery.Document

	// Sample is returned by SampleDesign after a successful Navigate.
	Sample *entity.DesignSample
	// NavigateErr, when set, fails Navigate.
	NavigateErr error

	Navigated string
}

func NewFakeSession() *FakeSession {
	return &FakeSession{id: uuid.NewString()}
}

func (s *FakeSession) ID() string {
	return s.id
}

func (s *FakeSession) Load(_ context.Context, document string) error {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(document))
	if err != nil {
		return err
	}
	s.doc = doc
	return nil
}

func (s *FakeSession) Navigate(ctx context.Context, url string) error {
	if s.NavigateErr != nil {
		return s.NavigateErr
	}
	s.Navigated = url
	if s.Sample != nil {
		return s.Load(ctx, s.Sample.HTML)
	}
	return s.Load(ctx, "<html><body></body></html>")
}

func (s *FakeSession) Document(context.Context) (string, error) {
	if s.doc == nil {
		return "", fmt.Errorf("no document loaded")
	}
	return s.doc.Html()
}

func (s *FakeSession) find(sel string) (*goquery.Selection, error) {
	if s.doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	if _, err := cascadia.ParseGroup(sel); err != nil {
		return nil, fmt.Errorf("%w: invalid selector %q: %v", entity.ErrValidation, sel, err)
	}
	return s.doc.Find(sel), nil
}

func (s *FakeSession) Count(_ context.Context, sel string) (int, error) {
	found, err := s.find(sel)
	if err != nil {
		return 0, err
	}
	return found.Length(), nil
}

func (s *FakeSession) Apply(_ context.Context, sel string, op entity.EditOperation, all bool) (int, error) {
	found, err := s.find(sel)
	if err != nil {
		return 0, err
	}
	if !all {
		found = found.First()
	}
	found.Each(func(_ int, el *goquery.Selection) {
		applyOp(el, op)
	})
	return found.Length(), nil
}

func applyOp(el *goquery.Selection, op entity.EditOperation) {
	switch o := op.(type) {
	case entity.SetText:
		el.SetText(o.Text)
	case entity.SetInnerHTML:
		el.SetHtml(o.HTML)
	case entity.MergeStyle:
		style := ParseStyle(el.AttrOr("style", ""))
		for _, k := range o.SortedProperties() {
			style[k] = o.Properties[k]
		}
		el.SetAttr("style", FormatStyle(style))
	case entity.SetAttribute:
		el.SetAttr(o.Name, o.Value)
	case entity.ModifyClass:
		for _, c := range o.Add {
			el.AddClass(c)
		}
		for _, c := range o.Remove {
			el.RemoveClass(c)
		}
	case entity.ReplaceElement:
		el.ReplaceWithHtml(o.HTML)
	case entity.Hide:
		style := ParseStyle(el.AttrOr("style", ""))
		style["display"] = "none"
		el.SetAttr("style", FormatStyle(style))
	case entity.Show:
		style := ParseStyle(el.AttrOr("style", ""))
		delete(style, "display")
		if len(style) == 0 {
			el.RemoveAttr("style")
		} else {
			el.SetAttr("style", FormatStyle(style))
		}
	}
}

func (s *FakeSession) Tree(_ context.Context, opts entity.TreeOptions) (*entity.DomNode, error) {
	if s.doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	body := s.doc.Find("body").First()
	root := body
	if kids := body.Children(); kids.Length() == 1 {
		root = kids
	}
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = entity.MaxTreeDepth
	}
	return buildNode(root.Nodes[0], 0, maxDepth, opts.IncludeBounds), nil
}

func buildNode(n *html.Node, depth, maxDepth int, bounds bool) *entity.DomNode {
	node := &entity.DomNode{
		Tag:      n.Data,
		Classes:  []string{},
		Depth:    depth,
		Children: []*entity.DomNode{},
	}
	for _, a := range n.Attr {
		switch a.Key {
		case "id":
			node.ID = a.Val
		case "class":
			node.Classes = strings.Fields(a.Val)
		}
	}
	if bounds {
		node.Bounds = &entity.Bounds{}
	}

	var text strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			text.WriteString(c.Data)
		case html.ElementNode:
			if skipTags[c.Data] || depth+1 > maxDepth || n.Data == "svg" {
				continue
			}
			node.Children = append(node.Children, buildNode(c, depth+1, maxDepth, bounds))
		}
	}
	node.Text = truncate(strings.TrimSpace(text.String()), entity.MaxNodeText)
	return node
}

func (s *FakeSession) Element(_ context.Context, sel string) (*entity.ElementInfo, error) {
	found, err := s.find(sel)
	if err != nil {
		return nil, err
	}
	if found.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", entity.ErrElementNotFound, sel)
	}
	el := found.First()
	outer, _ := goquery.OuterHtml(el)
	info := &entity.ElementInfo{
		Tag:        goquery.NodeName(el),
		ID:         el.AttrOr("id", ""),
		Classes:    strings.Fields(el.AttrOr("class", "")),
		Text:       truncate(strings.TrimSpace(el.Text()), entity.MaxElementText),
		HTML:       outer,
		Attributes: map[string]string{},
	}
	for _, a := range el.Nodes[0].Attr {
		info.Attributes[a.Key] = a.Val
	}
	return info, nil
}

func (s *FakeSession) Visual(_ context.Context, sel string) (*entity.VisualSnapshot, error) {
	found, err := s.find(sel)
	if err != nil {
		return nil, err
	}
	if found.Length() == 0 {
		return nil, fmt.Errorf("%w: %s", entity.ErrElementNotFound, sel)
	}
	el := found.First()
	style := ParseStyle(el.AttrOr("style", ""))
	return &entity.VisualSnapshot{
		Tag:     goquery.NodeName(el),
		Classes: strings.Fields(el.AttrOr("class", "")),
		Text:    truncate(strings.TrimSpace(el.Text()), entity.MaxElementText),
		Colors: entity.Colors{
			Background: style["background-color"],
			Foreground: style["color"],
			Border:     style["border-color"],
		},
		Style: entity.BoxStyle{Display: style["display"]},
	}, nil
}

// Screenshot renders a flat placeholder image; its size distinguishes
// full-page, viewport and element captures.
func (s *FakeSession) Screenshot(_ context.Context, sel string, fullPage bool) (*entity.Screenshot, error) {
	w, h := 64, 48
	if sel != "" {
		found, err := s.find(sel)
		if err != nil {
			return nil, err
		}
		if found.Length() == 0 {
			return nil, fmt.Errorf("%w: %s", entity.ErrElementNotFound, sel)
		}
		w, h = 16, 8
	} else if fullPage {
		h = 96
	}

	img := imaging.New(w, h, color.White)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, err
	}
	return &entity.Screenshot{Data: buf.Bytes(), Format: "png", Width: w, Height: h}, nil
}

func (s *FakeSession) SampleDesign(context.Context, int) (*entity.DesignSample, error) {
	if s.Sample == nil {
		return &entity.DesignSample{URL: s.Navigated}, nil
	}
	return s.Sample, nil
}

// FakeProvider hands out FakeSessions and counts their lifetimes.
type FakeProvider struct {
	mu     sync.Mutex
	opened int
	closed int

	// Configure, if set, runs on every new session before fn.
	Configure func(*FakeSession)
	// Last is the most recent session handed out.
	Last *FakeSession
}

var _ output.SessionProvider = (*FakeProvider)(nil)

func (p *FakeProvider) WithSession(ctx context.Context, _ entity.SessionOptions, fn func(context.Context, output.Session) error) error {
	s := NewFakeSession()
	if p.Configure != nil {
		p.Configure(s)
	}

	p.mu.Lock()
	p.opened++
	p.Last = s
	p.mu.Unlock()

	defer func() {
		p.mu.Lock()
		p.closed++
		p.mu.Unlock()
	}()

	return fn(ctx, s)
}

func (p *FakeProvider) Counts() (opened, closed int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.opened, p.closed
}

// ParseStyle splits an inline style attribute into property/value pairs.
func ParseStyle(attr string) map[string]string {
	out := map[string]string{}
	for _, decl := range strings.Split(attr, ";") {
		k, v, ok := strings.Cut(decl, ":")
		if !ok {
			continue
		}
		k = strings.TrimSpace(strings.ToLower(k))
		if k != "" {
			out[k] = strings.TrimSpace(v)
		}
	}
	return out
}

func FormatStyle(style map[string]string) string {
	keys := make([]string, 0, len(style))
	for k := range style {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+style[k]+";")
	}
	return strings.Join(parts, " ")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
