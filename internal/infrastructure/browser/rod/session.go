package rod

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-rod/rod"

	"dom-engine/internal/application/port/output"
	"dom-engine/internal/domain/entity"
)

var _ output.Session = (*session)(nil)

type session struct {
	id         string
	page       *rod.Page
	navTimeout time.Duration
	shot       entity.ScreenshotOptions
}

func (s *session) ID() string {
	return s.id
}

func (s *session) Load(ctx context.Context, document string) error {
	p := s.page.Context(ctx)
	if err := p.SetDocumentContent(document); err != nil {
		return fmt.Errorf("%w: load document: %v", entity.ErrEngineFault, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("%w: wait for document: %v", entity.ErrEngineFault, err)
	}
	return nil
}

func (s *session) Navigate(ctx context.Context, url string) error {
	navCtx, cancel := context.WithTimeout(ctx, s.navTimeout)
	defer cancel()

	p := s.page.Context(navCtx)
	if err := p.Navigate(url); err != nil {
		return fmt.Errorf("%w: %s: %v", entity.ErrNavigationFailed, url, err)
	}
	if err := p.WaitLoad(); err != nil {
		return fmt.Errorf("%w: %s: wait load: %v", entity.ErrNavigationFailed, url, err)
	}
	return nil
}

func (s *session) Document(ctx context.Context) (string, error) {
	var doc string
	if err := s.eval(ctx, &doc, documentJS); err != nil {
		return "", err
	}
	return doc, nil
}

func (s *session) Count(ctx context.Context, selector string) (int, error) {
	var n int
	if err := s.eval(ctx, &n, countJS, selector); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *session) Apply(ctx context.Context, selector string, op entity.EditOperation, all bool) (int, error) {
	edit, err := editPayload(op)
	if err != nil {
		return 0, err
	}
	var n int
	if err := s.eval(ctx, &n, applyJS, selector, edit, all); err != nil {
		return 0, err
	}
	return n, nil
}

// scriptResult is the envelope every script returns as a JSON string.
type scriptResult struct {
	Data  json.RawMessage `json:"data"`
	Error string          `json:"error"`
	Kind  string          `json:"kind"`
}

func (s *session) eval(ctx context.Context, out any, js string, args ...any) error {
	res, err := s.page.Context(ctx).Eval(js, args...)
	if err != nil {
		return fmt.Errorf("%w: evaluate script: %v", entity.ErrEngineFault, err)
	}

	var r scriptResult
	if err := json.Unmarshal([]byte(res.Value.Str()), &r); err != nil {
		return fmt.Errorf("%w: decode script result: %v", entity.ErrEngineFault, err)
	}

	switch r.Kind {
	case "":
	case "selector":
		return fmt.Errorf("%w: invalid selector: %s", entity.ErrValidation, r.Error)
	case "not_found":
		return fmt.Errorf("%w: %s", entity.ErrElementNotFound, r.Error)
	default:
		return fmt.Errorf("%w: script: %s", entity.ErrEngineFault, r.Error)
	}

	if out == nil || len(r.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Data, out); err != nil {
		return fmt.Errorf("%w: decode script data: %v", entity.ErrEngineFault, err)
	}
	return nil
}

type styleDecl struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Priority string `json:"priority"`
}

func editPayload(op entity.EditOperation) (map[string]any, error) {
	switch o := op.(type) {
	case entity.SetText:
		return map[string]any{"kind": "text", "text": o.Text}, nil
	case entity.SetInnerHTML:
		return map[string]any{"kind": "innerHTML", "html": o.HTML}, nil
	case entity.MergeStyle:
		decls := make([]styleDecl, 0, len(o.Properties))
		for _, name := range o.SortedProperties() {
			value, priority := splitImportant(o.Properties[name])
			decls = append(decls, styleDecl{Name: name, Value: value, Priority: priority})
		}
		return map[string]any{"kind": "style", "properties": decls}, nil
	case entity.SetAttribute:
		return map[string]any{"kind": "attribute", "name": o.Name, "value": o.Value}, nil
	case entity.ModifyClass:
		return map[string]any{"kind": "class", "add": nonNil(o.Add), "remove": nonNil(o.Remove)}, nil
	case entity.ReplaceElement:
		return map[string]any{"kind": "replace", "html": o.HTML}, nil
	case entity.Hide:
		return map[string]any{"kind": "hide"}, nil
	case entity.Show:
		return map[string]any{"kind": "show"}, nil
	}
	return nil, fmt.Errorf("%w: unsupported edit %T", entity.ErrValidation, op)
}

func splitImportant(value string) (string, string) {
	v := strings.TrimSpace(value)
	if i := strings.LastIndex(strings.ToLower(v), "!important"); i >= 0 && strings.TrimSpace(v[i+len("!important"):]) == "" {
		return strings.TrimSpace(v[:i]), "important"
	}
	return v, ""
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
