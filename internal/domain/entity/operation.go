package entity

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
)

type EditKind string

const (
	EditText      EditKind = "text"
	EditInnerHTML EditKind = "innerHTML"
	EditStyle     EditKind = "style"
	EditAttribute EditKind = "attribute"
	EditClass     EditKind = "class"
	EditReplace   EditKind = "replace"
	EditHide      EditKind = "hide"
	EditShow      EditKind = "show"
)

// EditOperation is a closed set: only the variants declared in this file
// implement it.
type EditOperation interface {
	Kind() EditKind
	editOperation()
}

type SetText struct{ Text string }

type SetInnerHTML struct{ HTML string }

// MergeStyle holds kebab-case CSS property names.
type MergeStyle struct{ Properties map[string]string }

type SetAttribute struct{ Name, Value string }

type ModifyClass struct{ Add, Remove []string }

type ReplaceElement struct{ HTML string }

type Hide struct{}

type Show struct{}

func (SetText) Kind() EditKind        { return EditText }
func (SetInnerHTML) Kind() EditKind   { return EditInnerHTML }
func (MergeStyle) Kind() EditKind     { return EditStyle }
func (SetAttribute) Kind() EditKind   { return EditAttribute }
func (ModifyClass) Kind() EditKind    { return EditClass }
func (ReplaceElement) Kind() EditKind { return EditReplace }
func (Hide) Kind() EditKind           { return EditHide }
func (Show) Kind() EditKind           { return EditShow }

func (SetText) editOperation()        {}
func (SetInnerHTML) editOperation()   {}
func (MergeStyle) editOperation()     {}
func (SetAttribute) editOperation()   {}
func (ModifyClass) editOperation()    {}
func (ReplaceElement) editOperation() {}
func (Hide) editOperation()           {}
func (Show) editOperation()           {}

var attrNameRe = regexp.MustCompile(`^[A-Za-z_:][-A-Za-z0-9_:.]*$`)

// NewEditOperation decodes payload according to kind and rejects any
// disagreement between the two with ErrValidation.
func NewEditOperation(kind string, payload json.RawMessage) (EditOperation, error) {
	payload = bytes.TrimSpace(payload)

	switch EditKind(kind) {
	case EditText:
		var text string
		if err := decodeString(payload, &text); err != nil {
			return nil, invalidPayload(kind, err)
		}
		return SetText{Text: text}, nil

	case EditInnerHTML:
		var markup string
		if err := decodeString(payload, &markup); err != nil {
			return nil, invalidPayload(kind, err)
		}
		return SetInnerHTML{HTML: markup}, nil

	case EditReplace:
		var markup string
		if err := decodeString(payload, &markup); err != nil {
			return nil, invalidPayload(kind, err)
		}
		if strings.TrimSpace(markup) == "" {
			return nil, fmt.Errorf("%w: replace requires non-empty markup", ErrValidation)
		}
		return ReplaceElement{HTML: markup}, nil

	case EditStyle:
		props, err := decodeStyle(payload)
		if err != nil {
			return nil, invalidPayload(kind, err)
		}
		return NewMergeStyle(props)

	case EditAttribute:
		var attr struct {
			Name  *string `json:"name"`
			Value *string `json:"value"`
		}
		if err := decodeObject(payload, &attr); err != nil {
			return nil, invalidPayload(kind, err)
		}
		if attr.Name == nil {
			return nil, fmt.Errorf("%w: attribute requires a name", ErrValidation)
		}
		value := ""
		if attr.Value != nil {
			value = *attr.Value
		}
		return NewSetAttribute(*attr.Name, value)

	case EditClass:
		var cls struct {
			Add    []string `json:"add"`
			Remove []string `json:"remove"`
		}
		if err := decodeObject(payload, &cls); err != nil {
			return nil, invalidPayload(kind, err)
		}
		return NewModifyClass(cls.Add, cls.Remove)

	case EditHide, EditShow:
		if len(payload) != 0 && !bytes.Equal(payload, []byte("null")) &&
			!bytes.Equal(payload, []byte(`""`)) && !bytes.Equal(payload, []byte("{}")) {
			return nil, fmt.Errorf("%w: %s takes no payload", ErrValidation, kind)
		}
		if EditKind(kind) == EditHide {
			return Hide{}, nil
		}
		return Show{}, nil

	case "":
		return nil, fmt.Errorf("%w: edit_type is required", ErrValidation)

	default:
		return nil, fmt.Errorf("%w: unknown edit_type %q", ErrValidation, kind)
	}
}

func NewMergeStyle(props map[string]string) (MergeStyle, error) {
	if len(props) == 0 {
		return MergeStyle{}, fmt.Errorf("%w: style requires at least one property", ErrValidation)
	}
	out := make(map[string]string, len(props))
	for k, v := range props {
		name := CSSPropertyName(k)
		if name == "" {
			return MergeStyle{}, fmt.Errorf("%w: empty style property name", ErrValidation)
		}
		out[name] = strings.TrimSpace(v)
	}
	return MergeStyle{Properties: out}, nil
}

func NewSetAttribute(name, value string) (SetAttribute, error) {
	name = strings.TrimSpace(name)
	if !attrNameRe.MatchString(name) {
		return SetAttribute{}, fmt.Errorf("%w: invalid attribute name %q", ErrValidation, name)
	}
	return SetAttribute{Name: name, Value: value}, nil
}

func NewModifyClass(add, remove []string) (ModifyClass, error) {
	op := ModifyClass{Add: classTokens(add), Remove: classTokens(remove)}
	if len(op.Add) == 0 && len(op.Remove) == 0 {
		return ModifyClass{}, fmt.Errorf("%w: class requires add or remove entries", ErrValidation)
	}
	return op, nil
}

// SortedProperties returns the style property names in a stable order.
func (m MergeStyle) SortedProperties() []string {
	keys := make([]string, 0, len(m.Properties))
	for k := range m.Properties {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// CSSPropertyName converts camelCase keys (backgroundColor) to their
// kebab-case form. Custom properties (--x) are left alone.
func CSSPropertyName(key string) string {
	key = strings.TrimSpace(key)
	if strings.HasPrefix(key, "--") {
		return key
	}
	var b strings.Builder
	for i, r := range key {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func classTokens(in []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, entry := range in {
		for _, tok := range strings.Fields(entry) {
			if !seen[tok] {
				seen[tok] = true
				out = append(out, tok)
			}
		}
	}
	return out
}

func decodeString(payload json.RawMessage, out *string) error {
	if len(payload) == 0 || payload[0] != '"' {
		return fmt.Errorf("expected a string")
	}
	return json.Unmarshal(payload, out)
}

func decodeObject(payload json.RawMessage, out any) error {
	if len(payload) == 0 || payload[0] != '{' {
		return fmt.Errorf("expected an object")
	}
	return json.Unmarshal(payload, out)
}

// decodeStyle accepts an object or a JSON-encoded object string.
func decodeStyle(payload json.RawMessage) (map[string]string, error) {
	if len(payload) > 0 && payload[0] == '"' {
		var inner string
		if err := json.Unmarshal(payload, &inner); err != nil {
			return nil, err
		}
		payload = json.RawMessage(strings.TrimSpace(inner))
	}
	if len(payload) == 0 || payload[0] != '{' {
		return nil, fmt.Errorf("expected an object of property/value pairs")
	}

	var raw map[string]any
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, err
	}
	props := make(map[string]string, len(raw))
	for k, v := range raw {
		switch val := v.(type) {
		case string:
			props[k] = val
		case float64:
			props[k] = fmt.Sprintf("%g", val)
		default:
			return nil, fmt.Errorf("style value for %q must be a string or number", k)
		}
	}
	return props, nil
}

func invalidPayload(kind string, err error) error {
	return fmt.Errorf("%w: invalid %s payload: %v", ErrValidation, kind, err)
}
