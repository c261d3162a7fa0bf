// Package selector makes caller supplied CSS selectors safe for
// querySelector when class names come from utility-class frameworks
// (hover:bg-red-500, w-[100px], md:w-1/2, !mt-0 ...).
//
// Only class components are rewritten. Tag names, id components, attribute
// selectors and parenthesised pseudo-class arguments are passed through as
// written.
package selector

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

var (
	bareRe   = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9]*$`)
	simpleRe = regexp.MustCompile(`^[.#][A-Za-z_][A-Za-z0-9_-]*$`)
)

// pseudo lists the pseudo-classes and pseudo-elements that end a class
// component instead of being escaped into it.
var pseudo = map[string]bool{
	"hover": true, "focus": true, "focus-within": true, "focus-visible": true,
	"active": true, "visited": true, "link": true, "target": true,
	"checked": true, "disabled": true, "enabled": true, "required": true,
	"optional": true, "valid": true, "invalid": true, "read-only": true,
	"default": true, "indeterminate": true, "placeholder-shown": true,
	"first-child": true, "last-child": true, "only-child": true,
	"first-of-type": true, "last-of-type": true, "only-of-type": true,
	"nth-child": true, "nth-last-child": true, "nth-of-type": true,
	"nth-last-of-type": true, "not": true, "is": true, "where": true,
	"has": true, "empty": true, "root": true, "before": true, "after": true,
	"placeholder": true, "selection": true, "first-letter": true,
	"first-line": true, "marker": true,
}

// Escape returns sel rewritten so that reserved characters inside class
// names are backslash escaped. Simple selectors are returned unchanged.
func Escape(sel string) string {
	sel = strings.TrimSpace(sel)
	if sel == "" || bareRe.MatchString(sel) || simpleRe.MatchString(sel) {
		return sel
	}

	s := &scanner{src: []rune(sel)}
	s.run()
	return s.out.String()
}

type scanner struct {
	src []rune
	i   int
	out strings.Builder
}

func (s *scanner) run() {
	for s.i < len(s.src) {
		r := s.src[s.i]
		switch {
		case unicode.IsSpace(r):
			for s.i < len(s.src) && unicode.IsSpace(s.src[s.i]) {
				s.i++
			}
			if s.i < len(s.src) {
				s.out.WriteByte(' ')
			}
		case r == '.':
			s.out.WriteRune(r)
			s.i++
			s.class()
		case r == '[':
			s.copyBalanced('[', ']')
		case r == '(':
			s.copyBalanced('(', ')')
		case r == '\\':
			s.copyEscape()
		default:
			s.out.WriteRune(r)
			s.i++
		}
	}
}

// class consumes one class component starting at s.i.
func (s *scanner) class() {
	n := 0
	var prev rune
	for s.i < len(s.src) {
		r := s.src[s.i]
		switch {
		case r == '\\':
			s.copyEscape()
		case r == '[' && (n == 0 || prev == '-' || prev == ':'):
			if !s.arbitrary() {
				return
			}
		case r == ':' && s.pseudoAt(s.i):
			return
		case endsClass(r):
			return
		default:
			s.ident(r, n)
			s.i++
		}
		prev = r
		n++
	}
}

// arbitrary escapes a bracketed arbitrary value such as [#1da1f2] or
// [&>*]. It reports false when whitespace cut the value short.
func (s *scanner) arbitrary() bool {
	depth := 0
	for s.i < len(s.src) {
		r := s.src[s.i]
		if unicode.IsSpace(r) {
			return false
		}
		switch r {
		case '[':
			depth++
		case ']':
			depth--
		}
		s.ident(r, -1)
		s.i++
		if depth == 0 {
			return true
		}
	}
	return true
}

// ident writes r as part of an identifier at position n of the class name.
// n < 0 means "not at the start".
func (s *scanner) ident(r rune, n int) {
	switch {
	case n == 0 && unicode.IsDigit(r):
		fmt.Fprintf(&s.out, "\\%x ", r)
	case n == 1 && unicode.IsDigit(r) && s.src[s.i-1] == '-':
		fmt.Fprintf(&s.out, "\\%x ", r)
	case identRune(r):
		s.out.WriteRune(r)
	default:
		s.out.WriteByte('\\')
		s.out.WriteRune(r)
	}
}

// pseudoAt reports whether the colon at i starts a pseudo-class or
// pseudo-element that runs to the end of the component.
func (s *scanner) pseudoAt(i int) bool {
	j := i + 1
	if j < len(s.src) && s.src[j] == ':' {
		j++
	}
	start := j
	for j < len(s.src) && (unicode.IsLetter(s.src[j]) || s.src[j] == '-') {
		j++
	}
	if !pseudo[strings.ToLower(string(s.src[start:j]))] {
		return false
	}
	if j == len(s.src) {
		return true
	}
	switch next := s.src[j]; {
	case next == '(':
		return true
	case next == ':':
		return s.pseudoAt(j)
	default:
		return endsClass(next)
	}
}

// copyBalanced copies an attribute selector or argument list verbatim,
// honouring quotes and nesting.
func (s *scanner) copyBalanced(open, close rune) {
	depth := 0
	var quote rune
	for s.i < len(s.src) {
		r := s.src[s.i]
		s.out.WriteRune(r)
		s.i++
		switch {
		case quote != 0:
			if r == '\\' && s.i < len(s.src) {
				s.out.WriteRune(s.src[s.i])
				s.i++
			} else if r == quote {
				quote = 0
			}
		case r == '"' || r == '\'':
			quote = r
		case r == open:
			depth++
		case r == close:
			depth--
			if depth == 0 {
				return
			}
		}
	}
}

func (s *scanner) copyEscape() {
	s.out.WriteRune(s.src[s.i])
	s.i++
	if s.i < len(s.src) {
		s.out.WriteRune(s.src[s.i])
		s.i++
	}
}

func endsClass(r rune) bool {
	switch r {
	case '.', '#', ',', '>', '+', '~', '[', '(', ')':
		return true
	}
	return unicode.IsSpace(r)
}

func identRune(r rune) bool {
	return r == '-' || r == '_' || r >= 0x80 ||
		(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')
}
