package values

import (
	"fmt"
	"strings"
)

// Template is the decoded form of a template constant: a string with
// embedded placeholders resolved at evaluation time by RESOLVE_TEMPLATE.
//
// The bytecode format has no dedicated "template" constant tag (§4.1 only
// defines null/string/int32/bool/list/map); a template is encoded as an
// ordinary string constant whose placeholders are brace-delimited, either
// empty ("{}") or holding expression text ("{region}"), in source order, one
// per value the VM will pop. "{{" and "}}" escape a literal brace.
// CompileTemplate performs this decoding; the text between a placeholder's
// braces is never needed at runtime (it was
// already compiled into the code immediately preceding RESOLVE_TEMPLATE),
// so only the placeholder count and the surrounding literal text matter.
type Template struct {
	raw              string
	literals         []string // len == placeholderCount+1
	placeholderCount int
}

// CompileTemplate parses raw into a Template. An unterminated "{" is an
// error.
func CompileTemplate(raw string) (*Template, error) {
	var literals []string
	var b strings.Builder
	count := 0

	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case '{':
			if i+1 < len(raw) && raw[i+1] == '{' {
				b.WriteByte('{')
				i++
				continue
			}
			end := strings.IndexByte(raw[i+1:], '}')
			if end < 0 {
				return nil, fmt.Errorf("template %q: unterminated '{' at offset %d", raw, i)
			}
			literals = append(literals, b.String())
			b.Reset()
			count++
			i += end + 1
		case '}':
			if i+1 < len(raw) && raw[i+1] == '}' {
				b.WriteByte('}')
				i++
				continue
			}
			return nil, fmt.Errorf("template %q: unescaped '}' at offset %d", raw, i)
		default:
			b.WriteByte(raw[i])
		}
	}
	literals = append(literals, b.String())

	return &Template{raw: raw, literals: literals, placeholderCount: count}, nil
}

// Raw returns the original, undecoded template string.
func (t *Template) Raw() string { return t.raw }

// PlaceholderCount is the number of expression values Resolve expects.
func (t *Template) PlaceholderCount() int { return t.placeholderCount }

// IsPassthrough reports whether the template is exactly one placeholder with
// no surrounding literal text, in which case a compiler may skip emitting
// RESOLVE_TEMPLATE entirely and use the expression's value directly.
func (t *Template) IsPassthrough() bool {
	return t.placeholderCount == 1 && t.literals[0] == "" && t.literals[1] == ""
}

// Resolve concatenates the template's literal parts with exprs, which must
// contain exactly PlaceholderCount values, each a String. If the template is
// a single bare placeholder (IsPassthrough), the sole value is returned
// unchanged (not coerced to String) rather than being re-concatenated.
func (t *Template) Resolve(exprs []Value) (Value, error) {
	if len(exprs) != t.placeholderCount {
		return nil, fmt.Errorf("template %q: expected %d values, got %d", t.raw, t.placeholderCount, len(exprs))
	}
	if t.IsPassthrough() {
		return exprs[0], nil
	}

	var b strings.Builder
	b.WriteString(t.literals[0])
	for i, v := range exprs {
		s, ok := v.(String)
		if !ok {
			return nil, fmt.Errorf("template %q: placeholder %d is %s, want string", t.raw, i, v.Type())
		}
		b.WriteString(string(s))
		b.WriteString(t.literals[i+1])
	}
	return String(b.String()), nil
}
