package template

import (
	"fmt"
	"strings"

	"beacon/pkg/metrics"
)

// segment is one piece of a tokenized template string: either literal text or
// a `{type:field}` placeholder.
type segment struct {
	text  string
	typ   string
	field string
}

func (s segment) isPlaceholder() bool { return s.typ != "" }

// tokenize splits s into literal and placeholder segments in one pass. A
// placeholder is `{type:field}` where type and field are non-empty and free of
// braces and whitespace; anything else stays literal text. There is no escape
// syntax: brace text that does not parse as a placeholder passes through
// untouched.
func tokenize(s string) []segment {
	var segs []segment
	lit := strings.Builder{}

	for i := 0; i < len(s); {
		open := strings.IndexByte(s[i:], '{')
		if open < 0 {
			lit.WriteString(s[i:])
			break
		}
		open += i

		closing := strings.IndexByte(s[open:], '}')
		if closing < 0 {
			lit.WriteString(s[i:])
			break
		}
		closing += open

		typ, field, ok := parsePlaceholder(s[open+1 : closing])
		if !ok {
			lit.WriteString(s[i : open+1])
			i = open + 1
			continue
		}

		lit.WriteString(s[i:open])
		if lit.Len() > 0 {
			segs = append(segs, segment{text: lit.String()})
			lit.Reset()
		}
		segs = append(segs, segment{text: s[open : closing+1], typ: typ, field: field})
		i = closing + 1
	}

	if lit.Len() > 0 {
		segs = append(segs, segment{text: lit.String()})
	}
	return segs
}

func parsePlaceholder(body string) (typ, field string, ok bool) {
	colon := strings.IndexByte(body, ':')
	if colon <= 0 || colon == len(body)-1 {
		return "", "", false
	}
	typ = body[:colon]
	field = body[colon+1:]
	if strings.ContainsAny(typ, "{} \t\n") || strings.ContainsAny(field, "{} \t\n") {
		return "", "", false
	}
	return typ, field, true
}

// resolveSegments renders segs against facts. Placeholders whose type and
// field resolve to a scalar are replaced with that value; everything else is
// rendered by miss. Inserted values are emitted as literal text and never
// re-scanned, so a fact value that happens to look like a placeholder is
// safe.
func resolveSegments(segs []segment, facts FactMap, pass string, miss func(segment) string) string {
	var b strings.Builder
	for _, seg := range segs {
		if !seg.isPlaceholder() {
			b.WriteString(seg.text)
			continue
		}

		fields, ok := facts[seg.typ]
		if !ok {
			b.WriteString(miss(seg))
			continue
		}
		raw, ok := fields[seg.field]
		if !ok {
			b.WriteString(miss(seg))
			continue
		}
		val, ok := scalarString(raw)
		if !ok {
			// Arrays and objects are never inlined into template text.
			b.WriteString(miss(seg))
			continue
		}

		metrics.IncSubstitution(pass)
		b.WriteString(val)
	}
	return b.String()
}

// scalarString renders a scalar fact value as text. Maps and slices are not
// scalars and report false.
func scalarString(v interface{}) (string, bool) {
	switch t := v.(type) {
	case nil:
		return "", false
	case string:
		return t, true
	case bool:
		if t {
			return "true", true
		}
		return "false", true
	case float64:
		// JSON numbers decode as float64; render integral values without the
		// trailing ".0" so `{order:id}` reads as 42, not 42.0.
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t)), true
		}
		return fmt.Sprintf("%v", t), true
	case float32, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return fmt.Sprintf("%v", t), true
	case fmt.Stringer:
		return t.String(), true
	default:
		return "", false
	}
}

func leaveVerbatim(seg segment) string { return seg.text }

// Substitute resolves every `{type:field}` placeholder in the template's name
// and values against facts. Unresolved placeholders stay verbatim so the
// global pass, or the raw text, can still surface them. Value strings are
// trimmed after replacement; the name is not.
func Substitute(tpl Template, facts FactMap) Template {
	return substitute(tpl, facts, "local")
}

func substitute(tpl Template, facts FactMap, pass string) Template {
	out := tpl
	out.Name = resolveSegments(tokenize(tpl.Name), facts, pass, leaveVerbatim)
	out.Values = tpl.Values.mapStrings(func(s string) string {
		return strings.TrimSpace(resolveSegments(tokenize(s), facts, pass, leaveVerbatim))
	})
	return out
}

// HasPlaceholderType reports whether any `{typeID:` placeholder remains in
// the template's name or values. The global pass uses this to decide whether
// resolving a global type is worth the lookup.
func HasPlaceholderType(tpl Template, typeID string) bool {
	if segmentsReference(tokenize(tpl.Name), typeID) {
		return true
	}
	for _, s := range tpl.Values.strings() {
		if segmentsReference(tokenize(s), typeID) {
			return true
		}
	}
	return false
}

func segmentsReference(segs []segment, typeID string) bool {
	for _, seg := range segs {
		if seg.isPlaceholder() && seg.typ == typeID {
			return true
		}
	}
	return false
}

// UnresolvedCount counts placeholders still present in the template. Used for
// observability after both passes ran.
func UnresolvedCount(tpl Template) int {
	n := countPlaceholders(tokenize(tpl.Name))
	for _, s := range tpl.Values.strings() {
		n += countPlaceholders(tokenize(s))
	}
	return n
}

func countPlaceholders(segs []segment) int {
	n := 0
	for _, seg := range segs {
		if seg.isPlaceholder() {
			n++
		}
	}
	return n
}
