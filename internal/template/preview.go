package template

import "strings"

// markUnresolved renders a missed placeholder as `[type:field]` so preview
// output makes gaps visible without looking like a live token.
func markUnresolved(seg segment) string {
	return "[" + seg.typ + ":" + seg.field + "]"
}

// Preview substitutes like Substitute but renders every placeholder that
// cannot be resolved as a bracketed `[type:field]` marker. Authoring tools use
// this to show how a template would render against sample facts.
func Preview(tpl Template, facts FactMap) Template {
	out := tpl
	out.Name = resolveSegments(tokenize(tpl.Name), facts, "preview", markUnresolved)
	out.Values = tpl.Values.mapStrings(func(s string) string {
		return strings.TrimSpace(resolveSegments(tokenize(s), facts, "preview", markUnresolved))
	})
	return out
}
