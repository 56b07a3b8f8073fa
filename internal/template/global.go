package template

import (
	"context"

	"beacon/pkg/metrics"
)

// GlobalResolver resolves one global option type from ambient context. The
// registry's Resolve with an empty identifier satisfies this.
type GlobalResolver interface {
	Resolve(ctx context.Context, typeID, identifier string) map[string]interface{}
}

// SubstituteGlobal runs the second substitution pass: for every global type
// still referenced by the template, resolve it with an empty identifier and
// substitute again. The local pass already ran, so any value it inserted is
// untouchable here. Types whose placeholders were all consumed locally are
// skipped without a resolver call.
func SubstituteGlobal(ctx context.Context, tpl Template, globalTypes []string, resolver GlobalResolver) Template {
	out := tpl
	for _, typeID := range globalTypes {
		if !HasPlaceholderType(out, typeID) {
			continue
		}
		facts := FactMap{typeID: resolver.Resolve(ctx, typeID, "")}
		out = substitute(out, facts.Flatten(), "global")
	}
	if n := UnresolvedCount(out); n > 0 {
		metrics.UnresolvedPlaceholdersTotal.Add(float64(n))
	}
	return out
}
