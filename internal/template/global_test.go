package template

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeGlobalResolver records which types were resolved and serves canned facts.
type fakeGlobalResolver struct {
	facts    map[string]map[string]interface{}
	resolved []string
}

func (f *fakeGlobalResolver) Resolve(_ context.Context, typeID, identifier string) map[string]interface{} {
	f.resolved = append(f.resolved, typeID+":"+identifier)
	if facts, ok := f.facts[typeID]; ok {
		return facts
	}
	return map[string]interface{}{}
}

func TestSubstituteGlobal_ResolvesRemainingPlaceholders(t *testing.T) {
	resolver := &fakeGlobalResolver{
		facts: map[string]map[string]interface{}{
			"session": {"visitor_id": "v-77"},
		},
	}
	tpl := Template{
		Name:   "page_view",
		Values: Scalar("visitor {session:visitor_id}"),
	}

	out := SubstituteGlobal(context.Background(), tpl, []string{"session"}, resolver)

	assert.Equal(t, "visitor v-77", out.Values.ScalarValue())
	assert.Equal(t, []string{"session:"}, resolver.resolved)
}

func TestSubstituteGlobal_LocalPassWins(t *testing.T) {
	resolver := &fakeGlobalResolver{
		facts: map[string]map[string]interface{}{
			"user": {"email": "ambient@example.com"},
		},
	}

	// The local pass already consumed the user placeholder.
	tpl := Template{Name: "n", Values: Scalar("{user:email}")}
	local := Substitute(tpl, FactMap{"user": {"email": "explicit@example.com"}})
	out := SubstituteGlobal(context.Background(), local, []string{"user"}, resolver)

	assert.Equal(t, "explicit@example.com", out.Values.ScalarValue())
	assert.Empty(t, resolver.resolved, "no global resolution when nothing is left to fill")
}

func TestSubstituteGlobal_SkipsUnreferencedTypes(t *testing.T) {
	resolver := &fakeGlobalResolver{}
	tpl := Template{Name: "static_event", Values: Scalar("static")}

	out := SubstituteGlobal(context.Background(), tpl, []string{"session", "user"}, resolver)

	assert.Equal(t, "static_event", out.Name)
	assert.Empty(t, resolver.resolved)
}

func TestSubstituteGlobal_MissLeavesVerbatim(t *testing.T) {
	resolver := &fakeGlobalResolver{}
	tpl := Template{Name: "n", Values: Scalar("{session:visitor_id}")}

	out := SubstituteGlobal(context.Background(), tpl, []string{"session"}, resolver)

	assert.Equal(t, "{session:visitor_id}", out.Values.ScalarValue())
}
