package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreview_MarksUnresolved(t *testing.T) {
	facts := FactMap{
		"order": {"id": "A-1"},
	}
	tpl := Template{
		Name:   "order_{order:status}",
		Values: Scalar("{order:id} / {user:email}"),
	}

	out := Preview(tpl, facts)

	assert.Equal(t, "order_[order:status]", out.Name)
	assert.Equal(t, "A-1 / [user:email]", out.Values.ScalarValue())
}

func TestPreview_ResolvedMatchesSubstitute(t *testing.T) {
	facts := FactMap{
		"order": {"id": "A-1", "status": "paid"},
	}
	tpl := Template{
		Name: "order_{order:status}",
		Values: Pairs([]KeyValue{
			{Key: "order_id", Value: "{order:id}"},
		}),
	}

	preview := Preview(tpl, facts)
	live := Substitute(tpl, facts)

	assert.Equal(t, live.Name, preview.Name)
	require.Len(t, preview.Values.PairsValue(), 1)
	assert.Equal(t, live.Values.PairsValue()[0], preview.Values.PairsValue()[0])
}

func TestPreview_NonScalarMarked(t *testing.T) {
	facts := FactMap{
		"order": {"items": []interface{}{"a"}},
	}
	tpl := Template{Name: "n", Values: Scalar("{order:items}")}

	out := Preview(tpl, facts)

	assert.Equal(t, "[order:items]", out.Values.ScalarValue())
}
