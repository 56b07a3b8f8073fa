package cel

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEvaluator(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)
	assert.NotNil(t, eval)
}

func TestValidateCondition(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	tests := []struct {
		name      string
		expr      string
		wantError bool
	}{
		{
			name:      "valid simple expression",
			expr:      `facts.order.status == "paid"`,
			wantError: false,
		},
		{
			name:      "valid trigger comparison",
			expr:      `trigger == "order_placed"`,
			wantError: false,
		},
		{
			name:      "non-boolean expression",
			expr:      `facts.order.status`,
			wantError: true,
		},
		{
			name:      "invalid expression",
			expr:      `invalid syntax here!!!`,
			wantError: true,
		},
		{
			name:      "undefined variable",
			expr:      `undefinedVar == "test"`,
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := eval.ValidateCondition(tt.expr)
			if tt.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEvaluateCondition(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	facts := map[string]interface{}{
		"order": map[string]interface{}{
			"status": "paid",
			"total":  150.0,
		},
		"user": map[string]interface{}{
			"tier": "premium",
		},
	}
	identifiers := map[string]string{"order": "A-1001"}

	tests := []struct {
		name string
		expr string
		want bool
	}{
		{
			name: "status match",
			expr: `facts.order.status == "paid"`,
			want: true,
		},
		{
			name: "numeric threshold passes",
			expr: `facts.order.total > 100.0`,
			want: true,
		},
		{
			name: "numeric threshold fails",
			expr: `facts.order.total > 1000.0`,
			want: false,
		},
		{
			name: "trigger variable",
			expr: `trigger == "order_placed"`,
			want: true,
		},
		{
			name: "identifier lookup",
			expr: `identifiers.order == "A-1001"`,
			want: true,
		},
		{
			name: "combined conditions",
			expr: `facts.order.status == "paid" && facts.user.tier == "premium"`,
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := eval.EvaluateCondition(context.Background(), tt.expr, "order_placed", identifiers, facts)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEvaluateCondition_MissingFieldErrors(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	_, err = eval.EvaluateCondition(context.Background(), `facts.ghost.field == "x"`, "t", nil, map[string]interface{}{})
	assert.Error(t, err)
}

func TestConditionExpressionExamplesAllValidate(t *testing.T) {
	eval, err := NewEvaluator()
	require.NoError(t, err)

	for name, expr := range ConditionExpressionExamples {
		t.Run(name, func(t *testing.T) {
			assert.NoError(t, eval.ValidateCondition(expr))
		})
	}
}
