package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beacon/internal/logger"
)

func TestOptionRegistry_Resolve(t *testing.T) {
	reg := NewOptionRegistry(logger.NopLogger())
	reg.Register(OptionType{
		ID: "order",
		Resolver: func(ctx context.Context, identifier string) (map[string]interface{}, error) {
			return map[string]interface{}{"id": identifier, "status": "paid"}, nil
		},
	})

	facts := reg.Resolve(context.Background(), "order", "A-1")

	assert.Equal(t, "A-1", facts["id"])
	assert.Equal(t, "paid", facts["status"])
}

func TestOptionRegistry_Resolve_UnknownTypeReturnsEmpty(t *testing.T) {
	reg := NewOptionRegistry(logger.NopLogger())

	facts := reg.Resolve(context.Background(), "ghost", "x")

	require.NotNil(t, facts)
	assert.Empty(t, facts)
}

func TestOptionRegistry_Resolve_ErrorDegradesToEmpty(t *testing.T) {
	reg := NewOptionRegistry(logger.NopLogger())
	reg.Register(OptionType{
		ID: "flaky",
		Resolver: func(ctx context.Context, identifier string) (map[string]interface{}, error) {
			return nil, errors.New("backend down")
		},
	})

	facts := reg.Resolve(context.Background(), "flaky", "x")

	require.NotNil(t, facts)
	assert.Empty(t, facts)
}

func TestOptionRegistry_Resolve_NilResultBecomesEmptyMap(t *testing.T) {
	reg := NewOptionRegistry(logger.NopLogger())
	reg.Register(OptionType{
		ID: "sparse",
		Resolver: func(ctx context.Context, identifier string) (map[string]interface{}, error) {
			return nil, nil
		},
	})

	facts := reg.Resolve(context.Background(), "sparse", "x")

	require.NotNil(t, facts)
	assert.Empty(t, facts)
}

func TestOptionRegistry_GlobalTypesSorted(t *testing.T) {
	reg := NewOptionRegistry(logger.NopLogger())
	reg.Register(OptionType{ID: "user", Global: true})
	reg.Register(OptionType{ID: "session", Global: true})
	reg.Register(OptionType{ID: "order"})

	assert.Equal(t, []string{"session", "user"}, reg.GlobalTypes())
}

func TestOptionRegistry_Declared(t *testing.T) {
	reg := NewOptionRegistry(logger.NopLogger())
	reg.Register(OptionType{
		ID: "order",
		Declared: []OptionDescriptor{
			{Key: "id", Description: "Order identifier"},
			{Key: "total", Description: "Order total", Example: "42.00"},
		},
	})

	descs := reg.Declared("order")
	require.Len(t, descs, 2)
	assert.Equal(t, "id", descs[0].Key)

	assert.Nil(t, reg.Declared("ghost"))
}
