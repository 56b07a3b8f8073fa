package registry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"beacon/internal/logger"
)

func newTestRegistries() (*OptionRegistry, *TriggerRegistry) {
	options := NewOptionRegistry(logger.NopLogger())
	triggers := NewTriggerRegistry(options, logger.NopLogger())
	return options, triggers
}

func TestTriggerRegistry_FinalizeAppendsGlobalTypes(t *testing.T) {
	options, triggers := newTestRegistries()
	options.Register(OptionType{ID: "order"})
	options.Register(OptionType{ID: "user", Global: true})
	options.Register(OptionType{ID: "session", Global: true})

	triggers.Register(Trigger{ID: "order_placed", OptionTypes: []string{"order"}})
	triggers.Finalize()

	got := triggers.Get("order_placed")
	require.NotNil(t, got)
	assert.Equal(t, []string{"order", "session", "user"}, got.OptionTypes)
}

func TestTriggerRegistry_FinalizeDoesNotDuplicateDeclaredGlobals(t *testing.T) {
	options, triggers := newTestRegistries()
	options.Register(OptionType{ID: "user", Global: true})

	triggers.Register(Trigger{ID: "login", OptionTypes: []string{"user"}})
	triggers.Finalize()

	got := triggers.Get("login")
	require.NotNil(t, got)
	assert.Equal(t, []string{"user"}, got.OptionTypes)
}

func TestTriggerRegistry_RegistrationAfterFinalizeIgnored(t *testing.T) {
	options, triggers := newTestRegistries()
	triggers.Register(Trigger{ID: "one"})
	triggers.Finalize()

	triggers.Register(Trigger{ID: "late"})
	options.Register(OptionType{ID: "late_type", Resolver: func(context.Context, string) (map[string]interface{}, error) {
		return nil, nil
	}})

	assert.Nil(t, triggers.Get("late"))
	_, ok := options.Get("late_type")
	assert.False(t, ok)
}

func TestTriggerRegistry_ListSortedByID(t *testing.T) {
	_, triggers := newTestRegistries()
	triggers.Register(Trigger{ID: "purchase"})
	triggers.Register(Trigger{ID: "add_to_cart"})
	triggers.Register(Trigger{ID: "login"})
	triggers.Finalize()

	list := triggers.List()
	require.Len(t, list, 3)
	assert.Equal(t, "add_to_cart", list[0].ID)
	assert.Equal(t, "login", list[1].ID)
	assert.Equal(t, "purchase", list[2].ID)
}

func TestTriggerRegistry_ListByOptionType(t *testing.T) {
	options, triggers := newTestRegistries()
	options.Register(OptionType{ID: "order"})
	triggers.Register(Trigger{ID: "order_placed", OptionTypes: []string{"order"}})
	triggers.Register(Trigger{ID: "page_view"})
	triggers.Finalize()

	matched := triggers.ListByOptionType("order")
	require.Len(t, matched, 1)
	assert.Equal(t, "order_placed", matched[0].ID)
}

func TestTriggerRegistry_GetUnknownReturnsNil(t *testing.T) {
	_, triggers := newTestRegistries()
	assert.Nil(t, triggers.Get("ghost"))
}
