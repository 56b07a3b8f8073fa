package provider

import (
	"context"
)

// Backend fetches the raw fact document for one object of an option type.
// Identifier is the object id the trigger was fired with; global option types
// are fetched with an empty identifier.
type Backend interface {
	Fetch(ctx context.Context, config SourceConfig, identifier string) (map[string]interface{}, error)
}
