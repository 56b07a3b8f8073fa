// Package provider supplies the data backends behind option types. A backend
// fetches the raw document for one object identifier; Bind turns a backend
// plus its source configuration into a registry resolver.
package provider

// SourceConfig describes where one option type's data lives. Which fields
// apply depends on the backend: URL/Method/Headers for the API backend,
// Database/Collection/Query/Field for the database backends, KeyPattern for
// the cache backend.
type SourceConfig struct {
	URL        string
	Method     string
	Headers    map[string]string
	RetryCount int

	Database   string
	Collection string
	Query      map[string]interface{}
	Field      string

	KeyPattern string
}
