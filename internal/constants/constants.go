package constants

import "time"

const (
	DefaultHTTPTimeout     = 10 * time.Second
	DefaultDeliveryTimeout = 5 * time.Second
)

const (
	ShutdownTimeout = 5 * time.Second
	// FlushTimeout bounds the shutdown flush of still-queued events.
	FlushTimeout = 10 * time.Second
	// GaugeRefreshInterval is how often the active template config gauge is
	// recomputed from the store.
	GaugeRefreshInterval = 30 * time.Second
)

const (
	DefaultLimit       = 100
	MaxLimit           = 1000
	DefaultTruncateLen = 100
)

const (
	HeaderIntegration = "X-Beacon-Integration"
	HeaderTrigger     = "X-Beacon-Trigger"
)

// The analytics endpoint acknowledges accepted events with 202 and nothing else.
const DeliveryAcceptedStatus = 202

const (
	SourceTypeAPI        = "api"
	SourceTypeMongoDB    = "mongodb"
	SourceTypePostgreSQL = "postgresql"
	SourceTypeCache      = "cache"
	SourceTypeRedis      = "redis"
)

const (
	ProviderNameMongoDB    = "mongodb"
	ProviderNamePostgreSQL = "postgresql"
	ProviderNameCache      = "cache"
	ProviderNameAPI        = "api"
)

const (
	TemplateCollection = "template_configs"
)
