package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	TriggersFiredTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracking_triggers_fired_total",
			Help: "Total number of trigger firings processed (count)",
		},
		[]string{"trigger", "status"},
	)

	EventsAssembledTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracking_events_assembled_total",
			Help: "Total number of events assembled from templates (count)",
		},
		[]string{"trigger", "status"},
	)

	AssemblyDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tracking_assembly_duration_ms",
			Help:    "Duration of event assembly in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500},
		},
		[]string{"status"},
	)

	SubstitutionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tracking_substitutions_total",
			Help: "Total number of placeholder substitutions performed (count)",
		},
		[]string{"pass"},
	)

	UnresolvedPlaceholdersTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tracking_unresolved_placeholders_total",
			Help: "Total number of placeholders left unresolved after both passes (count)",
		},
	)

	DeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delivery_events_total",
			Help: "Total number of events handed to the delivery transport (count)",
		},
		[]string{"status"},
	)

	DeliveryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "delivery_duration_ms",
			Help:    "Duration of delivery POSTs in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"status"},
	)

	QueueSize = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tracking_queue_size",
			Help: "Number of events currently queued for delivery (count)",
		},
	)

	ProviderRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "option_provider_requests_total",
			Help: "Total number of option provider resolutions (count)",
		},
		[]string{"provider", "status"},
	)

	ProviderDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "option_provider_duration_ms",
			Help:    "Duration of option provider resolutions in milliseconds",
			Buckets: []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000},
		},
		[]string{"provider"},
	)

	TemplateConfigsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "template_configs_active",
			Help: "Number of enabled template configurations (count)",
		},
	)

	CircuitBreakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open) (state code)",
		},
		[]string{"name"},
	)

	CircuitBreakerRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_requests_total",
			Help: "Total number of requests through circuit breaker (count)",
		},
		[]string{"name", "state"},
	)

	CircuitBreakerFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "circuit_breaker_failures_total",
			Help: "Total number of failures through circuit breaker (count)",
		},
		[]string{"name"},
	)

	RateLimitRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rate_limit_requests_total",
			Help: "Total number of requests checked against rate limit (count)",
		},
		[]string{"status"},
	)

	DatabaseQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "database_queries_total",
			Help: "Total number of database queries (count)",
		},
		[]string{"database", "operation", "status"},
	)
)

func RegisterTrackingMetrics() {
	prometheus.MustRegister(TriggersFiredTotal)
	prometheus.MustRegister(EventsAssembledTotal)
	prometheus.MustRegister(AssemblyDuration)
	prometheus.MustRegister(SubstitutionsTotal)
	prometheus.MustRegister(UnresolvedPlaceholdersTotal)
	prometheus.MustRegister(QueueSize)
	prometheus.MustRegister(TemplateConfigsActive)
}

func RegisterDeliveryMetrics() {
	prometheus.MustRegister(DeliveriesTotal)
	prometheus.MustRegister(DeliveryDuration)
}

func RegisterProviderMetrics() {
	prometheus.MustRegister(ProviderRequestsTotal)
	prometheus.MustRegister(ProviderDuration)
}

func RegisterCircuitBreakerMetrics() {
	prometheus.MustRegister(CircuitBreakerState)
	prometheus.MustRegister(CircuitBreakerRequests)
	prometheus.MustRegister(CircuitBreakerFailures)
}

func RegisterAuthoringMetrics() {
	prometheus.MustRegister(RateLimitRequestsTotal)
	prometheus.MustRegister(DatabaseQueriesTotal)
}

func ObserveAssemblyDuration(duration time.Duration, status string) {
	AssemblyDuration.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

func ObserveDeliveryDuration(duration time.Duration, status string) {
	DeliveryDuration.WithLabelValues(status).Observe(float64(duration.Milliseconds()))
}

func IncTriggerFired(trigger, status string) {
	TriggersFiredTotal.WithLabelValues(trigger, status).Inc()
}

func IncEventAssembled(trigger, status string) {
	EventsAssembledTotal.WithLabelValues(trigger, status).Inc()
}

func IncSubstitution(pass string) {
	SubstitutionsTotal.WithLabelValues(pass).Inc()
}

func IncDelivery(status string) {
	DeliveriesTotal.WithLabelValues(status).Inc()
}

func SetQueueSize(size int) {
	QueueSize.Set(float64(size))
}

func SetTemplateConfigsActive(count int) {
	TemplateConfigsActive.Set(float64(count))
}

func IncProviderRequest(provider, status string) {
	ProviderRequestsTotal.WithLabelValues(provider, status).Inc()
}

func ObserveProviderDuration(provider string, duration time.Duration) {
	ProviderDuration.WithLabelValues(provider).Observe(float64(duration.Milliseconds()))
}

func IncDatabaseQuery(database, operation, status string) {
	DatabaseQueriesTotal.WithLabelValues(database, operation, status).Inc()
}
