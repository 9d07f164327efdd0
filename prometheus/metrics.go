package prometheus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Counter metrics
var (
	// Registration counters
	RegisterCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_register_total",
			Help: "Total number of owner registrations",
		},
	)

	LoginCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_login_total",
			Help: "Total number of login attempts",
		},
	)

	OTPRequestCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_otp_requests_total",
			Help: "Total number of OTP requests",
		},
	)

	// Error counters
	AuthErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_auth_errors_total",
			Help: "Total number of authentication errors",
		},
		[]string{"type"}, // type can be "login_failure", "invalid_token", "db_error" etc.
	)

	// Tenant connection registry counters
	ConnectionOpenCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_tenant_connections_opened_total",
			Help: "Total number of tenant database connections opened",
		},
	)

	ConnectionOpenErrorCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_tenant_connection_errors_total",
			Help: "Total number of failed tenant database connection attempts",
		},
	)

	ConnectionEvictionCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_tenant_connection_evictions_total",
			Help: "Total number of tenant connections evicted from the registry",
		},
		[]string{"reason"}, // reason is "idle" or "capacity"
	)

	EntityBindCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_entity_binds_total",
			Help: "Total number of entity schema bindings performed",
		},
		[]string{"kind"},
	)

	DirectoryCacheHitCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_directory_cache_hits_total",
			Help: "Total number of store directory cache hits",
		},
	)

	DirectoryCacheMissCounter = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "storefront_directory_cache_misses_total",
			Help: "Total number of store directory cache misses",
		},
	)

	TenantResolutionErrorCounter = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "storefront_tenant_resolution_errors_total",
			Help: "Total number of tenant resolution failures",
		},
		[]string{"type"}, // "not_found", "id_missing", "connection_failed"
	)
)

// Histogram metrics
var (
	ConnectionOpenDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "storefront_tenant_connection_open_duration_seconds",
			Help:    "Duration of tenant database connection opens in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	DBOperationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "storefront_db_operation_duration_seconds",
			Help:    "Duration of database operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"}, // operation can be "query", "insert", "update", "delete"
	)
)

// Gauge metrics
var (
	ActiveConnectionsGauge = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "storefront_tenant_connections_active",
			Help: "Number of tenant database connections currently held by the registry",
		},
	)

	InfoGauge = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "storefront_info",
			Help: "Information about the storefront service",
		},
		[]string{"version"},
	)
)

func init() {
	// Register counters
	prometheus.MustRegister(RegisterCounter)
	prometheus.MustRegister(LoginCounter)
	prometheus.MustRegister(OTPRequestCounter)
	prometheus.MustRegister(AuthErrorCounter)
	prometheus.MustRegister(ConnectionOpenCounter)
	prometheus.MustRegister(ConnectionOpenErrorCounter)
	prometheus.MustRegister(ConnectionEvictionCounter)
	prometheus.MustRegister(EntityBindCounter)
	prometheus.MustRegister(DirectoryCacheHitCounter)
	prometheus.MustRegister(DirectoryCacheMissCounter)
	prometheus.MustRegister(TenantResolutionErrorCounter)

	// Register histograms
	prometheus.MustRegister(ConnectionOpenDuration)
	prometheus.MustRegister(DBOperationDuration)

	// Register gauges
	prometheus.MustRegister(ActiveConnectionsGauge)
	prometheus.MustRegister(InfoGauge)

	// Set initial service info
	InfoGauge.With(prometheus.Labels{"version": "1.0.0"}).Set(1)
}

// TrackDBOperation measures database operation durations
func TrackDBOperation(operation string) func(time.Time) {
	startTime := time.Now()
	return func(endTime time.Time) {
		duration := time.Since(startTime).Seconds()
		DBOperationDuration.With(prometheus.Labels{
			"operation": operation,
		}).Observe(duration)
	}
}

// RecordAuthError records an authentication error by type
func RecordAuthError(errorType string) {
	AuthErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordResolutionError records a tenant resolution failure by type
func RecordResolutionError(errorType string) {
	TenantResolutionErrorCounter.With(prometheus.Labels{"type": errorType}).Inc()
}

// RecordEntityBind records a schema binding for an entity kind
func RecordEntityBind(kind string) {
	EntityBindCounter.With(prometheus.Labels{"kind": kind}).Inc()
}

// RecordEviction records a connection eviction by reason
func RecordEviction(reason string) {
	ConnectionEvictionCounter.With(prometheus.Labels{"reason": reason}).Inc()
}
