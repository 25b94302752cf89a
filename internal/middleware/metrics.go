package middleware

import (
	"sync"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts failed Redis commands by command name.
var RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "inkwell_redis_errors_total",
	Help: "Total number of Redis command errors.",
}, []string{"command"})

// IdentityProviderErrors counts failed identity provider calls by operation.
var IdentityProviderErrors = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "inkwell_identity_provider_errors_total",
	Help: "Total number of identity provider call failures.",
}, []string{"operation"})

// AuthFailures counts rejected authentication attempts by reason.
var AuthFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "inkwell_auth_failures_total",
	Help: "Total number of rejected authentication attempts.",
}, []string{"reason"})

var (
	promOnce sync.Once
	prom     *fiberprometheus.FiberPrometheus
)

// InitMetrics creates the Prometheus middleware for the given service name.
// The instance is shared; the default registry rejects duplicate collectors.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		prom = fiberprometheus.New(serviceName)
	})
	return prom
}

// MetricsMiddleware returns the request-level Prometheus middleware handler.
func MetricsMiddleware(prom *fiberprometheus.FiberPrometheus) fiber.Handler {
	return prom.Middleware
}
