package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_store_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "movie_store_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	// Cart
	CartOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_store_cart_operations_total",
			Help: "Total number of cart operations",
		},
		[]string{"operation"}, // "add", "clear"
	)

	// Orders
	OrdersCreated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_store_orders_created_total",
			Help: "Total number of orders created",
		},
		[]string{"region"},
	)

	OrderRevenue = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_store_order_revenue_total",
			Help: "Sum of order totals",
		},
		[]string{"region"},
	)

	CheckoutSkippedItems = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "movie_store_checkout_skipped_items_total",
			Help: "Cart entries skipped at checkout because the movie no longer exists",
		},
	)

	// Events
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_store_events_published_total",
			Help: "Total number of domain events published",
		},
		[]string{"subject", "result"}, // result: "ok", "error", "rejected"
	)

	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "movie_store_event_breaker_state",
			Help: "Event publisher circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// Cache
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_store_cache_lookups_total",
			Help: "Cache lookups by cache and outcome",
		},
		[]string{"cache", "outcome"}, // outcome: "hit", "miss"
	)

	// Rating worker
	RatingRecalculations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "movie_store_rating_recalculations_total",
			Help: "Movie rating recalculations by result",
		},
		[]string{"result"},
	)
)

// RecordHTTPRequest records one served request
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordCartOperation counts a cart mutation
func RecordCartOperation(operation string) {
	CartOperations.WithLabelValues(operation).Inc()
}

// RecordOrder records a created order and the cart entries it skipped
func RecordOrder(region string, total float64, skipped int) {
	OrdersCreated.WithLabelValues(region).Inc()
	OrderRevenue.WithLabelValues(region).Add(total)
	if skipped > 0 {
		CheckoutSkippedItems.Add(float64(skipped))
	}
}

// RecordEventPublish records the result of publishing to a subject
func RecordEventPublish(subject, result string) {
	EventsPublished.WithLabelValues(subject, result).Inc()
}

// SetBreakerState publishes the numeric breaker state
func SetBreakerState(name string, state int) {
	BreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordCacheLookup records a cache hit or miss
func RecordCacheLookup(cache string, hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	CacheLookups.WithLabelValues(cache, outcome).Inc()
}

// RecordRatingRecalculation records a worker recalculation
func RecordRatingRecalculation(err error) {
	if err != nil {
		RatingRecalculations.WithLabelValues("error").Inc()
		return
	}
	RatingRecalculations.WithLabelValues("ok").Inc()
}
