package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	signups = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "checkup",
			Name:      "signups_total",
			Help:      "Count of employees who signed up.",
		},
	)

	reservationsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "checkup",
			Name:      "reservations_created_total",
			Help:      "Count of checkup reservations created.",
		},
	)

	reservationsCanceled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "checkup",
			Name:      "reservations_canceled_total",
			Help:      "Count of checkup reservations canceled by their owner.",
		},
	)

	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "checkup",
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests by route and status.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(signups, reservationsCreated, reservationsCanceled, requestDuration)
	})
}

func IncSignup() {
	signups.Inc()
}

func IncReservationCreated() {
	reservationsCreated.Inc()
}

func IncReservationCanceled() {
	reservationsCanceled.Inc()
}

// Middleware observes request latency labelled by the matched route template.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		requestDuration.
			WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).
			Observe(time.Since(start).Seconds())
	}
}
