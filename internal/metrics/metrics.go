// Package metrics объявляет метрики Prometheus сервиса и HTTP middleware
// для сбора длительности запросов.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CheckIns количество успешных входов по типу посещения.
	CheckIns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gym_checkins_total",
		Help: "Successful check-ins by attendance type.",
	}, []string{"type"})

	// CheckOuts количество успешных выходов.
	CheckOuts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gym_checkouts_total",
		Help: "Successful check-outs.",
	})

	// CheckInRejections отказы во входе по причине.
	CheckInRejections = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gym_checkin_rejections_total",
		Help: "Rejected check-ins by reason.",
	}, []string{"reason"})

	// ItemTransitions переходы статусов абонементов, выполненные планировщиком.
	ItemTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gym_subscription_item_transitions_total",
		Help: "Subscription item status transitions made by the scheduler.",
	}, []string{"status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "gym_http_request_duration_seconds",
		Help:    "HTTP request duration by route, method and status.",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method", "status"})
)

// Причины отказа во входе.
const (
	ReasonAlreadyInside = "already_inside"
	ReasonNoPasses      = "no_passes"
	ReasonUserNotFound  = "user_not_found"
)

// HTTPMiddleware замеряет длительность запросов. Маршрут берётся
// из шаблона chi, чтобы не плодить метки по идентификаторам.
func HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unknown"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		httpDuration.WithLabelValues(route, r.Method, strconv.Itoa(status)).Observe(time.Since(start).Seconds())
	})
}
