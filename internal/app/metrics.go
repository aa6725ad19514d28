package app

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Metrics метрики бота в собственном реестре Prometheus.
// Все методы безопасны для nil.
type Metrics struct {
	registry       *prometheus.Registry
	apiDuration    *prometheus.HistogramVec
	apiTotal       *prometheus.CounterVec
	updatesTotal   *prometheus.CounterVec
	lessonsCreated *prometheus.CounterVec
	digestsSent    prometheus.Counter
}

// NewMetrics регистрирует коллекторы
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	apiDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "coach_api_request_duration_seconds",
		Help:    "Duration of coach API requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "endpoint", "status"})

	apiTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "coach_api_requests_total",
		Help: "Total number of coach API requests",
	}, []string{"method", "endpoint", "status"})

	updatesTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_updates_total",
		Help: "Telegram updates handled by kind",
	}, []string{"kind"})

	lessonsCreated := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "lessons_created_total",
		Help: "Lessons created through the bot, by outcome",
	}, []string{"kind", "outcome"})

	digestsSent := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "digests_sent_total",
		Help: "Morning digests delivered",
	})

	registry.MustRegister(
		apiDuration,
		apiTotal,
		updatesTotal,
		lessonsCreated,
		digestsSent,
		collectors.NewGoCollector(),
	)

	return &Metrics{
		registry:       registry,
		apiDuration:    apiDuration,
		apiTotal:       apiTotal,
		updatesTotal:   updatesTotal,
		lessonsCreated: lessonsCreated,
		digestsSent:    digestsSent,
	}
}

// Handler отдаёт метрики в формате Prometheus
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveAPIRequest фиксирует запрос к API тренера. status 0 означает сетевую ошибку.
func (m *Metrics) ObserveAPIRequest(method, endpoint string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	label := strconv.Itoa(status)
	m.apiDuration.WithLabelValues(method, endpoint, label).Observe(duration.Seconds())
	m.apiTotal.WithLabelValues(method, endpoint, label).Inc()
}

// ObserveUpdate считает входящие обновления Telegram
func (m *Metrics) ObserveUpdate(kind string) {
	if m == nil {
		return
	}
	m.updatesTotal.WithLabelValues(kind).Inc()
}

// ObserveLessonCreated считает созданные занятия; kind = primary | repeat
func (m *Metrics) ObserveLessonCreated(kind string, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.lessonsCreated.WithLabelValues(kind, outcome).Inc()
}

// ObserveDigestSent считает отправленные сводки
func (m *Metrics) ObserveDigestSent() {
	if m == nil {
		return
	}
	m.digestsSent.Inc()
}

// ServeMetrics поднимает HTTP сервер метрик до отмены ctx
func ServeMetrics(ctx context.Context, addr string, m *Metrics, logger *zap.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Info("Metrics server started", zap.String("addr", addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Metrics server failed", zap.Error(err))
	}
}
