package metrics

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/alejandrodnm/opinionbot/internal/domain"
)

// Recorder traduce los eventos de progreso a métricas Prometheus.
// Implementa ports.Reporter, así que se engancha igual que la consola.
type Recorder struct {
	registry *prometheus.Registry

	PagesFetched   *prometheus.CounterVec // source
	SourceStops    *prometheus.CounterVec // source
	TopicsLoaded   prometheus.Gauge
	Legs           *prometheus.CounterVec // outcome, status: succeeded|failed|skipped
	TopicsAborted  *prometheus.CounterVec // reason: invalid|failed
	Batches        prometheus.Counter
	BatchDuration  prometheus.Histogram
	LastBatchLegs  *prometheus.GaugeVec // status: succeeded|failed
	batchStartedAt time.Time
}

// NewRecorder crea un Recorder con su propio registry.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		PagesFetched: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opinionbot_catalog_pages_fetched_total",
				Help: "Catalog pages fetched per source",
			},
			[]string{"source"},
		),
		SourceStops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opinionbot_catalog_source_stops_total",
				Help: "Pagination stopped early by an HTTP or API error",
			},
			[]string{"source"},
		),
		TopicsLoaded: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "opinionbot_catalog_topics_loaded",
			Help: "Topics in the last loaded catalog",
		}),
		Legs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opinionbot_order_legs_total",
				Help: "Order legs processed",
			},
			[]string{"outcome", "status"},
		),
		TopicsAborted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opinionbot_topics_aborted_total",
				Help: "Topics whose remaining legs were counted as failed",
			},
			[]string{"reason"},
		),
		Batches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "opinionbot_batches_total",
			Help: "Execution batches finished",
		}),
		BatchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "opinionbot_batch_duration_seconds",
			Help:    "Execution batch duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		LastBatchLegs: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "opinionbot_last_batch_legs",
				Help: "Legs of the last finished batch",
			},
			[]string{"status"},
		),
	}

	r.registry.MustRegister(
		r.PagesFetched,
		r.SourceStops,
		r.TopicsLoaded,
		r.Legs,
		r.TopicsAborted,
		r.Batches,
		r.BatchDuration,
		r.LastBatchLegs,
	)
	return r
}

// Registry expone el registry (tests y handlers propios).
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler devuelve el handler HTTP de /metrics.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// Report actualiza las métricas según el evento.
func (r *Recorder) Report(ev domain.Event) {
	switch ev.Kind {
	case domain.EventPageFetched:
		r.PagesFetched.WithLabelValues(string(ev.Source)).Inc()
	case domain.EventSourceStopped:
		r.SourceStops.WithLabelValues(string(ev.Source)).Inc()
	case domain.EventCatalogLoaded:
		r.TopicsLoaded.Set(float64(ev.Count))

	case domain.EventBatchStarted:
		r.batchStartedAt = ev.At
	case domain.EventLegSucceeded:
		r.Legs.WithLabelValues(string(ev.Outcome), "succeeded").Inc()
	case domain.EventLegFailed:
		r.Legs.WithLabelValues(string(ev.Outcome), "failed").Inc()
	case domain.EventLegSkipped:
		r.Legs.WithLabelValues(string(ev.Outcome), "skipped").Inc()
	case domain.EventTopicInvalid, domain.EventChildInvalid:
		r.TopicsAborted.WithLabelValues("invalid").Inc()
	case domain.EventTopicFailed:
		r.TopicsAborted.WithLabelValues("failed").Inc()
	case domain.EventBatchFinished:
		r.Batches.Inc()
		if !r.batchStartedAt.IsZero() && !ev.At.IsZero() {
			r.BatchDuration.Observe(ev.At.Sub(r.batchStartedAt).Seconds())
		}
		r.LastBatchLegs.WithLabelValues("succeeded").Set(float64(ev.Result.Succeeded))
		r.LastBatchLegs.WithLabelValues("failed").Set(float64(ev.Result.Failed))
	}
}

// Serve expone /metrics en addr hasta que ctx se cancele.
func (r *Recorder) Serve(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", r.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	slog.Info("metrics: serving", "addr", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
