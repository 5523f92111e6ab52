// Package metrics exposes run counters for the extraction job. A nil *Run is
// a valid no-op recorder.
package metrics

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
	"go.uber.org/zap"
)

const namespace = "audios_sac_extract"

type Run struct {
	reg prometheus.Gatherer

	pagesFetched     prometheus.Counter
	conversations    *prometheus.CounterVec
	batchesSubmitted prometheus.Counter
	unresolved       prometheus.Counter
	notifyFailures   prometheus.Counter
	runsTotal        *prometheus.CounterVec
	runDuration      prometheus.Gauge
	lastSuccess      prometheus.Gauge
}

// New registers the run collectors on reg.
func New(reg *prometheus.Registry, log *zap.Logger) *Run {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Run{
		reg: reg,
		pagesFetched: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_fetched_total",
			Help:      "Analytics conversation query pages fetched.",
		}),
		conversations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversations_total",
			Help:      "Conversations seen, by outcome (included, excluded, duplicate).",
		}, []string{"outcome"}),
		batchesSubmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "batches_submitted_total",
			Help:      "Bulk download batches accepted by Genesys and persisted.",
		}),
		unresolved: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "recordings_unresolved_total",
			Help:      "Conversations whose recording metadata could not be resolved.",
		}),
		notifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notify_failures_total",
			Help:      "Completion emails that could not be sent.",
		}),
		runsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Finished runs by terminal status.",
		}, []string{"status"}),
		runDuration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "run_duration_seconds",
			Help:      "Duration of the last run.",
		}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last run that finished without error.",
		}),
	}

	for _, c := range []prometheus.Collector{
		r.pagesFetched, r.conversations, r.batchesSubmitted, r.unresolved, r.notifyFailures,
		r.runsTotal, r.runDuration, r.lastSuccess,
	} {
		if err := reg.Register(c); err != nil {
			log.Warn("metrics: failed to register collector", zap.Error(err))
		}
	}
	return r
}

func (r *Run) PageFetched() {
	if r != nil {
		r.pagesFetched.Inc()
	}
}

func (r *Run) Conversation(outcome string) {
	if r != nil {
		r.conversations.WithLabelValues(outcome).Inc()
	}
}

func (r *Run) BatchSubmitted() {
	if r != nil {
		r.batchesSubmitted.Inc()
	}
}

func (r *Run) Unresolved(n int) {
	if r != nil && n > 0 {
		r.unresolved.Add(float64(n))
	}
}

func (r *Run) NotifyFailed() {
	if r != nil {
		r.notifyFailures.Inc()
	}
}

// Finished records the terminal status and duration of a run.
func (r *Run) Finished(status string, d time.Duration, ok bool) {
	if r == nil {
		return
	}
	r.runsTotal.WithLabelValues(status).Inc()
	r.runDuration.Set(d.Seconds())
	if ok {
		r.lastSuccess.SetToCurrentTime()
	}
}

// Push sends the current values to a Prometheus pushgateway. Batch jobs
// are gone before a scrape would happen.
func (r *Run) Push(ctx context.Context, url string) error {
	if r == nil || url == "" {
		return nil
	}
	if err := push.New(url, namespace).Gatherer(r.reg).PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
