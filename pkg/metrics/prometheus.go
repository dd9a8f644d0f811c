package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	jobRuns       *prometheus.CounterVec
	fetchFailures *prometheus.CounterVec
	fetchLatency  *prometheus.HistogramVec
	lastRun       *prometheus.GaugeVec
	registerReads *prometheus.CounterVec
	signalValue   *prometheus.GaugeVec

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	now func() time.Time
}

// New creates a recorder whose collectors are registered on reg.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		jobRuns: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecogw_job_runs_total",
				Help: "Total number of polling job runs by outcome",
			},
			[]string{"job", "outcome"},
		),
		fetchFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecogw_fetch_failures_total",
				Help: "Total number of failed provider fetches by failure kind",
			},
			[]string{"job", "kind"},
		),
		fetchLatency: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ecogw_fetch_duration_seconds",
				Help:    "Duration of provider fetches in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
			[]string{"job"},
		),
		lastRun: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ecogw_job_last_run_timestamp_seconds",
				Help: "Unix time of the last completed job run",
			},
			[]string{"job"},
		),
		registerReads: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecogw_register_reads_total",
				Help: "Total number of holding register reads by result",
			},
			[]string{"result"},
		),
		signalValue: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "ecogw_signal_value",
				Help: "Signal value currently published for a day offset",
			},
			[]string{"job", "day"},
		),
		httpRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ecogw_http_requests_total",
				Help: "Total number of status API requests",
			},
			[]string{"route", "method", "status"},
		),
		httpDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ecogw_http_request_duration_seconds",
				Help:    "Status API request duration in seconds",
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"route", "method"},
		),
		now: time.Now,
	}
}

// RecordJobRun counts a finished run and stamps its completion time.
func (r *Recorder) RecordJobRun(job, outcome string) {
	r.jobRuns.WithLabelValues(job, outcome).Inc()
	r.lastRun.WithLabelValues(job).Set(float64(r.now().Unix()))
}

func (r *Recorder) RecordFetchFailure(job, kind string) {
	r.fetchFailures.WithLabelValues(job, kind).Inc()
}

func (r *Recorder) RecordFetchLatency(job string, seconds float64) {
	r.fetchLatency.WithLabelValues(job).Observe(seconds)
}

func (r *Recorder) RecordSignal(job string, day int, value uint16) {
	r.signalValue.WithLabelValues(job, strconv.Itoa(day)).Set(float64(value))
}

func (r *Recorder) RecordRegisterRead(result string) {
	r.registerReads.WithLabelValues(result).Inc()
}

// ObserveHTTPRequest records one status API request.
func (r *Recorder) ObserveHTTPRequest(route, method string, status int, seconds float64) {
	r.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(route, method).Observe(seconds)
}
