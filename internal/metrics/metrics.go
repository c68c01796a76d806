package metrics

import (
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CommandRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "twexport_command_runs_total",
		Help: "Total command runs",
	}, []string{"command"})
	CommandErrors = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "twexport_command_errors_total",
		Help: "Total command failures by error kind",
	}, []string{"command", "kind"})
	RunDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "twexport_run_duration_seconds",
		Help:    "End-to-end export duration seconds",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	})
	PollAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "twexport_poll_attempts_total",
		Help: "Export status polls by returned status",
	}, []string{"status"})
	APIRetries = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "twexport_api_retries_total",
		Help: "Total API retry attempts",
	}, []string{"endpoint"})
	RowsWritten = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "twexport_rows_written_total",
		Help: "Rows persisted by sink type",
	}, []string{"sink"})
)

func init() {
	prometheus.MustRegister(CommandRuns, CommandErrors, RunDuration, PollAttempts, APIRetries, RowsWritten)
}

// StartServer starts a metrics HTTP server on addr (e.g., ":9090").
func StartServer(addr string) {
	if addr == "" {
		addr = os.Getenv("METRICS_ADDR")
	}
	if addr == "" {
		return
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })
	go func() { _ = http.ListenAndServe(addr, mux) }()
}

func IncCommandRun(cmd string) { CommandRuns.WithLabelValues(cmd).Inc() }

func IncCommandError(cmd, kind string) { CommandErrors.WithLabelValues(cmd, kind).Inc() }

// ObserveRunDuration records a run duration
func ObserveRunDuration(start time.Time) {
	RunDuration.Observe(time.Since(start).Seconds())
}

func IncPoll(status string) { PollAttempts.WithLabelValues(status).Inc() }

// IncAPIRetry increments the retry counter for an endpoint.
func IncAPIRetry(endpoint string) { APIRetries.WithLabelValues(endpoint).Inc() }

func AddRows(sink string, n int) { RowsWritten.WithLabelValues(sink).Add(float64(n)) }
