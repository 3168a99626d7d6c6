// Package metrics provides Prometheus metrics for the CPIC pull.
// It exports:
//   - cpic_http_requests_total: Counter with endpoint and status labels
//   - cpic_http_request_duration_seconds: Histogram with endpoint label
//   - cpic_http_requests_in_flight: Gauge for the request being served
//   - cpic_records_fetched_total: Counter with endpoint label
//   - cpic_rows_written_total: Counter with file label
//   - cpic_endpoint_failures_total: Counter with endpoint and stage labels
//   - cpic_last_success_timestamp_seconds: Gauge set when a run completes
//
// All metrics live in Registry rather than the default registry, and are
// written to a node-exporter textfile with WriteTextfile.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var Registry = prometheus.NewRegistry()

var (
	HTTPRequestTotals = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cpic_http_requests_total",
			Help: "Total HTTP requests sent to the CPIC API",
		},
		[]string{"endpoint", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cpic_http_request_duration_seconds",
			Help:    "CPIC API request latency",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60},
		},
		[]string{"endpoint"},
	)

	HTTPRequestInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cpic_http_requests_in_flight",
			Help: "Current in-flight requests to the CPIC API",
		},
	)

	RecordsFetched = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cpic_records_fetched_total",
			Help: "Records decoded from CPIC API responses",
		},
		[]string{"endpoint"},
	)

	RowsWritten = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cpic_rows_written_total",
			Help: "Rows written to parquet files",
		},
		[]string{"file"},
	)

	EndpointFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cpic_endpoint_failures_total",
			Help: "Endpoints skipped because a stage failed",
		},
		[]string{"endpoint", "stage"},
	)

	LastSuccess = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cpic_last_success_timestamp_seconds",
			Help: "Unix time of the last completed run",
		},
	)
)

func init() {
	Registry.MustRegister(HTTPRequestTotals)
	Registry.MustRegister(HTTPRequestDuration)
	Registry.MustRegister(HTTPRequestInFlight)
	Registry.MustRegister(RecordsFetched)
	Registry.MustRegister(RowsWritten)
	Registry.MustRegister(EndpointFailures)
	Registry.MustRegister(LastSuccess)
}

// MarkSuccess records the completion time of a run
func MarkSuccess(t time.Time) {
	LastSuccess.Set(float64(t.Unix()))
}

// WriteTextfile writes every metric of Registry to path in the text
// exposition format
func WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, Registry)
}
