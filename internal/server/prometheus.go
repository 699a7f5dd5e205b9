// prometheus.go - Prometheus text exposition of the in-process counters
package server

import (
	"fmt"
	"net/http"
	"strings"
	"time"
)

var serverStartTime = time.Now()

// PrometheusMetricsHandler exports GetMetrics() in Prometheus text format.
func PrometheusMetricsHandler(build BuildInfo) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		snapshot := GetMetrics().Snapshot()

		var output strings.Builder
		writeMetric := func(name, help, kind string, value any) {
			fmt.Fprintf(&output, "# HELP %s %s\n", name, help)
			fmt.Fprintf(&output, "# TYPE %s %s\n", name, kind)
			fmt.Fprintf(&output, "%s %v\n\n", name, value)
		}

		output.WriteString("# HELP drop_info Application version info\n")
		output.WriteString("# TYPE drop_info gauge\n")
		fmt.Fprintf(&output, "drop_info{version=\"%s\",commit=\"%s\"} 1\n\n",
			prometheusLabel(build.Version), prometheusLabel(build.Commit))

		writeMetric("drop_requests_total", "Total number of HTTP requests", "counter", snapshot.RequestsTotal)

		output.WriteString("# HELP drop_request_errors_total HTTP requests answered with an error status\n")
		output.WriteString("# TYPE drop_request_errors_total counter\n")
		fmt.Fprintf(&output, "drop_request_errors_total{class=\"4xx\"} %d\n", snapshot.RequestErrors4xx)
		fmt.Fprintf(&output, "drop_request_errors_total{class=\"5xx\"} %d\n\n", snapshot.RequestErrors5xx)

		writeMetric("drop_uploads_total", "Total number of stored uploads", "counter", snapshot.UploadsTotal)
		writeMetric("drop_upload_bytes_total", "Decoded bytes written by uploads", "counter", snapshot.UploadBytesTotal)
		writeMetric("drop_upload_errors_total", "Uploads answered with a non-200 status", "counter", snapshot.UploadErrorsTotal)
		writeMetric("drop_upload_avg_duration_ms", "Average upload handling time", "gauge", snapshot.UploadAvgDurationMs)

		writeMetric("drop_static_served_total", "Files served by the static responder", "counter", snapshot.StaticServedTotal)
		writeMetric("drop_static_bytes_total", "Bytes served by the static responder", "counter", snapshot.StaticBytesTotal)
		writeMetric("drop_static_not_found_total", "Static requests answered with 404", "counter", snapshot.StaticNotFoundTotal)
		writeMetric("drop_static_errors_total", "Static requests answered with 500", "counter", snapshot.StaticErrorsTotal)

		writeMetric("drop_uptime_seconds", "Application uptime in seconds", "counter",
			fmt.Sprintf("%.0f", time.Since(serverStartTime).Seconds()))

		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(output.String()))
	})
}

// prometheusLabel escapes quotes and backslashes in a label value.
func prometheusLabel(value string) string {
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\"", "\\\"")
	return value
}
