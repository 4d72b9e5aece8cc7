package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Conversion metrics
	conversionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rasterize_conversions_total",
		Help: "Total conversion requests by outcome and output container",
	}, []string{"result", "container"})

	conversionDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rasterize_conversion_duration_seconds",
		Help:    "Conversion duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.001, 2, 16), // 1ms to ~32s
	}, []string{"container"})

	conversionFrames = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rasterize_conversion_frames",
		Help:    "Frames emitted per successful conversion",
		Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1 to 2048 frames
	})

	conversionInputBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rasterize_conversion_input_bytes",
		Help:    "Input payload size in bytes",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 10), // 1KiB to ~256MiB
	})

	conversionOutputBytes = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "rasterize_conversion_output_bytes",
		Help:    "Encoded output size in bytes",
		Buckets: prometheus.ExponentialBuckets(1024, 4, 10),
	})

	conversionErrorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rasterize_conversion_errors_total",
		Help: "Conversion failures by error kind",
	}, []string{"kind"})

	// Probe metrics
	probesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rasterize_probes_total",
		Help: "Total probe requests by outcome",
	}, []string{"result"})

	// Cache metrics
	cacheOpsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rasterize_cache_operations_total",
		Help: "Result cache operations by outcome",
	}, []string{"operation", "result"})

	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rasterize_http_requests_total",
		Help: "Total HTTP requests by method, path and status code",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "rasterize_http_request_duration_seconds",
		Help:    "HTTP request duration in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// RecordConversion records a completed conversion attempt. Container is
// "png" or "apng"; result is "success" or "error".
func RecordConversion(result, container string, seconds float64) {
	conversionsTotal.WithLabelValues(result, container).Inc()
	conversionDuration.WithLabelValues(container).Observe(seconds)
}

// RecordConversionSize records payload sizes for a successful conversion.
func RecordConversionSize(inputBytes, outputBytes int, frames int) {
	conversionInputBytes.Observe(float64(inputBytes))
	conversionOutputBytes.Observe(float64(outputBytes))
	conversionFrames.Observe(float64(frames))
}

// IncrementConversionError counts a conversion failure by its error kind.
func IncrementConversionError(kind string) {
	conversionErrorsTotal.WithLabelValues(kind).Inc()
}

// IncrementProbe counts a probe request outcome.
func IncrementProbe(result string) {
	probesTotal.WithLabelValues(result).Inc()
}

// IncrementCacheOp counts a cache operation. Operation is "get" or "set";
// result is "hit", "miss" or "error".
func IncrementCacheOp(operation, result string) {
	cacheOpsTotal.WithLabelValues(operation, result).Inc()
}

// RecordHTTPRequest records an HTTP request for the server middleware.
func RecordHTTPRequest(method, path, status string, seconds float64) {
	httpRequestsTotal.WithLabelValues(method, path, status).Inc()
	httpRequestDuration.WithLabelValues(method, path).Observe(seconds)
}
