package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(ocrJobsProcessedTotal, ocrConversionSeconds, ocrBytesOriginal, ocrBytesConverted)
}

var ocrJobsProcessedTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ocr_jobs_processed_total",
		Help: "Total number of OCR jobs processed, labeled by outcome.",
	},
	[]string{"status"}, // 'completed', 'failed'
)

var ocrConversionSeconds = prometheus.NewHistogram(
	prometheus.HistogramOpts{
		Name:    "ocr_conversion_seconds",
		Help:    "Wall-clock conversion duration distribution in seconds.",
		Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600},
	},
)

var ocrBytesOriginal = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "ocr_bytes_original_total",
		Help: "Sum of original PDF bytes across completed conversions.",
	},
)

var ocrBytesConverted = prometheus.NewCounter(
	prometheus.CounterOpts{
		Name: "ocr_bytes_converted_total",
		Help: "Sum of converted PDF bytes across completed conversions.",
	},
)

func IncJobProcessed(status string) {
	ocrJobsProcessedTotal.WithLabelValues(norm(status)).Inc()
}

func ObserveConversion(seconds float64, bytesOriginal, bytesConverted int64) {
	ocrConversionSeconds.Observe(seconds)
	ocrBytesOriginal.Add(float64(bytesOriginal))
	ocrBytesConverted.Add(float64(bytesConverted))
}
