package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(uploadsTotal) }

var uploadsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "ocr_uploads_total",
		Help: "Upload attempts by result (accepted, or a validation reason code).",
	},
	[]string{"result"},
)

func IncUpload(result string) {
	uploadsTotal.WithLabelValues(norm(result)).Inc()
}
