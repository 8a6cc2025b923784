package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "thumbbot_messages_total",
		Help: "The total number of messages dispatched to a route",
	}, []string{"route"})

	HandlerErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "thumbbot_handler_errors_total",
		Help: "The total number of handler failures by kind",
	}, []string{"route", "kind"})

	ThumbnailsSaved = promauto.NewCounter(prometheus.CounterOpts{
		Name: "thumbbot_thumbnails_saved_total",
		Help: "The total number of thumbnails stored",
	})

	NormalizeFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "thumbbot_thumbnail_normalize_failures_total",
		Help: "Thumbnails kept as downloaded because normalization failed",
	})

	VideosSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "thumbbot_videos_sent_total",
		Help: "The total number of videos sent back with a custom thumbnail",
	}, []string{"source"})

	HandlerDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "thumbbot_handler_duration_seconds",
		Help:    "Duration of message handlers",
		Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
	}, []string{"route"})

	TempFilesSwept = promauto.NewCounter(prometheus.CounterOpts{
		Name: "thumbbot_temp_files_swept_total",
		Help: "Stale temp files removed by the janitor",
	})
)
