// Package metrics provides Prometheus metrics for the video service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Reject reasons. Keep this set small; it is a label.
const (
	ReasonPromptRequired = "prompt_required"
	ReasonPromptTooLong  = "prompt_too_long"
	ReasonInternal       = "internal"
)

var (
	// VideosGeneratedTotal counts successfully created videos.
	VideosGeneratedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "sora_videos_generated_total",
		Help: "Total number of videos created.",
	})

	// VideoRequestsRejectedTotal counts generate requests that created nothing, by reason.
	VideoRequestsRejectedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "sora_video_requests_rejected_total",
		Help: "Total number of rejected generate requests, by reason.",
	}, []string{"reason"})

	// VideoRegistrySize tracks how many videos are held in memory.
	VideoRegistrySize = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "sora_video_registry_size",
		Help: "Current number of videos in the in-memory registry.",
	})
)

// RecordCreated bumps the created counter and the registry size. The registry only grows,
// so incrementing keeps the gauge monotonic under concurrent creates.
func RecordCreated() {
	VideosGeneratedTotal.Inc()
	VideoRegistrySize.Inc()
}

// RecordRejected counts a rejected generate request.
func RecordRejected(reason string) {
	VideoRequestsRejectedTotal.WithLabelValues(reason).Inc()
}
