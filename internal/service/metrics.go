package service

import "github.com/prometheus/client_golang/prometheus"

var (
	likeToggles = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "hungrypanda_like_toggles_total", Help: "Like toggles by resulting action"},
		[]string{"action"},
	)
	cascadeDeletes = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "hungrypanda_cascade_deletes_total", Help: "Cascading deletes by entity"},
		[]string{"entity"},
	)
	imagesReleased = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "hungrypanda_images_released_total", Help: "Image resources released"},
	)
	imageReleaseFailures = prometheus.NewCounter(
		prometheus.CounterOpts{Name: "hungrypanda_image_release_failures_total", Help: "Image releases that failed"},
	)
	reconcileFixed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "hungrypanda_reconcile_fixed_total", Help: "Rows corrected by reconciliation"},
		[]string{"kind"},
	)
)

func init() {
	prometheus.MustRegister(likeToggles, cascadeDeletes, imagesReleased, imageReleaseFailures, reconcileFixed)
}
