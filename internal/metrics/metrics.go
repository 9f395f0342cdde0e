// Package metrics provides Prometheus metrics for the frame pipeline.
// Counters are fed from the event bus so the hot path never touches
// Prometheus directly.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/camgate/camgate/internal/events"
)

var (
	framesPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camgate",
		Subsystem: "pipeline",
		Name:      "frames_published_total",
		Help:      "Frames successfully published to the message bus",
	}, []string{"entity_path"})

	publishErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camgate",
		Subsystem: "pipeline",
		Name:      "publish_errors_total",
		Help:      "Frames lost to a failed bus publish",
	}, []string{"entity_path"})

	decoderErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camgate",
		Subsystem: "decoder",
		Name:      "errors_total",
		Help:      "Error lines reported by decoder subprocesses",
	}, []string{"entity_path"})

	cameraFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camgate",
		Subsystem: "camera",
		Name:      "failures_total",
		Help:      "Cameras whose decoder could not be launched",
	}, []string{"entity_path"})

	framesDropped = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "camgate",
		Subsystem: "pipeline",
		Name:      "frames_dropped_total",
		Help:      "Frames overwritten in a camera's slot before being read",
	}, []string{"entity_path"})

	camerasActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "camgate",
		Subsystem: "camera",
		Name:      "active",
		Help:      "Cameras with a running decoder subprocess",
	})
)

// Attach subscribes the Prometheus counters to the event bus. Returns an
// unsubscribe function.
func Attach(bus *events.Bus) func() {
	unsubs := []func(){
		bus.Subscribe(func(e events.FramePublishedEvent) {
			framesPublished.WithLabelValues(e.EntityPath).Inc()
		}),
		bus.Subscribe(func(e events.FramePublishErrorEvent) {
			publishErrors.WithLabelValues(e.EntityPath).Inc()
		}),
		bus.Subscribe(func(e events.DecoderErrorEvent) {
			decoderErrors.WithLabelValues(e.EntityPath).Inc()
		}),
		bus.Subscribe(func(e events.CameraFailedEvent) {
			cameraFailures.WithLabelValues(e.EntityPath).Inc()
		}),
		bus.Subscribe(func(events.CameraStartedEvent) {
			camerasActive.Inc()
		}),
		bus.Subscribe(func(e events.CameraStoppedEvent) {
			camerasActive.Dec()
			if e.Drops > 0 {
				framesDropped.WithLabelValues(e.EntityPath).Add(float64(e.Drops))
			}
		}),
	}
	return func() {
		for _, unsub := range unsubs {
			unsub()
		}
	}
}

// HTTPHandler returns the Prometheus metrics HTTP handler.
// This collects all promauto-registered metrics automatically.
func HTTPHandler() http.Handler {
	return promhttp.Handler()
}
