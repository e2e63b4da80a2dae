// Package metrics exports Prometheus collectors for the render scheduler.
//
// All methods are safe to call on a nil *Render, which is what library code does when no metrics were configured.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Frame kinds.
const (
	KindFull    = "full"
	KindPartial = "partial"
)

// Render collects frame statistics of a render.Canvas.
type Render struct {
	frames       *prometheus.CounterVec
	frameSeconds *prometheus.HistogramVec
	coalesced    *prometheus.CounterVec
	zoomRejected prometheus.Counter
}

// NewRender creates the collectors and registers them with reg.
func NewRender(reg prometheus.Registerer) (*Render, error) {
	m := &Render{
		frames: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flamechart_frames_total",
				Help: "Number of rendered frames by kind",
			},
			[]string{"kind"},
		),
		frameSeconds: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "flamechart_frame_duration_seconds",
				Help:    "Time spent rendering a frame by kind",
				Buckets: []float64{0.0005, 0.001, 0.002, 0.004, 0.008, 0.016, 0.033, 0.066, 0.132},
			},
			[]string{"kind"},
		),
		coalesced: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "flamechart_render_requests_coalesced_total",
				Help: "Number of render requests that were merged into an already scheduled frame",
			},
			[]string{"kind"},
		),
		zoomRejected: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "flamechart_zoom_rejected_total",
			Help: "Number of zoom changes rejected because the time grid reached its maximum accuracy",
		}),
	}
	for _, c := range []prometheus.Collector{m.frames, m.frameSeconds, m.coalesced, m.zoomRejected} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("registering render metrics: %w", err)
		}
	}
	return m, nil
}

// Frame records a rendered frame.
func (m *Render) Frame(kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.frames.WithLabelValues(kind).Inc()
	m.frameSeconds.WithLabelValues(kind).Observe(d.Seconds())
}

// Coalesced records a render request that didn't schedule a new frame.
func (m *Render) Coalesced(kind string) {
	if m == nil {
		return
	}
	m.coalesced.WithLabelValues(kind).Inc()
}

// ZoomRejected records a rejected zoom change.
func (m *Render) ZoomRejected() {
	if m == nil {
		return
	}
	m.zoomRejected.Inc()
}
