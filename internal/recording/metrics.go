package recording

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fixesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ihiker_fixes_total",
		Help: "Position fixes seen by recorders by result",
	}, []string{"result"})

	locationErrorsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ihiker_location_errors_total",
		Help: "Failed location reads",
	})

	ticksSkipped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ihiker_position_ticks_skipped_total",
		Help: "Position ticks dropped because a read was still outstanding",
	})

	sessionsCompleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ihiker_sessions_completed_total",
		Help: "Recording sessions finalized by stop",
	})

	activeRecordings = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ihiker_active_recordings",
		Help: "Sessions currently recording or paused",
	})
)
