package recording

import "time"

type State string

const (
	StateStopped   State = "stopped"
	StateRecording State = "recording"
	StatePaused    State = "paused"
)

// GeoSample is one raw position fix.
type GeoSample struct {
	Lat       float64   `json:"lat"`
	Lng       float64   `json:"lng"`
	Timestamp time.Time `json:"timestamp"`
}

// TrackPoint is an accepted fix in path order. Sequence starts at 0 and has no
// gaps within a session.
type TrackPoint struct {
	Lat       float64   `json:"latitude"`
	Lng       float64   `json:"longitude"`
	Sequence  int       `json:"sequence"`
	Timestamp time.Time `json:"timestamp"`
}

func (p TrackPoint) Sample() GeoSample {
	return GeoSample{Lat: p.Lat, Lng: p.Lng, Timestamp: p.Timestamp}
}

type Snapshot struct {
	TotalDistanceM  float64 `json:"total_distance_m"`
	ElapsedActiveMs int64   `json:"elapsed_active_ms"`
	SpeedMps        float64 `json:"speed_mps"`
	PointCount      int     `json:"point_count"`
}

// CompletedSession is built once per session at Stop. The Path slice belongs
// to the caller.
type CompletedSession struct {
	TotalDistanceM float64      `json:"total_distance"`
	TotalTimeSec   int64        `json:"total_time"`
	AvgSpeedMps    float64      `json:"avg_speed"`
	MaxSpeedMps    float64      `json:"max_speed"`
	StartTime      time.Time    `json:"start_time"`
	EndTime        time.Time    `json:"end_time"`
	Path           []TrackPoint `json:"path"`
}
