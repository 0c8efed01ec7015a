package tracking

import (
	"time"

	"backend-ihiker/internal/achievement"
	"backend-ihiker/internal/recording"
	"backend-ihiker/internal/weather"
)

// Track is a persisted hike. Distances are metres, times seconds.
type Track struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	Name           string          `json:"name"`
	TotalDistanceM float64         `json:"total_distance"`
	TotalTimeSec   int64           `json:"total_time"`
	AvgSpeedMps    float64         `json:"avg_speed"`
	MaxSpeedMps    float64         `json:"max_speed"`
	StartTime      time.Time       `json:"start_time"`
	EndTime        time.Time       `json:"end_time"`
	Weather        *weather.Report `json:"weather,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

func trackFromSession(id, userID string, cs recording.CompletedSession, w *weather.Report) Track {
	return Track{
		ID:             id,
		UserID:         userID,
		Name:           sessionName(cs.StartTime),
		TotalDistanceM: cs.TotalDistanceM,
		TotalTimeSec:   cs.TotalTimeSec,
		AvgSpeedMps:    cs.AvgSpeedMps,
		MaxSpeedMps:    cs.MaxSpeedMps,
		StartTime:      cs.StartTime,
		EndTime:        cs.EndTime,
		Weather:        w,
	}
}

func (t Track) record() achievement.Record {
	return achievement.Record{DistanceM: t.TotalDistanceM, DurationSec: t.TotalTimeSec}
}

// Stats aggregates a user's history. Trend holds the distance in km of the
// last seven hikes, oldest first.
type Stats struct {
	TotalDistanceKm float64   `json:"total_distance_km"`
	TotalHours      float64   `json:"total_hours"`
	Count           int       `json:"count"`
	AvgSpeedKmh     float64   `json:"avg_speed_kmh"`
	Trend           []float64 `json:"trend"`
}

// SaveResult is what a successful save reports back.
type SaveResult struct {
	Track    Track                    `json:"track"`
	Unlocked []achievement.Definition `json:"unlocked"`
}

// View is the live recorder as clients see it.
type View struct {
	State    recording.State    `json:"state"`
	Snapshot recording.Snapshot `json:"snapshot"`
	Display  recording.Display  `json:"display"`
}

type StopResult struct {
	View
	Session   *recording.CompletedSession `json:"session,omitempty"`
	Saved     *SaveResult                 `json:"saved,omitempty"`
	SaveError string                      `json:"save_error,omitempty"`
}
