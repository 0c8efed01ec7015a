package recording

import (
	"fmt"
	"math"
)

// NoPace is shown when the speed gives no meaningful pace.
const NoPace = "-"

const maxPaceMinPerKm = 99.0

// Display is the snapshot as the presentation layer shows it.
type Display struct {
	DistanceKm string `json:"distance_km"`
	Elapsed    string `json:"elapsed"`
	SpeedKmh   string `json:"speed_kmh"`
	Pace       string `json:"pace"`
}

func SpeedKmh(mps float64) float64 {
	return mps * 3.6
}

// PaceMinPerKm returns minutes per kilometre, or false when standing still or
// when the pace is too slow to be worth showing.
func PaceMinPerKm(mps float64) (float64, bool) {
	kmh := SpeedKmh(mps)
	if kmh <= 0 {
		return 0, false
	}
	pace := 60 / kmh
	if pace >= maxPaceMinPerKm {
		return 0, false
	}
	return pace, true
}

func FormatSnapshot(s Snapshot) Display {
	return Display{
		DistanceKm: fmt.Sprintf("%.2f", s.TotalDistanceM/1000),
		Elapsed:    FormatElapsed(s.ElapsedActiveMs),
		SpeedKmh:   fmt.Sprintf("%.1f", SpeedKmh(s.SpeedMps)),
		Pace:       FormatPace(s.SpeedMps),
	}
}

// FormatElapsed renders milliseconds as HH:MM:SS.
func FormatElapsed(ms int64) string {
	secs := ms / 1000
	return fmt.Sprintf("%02d:%02d:%02d", secs/3600, (secs%3600)/60, secs%60)
}

// FormatPace renders the pace as M:SS.
func FormatPace(mps float64) string {
	pace, ok := PaceMinPerKm(mps)
	if !ok {
		return NoPace
	}
	mins := math.Floor(pace)
	secs := math.Floor((pace - mins) * 60)
	return fmt.Sprintf("%d:%02d", int(mins), int(secs))
}
