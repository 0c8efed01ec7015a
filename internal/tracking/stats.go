package tracking

import "backend-ihiker/internal/gpx"

const trendLength = 7

var sessionName = gpx.TrackName

// computeStats expects tracks ordered by start time, oldest first.
func computeStats(tracks []Track) Stats {
	s := Stats{Count: len(tracks), Trend: []float64{}}
	var totalM float64
	var totalSec int64
	for _, t := range tracks {
		totalM += t.TotalDistanceM
		totalSec += t.TotalTimeSec
	}
	s.TotalDistanceKm = totalM / 1000
	s.TotalHours = float64(totalSec) / 3600
	if s.TotalHours > 0 {
		s.AvgSpeedKmh = s.TotalDistanceKm / s.TotalHours
	}

	from := len(tracks) - trendLength
	if from < 0 {
		from = 0
	}
	for _, t := range tracks[from:] {
		s.Trend = append(s.Trend, t.TotalDistanceM/1000)
	}
	return s
}
