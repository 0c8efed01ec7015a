package recording

import "backend-ihiker/internal/shared/geo"

// DefaultMoveThresholdM suppresses GPS jitter while standing still.
const DefaultMoveThresholdM = 5.0

type Filter struct {
	ThresholdM float64
}

// Accept reports whether sample moved far enough from last to be kept, along
// with the distance between them. A nil last always accepts with zero distance.
func (f Filter) Accept(sample GeoSample, last *GeoSample) (float64, bool) {
	if last == nil {
		return 0, true
	}
	d := geo.DistanceM(last.Lat, last.Lng, sample.Lat, sample.Lng)
	if d < f.ThresholdM {
		return d, false
	}
	return d, true
}
