package recording

// Accumulator keeps the running distance and the accepted path. Totals are only
// ever increased by the delta of the newest point.
type Accumulator struct {
	totalM float64
	last   *GeoSample
	path   []TrackPoint
}

// Reset clears the path. anchor, when set, becomes the reference for the first
// fix without being part of the path.
func (a *Accumulator) Reset(anchor *GeoSample) {
	a.totalM = 0
	a.path = nil
	a.last = nil
	if anchor != nil {
		s := *anchor
		a.last = &s
	}
}

func (a *Accumulator) Last() *GeoSample {
	return a.last
}

func (a *Accumulator) Add(sample GeoSample, deltaM float64) TrackPoint {
	p := TrackPoint{
		Lat:       sample.Lat,
		Lng:       sample.Lng,
		Sequence:  len(a.path),
		Timestamp: sample.Timestamp,
	}
	a.path = append(a.path, p)
	a.totalM += deltaM
	a.last = &sample
	return p
}

func (a *Accumulator) TotalM() float64 {
	return a.totalM
}

func (a *Accumulator) Len() int {
	return len(a.path)
}

func (a *Accumulator) Path() []TrackPoint {
	out := make([]TrackPoint, len(a.path))
	copy(out, a.path)
	return out
}
