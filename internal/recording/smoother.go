package recording

// DefaultSmoothingWindow is the number of per-tick speeds averaged together.
const DefaultSmoothingWindow = 5

// Smoother averages the most recent per-tick speeds.
type Smoother struct {
	window []float64
	size   int
	max    float64
}

func NewSmoother(size int) *Smoother {
	if size < 1 {
		size = DefaultSmoothingWindow
	}
	return &Smoother{window: make([]float64, 0, size), size: size}
}

// Observe records incrementM covered during one tick of tickSeconds and
// returns the new smoothed speed in m/s.
func (s *Smoother) Observe(incrementM, tickSeconds float64) float64 {
	speed := 0.0
	if tickSeconds > 0 {
		speed = incrementM / tickSeconds
	}
	if len(s.window) == s.size {
		copy(s.window, s.window[1:])
		s.window = s.window[:s.size-1]
	}
	s.window = append(s.window, speed)

	smoothed := s.Speed()
	if smoothed > s.max {
		s.max = smoothed
	}
	return smoothed
}

func (s *Smoother) Speed() float64 {
	if len(s.window) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range s.window {
		sum += v
	}
	return sum / float64(len(s.window))
}

// Max is the highest smoothed speed seen since the last Reset. It covers the
// whole session, not only the raw tick speeds currently in the window, so a
// single noisy tick cannot set it.
func (s *Smoother) Max() float64 {
	return s.max
}

func (s *Smoother) Len() int {
	return len(s.window)
}

func (s *Smoother) Reset() {
	s.window = s.window[:0]
	s.max = 0
}
