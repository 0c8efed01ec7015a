package tracking

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"backend-ihiker/internal/recording"
	"backend-ihiker/internal/weather"
)

var (
	errTrack = errors.New("db down")
	t0       = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)
)

const metersPerDegreeLat = 111194.92664455873

func north(base recording.GeoSample, m float64) recording.GeoSample {
	return recording.GeoSample{Lat: base.Lat + m/metersPerDegreeLat, Lng: base.Lng}
}

type fakeTime struct {
	mu sync.Mutex
	t  time.Time
}

func (f *fakeTime) now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.t
}

func (f *fakeTime) advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.t = f.t.Add(d)
}

type manualTask struct {
	fn      func()
	stopped bool
}

func (t *manualTask) Stop() { t.stopped = true }

type manualScheduler struct {
	tasks []*manualTask
}

func (s *manualScheduler) Every(_ time.Duration, fn func()) recording.Task {
	t := &manualTask{fn: fn}
	s.tasks = append(s.tasks, t)
	return t
}

func (s *manualScheduler) fire() {
	for _, t := range append([]*manualTask(nil), s.tasks...) {
		if !t.stopped {
			t.fn()
		}
	}
}

type fakeSaver struct {
	mu     sync.Mutex
	err    error
	tracks []Track
	paths  [][]recording.TrackPoint
}

func (f *fakeSaver) Save(_ context.Context, t Track, path []recording.TrackPoint) (SaveResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tracks = append(f.tracks, t)
	f.paths = append(f.paths, path)
	if f.err != nil {
		return SaveResult{}, f.err
	}
	return SaveResult{Track: t}, nil
}

type fakeHub struct {
	mu       sync.Mutex
	payloads map[string][][]byte
}

func (h *fakeHub) Broadcast(userID string, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.payloads == nil {
		h.payloads = map[string][][]byte{}
	}
	h.payloads[userID] = append(h.payloads[userID], payload)
}

func (h *fakeHub) has(userID, fragment string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, p := range h.payloads[userID] {
		if strings.Contains(string(p), fragment) {
			return true
		}
	}
	return false
}

func (h *fakeHub) count(userID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.payloads[userID])
}

type fakeWeather struct {
	report *weather.Report
}

func (f fakeWeather) Lookup(context.Context, float64, float64) *weather.Report {
	return f.report
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(2 * time.Millisecond)
	}
	t.Fatalf("timeout waiting for %s", what)
}

func newTestManager(store Saver, hub Broadcaster, wx WeatherLookup) (*Manager, *fakeTime, *manualScheduler) {
	clock := &fakeTime{t: t0}
	sched := &manualScheduler{}
	m := NewManager(store, hub, wx, RecorderConfig{TickInterval: time.Second})
	m.scheduler = sched
	m.now = clock.now
	return m, clock, sched
}
