package recording

import (
	"sync"
	"time"

	"backend-ihiker/internal/shared/geo"
)

var t0 = time.Date(2025, 6, 1, 8, 0, 0, 0, time.UTC)

const metersPerDegreeLat = geo.EarthRadiusM * 3.141592653589793 / 180

// north returns a sample m meters north of base.
func north(base GeoSample, m float64) GeoSample {
	return GeoSample{Lat: base.Lat + m/metersPerDegreeLat, Lng: base.Lng, Timestamp: base.Timestamp}
}

type fakeTime struct {
	t time.Time
}

func (f *fakeTime) now() time.Time         { return f.t }
func (f *fakeTime) advance(d time.Duration) { f.t = f.t.Add(d) }

type manualScheduler struct {
	tasks []*manualTask
}

type manualTask struct {
	interval time.Duration
	fn       func()
	stopped  bool
}

func (t *manualTask) Stop() { t.stopped = true }

func (s *manualScheduler) Every(interval time.Duration, fn func()) Task {
	t := &manualTask{interval: interval, fn: fn}
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

func (s *manualScheduler) active() int {
	n := 0
	for _, t := range s.tasks {
		if !t.stopped {
			n++
		}
	}
	return n
}

type eventLog struct {
	mu     sync.Mutex
	events []Event
}

func (l *eventLog) Publish(e Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
}

func (l *eventLog) announcements(kind AnnouncementKind) []Announcement {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []Announcement
	for _, e := range l.events {
		if e.Announcement != nil && e.Announcement.Kind == kind {
			out = append(out, *e.Announcement)
		}
	}
	return out
}

func newTestRecorder() (*Recorder, *fakeTime, *manualScheduler, *eventLog) {
	clock := &fakeTime{t: t0}
	sched := &manualScheduler{}
	sink := &eventLog{}
	r := New(Options{
		TickInterval: time.Second,
		Scheduler:    sched,
		Sink:         sink,
		Now:          clock.now,
	})
	return r, clock, sched, sink
}
