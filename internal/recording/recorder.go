// Package recording turns a stream of noisy position fixes into a recorded
// hike: it filters jitter, accumulates distance, measures pause-aware active
// time and smooths speed, all behind a start/pause/resume/stop state machine.
package recording

import (
	"log"
	"sync"
	"time"
)

type EventType string

const (
	EventSnapshot      EventType = "snapshot"
	EventAnnouncement  EventType = "announcement"
	EventLocationError EventType = "location_error"
)

// Event is what the recorder pushes to the presentation layer.
type Event struct {
	Type         EventType     `json:"type"`
	State        State         `json:"state"`
	Snapshot     *Snapshot     `json:"snapshot,omitempty"`
	Display      *Display      `json:"display,omitempty"`
	Announcement *Announcement `json:"announcement,omitempty"`
	Error        string        `json:"error,omitempty"`
}

type Sink interface {
	Publish(Event)
}

type SinkFunc func(Event)

func (f SinkFunc) Publish(e Event) { f(e) }

type Options struct {
	TickInterval    time.Duration
	MoveThresholdM  float64
	SmoothingWindow int
	LocationTimeout time.Duration

	// Source is polled on every position tick. Without one, fixes must be fed
	// through OnFix directly.
	Source    LocationSource
	Scheduler Scheduler
	Sink      Sink
	Now       func() time.Time
}

func (o Options) withDefaults() Options {
	if o.TickInterval <= 0 {
		o.TickInterval = time.Second
	}
	if o.MoveThresholdM <= 0 {
		o.MoveThresholdM = DefaultMoveThresholdM
	}
	if o.SmoothingWindow <= 0 {
		o.SmoothingWindow = DefaultSmoothingWindow
	}
	if o.LocationTimeout <= 0 {
		o.LocationTimeout = o.TickInterval
	}
	if o.Scheduler == nil {
		o.Scheduler = TickerScheduler{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Recorder owns the single live session. Commands and tick handlers are
// serialized by mu.
type Recorder struct {
	mu    sync.Mutex
	opts  Options
	state State

	filter    Filter
	acc       Accumulator
	clock     Clock
	speed     *Smoother
	marks     milestones
	completed *CompletedSession

	clockTask    Task
	positionTask Task
	poller       *Poller
}

func New(opts Options) *Recorder {
	opts = opts.withDefaults()
	r := &Recorder{
		opts:   opts,
		state:  StateStopped,
		filter: Filter{ThresholdM: opts.MoveThresholdM},
		speed:  NewSmoother(opts.SmoothingWindow),
	}
	if opts.Source != nil {
		r.poller = NewPoller(opts.Source, opts.LocationTimeout, func(s GeoSample) { r.OnFix(s) }, r.OnFixError)
	}
	return r
}

func (r *Recorder) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Start begins a new session and discards the previous one. anchor, when not
// nil, is the settled start position the first fix is measured from.
func (r *Recorder) Start(anchor *GeoSample) bool {
	r.mu.Lock()
	if r.state != StateStopped {
		r.mu.Unlock()
		return false
	}
	now := r.opts.Now()
	r.acc.Reset(anchor)
	r.clock.Start(now)
	r.speed.Reset()
	r.marks.reset()
	r.completed = nil
	r.state = StateRecording
	r.startTasksLocked()
	events := r.commandEventsLocked(now, AnnounceStart)
	r.mu.Unlock()

	activeRecordings.Inc()
	r.publish(events)
	return true
}

func (r *Recorder) Pause() bool {
	r.mu.Lock()
	if r.state != StateRecording {
		r.mu.Unlock()
		return false
	}
	now := r.opts.Now()
	r.clock.Pause(now)
	r.stopTasksLocked()
	r.state = StatePaused
	events := r.commandEventsLocked(now, AnnouncePause)
	r.mu.Unlock()

	r.publish(events)
	return true
}

func (r *Recorder) Resume() bool {
	r.mu.Lock()
	if r.state != StatePaused {
		r.mu.Unlock()
		return false
	}
	now := r.opts.Now()
	r.clock.Resume(now)
	r.state = StateRecording
	r.startTasksLocked()
	events := r.commandEventsLocked(now, AnnounceResume)
	r.mu.Unlock()

	r.publish(events)
	return true
}

// Stop finalizes the live session. The returned session is also retained and
// available through Completed until the next Start. A second Stop is a no-op.
func (r *Recorder) Stop() (CompletedSession, bool) {
	r.mu.Lock()
	if r.state == StateStopped {
		r.mu.Unlock()
		return CompletedSession{}, false
	}
	now := r.opts.Now()
	r.stopTasksLocked()
	r.clock.Stop(now)

	elapsed := r.clock.Elapsed(now)
	totalSec := int64(elapsed / time.Second)
	avg := 0.0
	if totalSec > 0 {
		avg = r.acc.TotalM() / float64(totalSec)
	}
	cs := CompletedSession{
		TotalDistanceM: r.acc.TotalM(),
		TotalTimeSec:   totalSec,
		AvgSpeedMps:    avg,
		MaxSpeedMps:    r.speed.Max(),
		StartTime:      r.clock.StartedAt(),
		EndTime:        now,
		Path:           r.acc.Path(),
	}
	kept := cs
	kept.Path = r.acc.Path()
	r.completed = &kept
	r.state = StateStopped

	snap := r.snapshotLocked(now)
	stop := stopAnnouncement(cs.TotalDistanceM, elapsed)
	events := []Event{
		snapshotEvent(r.state, snap),
		{Type: EventAnnouncement, State: r.state, Announcement: &stop},
	}
	r.mu.Unlock()

	sessionsCompleted.Inc()
	activeRecordings.Dec()
	r.publish(events)
	return cs, true
}

// OnFix processes one raw fix. Fixes outside Recording are dropped.
func (r *Recorder) OnFix(sample GeoSample) (Snapshot, bool) {
	r.mu.Lock()
	now := r.opts.Now()
	if r.state != StateRecording {
		snap := r.snapshotLocked(now)
		r.mu.Unlock()
		fixesTotal.WithLabelValues("ignored").Inc()
		return snap, false
	}
	if sample.Timestamp.IsZero() {
		sample.Timestamp = now
	}

	last := r.acc.Last()
	delta, ok := r.filter.Accept(sample, last)
	if !ok {
		snap := r.snapshotLocked(now)
		r.mu.Unlock()
		fixesTotal.WithLabelValues("rejected").Inc()
		return snap, false
	}
	r.acc.Add(sample, delta)
	if last != nil {
		r.speed.Observe(delta, r.opts.TickInterval.Seconds())
	}
	snap := r.snapshotLocked(now)
	events := r.progressEventsLocked(now, snap)
	r.mu.Unlock()

	fixesTotal.WithLabelValues("accepted").Inc()
	r.publish(events)
	return snap, true
}

// OnFixError reports a failed location read. State and totals are untouched.
func (r *Recorder) OnFixError(err error) {
	if err == nil {
		return
	}
	locationErrorsTotal.Inc()
	log.Printf("location read failed: %v", err)
	r.publish([]Event{{Type: EventLocationError, State: r.State(), Error: err.Error()}})
}

// Tick is the clock tick: it refreshes elapsed time while recording.
func (r *Recorder) Tick() {
	r.mu.Lock()
	if r.state != StateRecording {
		r.mu.Unlock()
		return
	}
	now := r.opts.Now()
	snap := r.snapshotLocked(now)
	events := r.progressEventsLocked(now, snap)
	r.mu.Unlock()

	r.publish(events)
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.snapshotLocked(r.opts.Now())
}

// View returns state and snapshot read together.
func (r *Recorder) View() (State, Snapshot) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state, r.snapshotLocked(r.opts.Now())
}

func (r *Recorder) Path() []TrackPoint {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.acc.Path()
}

// Completed returns the session finalized by the last Stop, if no new session
// has started since.
func (r *Recorder) Completed() (CompletedSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.completed == nil {
		return CompletedSession{}, false
	}
	cs := *r.completed
	cs.Path = append([]TrackPoint(nil), r.completed.Path...)
	return cs, true
}

func (r *Recorder) snapshotLocked(now time.Time) Snapshot {
	return Snapshot{
		TotalDistanceM:  r.acc.TotalM(),
		ElapsedActiveMs: r.clock.ElapsedMillis(now),
		SpeedMps:        r.speed.Speed(),
		PointCount:      r.acc.Len(),
	}
}

func (r *Recorder) progressEventsLocked(now time.Time, snap Snapshot) []Event {
	events := []Event{snapshotEvent(r.state, snap)}
	for _, a := range r.marks.check(snap.TotalDistanceM, r.clock.Elapsed(now)) {
		events = append(events, Event{Type: EventAnnouncement, State: r.state, Announcement: &a})
	}
	return events
}

func (r *Recorder) commandEventsLocked(now time.Time, kind AnnouncementKind) []Event {
	a := commandAnnouncement(kind)
	return []Event{
		snapshotEvent(r.state, r.snapshotLocked(now)),
		{Type: EventAnnouncement, State: r.state, Announcement: &a},
	}
}

func snapshotEvent(state State, snap Snapshot) Event {
	d := FormatSnapshot(snap)
	return Event{Type: EventSnapshot, State: state, Snapshot: &snap, Display: &d}
}

func (r *Recorder) startTasksLocked() {
	r.stopTasksLocked()
	r.clockTask = r.opts.Scheduler.Every(r.opts.TickInterval, r.Tick)
	if r.poller != nil {
		r.positionTask = r.opts.Scheduler.Every(r.opts.TickInterval, r.poller.Poll)
	}
}

func (r *Recorder) stopTasksLocked() {
	if r.clockTask != nil {
		r.clockTask.Stop()
		r.clockTask = nil
	}
	if r.positionTask != nil {
		r.positionTask.Stop()
		r.positionTask = nil
	}
}

func (r *Recorder) publish(events []Event) {
	if r.opts.Sink == nil {
		return
	}
	for _, e := range events {
		r.opts.Sink.Publish(e)
	}
}
