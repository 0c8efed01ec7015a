package tracking

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"backend-ihiker/internal/gpx"
	"backend-ihiker/internal/recording"
	"backend-ihiker/internal/shared/geo"
	"backend-ihiker/internal/weather"

	"github.com/google/uuid"
)

// ErrNotRecording is returned for fixes pushed while no session is recording.
var ErrNotRecording = errors.New("not recording")

// ErrEmptySession is returned when a stopped hike has no recorded points.
// Such a hike is never persisted.
var ErrEmptySession = errors.New("session has no recorded points")

const weatherTimeout = 10 * time.Second

type Saver interface {
	Save(ctx context.Context, t Track, path []recording.TrackPoint) (SaveResult, error)
}

type Broadcaster interface {
	Broadcast(userID string, payload []byte)
}

type WeatherLookup interface {
	Lookup(ctx context.Context, lat, lng float64) *weather.Report
}

type RecorderConfig struct {
	TickInterval    time.Duration
	MoveThresholdM  float64
	SmoothingWindow int
	LocationTimeout time.Duration
}

// Manager owns one recorder per user. Each recorder polls a Feed that the
// user's device pushes fixes into.
type Manager struct {
	store   Saver
	hub     Broadcaster
	weather WeatherLookup
	cfg     RecorderConfig

	scheduler recording.Scheduler
	now       func() time.Time

	mu       sync.Mutex
	sessions map[string]*live
}

type live struct {
	rec  *recording.Recorder
	feed *recording.Feed

	// cmd serializes the user's commands so a stop never sees half a start.
	cmd sync.Mutex

	trackID      string
	weather      *weather.Report
	weatherAsked bool
}

// NewManager builds a manager. hub and wx may be nil.
func NewManager(store Saver, hub Broadcaster, wx WeatherLookup, cfg RecorderConfig) *Manager {
	return &Manager{
		store:     store,
		hub:       hub,
		weather:   wx,
		cfg:       cfg,
		scheduler: recording.TickerScheduler{},
		now:       time.Now,
		sessions:  map[string]*live{},
	}
}

func (m *Manager) session(userID string) *live {
	m.mu.Lock()
	defer m.mu.Unlock()
	if l, ok := m.sessions[userID]; ok {
		return l
	}
	feed := recording.NewFeed()
	opts := recording.Options{
		TickInterval:    m.cfg.TickInterval,
		MoveThresholdM:  m.cfg.MoveThresholdM,
		SmoothingWindow: m.cfg.SmoothingWindow,
		LocationTimeout: m.cfg.LocationTimeout,
		Source:          feed,
		Scheduler:       m.scheduler,
		Now:             m.now,
	}
	if m.hub != nil {
		opts.Sink = hubSink{hub: m.hub, userID: userID}
	}
	l := &live{rec: recording.New(opts), feed: feed}
	m.sessions[userID] = l
	return l
}

// Start begins a hike. fixes, when given, are averaged into the start anchor.
func (m *Manager) Start(userID string, fixes []recording.GeoSample) (View, bool) {
	l := m.session(userID)
	l.cmd.Lock()
	defer l.cmd.Unlock()
	anchor := anchorFrom(fixes)

	// The id must be in place before the recorder is live.
	m.mu.Lock()
	prevID := l.trackID
	l.trackID = uuid.NewString()
	m.mu.Unlock()

	if !l.rec.Start(anchor) {
		m.mu.Lock()
		l.trackID = prevID
		m.mu.Unlock()
		return viewOf(l.rec), false
	}

	l.feed.Reset()
	m.mu.Lock()
	l.weather = nil
	l.weatherAsked = false
	m.mu.Unlock()
	if anchor != nil {
		m.requestWeather(l, anchor.Lat, anchor.Lng)
	}
	return viewOf(l.rec), true
}

func (m *Manager) Pause(userID string) (View, bool) {
	l := m.session(userID)
	l.cmd.Lock()
	defer l.cmd.Unlock()
	ok := l.rec.Pause()
	if ok {
		l.feed.Reset()
	}
	return viewOf(l.rec), ok
}

func (m *Manager) Resume(userID string) (View, bool) {
	l := m.session(userID)
	l.cmd.Lock()
	defer l.cmd.Unlock()
	if l.rec.State() == recording.StatePaused {
		l.feed.Reset()
	}
	ok := l.rec.Resume()
	return viewOf(l.rec), ok
}

// Stop finalizes the hike and saves it. A failed save is reported in the
// result; the session stays available for Save, Export and Share.
func (m *Manager) Stop(ctx context.Context, userID string) StopResult {
	l := m.session(userID)
	l.cmd.Lock()
	defer l.cmd.Unlock()
	cs, ok := l.rec.Stop()
	res := StopResult{View: viewOf(l.rec)}
	if !ok {
		if prev, ok := l.rec.Completed(); ok {
			res.Session = &prev
		}
		return res
	}
	l.feed.Reset()
	res.Session = &cs
	if len(cs.Path) == 0 {
		res.SaveError = ErrEmptySession.Error()
		return res
	}

	saved, err := m.save(ctx, userID, l, cs)
	if err != nil {
		log.Printf("save session failed: %v", err)
		res.SaveError = err.Error()
		return res
	}
	res.Saved = &saved
	return res
}

// Save retries persisting the last completed hike.
func (m *Manager) Save(ctx context.Context, userID string) (SaveResult, error) {
	l := m.session(userID)
	l.cmd.Lock()
	defer l.cmd.Unlock()
	cs, ok := l.rec.Completed()
	if !ok {
		return SaveResult{}, ErrNoSession
	}
	if len(cs.Path) == 0 {
		return SaveResult{}, ErrEmptySession
	}
	return m.save(ctx, userID, l, cs)
}

func (m *Manager) save(ctx context.Context, userID string, l *live, cs recording.CompletedSession) (SaveResult, error) {
	m.mu.Lock()
	track := trackFromSession(l.trackID, userID, cs, l.weather)
	m.mu.Unlock()
	return m.store.Save(ctx, track, cs.Path)
}

// PushFix hands a device fix to the user's recorder. It is picked up on the
// next position tick.
func (m *Manager) PushFix(userID string, sample recording.GeoSample) error {
	l := m.session(userID)
	if l.rec.State() != recording.StateRecording {
		return ErrNotRecording
	}
	l.feed.Push(sample)

	m.mu.Lock()
	asked := l.weatherAsked
	m.mu.Unlock()
	if !asked {
		m.requestWeather(l, sample.Lat, sample.Lng)
	}
	return nil
}

// PushFixError reports a failed reading on the device.
func (m *Manager) PushFixError(userID, reason string) {
	if reason == "" {
		reason = "location unavailable"
	}
	m.session(userID).feed.Fail(errors.New(reason))
}

func (m *Manager) View(userID string) View {
	return viewOf(m.session(userID).rec)
}

// Export renders the current or last completed path.
func (m *Manager) Export(userID string) (*gpx.GPX, error) {
	path := m.session(userID).rec.Path()
	if len(path) == 0 {
		return nil, gpx.ErrEmptyPath
	}
	return gpx.Build(sessionName(path[0].Timestamp), path, m.now())
}

func (m *Manager) Share(userID string) (string, error) {
	l := m.session(userID)
	if len(l.rec.Path()) == 0 {
		return "", gpx.ErrEmptyPath
	}
	snap := l.rec.Snapshot()
	return gpx.ShareText(snap.TotalDistanceM, time.Duration(snap.ElapsedActiveMs)*time.Millisecond), nil
}

// Shutdown pauses every recording hike so no ticker outlives the process.
func (m *Manager) Shutdown() {
	m.mu.Lock()
	sessions := make([]*live, 0, len(m.sessions))
	for _, l := range m.sessions {
		sessions = append(sessions, l)
	}
	m.mu.Unlock()
	for _, l := range sessions {
		l.rec.Pause()
	}
}

func (m *Manager) requestWeather(l *live, lat, lng float64) {
	m.mu.Lock()
	if m.weather == nil || l.weatherAsked {
		m.mu.Unlock()
		return
	}
	l.weatherAsked = true
	trackID := l.trackID
	m.mu.Unlock()

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), weatherTimeout)
		defer cancel()
		report := m.weather.Lookup(ctx, lat, lng)

		m.mu.Lock()
		defer m.mu.Unlock()
		if l.trackID == trackID {
			l.weather = report
		}
	}()
}

func anchorFrom(fixes []recording.GeoSample) *recording.GeoSample {
	pts := make([]geo.Point, 0, len(fixes))
	for _, f := range fixes {
		pts = append(pts, geo.Point{Lat: f.Lat, Lng: f.Lng})
	}
	avg, ok := geo.Average(pts)
	if !ok {
		return nil
	}
	return &recording.GeoSample{Lat: avg.Lat, Lng: avg.Lng, Timestamp: fixes[len(fixes)-1].Timestamp}
}

func viewOf(rec *recording.Recorder) View {
	state, snap := rec.View()
	return View{State: state, Snapshot: snap, Display: recording.FormatSnapshot(snap)}
}

// hubSink publishes recorder events to the user's websocket stream.
type hubSink struct {
	hub    Broadcaster
	userID string
}

func (s hubSink) Publish(e recording.Event) {
	payload, err := json.Marshal(e)
	if err != nil {
		log.Printf("encode recorder event: %v", err)
		return
	}
	s.hub.Broadcast(s.userID, payload)
}
