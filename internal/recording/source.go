package recording

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"
)

// ErrNoFix means no new reading arrived since the previous read. The tick is
// skipped quietly.
var ErrNoFix = errors.New("no new fix")

// LocationSource returns the current position. Implementations should honour
// ctx so a slow read gives up before the next tick.
type LocationSource interface {
	Current(ctx context.Context) (GeoSample, error)
}

// Feed is a LocationSource that clients push fixes into. Only the newest
// unread fix is kept so a slow consumer never works through a backlog.
type Feed struct {
	mu     sync.Mutex
	latest *GeoSample
	failed error
}

func NewFeed() *Feed {
	return &Feed{}
}

func (f *Feed) Push(s GeoSample) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latest = &s
	f.failed = nil
}

// Fail records a reading error reported by the device. The next read returns it.
func (f *Feed) Fail(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latest = nil
	f.failed = err
}

// Reset drops any unread fix or error. Readings taken before a pause or a
// stop must not reach the next recording stretch.
func (f *Feed) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.latest = nil
	f.failed = nil
}

func (f *Feed) Current(ctx context.Context) (GeoSample, error) {
	if err := ctx.Err(); err != nil {
		return GeoSample{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failed != nil {
		err := f.failed
		f.failed = nil
		return GeoSample{}, err
	}
	if f.latest == nil {
		return GeoSample{}, ErrNoFix
	}
	s := *f.latest
	f.latest = nil
	return s, nil
}

// Poller performs one location read per position tick. A tick that fires while
// the previous read is still outstanding is dropped.
type Poller struct {
	source  LocationSource
	timeout time.Duration
	onFix   func(GeoSample)
	onError func(error)

	inFlight atomic.Bool
}

func NewPoller(source LocationSource, timeout time.Duration, onFix func(GeoSample), onError func(error)) *Poller {
	return &Poller{source: source, timeout: timeout, onFix: onFix, onError: onError}
}

func (p *Poller) Poll() {
	if !p.inFlight.CompareAndSwap(false, true) {
		ticksSkipped.Inc()
		return
	}
	go func() {
		defer p.inFlight.Store(false)
		p.read()
	}()
}

func (p *Poller) read() {
	ctx := context.Background()
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	sample, err := p.source.Current(ctx)
	switch {
	case errors.Is(err, ErrNoFix):
		return
	case err != nil:
		p.onError(err)
	default:
		p.onFix(sample)
	}
}
