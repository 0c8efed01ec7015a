package recording

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClockBeforeStart(t *testing.T) {
	var c Clock
	assert.Zero(t, c.ElapsedMillis(t0))
}

func TestClockPauseFreezesAndResumeContinues(t *testing.T) {
	var c Clock
	c.Start(t0)
	assert.Equal(t, int64(3000), c.ElapsedMillis(t0.Add(3*time.Second)))

	c.Pause(t0.Add(5 * time.Second))
	assert.Equal(t, int64(5000), c.ElapsedMillis(t0.Add(5*time.Second)))
	assert.Equal(t, int64(5000), c.ElapsedMillis(t0.Add(12*time.Second)))

	c.Resume(t0.Add(15 * time.Second))
	assert.Equal(t, int64(5000), c.ElapsedMillis(t0.Add(15*time.Second)))
	assert.Equal(t, int64(10000), c.ElapsedMillis(t0.Add(20*time.Second)))
}

func TestClockZeroLengthPause(t *testing.T) {
	var c Clock
	c.Start(t0)
	at := t0.Add(7 * time.Second)
	before := c.ElapsedMillis(at)
	c.Pause(at)
	c.Resume(at)
	assert.Equal(t, before, c.ElapsedMillis(at))
}

func TestClockStopFreezes(t *testing.T) {
	var c Clock
	c.Start(t0)
	c.Pause(t0.Add(4 * time.Second))
	c.Stop(t0.Add(9 * time.Second))
	assert.Equal(t, int64(4000), c.ElapsedMillis(t0.Add(time.Hour)))
}

func TestClockMultiplePauses(t *testing.T) {
	var c Clock
	c.Start(t0)
	c.Pause(t0.Add(10 * time.Second))
	c.Resume(t0.Add(20 * time.Second))
	c.Pause(t0.Add(30 * time.Second))
	c.Resume(t0.Add(45 * time.Second))
	assert.Equal(t, int64(35000), c.ElapsedMillis(t0.Add(60*time.Second)))
}
