package recording

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatSnapshot(t *testing.T) {
	d := FormatSnapshot(Snapshot{TotalDistanceM: 12346, ElapsedActiveMs: 3723000, SpeedMps: 7 / 3.6})
	assert.Equal(t, "12.35", d.DistanceKm)
	assert.Equal(t, "01:02:03", d.Elapsed)
	assert.Equal(t, "7.0", d.SpeedKmh)
	// 60/7 = 8.571 min/km
	assert.Equal(t, "8:34", d.Pace)
}

func TestFormatPaceSentinel(t *testing.T) {
	assert.Equal(t, NoPace, FormatPace(0))
	// 0.1 m/s is a pace of well over 99 min/km
	assert.Equal(t, NoPace, FormatPace(0.1))
	assert.Equal(t, "5:27", FormatPace(11/3.6))
}

func TestFormatElapsedZero(t *testing.T) {
	assert.Equal(t, "00:00:00", FormatElapsed(0))
}
