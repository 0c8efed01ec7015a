package recording

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFilterAcceptsFirstSample(t *testing.T) {
	f := Filter{ThresholdM: DefaultMoveThresholdM}
	d, ok := f.Accept(GeoSample{Lat: 46, Lng: 7}, nil)
	assert.True(t, ok)
	assert.Zero(t, d)
}

func TestFilterRejectsJitter(t *testing.T) {
	f := Filter{ThresholdM: DefaultMoveThresholdM}
	last := GeoSample{Lat: 46, Lng: 7}

	d, ok := f.Accept(north(last, 4.9), &last)
	assert.False(t, ok)
	assert.InDelta(t, 4.9, d, 1e-6)

	d, ok = f.Accept(north(last, 5), &last)
	assert.True(t, ok)
	assert.InDelta(t, 5, d, 1e-6)
}
