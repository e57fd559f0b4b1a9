package estimator

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"safectl-go/linalg"
)

func TestTrackerIdleUntilFirstMeasurement(t *testing.T) {
	tr := NewTracker(DefaultNoise())

	// Predict-only input before any measurement: nothing to track yet.
	r := tr.Process(1000, linalg.Vec2{}, nil)
	assert.Equal(t, FlagIdle, r.Flag)

	r = tr.Process(1100, linalg.Vec2{}, nil)
	assert.Equal(t, FlagIdle, r.Flag)
}

func TestTrackerSeedsFromFirstMeasurement(t *testing.T) {
	tr := NewTracker(DefaultNoise())

	z := linalg.Vec2{X: 42, Y: -7}
	r := tr.Process(1000, linalg.Vec2{}, &z)
	require.Equal(t, FlagUpdate, r.Flag)

	// Seeded at the measurement with zero velocity, the prediction stays put
	// and the innovation is zero, so the output is exactly the measurement.
	assert.InDelta(t, 42, r.X, 1e-9)
	assert.InDelta(t, -7, r.Y, 1e-9)
}

func TestTrackerPredictOnly(t *testing.T) {
	tr := NewTracker(DefaultNoise())

	z := linalg.Vec2{X: 10, Y: 10}
	tr.Process(1000, linalg.Vec2{}, &z)

	r := tr.Process(1100, linalg.Vec2{}, nil)
	assert.Equal(t, FlagPredict, r.Flag)

	// No measurement means no correction: position variance keeps growing.
	before := tr.State().P[0][0]
	tr.Process(1200, linalg.Vec2{}, nil)
	assert.Greater(t, tr.State().P[0][0], before)
}

func TestTrackerMonotonicTimestamps(t *testing.T) {
	tr := NewTracker(DefaultNoise())

	z := linalg.Vec2{X: 1, Y: 1}
	tr.Process(2000, linalg.Vec2{}, &z)

	// A stale timestamp is clamped forward, never processed backwards.
	r := tr.Process(1500, linalg.Vec2{}, &z)
	assert.Equal(t, int64(2001), r.TimestampMs)
}

func TestTrackerGapReset(t *testing.T) {
	tr := NewTracker(DefaultNoise())

	z := linalg.Vec2{X: 5, Y: 5}
	tr.Process(1000, linalg.Vec2{}, &z)
	tr.Process(1100, linalg.Vec2{}, &z)

	// More than MaxGapSec of silence: the old track is worthless.
	r := tr.Process(1100+int64(MaxGapSec*1000)+1000, linalg.Vec2{}, &z)
	assert.Equal(t, FlagReset, r.Flag)

	// The next measurement starts a fresh track.
	z2 := linalg.Vec2{X: 500, Y: 500}
	r = tr.Process(40000, linalg.Vec2{}, &z2)
	require.Equal(t, FlagUpdate, r.Flag)
	assert.InDelta(t, 500, r.X, 1e-9)
	assert.InDelta(t, 500, r.Y, 1e-9)
}

func TestTrackerWatchdogOnNaN(t *testing.T) {
	tr := NewTracker(DefaultNoise())

	z := linalg.Vec2{X: 5, Y: 5}
	tr.Process(1000, linalg.Vec2{}, &z)

	bad := linalg.Vec2{X: math.NaN(), Y: 5}
	r := tr.Process(1100, linalg.Vec2{}, &bad)
	assert.Equal(t, FlagReset, r.Flag)

	// Recovered: the reset cleared the poisoned state.
	r = tr.Process(1200, linalg.Vec2{}, &z)
	require.Equal(t, FlagUpdate, r.Flag)
	assert.False(t, math.IsNaN(r.X))
	assert.True(t, CovarianceHealthy(tr.State().P))
}
