package estimator

import (
	"gonum.org/v1/gonum/mat"

	"safectl-go/linalg"
)

// Result is one tracker output sample.
type Result struct {
	TimestampMs int64
	X, Y        float64
	VX, VY      float64
	Flag        int
}

// Tracker drives the pure filter from timestamped inputs and guards it with
// reset watchdogs, for callers that run an open-ended loop rather than a
// fixed-cadence simulation. One Tracker serves one agent; it is not safe for
// concurrent use.
type Tracker struct {
	state       State
	noise       Noise
	lastTS      *int64
	initialized bool
}

// NewTracker returns a tracker with the given noise tuning.
func NewTracker(n Noise) *Tracker {
	return &Tracker{state: Init(linalg.Vec4{}, DefaultP0Scale), noise: n}
}

// State returns the current belief.
func (t *Tracker) State() State { return t.state }

func (t *Tracker) reset() {
	t.state = Init(linalg.Vec4{}, DefaultP0Scale)
	t.initialized = false
}

// Process advances the tracker to tsMs under control acceleration a. A nil z
// runs predict-only; otherwise the measurement is fused. The first
// measurement seeds the position estimate directly.
func (t *Tracker) Process(tsMs int64, a linalg.Vec2, z *linalg.Vec2) Result {
	if t.lastTS == nil {
		t.lastTS = new(int64)
		*t.lastTS = tsMs
	}
	if tsMs <= *t.lastTS {
		tsMs = *t.lastTS + 1
	}
	dt := float64(tsMs-*t.lastTS) / 1000.0
	*t.lastTS = tsMs

	if dt > MaxGapSec {
		t.reset()
		return Result{TimestampMs: tsMs, Flag: FlagReset}
	}
	if dt < MinDtSec {
		dt = MinDtSec
	}

	if !t.initialized {
		if z == nil {
			return Result{TimestampMs: tsMs, Flag: FlagIdle}
		}
		t.state.X[0] = z.X
		t.state.X[1] = z.Y
		t.initialized = true
	}

	flag := FlagPredict
	if z == nil {
		t.state = predict(t.state, a, dt, t.noise)
	} else {
		t.state = StepNoise(t.state, a, *z, dt, t.noise)
		flag = FlagUpdate
	}

	// Watchdogs: a non-finite or exploded belief means the filter diverged;
	// start over rather than emit garbage positions.
	if !allFinite(t.state.X) || !allFiniteMat(t.state.P) ||
		t.state.P[0][0] > MaxPosVar || t.state.P[1][1] > MaxPosVar {
		t.reset()
		return Result{TimestampMs: tsMs, Flag: FlagReset}
	}

	return Result{
		TimestampMs: tsMs,
		X:           t.state.X[0],
		Y:           t.state.X[1],
		VX:          t.state.X[2],
		VY:          t.state.X[3],
		Flag:        flag,
	}
}

// CovarianceHealthy reports whether P is symmetric positive semi-definite to
// within tolerance. Correct update-equation use preserves this; the check is
// a diagnostic for tests and the tracker, not part of the hot path.
func CovarianceHealthy(p linalg.Mat4) bool {
	sym := mat.NewSymDense(4, nil)
	for i := 0; i < 4; i++ {
		for j := i; j < 4; j++ {
			sym.SetSym(i, j, 0.5*(p[i][j]+p[j][i]))
		}
	}
	var eig mat.EigenSym
	if !eig.Factorize(sym, false) {
		return false
	}
	vals := eig.Values(nil)
	// Values are ascending; the smallest decides definiteness.
	return vals[0] > -1e-6
}
