// Package estimator tracks a moving agent's position and velocity with an
// extended Kalman filter over a constant-velocity-plus-acceleration model,
// fused with noisy 2-D position measurements.
//
// The filter surface is pure: each Step consumes one State value and returns
// a new one. Nothing is shared, so independent agents can run filters
// concurrently. Callers that want a long-running, timestamp-driven loop with
// watchdogs wrap the same functions in a Tracker.
package estimator

import (
	"math"

	"safectl-go/linalg"
)

// State is one filter belief: the 4-vector estimate [px, py, vx, vy], its
// error covariance, and the innovation of the last measurement update.
type State struct {
	X          linalg.Vec4
	P          linalg.Mat4
	Innovation linalg.Vec2
}

// Noise holds the filter noise parameters: process noise on the position and
// velocity subspaces, and measurement noise on the observed position.
type Noise struct {
	QPos  float64
	QVel  float64
	RMeas float64
}

// DefaultNoise returns the stock tuning.
func DefaultNoise() Noise {
	return Noise{QPos: DefaultQPos, QVel: DefaultQVel, RMeas: DefaultRMeas}
}

// obsJacobian extracts position from the state. The measurement model is
// linear, so this is constant.
var obsJacobian = linalg.Mat2x4{
	{1, 0, 0, 0},
	{0, 1, 0, 0},
}

// Init returns a fresh filter state centered on x0 with isotropic covariance
// p0Scale on the diagonal.
func Init(x0 linalg.Vec4, p0Scale float64) State {
	return State{X: x0, P: linalg.Eye4(p0Scale)}
}

// Step runs one predict+update cycle with the default noise tuning.
func Step(s State, a, z linalg.Vec2, dt float64) State {
	return StepNoise(s, a, z, dt, DefaultNoise())
}

// StepNoise runs one predict+update cycle: propagate the motion model under
// control acceleration a over dt, then correct against the position
// measurement z. The returned state carries the innovation z - H*x_pred.
func StepNoise(s State, a, z linalg.Vec2, dt float64, n Noise) State {
	pred := predict(s, a, dt, n)

	// Update. S = H*P'*H^T + R, K = P'*H^T*S^-1.
	ht := obsJacobian.T()
	y := z.Sub(obsJacobian.MulVec(pred.X))
	pht := pred.P.Mul42(ht)
	S := obsJacobian.Mul42(pht).Add(linalg.Mat2{
		{n.RMeas, 0},
		{0, n.RMeas},
	})
	K := pht.Mul22(S.Inv())

	x := pred.X.Add(K.MulVec(y))
	P := linalg.Eye4(1).Sub(K.Mul24(obsJacobian)).Mul(pred.P)
	return State{X: x, P: P, Innovation: y}
}

// predict propagates the belief over dt without a measurement.
func predict(s State, a linalg.Vec2, dt float64, n Noise) State {
	x := s.X
	x = linalg.Vec4{
		x[0] + x[2]*dt + 0.5*a.X*dt*dt,
		x[1] + x[3]*dt + 0.5*a.Y*dt*dt,
		x[2] + a.X*dt,
		x[3] + a.Y*dt,
	}

	// The dynamics are linear in the state (the control term is exogenous),
	// so the transition Jacobian is constant in dt.
	F := transition(dt)
	Q := linalg.Diag4(n.QPos, n.QPos, n.QVel, n.QVel)
	P := F.Mul(s.P).Mul(F.T()).Add(Q)
	return State{X: x, P: P, Innovation: s.Innovation}
}

func transition(dt float64) linalg.Mat4 {
	return linalg.Mat4{
		{1, 0, dt, 0},
		{0, 1, 0, dt},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Position returns the estimated position.
func (s State) Position() linalg.Vec2 { return linalg.Vec2{X: s.X[0], Y: s.X[1]} }

// Velocity returns the estimated velocity.
func (s State) Velocity() linalg.Vec2 { return linalg.Vec2{X: s.X[2], Y: s.X[3]} }

func allFinite(v linalg.Vec4) bool {
	for _, x := range v {
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func allFiniteMat(m linalg.Mat4) bool {
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if math.IsNaN(m[i][j]) || math.IsInf(m[i][j], 0) {
				return false
			}
		}
	}
	return true
}
