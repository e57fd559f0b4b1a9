// Package sim is the caller side of the control loop: ground-truth dynamics,
// a noisy position sensor, a seek controller, and a scenario runner that
// wires them through the safety filter and the estimator in the required
// temporal order.
package sim

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"

	"safectl-go/linalg"
	"safectl-go/safety"
)

// Integrate advances the true kinematic state over dt under acceleration a.
// Same model the estimator predicts with, applied exactly.
func Integrate(s safety.RobotState, a linalg.Vec2, dt float64) safety.RobotState {
	return safety.RobotState{
		P: linalg.Vec2{
			X: s.P.X + s.V.X*dt + 0.5*a.X*dt*dt,
			Y: s.P.Y + s.V.Y*dt + 0.5*a.Y*dt*dt,
		},
		V: s.V.Add(a.Scale(dt)),
	}
}

// Sensor produces position measurements corrupted by zero-mean Gaussian
// noise. A fixed seed makes runs reproducible.
type Sensor struct {
	noise distuv.Normal
}

// NewSensor returns a sensor with the given noise sigma and seed.
func NewSensor(sigma float64, seed uint64) *Sensor {
	return &Sensor{noise: distuv.Normal{
		Mu:    0,
		Sigma: sigma,
		Src:   rand.NewPCG(seed, seed),
	}}
}

// Measure returns p with independent noise on each axis.
func (s *Sensor) Measure(p linalg.Vec2) linalg.Vec2 {
	return linalg.Vec2{X: p.X + s.noise.Rand(), Y: p.Y + s.noise.Rand()}
}
