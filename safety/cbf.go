// Package safety implements a control barrier function filter for a single
// circular obstacle. Given a nominal acceleration command and the agent's
// kinematic state, Adjust returns the minimum-norm correction that keeps the
// agent at least eps outside the obstacle surface.
package safety

import "safectl-go/linalg"

// DefaultAlpha is the stock barrier gain. Larger values force correction
// earlier and harder as the barrier value shrinks.
const DefaultAlpha = 3.5

// denomGuard protects divisions when the agent sits on the obstacle center.
const denomGuard = 1e-9

// RobotState is the agent's kinematic state as seen by the filter. The
// filter only reads it; the caller's integrator owns it.
type RobotState struct {
	P linalg.Vec2
	V linalg.Vec2
}

// Obstacle is a static circular exclusion zone.
type Obstacle struct {
	Center linalg.Vec2
	Radius float64
}

// Result is the outcome of one filter invocation.
type Result struct {
	// Accel is the corrected acceleration command.
	Accel linalg.Vec2
	// Active reports whether the nominal command was modified.
	Active bool
	// H is the barrier value at the current position.
	H float64
	// DH is the barrier time-derivative under the current velocity.
	DH float64
}

// Barrier returns h(p) = dist(p, center) - radius - eps. The safe set is
// h >= 0. Position-only; velocity does not enter.
func Barrier(s RobotState, o Obstacle, eps float64) float64 {
	return s.P.Sub(o.Center).Norm() - o.Radius - eps
}

// IsSafe is the post-hoc audit: dist(p, center) - radius >= eps/2. The half
// margin is looser than the full eps the controller enforces, so the
// controller may legally ride inside the soft buffer while the audit flags
// only true near-collisions. The asymmetry is intentional.
func IsSafe(s RobotState, o Obstacle, eps float64) bool {
	return s.P.Sub(o.Center).Norm()-o.Radius >= eps/2
}

// Adjust filters the nominal acceleration aNom through the barrier
// constraint n*a >= -dh - alpha*h. When the nominal command already
// satisfies it, the command passes through untouched; otherwise the smallest
// correction along the constraint normal is applied, landing exactly on the
// constraint boundary.
//
// This closed form is valid for exactly one active obstacle constraint.
// Several simultaneous obstacles would need a real QP solve, which is a
// different algorithm, not a generalization of this one.
func Adjust(aNom linalg.Vec2, s RobotState, o Obstacle, eps, alpha float64) Result {
	rel := s.P.Sub(o.Center)
	dist := rel.Norm()
	n := rel.Scale(1.0 / (dist + denomGuard))

	h := dist - o.Radius - eps
	dh := n.Dot(s.V)
	b := -dh - alpha*h

	if n.Dot(aNom) >= b {
		return Result{Accel: aNom, H: h, DH: dh}
	}

	corr := (b - n.Dot(aNom)) / (n.Dot(n) + denomGuard)
	return Result{
		Accel:  aNom.Add(n.Scale(corr)),
		Active: true,
		H:      h,
		DH:     dh,
	}
}
