package sim

import "safectl-go/linalg"

// Default controller gains. Kd = 2*sqrt(Kp) is critical damping for the
// double integrator.
const (
	DefaultKp       = 1.0
	DefaultKd       = 2.0
	DefaultMaxAccel = 50.0
)

// SeekController produces a nominal acceleration command steering toward a
// fixed target from the estimated state. PD with a norm clamp.
type SeekController struct {
	Target   linalg.Vec2
	Kp       float64
	Kd       float64
	MaxAccel float64
}

// Command returns the clamped PD command for estimated position p and
// velocity v.
func (c SeekController) Command(p, v linalg.Vec2) linalg.Vec2 {
	a := c.Target.Sub(p).Scale(c.Kp).Sub(v.Scale(c.Kd))
	if n := a.Norm(); n > c.MaxAccel && n > 0 {
		a = a.Scale(c.MaxAccel / n)
	}
	return a
}
