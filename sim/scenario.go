package sim

import (
	"math"

	"safectl-go/estimator"
	"safectl-go/linalg"
	"safectl-go/safety"
)

// Scenario describes one closed-loop run.
type Scenario struct {
	Name     string
	Start    linalg.Vec2
	Target   linalg.Vec2
	Obstacle safety.Obstacle

	Eps   float64
	Alpha float64

	Dt    float64
	Steps int

	NoiseSigma float64
	Seed       uint64

	Kp       float64
	Kd       float64
	MaxAccel float64

	Filter  estimator.Noise
	P0Scale float64
}

// DefaultScenario is the stock corridor run: seek a target past a single
// obstacle sitting near the straight-line path.
func DefaultScenario() Scenario {
	return Scenario{
		Name:       "corridor",
		Start:      linalg.Vec2{X: 50, Y: 50},
		Target:     linalg.Vec2{X: 250, Y: 100},
		Obstacle:   safety.Obstacle{Center: linalg.Vec2{X: 150, Y: 100}, Radius: 30},
		// The barrier condition is underdamped in h, so a fast approach
		// overshoots the margin before settling. The stock run uses a softer
		// gain and a wider margin than the library defaults to keep the
		// worst-case dip inside the audit band at 60 Hz.
		Eps:        20,
		Alpha:      1.5,
		Dt:         estimator.DefaultDt,
		Steps:      1000,
		NoiseSigma: 5,
		Seed:       1,
		Kp:         DefaultKp,
		Kd:         DefaultKd,
		MaxAccel:   DefaultMaxAccel,
		Filter:     estimator.DefaultNoise(),
		P0Scale:    estimator.DefaultP0Scale,
	}
}

// StepRecord is one completed control cycle.
type StepRecord struct {
	Step        int
	TimestampMs int64
	Truth       safety.RobotState
	EstP        linalg.Vec2
	EstV        linalg.Vec2
	Accel       linalg.Vec2
	H           float64
	DH          float64
	Active      bool
	Safe        bool
}

// EstErr is the distance between the estimated and true position.
func (r StepRecord) EstErr() float64 {
	return r.EstP.Sub(r.Truth.P).Norm()
}

// Loop runs a scenario one control cycle at a time. Per cycle: nominal
// command from the current belief, safety correction against the true state,
// integrate the truth under the corrected command, measure, fuse. The audit
// runs on the post-integration state.
type Loop struct {
	sc     Scenario
	truth  safety.RobotState
	est    estimator.State
	sensor *Sensor
	ctrl   SeekController
	step   int
}

// NewLoop returns a loop positioned before the first step.
func NewLoop(sc Scenario) *Loop {
	return &Loop{
		sc:     sc,
		truth:  safety.RobotState{P: sc.Start},
		est:    estimator.Init(linalg.Vec4{sc.Start.X, sc.Start.Y, 0, 0}, sc.P0Scale),
		sensor: NewSensor(sc.NoiseSigma, sc.Seed),
		ctrl:   SeekController{Target: sc.Target, Kp: sc.Kp, Kd: sc.Kd, MaxAccel: sc.MaxAccel},
	}
}

// Done reports whether the configured number of steps has run.
func (l *Loop) Done() bool { return l.step >= l.sc.Steps }

// Truth returns the current true state.
func (l *Loop) Truth() safety.RobotState { return l.truth }

// Estimate returns the current belief.
func (l *Loop) Estimate() estimator.State { return l.est }

// Step executes one control cycle and returns its record.
func (l *Loop) Step() StepRecord {
	sc := l.sc
	aNom := l.ctrl.Command(l.est.Position(), l.est.Velocity())
	res := safety.Adjust(aNom, l.truth, sc.Obstacle, sc.Eps, sc.Alpha)
	l.truth = Integrate(l.truth, res.Accel, sc.Dt)
	z := l.sensor.Measure(l.truth.P)
	l.est = estimator.StepNoise(l.est, res.Accel, z, sc.Dt, sc.Filter)

	l.step++
	return StepRecord{
		Step:        l.step - 1,
		TimestampMs: int64(float64(l.step) * sc.Dt * 1000.0),
		Truth:       l.truth,
		EstP:        l.est.Position(),
		EstV:        l.est.Velocity(),
		Accel:       res.Accel,
		H:           res.H,
		DH:          res.DH,
		Active:      res.Active,
		Safe:        safety.IsSafe(l.truth, sc.Obstacle, sc.Eps),
	}
}

// Stats summarizes a run.
type Stats struct {
	Steps         int
	Violations    int
	Interventions int
	FinalErr      float64
	MaxErr        float64
	RMSE          float64
	FinalTruth    safety.RobotState
}

// Run executes the whole scenario and aggregates statistics. record may be
// nil; when set it receives every step.
func Run(sc Scenario, record func(StepRecord)) Stats {
	l := NewLoop(sc)
	var stats Stats
	var sumSq float64
	for !l.Done() {
		r := l.Step()
		if !r.Safe {
			stats.Violations++
		}
		if r.Active {
			stats.Interventions++
		}
		err := r.EstErr()
		sumSq += err * err
		if err > stats.MaxErr {
			stats.MaxErr = err
		}
		stats.FinalErr = err
		if record != nil {
			record(r)
		}
	}
	stats.Steps = sc.Steps
	stats.FinalTruth = l.truth
	if sc.Steps > 0 {
		stats.RMSE = math.Sqrt(sumSq / float64(sc.Steps))
	}
	return stats
}
