package estimator

// Filter constants. Process noise is split between the position and velocity
// subspaces; velocity carries more uncertainty because unmodeled accelerations
// land there first.
const (
	DefaultDt      = 1.0 / 60.0
	DefaultQPos    = 2.0
	DefaultQVel    = 6.0
	DefaultRMeas   = 30.0
	DefaultP0Scale = 200.0
)

// Tracker watchdog thresholds.
const (
	// MaxGapSec resets the tracker when no input arrives for this long.
	MaxGapSec = 30.0
	// MaxPosVar resets the tracker when position variance explodes.
	MaxPosVar = 1.0e4
	// MinDtSec floors the propagation interval for out-of-order timestamps.
	MinDtSec = 0.01
)

// Tracker result flags.
const (
	FlagReset   = -2
	FlagIdle    = 0
	FlagPredict = 1
	FlagUpdate  = 2
)
