package tax

import "errors"

var (
	ErrInvalidSchedule   = errors.New("invalid tax schedule")
	ErrEmptySchedule     = errors.New("tax schedule has no tiers")
	ErrUnterminated      = errors.New("last tax tier must be unbounded")
	ErrMisplacedCatchAll = errors.New("only the last tax tier may be unbounded")
	ErrInvalidWidth      = errors.New("tax tier width must be positive")
	ErrInvalidRate       = errors.New("tax tier rate must be within [0,1]")
	ErrThresholdOrder    = errors.New("tax thresholds must be strictly ascending")
	ErrInvalidPeriods    = errors.New("schedule periods must not be negative")
)
