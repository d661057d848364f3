// Package tax evaluates progressive income tax schedules.
//
// A schedule is an ordered list of tiers. Each tier has a width (the slice of
// taxable income it covers) and a marginal rate. The last tier is unbounded
// and absorbs whatever income is left.
package tax

import (
	"fmt"
	"math"
)

// Unbounded marks the catch-all width of the final tier.
var Unbounded = math.Inf(1)

type Tier struct {
	Width float64 `json:"width" yaml:"width"`
	Rate  float64 `json:"rate" yaml:"rate"`
}

func (t Tier) IsUnbounded() bool {
	return math.IsInf(t.Width, 1)
}

// Schedule is a named tier list plus the number of pay periods it is
// expressed over. A monthly schedule has Periods 1 (or 0). An annual
// schedule applied to monthly income has Periods 12: income is multiplied
// by 12 before the tiers are walked and the result is divided by 12.
type Schedule struct {
	Name    string `json:"name"`
	Tiers   []Tier `json:"tiers"`
	Periods int    `json:"periods"`
}

// NewSchedule validates tiers and returns a schedule that owns a copy of them.
func NewSchedule(name string, periods int, tiers []Tier) (Schedule, error) {
	s := Schedule{Name: name, Periods: periods, Tiers: append([]Tier(nil), tiers...)}
	if err := s.Validate(); err != nil {
		return Schedule{}, err
	}
	return s, nil
}

// MustSchedule is NewSchedule for package-level presets.
func MustSchedule(name string, periods int, tiers []Tier) Schedule {
	s, err := NewSchedule(name, periods, tiers)
	if err != nil {
		panic(err)
	}
	return s
}

func (s Schedule) Validate() error {
	if s.Periods < 0 {
		return fmt.Errorf("%w: %s: %w", ErrInvalidSchedule, s.Name, ErrInvalidPeriods)
	}
	if err := ValidateTiers(s.Tiers); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidSchedule, s.Name, err)
	}
	return nil
}

// ValidateTiers checks that every rate is in [0,1], every width but the
// last is finite and positive, and the last width is unbounded.
func ValidateTiers(tiers []Tier) error {
	if len(tiers) == 0 {
		return ErrEmptySchedule
	}
	last := len(tiers) - 1
	for i, tier := range tiers {
		if math.IsNaN(tier.Rate) || tier.Rate < 0 || tier.Rate > 1 {
			return fmt.Errorf("tier %d: %w", i, ErrInvalidRate)
		}
		if tier.IsUnbounded() {
			if i != last {
				return fmt.Errorf("tier %d: %w", i, ErrMisplacedCatchAll)
			}
			continue
		}
		if i == last {
			return ErrUnterminated
		}
		if math.IsNaN(tier.Width) || math.IsInf(tier.Width, 0) || tier.Width <= 0 {
			return fmt.Errorf("tier %d: %w", i, ErrInvalidWidth)
		}
	}
	return nil
}

// Tax returns the tax owed on income for one of the schedule's periods.
func (s Schedule) Tax(income float64) float64 {
	if s.Periods <= 1 {
		return Evaluate(income, s.Tiers)
	}
	factor := float64(s.Periods)
	return Evaluate(income*factor, s.Tiers) / factor
}

// Bands returns the cumulative-threshold view of the schedule's tiers.
func (s Schedule) Bands() []Band {
	return Bands(s.Tiers)
}
