package tax

import (
	"encoding/json"
	"fmt"
	"math"
)

// Evaluate walks tiers in order and returns the cumulative tax on
// taxableIncome. Income that is zero, negative or NaN owes no tax.
//
// An amount exactly equal to a tier's width stays inside that tier: only a
// strictly larger remainder spills into the next rate.
func Evaluate(taxableIncome float64, tiers []Tier) float64 {
	if !(taxableIncome > 0) {
		return 0
	}
	remaining := taxableIncome
	var total float64
	for _, tier := range tiers {
		if !tier.IsUnbounded() && remaining > tier.Width {
			total += tier.Width * tier.Rate
			remaining -= tier.Width
			continue
		}
		total += remaining * tier.Rate
		return total
	}
	// Tiers without a catch-all: income beyond the last width is untaxed.
	return total
}

// Band is one row of the cumulative-threshold form of a schedule: income in
// (Lower, Upper] owes BaseTax plus Rate on the part above Lower.
type Band struct {
	Lower   float64
	Upper   float64
	BaseTax float64
	Rate    float64
}

func (b Band) IsUnbounded() bool {
	return math.IsInf(b.Upper, 1)
}

// Bands converts incremental widths into absolute breakpoints with the tax
// already owed at each lower bound.
func Bands(tiers []Tier) []Band {
	bands := make([]Band, 0, len(tiers))
	var lower, base float64
	for _, tier := range tiers {
		upper := Unbounded
		if !tier.IsUnbounded() {
			upper = lower + tier.Width
		}
		bands = append(bands, Band{Lower: lower, Upper: upper, BaseTax: base, Rate: tier.Rate})
		if tier.IsUnbounded() {
			break
		}
		base += tier.Width * tier.Rate
		lower = upper
	}
	return bands
}

// EvaluateBands computes tax with the cumulative-threshold form. It returns
// the same result as Evaluate over the tiers the bands were built from.
func EvaluateBands(taxableIncome float64, bands []Band) float64 {
	if !(taxableIncome > 0) || len(bands) == 0 {
		return 0
	}
	for _, band := range bands {
		if band.IsUnbounded() || taxableIncome <= band.Upper {
			return band.BaseTax + (taxableIncome-band.Lower)*band.Rate
		}
	}
	last := bands[len(bands)-1]
	return last.BaseTax + (last.Upper-last.Lower)*last.Rate
}

// Threshold is a bracket expressed by its absolute upper bound. A zero or
// infinite UpTo marks the catch-all bracket.
type Threshold struct {
	UpTo float64
	Rate float64
}

// FromThresholds derives tier widths from consecutive breakpoints.
func FromThresholds(thresholds []Threshold) ([]Tier, error) {
	if len(thresholds) == 0 {
		return nil, ErrEmptySchedule
	}
	tiers := make([]Tier, 0, len(thresholds))
	var prev float64
	for i, th := range thresholds {
		if th.UpTo == 0 || math.IsInf(th.UpTo, 1) {
			tiers = append(tiers, Tier{Width: Unbounded, Rate: th.Rate})
			continue
		}
		if math.IsNaN(th.UpTo) || th.UpTo <= prev {
			return nil, fmt.Errorf("threshold %d (%v): %w", i, th.UpTo, ErrThresholdOrder)
		}
		tiers = append(tiers, Tier{Width: th.UpTo - prev, Rate: th.Rate})
		prev = th.UpTo
	}
	if err := ValidateTiers(tiers); err != nil {
		return nil, err
	}
	return tiers, nil
}

type tierJSON struct {
	Width *float64 `json:"width"`
	Rate  float64  `json:"rate"`
}

// MarshalJSON encodes the unbounded width as null.
func (t Tier) MarshalJSON() ([]byte, error) {
	out := tierJSON{Rate: t.Rate}
	if !t.IsUnbounded() {
		width := t.Width
		out.Width = &width
	}
	return json.Marshal(out)
}

func (t *Tier) UnmarshalJSON(data []byte) error {
	var in tierJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	t.Rate = in.Rate
	t.Width = Unbounded
	if in.Width != nil {
		t.Width = *in.Width
	}
	return nil
}

type bandJSON struct {
	Lower   float64  `json:"lower"`
	Upper   *float64 `json:"upper"`
	BaseTax float64  `json:"baseTax"`
	Rate    float64  `json:"rate"`
}

func (b Band) MarshalJSON() ([]byte, error) {
	out := bandJSON{Lower: b.Lower, BaseTax: b.BaseTax, Rate: b.Rate}
	if !b.IsUnbounded() {
		upper := b.Upper
		out.Upper = &upper
	}
	return json.Marshal(out)
}
