package tax

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func monthlyTiers() []Tier {
	return []Tier{
		{Width: 402, Rate: 0},
		{Width: 110, Rate: 0.05},
		{Width: 130, Rate: 0.10},
		{Width: 3000, Rate: 0.175},
		{Width: 16358, Rate: 0.25},
		{Width: 30000, Rate: 0.30},
		{Width: Unbounded, Rate: 0.35},
	}
}

// legacyMonthlyPAYE is the same schedule written as a threshold ladder with
// pre-added base taxes.
func legacyMonthlyPAYE(income float64) float64 {
	switch {
	case income <= 402:
		return 0
	case income <= 512:
		return (income - 402) * 0.05
	case income <= 642:
		return 5.5 + (income-512)*0.10
	case income <= 3642:
		return 18.5 + (income-642)*0.175
	case income <= 20000:
		return 543.5 + (income-3642)*0.25
	case income <= 50000:
		return 4633 + (income-20000)*0.30
	default:
		return 13633 + (income-50000)*0.35
	}
}

func TestEvaluateNonPositiveIncomeOwesNothing(t *testing.T) {
	for _, income := range []float64{0, -0.01, -1000, math.Inf(-1), math.NaN()} {
		assert.Zero(t, Evaluate(income, monthlyTiers()), "income %v", income)
	}
}

func TestEvaluateMonthlyScenario(t *testing.T) {
	assert.InDelta(t, 71.525, Evaluate(945, monthlyTiers()), 1e-9)
}

func TestEvaluateExactBoundaryStaysInTier(t *testing.T) {
	tiers := monthlyTiers()
	assert.Zero(t, Evaluate(402, tiers))
	assert.InDelta(t, 5.5, Evaluate(512, tiers), 1e-9)
	assert.InDelta(t, 18.5, Evaluate(642, tiers), 1e-9)
	assert.InDelta(t, 543.5, Evaluate(3642, tiers), 1e-9)
	assert.InDelta(t, 4633, Evaluate(20000, tiers), 1e-9)
	assert.InDelta(t, 13633, Evaluate(50000, tiers), 1e-9)
}

func TestEvaluateJustAboveBoundarySpills(t *testing.T) {
	assert.InDelta(t, 0.05*0.01, Evaluate(402.01, monthlyTiers()), 1e-9)
}

func TestEvaluateMatchesThresholdLadder(t *testing.T) {
	tiers := monthlyTiers()
	for income := 0.0; income <= 80000; income += 37.25 {
		assert.InDelta(t, legacyMonthlyPAYE(income), Evaluate(income, tiers), 1e-6, "income %v", income)
	}
}

func TestEvaluateIsMonotonic(t *testing.T) {
	tiers := monthlyTiers()
	prev := Evaluate(0, tiers)
	for income := 0.5; income <= 60000; income += 12.5 {
		got := Evaluate(income, tiers)
		require.GreaterOrEqual(t, got, prev, "tax decreased at %v", income)
		prev = got
	}
}

func TestEvaluateBandsMatchesEvaluate(t *testing.T) {
	tiers := monthlyTiers()
	bands := Bands(tiers)
	require.Len(t, bands, len(tiers))
	assert.Equal(t, 3642.0, bands[4].Lower)
	assert.InDelta(t, 543.5, bands[4].BaseTax, 1e-9)
	assert.True(t, bands[len(bands)-1].IsUnbounded())

	for income := -10.0; income <= 75000; income += 41.5 {
		assert.InDelta(t, Evaluate(income, tiers), EvaluateBands(income, bands), 1e-9, "income %v", income)
	}
}

func TestFromThresholds(t *testing.T) {
	tiers, err := FromThresholds([]Threshold{
		{UpTo: 402, Rate: 0},
		{UpTo: 512, Rate: 0.05},
		{UpTo: 642, Rate: 0.10},
		{UpTo: 3642, Rate: 0.175},
		{UpTo: 20000, Rate: 0.25},
		{UpTo: 50000, Rate: 0.30},
		{Rate: 0.35},
	})
	require.NoError(t, err)
	assert.Equal(t, monthlyTiers(), tiers)
}

func TestFromThresholdsRejectsDescendingBreakpoints(t *testing.T) {
	_, err := FromThresholds([]Threshold{{UpTo: 500, Rate: 0}, {UpTo: 400, Rate: 0.1}, {Rate: 0.2}})
	assert.ErrorIs(t, err, ErrThresholdOrder)
}

func TestFromThresholdsRequiresCatchAll(t *testing.T) {
	_, err := FromThresholds([]Threshold{{UpTo: 500, Rate: 0}, {UpTo: 900, Rate: 0.1}})
	assert.ErrorIs(t, err, ErrUnterminated)
}

func TestNewScheduleValidation(t *testing.T) {
	cases := []struct {
		name  string
		tiers []Tier
		want  error
	}{
		{"empty", nil, ErrEmptySchedule},
		{"no catch-all", []Tier{{Width: 100, Rate: 0}}, ErrUnterminated},
		{"catch-all first", []Tier{{Width: Unbounded, Rate: 0}, {Width: Unbounded, Rate: 0.1}}, ErrMisplacedCatchAll},
		{"zero width", []Tier{{Width: 0, Rate: 0}, {Width: Unbounded, Rate: 0.1}}, ErrInvalidWidth},
		{"negative width", []Tier{{Width: -5, Rate: 0}, {Width: Unbounded, Rate: 0.1}}, ErrInvalidWidth},
		{"rate above one", []Tier{{Width: 10, Rate: 1.5}, {Width: Unbounded, Rate: 0.1}}, ErrInvalidRate},
		{"negative rate", []Tier{{Width: 10, Rate: 0}, {Width: Unbounded, Rate: -0.1}}, ErrInvalidRate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewSchedule(tc.name, 1, tc.tiers)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidSchedule)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestNewScheduleCopiesTiers(t *testing.T) {
	tiers := monthlyTiers()
	s, err := NewSchedule("monthly", 1, tiers)
	require.NoError(t, err)
	tiers[0].Rate = 0.9
	assert.Zero(t, s.Tiers[0].Rate)
}

func TestScheduleTaxAnnualizes(t *testing.T) {
	annual := MustSchedule("annual", 12, []Tier{
		{Width: 4800, Rate: 0},
		{Width: 2160, Rate: 0.05},
		{Width: 3420, Rate: 0.10},
		{Width: 39000, Rate: 0.175},
		{Width: Unbounded, Rate: 0.25},
	})
	assert.InDelta(t, 95.25, annual.Tax(1195), 1e-9)
	assert.Zero(t, annual.Tax(-50))

	monthly := MustSchedule("monthly", 0, monthlyTiers())
	assert.InDelta(t, 71.525, monthly.Tax(945), 1e-9)
}

func TestTierJSONUsesNullForUnbounded(t *testing.T) {
	raw, err := json.Marshal([]Tier{{Width: 402, Rate: 0}, {Width: Unbounded, Rate: 0.35}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"width":402,"rate":0},{"width":null,"rate":0.35}]`, string(raw))

	var back []Tier
	require.NoError(t, json.Unmarshal(raw, &back))
	assert.True(t, back[1].IsUnbounded())
	assert.Equal(t, 402.0, back[0].Width)
}
