package payroll

import (
	"fmt"
	"math"
	"strings"

	"ghpayroll/internal/domain/tax"
)

const (
	RateTableMonthlySimplified = "gh-monthly-simplified"
	RateTableAnnualTwoTier     = "gh-annual-two-tier"

	DefaultRateTable = RateTableMonthlySimplified
)

// GhanaMonthlySimplified applies the monthly PAYE ladder directly to monthly
// taxable income with a single 5.5% SSNIT tier and 2.5% NHIS.
func GhanaMonthlySimplified() RateConfig {
	return RateConfig{
		Name:          RateTableMonthlySimplified,
		Description:   "Monthly PAYE bands, SSNIT tier 1 only",
		SSNITEmployee: []float64{0.055},
		NHISEmployee:  0.025,
		Schedule: tax.MustSchedule(RateTableMonthlySimplified, 1, []tax.Tier{
			{Width: 402, Rate: 0},
			{Width: 110, Rate: 0.05},
			{Width: 130, Rate: 0.10},
			{Width: 3000, Rate: 0.175},
			{Width: 16358, Rate: 0.25},
			{Width: 30000, Rate: 0.30},
			{Width: tax.Unbounded, Rate: 0.35},
		}),
	}
}

// GhanaAnnualTwoTier evaluates annual bands against twelve times the monthly
// taxable income, with SSNIT tiers 1 and 2 deducted from the employee and
// employer contributions reported for cost.
func GhanaAnnualTwoTier() RateConfig {
	return RateConfig{
		Name:          RateTableAnnualTwoTier,
		Description:   "Annual PAYE bands applied monthly, SSNIT tiers 1 and 2, employer cost",
		SSNITEmployee: []float64{0.055, 0.05},
		NHISEmployee:  0.025,
		SSNITEmployer: []float64{0.13},
		NHISEmployer:  0.025,
		Schedule: tax.MustSchedule(RateTableAnnualTwoTier, 12, []tax.Tier{
			{Width: 4800, Rate: 0},
			{Width: 2160, Rate: 0.05},
			{Width: 3420, Rate: 0.10},
			{Width: 39000, Rate: 0.175},
			{Width: 190620, Rate: 0.25},
			{Width: 360000, Rate: 0.30},
			{Width: tax.Unbounded, Rate: 0.35},
		}),
	}
}

// Validate reports configuration errors. It is run when a table is loaded
// and again before each computation.
func (c RateConfig) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidRates)
	}
	if len(c.SSNITEmployee) == 0 {
		return fmt.Errorf("%s: %w", c.Name, ErrMissingEmployeeRates)
	}
	employeeTotal := c.NHISEmployee
	for _, rate := range c.SSNITEmployee {
		if !validRate(rate) {
			return fmt.Errorf("%s: ssnit employee %v: %w", c.Name, rate, ErrRateOutOfRange)
		}
		employeeTotal += rate
	}
	if !validRate(c.NHISEmployee) {
		return fmt.Errorf("%s: nhis employee %v: %w", c.Name, c.NHISEmployee, ErrRateOutOfRange)
	}
	if employeeTotal > 1 {
		return fmt.Errorf("%s: %w", c.Name, ErrEmployeeRatesTooHigh)
	}
	for _, rate := range c.SSNITEmployer {
		if !validRate(rate) {
			return fmt.Errorf("%s: ssnit employer %v: %w", c.Name, rate, ErrRateOutOfRange)
		}
	}
	if !validRate(c.NHISEmployer) {
		return fmt.Errorf("%s: nhis employer %v: %w", c.Name, c.NHISEmployer, ErrRateOutOfRange)
	}
	if err := c.Schedule.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRates, err)
	}
	return nil
}

func validRate(rate float64) bool {
	return !math.IsNaN(rate) && rate >= 0 && rate <= 1
}
