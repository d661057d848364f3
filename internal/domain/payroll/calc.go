package payroll

import (
	"fmt"
	"math"
	"strings"

	"github.com/samber/lo"
)

// Compute derives the pay breakdown for one employee.
//
// SSNIT and NHIS are flat percentages of basic salary only. Taxable income is
// gross pay less employee SSNIT (NHIS never reduces it) and is floored at
// zero before the schedule is applied.
func Compute(basicSalary float64, allowances []Allowance, rates RateConfig) (Breakdown, error) {
	if err := validateAmount(basicSalary); err != nil {
		return Breakdown{}, fmt.Errorf("basic salary: %w", err)
	}
	if basicSalary < 0 {
		return Breakdown{}, ErrNegativeSalary
	}
	for i, allowance := range allowances {
		if strings.TrimSpace(allowance.Type) == "" {
			return Breakdown{}, fmt.Errorf("allowance %d: %w", i, ErrBlankAllowanceType)
		}
		if err := validateAmount(allowance.Amount); err != nil {
			return Breakdown{}, fmt.Errorf("allowance %d (%s): %w", i, allowance.Type, err)
		}
		if allowance.Amount < 0 {
			return Breakdown{}, fmt.Errorf("allowance %d (%s): %w", i, allowance.Type, ErrNegativeAllowance)
		}
	}
	if err := rates.Validate(); err != nil {
		return Breakdown{}, err
	}

	totalAllowances := TotalAllowances(allowances)
	gross := basicSalary + totalAllowances

	ssnitEmployee := percentagesOf(basicSalary, rates.SSNITEmployee)
	totalSSNIT := lo.Sum(ssnitEmployee)
	nhisEmployee := basicSalary * rates.NHISEmployee

	taxable := math.Max(gross-totalSSNIT, 0)
	paye := rates.Schedule.Tax(taxable)

	totalDeductions := totalSSNIT + nhisEmployee + paye

	out := Breakdown{
		RateTable:          rates.Name,
		BasicSalary:        basicSalary,
		TotalAllowances:    totalAllowances,
		GrossPay:           gross,
		SSNITEmployeeRates: append([]float64(nil), rates.SSNITEmployee...),
		SSNITEmployee:      ssnitEmployee,
		TotalSSNITEmployee: totalSSNIT,
		NHISEmployeeRate:   rates.NHISEmployee,
		NHISEmployee:       nhisEmployee,
		TaxableIncome:      taxable,
		PAYE:               paye,
		TotalDeductions:    totalDeductions,
		NetPay:             gross - totalDeductions,
	}

	if rates.HasEmployerCost() {
		out.SSNITEmployer = percentagesOf(basicSalary, rates.SSNITEmployer)
		out.TotalSSNITEmployer = lo.Sum(out.SSNITEmployer)
		out.NHISEmployer = basicSalary * rates.NHISEmployer
		out.TotalEmployerCost = gross + out.TotalSSNITEmployer + out.NHISEmployer
	}
	return out, nil
}

// TotalAllowances sums allowance amounts in order.
func TotalAllowances(allowances []Allowance) float64 {
	return lo.SumBy(allowances, func(a Allowance) float64 { return a.Amount })
}

func percentagesOf(base float64, rates []float64) []float64 {
	return lo.Map(rates, func(rate float64, _ int) float64 { return base * rate })
}

func validateAmount(value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return ErrMalformedAmount
	}
	return nil
}
