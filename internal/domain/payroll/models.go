package payroll

import (
	"slices"

	"ghpayroll/internal/domain/tax"
)

type Allowance struct {
	Type   string  `json:"type" validate:"required,notblank,max=64"`
	Amount float64 `json:"amount" validate:"gte=0"`
}

// RateConfig holds the statutory percentages and tax schedule for one rate
// table. SSNIT rates are listed per tier; employer fields are optional.
type RateConfig struct {
	Name          string       `json:"name"`
	Description   string       `json:"description,omitempty"`
	SSNITEmployee []float64    `json:"ssnitEmployee"`
	NHISEmployee  float64      `json:"nhisEmployee"`
	SSNITEmployer []float64    `json:"ssnitEmployer,omitempty"`
	NHISEmployer  float64      `json:"nhisEmployer,omitempty"`
	Schedule      tax.Schedule `json:"schedule"`
}

// Clone returns a copy that shares no slices with c.
func (c RateConfig) Clone() RateConfig {
	c.SSNITEmployee = slices.Clone(c.SSNITEmployee)
	c.SSNITEmployer = slices.Clone(c.SSNITEmployer)
	c.Schedule.Tiers = slices.Clone(c.Schedule.Tiers)
	return c
}

func (c RateConfig) HasEmployerCost() bool {
	return len(c.SSNITEmployer) > 0 || c.NHISEmployer > 0
}

// Breakdown is the full derived pay record for one employee and one period.
// Values are unrounded.
type Breakdown struct {
	RateTable       string  `json:"rateTable"`
	BasicSalary     float64 `json:"basicSalary"`
	TotalAllowances float64 `json:"totalAllowances"`
	GrossPay        float64 `json:"grossPay"`

	SSNITEmployeeRates []float64 `json:"ssnitEmployeeRates"`
	SSNITEmployee      []float64 `json:"ssnitEmployee"`
	TotalSSNITEmployee float64   `json:"totalSsnitEmployee"`
	NHISEmployeeRate   float64   `json:"nhisEmployeeRate"`
	NHISEmployee       float64   `json:"nhisEmployee"`

	TaxableIncome   float64 `json:"taxableIncome"`
	PAYE            float64 `json:"paye"`
	TotalDeductions float64 `json:"totalDeductions"`
	NetPay          float64 `json:"netPay"`

	SSNITEmployer      []float64 `json:"ssnitEmployer,omitempty"`
	TotalSSNITEmployer float64   `json:"totalSsnitEmployer,omitempty"`
	NHISEmployer       float64   `json:"nhisEmployer,omitempty"`
	TotalEmployerCost  float64   `json:"totalEmployerCost,omitempty"`
}
