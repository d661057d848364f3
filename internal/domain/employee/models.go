package employee

import (
	"time"

	"ghpayroll/internal/domain/payroll"
)

// Employee is a stored payroll record. Breakdown is always derived from
// BasicSalary, Allowances and RateTable; it is never edited directly.
type Employee struct {
	EmployeeID  string              `json:"employeeId"`
	Name        string              `json:"name"`
	Position    string              `json:"position"`
	NationalID  string              `json:"nationalId"`
	TIN         string              `json:"tin"`
	BankName    string              `json:"bankName"`
	BankAccount string              `json:"bankAccount"`
	BasicSalary float64             `json:"basicSalary"`
	Allowances  []payroll.Allowance `json:"allowances"`
	RateTable   string              `json:"rateTable"`
	Breakdown   payroll.Breakdown   `json:"breakdown"`
	CreatedAt   time.Time           `json:"createdAt"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// Input is what a caller submits to create or replace an employee.
type Input struct {
	EmployeeID  string              `json:"employeeId" validate:"required,notblank,max=64"`
	Name        string              `json:"name" validate:"required,notblank,max=200"`
	Position    string              `json:"position" validate:"max=120"`
	NationalID  string              `json:"nationalId" validate:"max=64"`
	TIN         string              `json:"tin" validate:"max=32"`
	BankName    string              `json:"bankName" validate:"max=120"`
	BankAccount string              `json:"bankAccount" validate:"max=64"`
	BasicSalary float64             `json:"basicSalary" validate:"gte=0"`
	Allowances  []payroll.Allowance `json:"allowances" validate:"dive"`
	RateTable   string              `json:"rateTable" validate:"max=64"`
}

// Summary aggregates the stored breakdowns for the dashboard.
type Summary struct {
	Employees         int     `json:"employees"`
	TotalGross        float64 `json:"totalGross"`
	TotalDeductions   float64 `json:"totalDeductions"`
	TotalNet          float64 `json:"totalNet"`
	TotalPAYE         float64 `json:"totalPaye"`
	TotalSSNIT        float64 `json:"totalSsnit"`
	TotalNHIS         float64 `json:"totalNhis"`
	TotalEmployerCost float64 `json:"totalEmployerCost"`
}

// RecomputeResult reports a Recompute pass.
type RecomputeResult struct {
	Updated int      `json:"updated"`
	Failed  []string `json:"failed,omitempty"`
}
