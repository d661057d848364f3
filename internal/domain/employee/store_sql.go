package employee

import (
	"encoding/json"
	"fmt"

	"ghpayroll/internal/platform/crypto"
)

const employeeColumns = `employee_id, name, position, national_id, tin, bank_name, bank_account,
    basic_salary, allowances_json, rate_table, breakdown_json, created_at, updated_at`

// rowScanner is satisfied by pgx.Row, pgx.Rows, *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// row is the column form shared by the SQL stores. Sensitive fields are
// sealed and the slices are JSON.
type row struct {
	EmployeeID     string
	Name           string
	Position       string
	NationalID     string
	TIN            string
	BankName       string
	BankAccount    string
	BasicSalary    float64
	AllowancesJSON []byte
	RateTable      string
	BreakdownJSON  []byte
}

func encodeRow(emp Employee, cipher *crypto.Cipher) (row, error) {
	nationalID, err := cipher.Seal(emp.NationalID)
	if err != nil {
		return row{}, fmt.Errorf("seal national id: %w", err)
	}
	tin, err := cipher.Seal(emp.TIN)
	if err != nil {
		return row{}, fmt.Errorf("seal tin: %w", err)
	}
	bankAccount, err := cipher.Seal(emp.BankAccount)
	if err != nil {
		return row{}, fmt.Errorf("seal bank account: %w", err)
	}
	allowances, err := json.Marshal(emp.Allowances)
	if err != nil {
		return row{}, fmt.Errorf("encode allowances: %w", err)
	}
	breakdown, err := json.Marshal(emp.Breakdown)
	if err != nil {
		return row{}, fmt.Errorf("encode breakdown: %w", err)
	}
	return row{
		EmployeeID:     emp.EmployeeID,
		Name:           emp.Name,
		Position:       emp.Position,
		NationalID:     nationalID,
		TIN:            tin,
		BankName:       emp.BankName,
		BankAccount:    bankAccount,
		BasicSalary:    emp.BasicSalary,
		AllowancesJSON: allowances,
		RateTable:      emp.RateTable,
		BreakdownJSON:  breakdown,
	}, nil
}

func (r row) decode(cipher *crypto.Cipher) (Employee, error) {
	emp := Employee{
		EmployeeID:  r.EmployeeID,
		Name:        r.Name,
		Position:    r.Position,
		BankName:    r.BankName,
		BasicSalary: r.BasicSalary,
		RateTable:   r.RateTable,
	}
	var err error
	if emp.NationalID, err = cipher.Open(r.NationalID); err != nil {
		return Employee{}, fmt.Errorf("employee %s national id: %w", r.EmployeeID, err)
	}
	if emp.TIN, err = cipher.Open(r.TIN); err != nil {
		return Employee{}, fmt.Errorf("employee %s tin: %w", r.EmployeeID, err)
	}
	if emp.BankAccount, err = cipher.Open(r.BankAccount); err != nil {
		return Employee{}, fmt.Errorf("employee %s bank account: %w", r.EmployeeID, err)
	}
	if err := json.Unmarshal(r.AllowancesJSON, &emp.Allowances); err != nil {
		return Employee{}, fmt.Errorf("employee %s allowances: %w", r.EmployeeID, err)
	}
	if err := json.Unmarshal(r.BreakdownJSON, &emp.Breakdown); err != nil {
		return Employee{}, fmt.Errorf("employee %s breakdown: %w", r.EmployeeID, err)
	}
	return emp, nil
}
