package db

import (
	"context"
	"log/slog"

	"ghpayroll/internal/domain/employee"
	"ghpayroll/internal/domain/payroll"
)

// DemoEmployees are inserted by Seed: one employee on each built-in rate
// table.
var DemoEmployees = []employee.Input{
	{
		EmployeeID:  "EMP-001",
		Name:        "Ama Mensah",
		Position:    "Accounts Officer",
		NationalID:  "GHA-000000001-1",
		TIN:         "P0000000011",
		BankName:    "GCB Bank",
		BankAccount: "1010000000001",
		BasicSalary: 1000,
		RateTable:   payroll.RateTableMonthlySimplified,
	},
	{
		EmployeeID:  "EMP-002",
		Name:        "Kofi Boateng",
		Position:    "Operations Lead",
		NationalID:  "GHA-000000002-2",
		TIN:         "P0000000022",
		BankName:    "Ecobank Ghana",
		BankAccount: "1020000000002",
		BasicSalary: 1000,
		Allowances: []payroll.Allowance{
			{Type: "Housing", Amount: 200},
			{Type: "Transport", Amount: 100},
		},
		RateTable: payroll.RateTableAnnualTwoTier,
	},
}

// Seed saves the demo employees when the store holds none.
func Seed(ctx context.Context, svc *employee.Service) error {
	existing, err := svc.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, in := range DemoEmployees {
		if _, err := svc.Save(ctx, in); err != nil {
			return err
		}
	}
	slog.Info("seeded demo employees", "count", len(DemoEmployees))
	return nil
}
