package employee

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/samber/lo"

	"ghpayroll/internal/domain/payroll"
)

var registerHeader = []string{
	"employee_id", "name", "position", "tin", "rate_table", "basic_salary", "total_allowances",
	"gross_pay", "ssnit_employee", "nhis_employee", "taxable_income", "paye",
	"total_deductions", "net_pay", "employer_cost",
}

// WriteRegister writes one CSV row per employee with amounts at two decimals.
func WriteRegister(w io.Writer, emps []Employee) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(registerHeader); err != nil {
		return err
	}
	for _, emp := range emps {
		b := emp.Breakdown
		amounts := lo.Map([]float64{
			b.BasicSalary, b.TotalAllowances, b.GrossPay, b.TotalSSNITEmployee, b.NHISEmployee,
			b.TaxableIncome, b.PAYE, b.TotalDeductions, b.NetPay, b.TotalEmployerCost,
		}, func(v float64, _ int) string {
			return strconv.FormatFloat(payroll.Round2(v), 'f', 2, 64)
		})
		record := append([]string{emp.EmployeeID, emp.Name, emp.Position, emp.TIN, emp.RateTable}, amounts...)
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
