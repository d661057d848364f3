package employee

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"ghpayroll/internal/domain/payroll"
)

type PayslipOptions struct {
	CompanyName string
	Currency    string
	Period      time.Time
	GeneratedAt time.Time
}

// RenderPayslip writes a one page A4 payslip PDF for emp's stored breakdown.
func RenderPayslip(w io.Writer, emp Employee, opts PayslipOptions) error {
	if opts.Currency == "" {
		opts.Currency = "GHS"
	}
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now()
	}
	b := emp.Breakdown
	money := func(v float64) string { return opts.Currency + " " + payroll.FormatAmount(v) }

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Payslip "+emp.EmployeeID+" "+opts.Period.Format("2006-01"), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, opts.CompanyName, "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, "Payslip for "+opts.Period.Format("January 2006"), "", 1, "C", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 11)
	identity := [][2]string{
		{"Employee", emp.Name},
		{"Staff ID", emp.EmployeeID},
		{"NIA Number", emp.NationalID},
		{"TIN", emp.TIN},
		{"Position", emp.Position},
	}
	for _, pair := range identity {
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(40, 7, pair[0]+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 11)
		pdf.CellFormat(0, 7, pair[1], "", 1, "L", false, 0, "")
	}
	pdf.Ln(4)

	earnings := [][2]string{{"Basic Salary", money(b.BasicSalary)}}
	for _, a := range emp.Allowances {
		earnings = append(earnings, [2]string{a.Type, money(a.Amount)})
	}
	earnings = append(earnings, [2]string{"Gross Pay", money(b.GrossPay)})

	var deductions [][2]string
	for i, amount := range b.SSNITEmployee {
		label := "SSNIT"
		if len(b.SSNITEmployee) > 1 {
			label = fmt.Sprintf("SSNIT Tier %d", i+1)
		}
		if i < len(b.SSNITEmployeeRates) {
			label += " (" + payroll.FormatPercent(b.SSNITEmployeeRates[i]) + ")"
		}
		deductions = append(deductions, [2]string{label, money(amount)})
	}
	deductions = append(deductions,
		[2]string{"PAYE", money(b.PAYE)},
		[2]string{"NHIS (" + payroll.FormatPercent(b.NHISEmployeeRate) + ")", money(b.NHISEmployee)},
		[2]string{"Total Deductions", money(b.TotalDeductions)},
	)

	const colWidth = 95.0
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(colWidth, 8, "Earnings", "1", 0, "L", true, 0, "")
	pdf.CellFormat(colWidth, 8, "Statutory Deductions", "1", 1, "L", true, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	rows := max(len(earnings), len(deductions))
	for i := 0; i < rows; i++ {
		writePair(pdf, colWidth, earnings, i, 0)
		writePair(pdf, colWidth, deductions, i, 1)
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 11)
	third := colWidth * 2 / 3
	pdf.CellFormat(third, 9, "Gross: "+money(b.GrossPay), "1", 0, "C", true, 0, "")
	pdf.CellFormat(third, 9, "Deductions: "+money(b.TotalDeductions), "1", 0, "C", true, 0, "")
	pdf.CellFormat(third, 9, "Net Pay: "+money(b.NetPay), "1", 1, "C", true, 0, "")

	if b.TotalEmployerCost > 0 {
		pdf.Ln(3)
		pdf.SetFont("Helvetica", "", 9)
		pdf.CellFormat(0, 6, "Employer cost: "+money(b.TotalEmployerCost), "", 1, "L", false, 0, "")
	}

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "I", 8)
	pdf.CellFormat(0, 5, "Rate table: "+b.RateTable, "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 5, "Generated on "+opts.GeneratedAt.Format("02 Jan 2006 15:04"), "", 1, "L", false, 0, "")

	return pdf.Output(w)
}

// writePair writes label and value cells for row i, or blank cells past the
// end of rows. col 1 ends the line.
func writePair(pdf *gofpdf.Fpdf, width float64, rows [][2]string, i, col int) {
	label, value := "", ""
	if i < len(rows) {
		label, value = rows[i][0], rows[i][1]
	}
	ln := 0
	if col == 1 {
		ln = 1
	}
	pdf.CellFormat(width*0.55, 7, label, "L", 0, "L", false, 0, "")
	pdf.CellFormat(width*0.45, 7, value, "R", ln, "R", false, 0, "")
}
