// Command payrollcalc computes one employee's pay breakdown from flags.
//
//	payrollcalc -basic 1000 -allowance Housing=200 -allowance Transport=100 -table gh-annual-two-tier
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"ghpayroll/internal/domain/payroll"
)

const (
	exitOK      = 0
	exitFailure = 1
	exitUsage   = 2
)

type allowanceFlags []payroll.Allowance

func (a *allowanceFlags) String() string {
	parts := make([]string, 0, len(*a))
	for _, al := range *a {
		parts = append(parts, al.Type+"="+strconv.FormatFloat(al.Amount, 'f', -1, 64))
	}
	return strings.Join(parts, ",")
}

func (a *allowanceFlags) Set(value string) error {
	name, raw, ok := strings.Cut(value, "=")
	if !ok || strings.TrimSpace(name) == "" {
		return errors.New("allowance must be type=amount")
	}
	amount, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return fmt.Errorf("allowance %q: %w", name, err)
	}
	*a = append(*a, payroll.Allowance{Type: strings.TrimSpace(name), Amount: amount})
	return nil
}

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("payrollcalc", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var allowances allowanceFlags
	basic := fs.Float64("basic", 0, "monthly basic salary")
	table := fs.String("table", "", "rate table name (default table when empty)")
	ratesFile := fs.String("rates", "", "YAML file with extra rate tables")
	asJSON := fs.Bool("json", false, "print the breakdown as JSON")
	fs.Var(&allowances, "allowance", "allowance as type=amount, repeatable")
	if err := fs.Parse(args); err != nil {
		return exitUsage
	}

	registry, err := payroll.LoadRegistry(*ratesFile, "")
	if err != nil {
		fmt.Fprintf(stderr, "payrollcalc: %v\n", err)
		return exitFailure
	}
	cfg, err := registry.Lookup(*table)
	if err != nil {
		fmt.Fprintf(stderr, "payrollcalc: %v\n", err)
		return exitUsage
	}
	breakdown, err := payroll.Compute(*basic, allowances, cfg)
	if err != nil {
		fmt.Fprintf(stderr, "payrollcalc: %v\n", err)
		if errors.Is(err, payroll.ErrInvalidInput) {
			return exitUsage
		}
		return exitFailure
	}

	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(breakdown); err != nil {
			fmt.Fprintf(stderr, "payrollcalc: %v\n", err)
			return exitFailure
		}
		return exitOK
	}
	if err := printTable(stdout, breakdown); err != nil {
		fmt.Fprintf(stderr, "payrollcalc: %v\n", err)
		return exitFailure
	}
	return exitOK
}

func printTable(w io.Writer, b payroll.Breakdown) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	row := func(label string, value float64) {
		fmt.Fprintf(tw, "%s\t%s\t\n", label, payroll.FormatAmount(value))
	}
	fmt.Fprintf(tw, "Rate table\t%s\t\n", b.RateTable)
	row("Basic salary", b.BasicSalary)
	row("Allowances", b.TotalAllowances)
	row("Gross pay", b.GrossPay)
	for i, amount := range b.SSNITEmployee {
		label := "SSNIT"
		if len(b.SSNITEmployee) > 1 {
			label = fmt.Sprintf("SSNIT tier %d", i+1)
		}
		row(fmt.Sprintf("%s (%s)", label, payroll.FormatPercent(b.SSNITEmployeeRates[i])), amount)
	}
	row(fmt.Sprintf("NHIS (%s)", payroll.FormatPercent(b.NHISEmployeeRate)), b.NHISEmployee)
	row("Taxable income", b.TaxableIncome)
	row("PAYE", b.PAYE)
	row("Total deductions", b.TotalDeductions)
	row("Net pay", b.NetPay)
	if b.TotalEmployerCost > 0 {
		row("Employer SSNIT", b.TotalSSNITEmployer)
		row("Employer NHIS", b.NHISEmployer)
		row("Employer cost", b.TotalEmployerCost)
	}
	return tw.Flush()
}
