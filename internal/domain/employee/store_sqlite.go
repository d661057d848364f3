package employee

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ghpayroll/internal/platform/crypto"
)

// SQLiteStore keeps timestamps as RFC 3339 text.
type SQLiteStore struct {
	DB     *sql.DB
	cipher *crypto.Cipher
}

func NewSQLiteStore(db *sql.DB, cipher *crypto.Cipher) *SQLiteStore {
	return &SQLiteStore{DB: db, cipher: cipher}
}

func (s *SQLiteStore) Find(ctx context.Context, employeeID string) (Employee, error) {
	emp, err := s.scan(s.DB.QueryRowContext(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE employee_id = ?
  `, employeeID))
	if errors.Is(err, sql.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	return emp, err
}

func (s *SQLiteStore) Upsert(ctx context.Context, emp Employee) error {
	r, err := encodeRow(emp, s.cipher)
	if err != nil {
		return err
	}
	_, err = s.DB.ExecContext(ctx, `
    INSERT INTO employees (`+employeeColumns+`)
    VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?)
    ON CONFLICT (employee_id) DO UPDATE SET
      name = excluded.name,
      position = excluded.position,
      national_id = excluded.national_id,
      tin = excluded.tin,
      bank_name = excluded.bank_name,
      bank_account = excluded.bank_account,
      basic_salary = excluded.basic_salary,
      allowances_json = excluded.allowances_json,
      rate_table = excluded.rate_table,
      breakdown_json = excluded.breakdown_json,
      updated_at = excluded.updated_at
  `, r.EmployeeID, r.Name, r.Position, r.NationalID, r.TIN, r.BankName, r.BankAccount,
		r.BasicSalary, string(r.AllowancesJSON), r.RateTable, string(r.BreakdownJSON),
		formatTime(emp.CreatedAt), formatTime(emp.UpdatedAt))
	if err != nil {
		return fmt.Errorf("upsert employee %s: %w", emp.EmployeeID, err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, employeeID string) error {
	res, err := s.DB.ExecContext(ctx, "DELETE FROM employees WHERE employee_id = ?", employeeID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]Employee, error) {
	rows, err := s.DB.QueryContext(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    ORDER BY employee_id
  `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Employee
	for rows.Next() {
		emp, err := s.scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, emp)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *SQLiteStore) scan(scanner rowScanner) (Employee, error) {
	var r row
	var allowances, breakdown, created, updated string
	if err := scanner.Scan(&r.EmployeeID, &r.Name, &r.Position, &r.NationalID, &r.TIN, &r.BankName, &r.BankAccount,
		&r.BasicSalary, &allowances, &r.RateTable, &breakdown, &created, &updated); err != nil {
		return Employee{}, err
	}
	r.AllowancesJSON = []byte(allowances)
	r.BreakdownJSON = []byte(breakdown)
	emp, err := r.decode(s.cipher)
	if err != nil {
		return Employee{}, err
	}
	if emp.CreatedAt, err = parseTime(created); err != nil {
		return Employee{}, fmt.Errorf("employee %s created_at: %w", r.EmployeeID, err)
	}
	if emp.UpdatedAt, err = parseTime(updated); err != nil {
		return Employee{}, fmt.Errorf("employee %s updated_at: %w", r.EmployeeID, err)
	}
	return emp, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(raw string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, raw)
}
