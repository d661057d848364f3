package employee

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ghpayroll/internal/platform/crypto"
)

type PostgresStore struct {
	DB     *pgxpool.Pool
	cipher *crypto.Cipher
}

func NewPostgresStore(db *pgxpool.Pool, cipher *crypto.Cipher) *PostgresStore {
	return &PostgresStore{DB: db, cipher: cipher}
}

func (s *PostgresStore) Find(ctx context.Context, employeeID string) (Employee, error) {
	emp, err := s.scan(s.DB.QueryRow(ctx, `
    SELECT `+employeeColumns+`
    FROM employees
    WHERE employee_id = $1
  `, employeeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return Employee{}, ErrNotFound
	}
	return emp, err
}

func (s *PostgresStore) Upsert(ctx context.Context, emp Employee) error {
	r, err := encodeRow(emp, s.cipher)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(ctx, `
    INSERT INTO employees (`+employeeColumns+`)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
    ON CONFLICT (employee_id) DO UPDATE SET
      name = EXCLUDED.name,
      position = EXCLUDED.position,
      national_id = EXCLUDED.national_id,
      tin = EXCLUDED.tin,
      bank_name = EXCLUDED.bank_name,
      bank_account = EXCLUDED.bank_account,
      basic_salary = EXCLUDED.basic_salary,
      allowances_json = EXCLUDED.allowances_json,
      rate_table = EXCLUDED.rate_table,
      breakdown_json = EXCLUDED.breakdown_json,
      updated_at = EXCLUDED.updated_at
  `, r.EmployeeID, r.Name, r.Position, r.NationalID, r.TIN, r.BankName, r.BankAccount,
		r.BasicSalary, r.AllowancesJSON, r.RateTable, r.BreakdownJSON, emp.CreatedAt, emp.UpdatedAt)
	if err != nil {
		return fmt.Errorf("upsert employee %s: %w", emp.EmployeeID, err)
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, employeeID string) error {
	tag, err := s.DB.Exec(ctx, "DELETE FROM employees WHERE employee_id = $1", employeeID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) List(ctx context.Context) ([]Employee, error) {
	rows, err := s.DB.Query(ctx, `
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

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.DB.Ping(ctx)
}

func (s *PostgresStore) scan(scanner rowScanner) (Employee, error) {
	var r row
	var emp Employee
	if err := scanner.Scan(&r.EmployeeID, &r.Name, &r.Position, &r.NationalID, &r.TIN, &r.BankName, &r.BankAccount,
		&r.BasicSalary, &r.AllowancesJSON, &r.RateTable, &r.BreakdownJSON, &emp.CreatedAt, &emp.UpdatedAt); err != nil {
		return Employee{}, err
	}
	decoded, err := r.decode(s.cipher)
	if err != nil {
		return Employee{}, err
	}
	decoded.CreatedAt = emp.CreatedAt.UTC()
	decoded.UpdatedAt = emp.UpdatedAt.UTC()
	return decoded, nil
}
