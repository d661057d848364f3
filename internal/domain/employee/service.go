package employee

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/samber/lo"

	"ghpayroll/internal/domain/payroll"
	"ghpayroll/internal/platform/metrics"
	"ghpayroll/internal/platform/validate"
)

type Service struct {
	store   Repository
	rates   payroll.RateResolver
	metrics *metrics.Collector
	workers int
	now     func() time.Time
}

type Option func(*Service)

func WithMetrics(m *metrics.Collector) Option {
	return func(s *Service) { s.metrics = m }
}

// WithWorkers bounds the concurrency of Recompute.
func WithWorkers(n int) Option {
	return func(s *Service) { s.workers = n }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(store Repository, rates payroll.RateResolver, opts ...Option) *Service {
	s := &Service{store: store, rates: rates, workers: 4, now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Store() Repository {
	return s.store
}

// Save validates the input, computes its breakdown and creates or replaces
// the employee with that id. CreatedAt survives a replace.
func (s *Service) Save(ctx context.Context, in Input) (Employee, error) {
	in = normalize(in)
	if err := validate.Struct(in); err != nil {
		return Employee{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	cfg, err := s.rates.Lookup(in.RateTable)
	if err != nil {
		return Employee{}, err
	}
	breakdown, err := payroll.Compute(in.BasicSalary, in.Allowances, cfg)
	s.metrics.RecordComputation(err)
	if err != nil {
		return Employee{}, err
	}

	now := s.now().UTC()
	emp := Employee{
		EmployeeID:  in.EmployeeID,
		Name:        in.Name,
		Position:    in.Position,
		NationalID:  in.NationalID,
		TIN:         in.TIN,
		BankName:    in.BankName,
		BankAccount: in.BankAccount,
		BasicSalary: in.BasicSalary,
		Allowances:  in.Allowances,
		RateTable:   cfg.Name,
		Breakdown:   breakdown,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	existing, err := s.store.Find(ctx, in.EmployeeID)
	switch {
	case err == nil:
		emp.CreatedAt = existing.CreatedAt
	case !errors.Is(err, ErrNotFound):
		return Employee{}, err
	}
	if err := s.store.Upsert(ctx, emp); err != nil {
		return Employee{}, err
	}
	return emp, nil
}

func (s *Service) Get(ctx context.Context, employeeID string) (Employee, error) {
	return s.store.Find(ctx, strings.TrimSpace(employeeID))
}

func (s *Service) Delete(ctx context.Context, employeeID string) error {
	return s.store.Delete(ctx, strings.TrimSpace(employeeID))
}

func (s *Service) List(ctx context.Context) ([]Employee, error) {
	return s.store.List(ctx)
}

func (s *Service) Summary(ctx context.Context) (Summary, error) {
	emps, err := s.store.List(ctx)
	if err != nil {
		return Summary{}, err
	}
	return Summarize(emps), nil
}

// Summarize totals the stored breakdowns.
func Summarize(emps []Employee) Summary {
	return Summary{
		Employees:         len(emps),
		TotalGross:        lo.SumBy(emps, func(e Employee) float64 { return e.Breakdown.GrossPay }),
		TotalDeductions:   lo.SumBy(emps, func(e Employee) float64 { return e.Breakdown.TotalDeductions }),
		TotalNet:          lo.SumBy(emps, func(e Employee) float64 { return e.Breakdown.NetPay }),
		TotalPAYE:         lo.SumBy(emps, func(e Employee) float64 { return e.Breakdown.PAYE }),
		TotalSSNIT:        lo.SumBy(emps, func(e Employee) float64 { return e.Breakdown.TotalSSNITEmployee }),
		TotalNHIS:         lo.SumBy(emps, func(e Employee) float64 { return e.Breakdown.NHISEmployee }),
		TotalEmployerCost: lo.SumBy(emps, func(e Employee) float64 { return e.Breakdown.TotalEmployerCost }),
	}
}

// Recompute re-derives every stored breakdown with the current rate tables.
// Employees whose table or inputs no longer compute are left untouched and
// listed in the result.
func (s *Service) Recompute(ctx context.Context) (RecomputeResult, error) {
	emps, err := s.store.List(ctx)
	if err != nil {
		return RecomputeResult{}, err
	}
	items := lo.Map(emps, func(e Employee, _ int) payroll.BatchItem {
		return payroll.BatchItem{Key: e.EmployeeID, BasicSalary: e.BasicSalary, Allowances: e.Allowances, RateTable: e.RateTable}
	})
	results, err := payroll.ComputeBatch(ctx, items, s.rates, s.workers)
	if err != nil {
		return RecomputeResult{}, err
	}

	var out RecomputeResult
	now := s.now().UTC()
	for i, res := range results {
		s.metrics.RecordComputation(res.Err)
		if res.Err != nil {
			slog.Warn("recompute skipped employee", "employeeId", res.Key, "err", res.Err)
			out.Failed = append(out.Failed, res.Key)
			continue
		}
		emp := emps[i]
		emp.Breakdown = res.Breakdown
		emp.RateTable = res.Breakdown.RateTable
		emp.UpdatedAt = now
		if err := s.store.Upsert(ctx, emp); err != nil {
			return out, err
		}
		out.Updated++
	}
	return out, nil
}

func normalize(in Input) Input {
	in.EmployeeID = strings.TrimSpace(in.EmployeeID)
	in.Name = strings.TrimSpace(in.Name)
	in.Position = strings.TrimSpace(in.Position)
	in.NationalID = strings.TrimSpace(in.NationalID)
	in.TIN = strings.TrimSpace(in.TIN)
	in.BankName = strings.TrimSpace(in.BankName)
	in.BankAccount = strings.TrimSpace(in.BankAccount)
	in.RateTable = strings.TrimSpace(in.RateTable)
	in.Allowances = lo.Map(in.Allowances, func(a payroll.Allowance, _ int) payroll.Allowance {
		a.Type = strings.TrimSpace(a.Type)
		return a
	})
	return in
}
