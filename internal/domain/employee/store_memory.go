package employee

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/samber/lo"
)

type MemoryStore struct {
	mu   sync.RWMutex
	byID map[string]Employee
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[string]Employee)}
}

func (s *MemoryStore) Find(_ context.Context, employeeID string) (Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	emp, ok := s.byID[employeeID]
	if !ok {
		return Employee{}, ErrNotFound
	}
	return clone(emp), nil
}

func (s *MemoryStore) Upsert(_ context.Context, emp Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[emp.EmployeeID] = clone(emp)
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, employeeID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byID[employeeID]; !ok {
		return ErrNotFound
	}
	delete(s.byID, employeeID)
	return nil
}

func (s *MemoryStore) List(_ context.Context) ([]Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := lo.MapToSlice(s.byID, func(_ string, emp Employee) Employee { return clone(emp) })
	sort.Slice(out, func(i, j int) bool { return out[i].EmployeeID < out[j].EmployeeID })
	return out, nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// clone copies the slices so callers cannot mutate stored records.
func clone(emp Employee) Employee {
	emp.Allowances = slices.Clone(emp.Allowances)
	b := &emp.Breakdown
	b.SSNITEmployeeRates = slices.Clone(b.SSNITEmployeeRates)
	b.SSNITEmployee = slices.Clone(b.SSNITEmployee)
	b.SSNITEmployer = slices.Clone(b.SSNITEmployer)
	return emp
}
