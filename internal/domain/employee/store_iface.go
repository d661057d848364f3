package employee

import "context"

// Repository persists employees keyed by EmployeeID. Find and Delete return
// ErrNotFound for unknown ids; Upsert creates or replaces.
type Repository interface {
	Find(ctx context.Context, employeeID string) (Employee, error)
	Upsert(ctx context.Context, emp Employee) error
	Delete(ctx context.Context, employeeID string) error
	List(ctx context.Context) ([]Employee, error)
	Ping(ctx context.Context) error
}
