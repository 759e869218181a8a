package employee

import "context"

// EmployeeRepository is the read-only contract against HR master data.
type EmployeeRepository interface {
	// GetByID retrieves one employee. Returns ErrEmployeeNotFound when absent.
	GetByID(ctx context.Context, id string) (Employee, error)

	// ListActive retrieves all employees in payroll scope.
	ListActive(ctx context.Context) ([]Employee, error)
}
