package overtime

import (
	"context"
	"time"
)

// OvertimeRepository defines data access for overtime requests.
type OvertimeRepository interface {
	// Create persists a new request.
	Create(ctx context.Context, req OvertimeRequest) (OvertimeRequest, error)

	// GetByID retrieves one request. Returns ErrRequestNotFound when absent.
	GetByID(ctx context.Context, id string) (OvertimeRequest, error)

	// Update rewrites an existing request (review transitions).
	Update(ctx context.Context, req OvertimeRequest) error

	// ListPayableInRange returns auto_approved and approved requests for an
	// employee within [start, end]. This is the payroll snapshot read.
	ListPayableInRange(ctx context.Context, employeeID string, start, end time.Time) ([]OvertimeRequest, error)

	// List retrieves requests with filters and pagination.
	List(ctx context.Context, filter OvertimeFilter) ([]OvertimeRequest, int64, error)
}
