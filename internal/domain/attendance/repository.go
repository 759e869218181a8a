package attendance

import (
	"context"
	"time"
)

// AttendanceRepository defines data access for attendance days.
type AttendanceRepository interface {
	// Create persists a new day opened by punch-in.
	Create(ctx context.Context, day AttendanceDay) (AttendanceDay, error)

	// Update rewrites an existing day (breaks, punch-out, regularization).
	Update(ctx context.Context, day AttendanceDay) error

	// GetByID retrieves one day. Returns ErrAttendanceNotFound when absent.
	GetByID(ctx context.Context, id string) (AttendanceDay, error)

	// GetOpenDay returns the employee's currently open day, or
	// ErrNotPunchedIn when none exists.
	GetOpenDay(ctx context.Context, employeeID string) (AttendanceDay, error)

	// GetByEmployeeAndDate retrieves the day record for a calendar date.
	GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (AttendanceDay, error)

	// QueryRange returns all days for an employee within [start, end],
	// ordered by date. This is the payroll snapshot read.
	QueryRange(ctx context.Context, employeeID string, start, end time.Time) ([]AttendanceDay, error)

	// List retrieves days with filters and pagination.
	List(ctx context.Context, filter AttendanceFilter) ([]AttendanceDay, int64, error)
}
