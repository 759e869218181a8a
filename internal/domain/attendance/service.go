package attendance

import (
	"context"
)

// AttendanceService is the attendance ledger: the per-employee, per-day punch
// and break state machine. Transitions for one (employee, date) pair are
// serialized inside the implementation.
type AttendanceService interface {
	// PunchIn opens a new day. Fails with ErrAlreadyPunchedIn when a day is
	// already open for the employee.
	PunchIn(ctx context.Context, req PunchInRequest) (AttendanceDayResponse, error)

	// StartBreak opens a break on the current day.
	StartBreak(ctx context.Context, req BreakRequest) (AttendanceDayResponse, error)

	// EndBreak closes the open break of the given kind.
	EndBreak(ctx context.Context, req BreakRequest) (AttendanceDayResponse, error)

	// PunchOut closes the day, computing worked hours net of breaks. The
	// minimum-hours policy is enforced here, not in any caller.
	PunchOut(ctx context.Context, req PunchOutRequest) (AttendanceDayResponse, error)

	// Regularize applies an HR override to a closed day and appends an audit
	// entry. It never reopens the state machine.
	Regularize(ctx context.Context, req RegularizeRequest) (AttendanceDayResponse, error)

	// GetDay retrieves the day record for an employee and calendar date.
	GetDay(ctx context.Context, employeeID string, date string) (AttendanceDayResponse, error)

	// List retrieves attendance days with filters (HR view).
	List(ctx context.Context, filter AttendanceFilter) (ListAttendanceResponse, error)
}
