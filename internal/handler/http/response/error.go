package response

import (
	"errors"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/overtime"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payslip"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Attendance ledger errors
	case errors.Is(err, attendance.ErrAlreadyPunchedIn):
		Conflict(w, "An attendance day is already open")
	case errors.Is(err, attendance.ErrNotPunchedIn):
		Conflict(w, "No open attendance day")
	case errors.Is(err, attendance.ErrInvalidBreakTransition):
		BadRequest(w, "Break transition not valid in the current state", nil)
	case errors.Is(err, attendance.ErrMinimumHoursNotMet):
		BadRequest(w, "Worked hours are below the daily minimum", nil)
	case errors.Is(err, attendance.ErrDayStillOpen):
		Conflict(w, "Attendance day is still open")
	case errors.Is(err, attendance.ErrAttendanceNotFound):
		NotFound(w, "Attendance day not found")

	// Overtime workflow errors
	case errors.Is(err, overtime.ErrOutOfRangeHours):
		BadRequest(w, "Requested hours must be between 0.5 and 4.0", nil)
	case errors.Is(err, overtime.ErrEmptyJustification):
		BadRequest(w, "Justification is required", nil)
	case errors.Is(err, overtime.ErrInvalidDecision):
		BadRequest(w, "Decision must be 'approved' or 'rejected'", nil)
	case errors.Is(err, overtime.ErrAlreadyReviewed):
		Conflict(w, "Overtime request has already been reviewed")
	case errors.Is(err, overtime.ErrRequestNotFound):
		NotFound(w, "Overtime request not found")

	// Payroll engine errors
	case errors.Is(err, payroll.ErrPeriodAlreadyProcessed):
		Conflict(w, "Payroll period has already been processed")
	case errors.Is(err, payroll.ErrConcurrentProcessingConflict):
		Conflict(w, "Another payroll run is in process for this period")
	case errors.Is(err, payroll.ErrPeriodNotPending):
		Conflict(w, "Payroll period is not pending payment")
	case errors.Is(err, payroll.ErrPayslipAlreadyExists):
		Conflict(w, "Payslip already exists for this employee and period")
	case errors.Is(err, payroll.ErrRecordImmutable):
		Conflict(w, "Payslip record is locked")
	case errors.Is(err, payroll.ErrPeriodNotFound):
		NotFound(w, "Payroll period not found")
	case errors.Is(err, payroll.ErrPayslipNotFound):
		NotFound(w, "Payslip record not found")

	// Data errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, payslip.ErrIncompleteRecord):
		Conflict(w, "Payslip record is missing required fields")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
