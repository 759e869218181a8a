package attendance

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
)

type PunchInRequest struct {
	EmployeeID string    `json:"-"`
	Timestamp  time.Time `json:"timestamp"`
}

func (r *PunchInRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if r.Timestamp.IsZero() {
		errs = append(errs, validator.ValidationError{Field: "timestamp", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PunchOutRequest struct {
	EmployeeID string    `json:"-"`
	Timestamp  time.Time `json:"timestamp"`
}

func (r *PunchOutRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if r.Timestamp.IsZero() {
		errs = append(errs, validator.ValidationError{Field: "timestamp", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type BreakRequest struct {
	EmployeeID string    `json:"-"`
	Kind       BreakKind `json:"kind"`
	Timestamp  time.Time `json:"timestamp"`
}

func (r *BreakRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if !r.Kind.IsValid() {
		errs = append(errs, validator.ValidationError{Field: "kind", Message: "must be 'break1', 'break2' or 'lunch'"})
	}
	if r.Timestamp.IsZero() {
		errs = append(errs, validator.ValidationError{Field: "timestamp", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type RegularizeRequest struct {
	EmployeeID string           `json:"-"`
	Date       string           `json:"date"`
	NewStatus  AttendanceStatus `json:"new_status"`
	NewHours   *float64         `json:"new_hours,omitempty"`
	Reason     string           `json:"reason"`
	Actor      string           `json:"-"`
}

func (r *RegularizeRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "must be a valid YYYY-MM-DD date"})
	}
	if !r.NewStatus.IsValid() {
		errs = append(errs, validator.ValidationError{Field: "new_status", Message: "is not a known attendance status"})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "is required"})
	}
	if validator.IsEmpty(r.Actor) {
		errs = append(errs, validator.ValidationError{Field: "actor", Message: "is required"})
	}
	if r.NewHours != nil && *r.NewHours < 0 {
		errs = append(errs, validator.ValidationError{Field: "new_hours", Message: "must be non-negative"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type BreakSessionResponse struct {
	Kind  string  `json:"kind"`
	Start string  `json:"start"`
	End   *string `json:"end,omitempty"`
}

type AttendanceDayResponse struct {
	ID          string                 `json:"id"`
	EmployeeID  string                 `json:"employee_id"`
	Date        string                 `json:"date"`
	Status      string                 `json:"status"`
	PunchIn     *string                `json:"punch_in,omitempty"`
	PunchOut    *string                `json:"punch_out,omitempty"`
	TotalHours  float64                `json:"total_hours"`
	Breaks      []BreakSessionResponse `json:"breaks,omitempty"`
	Regularized bool                   `json:"regularized"`
}

type AttendanceFilter struct {
	EmployeeID *string
	StartDate  *time.Time
	EndDate    *time.Time
	Status     *AttendanceStatus
	Page       int
	Limit      int
}

type ListAttendanceResponse struct {
	TotalCount int64                   `json:"total_count"`
	Page       int                     `json:"page"`
	Limit      int                     `json:"limit"`
	Days       []AttendanceDayResponse `json:"days"`
}
