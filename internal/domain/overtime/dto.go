package overtime

import (
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
)

type SubmitRequest struct {
	EmployeeID    string  `json:"-"`
	Date          string  `json:"date"`
	Hours         float64 `json:"hours"`
	Justification string  `json:"justification"`
}

func (r *SubmitRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if _, ok := validator.IsValidDate(r.Date); !ok {
		errs = append(errs, validator.ValidationError{Field: "date", Message: "must be a valid YYYY-MM-DD date"})
	}
	if r.Hours < MinRequestHours || r.Hours > MaxRequestHours {
		return ErrOutOfRangeHours
	}
	if validator.IsEmpty(r.Justification) {
		return ErrEmptyJustification
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type ReviewDecision string

const (
	DecisionApprove ReviewDecision = "approved"
	DecisionReject  ReviewDecision = "rejected"
)

type ReviewRequest struct {
	RequestID string         `json:"-"`
	Decision  ReviewDecision `json:"decision"`
	Reviewer  string         `json:"-"`
}

func (r *ReviewRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.RequestID) {
		errs = append(errs, validator.ValidationError{Field: "request_id", Message: "is required"})
	}
	if validator.IsEmpty(r.Reviewer) {
		errs = append(errs, validator.ValidationError{Field: "reviewer", Message: "is required"})
	}
	if r.Decision != DecisionApprove && r.Decision != DecisionReject {
		return ErrInvalidDecision
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type OvertimeResponse struct {
	ID            string  `json:"id"`
	EmployeeID    string  `json:"employee_id"`
	Date          string  `json:"date"`
	Hours         float64 `json:"hours"`
	Justification string  `json:"justification"`
	Status        string  `json:"status"`
	SubmittedAt   string  `json:"submitted_at"`
	ReviewedBy    *string `json:"reviewed_by,omitempty"`
	ReviewedAt    *string `json:"reviewed_at,omitempty"`
}

type OvertimeFilter struct {
	EmployeeID *string
	Status     *OvertimeStatus
	StartDate  *time.Time
	EndDate    *time.Time
	Page       int
	Limit      int
}

type ListOvertimeResponse struct {
	TotalCount int64              `json:"total_count"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	Requests   []OvertimeResponse `json:"requests"`
}
