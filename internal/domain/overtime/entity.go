package overtime

import (
	"time"
)

// OvertimeStatus is the closed set of request states. Transitions are one-way:
// pending moves to exactly one of auto_approved, approved or rejected.
type OvertimeStatus string

const (
	StatusPending      OvertimeStatus = "pending"
	StatusAutoApproved OvertimeStatus = "auto_approved"
	StatusApproved     OvertimeStatus = "approved"
	StatusRejected     OvertimeStatus = "rejected"
)

// IsValid reports whether s is one of the known statuses.
func (s OvertimeStatus) IsValid() bool {
	switch s {
	case StatusPending, StatusAutoApproved, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Resolved reports whether the request has left the pending state.
func (s OvertimeStatus) Resolved() bool {
	return s != StatusPending
}

// Payable reports whether the request's hours count toward overtime pay.
func (s OvertimeStatus) Payable() bool {
	return s == StatusAutoApproved || s == StatusApproved
}

// Request hour bounds, part of the workflow contract.
const (
	MinRequestHours = 0.5
	MaxRequestHours = 4.0
)

// OvertimeRequest is one submitted block of extra work.
type OvertimeRequest struct {
	ID            string
	EmployeeID    string
	Date          time.Time
	Hours         float64
	Justification string
	Status        OvertimeStatus
	SubmittedAt   time.Time

	// Set only on manual transitions.
	ReviewedBy *string
	ReviewedAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
