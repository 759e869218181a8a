package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// PeriodStatus is the monotonic period state machine:
// draft -> in_process -> pending -> paid. The engine enforces the order;
// callers cannot skip or rewind states.
type PeriodStatus string

const (
	PeriodStatusDraft     PeriodStatus = "draft"
	PeriodStatusInProcess PeriodStatus = "in_process"
	PeriodStatusPending   PeriodStatus = "pending"
	PeriodStatusPaid      PeriodStatus = "paid"
)

// PayrollPeriod is a bounded date range reconciled into one payslip per
// employee.
type PayrollPeriod struct {
	ID               string
	Label            string
	StartDate        time.Time
	EndDate          time.Time
	Status           PeriodStatus
	TotalWorkingDays int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// AttendanceSummary aggregates a period's attendance facts for one employee.
type AttendanceSummary struct {
	WorkingDays   int
	PresentDays   int
	AbsentDays    int
	HalfDays      int
	LeaveDays     int
	LateComings   int
	OvertimeHours float64
}

// EarningsBreakdown holds the earnings side of a payslip, minor units.
type EarningsBreakdown struct {
	BasicSalary         decimal.Decimal
	HRA                 decimal.Decimal
	ConveyanceAllowance decimal.Decimal
	MedicalAllowance    decimal.Decimal
	SpecialAllowance    decimal.Decimal
	Bonus               decimal.Decimal
	OvertimePay         decimal.Decimal
	Arrears             decimal.Decimal
	OtherEarnings       decimal.Decimal
}

// Total sums every earnings field.
func (e EarningsBreakdown) Total() decimal.Decimal {
	return e.BasicSalary.
		Add(e.HRA).
		Add(e.ConveyanceAllowance).
		Add(e.MedicalAllowance).
		Add(e.SpecialAllowance).
		Add(e.Bonus).
		Add(e.OvertimePay).
		Add(e.Arrears).
		Add(e.OtherEarnings)
}

// DeductionsBreakdown holds the deductions side of a payslip, minor units.
type DeductionsBreakdown struct {
	PF                  decimal.Decimal
	ESI                 decimal.Decimal
	ProfessionalTax     decimal.Decimal
	TDS                 decimal.Decimal
	LoanDeduction       decimal.Decimal
	LeaveDeduction      decimal.Decimal
	AttendanceDeduction decimal.Decimal
	OtherDeductions     decimal.Decimal
}

// Total sums every deduction field.
func (d DeductionsBreakdown) Total() decimal.Decimal {
	return d.PF.
		Add(d.ESI).
		Add(d.ProfessionalTax).
		Add(d.TDS).
		Add(d.LoanDeduction).
		Add(d.LeaveDeduction).
		Add(d.AttendanceDeduction).
		Add(d.OtherDeductions)
}

// Waiver is an HR decision to zero an employee's attendance deduction for a
// period. The reason is retained on the payslip, never dropped.
type Waiver struct {
	EmployeeID      string
	PayrollPeriodID string
	Reason          string
	GrantedBy       string
	GrantedAt       time.Time
}

// PayslipRecord is the reconciled result for one (employee, period). Created
// exactly once per pair; immutable after the period reaches paid.
type PayslipRecord struct {
	ID              string
	EmployeeID      string
	PayrollPeriodID string

	PayableDays decimal.Decimal
	Summary     AttendanceSummary
	Earnings    EarningsBreakdown
	Deductions  DeductionsBreakdown

	EarningsTotal   decimal.Decimal
	DeductionsTotal decimal.Decimal
	NetPay          decimal.Decimal

	// NegativeNet flags a net pay below zero. The value is reported as
	// computed, never clamped.
	NegativeNet bool

	WaiverApplied bool
	WaiverReason  *string

	Locked    bool
	CreatedAt time.Time
}

// EmployeeOutcome is one employee's result inside a payroll run.
type EmployeeOutcome struct {
	EmployeeID string
	PayslipID  string
	Err        error
}

// RunResult reports a payroll run: per-employee outcomes, no global abort on
// a single employee failure.
type RunResult struct {
	PeriodID  string
	Outcomes  []EmployeeOutcome
	Succeeded int
	Failed    int
}
