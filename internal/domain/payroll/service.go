package payroll

import (
	"context"
)

// PayrollService is the reconciliation engine: it turns a period's attendance
// and overtime facts into payslip records and drives the period state machine.
type PayrollService interface {
	// CreatePeriod registers a new draft period.
	CreatePeriod(ctx context.Context, req CreatePeriodRequest) (PeriodResponse, error)

	// GetPeriod retrieves one period.
	GetPeriod(ctx context.Context, id string) (PeriodResponse, error)

	// ListPeriods retrieves all periods.
	ListPeriods(ctx context.Context) ([]PeriodResponse, error)

	// ComputePayslip reconciles one employee for one period. Inputs are
	// snapshot at call time; exactly one record per (employee, period).
	ComputePayslip(ctx context.Context, employeeID, periodID string) (PayslipResponse, error)

	// ProcessPayroll runs ComputePayslip for every employee in scope,
	// moving the period draft -> in_process -> pending. Per-employee
	// failures are reported in the result, not propagated. A run-level
	// failure reverts the period to draft.
	ProcessPayroll(ctx context.Context, periodID string) (RunResultResponse, error)

	// MarkPaid finalizes a pending period and locks its records.
	MarkPaid(ctx context.Context, periodID string) (PeriodResponse, error)

	// GrantWaiver stores an HR attendance-deduction waiver for an employee
	// in a period. It applies to the next computation, never retroactively.
	GrantWaiver(ctx context.Context, req WaiverRequest) error

	// GetPayslip retrieves one record.
	GetPayslip(ctx context.Context, employeeID, periodID string) (PayslipResponse, error)

	// ListPayslips retrieves all records of a period.
	ListPayslips(ctx context.Context, periodID string) ([]PayslipResponse, error)
}
