package payroll

import "context"

// PeriodRepository defines data access for payroll periods.
type PeriodRepository interface {
	// Create persists a new period in draft.
	Create(ctx context.Context, period PayrollPeriod) (PayrollPeriod, error)

	// GetByID retrieves one period. Returns ErrPeriodNotFound when absent.
	GetByID(ctx context.Context, id string) (PayrollPeriod, error)

	// List retrieves all periods, newest first.
	List(ctx context.Context) ([]PayrollPeriod, error)

	// TransitionStatus moves a period from one status to the next with a
	// compare-and-set. Returns ErrConcurrentProcessingConflict when the
	// period was not in the expected status.
	TransitionStatus(ctx context.Context, id string, from, to PeriodStatus) error
}

// PayslipRepository defines data access for payslip records and waivers.
type PayslipRepository interface {
	// Create persists a new record. Returns ErrPayslipAlreadyExists when a
	// record for the (employee, period) pair exists, and ErrRecordImmutable
	// when the existing record is locked.
	Create(ctx context.Context, record PayslipRecord) (PayslipRecord, error)

	// GetByEmployeeAndPeriod retrieves one record. Returns ErrPayslipNotFound
	// when absent.
	GetByEmployeeAndPeriod(ctx context.Context, employeeID, periodID string) (PayslipRecord, error)

	// ListByPeriod retrieves all records of a period.
	ListByPeriod(ctx context.Context, periodID string) ([]PayslipRecord, error)

	// DeleteByPeriod removes unlocked records of a period (re-run of a
	// reverted draft). Locked records are never touched.
	DeleteByPeriod(ctx context.Context, periodID string) error

	// LockByPeriod marks every record of a period immutable.
	LockByPeriod(ctx context.Context, periodID string) error

	// GetWaiver returns the HR waiver for an (employee, period), or nil.
	GetWaiver(ctx context.Context, employeeID, periodID string) (*Waiver, error)

	// UpsertWaiver stores an HR waiver.
	UpsertWaiver(ctx context.Context, waiver Waiver) error
}
