package payroll

import "errors"

var (
	ErrPeriodNotFound               = errors.New("payroll period not found")
	ErrPeriodAlreadyProcessed       = errors.New("payroll period has already been processed")
	ErrConcurrentProcessingConflict = errors.New("another payroll run is in process for this period")
	ErrPeriodNotPending             = errors.New("payroll period is not pending payment")
	ErrPayslipNotFound              = errors.New("payslip record not found")
	ErrPayslipAlreadyExists         = errors.New("payslip record already exists for this employee and period")
	ErrRecordImmutable              = errors.New("payslip record is locked and cannot be modified")
	ErrNegativeNetPay               = errors.New("computed net pay is negative")
)
