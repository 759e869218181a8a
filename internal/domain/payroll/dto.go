package payroll

import (
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

type CreatePeriodRequest struct {
	Label            string `json:"label"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	TotalWorkingDays int    `json:"total_working_days"`
}

func (r *CreatePeriodRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.Label) {
		errs = append(errs, validator.ValidationError{Field: "label", Message: "is required"})
	}
	start, okStart := validator.IsValidDate(r.StartDate)
	if !okStart {
		errs = append(errs, validator.ValidationError{Field: "start_date", Message: "must be a valid YYYY-MM-DD date"})
	}
	end, okEnd := validator.IsValidDate(r.EndDate)
	if !okEnd {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must be a valid YYYY-MM-DD date"})
	}
	if okStart && okEnd && end.Before(start) {
		errs = append(errs, validator.ValidationError{Field: "end_date", Message: "must not be before start_date"})
	}
	if r.TotalWorkingDays <= 0 {
		errs = append(errs, validator.ValidationError{Field: "total_working_days", Message: "must be positive"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type WaiverRequest struct {
	EmployeeID      string `json:"employee_id"`
	PayrollPeriodID string `json:"-"`
	Reason          string `json:"reason"`
	Actor           string `json:"-"`
}

func (r *WaiverRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.EmployeeID) {
		errs = append(errs, validator.ValidationError{Field: "employee_id", Message: "is required"})
	}
	if validator.IsEmpty(r.PayrollPeriodID) {
		errs = append(errs, validator.ValidationError{Field: "payroll_period_id", Message: "is required"})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{Field: "reason", Message: "is required"})
	}
	if validator.IsEmpty(r.Actor) {
		errs = append(errs, validator.ValidationError{Field: "actor", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type PeriodResponse struct {
	ID               string `json:"id"`
	Label            string `json:"label"`
	StartDate        string `json:"start_date"`
	EndDate          string `json:"end_date"`
	Status           string `json:"status"`
	TotalWorkingDays int    `json:"total_working_days"`
}

type AttendanceSummaryResponse struct {
	WorkingDays   int     `json:"working_days"`
	PresentDays   int     `json:"present_days"`
	AbsentDays    int     `json:"absent_days"`
	HalfDays      int     `json:"half_days"`
	LeaveDays     int     `json:"leave_days"`
	LateComings   int     `json:"late_comings"`
	OvertimeHours float64 `json:"overtime_hours"`
}

type EarningsResponse struct {
	BasicSalary         decimal.Decimal `json:"basic_salary"`
	HRA                 decimal.Decimal `json:"hra"`
	ConveyanceAllowance decimal.Decimal `json:"conveyance_allowance"`
	MedicalAllowance    decimal.Decimal `json:"medical_allowance"`
	SpecialAllowance    decimal.Decimal `json:"special_allowance"`
	Bonus               decimal.Decimal `json:"bonus"`
	OvertimePay         decimal.Decimal `json:"overtime_pay"`
	Arrears             decimal.Decimal `json:"arrears"`
	OtherEarnings       decimal.Decimal `json:"other_earnings"`
	Total               decimal.Decimal `json:"total"`
}

type DeductionsResponse struct {
	PF                  decimal.Decimal `json:"pf"`
	ESI                 decimal.Decimal `json:"esi"`
	ProfessionalTax     decimal.Decimal `json:"professional_tax"`
	TDS                 decimal.Decimal `json:"tds"`
	LoanDeduction       decimal.Decimal `json:"loan_deduction"`
	LeaveDeduction      decimal.Decimal `json:"leave_deduction"`
	AttendanceDeduction decimal.Decimal `json:"attendance_deduction"`
	OtherDeductions     decimal.Decimal `json:"other_deductions"`
	Total               decimal.Decimal `json:"total"`
}

type PayslipResponse struct {
	ID              string                    `json:"id"`
	EmployeeID      string                    `json:"employee_id"`
	PayrollPeriodID string                    `json:"payroll_period_id"`
	PayableDays     decimal.Decimal           `json:"payable_days"`
	Summary         AttendanceSummaryResponse `json:"attendance_summary"`
	Earnings        EarningsResponse          `json:"earnings"`
	Deductions      DeductionsResponse        `json:"deductions"`
	NetPay          decimal.Decimal           `json:"net_pay"`
	NegativeNet     bool                      `json:"negative_net"`
	WaiverApplied   bool                      `json:"waiver_applied"`
	WaiverReason    *string                   `json:"waiver_reason,omitempty"`
	Locked          bool                      `json:"locked"`
}

type EmployeeOutcomeResponse struct {
	EmployeeID string  `json:"employee_id"`
	PayslipID  string  `json:"payslip_id,omitempty"`
	Error      *string `json:"error,omitempty"`
}

type RunResultResponse struct {
	PeriodID  string                    `json:"period_id"`
	Status    string                    `json:"status"`
	Succeeded int                       `json:"succeeded"`
	Failed    int                       `json:"failed"`
	Outcomes  []EmployeeOutcomeResponse `json:"outcomes"`
}
