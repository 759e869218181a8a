package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

// Employee is HR master data. The engine reads it immutably per computation;
// ownership (CRUD, org structure) lives in the HR service.
type Employee struct {
	ID           string
	EmployeeCode string
	FullName     string

	// BaseSalary is the monthly salary in currency minor units.
	BaseSalary decimal.Decimal

	// WorkingDaysDivisor overrides the policy default when non-nil.
	WorkingDaysDivisor *int64

	Compensation Compensation

	// Bank details are opaque to the engine; they only appear on payslips.
	BankName          string
	BankAccountNumber string

	EmploymentStatus EmploymentStatus
	HireDate         time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Compensation is the fixed monthly component structure attached to an
// employee. All amounts are currency minor units.
type Compensation struct {
	HRA                 decimal.Decimal
	ConveyanceAllowance decimal.Decimal
	MedicalAllowance    decimal.Decimal
	SpecialAllowance    decimal.Decimal
	Bonus               decimal.Decimal
	Arrears             decimal.Decimal
	OtherEarnings       decimal.Decimal

	PF              decimal.Decimal
	ESI             decimal.Decimal
	ProfessionalTax decimal.Decimal
	TDS             decimal.Decimal
	LoanDeduction   decimal.Decimal
	OtherDeductions decimal.Decimal
}

type EmploymentStatus string

const (
	EmploymentStatusActive     EmploymentStatus = "active"
	EmploymentStatusResigned   EmploymentStatus = "resigned"
	EmploymentStatusTerminated EmploymentStatus = "terminated"
)

// DivisorOrDefault returns the employee's divisor override, or fallback when
// none is set.
func (e Employee) DivisorOrDefault(fallback int64) int64 {
	if e.WorkingDaysDivisor != nil && *e.WorkingDaysDivisor > 0 {
		return *e.WorkingDaysDivisor
	}
	return fallback
}
