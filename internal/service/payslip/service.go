package payslip

import (
	"context"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payslip"
)

// PayslipService fetches a finished record's inputs and renders the document.
type PayslipService interface {
	RenderPayslip(ctx context.Context, employeeID, periodID string) (payslip.Document, error)
}

type PayslipServiceImpl struct {
	payslipRepo  payroll.PayslipRepository
	periodRepo   payroll.PeriodRepository
	employeeRepo employee.EmployeeRepository
	company      payslip.CompanyInfo
}

func NewPayslipService(
	payslipRepo payroll.PayslipRepository,
	periodRepo payroll.PeriodRepository,
	employeeRepo employee.EmployeeRepository,
	company payslip.CompanyInfo,
) PayslipService {
	return &PayslipServiceImpl{
		payslipRepo:  payslipRepo,
		periodRepo:   periodRepo,
		employeeRepo: employeeRepo,
		company:      company,
	}
}

// RenderPayslip implements PayslipService.
func (s *PayslipServiceImpl) RenderPayslip(ctx context.Context, employeeID, periodID string) (payslip.Document, error) {
	record, err := s.payslipRepo.GetByEmployeeAndPeriod(ctx, employeeID, periodID)
	if err != nil {
		return payslip.Document{}, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return payslip.Document{}, err
	}

	period, err := s.periodRepo.GetByID(ctx, periodID)
	if err != nil {
		return payslip.Document{}, err
	}

	return Render(record, emp, period, s.company)
}
