package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type employeeRepository struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepository{db: db}
}

const employeeColumns = `
	id, employee_code, full_name, base_salary, working_days_divisor,
	hra, conveyance_allowance, medical_allowance, special_allowance,
	bonus, arrears, other_earnings,
	pf, esi, professional_tax, tds, loan_deduction, other_deductions,
	bank_name, bank_account_number, employment_status, hire_date,
	created_at, updated_at`

func scanEmployee(row pgx.Row) (employee.Employee, error) {
	var emp employee.Employee
	err := row.Scan(
		&emp.ID, &emp.EmployeeCode, &emp.FullName, &emp.BaseSalary, &emp.WorkingDaysDivisor,
		&emp.Compensation.HRA, &emp.Compensation.ConveyanceAllowance,
		&emp.Compensation.MedicalAllowance, &emp.Compensation.SpecialAllowance,
		&emp.Compensation.Bonus, &emp.Compensation.Arrears, &emp.Compensation.OtherEarnings,
		&emp.Compensation.PF, &emp.Compensation.ESI, &emp.Compensation.ProfessionalTax,
		&emp.Compensation.TDS, &emp.Compensation.LoanDeduction, &emp.Compensation.OtherDeductions,
		&emp.BankName, &emp.BankAccountNumber, &emp.EmploymentStatus, &emp.HireDate,
		&emp.CreatedAt, &emp.UpdatedAt,
	)
	return emp, err
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + ` FROM employees WHERE id = $1`

	emp, err := scanEmployee(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee: %w", err)
	}

	return emp, nil
}

// ListActive implements employee.EmployeeRepository.
func (r *employeeRepository) ListActive(ctx context.Context) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + employeeColumns + `
		FROM employees
		WHERE employment_status = 'active'
		ORDER BY employee_code`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list active employees: %w", err)
	}
	defer rows.Close()

	var employees []employee.Employee
	for rows.Next() {
		emp, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, emp)
	}

	return employees, rows.Err()
}
