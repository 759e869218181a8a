package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const uniqueViolationCode = "23505"

type periodRepository struct {
	db *database.DB
}

func NewPeriodRepository(db *database.DB) payroll.PeriodRepository {
	return &periodRepository{db: db}
}

// Create implements payroll.PeriodRepository.
func (r *periodRepository) Create(ctx context.Context, period payroll.PayrollPeriod) (payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO payroll_periods (
			id, label, start_date, end_date, status, total_working_days
		) VALUES (
			$1, $2, $3, $4, $5, $6
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		period.ID, period.Label, period.StartDate, period.EndDate,
		period.Status, period.TotalWorkingDays,
	).Scan(&period.CreatedAt, &period.UpdatedAt)
	if err != nil {
		return payroll.PayrollPeriod{}, fmt.Errorf("failed to create payroll period: %w", err)
	}

	return period, nil
}

// GetByID implements payroll.PeriodRepository.
func (r *periodRepository) GetByID(ctx context.Context, id string) (payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, label, start_date, end_date, status, total_working_days, created_at, updated_at
		FROM payroll_periods
		WHERE id = $1
	`

	var period payroll.PayrollPeriod
	err := q.QueryRow(ctx, query, id).Scan(
		&period.ID, &period.Label, &period.StartDate, &period.EndDate,
		&period.Status, &period.TotalWorkingDays, &period.CreatedAt, &period.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayrollPeriod{}, payroll.ErrPeriodNotFound
		}
		return payroll.PayrollPeriod{}, fmt.Errorf("failed to get payroll period: %w", err)
	}

	return period, nil
}

// List implements payroll.PeriodRepository.
func (r *periodRepository) List(ctx context.Context) ([]payroll.PayrollPeriod, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, label, start_date, end_date, status, total_working_days, created_at, updated_at
		FROM payroll_periods
		ORDER BY start_date DESC
	`

	rows, err := q.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll periods: %w", err)
	}
	defer rows.Close()

	var periods []payroll.PayrollPeriod
	for rows.Next() {
		var period payroll.PayrollPeriod
		err := rows.Scan(
			&period.ID, &period.Label, &period.StartDate, &period.EndDate,
			&period.Status, &period.TotalWorkingDays, &period.CreatedAt, &period.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payroll period: %w", err)
		}
		periods = append(periods, period)
	}

	return periods, rows.Err()
}

// TransitionStatus implements payroll.PeriodRepository. The WHERE clause on
// the expected status makes the transition a compare-and-set: a concurrent
// writer that got there first leaves zero rows to update.
func (r *periodRepository) TransitionStatus(ctx context.Context, id string, from, to payroll.PeriodStatus) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE payroll_periods
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2
	`

	tag, err := q.Exec(ctx, query, id, from, to)
	if err != nil {
		return fmt.Errorf("failed to transition period status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return getErr
		}
		return payroll.ErrConcurrentProcessingConflict
	}

	return nil
}

type payslipRepository struct {
	db *database.DB
}

func NewPayslipRepository(db *database.DB) payroll.PayslipRepository {
	return &payslipRepository{db: db}
}

func scanPayslipRecord(row pgx.Row) (payroll.PayslipRecord, error) {
	var record payroll.PayslipRecord
	var summaryJSON, earningsJSON, deductionsJSON []byte

	err := row.Scan(
		&record.ID, &record.EmployeeID, &record.PayrollPeriodID, &record.PayableDays,
		&summaryJSON, &earningsJSON, &deductionsJSON,
		&record.EarningsTotal, &record.DeductionsTotal, &record.NetPay,
		&record.NegativeNet, &record.WaiverApplied, &record.WaiverReason,
		&record.Locked, &record.CreatedAt,
	)
	if err != nil {
		return payroll.PayslipRecord{}, err
	}

	if err := json.Unmarshal(summaryJSON, &record.Summary); err != nil {
		return payroll.PayslipRecord{}, fmt.Errorf("failed to decode attendance summary: %w", err)
	}
	if err := json.Unmarshal(earningsJSON, &record.Earnings); err != nil {
		return payroll.PayslipRecord{}, fmt.Errorf("failed to decode earnings: %w", err)
	}
	if err := json.Unmarshal(deductionsJSON, &record.Deductions); err != nil {
		return payroll.PayslipRecord{}, fmt.Errorf("failed to decode deductions: %w", err)
	}

	return record, nil
}

const payslipColumns = `
	id, employee_id, payroll_period_id, payable_days,
	summary, earnings, deductions,
	earnings_total, deductions_total, net_pay,
	negative_net, waiver_applied, waiver_reason, locked, created_at`

// Create implements payroll.PayslipRepository.
func (r *payslipRepository) Create(ctx context.Context, record payroll.PayslipRecord) (payroll.PayslipRecord, error) {
	q := GetQuerier(ctx, r.db)

	summaryJSON, err := json.Marshal(record.Summary)
	if err != nil {
		return payroll.PayslipRecord{}, fmt.Errorf("failed to encode attendance summary: %w", err)
	}
	earningsJSON, err := json.Marshal(record.Earnings)
	if err != nil {
		return payroll.PayslipRecord{}, fmt.Errorf("failed to encode earnings: %w", err)
	}
	deductionsJSON, err := json.Marshal(record.Deductions)
	if err != nil {
		return payroll.PayslipRecord{}, fmt.Errorf("failed to encode deductions: %w", err)
	}

	query := `
		INSERT INTO payslip_records (
			id, employee_id, payroll_period_id, payable_days,
			summary, earnings, deductions,
			earnings_total, deductions_total, net_pay,
			negative_net, waiver_applied, waiver_reason, locked
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, false
		) RETURNING created_at
	`

	err = q.QueryRow(ctx, query,
		record.ID, record.EmployeeID, record.PayrollPeriodID, record.PayableDays,
		summaryJSON, earningsJSON, deductionsJSON,
		record.EarningsTotal, record.DeductionsTotal, record.NetPay,
		record.NegativeNet, record.WaiverApplied, record.WaiverReason,
	).Scan(&record.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			existing, getErr := r.GetByEmployeeAndPeriod(ctx, record.EmployeeID, record.PayrollPeriodID)
			if getErr == nil && existing.Locked {
				return payroll.PayslipRecord{}, payroll.ErrRecordImmutable
			}
			return payroll.PayslipRecord{}, payroll.ErrPayslipAlreadyExists
		}
		return payroll.PayslipRecord{}, fmt.Errorf("failed to create payslip record: %w", err)
	}

	return record, nil
}

// GetByEmployeeAndPeriod implements payroll.PayslipRepository.
func (r *payslipRepository) GetByEmployeeAndPeriod(ctx context.Context, employeeID, periodID string) (payroll.PayslipRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payslipColumns + `
		FROM payslip_records
		WHERE employee_id = $1 AND payroll_period_id = $2`

	record, err := scanPayslipRecord(q.QueryRow(ctx, query, employeeID, periodID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return payroll.PayslipRecord{}, payroll.ErrPayslipNotFound
		}
		return payroll.PayslipRecord{}, fmt.Errorf("failed to get payslip record: %w", err)
	}

	return record, nil
}

// ListByPeriod implements payroll.PayslipRepository.
func (r *payslipRepository) ListByPeriod(ctx context.Context, periodID string) ([]payroll.PayslipRecord, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + payslipColumns + `
		FROM payslip_records
		WHERE payroll_period_id = $1
		ORDER BY employee_id`

	rows, err := q.Query(ctx, query, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslip records: %w", err)
	}
	defer rows.Close()

	var records []payroll.PayslipRecord
	for rows.Next() {
		record, err := scanPayslipRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan payslip record: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// DeleteByPeriod implements payroll.PayslipRepository.
func (r *payslipRepository) DeleteByPeriod(ctx context.Context, periodID string) error {
	q := GetQuerier(ctx, r.db)

	query := `DELETE FROM payslip_records WHERE payroll_period_id = $1 AND locked = false`

	if _, err := q.Exec(ctx, query, periodID); err != nil {
		return fmt.Errorf("failed to delete payslip records: %w", err)
	}
	return nil
}

// LockByPeriod implements payroll.PayslipRepository.
func (r *payslipRepository) LockByPeriod(ctx context.Context, periodID string) error {
	q := GetQuerier(ctx, r.db)

	query := `UPDATE payslip_records SET locked = true WHERE payroll_period_id = $1`

	if _, err := q.Exec(ctx, query, periodID); err != nil {
		return fmt.Errorf("failed to lock payslip records: %w", err)
	}
	return nil
}

// GetWaiver implements payroll.PayslipRepository.
func (r *payslipRepository) GetWaiver(ctx context.Context, employeeID, periodID string) (*payroll.Waiver, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT employee_id, payroll_period_id, reason, granted_by, granted_at
		FROM attendance_waivers
		WHERE employee_id = $1 AND payroll_period_id = $2
	`

	var waiver payroll.Waiver
	err := q.QueryRow(ctx, query, employeeID, periodID).Scan(
		&waiver.EmployeeID, &waiver.PayrollPeriodID, &waiver.Reason,
		&waiver.GrantedBy, &waiver.GrantedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get waiver: %w", err)
	}

	return &waiver, nil
}

// UpsertWaiver implements payroll.PayslipRepository.
func (r *payslipRepository) UpsertWaiver(ctx context.Context, waiver payroll.Waiver) error {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO attendance_waivers (employee_id, payroll_period_id, reason, granted_by, granted_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (employee_id, payroll_period_id)
		DO UPDATE SET reason = EXCLUDED.reason, granted_by = EXCLUDED.granted_by, granted_at = EXCLUDED.granted_at
	`

	_, err := q.Exec(ctx, query,
		waiver.EmployeeID, waiver.PayrollPeriodID, waiver.Reason, waiver.GrantedBy, waiver.GrantedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert waiver: %w", err)
	}

	return nil
}
