package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/overtime"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type overtimeRepository struct {
	db *database.DB
}

func NewOvertimeRepository(db *database.DB) overtime.OvertimeRepository {
	return &overtimeRepository{db: db}
}

const overtimeColumns = `
	id, employee_id, date, hours, justification, status,
	submitted_at, reviewed_by, reviewed_at, created_at, updated_at`

func scanOvertimeRequest(row pgx.Row) (overtime.OvertimeRequest, error) {
	var req overtime.OvertimeRequest
	err := row.Scan(
		&req.ID, &req.EmployeeID, &req.Date, &req.Hours, &req.Justification, &req.Status,
		&req.SubmittedAt, &req.ReviewedBy, &req.ReviewedAt, &req.CreatedAt, &req.UpdatedAt,
	)
	return req, err
}

// Create implements overtime.OvertimeRepository.
func (r *overtimeRepository) Create(ctx context.Context, req overtime.OvertimeRequest) (overtime.OvertimeRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO overtime_requests (
			id, employee_id, date, hours, justification, status, submitted_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		) RETURNING created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		req.ID, req.EmployeeID, req.Date, req.Hours, req.Justification, req.Status, req.SubmittedAt,
	).Scan(&req.CreatedAt, &req.UpdatedAt)
	if err != nil {
		return overtime.OvertimeRequest{}, fmt.Errorf("failed to create overtime request: %w", err)
	}

	return req, nil
}

// GetByID implements overtime.OvertimeRepository.
func (r *overtimeRepository) GetByID(ctx context.Context, id string) (overtime.OvertimeRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + overtimeColumns + ` FROM overtime_requests WHERE id = $1`

	req, err := scanOvertimeRequest(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return overtime.OvertimeRequest{}, overtime.ErrRequestNotFound
		}
		return overtime.OvertimeRequest{}, fmt.Errorf("failed to get overtime request: %w", err)
	}

	return req, nil
}

// Update implements overtime.OvertimeRepository.
func (r *overtimeRepository) Update(ctx context.Context, req overtime.OvertimeRequest) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE overtime_requests
		SET status = $2, reviewed_by = $3, reviewed_at = $4, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query, req.ID, req.Status, req.ReviewedBy, req.ReviewedAt)
	if err != nil {
		return fmt.Errorf("failed to update overtime request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return overtime.ErrRequestNotFound
	}

	return nil
}

// ListPayableInRange implements overtime.OvertimeRepository.
func (r *overtimeRepository) ListPayableInRange(ctx context.Context, employeeID string, start, end time.Time) ([]overtime.OvertimeRequest, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + overtimeColumns + `
		FROM overtime_requests
		WHERE employee_id = $1
		  AND date >= $2
		  AND date <= $3
		  AND status IN ('auto_approved', 'approved')
		ORDER BY date`

	rows, err := q.Query(ctx, query, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query payable overtime: %w", err)
	}
	defer rows.Close()

	var requests []overtime.OvertimeRequest
	for rows.Next() {
		req, err := scanOvertimeRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan overtime request: %w", err)
		}
		requests = append(requests, req)
	}

	return requests, rows.Err()
}

// List implements overtime.OvertimeRepository.
func (r *overtimeRepository) List(ctx context.Context, filter overtime.OvertimeFilter) ([]overtime.OvertimeRequest, int64, error) {
	q := GetQuerier(ctx, r.db)

	var conditions []string
	var args []interface{}

	addCondition := func(cond string, arg interface{}) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.EmployeeID != nil {
		addCondition("employee_id = $%d", *filter.EmployeeID)
	}
	if filter.Status != nil {
		addCondition("status = $%d", *filter.Status)
	}
	if filter.StartDate != nil {
		addCondition("date >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		addCondition("date <= $%d", *filter.EndDate)
	}

	where := ""
	if len(conditions) > 0 {
		where = " WHERE " + strings.Join(conditions, " AND ")
	}

	var total int64
	countQuery := `SELECT COUNT(*) FROM overtime_requests` + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count overtime requests: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	query := `SELECT ` + overtimeColumns + ` FROM overtime_requests` + where +
		fmt.Sprintf(` ORDER BY submitted_at DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list overtime requests: %w", err)
	}
	defer rows.Close()

	var requests []overtime.OvertimeRequest
	for rows.Next() {
		req, err := scanOvertimeRequest(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan overtime request: %w", err)
		}
		requests = append(requests, req)
	}

	return requests, total, rows.Err()
}
