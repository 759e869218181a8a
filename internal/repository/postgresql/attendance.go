package postgresql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type attendanceRepository struct {
	db *database.DB
}

func NewAttendanceRepository(db *database.DB) attendance.AttendanceRepository {
	return &attendanceRepository{db: db}
}

const attendanceColumns = `
	id, employee_id, date, status, punch_in, punch_out, total_hours,
	breaks, audit_trail, created_at, updated_at`

func scanAttendanceDay(row pgx.Row) (attendance.AttendanceDay, error) {
	var day attendance.AttendanceDay
	var breaksJSON, auditJSON []byte

	err := row.Scan(
		&day.ID, &day.EmployeeID, &day.Date, &day.Status,
		&day.PunchIn, &day.PunchOut, &day.TotalHours,
		&breaksJSON, &auditJSON, &day.CreatedAt, &day.UpdatedAt,
	)
	if err != nil {
		return attendance.AttendanceDay{}, err
	}

	if len(breaksJSON) > 0 {
		if err := json.Unmarshal(breaksJSON, &day.Breaks); err != nil {
			return attendance.AttendanceDay{}, fmt.Errorf("failed to decode breaks: %w", err)
		}
	}
	if len(auditJSON) > 0 {
		if err := json.Unmarshal(auditJSON, &day.Audit); err != nil {
			return attendance.AttendanceDay{}, fmt.Errorf("failed to decode audit trail: %w", err)
		}
	}

	return day, nil
}

func encodeDayJSON(day attendance.AttendanceDay) (breaks, auditTrail []byte, err error) {
	breaks, err = json.Marshal(day.Breaks)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode breaks: %w", err)
	}
	auditTrail, err = json.Marshal(day.Audit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to encode audit trail: %w", err)
	}
	return breaks, auditTrail, nil
}

// Create implements attendance.AttendanceRepository.
func (r *attendanceRepository) Create(ctx context.Context, day attendance.AttendanceDay) (attendance.AttendanceDay, error) {
	q := GetQuerier(ctx, r.db)

	breaks, auditTrail, err := encodeDayJSON(day)
	if err != nil {
		return attendance.AttendanceDay{}, err
	}

	query := `
		INSERT INTO attendance_days (
			id, employee_id, date, status, punch_in, punch_out, total_hours, breaks, audit_trail
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		) RETURNING created_at, updated_at
	`

	err = q.QueryRow(ctx, query,
		day.ID, day.EmployeeID, day.Date, day.Status,
		day.PunchIn, day.PunchOut, day.TotalHours, breaks, auditTrail,
	).Scan(&day.CreatedAt, &day.UpdatedAt)
	if err != nil {
		return attendance.AttendanceDay{}, fmt.Errorf("failed to create attendance day: %w", err)
	}

	return day, nil
}

// Update implements attendance.AttendanceRepository.
func (r *attendanceRepository) Update(ctx context.Context, day attendance.AttendanceDay) error {
	q := GetQuerier(ctx, r.db)

	breaks, auditTrail, err := encodeDayJSON(day)
	if err != nil {
		return err
	}

	query := `
		UPDATE attendance_days
		SET status = $2, punch_in = $3, punch_out = $4, total_hours = $5,
			breaks = $6, audit_trail = $7, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := q.Exec(ctx, query,
		day.ID, day.Status, day.PunchIn, day.PunchOut, day.TotalHours, breaks, auditTrail,
	)
	if err != nil {
		return fmt.Errorf("failed to update attendance day: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return attendance.ErrAttendanceNotFound
	}

	return nil
}

// GetByID implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByID(ctx context.Context, id string) (attendance.AttendanceDay, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + ` FROM attendance_days WHERE id = $1`

	day, err := scanAttendanceDay(q.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.AttendanceDay{}, attendance.ErrAttendanceNotFound
		}
		return attendance.AttendanceDay{}, fmt.Errorf("failed to get attendance day: %w", err)
	}

	return day, nil
}

// GetOpenDay implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetOpenDay(ctx context.Context, employeeID string) (attendance.AttendanceDay, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendance_days
		WHERE employee_id = $1
		  AND punch_in IS NOT NULL
		  AND punch_out IS NULL
		ORDER BY punch_in DESC
		LIMIT 1`

	day, err := scanAttendanceDay(q.QueryRow(ctx, query, employeeID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.AttendanceDay{}, attendance.ErrNotPunchedIn
		}
		return attendance.AttendanceDay{}, fmt.Errorf("failed to get open attendance day: %w", err)
	}

	return day, nil
}

// GetByEmployeeAndDate implements attendance.AttendanceRepository.
func (r *attendanceRepository) GetByEmployeeAndDate(ctx context.Context, employeeID string, date time.Time) (attendance.AttendanceDay, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendance_days
		WHERE employee_id = $1 AND date = $2
		LIMIT 1`

	day, err := scanAttendanceDay(q.QueryRow(ctx, query, employeeID, date))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return attendance.AttendanceDay{}, attendance.ErrAttendanceNotFound
		}
		return attendance.AttendanceDay{}, fmt.Errorf("failed to get attendance day: %w", err)
	}

	return day, nil
}

// QueryRange implements attendance.AttendanceRepository.
func (r *attendanceRepository) QueryRange(ctx context.Context, employeeID string, start, end time.Time) ([]attendance.AttendanceDay, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + attendanceColumns + `
		FROM attendance_days
		WHERE employee_id = $1
		  AND date >= $2
		  AND date <= $3
		ORDER BY date`

	rows, err := q.Query(ctx, query, employeeID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query attendance range: %w", err)
	}
	defer rows.Close()

	var days []attendance.AttendanceDay
	for rows.Next() {
		day, err := scanAttendanceDay(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance day: %w", err)
		}
		days = append(days, day)
	}

	return days, rows.Err()
}

// List implements attendance.AttendanceRepository.
func (r *attendanceRepository) List(ctx context.Context, filter attendance.AttendanceFilter) ([]attendance.AttendanceDay, int64, error) {
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
	countQuery := `SELECT COUNT(*) FROM attendance_days` + where
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count attendance days: %w", err)
	}

	offset := (filter.Page - 1) * filter.Limit
	query := `SELECT ` + attendanceColumns + ` FROM attendance_days` + where +
		fmt.Sprintf(` ORDER BY date DESC LIMIT $%d OFFSET $%d`, len(args)+1, len(args)+2)
	args = append(args, filter.Limit, offset)

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list attendance days: %w", err)
	}
	defer rows.Close()

	var days []attendance.AttendanceDay
	for rows.Next() {
		day, err := scanAttendanceDay(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan attendance day: %w", err)
		}
		days = append(days, day)
	}

	return days, total, rows.Err()
}
