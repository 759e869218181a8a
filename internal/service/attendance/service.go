package attendance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/keymutex"
	"github.com/google/uuid"
)

// Policy carries the attendance thresholds the ledger enforces.
type Policy struct {
	Late                attendance.LatePolicy
	MinimumDailyHours   float64
	OvertimeEscapeHours float64
}

type AttendanceServiceImpl struct {
	attendance.AttendanceRepository
	locks  *keymutex.KeyedMutex
	policy Policy
	audit  audit.Sink
	now    func() time.Time
}

func NewAttendanceService(
	attendanceRepo attendance.AttendanceRepository,
	locks *keymutex.KeyedMutex,
	policy Policy,
	auditSink audit.Sink,
) attendance.AttendanceService {
	return &AttendanceServiceImpl{
		AttendanceRepository: attendanceRepo,
		locks:                locks,
		policy:               policy,
		audit:                auditSink,
		now:                  time.Now,
	}
}

// round2 rounds hours to two decimals, the ledger's canonical precision.
func round2(hours float64) float64 {
	return math.Round(hours*100) / 100
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	format := t.Format(time.RFC3339)
	return &format
}

// PunchIn implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) PunchIn(ctx context.Context, req attendance.PunchInRequest) (attendance.AttendanceDayResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceDayResponse{}, err
	}

	a.locks.Lock(req.EmployeeID)
	defer a.locks.Unlock(req.EmployeeID)

	_, err := a.AttendanceRepository.GetOpenDay(ctx, req.EmployeeID)
	if err == nil {
		return attendance.AttendanceDayResponse{}, attendance.ErrAlreadyPunchedIn
	}
	if !errors.Is(err, attendance.ErrNotPunchedIn) {
		return attendance.AttendanceDayResponse{}, fmt.Errorf("failed to check open attendance day: %w", err)
	}

	date := truncateToDate(req.Timestamp)

	// A date that already has a closed record cannot be reopened by punching
	// in again; corrections go through Regularize.
	_, err = a.AttendanceRepository.GetByEmployeeAndDate(ctx, req.EmployeeID, date)
	if err == nil {
		return attendance.AttendanceDayResponse{}, attendance.ErrAlreadyPunchedIn
	}
	if !errors.Is(err, attendance.ErrAttendanceNotFound) {
		return attendance.AttendanceDayResponse{}, fmt.Errorf("failed to check existing attendance day: %w", err)
	}

	status := attendance.StatusPresent
	if a.policy.Late != nil && a.policy.Late(req.Timestamp) {
		status = attendance.StatusLate
	}

	punchIn := req.Timestamp
	day := attendance.AttendanceDay{
		ID:         uuid.New().String(),
		EmployeeID: req.EmployeeID,
		Date:       date,
		Status:     status,
		PunchIn:    &punchIn,
	}

	created, err := a.AttendanceRepository.Create(ctx, day)
	if err != nil {
		return attendance.AttendanceDayResponse{}, fmt.Errorf("failed to create attendance day: %w", err)
	}

	a.audit.Record(audit.Event{
		Actor:      req.EmployeeID,
		Action:     "attendance.punch_in",
		EntityType: "attendance_day",
		EntityID:   created.ID,
		Detail:     map[string]any{"status": string(status)},
		At:         a.now(),
	})

	return mapDayToResponse(created), nil
}

// StartBreak implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) StartBreak(ctx context.Context, req attendance.BreakRequest) (attendance.AttendanceDayResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceDayResponse{}, err
	}

	a.locks.Lock(req.EmployeeID)
	defer a.locks.Unlock(req.EmployeeID)

	day, err := a.AttendanceRepository.GetOpenDay(ctx, req.EmployeeID)
	if err != nil {
		return attendance.AttendanceDayResponse{}, err
	}

	if day.OpenBreak() != nil {
		return attendance.AttendanceDayResponse{}, attendance.ErrInvalidBreakTransition
	}
	for _, b := range day.Breaks {
		if b.Kind == req.Kind {
			return attendance.AttendanceDayResponse{}, attendance.ErrInvalidBreakTransition
		}
	}
	if day.PunchIn != nil && req.Timestamp.Before(*day.PunchIn) {
		return attendance.AttendanceDayResponse{}, attendance.ErrInvalidBreakTransition
	}

	day.Breaks = append(day.Breaks, attendance.BreakSession{
		Kind:  req.Kind,
		Start: req.Timestamp,
	})

	if err := a.AttendanceRepository.Update(ctx, day); err != nil {
		return attendance.AttendanceDayResponse{}, fmt.Errorf("failed to update attendance day: %w", err)
	}

	return mapDayToResponse(day), nil
}

// EndBreak implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) EndBreak(ctx context.Context, req attendance.BreakRequest) (attendance.AttendanceDayResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceDayResponse{}, err
	}

	a.locks.Lock(req.EmployeeID)
	defer a.locks.Unlock(req.EmployeeID)

	day, err := a.AttendanceRepository.GetOpenDay(ctx, req.EmployeeID)
	if err != nil {
		return attendance.AttendanceDayResponse{}, err
	}

	open := day.OpenBreak()
	if open == nil || open.Kind != req.Kind {
		return attendance.AttendanceDayResponse{}, attendance.ErrInvalidBreakTransition
	}
	if req.Timestamp.Before(open.Start) {
		return attendance.AttendanceDayResponse{}, attendance.ErrInvalidBreakTransition
	}

	end := req.Timestamp
	open.End = &end

	if err := a.AttendanceRepository.Update(ctx, day); err != nil {
		return attendance.AttendanceDayResponse{}, fmt.Errorf("failed to update attendance day: %w", err)
	}

	return mapDayToResponse(day), nil
}

// PunchOut implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) PunchOut(ctx context.Context, req attendance.PunchOutRequest) (attendance.AttendanceDayResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceDayResponse{}, err
	}

	a.locks.Lock(req.EmployeeID)
	defer a.locks.Unlock(req.EmployeeID)

	day, err := a.AttendanceRepository.GetOpenDay(ctx, req.EmployeeID)
	if err != nil {
		return attendance.AttendanceDayResponse{}, err
	}

	if day.OpenBreak() != nil {
		return attendance.AttendanceDayResponse{}, attendance.ErrInvalidBreakTransition
	}
	if day.PunchIn == nil || req.Timestamp.Before(*day.PunchIn) {
		return attendance.AttendanceDayResponse{}, attendance.ErrInvalidBreakTransition
	}

	worked := req.Timestamp.Sub(*day.PunchIn) - day.BreakDuration()
	hours := round2(worked.Hours())

	if hours < a.policy.MinimumDailyHours && hours <= a.policy.OvertimeEscapeHours {
		return attendance.AttendanceDayResponse{}, attendance.ErrMinimumHoursNotMet
	}

	punchOut := req.Timestamp
	day.PunchOut = &punchOut
	day.TotalHours = hours

	if err := a.AttendanceRepository.Update(ctx, day); err != nil {
		return attendance.AttendanceDayResponse{}, fmt.Errorf("failed to update attendance day: %w", err)
	}

	a.audit.Record(audit.Event{
		Actor:      req.EmployeeID,
		Action:     "attendance.punch_out",
		EntityType: "attendance_day",
		EntityID:   day.ID,
		Detail:     map[string]any{"total_hours": hours},
		At:         a.now(),
	})

	return mapDayToResponse(day), nil
}

// Regularize implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) Regularize(ctx context.Context, req attendance.RegularizeRequest) (attendance.AttendanceDayResponse, error) {
	if err := req.Validate(); err != nil {
		return attendance.AttendanceDayResponse{}, err
	}

	a.locks.Lock(req.EmployeeID)
	defer a.locks.Unlock(req.EmployeeID)

	date, _ := time.Parse("2006-01-02", req.Date)

	day, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, req.EmployeeID, date)
	if err != nil {
		return attendance.AttendanceDayResponse{}, err
	}

	if day.Open() {
		return attendance.AttendanceDayResponse{}, attendance.ErrDayStillOpen
	}

	entry := attendance.RegularizationEntry{
		Actor:     req.Actor,
		Reason:    req.Reason,
		OldStatus: day.Status,
		NewStatus: req.NewStatus,
		OldHours:  day.TotalHours,
		NewHours:  day.TotalHours,
		At:        a.now(),
	}
	if req.NewHours != nil {
		entry.NewHours = round2(*req.NewHours)
	}

	day.Status = req.NewStatus
	day.TotalHours = entry.NewHours
	day.Audit = append(day.Audit, entry)

	if err := a.AttendanceRepository.Update(ctx, day); err != nil {
		return attendance.AttendanceDayResponse{}, fmt.Errorf("failed to update attendance day: %w", err)
	}

	a.audit.Record(audit.Event{
		Actor:      req.Actor,
		Action:     "attendance.regularize",
		EntityType: "attendance_day",
		EntityID:   day.ID,
		Detail: map[string]any{
			"reason":     req.Reason,
			"old_status": string(entry.OldStatus),
			"new_status": string(entry.NewStatus),
			"old_hours":  entry.OldHours,
			"new_hours":  entry.NewHours,
		},
		At: a.now(),
	})

	return mapDayToResponse(day), nil
}

// GetDay implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) GetDay(ctx context.Context, employeeID string, date string) (attendance.AttendanceDayResponse, error) {
	parsed, err := time.Parse("2006-01-02", date)
	if err != nil {
		return attendance.AttendanceDayResponse{}, attendance.ErrAttendanceNotFound
	}

	day, err := a.AttendanceRepository.GetByEmployeeAndDate(ctx, employeeID, parsed)
	if err != nil {
		return attendance.AttendanceDayResponse{}, err
	}

	return mapDayToResponse(day), nil
}

// List implements attendance.AttendanceService.
func (a *AttendanceServiceImpl) List(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	days, total, err := a.AttendanceRepository.List(ctx, filter)
	if err != nil {
		return attendance.ListAttendanceResponse{}, fmt.Errorf("failed to list attendance days: %w", err)
	}

	responses := make([]attendance.AttendanceDayResponse, 0, len(days))
	for _, day := range days {
		responses = append(responses, mapDayToResponse(day))
	}

	return attendance.ListAttendanceResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		Days:       responses,
	}, nil
}

// truncateToDate buckets a timestamp into its calendar date. Year, month and
// day are read in the timestamp's own location; the bucket itself is stored
// at UTC midnight so date keys compare stably across zones.
func truncateToDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func mapDayToResponse(day attendance.AttendanceDay) attendance.AttendanceDayResponse {
	breaks := make([]attendance.BreakSessionResponse, 0, len(day.Breaks))
	for _, b := range day.Breaks {
		breaks = append(breaks, attendance.BreakSessionResponse{
			Kind:  string(b.Kind),
			Start: b.Start.Format(time.RFC3339),
			End:   timePtrToString(b.End),
		})
	}

	return attendance.AttendanceDayResponse{
		ID:          day.ID,
		EmployeeID:  day.EmployeeID,
		Date:        day.Date.Format("2006-01-02"),
		Status:      string(day.Status),
		PunchIn:     timePtrToString(day.PunchIn),
		PunchOut:    timePtrToString(day.PunchOut),
		TotalHours:  day.TotalHours,
		Breaks:      breaks,
		Regularized: len(day.Audit) > 0,
	}
}
