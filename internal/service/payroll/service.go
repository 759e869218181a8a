package payroll

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/config"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/overtime"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/keymutex"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TxRunner executes fn atomically. The postgresql layer provides one backed by
// a database transaction; tests use a passthrough.
type TxRunner func(ctx context.Context, fn func(ctx context.Context) error) error

type PayrollServiceImpl struct {
	periodRepo     payroll.PeriodRepository
	payslipRepo    payroll.PayslipRepository
	employeeRepo   employee.EmployeeRepository
	attendanceRepo attendance.AttendanceRepository
	overtimeRepo   overtime.OvertimeRepository
	policy         config.PolicyConfig
	locks          *keymutex.KeyedMutex
	audit          audit.Sink
	logger         *slog.Logger
	inTx           TxRunner
	now            func() time.Time
}

func NewPayrollService(
	periodRepo payroll.PeriodRepository,
	payslipRepo payroll.PayslipRepository,
	employeeRepo employee.EmployeeRepository,
	attendanceRepo attendance.AttendanceRepository,
	overtimeRepo overtime.OvertimeRepository,
	policy config.PolicyConfig,
	locks *keymutex.KeyedMutex,
	auditSink audit.Sink,
	logger *slog.Logger,
	inTx TxRunner,
) payroll.PayrollService {
	if inTx == nil {
		inTx = func(ctx context.Context, fn func(ctx context.Context) error) error { return fn(ctx) }
	}
	return &PayrollServiceImpl{
		periodRepo:     periodRepo,
		payslipRepo:    payslipRepo,
		employeeRepo:   employeeRepo,
		attendanceRepo: attendanceRepo,
		overtimeRepo:   overtimeRepo,
		policy:         policy,
		locks:          locks,
		audit:          auditSink,
		logger:         logger,
		inTx:           inTx,
		now:            time.Now,
	}
}

// CreatePeriod implements payroll.PayrollService.
func (p *PayrollServiceImpl) CreatePeriod(ctx context.Context, req payroll.CreatePeriodRequest) (payroll.PeriodResponse, error) {
	if err := req.Validate(); err != nil {
		return payroll.PeriodResponse{}, err
	}

	start, _ := time.Parse("2006-01-02", req.StartDate)
	end, _ := time.Parse("2006-01-02", req.EndDate)

	period := payroll.PayrollPeriod{
		ID:               uuid.New().String(),
		Label:            req.Label,
		StartDate:        start,
		EndDate:          end,
		Status:           payroll.PeriodStatusDraft,
		TotalWorkingDays: req.TotalWorkingDays,
	}

	created, err := p.periodRepo.Create(ctx, period)
	if err != nil {
		return payroll.PeriodResponse{}, fmt.Errorf("failed to create payroll period: %w", err)
	}

	return mapPeriodToResponse(created), nil
}

// GetPeriod implements payroll.PayrollService.
func (p *PayrollServiceImpl) GetPeriod(ctx context.Context, id string) (payroll.PeriodResponse, error) {
	period, err := p.periodRepo.GetByID(ctx, id)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}
	return mapPeriodToResponse(period), nil
}

// ListPeriods implements payroll.PayrollService.
func (p *PayrollServiceImpl) ListPeriods(ctx context.Context) ([]payroll.PeriodResponse, error) {
	periods, err := p.periodRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list payroll periods: %w", err)
	}

	responses := make([]payroll.PeriodResponse, 0, len(periods))
	for _, period := range periods {
		responses = append(responses, mapPeriodToResponse(period))
	}
	return responses, nil
}

// ComputePayslip implements payroll.PayrollService.
func (p *PayrollServiceImpl) ComputePayslip(ctx context.Context, employeeID, periodID string) (payroll.PayslipResponse, error) {
	period, err := p.periodRepo.GetByID(ctx, periodID)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}

	// A paid period's records are locked; writing a fresh record into it would
	// sidestep that lock. An in-process period belongs to the running batch.
	switch period.Status {
	case payroll.PeriodStatusPaid:
		return payroll.PayslipResponse{}, payroll.ErrRecordImmutable
	case payroll.PeriodStatusInProcess:
		return payroll.PayslipResponse{}, payroll.ErrConcurrentProcessingConflict
	}

	facts, err := p.snapshotFacts(ctx, employeeID, period)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}

	record, err := p.storeRecord(ctx, facts, period)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}

	return mapRecordToResponse(record), nil
}

// employeeFacts is one employee's frozen reconciliation input: master data,
// attendance days, payable overtime and any waiver, as read at snapshot time.
type employeeFacts struct {
	emp      employee.Employee
	days     []attendance.AttendanceDay
	requests []overtime.OvertimeRequest
	waiver   *payroll.Waiver
}

func (p *PayrollServiceImpl) snapshotFacts(ctx context.Context, employeeID string, period payroll.PayrollPeriod) (employeeFacts, error) {
	emp, err := p.employeeRepo.GetByID(ctx, employeeID)
	if err != nil {
		return employeeFacts{}, err
	}

	days, err := p.attendanceRepo.QueryRange(ctx, employeeID, period.StartDate, period.EndDate)
	if err != nil {
		return employeeFacts{}, fmt.Errorf("failed to snapshot attendance: %w", err)
	}

	requests, err := p.overtimeRepo.ListPayableInRange(ctx, employeeID, period.StartDate, period.EndDate)
	if err != nil {
		return employeeFacts{}, fmt.Errorf("failed to snapshot overtime: %w", err)
	}

	waiver, err := p.payslipRepo.GetWaiver(ctx, employeeID, period.ID)
	if err != nil {
		return employeeFacts{}, fmt.Errorf("failed to look up waiver: %w", err)
	}

	return employeeFacts{emp: emp, days: days, requests: requests, waiver: waiver}, nil
}

// storeRecord reconciles frozen facts into a PayslipRecord and persists it.
func (p *PayrollServiceImpl) storeRecord(ctx context.Context, facts employeeFacts, period payroll.PayrollPeriod) (payroll.PayslipRecord, error) {
	record := p.reconcile(facts.emp, period, facts.days, facts.requests, facts.waiver)

	created, err := p.payslipRepo.Create(ctx, record)
	if err != nil {
		return payroll.PayslipRecord{}, err
	}

	if created.NegativeNet {
		p.logger.Warn("computed payslip has negative net pay",
			"employee_id", facts.emp.ID,
			"period_id", period.ID,
			"net_pay", created.NetPay.String(),
			"error", payroll.ErrNegativeNetPay,
		)
	}

	p.audit.Record(audit.Event{
		Actor:      "payroll-engine",
		Action:     "payroll.compute_payslip",
		EntityType: "payslip_record",
		EntityID:   created.ID,
		Detail: map[string]any{
			"employee_id": facts.emp.ID,
			"period_id":   period.ID,
			"net_pay":     created.NetPay.String(),
		},
		At: p.now(),
	})

	return created, nil
}

// reconcile is the pure computation: attendance facts plus compensation
// structure in, a fully derived PayslipRecord out.
func (p *PayrollServiceImpl) reconcile(
	emp employee.Employee,
	period payroll.PayrollPeriod,
	days []attendance.AttendanceDay,
	requests []overtime.OvertimeRequest,
	waiver *payroll.Waiver,
) payroll.PayslipRecord {
	summary := summarize(period, days, requests)

	divisor := emp.DivisorOrDefault(p.policy.WorkingDaysDivisor)
	perDayRate := emp.BaseSalary.DivRound(decimal.NewFromInt(divisor), 2)

	// Loss-of-pay days: full absences plus half-days at half weight.
	lopDays := decimal.NewFromInt(int64(summary.AbsentDays)).
		Add(decimal.NewFromInt(int64(summary.HalfDays)).Div(decimal.NewFromInt(2)))
	payableDays := decimal.NewFromInt(int64(period.TotalWorkingDays)).Sub(lopDays)

	absentDeduction := perDayRate.Mul(lopDays)
	lateDeduction := p.policy.LateComingPenalty.Mul(decimal.NewFromInt(int64(summary.LateComings)))
	attendanceDeduction := absentDeduction.Add(lateDeduction)

	waiverApplied := false
	var waiverReason *string
	if waiver != nil {
		attendanceDeduction = decimal.Zero
		waiverApplied = true
		reason := waiver.Reason
		waiverReason = &reason
	}

	overtimePay := p.policy.OvertimeHourlyRate.
		Mul(decimal.NewFromFloat(summary.OvertimeHours)).
		Round(2)

	earnings := payroll.EarningsBreakdown{
		BasicSalary:         emp.BaseSalary,
		HRA:                 emp.Compensation.HRA,
		ConveyanceAllowance: emp.Compensation.ConveyanceAllowance,
		MedicalAllowance:    emp.Compensation.MedicalAllowance,
		SpecialAllowance:    emp.Compensation.SpecialAllowance,
		Bonus:               emp.Compensation.Bonus,
		OvertimePay:         overtimePay,
		Arrears:             emp.Compensation.Arrears,
		OtherEarnings:       emp.Compensation.OtherEarnings,
	}

	deductions := payroll.DeductionsBreakdown{
		PF:                  emp.Compensation.PF,
		ESI:                 emp.Compensation.ESI,
		ProfessionalTax:     emp.Compensation.ProfessionalTax,
		TDS:                 emp.Compensation.TDS,
		LoanDeduction:       emp.Compensation.LoanDeduction,
		LeaveDeduction:      decimal.Zero,
		AttendanceDeduction: attendanceDeduction,
		OtherDeductions:     emp.Compensation.OtherDeductions,
	}

	earningsTotal := earnings.Total()
	deductionsTotal := deductions.Total()
	netPay := earningsTotal.Sub(deductionsTotal)

	return payroll.PayslipRecord{
		ID:              uuid.New().String(),
		EmployeeID:      emp.ID,
		PayrollPeriodID: period.ID,
		PayableDays:     payableDays,
		Summary:         summary,
		Earnings:        earnings,
		Deductions:      deductions,
		EarningsTotal:   earningsTotal,
		DeductionsTotal: deductionsTotal,
		NetPay:          netPay,
		NegativeNet:     netPay.IsNegative(),
		WaiverApplied:   waiverApplied,
		WaiverReason:    waiverReason,
		CreatedAt:       p.now(),
	}
}

func summarize(period payroll.PayrollPeriod, days []attendance.AttendanceDay, requests []overtime.OvertimeRequest) payroll.AttendanceSummary {
	summary := payroll.AttendanceSummary{WorkingDays: period.TotalWorkingDays}

	for _, day := range days {
		switch day.Status {
		case attendance.StatusPresent:
			summary.PresentDays++
		case attendance.StatusLate:
			summary.PresentDays++
			summary.LateComings++
		case attendance.StatusAbsent:
			summary.AbsentDays++
		case attendance.StatusHalfDay:
			summary.HalfDays++
		case attendance.StatusLeave:
			summary.LeaveDays++
		}
	}

	var hours float64
	for _, req := range requests {
		hours += req.Hours
	}
	summary.OvertimeHours = math.Round(hours*100) / 100

	return summary
}

// ProcessPayroll implements payroll.PayrollService.
func (p *PayrollServiceImpl) ProcessPayroll(ctx context.Context, periodID string) (payroll.RunResultResponse, error) {
	if !p.locks.TryLock(periodID) {
		return payroll.RunResultResponse{}, payroll.ErrConcurrentProcessingConflict
	}
	defer p.locks.Unlock(periodID)

	period, err := p.periodRepo.GetByID(ctx, periodID)
	if err != nil {
		return payroll.RunResultResponse{}, err
	}

	switch period.Status {
	case payroll.PeriodStatusDraft:
	case payroll.PeriodStatusInProcess:
		return payroll.RunResultResponse{}, payroll.ErrConcurrentProcessingConflict
	default:
		return payroll.RunResultResponse{}, payroll.ErrPeriodAlreadyProcessed
	}

	if err := p.periodRepo.TransitionStatus(ctx, periodID, payroll.PeriodStatusDraft, payroll.PeriodStatusInProcess); err != nil {
		return payroll.RunResultResponse{}, err
	}

	// Leftovers from a previously aborted run; locked records are kept.
	if err := p.payslipRepo.DeleteByPeriod(ctx, periodID); err != nil {
		p.revertToDraft(ctx, periodID, err)
		return payroll.RunResultResponse{}, fmt.Errorf("failed to clear stale payslip records: %w", err)
	}

	employees, err := p.employeeRepo.ListActive(ctx)
	if err != nil {
		p.revertToDraft(ctx, periodID, err)
		return payroll.RunResultResponse{}, fmt.Errorf("failed to list employees: %w", err)
	}

	// Phase one: freeze every employee's facts before any record is written.
	// A correction landing after this point applies to the next run only.
	type frozenSnapshot struct {
		employeeID string
		facts      employeeFacts
		err        error
	}
	snapshots := make([]frozenSnapshot, 0, len(employees))
	for _, emp := range employees {
		if ctx.Err() != nil {
			p.revertToDraft(ctx, periodID, ctx.Err())
			return payroll.RunResultResponse{}, fmt.Errorf("payroll run aborted: %w", ctx.Err())
		}

		facts, err := p.snapshotFacts(ctx, emp.ID, period)
		snapshots = append(snapshots, frozenSnapshot{employeeID: emp.ID, facts: facts, err: err})
	}

	// Phase two: reconcile and persist from the frozen facts. A failed
	// snapshot becomes that employee's outcome, never a run abort.
	result := payroll.RunResult{PeriodID: periodID}
	for _, snap := range snapshots {
		if ctx.Err() != nil {
			p.revertToDraft(ctx, periodID, ctx.Err())
			return payroll.RunResultResponse{}, fmt.Errorf("payroll run aborted: %w", ctx.Err())
		}

		outcome := payroll.EmployeeOutcome{EmployeeID: snap.employeeID}
		var record payroll.PayslipRecord
		err := snap.err
		if err == nil {
			record, err = p.storeRecord(ctx, snap.facts, period)
		}
		if err != nil {
			outcome.Err = err
			result.Failed++
			p.logger.Error("payslip computation failed",
				"employee_id", snap.employeeID,
				"period_id", periodID,
				"error", err,
			)
		} else {
			outcome.PayslipID = record.ID
			result.Succeeded++
		}
		result.Outcomes = append(result.Outcomes, outcome)
	}

	if err := p.periodRepo.TransitionStatus(ctx, periodID, payroll.PeriodStatusInProcess, payroll.PeriodStatusPending); err != nil {
		p.revertToDraft(ctx, periodID, err)
		return payroll.RunResultResponse{}, fmt.Errorf("failed to finish payroll run: %w", err)
	}

	p.audit.Record(audit.Event{
		Actor:      "payroll-engine",
		Action:     "payroll.process",
		EntityType: "payroll_period",
		EntityID:   periodID,
		Detail: map[string]any{
			"succeeded": result.Succeeded,
			"failed":    result.Failed,
		},
		At: p.now(),
	})

	return mapRunResultToResponse(result, payroll.PeriodStatusPending), nil
}

// revertToDraft returns an aborted period to draft so it never sticks in
// in_process. Uses a fresh context: the run's context may already be dead.
func (p *PayrollServiceImpl) revertToDraft(ctx context.Context, periodID string, cause error) {
	revertCtx := context.WithoutCancel(ctx)
	if err := p.periodRepo.TransitionStatus(revertCtx, periodID, payroll.PeriodStatusInProcess, payroll.PeriodStatusDraft); err != nil {
		p.logger.Error("failed to revert period to draft",
			"period_id", periodID,
			"error", err,
		)
		return
	}

	p.audit.Record(audit.Event{
		Actor:      "payroll-engine",
		Action:     "payroll.run_reverted",
		EntityType: "payroll_period",
		EntityID:   periodID,
		Detail:     map[string]any{"cause": cause.Error()},
		At:         p.now(),
	})
}

// MarkPaid implements payroll.PayrollService.
func (p *PayrollServiceImpl) MarkPaid(ctx context.Context, periodID string) (payroll.PeriodResponse, error) {
	period, err := p.periodRepo.GetByID(ctx, periodID)
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	if period.Status != payroll.PeriodStatusPending {
		return payroll.PeriodResponse{}, payroll.ErrPeriodNotPending
	}

	// The transition and the record lock land together or not at all.
	err = p.inTx(ctx, func(ctx context.Context) error {
		if err := p.periodRepo.TransitionStatus(ctx, periodID, payroll.PeriodStatusPending, payroll.PeriodStatusPaid); err != nil {
			return err
		}
		if err := p.payslipRepo.LockByPeriod(ctx, periodID); err != nil {
			return fmt.Errorf("failed to lock payslip records: %w", err)
		}
		return nil
	})
	if err != nil {
		return payroll.PeriodResponse{}, err
	}

	p.audit.Record(audit.Event{
		Actor:      "payroll-engine",
		Action:     "payroll.mark_paid",
		EntityType: "payroll_period",
		EntityID:   periodID,
		At:         p.now(),
	})

	period.Status = payroll.PeriodStatusPaid
	return mapPeriodToResponse(period), nil
}

// GrantWaiver implements payroll.PayrollService.
func (p *PayrollServiceImpl) GrantWaiver(ctx context.Context, req payroll.WaiverRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	period, err := p.periodRepo.GetByID(ctx, req.PayrollPeriodID)
	if err != nil {
		return err
	}
	if period.Status == payroll.PeriodStatusPaid {
		return payroll.ErrRecordImmutable
	}

	if _, err := p.employeeRepo.GetByID(ctx, req.EmployeeID); err != nil {
		return err
	}

	waiver := payroll.Waiver{
		EmployeeID:      req.EmployeeID,
		PayrollPeriodID: req.PayrollPeriodID,
		Reason:          req.Reason,
		GrantedBy:       req.Actor,
		GrantedAt:       p.now(),
	}

	if err := p.payslipRepo.UpsertWaiver(ctx, waiver); err != nil {
		return fmt.Errorf("failed to store waiver: %w", err)
	}

	p.audit.Record(audit.Event{
		Actor:      req.Actor,
		Action:     "payroll.grant_waiver",
		EntityType: "payroll_period",
		EntityID:   req.PayrollPeriodID,
		Detail: map[string]any{
			"employee_id": req.EmployeeID,
			"reason":      req.Reason,
		},
		At: p.now(),
	})

	return nil
}

// GetPayslip implements payroll.PayrollService.
func (p *PayrollServiceImpl) GetPayslip(ctx context.Context, employeeID, periodID string) (payroll.PayslipResponse, error) {
	record, err := p.payslipRepo.GetByEmployeeAndPeriod(ctx, employeeID, periodID)
	if err != nil {
		return payroll.PayslipResponse{}, err
	}
	return mapRecordToResponse(record), nil
}

// ListPayslips implements payroll.PayrollService.
func (p *PayrollServiceImpl) ListPayslips(ctx context.Context, periodID string) ([]payroll.PayslipResponse, error) {
	if _, err := p.periodRepo.GetByID(ctx, periodID); err != nil {
		return nil, err
	}

	records, err := p.payslipRepo.ListByPeriod(ctx, periodID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payslip records: %w", err)
	}

	responses := make([]payroll.PayslipResponse, 0, len(records))
	for _, record := range records {
		responses = append(responses, mapRecordToResponse(record))
	}
	return responses, nil
}

func mapPeriodToResponse(period payroll.PayrollPeriod) payroll.PeriodResponse {
	return payroll.PeriodResponse{
		ID:               period.ID,
		Label:            period.Label,
		StartDate:        period.StartDate.Format("2006-01-02"),
		EndDate:          period.EndDate.Format("2006-01-02"),
		Status:           string(period.Status),
		TotalWorkingDays: period.TotalWorkingDays,
	}
}

func mapRecordToResponse(record payroll.PayslipRecord) payroll.PayslipResponse {
	return payroll.PayslipResponse{
		ID:              record.ID,
		EmployeeID:      record.EmployeeID,
		PayrollPeriodID: record.PayrollPeriodID,
		PayableDays:     record.PayableDays,
		Summary: payroll.AttendanceSummaryResponse{
			WorkingDays:   record.Summary.WorkingDays,
			PresentDays:   record.Summary.PresentDays,
			AbsentDays:    record.Summary.AbsentDays,
			HalfDays:      record.Summary.HalfDays,
			LeaveDays:     record.Summary.LeaveDays,
			LateComings:   record.Summary.LateComings,
			OvertimeHours: record.Summary.OvertimeHours,
		},
		Earnings: payroll.EarningsResponse{
			BasicSalary:         record.Earnings.BasicSalary,
			HRA:                 record.Earnings.HRA,
			ConveyanceAllowance: record.Earnings.ConveyanceAllowance,
			MedicalAllowance:    record.Earnings.MedicalAllowance,
			SpecialAllowance:    record.Earnings.SpecialAllowance,
			Bonus:               record.Earnings.Bonus,
			OvertimePay:         record.Earnings.OvertimePay,
			Arrears:             record.Earnings.Arrears,
			OtherEarnings:       record.Earnings.OtherEarnings,
			Total:               record.EarningsTotal,
		},
		Deductions: payroll.DeductionsResponse{
			PF:                  record.Deductions.PF,
			ESI:                 record.Deductions.ESI,
			ProfessionalTax:     record.Deductions.ProfessionalTax,
			TDS:                 record.Deductions.TDS,
			LoanDeduction:       record.Deductions.LoanDeduction,
			LeaveDeduction:      record.Deductions.LeaveDeduction,
			AttendanceDeduction: record.Deductions.AttendanceDeduction,
			OtherDeductions:     record.Deductions.OtherDeductions,
			Total:               record.DeductionsTotal,
		},
		NetPay:        record.NetPay,
		NegativeNet:   record.NegativeNet,
		WaiverApplied: record.WaiverApplied,
		WaiverReason:  record.WaiverReason,
		Locked:        record.Locked,
	}
}

func mapRunResultToResponse(result payroll.RunResult, status payroll.PeriodStatus) payroll.RunResultResponse {
	outcomes := make([]payroll.EmployeeOutcomeResponse, 0, len(result.Outcomes))
	for _, outcome := range result.Outcomes {
		resp := payroll.EmployeeOutcomeResponse{
			EmployeeID: outcome.EmployeeID,
			PayslipID:  outcome.PayslipID,
		}
		if outcome.Err != nil {
			msg := outcome.Err.Error()
			resp.Error = &msg
		}
		outcomes = append(outcomes, resp)
	}

	return payroll.RunResultResponse{
		PeriodID:  result.PeriodID,
		Status:    string(status),
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
		Outcomes:  outcomes,
	}
}
