package payroll

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/config"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/employee"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/overtime"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/keymutex"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePeriodRepo struct {
	mu      sync.Mutex
	periods map[string]payroll.PayrollPeriod
}

func newFakePeriodRepo() *fakePeriodRepo {
	return &fakePeriodRepo{periods: make(map[string]payroll.PayrollPeriod)}
}

func (f *fakePeriodRepo) Create(_ context.Context, period payroll.PayrollPeriod) (payroll.PayrollPeriod, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.periods[period.ID] = period
	return period, nil
}

func (f *fakePeriodRepo) GetByID(_ context.Context, id string) (payroll.PayrollPeriod, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	period, ok := f.periods[id]
	if !ok {
		return payroll.PayrollPeriod{}, payroll.ErrPeriodNotFound
	}
	return period, nil
}

func (f *fakePeriodRepo) List(_ context.Context) ([]payroll.PayrollPeriod, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []payroll.PayrollPeriod
	for _, period := range f.periods {
		result = append(result, period)
	}
	return result, nil
}

func (f *fakePeriodRepo) TransitionStatus(_ context.Context, id string, from, to payroll.PeriodStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	period, ok := f.periods[id]
	if !ok {
		return payroll.ErrPeriodNotFound
	}
	if period.Status != from {
		return payroll.ErrConcurrentProcessingConflict
	}
	period.Status = to
	f.periods[id] = period
	return nil
}

type fakePayslipRepo struct {
	mu      sync.Mutex
	records map[string]payroll.PayslipRecord // key employeeID|periodID
	waivers map[string]payroll.Waiver

	// onCreate, when set, runs after each successful Create.
	onCreate func(record payroll.PayslipRecord)
}

func newFakePayslipRepo() *fakePayslipRepo {
	return &fakePayslipRepo{
		records: make(map[string]payroll.PayslipRecord),
		waivers: make(map[string]payroll.Waiver),
	}
}

func recordKey(employeeID, periodID string) string {
	return employeeID + "|" + periodID
}

func (f *fakePayslipRepo) Create(_ context.Context, record payroll.PayslipRecord) (payroll.PayslipRecord, error) {
	f.mu.Lock()
	key := recordKey(record.EmployeeID, record.PayrollPeriodID)
	if existing, ok := f.records[key]; ok {
		f.mu.Unlock()
		if existing.Locked {
			return payroll.PayslipRecord{}, payroll.ErrRecordImmutable
		}
		return payroll.PayslipRecord{}, payroll.ErrPayslipAlreadyExists
	}
	f.records[key] = record
	hook := f.onCreate
	f.mu.Unlock()
	if hook != nil {
		hook(record)
	}
	return record, nil
}

func (f *fakePayslipRepo) GetByEmployeeAndPeriod(_ context.Context, employeeID, periodID string) (payroll.PayslipRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[recordKey(employeeID, periodID)]
	if !ok {
		return payroll.PayslipRecord{}, payroll.ErrPayslipNotFound
	}
	return record, nil
}

func (f *fakePayslipRepo) ListByPeriod(_ context.Context, periodID string) ([]payroll.PayslipRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var result []payroll.PayslipRecord
	for _, record := range f.records {
		if record.PayrollPeriodID == periodID {
			result = append(result, record)
		}
	}
	return result, nil
}

func (f *fakePayslipRepo) DeleteByPeriod(_ context.Context, periodID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, record := range f.records {
		if record.PayrollPeriodID == periodID && !record.Locked {
			delete(f.records, key)
		}
	}
	return nil
}

func (f *fakePayslipRepo) LockByPeriod(_ context.Context, periodID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for key, record := range f.records {
		if record.PayrollPeriodID == periodID {
			record.Locked = true
			f.records[key] = record
		}
	}
	return nil
}

func (f *fakePayslipRepo) GetWaiver(_ context.Context, employeeID, periodID string) (*payroll.Waiver, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	waiver, ok := f.waivers[recordKey(employeeID, periodID)]
	if !ok {
		return nil, nil
	}
	return &waiver, nil
}

func (f *fakePayslipRepo) UpsertWaiver(_ context.Context, waiver payroll.Waiver) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.waivers[recordKey(waiver.EmployeeID, waiver.PayrollPeriodID)] = waiver
	return nil
}

type fakeEmployeeRepo struct {
	employees map[string]employee.Employee
	active    []string
}

func (f *fakeEmployeeRepo) GetByID(_ context.Context, id string) (employee.Employee, error) {
	emp, ok := f.employees[id]
	if !ok {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (f *fakeEmployeeRepo) ListActive(_ context.Context) ([]employee.Employee, error) {
	var result []employee.Employee
	for _, id := range f.active {
		if emp, ok := f.employees[id]; ok {
			result = append(result, emp)
		} else {
			result = append(result, employee.Employee{ID: id})
		}
	}
	return result, nil
}

type fakeAttendanceSnapshot struct {
	days map[string][]attendance.AttendanceDay
}

func (f *fakeAttendanceSnapshot) Create(_ context.Context, day attendance.AttendanceDay) (attendance.AttendanceDay, error) {
	return day, nil
}
func (f *fakeAttendanceSnapshot) Update(_ context.Context, _ attendance.AttendanceDay) error {
	return nil
}
func (f *fakeAttendanceSnapshot) GetByID(_ context.Context, _ string) (attendance.AttendanceDay, error) {
	return attendance.AttendanceDay{}, attendance.ErrAttendanceNotFound
}
func (f *fakeAttendanceSnapshot) GetOpenDay(_ context.Context, _ string) (attendance.AttendanceDay, error) {
	return attendance.AttendanceDay{}, attendance.ErrNotPunchedIn
}
func (f *fakeAttendanceSnapshot) GetByEmployeeAndDate(_ context.Context, _ string, _ time.Time) (attendance.AttendanceDay, error) {
	return attendance.AttendanceDay{}, attendance.ErrAttendanceNotFound
}
func (f *fakeAttendanceSnapshot) QueryRange(_ context.Context, employeeID string, _, _ time.Time) ([]attendance.AttendanceDay, error) {
	return f.days[employeeID], nil
}
func (f *fakeAttendanceSnapshot) List(_ context.Context, _ attendance.AttendanceFilter) ([]attendance.AttendanceDay, int64, error) {
	return nil, 0, nil
}

type fakeOvertimeSnapshot struct {
	requests map[string][]overtime.OvertimeRequest
}

func (f *fakeOvertimeSnapshot) Create(_ context.Context, req overtime.OvertimeRequest) (overtime.OvertimeRequest, error) {
	return req, nil
}
func (f *fakeOvertimeSnapshot) GetByID(_ context.Context, _ string) (overtime.OvertimeRequest, error) {
	return overtime.OvertimeRequest{}, overtime.ErrRequestNotFound
}
func (f *fakeOvertimeSnapshot) Update(_ context.Context, _ overtime.OvertimeRequest) error {
	return nil
}
func (f *fakeOvertimeSnapshot) ListPayableInRange(_ context.Context, employeeID string, _, _ time.Time) ([]overtime.OvertimeRequest, error) {
	return f.requests[employeeID], nil
}
func (f *fakeOvertimeSnapshot) List(_ context.Context, _ overtime.OvertimeFilter) ([]overtime.OvertimeRequest, int64, error) {
	return nil, 0, nil
}

type engineFixture struct {
	svc         payroll.PayrollService
	periodRepo  *fakePeriodRepo
	payslipRepo *fakePayslipRepo
	employees   *fakeEmployeeRepo
	attendance  *fakeAttendanceSnapshot
	overtimes   *fakeOvertimeSnapshot
}

func testPolicy() config.PolicyConfig {
	return config.PolicyConfig{
		WorkingDaysDivisor:  26,
		LateCutoff:          "09:15",
		MinimumDailyHours:   8.0,
		OvertimeEscapeHours: 8.5,
		LateComingPenalty:   decimal.NewFromInt(100),
		OvertimeHourlyRate:  decimal.NewFromInt(200),
		AutoApproveMaxHours: 1.0,
	}
}

func newEngineFixture() *engineFixture {
	f := &engineFixture{
		periodRepo:  newFakePeriodRepo(),
		payslipRepo: newFakePayslipRepo(),
		employees: &fakeEmployeeRepo{
			employees: make(map[string]employee.Employee),
		},
		attendance: &fakeAttendanceSnapshot{days: make(map[string][]attendance.AttendanceDay)},
		overtimes:  &fakeOvertimeSnapshot{requests: make(map[string][]overtime.OvertimeRequest)},
	}
	f.svc = NewPayrollService(
		f.periodRepo,
		f.payslipRepo,
		f.employees,
		f.attendance,
		f.overtimes,
		testPolicy(),
		keymutex.New(),
		audit.NopSink{},
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		nil,
	)
	return f
}

func (f *engineFixture) addPeriod(id string, status payroll.PeriodStatus) {
	f.periodRepo.periods[id] = payroll.PayrollPeriod{
		ID:               id,
		Label:            "March 2026",
		StartDate:        time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		EndDate:          time.Date(2026, 3, 31, 0, 0, 0, 0, time.UTC),
		Status:           status,
		TotalWorkingDays: 26,
	}
}

func (f *engineFixture) addEmployee(id string, baseSalary int64) {
	f.employees.employees[id] = employee.Employee{
		ID:               id,
		EmployeeCode:     "2024-0001",
		FullName:         "Asha Nair",
		BaseSalary:       decimal.NewFromInt(baseSalary),
		EmploymentStatus: employee.EmploymentStatusActive,
	}
	f.employees.active = append(f.employees.active, id)
}

func (f *engineFixture) addDays(employeeID string, status attendance.AttendanceStatus, count int) {
	for i := 0; i < count; i++ {
		f.attendance.days[employeeID] = append(f.attendance.days[employeeID], attendance.AttendanceDay{
			EmployeeID: employeeID,
			Date:       time.Date(2026, 3, 2+len(f.attendance.days[employeeID]), 0, 0, 0, 0, time.UTC),
			Status:     status,
			TotalHours: 8.0,
		})
	}
}

func TestComputePayslipAbsentAndLateDeductions(t *testing.T) {
	f := newEngineFixture()
	f.addPeriod("per-1", payroll.PeriodStatusDraft)
	f.addEmployee("emp-1", 78000)
	f.addDays("emp-1", attendance.StatusPresent, 21)
	f.addDays("emp-1", attendance.StatusAbsent, 3)
	f.addDays("emp-1", attendance.StatusLate, 2)

	resp, err := f.svc.ComputePayslip(context.Background(), "emp-1", "per-1")
	require.NoError(t, err)

	// 78000 / 26 = 3000 per day; 3 absents = 9000; 2 lates at 100 = 200.
	assert.True(t, resp.Deductions.AttendanceDeduction.Equal(decimal.NewFromInt(9200)),
		"got %s", resp.Deductions.AttendanceDeduction)

	assert.Equal(t, 23, resp.Summary.PresentDays)
	assert.Equal(t, 3, resp.Summary.AbsentDays)
	assert.Equal(t, 2, resp.Summary.LateComings)
	assert.True(t, resp.PayableDays.Equal(decimal.NewFromInt(23)), "got %s", resp.PayableDays)
}

func TestComputePayslipTotalsInvariant(t *testing.T) {
	f := newEngineFixture()
	f.addPeriod("per-1", payroll.PeriodStatusDraft)
	f.addEmployee("emp-1", 78000)
	f.employees.employees["emp-1"] = func() employee.Employee {
		emp := f.employees.employees["emp-1"]
		emp.Compensation = employee.Compensation{
			HRA:              decimal.NewFromInt(12000),
			MedicalAllowance: decimal.NewFromInt(1500),
			PF:               decimal.NewFromInt(1800),
			ProfessionalTax:  decimal.NewFromInt(200),
		}
		return emp
	}()
	f.addDays("emp-1", attendance.StatusAbsent, 1)
	f.overtimes.requests["emp-1"] = []overtime.OvertimeRequest{
		{EmployeeID: "emp-1", Hours: 2.5, Status: overtime.StatusApproved},
	}

	resp, err := f.svc.ComputePayslip(context.Background(), "emp-1", "per-1")
	require.NoError(t, err)

	earningsSum := resp.Earnings.BasicSalary.
		Add(resp.Earnings.HRA).
		Add(resp.Earnings.ConveyanceAllowance).
		Add(resp.Earnings.MedicalAllowance).
		Add(resp.Earnings.SpecialAllowance).
		Add(resp.Earnings.Bonus).
		Add(resp.Earnings.OvertimePay).
		Add(resp.Earnings.Arrears).
		Add(resp.Earnings.OtherEarnings)
	assert.True(t, resp.Earnings.Total.Equal(earningsSum))

	deductionsSum := resp.Deductions.PF.
		Add(resp.Deductions.ESI).
		Add(resp.Deductions.ProfessionalTax).
		Add(resp.Deductions.TDS).
		Add(resp.Deductions.LoanDeduction).
		Add(resp.Deductions.LeaveDeduction).
		Add(resp.Deductions.AttendanceDeduction).
		Add(resp.Deductions.OtherDeductions)
	assert.True(t, resp.Deductions.Total.Equal(deductionsSum))

	assert.True(t, resp.NetPay.Equal(resp.Earnings.Total.Sub(resp.Deductions.Total)))

	// 2.5 approved hours at 200 per hour.
	assert.True(t, resp.Earnings.OvertimePay.Equal(decimal.NewFromInt(500)),
		"got %s", resp.Earnings.OvertimePay)
}

func TestComputePayslipWaiverZeroesAttendanceDeduction(t *testing.T) {
	f := newEngineFixture()
	f.addPeriod("per-1", payroll.PeriodStatusDraft)
	f.addEmployee("emp-1", 78000)
	f.addDays("emp-1", attendance.StatusAbsent, 3)

	err := f.svc.GrantWaiver(context.Background(), payroll.WaiverRequest{
		EmployeeID:      "emp-1",
		PayrollPeriodID: "per-1",
		Reason:          "bereavement leave recorded late",
		Actor:           "hr-1",
	})
	require.NoError(t, err)

	resp, err := f.svc.ComputePayslip(context.Background(), "emp-1", "per-1")
	require.NoError(t, err)

	assert.True(t, resp.Deductions.AttendanceDeduction.IsZero())
	assert.True(t, resp.WaiverApplied)
	require.NotNil(t, resp.WaiverReason)
	assert.Equal(t, "bereavement leave recorded late", *resp.WaiverReason)
}

func TestComputePayslipTwiceFails(t *testing.T) {
	f := newEngineFixture()
	f.addPeriod("per-1", payroll.PeriodStatusDraft)
	f.addEmployee("emp-1", 78000)

	_, err := f.svc.ComputePayslip(context.Background(), "emp-1", "per-1")
	require.NoError(t, err)

	_, err = f.svc.ComputePayslip(context.Background(), "emp-1", "per-1")
	assert.ErrorIs(t, err, payroll.ErrPayslipAlreadyExists)
}

func TestComputePayslipUnknownEmployeeFails(t *testing.T) {
	f := newEngineFixture()
	f.addPeriod("per-1", payroll.PeriodStatusDraft)

	_, err := f.svc.ComputePayslip(context.Background(), "ghost", "per-1")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestComputePayslipNegativeNetIsFlaggedNotClamped(t *testing.T) {
	f := newEngineFixture()
	f.addPeriod("per-1", payroll.PeriodStatusDraft)
	// Five late penalties of 100 outweigh a 260 salary.
	f.addEmployee("emp-1", 260)
	f.addDays("emp-1", attendance.StatusLate, 5)

	resp, err := f.svc.ComputePayslip(context.Background(), "emp-1", "per-1")
	require.NoError(t, err)

	assert.True(t, resp.NegativeNet)
	assert.True(t, resp.NetPay.IsNegative())
}

func TestProcessPayrollMovesPeriodToPending(t *testing.T) {
	f := newEngineFixture()
	f.addPeriod("per-1", payroll.PeriodStatusDraft)
	f.addEmployee("emp-1", 78000)
	f.addEmployee("emp-2", 52000)

	result, err := f.svc.ProcessPayroll(context.Background(), "per-1")
	require.NoError(t, err)

	assert.Equal(t, 2, result.Succeeded)
	assert.Equal(t, 0, result.Failed)
	assert.Equal(t, "pending", result.Status)

	period, err := f.periodRepo.GetByID(context.Background(), "per-1")
	require.NoError(t, err)
	assert.Equal(t, payroll.PeriodStatusPending, period.Status)
}

func TestProcessPayrollReportsPerEmployeeFailures(t *testing.T) {
	f := newEngineFixture()
	f.addPeriod("per-1", payroll.PeriodStatusDraft)
	f.addEmployee("emp-1", 78000)
	// emp-2 appears in scope but has no master data row.
	f.employees.active = append(f.employees.active, "emp-2")

	result, err := f.svc.ProcessPayroll(context.Background(), "per-1")
	require.NoError(t, err)

	assert.Equal(t, 1, result.Succeeded)
	assert.Equal(t, 1, result.Failed)
	require.Len(t, result.Outcomes, 2)

	var failed *payroll.EmployeeOutcomeResponse
	for i := range result.Outcomes {
		if result.Outcomes[i].Error != nil {
			failed = &result.Outcomes[i]
		}
	}
	require.NotNil(t, failed)
	assert.Equal(t, "emp-2", failed.EmployeeID)

	// The run still completes; the period is pending.
	period, err := f.periodRepo.GetByID(context.Background(), "per-1")
	require.NoError(t, err)
	assert.Equal(t, payroll.PeriodStatusPending, period.Status)
}

func TestProcessPayrollOnProcessedPeriodFails(t *testing.T) {
	f := newEngineFixture()
	f.addPeriod("per-1", payroll.PeriodStatusPending)

	_, err := f.svc.ProcessPayroll(context.Background(), "per-1")
	assert.ErrorIs(t, err, payroll.ErrPeriodAlreadyProcessed)
}

func TestProcessPayrollConcurrentRunsExactlyOneWins(t *testing.T) {
	f := newEngineFixture()
	f.addPeriod("per-1", payroll.PeriodStatusDraft)
	for i := 0; i < 20; i++ {
		f.addEmployee("emp-"+string(rune('a'+i)), 50000)
	}

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.ProcessPayroll(context.Background(), "per-1")
		}(i)
	}
	wg.Wait()

	var succeeded, rejected int
	for _, err := range errs {
		switch {
		case err == nil:
			succeeded++
		case errors.Is(err, payroll.ErrConcurrentProcessingConflict),
			errors.Is(err, payroll.ErrPeriodAlreadyProcessed):
			rejected++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, 1, rejected)

	// No duplicate records.
	records, err := f.payslipRepo.ListByPeriod(context.Background(), "per-1")
	require.NoError(t, err)
	assert.Len(t, records, 20)
}

func TestProcessPayrollCancelledRunRevertsToDraft(t *testing.T) {
	f := newEngineFixture()
	f.addPeriod("per-1", payroll.PeriodStatusDraft)
	f.addEmployee("emp-1", 78000)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.svc.ProcessPayroll(ctx, "per-1")
	require.Error(t, err)

	period, err := f.periodRepo.GetByID(context.Background(), "per-1")
	require.NoError(t, err)
	assert.Equal(t, payroll.PeriodStatusDraft, period.Status)

	// A later run on the reverted period succeeds.
	result, err := f.svc.ProcessPayroll(context.Background(), "per-1")
	require.NoError(t, err)
	assert.Equal(t, 1, result.Succeeded)
}

func TestMarkPaidGuardsAndLocksRecords(t *testing.T) {
	f := newEngineFixture()
	f.addPeriod("per-1", payroll.PeriodStatusDraft)
	f.addEmployee("emp-1", 78000)

	_, err := f.svc.MarkPaid(context.Background(), "per-1")
	assert.ErrorIs(t, err, payroll.ErrPeriodNotPending)

	_, err = f.svc.ProcessPayroll(context.Background(), "per-1")
	require.NoError(t, err)

	resp, err := f.svc.MarkPaid(context.Background(), "per-1")
	require.NoError(t, err)
	assert.Equal(t, "paid", resp.Status)

	// Records are immutable once paid.
	record, err := f.payslipRepo.GetByEmployeeAndPeriod(context.Background(), "emp-1", "per-1")
	require.NoError(t, err)
	assert.True(t, record.Locked)

	_, err = f.svc.ComputePayslip(context.Background(), "emp-1", "per-1")
	assert.ErrorIs(t, err, payroll.ErrRecordImmutable)

	// And the period cannot be processed again.
	_, err = f.svc.ProcessPayroll(context.Background(), "per-1")
	assert.ErrorIs(t, err, payroll.ErrPeriodAlreadyProcessed)
}

func TestGrantWaiverOnPaidPeriodFails(t *testing.T) {
	f := newEngineFixture()
	f.addPeriod("per-1", payroll.PeriodStatusPaid)
	f.addEmployee("emp-1", 78000)

	err := f.svc.GrantWaiver(context.Background(), payroll.WaiverRequest{
		EmployeeID:      "emp-1",
		PayrollPeriodID: "per-1",
		Reason:          "too late",
		Actor:           "hr-1",
	})
	assert.ErrorIs(t, err, payroll.ErrRecordImmutable)
}

func TestCreatePeriodValidation(t *testing.T) {
	f := newEngineFixture()

	_, err := f.svc.CreatePeriod(context.Background(), payroll.CreatePeriodRequest{
		Label:            "April 2026",
		StartDate:        "2026-04-01",
		EndDate:          "2026-03-01",
		TotalWorkingDays: 26,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "end_date")

	resp, err := f.svc.CreatePeriod(context.Background(), payroll.CreatePeriodRequest{
		Label:            "April 2026",
		StartDate:        "2026-04-01",
		EndDate:          "2026-04-30",
		TotalWorkingDays: 26,
	})
	require.NoError(t, err)
	assert.Equal(t, "draft", resp.Status)
}

func TestComputePayslipRejectedOnPaidPeriod(t *testing.T) {
	f := newEngineFixture()
	f.addPeriod("per-1", payroll.PeriodStatusPaid)
	f.addEmployee("emp-1", 78000)
	f.addDays("emp-1", attendance.StatusPresent, 26)

	_, err := f.svc.ComputePayslip(context.Background(), "emp-1", "per-1")
	assert.ErrorIs(t, err, payroll.ErrRecordImmutable)

	// No unlocked record slipped into the paid period.
	_, err = f.payslipRepo.GetByEmployeeAndPeriod(context.Background(), "emp-1", "per-1")
	assert.ErrorIs(t, err, payroll.ErrPayslipNotFound)
}

func TestComputePayslipRejectedWhileRunInProcess(t *testing.T) {
	f := newEngineFixture()
	f.addPeriod("per-1", payroll.PeriodStatusInProcess)
	f.addEmployee("emp-1", 78000)

	_, err := f.svc.ComputePayslip(context.Background(), "emp-1", "per-1")
	assert.ErrorIs(t, err, payroll.ErrConcurrentProcessingConflict)
}

func TestProcessPayrollFreezesFactsBeforeWriting(t *testing.T) {
	f := newEngineFixture()
	f.addPeriod("per-1", payroll.PeriodStatusDraft)
	f.addEmployee("emp-a", 78000)
	f.addEmployee("emp-b", 78000)
	f.addDays("emp-a", attendance.StatusPresent, 26)
	f.addDays("emp-b", attendance.StatusPresent, 26)

	// A correction lands mid-run, between the first and second record write.
	// It must only affect the next run, not this one.
	var corrected bool
	f.payslipRepo.onCreate = func(payroll.PayslipRecord) {
		if corrected {
			return
		}
		corrected = true
		days := make([]attendance.AttendanceDay, 0, 26)
		for i := 0; i < 26; i++ {
			status := attendance.StatusPresent
			if i < 5 {
				status = attendance.StatusAbsent
			}
			days = append(days, attendance.AttendanceDay{
				EmployeeID: "emp-b",
				Date:       time.Date(2026, 3, 2+i, 0, 0, 0, 0, time.UTC),
				Status:     status,
				TotalHours: 8.0,
			})
		}
		f.attendance.days["emp-b"] = days
	}

	result, err := f.svc.ProcessPayroll(context.Background(), "per-1")
	require.NoError(t, err)
	require.Equal(t, 2, result.Succeeded)

	record, err := f.payslipRepo.GetByEmployeeAndPeriod(context.Background(), "emp-b", "per-1")
	require.NoError(t, err)
	assert.Equal(t, 0, record.Summary.AbsentDays)
	assert.True(t, record.Deductions.AttendanceDeduction.IsZero(),
		"got %s", record.Deductions.AttendanceDeduction)
}
