package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/overtime"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	payslipdomain "github.com/cmlabs-hris/payroll-engine-go/internal/domain/payslip"
	"github.com/cmlabs-hris/payroll-engine-go/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const routerTestSecret = "test-secret-key-for-jwt"

type fakeAttendanceService struct {
	lastPunchIn attendance.PunchInRequest
}

func (f *fakeAttendanceService) PunchIn(ctx context.Context, req attendance.PunchInRequest) (attendance.AttendanceDayResponse, error) {
	f.lastPunchIn = req
	return attendance.AttendanceDayResponse{ID: "day-1", EmployeeID: req.EmployeeID, Status: "present"}, nil
}

func (f *fakeAttendanceService) PunchOut(ctx context.Context, req attendance.PunchOutRequest) (attendance.AttendanceDayResponse, error) {
	return attendance.AttendanceDayResponse{}, attendance.ErrNotPunchedIn
}

func (f *fakeAttendanceService) StartBreak(ctx context.Context, req attendance.BreakRequest) (attendance.AttendanceDayResponse, error) {
	return attendance.AttendanceDayResponse{}, nil
}

func (f *fakeAttendanceService) EndBreak(ctx context.Context, req attendance.BreakRequest) (attendance.AttendanceDayResponse, error) {
	return attendance.AttendanceDayResponse{}, attendance.ErrInvalidBreakTransition
}

func (f *fakeAttendanceService) Regularize(ctx context.Context, req attendance.RegularizeRequest) (attendance.AttendanceDayResponse, error) {
	return attendance.AttendanceDayResponse{ID: "day-1", EmployeeID: req.EmployeeID, Regularized: true}, nil
}

func (f *fakeAttendanceService) GetDay(ctx context.Context, employeeID string, date string) (attendance.AttendanceDayResponse, error) {
	return attendance.AttendanceDayResponse{}, attendance.ErrAttendanceNotFound
}

func (f *fakeAttendanceService) List(ctx context.Context, filter attendance.AttendanceFilter) (attendance.ListAttendanceResponse, error) {
	return attendance.ListAttendanceResponse{Page: filter.Page, Limit: filter.Limit}, nil
}

type fakeOvertimeService struct {
	lastSubmit overtime.SubmitRequest
	lastReview overtime.ReviewRequest
}

func (f *fakeOvertimeService) Submit(ctx context.Context, req overtime.SubmitRequest) (overtime.OvertimeResponse, error) {
	f.lastSubmit = req
	return overtime.OvertimeResponse{ID: "ot-1", EmployeeID: req.EmployeeID, Status: string(overtime.StatusPending)}, nil
}

func (f *fakeOvertimeService) Review(ctx context.Context, req overtime.ReviewRequest) (overtime.OvertimeResponse, error) {
	f.lastReview = req
	return overtime.OvertimeResponse{ID: req.RequestID, Status: string(overtime.StatusApproved)}, nil
}

func (f *fakeOvertimeService) Get(ctx context.Context, id string) (overtime.OvertimeResponse, error) {
	return overtime.OvertimeResponse{}, overtime.ErrRequestNotFound
}

func (f *fakeOvertimeService) List(ctx context.Context, filter overtime.OvertimeFilter) (overtime.ListOvertimeResponse, error) {
	requests := []overtime.OvertimeResponse{}
	if filter.EmployeeID != nil {
		requests = append(requests, overtime.OvertimeResponse{ID: "ot-1", EmployeeID: *filter.EmployeeID})
	}
	return overtime.ListOvertimeResponse{Page: filter.Page, Limit: filter.Limit, Requests: requests}, nil
}

type fakePayrollService struct{}

func (f *fakePayrollService) CreatePeriod(ctx context.Context, req payroll.CreatePeriodRequest) (payroll.PeriodResponse, error) {
	return payroll.PeriodResponse{ID: "period-1", Label: req.Label, Status: string(payroll.PeriodStatusDraft)}, nil
}

func (f *fakePayrollService) GetPeriod(ctx context.Context, id string) (payroll.PeriodResponse, error) {
	return payroll.PeriodResponse{}, payroll.ErrPeriodNotFound
}

func (f *fakePayrollService) ListPeriods(ctx context.Context) ([]payroll.PeriodResponse, error) {
	return nil, nil
}

func (f *fakePayrollService) ComputePayslip(ctx context.Context, employeeID, periodID string) (payroll.PayslipResponse, error) {
	return payroll.PayslipResponse{EmployeeID: employeeID, PayrollPeriodID: periodID}, nil
}

func (f *fakePayrollService) ProcessPayroll(ctx context.Context, periodID string) (payroll.RunResultResponse, error) {
	return payroll.RunResultResponse{}, payroll.ErrConcurrentProcessingConflict
}

func (f *fakePayrollService) MarkPaid(ctx context.Context, periodID string) (payroll.PeriodResponse, error) {
	return payroll.PeriodResponse{}, payroll.ErrPeriodNotPending
}

func (f *fakePayrollService) GrantWaiver(ctx context.Context, req payroll.WaiverRequest) error {
	return nil
}

func (f *fakePayrollService) GetPayslip(ctx context.Context, employeeID, periodID string) (payroll.PayslipResponse, error) {
	return payroll.PayslipResponse{}, payroll.ErrPayslipNotFound
}

func (f *fakePayrollService) ListPayslips(ctx context.Context, periodID string) ([]payroll.PayslipResponse, error) {
	return nil, nil
}

type fakePayslipService struct{}

func (f *fakePayslipService) RenderPayslip(ctx context.Context, employeeID, periodID string) (payslipdomain.Document, error) {
	return payslipdomain.Document{
		Filename:    "payslip-1001-2026-p1.txt",
		ContentType: "text/plain; charset=utf-8",
		Bytes:       []byte("PAYSLIP"),
	}, nil
}

type routerFixture struct {
	router     http.Handler
	jwtService jwt.Service
	attendance *fakeAttendanceService
	overtimes  *fakeOvertimeService
}

func newRouterFixture() *routerFixture {
	f := &routerFixture{
		jwtService: jwt.NewJWTService(routerTestSecret),
		attendance: &fakeAttendanceService{},
		overtimes:  &fakeOvertimeService{},
	}
	attendanceHandler := NewAttendanceHandler(f.attendance, f.jwtService)
	overtimeHandler := NewOvertimeHandler(f.overtimes, f.jwtService)
	payrollHandler := NewPayrollHandler(&fakePayrollService{}, &fakePayslipService{}, f.jwtService)
	f.router = NewRouter(f.jwtService, attendanceHandler, overtimeHandler, payrollHandler)
	return f
}

func (f *routerFixture) token(t *testing.T, employeeID, role string) string {
	t.Helper()
	_, tokenString, err := f.jwtService.JWTAuth().Encode(map[string]interface{}{
		"employee_id": employeeID,
		"role":        role,
	})
	require.NoError(t, err)
	return tokenString
}

func (f *routerFixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var envelope response.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	return envelope
}

func TestRouter_RejectsMissingToken(t *testing.T) {
	f := newRouterFixture()

	rec := f.do(t, http.MethodPost, "/api/v1/attendance/punch-in", "", map[string]string{
		"timestamp": "2026-03-02T09:00:00Z",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_PunchInUsesTokenIdentity(t *testing.T) {
	f := newRouterFixture()
	token := f.token(t, "emp-1", jwt.RoleEmployee)

	rec := f.do(t, http.MethodPost, "/api/v1/attendance/punch-in", token, map[string]interface{}{
		// Body-supplied employee IDs are ignored; identity comes from the token.
		"employee_id": "emp-other",
		"timestamp":   "2026-03-02T09:00:00Z",
	})

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "emp-1", f.attendance.lastPunchIn.EmployeeID)

	envelope := decodeEnvelope(t, rec)
	assert.True(t, envelope.Success)
}

func TestRouter_EmployeeCannotReviewOvertime(t *testing.T) {
	f := newRouterFixture()
	token := f.token(t, "emp-1", jwt.RoleEmployee)

	rec := f.do(t, http.MethodPost, "/api/v1/overtime/ot-1/review", token, map[string]string{
		"decision": "approved",
	})

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_HRReviewsOvertime(t *testing.T) {
	f := newRouterFixture()
	token := f.token(t, "hr-1", jwt.RoleHR)

	rec := f.do(t, http.MethodPost, "/api/v1/overtime/ot-9/review", token, map[string]string{
		"decision": "approved",
	})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ot-9", f.overtimes.lastReview.RequestID)
	assert.Equal(t, "hr-1", f.overtimes.lastReview.Reviewer)
}

func TestRouter_EmployeeOvertimeListIsScopedToSelf(t *testing.T) {
	f := newRouterFixture()
	token := f.token(t, "emp-1", jwt.RoleEmployee)

	rec := f.do(t, http.MethodGet, "/api/v1/overtime/?employee_id=emp-other", token, nil)

	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data overtime.ListOvertimeResponse `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&envelope))
	require.Len(t, envelope.Data.Requests, 1)
	assert.Equal(t, "emp-1", envelope.Data.Requests[0].EmployeeID)
}

func TestRouter_EmployeeCannotCreatePeriod(t *testing.T) {
	f := newRouterFixture()
	token := f.token(t, "emp-1", jwt.RoleEmployee)

	rec := f.do(t, http.MethodPost, "/api/v1/payroll/periods/", token, map[string]interface{}{
		"label":              "March 2026",
		"start_date":         "2026-03-01",
		"end_date":           "2026-03-31",
		"total_working_days": 26,
	})

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_ProcessConflictMapsTo409(t *testing.T) {
	f := newRouterFixture()
	token := f.token(t, "hr-1", jwt.RoleHR)

	rec := f.do(t, http.MethodPost, "/api/v1/payroll/periods/period-1/process", token, nil)

	assert.Equal(t, http.StatusConflict, rec.Code)
	envelope := decodeEnvelope(t, rec)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "CONFLICT", envelope.Error.Code)
}

func TestRouter_PayslipDownloadOwnerOnly(t *testing.T) {
	f := newRouterFixture()

	otherToken := f.token(t, "emp-2", jwt.RoleEmployee)
	rec := f.do(t, http.MethodGet, "/api/v1/payroll/periods/period-1/payslips/emp-1/document", otherToken, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	ownerToken := f.token(t, "emp-1", jwt.RoleEmployee)
	rec = f.do(t, http.MethodGet, "/api/v1/payroll/periods/period-1/payslips/emp-1/document", ownerToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "payslip-1001-2026-p1.txt")
	assert.Equal(t, "PAYSLIP", rec.Body.String())
}

func TestRouter_NotFoundMapsTo404(t *testing.T) {
	f := newRouterFixture()
	token := f.token(t, "emp-1", jwt.RoleEmployee)

	rec := f.do(t, http.MethodGet, "/api/v1/attendance/days/2026-03-02", token, nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
