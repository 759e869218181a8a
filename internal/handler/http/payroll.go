package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/payroll"
	"github.com/cmlabs-hris/payroll-engine-go/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/jwt"
	payslipservice "github.com/cmlabs-hris/payroll-engine-go/internal/service/payslip"
	"github.com/go-chi/chi/v5"
)

type PayrollHandler interface {
	CreatePeriod(w http.ResponseWriter, r *http.Request)
	GetPeriod(w http.ResponseWriter, r *http.Request)
	ListPeriods(w http.ResponseWriter, r *http.Request)
	ProcessPayroll(w http.ResponseWriter, r *http.Request)
	MarkPaid(w http.ResponseWriter, r *http.Request)
	GrantWaiver(w http.ResponseWriter, r *http.Request)
	ComputePayslip(w http.ResponseWriter, r *http.Request)
	GetPayslip(w http.ResponseWriter, r *http.Request)
	ListPayslips(w http.ResponseWriter, r *http.Request)
	DownloadPayslip(w http.ResponseWriter, r *http.Request)
}

type PayrollHandlerImpl struct {
	payrollService payroll.PayrollService
	payslipService payslipservice.PayslipService
	jwtService     jwt.Service
}

func NewPayrollHandler(
	payrollService payroll.PayrollService,
	payslipService payslipservice.PayslipService,
	jwtService jwt.Service,
) PayrollHandler {
	return &PayrollHandlerImpl{
		payrollService: payrollService,
		payslipService: payslipService,
		jwtService:     jwtService,
	}
}

func (h *PayrollHandlerImpl) CreatePeriod(w http.ResponseWriter, r *http.Request) {
	var req payroll.CreatePeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	period, err := h.payrollService.CreatePeriod(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payroll period created", period)
}

func (h *PayrollHandlerImpl) GetPeriod(w http.ResponseWriter, r *http.Request) {
	period, err := h.payrollService.GetPeriod(r.Context(), chi.URLParam(r, "periodID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, period)
}

func (h *PayrollHandlerImpl) ListPeriods(w http.ResponseWriter, r *http.Request) {
	periods, err := h.payrollService.ListPeriods(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, periods)
}

func (h *PayrollHandlerImpl) ProcessPayroll(w http.ResponseWriter, r *http.Request) {
	result, err := h.payrollService.ProcessPayroll(r.Context(), chi.URLParam(r, "periodID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *PayrollHandlerImpl) MarkPaid(w http.ResponseWriter, r *http.Request) {
	period, err := h.payrollService.MarkPaid(r.Context(), chi.URLParam(r, "periodID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, period)
}

func (h *PayrollHandlerImpl) GrantWaiver(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r, h.jwtService)
	if err != nil {
		response.Unauthorized(w, "Invalid token claims")
		return
	}

	var req payroll.WaiverRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.PayrollPeriodID = chi.URLParam(r, "periodID")
	req.Actor = actor.EmployeeID

	if err := h.payrollService.GrantWaiver(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Waiver recorded", nil)
}

func (h *PayrollHandlerImpl) ComputePayslip(w http.ResponseWriter, r *http.Request) {
	record, err := h.payrollService.ComputePayslip(
		r.Context(),
		chi.URLParam(r, "employeeID"),
		chi.URLParam(r, "periodID"),
	)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Payslip computed", record)
}

func (h *PayrollHandlerImpl) GetPayslip(w http.ResponseWriter, r *http.Request) {
	record, err := h.payrollService.GetPayslip(
		r.Context(),
		chi.URLParam(r, "employeeID"),
		chi.URLParam(r, "periodID"),
	)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, record)
}

func (h *PayrollHandlerImpl) ListPayslips(w http.ResponseWriter, r *http.Request) {
	records, err := h.payrollService.ListPayslips(r.Context(), chi.URLParam(r, "periodID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, records)
}

// DownloadPayslip streams the rendered document. Employees may only fetch
// their own; HR may fetch anyone's.
func (h *PayrollHandlerImpl) DownloadPayslip(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r, h.jwtService)
	if err != nil {
		response.Unauthorized(w, "Invalid token claims")
		return
	}

	employeeID := chi.URLParam(r, "employeeID")
	if actor.Role != jwt.RoleHR && actor.EmployeeID != employeeID {
		response.Forbidden(w, "Cannot access another employee's payslip")
		return
	}

	doc, err := h.payslipService.RenderPayslip(r.Context(), employeeID, chi.URLParam(r, "periodID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Document(w, doc)
}
