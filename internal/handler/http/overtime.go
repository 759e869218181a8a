package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/overtime"
	"github.com/cmlabs-hris/payroll-engine-go/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

type OvertimeHandler interface {
	Submit(w http.ResponseWriter, r *http.Request)
	Review(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type OvertimeHandlerImpl struct {
	overtimeService overtime.OvertimeService
	jwtService      jwt.Service
}

func NewOvertimeHandler(overtimeService overtime.OvertimeService, jwtService jwt.Service) OvertimeHandler {
	return &OvertimeHandlerImpl{
		overtimeService: overtimeService,
		jwtService:      jwtService,
	}
}

func (h *OvertimeHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r, h.jwtService)
	if err != nil {
		response.Unauthorized(w, "Invalid token claims")
		return
	}

	var req overtime.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = actor.EmployeeID

	request, err := h.overtimeService.Submit(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Overtime request submitted", request)
}

func (h *OvertimeHandlerImpl) Review(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r, h.jwtService)
	if err != nil {
		response.Unauthorized(w, "Invalid token claims")
		return
	}

	var req overtime.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.RequestID = chi.URLParam(r, "requestID")
	req.Reviewer = actor.EmployeeID

	request, err := h.overtimeService.Review(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, request)
}

func (h *OvertimeHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	request, err := h.overtimeService.Get(r.Context(), chi.URLParam(r, "requestID"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, request)
}

func (h *OvertimeHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r, h.jwtService)
	if err != nil {
		response.Unauthorized(w, "Invalid token claims")
		return
	}

	filter := overtime.OvertimeFilter{
		Page:  parsePage(r),
		Limit: parseLimit(r),
	}

	// Employees only see their own requests. HR may scope by employee_id.
	if actor.Role == jwt.RoleHR {
		if v := r.URL.Query().Get("employee_id"); v != "" {
			filter.EmployeeID = &v
		}
	} else {
		filter.EmployeeID = &actor.EmployeeID
	}

	if v := r.URL.Query().Get("status"); v != "" {
		status := overtime.OvertimeStatus(v)
		if !status.IsValid() {
			response.BadRequest(w, "Unknown overtime status", nil)
			return
		}
		filter.Status = &status
	}
	if v := r.URL.Query().Get("start_date"); v != "" {
		t, ok := validator.IsValidDate(v)
		if !ok {
			response.BadRequest(w, "start_date must be a valid YYYY-MM-DD date", nil)
			return
		}
		filter.StartDate = &t
	}
	if v := r.URL.Query().Get("end_date"); v != "" {
		t, ok := validator.IsValidDate(v)
		if !ok {
			response.BadRequest(w, "end_date must be a valid YYYY-MM-DD date", nil)
			return
		}
		filter.EndDate = &t
	}

	requests, err := h.overtimeService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, requests)
}
