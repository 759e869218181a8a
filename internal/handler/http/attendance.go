package http

import (
	"encoding/json"
	"net/http"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/attendance"
	"github.com/cmlabs-hris/payroll-engine-go/internal/handler/http/response"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/payroll-engine-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/jwtauth/v5"
)

type AttendanceHandler interface {
	PunchIn(w http.ResponseWriter, r *http.Request)
	PunchOut(w http.ResponseWriter, r *http.Request)
	StartBreak(w http.ResponseWriter, r *http.Request)
	EndBreak(w http.ResponseWriter, r *http.Request)
	Regularize(w http.ResponseWriter, r *http.Request)
	GetDay(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type AttendanceHandlerImpl struct {
	attendanceService attendance.AttendanceService
	jwtService        jwt.Service
}

func NewAttendanceHandler(attendanceService attendance.AttendanceService, jwtService jwt.Service) AttendanceHandler {
	return &AttendanceHandlerImpl{
		attendanceService: attendanceService,
		jwtService:        jwtService,
	}
}

// actorFromRequest resolves the authenticated caller from the verified token.
func actorFromRequest(r *http.Request, jwtService jwt.Service) (jwt.Actor, error) {
	_, claims, err := jwtauth.FromContext(r.Context())
	if err != nil {
		return jwt.Actor{}, err
	}
	return jwtService.ActorFromClaims(claims)
}

func (h *AttendanceHandlerImpl) PunchIn(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r, h.jwtService)
	if err != nil {
		response.Unauthorized(w, "Invalid token claims")
		return
	}

	var req attendance.PunchInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = actor.EmployeeID

	day, err := h.attendanceService.PunchIn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Punched in", day)
}

func (h *AttendanceHandlerImpl) PunchOut(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r, h.jwtService)
	if err != nil {
		response.Unauthorized(w, "Invalid token claims")
		return
	}

	var req attendance.PunchOutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = actor.EmployeeID

	day, err := h.attendanceService.PunchOut(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, day)
}

func (h *AttendanceHandlerImpl) StartBreak(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r, h.jwtService)
	if err != nil {
		response.Unauthorized(w, "Invalid token claims")
		return
	}

	var req attendance.BreakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = actor.EmployeeID

	day, err := h.attendanceService.StartBreak(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, day)
}

func (h *AttendanceHandlerImpl) EndBreak(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r, h.jwtService)
	if err != nil {
		response.Unauthorized(w, "Invalid token claims")
		return
	}

	var req attendance.BreakRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = actor.EmployeeID

	day, err := h.attendanceService.EndBreak(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, day)
}

func (h *AttendanceHandlerImpl) Regularize(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r, h.jwtService)
	if err != nil {
		response.Unauthorized(w, "Invalid token claims")
		return
	}

	var req attendance.RegularizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	req.EmployeeID = chi.URLParam(r, "employeeID")
	req.Actor = actor.EmployeeID

	day, err := h.attendanceService.Regularize(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, day)
}

func (h *AttendanceHandlerImpl) GetDay(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r, h.jwtService)
	if err != nil {
		response.Unauthorized(w, "Invalid token claims")
		return
	}

	date := chi.URLParam(r, "date")
	if _, ok := validator.IsValidDate(date); !ok {
		response.BadRequest(w, "Date must be a valid YYYY-MM-DD date", nil)
		return
	}

	day, err := h.attendanceService.GetDay(r.Context(), actor.EmployeeID, date)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, day)
}

func (h *AttendanceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	filter := attendance.AttendanceFilter{
		Page:  parsePage(r),
		Limit: parseLimit(r),
	}

	if v := r.URL.Query().Get("employee_id"); v != "" {
		filter.EmployeeID = &v
	}
	if v := r.URL.Query().Get("status"); v != "" {
		status := attendance.AttendanceStatus(v)
		if !status.IsValid() {
			response.BadRequest(w, "Unknown attendance status", nil)
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

	days, err := h.attendanceService.List(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, days)
}
