package overtime

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/audit"
	"github.com/cmlabs-hris/payroll-engine-go/internal/domain/overtime"
	"github.com/google/uuid"
)

type OvertimeServiceImpl struct {
	overtime.OvertimeRepository
	autoApproveMaxHours float64
	audit               audit.Sink
	now                 func() time.Time
}

func NewOvertimeService(
	overtimeRepo overtime.OvertimeRepository,
	autoApproveMaxHours float64,
	auditSink audit.Sink,
) overtime.OvertimeService {
	return &OvertimeServiceImpl{
		OvertimeRepository:  overtimeRepo,
		autoApproveMaxHours: autoApproveMaxHours,
		audit:               auditSink,
		now:                 time.Now,
	}
}

// Submit implements overtime.OvertimeService.
func (o *OvertimeServiceImpl) Submit(ctx context.Context, req overtime.SubmitRequest) (overtime.OvertimeResponse, error) {
	if err := req.Validate(); err != nil {
		return overtime.OvertimeResponse{}, err
	}

	date, _ := time.Parse("2006-01-02", req.Date)
	hours := math.Round(req.Hours*100) / 100

	status := overtime.StatusPending
	if hours <= o.autoApproveMaxHours {
		status = overtime.StatusAutoApproved
	}

	request := overtime.OvertimeRequest{
		ID:            uuid.New().String(),
		EmployeeID:    req.EmployeeID,
		Date:          date,
		Hours:         hours,
		Justification: req.Justification,
		Status:        status,
		SubmittedAt:   o.now(),
	}

	created, err := o.OvertimeRepository.Create(ctx, request)
	if err != nil {
		return overtime.OvertimeResponse{}, fmt.Errorf("failed to create overtime request: %w", err)
	}

	o.audit.Record(audit.Event{
		Actor:      req.EmployeeID,
		Action:     "overtime.submit",
		EntityType: "overtime_request",
		EntityID:   created.ID,
		Detail:     map[string]any{"hours": hours, "status": string(status)},
		At:         o.now(),
	})

	return mapRequestToResponse(created), nil
}

// Review implements overtime.OvertimeService.
func (o *OvertimeServiceImpl) Review(ctx context.Context, req overtime.ReviewRequest) (overtime.OvertimeResponse, error) {
	if err := req.Validate(); err != nil {
		return overtime.OvertimeResponse{}, err
	}

	request, err := o.OvertimeRepository.GetByID(ctx, req.RequestID)
	if err != nil {
		return overtime.OvertimeResponse{}, err
	}

	if request.Status.Resolved() {
		return overtime.OvertimeResponse{}, overtime.ErrAlreadyReviewed
	}

	switch req.Decision {
	case overtime.DecisionApprove:
		request.Status = overtime.StatusApproved
	case overtime.DecisionReject:
		request.Status = overtime.StatusRejected
	}

	reviewedAt := o.now()
	reviewer := req.Reviewer
	request.ReviewedBy = &reviewer
	request.ReviewedAt = &reviewedAt

	if err := o.OvertimeRepository.Update(ctx, request); err != nil {
		return overtime.OvertimeResponse{}, fmt.Errorf("failed to update overtime request: %w", err)
	}

	o.audit.Record(audit.Event{
		Actor:      req.Reviewer,
		Action:     "overtime.review",
		EntityType: "overtime_request",
		EntityID:   request.ID,
		Detail:     map[string]any{"decision": string(req.Decision)},
		At:         reviewedAt,
	})

	return mapRequestToResponse(request), nil
}

// Get implements overtime.OvertimeService.
func (o *OvertimeServiceImpl) Get(ctx context.Context, id string) (overtime.OvertimeResponse, error) {
	request, err := o.OvertimeRepository.GetByID(ctx, id)
	if err != nil {
		return overtime.OvertimeResponse{}, err
	}
	return mapRequestToResponse(request), nil
}

// List implements overtime.OvertimeService.
func (o *OvertimeServiceImpl) List(ctx context.Context, filter overtime.OvertimeFilter) (overtime.ListOvertimeResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}

	requests, total, err := o.OvertimeRepository.List(ctx, filter)
	if err != nil {
		return overtime.ListOvertimeResponse{}, fmt.Errorf("failed to list overtime requests: %w", err)
	}

	responses := make([]overtime.OvertimeResponse, 0, len(requests))
	for _, request := range requests {
		responses = append(responses, mapRequestToResponse(request))
	}

	return overtime.ListOvertimeResponse{
		TotalCount: total,
		Page:       filter.Page,
		Limit:      filter.Limit,
		Requests:   responses,
	}, nil
}

func mapRequestToResponse(request overtime.OvertimeRequest) overtime.OvertimeResponse {
	resp := overtime.OvertimeResponse{
		ID:            request.ID,
		EmployeeID:    request.EmployeeID,
		Date:          request.Date.Format("2006-01-02"),
		Hours:         request.Hours,
		Justification: request.Justification,
		Status:        string(request.Status),
		SubmittedAt:   request.SubmittedAt.Format(time.RFC3339),
		ReviewedBy:    request.ReviewedBy,
	}
	if request.ReviewedAt != nil {
		reviewedAt := request.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &reviewedAt
	}
	return resp
}
