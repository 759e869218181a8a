package overtime

import (
	"context"
)

// OvertimeService is the request/approval workflow that turns ad-hoc extra
// work into payroll-eligible overtime hours.
type OvertimeService interface {
	// Submit validates and persists a request. Requests at or below the
	// auto-approval threshold transition straight to auto_approved.
	Submit(ctx context.Context, req SubmitRequest) (OvertimeResponse, error)

	// Review resolves a pending request. Re-reviewing fails with
	// ErrAlreadyReviewed; transitions are one-way.
	Review(ctx context.Context, req ReviewRequest) (OvertimeResponse, error)

	// Get retrieves one request.
	Get(ctx context.Context, id string) (OvertimeResponse, error)

	// List retrieves requests with filters.
	List(ctx context.Context, filter OvertimeFilter) (ListOvertimeResponse, error)
}
