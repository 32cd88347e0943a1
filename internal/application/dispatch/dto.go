package dispatch

import (
	"time"

	"github.com/freightpro/backend/internal/domain/dispatch"
	"github.com/google/uuid"
)

// ==================== Manifest DTOs ====================

// CreateManifestRequest represents a request to create a loading manifest
type CreateManifestRequest struct {
	DestinationBranchID uuid.UUID           `json:"destination_branch_id" binding:"required"`
	VehicleNumber       string              `json:"vehicle_number" binding:"required,min=1,max=20"`
	DriverName          string              `json:"driver_name" binding:"max=200"`
	DepartureDate       time.Time           `json:"departure_date" binding:"required"`
	Lines               []ManifestLineInput `json:"lines"`
}

// ManifestLineInput identifies one booking line to carry on the manifest
type ManifestLineInput struct {
	BookingID uuid.UUID `json:"booking_id" binding:"required"`
	LineID    uuid.UUID `json:"line_id" binding:"required"`
}

// ManifestListFilter represents filter options for manifest lists
type ManifestListFilter struct {
	DestinationBranchID *uuid.UUID `form:"destination_branch_id"`
	Status              *string    `form:"status"`
	StartDate           *time.Time `form:"start_date"`
	EndDate             *time.Time `form:"end_date"`
	Page                int        `form:"page" binding:"min=0"`
	PageSize            int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy             string     `form:"order_by"`
	OrderDir            string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ManifestLineResponse represents a member line in API responses
type ManifestLineResponse struct {
	ID            uuid.UUID `json:"id"`
	BookingID     uuid.UUID `json:"booking_id"`
	LineID        uuid.UUID `json:"line_id"`
	Status        string    `json:"status"`
	FailureReason string    `json:"failure_reason,omitempty"`
}

// ManifestResponse represents a loading manifest in API responses
type ManifestResponse struct {
	ID                  uuid.UUID              `json:"id"`
	OrgID               uuid.UUID              `json:"org_id"`
	BranchID            uuid.UUID              `json:"branch_id"`
	ManifestNumber      string                 `json:"manifest_number"`
	DestinationBranchID uuid.UUID              `json:"destination_branch_id"`
	VehicleNumber       string                 `json:"vehicle_number"`
	DriverName          string                 `json:"driver_name"`
	DepartureDate       time.Time              `json:"departure_date"`
	Status              string                 `json:"status"`
	Lines               []ManifestLineResponse `json:"lines"`
	DispatchedAt        *time.Time             `json:"dispatched_at,omitempty"`
	CompletedAt         *time.Time             `json:"completed_at,omitempty"`
	Version             int                    `json:"version"`
	CreatedAt           time.Time              `json:"created_at"`
	UpdatedAt           time.Time              `json:"updated_at"`
}

// LineOutcome is the per-line result of one bulk phase
type LineOutcome struct {
	LineID    uuid.UUID `json:"line_id"`
	BookingID uuid.UUID `json:"booking_id"`
	Succeeded bool      `json:"succeeded"`
	Reason    string    `json:"reason,omitempty"`
}

// PhaseResultResponse reports the outcome of a dispatch or completion phase.
// Individual failures are listed alongside the manifest's resulting status;
// the caller decides whether to retry the unresolved lines.
type PhaseResultResponse struct {
	Manifest ManifestResponse `json:"manifest"`
	Outcomes []LineOutcome    `json:"outcomes"`
}

// ToManifestResponse converts a domain manifest to a response DTO
func ToManifestResponse(m *dispatch.LoadingManifest) ManifestResponse {
	lines := make([]ManifestLineResponse, 0, len(m.Lines))
	for _, line := range m.Lines {
		lines = append(lines, ManifestLineResponse{
			ID:            line.ID,
			BookingID:     line.BookingID,
			LineID:        line.LineID,
			Status:        string(line.Status),
			FailureReason: line.FailureReason,
		})
	}

	return ManifestResponse{
		ID:                  m.ID,
		OrgID:               m.OrgID,
		BranchID:            m.BranchID,
		ManifestNumber:      m.ManifestNumber,
		DestinationBranchID: m.DestinationBranchID,
		VehicleNumber:       m.VehicleNumber,
		DriverName:          m.DriverName,
		DepartureDate:       m.DepartureDate,
		Status:              m.Status.String(),
		Lines:               lines,
		DispatchedAt:        m.DispatchedAt,
		CompletedAt:         m.CompletedAt,
		Version:             m.GetVersion(),
		CreatedAt:           m.CreatedAt,
		UpdatedAt:           m.UpdatedAt,
	}
}

// ToManifestResponses converts domain manifests to response DTOs
func ToManifestResponses(manifests []dispatch.LoadingManifest) []ManifestResponse {
	out := make([]ManifestResponse, 0, len(manifests))
	for idx := range manifests {
		out = append(out, ToManifestResponse(&manifests[idx]))
	}
	return out
}
