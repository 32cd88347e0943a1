package handler

import (
	"context"

	dispatchapp "github.com/freightpro/backend/internal/application/dispatch"
	"github.com/freightpro/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ManifestHandler handles loading manifest API endpoints
type ManifestHandler struct {
	BaseHandler
	manifestService *dispatchapp.ManifestService
}

// NewManifestHandler creates a new ManifestHandler
func NewManifestHandler(manifestService *dispatchapp.ManifestService) *ManifestHandler {
	return &ManifestHandler{
		manifestService: manifestService,
	}
}

// Create opens a loading manifest for a vehicle run to one destination branch
func (h *ManifestHandler) Create(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req dispatchapp.CreateManifestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	manifest, err := h.manifestService.Create(c.Request.Context(), scope, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, manifest)
}

// GetByID retrieves a manifest by ID
func (h *ManifestHandler) GetByID(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	manifestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid manifest ID format")
		return
	}

	manifest, err := h.manifestService.GetByID(c.Request.Context(), scope, manifestID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, manifest)
}

// List retrieves a paginated list of manifests with optional filtering
func (h *ManifestHandler) List(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter dispatchapp.ManifestListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	manifests, total, err := h.manifestService.List(c.Request.Context(), scope, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, manifests, total, filter.Page, filter.PageSize)
}

// AddLine attaches a booked line to an open manifest
func (h *ManifestHandler) AddLine(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	manifestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid manifest ID format")
		return
	}

	var req dispatchapp.ManifestLineInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	manifest, err := h.manifestService.AddLine(c.Request.Context(), scope, manifestID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, manifest)
}

// RemoveLine detaches a line from an open manifest
func (h *ManifestHandler) RemoveLine(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	manifestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid manifest ID format")
		return
	}
	lineID, err := uuid.Parse(c.Param("line_id"))
	if err != nil {
		h.BadRequest(c, "Invalid line ID format")
		return
	}

	manifest, err := h.manifestService.RemoveLine(c.Request.Context(), scope, manifestID, lineID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, manifest)
}

// Dispatch sends the vehicle out, loading every attached line. Per-line
// failures are reported in the result rather than failing the whole phase.
func (h *ManifestHandler) Dispatch(c *gin.Context) {
	h.phaseOp(c, h.manifestService.Dispatch)
}

// Complete receives the vehicle at the destination branch and unloads or
// flags every carried line
func (h *ManifestHandler) Complete(c *gin.Context) {
	h.phaseOp(c, h.manifestService.Complete)
}

// Cancel cancels an open manifest before dispatch
func (h *ManifestHandler) Cancel(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	manifestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid manifest ID format")
		return
	}

	manifest, err := h.manifestService.Cancel(c.Request.Context(), scope, manifestID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, manifest)
}

func (h *ManifestHandler) phaseOp(c *gin.Context, op func(ctx context.Context, scope shared.Scope, manifestID uuid.UUID) (*dispatchapp.PhaseResultResponse, error)) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	manifestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid manifest ID format")
		return
	}

	result, err := op(c.Request.Context(), scope, manifestID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, result)
}
