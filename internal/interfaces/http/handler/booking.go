package handler

import (
	"context"

	bookingapp "github.com/freightpro/backend/internal/application/booking"
	"github.com/freightpro/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// BookingHandler handles booking-related API endpoints
type BookingHandler struct {
	BaseHandler
	bookingService *bookingapp.BookingService
}

// NewBookingHandler creates a new BookingHandler
func NewBookingHandler(bookingService *bookingapp.BookingService) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingService,
	}
}

// Create books a consignment with its initial article lines. The booking is
// owned by the origin branch taken from the caller's scope.
func (h *BookingHandler) Create(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req bookingapp.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	booking, err := h.bookingService.Create(c.Request.Context(), scope, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, booking)
}

// GetByID retrieves a booking by ID
func (h *BookingHandler) GetByID(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid booking ID format")
		return
	}

	booking, err := h.bookingService.GetByID(c.Request.Context(), scope, bookingID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, booking)
}

// GetByTrackingNumber retrieves a booking by its tracking number
func (h *BookingHandler) GetByTrackingNumber(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	trackingNumber := c.Param("tracking_number")
	if trackingNumber == "" {
		h.BadRequest(c, "Tracking number is required")
		return
	}

	booking, err := h.bookingService.GetByTrackingNumber(c.Request.Context(), scope, trackingNumber)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, booking)
}

// Track returns the public tracking view of a booking: overall status plus
// the custody state of every line, without rates or party details.
func (h *BookingHandler) Track(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	trackingNumber := c.Param("tracking_number")
	if trackingNumber == "" {
		h.BadRequest(c, "Tracking number is required")
		return
	}

	tracking, err := h.bookingService.Track(c.Request.Context(), scope, trackingNumber)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, tracking)
}

// List retrieves a paginated list of bookings with optional filtering
func (h *BookingHandler) List(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter bookingapp.BookingListFilter
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

	bookings, total, err := h.bookingService.List(c.Request.Context(), scope, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, bookings, total, filter.Page, filter.PageSize)
}

// AddLine adds an article line to a booking
func (h *BookingHandler) AddLine(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid booking ID format")
		return
	}

	var req bookingapp.AddLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	booking, err := h.bookingService.AddLine(c.Request.Context(), scope, bookingID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, booking)
}

// RepriceLine replaces a line's article, quantity, weight or rate, re-running
// rate resolution
func (h *BookingHandler) RepriceLine(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	bookingID, lineID, ok := h.bookingLineIDs(c)
	if !ok {
		return
	}

	var req bookingapp.RepriceLineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	booking, err := h.bookingService.RepriceLine(c.Request.Context(), scope, bookingID, lineID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, booking)
}

// RemoveLine deletes a line from a draft booking
func (h *BookingHandler) RemoveLine(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	bookingID, lineID, ok := h.bookingLineIDs(c)
	if !ok {
		return
	}

	booking, err := h.bookingService.RemoveLine(c.Request.Context(), scope, bookingID, lineID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, booking)
}

// CancelLine cancels a single line while the rest of the booking proceeds
func (h *BookingHandler) CancelLine(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	bookingID, lineID, ok := h.bookingLineIDs(c)
	if !ok {
		return
	}

	var req bookingapp.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	booking, err := h.bookingService.CancelLine(c.Request.Context(), scope, bookingID, lineID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, booking)
}

// LoadLine moves a line from BOOKED to LOADED custody
func (h *BookingHandler) LoadLine(c *gin.Context) {
	h.lineCustodyOp(c, h.bookingService.LoadLine)
}

// UnloadLine returns a loaded line to BOOKED custody
func (h *BookingHandler) UnloadLine(c *gin.Context) {
	h.lineCustodyOp(c, h.bookingService.UnloadLine)
}

// MarkLineOutForDelivery moves an in-transit line onto the delivery run
func (h *BookingHandler) MarkLineOutForDelivery(c *gin.Context) {
	h.lineCustodyOp(c, h.bookingService.MarkLineOutForDelivery)
}

// DeliverLine marks a line as delivered to the receiver
func (h *BookingHandler) DeliverLine(c *gin.Context) {
	h.lineCustodyOp(c, h.bookingService.DeliverLine)
}

// MarkLineDamaged flags a line as damaged with a mandatory reason
func (h *BookingHandler) MarkLineDamaged(c *gin.Context) {
	h.lineExceptionOp(c, h.bookingService.MarkLineDamaged)
}

// MarkLineMissing flags a line as missing with a mandatory reason
func (h *BookingHandler) MarkLineMissing(c *gin.Context) {
	h.lineExceptionOp(c, h.bookingService.MarkLineMissing)
}

// MarkInTransit records that the booking's consignment has left the origin
// branch
func (h *BookingHandler) MarkInTransit(c *gin.Context) {
	h.bookingOp(c, h.bookingService.MarkInTransit)
}

// Deliver closes out a booking whose lines have all reached a terminal state
func (h *BookingHandler) Deliver(c *gin.Context) {
	h.bookingOp(c, h.bookingService.Deliver)
}

// Cancel cancels a booking and every non-terminal line on it
func (h *BookingHandler) Cancel(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid booking ID format")
		return
	}

	var req bookingapp.CancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	booking, err := h.bookingService.Cancel(c.Request.Context(), scope, bookingID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, booking)
}

func (h *BookingHandler) bookingLineIDs(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid booking ID format")
		return uuid.Nil, uuid.Nil, false
	}
	lineID, err := uuid.Parse(c.Param("line_id"))
	if err != nil {
		h.BadRequest(c, "Invalid line ID format")
		return uuid.Nil, uuid.Nil, false
	}
	return bookingID, lineID, true
}

type bookingOpFunc func(ctx context.Context, scope shared.Scope, bookingID uuid.UUID) (*bookingapp.BookingResponse, error)

type lineOpFunc func(ctx context.Context, scope shared.Scope, bookingID, lineID uuid.UUID) (*bookingapp.BookingResponse, error)

type lineExceptionFunc func(ctx context.Context, scope shared.Scope, bookingID, lineID uuid.UUID, req bookingapp.LineExceptionRequest) (*bookingapp.BookingResponse, error)

func (h *BookingHandler) bookingOp(c *gin.Context, op bookingOpFunc) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid booking ID format")
		return
	}

	booking, err := op(c.Request.Context(), scope, bookingID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, booking)
}

func (h *BookingHandler) lineCustodyOp(c *gin.Context, op lineOpFunc) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	bookingID, lineID, ok := h.bookingLineIDs(c)
	if !ok {
		return
	}

	booking, err := op(c.Request.Context(), scope, bookingID, lineID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, booking)
}

func (h *BookingHandler) lineExceptionOp(c *gin.Context, op lineExceptionFunc) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	bookingID, lineID, ok := h.bookingLineIDs(c)
	if !ok {
		return
	}

	var req bookingapp.LineExceptionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	booking, err := op(c.Request.Context(), scope, bookingID, lineID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, booking)
}
