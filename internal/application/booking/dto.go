package booking

import (
	"time"

	"github.com/freightpro/backend/internal/domain/booking"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Booking DTOs ====================

// CreateBookingRequest represents a request to create a booking with its lines
type CreateBookingRequest struct {
	DestinationBranchID uuid.UUID                `json:"destination_branch_id" binding:"required"`
	SenderID            uuid.UUID                `json:"sender_id" binding:"required"`
	SenderName          string                   `json:"sender_name" binding:"required,min=1,max=200"`
	ReceiverID          *uuid.UUID               `json:"receiver_id"`
	ReceiverName        string                   `json:"receiver_name" binding:"required,min=1,max=200"`
	PaymentTerms        string                   `json:"payment_terms" binding:"required,oneof=PAID TO_PAY ON_ACCOUNT"`
	Lines               []CreateArticleLineInput `json:"lines" binding:"required,min=1"`
	Remark              string                   `json:"remark"`
}

// CreateArticleLineInput represents one article line in the create request.
// Rate and charged weight are resolved server-side; the optional overrides
// let the booking clerk record a manually negotiated figure, which still has
// to pass line validation.
type CreateArticleLineInput struct {
	ArticleID         uuid.UUID        `json:"article_id" binding:"required"`
	Description       string           `json:"description" binding:"max=500"`
	Quantity          int              `json:"quantity" binding:"required,min=1"`
	Unit              string           `json:"unit" binding:"max=20"`
	ActualWeight      decimal.Decimal  `json:"actual_weight"`
	DeclaredValue     decimal.Decimal  `json:"declared_value"`
	RateOverride      *decimal.Decimal `json:"rate_override"`
	LoadingCharge     decimal.Decimal  `json:"loading_charge_per_unit"`
	UnloadingCharge   decimal.Decimal  `json:"unloading_charge_per_unit"`
	InsuranceRequired bool             `json:"insurance_required"`
	InsuranceValue    decimal.Decimal  `json:"insurance_value"`
	InsuranceCharge   decimal.Decimal  `json:"insurance_charge"`
	PackagingCharge   decimal.Decimal  `json:"packaging_charge"`
}

// AddLineRequest represents a request to add a line to an existing booking
type AddLineRequest struct {
	CreateArticleLineInput
}

// RepriceLineRequest carries replacement pricing inputs for one line
type RepriceLineRequest struct {
	CreateArticleLineInput
}

// CancelRequest represents a cancellation with a mandatory reason
type CancelRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// LineExceptionRequest reports a line as damaged or missing
type LineExceptionRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// BookingListFilter represents filter options for booking lists
type BookingListFilter struct {
	Search              string     `form:"search"`
	SenderID            *uuid.UUID `form:"sender_id"`
	DestinationBranchID *uuid.UUID `form:"destination_branch_id"`
	Status              *string    `form:"status"`
	PaymentTerms        *string    `form:"payment_terms"`
	StartDate           *time.Time `form:"start_date"`
	EndDate             *time.Time `form:"end_date"`
	Page                int        `form:"page" binding:"min=0"`
	PageSize            int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy             string     `form:"order_by"`
	OrderDir            string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ArticleLineResponse represents one article line in API responses
type ArticleLineResponse struct {
	ID              uuid.UUID       `json:"id"`
	ArticleID       uuid.UUID       `json:"article_id"`
	Description     string          `json:"description"`
	Quantity        int             `json:"quantity"`
	Unit            string          `json:"unit"`
	ActualWeight    decimal.Decimal `json:"actual_weight"`
	ChargedWeight   decimal.Decimal `json:"charged_weight"`
	DeclaredValue   decimal.Decimal `json:"declared_value"`
	RatePerUnit     decimal.Decimal `json:"rate_per_unit"`
	RateBasis       string          `json:"rate_basis"`
	FreightAmount   decimal.Decimal `json:"freight_amount"`
	LoadingTotal    decimal.Decimal `json:"loading_total"`
	UnloadingTotal  decimal.Decimal `json:"unloading_total"`
	InsuranceCharge decimal.Decimal `json:"insurance_charge"`
	PackagingCharge decimal.Decimal `json:"packaging_charge"`
	LineTotal       decimal.Decimal `json:"line_total"`
	Status          string          `json:"status"`
	StatusReason    string          `json:"status_reason,omitempty"`
	LoadedAt        *time.Time      `json:"loaded_at,omitempty"`
	UnloadedAt      *time.Time      `json:"unloaded_at,omitempty"`
	DeliveredAt     *time.Time      `json:"delivered_at,omitempty"`
}

// BookingResponse represents a booking in API responses
type BookingResponse struct {
	ID                  uuid.UUID             `json:"id"`
	OrgID               uuid.UUID             `json:"org_id"`
	BranchID            uuid.UUID             `json:"branch_id"`
	TrackingNumber      string                `json:"tracking_number"`
	DestinationBranchID uuid.UUID             `json:"destination_branch_id"`
	SenderID            uuid.UUID             `json:"sender_id"`
	SenderName          string                `json:"sender_name"`
	ReceiverID          *uuid.UUID            `json:"receiver_id,omitempty"`
	ReceiverName        string                `json:"receiver_name"`
	PaymentTerms        string                `json:"payment_terms"`
	Status              string                `json:"status"`
	Lines               []ArticleLineResponse `json:"lines"`
	TotalAmount         decimal.Decimal       `json:"total_amount"`
	Remark              string                `json:"remark,omitempty"`
	InTransitAt         *time.Time            `json:"in_transit_at,omitempty"`
	DeliveredAt         *time.Time            `json:"delivered_at,omitempty"`
	CancelledAt         *time.Time            `json:"cancelled_at,omitempty"`
	CancelReason        string                `json:"cancel_reason,omitempty"`
	Version             int                   `json:"version"`
	CreatedAt           time.Time             `json:"created_at"`
	UpdatedAt           time.Time             `json:"updated_at"`
}

// BookingListItemResponse is the compact row for booking lists
type BookingListItemResponse struct {
	ID                  uuid.UUID       `json:"id"`
	TrackingNumber      string          `json:"tracking_number"`
	DestinationBranchID uuid.UUID       `json:"destination_branch_id"`
	SenderName          string          `json:"sender_name"`
	ReceiverName        string          `json:"receiver_name"`
	PaymentTerms        string          `json:"payment_terms"`
	Status              string          `json:"status"`
	LineCount           int             `json:"line_count"`
	TotalAmount         decimal.Decimal `json:"total_amount"`
	CreatedAt           time.Time       `json:"created_at"`
}

// TrackingEventResponse is one step in a shipment's custody timeline
type TrackingEventResponse struct {
	LineID      uuid.UUID `json:"line_id"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// TrackingResponse is the public view of a booking's progress
type TrackingResponse struct {
	TrackingNumber string                  `json:"tracking_number"`
	Status         string                  `json:"status"`
	BookedAt       time.Time               `json:"booked_at"`
	InTransitAt    *time.Time              `json:"in_transit_at,omitempty"`
	DeliveredAt    *time.Time              `json:"delivered_at,omitempty"`
	Events         []TrackingEventResponse `json:"events"`
}

// ToArticleLineResponse converts a domain line to a response DTO
func ToArticleLineResponse(line *booking.ArticleLine) ArticleLineResponse {
	return ArticleLineResponse{
		ID:              line.ID,
		ArticleID:       line.ArticleID,
		Description:     line.Description,
		Quantity:        line.Quantity,
		Unit:            line.Unit,
		ActualWeight:    line.ActualWeight,
		ChargedWeight:   line.ChargedWeight,
		DeclaredValue:   line.DeclaredValue,
		RatePerUnit:     line.RatePerUnit,
		RateBasis:       string(line.RateBasis),
		FreightAmount:   line.FreightAmount,
		LoadingTotal:    line.LoadingTotal,
		UnloadingTotal:  line.UnloadingTotal,
		InsuranceCharge: line.InsuranceCharge,
		PackagingCharge: line.PackagingCharge,
		LineTotal:       line.LineTotal,
		Status:          line.Status.String(),
		StatusReason:    line.StatusReason,
		LoadedAt:        line.LoadedAt,
		UnloadedAt:      line.UnloadedAt,
		DeliveredAt:     line.DeliveredAt,
	}
}

// ToBookingResponse converts a domain booking to a response DTO
func ToBookingResponse(b *booking.Booking) BookingResponse {
	lines := make([]ArticleLineResponse, 0, len(b.Lines))
	for idx := range b.Lines {
		lines = append(lines, ToArticleLineResponse(&b.Lines[idx]))
	}

	var receiverID *uuid.UUID
	if b.ReceiverID != uuid.Nil {
		id := b.ReceiverID
		receiverID = &id
	}

	return BookingResponse{
		ID:                  b.ID,
		OrgID:               b.OrgID,
		BranchID:            b.BranchID,
		TrackingNumber:      b.TrackingNumber,
		DestinationBranchID: b.DestinationBranchID,
		SenderID:            b.SenderID,
		SenderName:          b.SenderName,
		ReceiverID:          receiverID,
		ReceiverName:        b.ReceiverName,
		PaymentTerms:        string(b.PaymentTerms),
		Status:              b.Status.String(),
		Lines:               lines,
		TotalAmount:         b.TotalAmount,
		Remark:              b.Remark,
		InTransitAt:         b.InTransitAt,
		DeliveredAt:         b.DeliveredAt,
		CancelledAt:         b.CancelledAt,
		CancelReason:        b.CancelReason,
		Version:             b.GetVersion(),
		CreatedAt:           b.CreatedAt,
		UpdatedAt:           b.UpdatedAt,
	}
}

// ToBookingListItemResponses converts domain bookings to list row DTOs
func ToBookingListItemResponses(bookings []booking.Booking) []BookingListItemResponse {
	items := make([]BookingListItemResponse, 0, len(bookings))
	for idx := range bookings {
		b := &bookings[idx]
		items = append(items, BookingListItemResponse{
			ID:                  b.ID,
			TrackingNumber:      b.TrackingNumber,
			DestinationBranchID: b.DestinationBranchID,
			SenderName:          b.SenderName,
			ReceiverName:        b.ReceiverName,
			PaymentTerms:        string(b.PaymentTerms),
			Status:              b.Status.String(),
			LineCount:           len(b.ActiveLines()),
			TotalAmount:         b.TotalAmount,
			CreatedAt:           b.CreatedAt,
		})
	}
	return items
}

// ToTrackingResponse builds the custody timeline for a booking
func ToTrackingResponse(b *booking.Booking) TrackingResponse {
	events := make([]TrackingEventResponse, 0)
	for idx := range b.Lines {
		line := &b.Lines[idx]
		if line.LoadedAt != nil {
			events = append(events, TrackingEventResponse{
				LineID: line.ID, Description: line.Description,
				Status: booking.LineStatusLoaded.String(), OccurredAt: *line.LoadedAt,
			})
		}
		if line.UnloadedAt != nil {
			events = append(events, TrackingEventResponse{
				LineID: line.ID, Description: line.Description,
				Status: booking.LineStatusUnloaded.String(), OccurredAt: *line.UnloadedAt,
			})
		}
		if line.DeliveredAt != nil {
			events = append(events, TrackingEventResponse{
				LineID: line.ID, Description: line.Description,
				Status: booking.LineStatusDelivered.String(), OccurredAt: *line.DeliveredAt,
			})
		}
	}

	return TrackingResponse{
		TrackingNumber: b.TrackingNumber,
		Status:         b.Status.String(),
		BookedAt:       b.CreatedAt,
		InTransitAt:    b.InTransitAt,
		DeliveredAt:    b.DeliveredAt,
		Events:         events,
	}
}
