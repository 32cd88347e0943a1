package booking

import (
	"github.com/freightpro/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Aggregate type constant
const AggregateTypeBooking = "Booking"

// Event type constants
const (
	EventTypeBookingCreated    = "BookingCreated"
	EventTypeBookingDelivered  = "BookingDelivered"
	EventTypeBookingCancelled  = "BookingCancelled"
	EventTypeLineCustodyChange = "BookingLineCustodyChanged"
)

// BookingCreatedEvent is raised when a new booking is created
type BookingCreatedEvent struct {
	shared.BaseDomainEvent
	BookingID           uuid.UUID `json:"booking_id"`
	TrackingNumber      string    `json:"tracking_number"`
	OriginBranchID      uuid.UUID `json:"origin_branch_id"`
	DestinationBranchID uuid.UUID `json:"destination_branch_id"`
	SenderID            uuid.UUID `json:"sender_id"`
}

// NewBookingCreatedEvent creates a new BookingCreatedEvent
func NewBookingCreatedEvent(b *Booking) *BookingCreatedEvent {
	return &BookingCreatedEvent{
		BaseDomainEvent:     shared.NewBaseDomainEvent(EventTypeBookingCreated, AggregateTypeBooking, b.ID, b.OrgID),
		BookingID:           b.ID,
		TrackingNumber:      b.TrackingNumber,
		OriginBranchID:      b.BranchID,
		DestinationBranchID: b.DestinationBranchID,
		SenderID:            b.SenderID,
	}
}

// EventType returns the event type name
func (e *BookingCreatedEvent) EventType() string {
	return EventTypeBookingCreated
}

// BookingDeliveredSchemaVersion is the current payload schema of
// BookingDeliveredEvent. v1 carried no payment terms; v2 added them so
// invoicing can tell paid and to-pay consignments apart without a lookup.
const BookingDeliveredSchemaVersion = 2

// BookingDeliveredEvent is raised when every active line has been delivered.
// Invoicing consumes this to close out the consignment.
type BookingDeliveredEvent struct {
	shared.BaseDomainEvent
	BookingID      uuid.UUID       `json:"booking_id"`
	TrackingNumber string          `json:"tracking_number"`
	TotalAmount    decimal.Decimal `json:"total_amount"`
	PaymentTerms   PaymentTerms    `json:"payment_terms"`
}

// NewBookingDeliveredEvent creates a new BookingDeliveredEvent
func NewBookingDeliveredEvent(b *Booking) *BookingDeliveredEvent {
	base := shared.NewBaseDomainEvent(EventTypeBookingDelivered, AggregateTypeBooking, b.ID, b.OrgID)
	base.SchemaVersion = BookingDeliveredSchemaVersion
	return &BookingDeliveredEvent{
		BaseDomainEvent: base,
		BookingID:       b.ID,
		TrackingNumber:  b.TrackingNumber,
		TotalAmount:     b.TotalAmount,
		PaymentTerms:    b.PaymentTerms,
	}
}

// EventType returns the event type name
func (e *BookingDeliveredEvent) EventType() string {
	return EventTypeBookingDelivered
}

// BookingCancelledEvent is raised when a booking is soft-cancelled
type BookingCancelledEvent struct {
	shared.BaseDomainEvent
	BookingID      uuid.UUID `json:"booking_id"`
	TrackingNumber string    `json:"tracking_number"`
	Reason         string    `json:"reason"`
}

// NewBookingCancelledEvent creates a new BookingCancelledEvent
func NewBookingCancelledEvent(b *Booking) *BookingCancelledEvent {
	return &BookingCancelledEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeBookingCancelled, AggregateTypeBooking, b.ID, b.OrgID),
		BookingID:       b.ID,
		TrackingNumber:  b.TrackingNumber,
		Reason:          b.CancelReason,
	}
}

// EventType returns the event type name
func (e *BookingCancelledEvent) EventType() string {
	return EventTypeBookingCancelled
}

// LineCustodyChangedEvent is raised on every line custody transition
type LineCustodyChangedEvent struct {
	shared.BaseDomainEvent
	BookingID      uuid.UUID  `json:"booking_id"`
	TrackingNumber string     `json:"tracking_number"`
	LineID         uuid.UUID  `json:"line_id"`
	ArticleID      uuid.UUID  `json:"article_id"`
	Status         LineStatus `json:"status"`
}

// NewLineCustodyChangedEvent creates a new LineCustodyChangedEvent
func NewLineCustodyChangedEvent(b *Booking, line *ArticleLine) *LineCustodyChangedEvent {
	return &LineCustodyChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLineCustodyChange, AggregateTypeBooking, b.ID, b.OrgID),
		BookingID:       b.ID,
		TrackingNumber:  b.TrackingNumber,
		LineID:          line.ID,
		ArticleID:       line.ArticleID,
		Status:          line.Status,
	}
}

// EventType returns the event type name
func (e *LineCustodyChangedEvent) EventType() string {
	return EventTypeLineCustodyChange
}
