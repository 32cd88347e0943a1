package booking

import (
	"fmt"
	"time"

	"github.com/freightpro/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentTerms is how the freight charges are settled
type PaymentTerms string

const (
	PaymentTermsPaid      PaymentTerms = "PAID"       // paid at booking
	PaymentTermsToPay     PaymentTerms = "TO_PAY"     // paid by receiver on delivery
	PaymentTermsOnAccount PaymentTerms = "ON_ACCOUNT" // billed to the customer account
)

// IsValid checks if the terms are valid PaymentTerms
func (p PaymentTerms) IsValid() bool {
	return p == PaymentTermsPaid || p == PaymentTermsToPay || p == PaymentTermsOnAccount
}

// Booking is one shipment consignment, the aggregate root for its article
// lines. TotalAmount is a derived value over the non-cancelled lines,
// recomputed on every line mutation and persisted together with it; it is
// never authoritative on its own.
type Booking struct {
	shared.BranchAggregateRoot
	TrackingNumber      string
	DestinationBranchID uuid.UUID `gorm:"type:uuid;not null;index"`
	SenderID            uuid.UUID `gorm:"type:uuid;not null;index"`
	SenderName          string
	ReceiverID          uuid.UUID `gorm:"type:uuid;index"`
	ReceiverName        string
	PaymentTerms        PaymentTerms
	Status              BookingStatus
	Lines               []ArticleLine `gorm:"foreignKey:BookingID"`
	TotalAmount         decimal.Decimal
	Remark              string
	InTransitAt         *time.Time
	DeliveredAt         *time.Time
	CancelledAt         *time.Time
	CancelReason        string
}

// TableName returns the table name for GORM
func (Booking) TableName() string {
	return "bookings"
}

// NewBooking creates a booking in booked custody with no lines
func NewBooking(orgID, originBranchID, destinationBranchID uuid.UUID, trackingNumber string, senderID uuid.UUID, senderName string, receiverID uuid.UUID, receiverName string, terms PaymentTerms) (*Booking, error) {
	if trackingNumber == "" {
		return nil, shared.NewDomainError("INVALID_TRACKING_NUMBER", "Tracking number cannot be empty")
	}
	if originBranchID == uuid.Nil || destinationBranchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Origin and destination branches are required")
	}
	if senderID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_SENDER", "Sender is required")
	}
	if senderName == "" {
		return nil, shared.NewDomainError("INVALID_SENDER", "Sender name cannot be empty")
	}
	if receiverName == "" {
		return nil, shared.NewDomainError("INVALID_RECEIVER", "Receiver name cannot be empty")
	}
	if !terms.IsValid() {
		return nil, shared.NewDomainError("INVALID_PAYMENT_TERMS", "Unknown payment terms")
	}

	b := &Booking{
		BranchAggregateRoot: shared.NewBranchAggregateRoot(orgID, originBranchID),
		TrackingNumber:      trackingNumber,
		DestinationBranchID: destinationBranchID,
		SenderID:            senderID,
		SenderName:          senderName,
		ReceiverID:          receiverID,
		ReceiverName:        receiverName,
		PaymentTerms:        terms,
		Status:              BookingStatusBooked,
		Lines:               make([]ArticleLine, 0),
		TotalAmount:         decimal.Zero,
	}

	b.AddDomainEvent(NewBookingCreatedEvent(b))
	return b, nil
}

// AddLine validates, prices and attaches a new article line, keeping the
// booking total consistent. Lines can only be added before delivery starts.
func (b *Booking) AddLine(in LineInput) (*ArticleLine, error) {
	if b.Status != BookingStatusBooked {
		return nil, shared.NewDomainError("INVALID_STATE", "Cannot add lines to a booking past booked custody")
	}

	line, err := NewArticleLine(b.ID, in)
	if err != nil {
		return nil, err
	}

	b.Lines = append(b.Lines, *line)
	b.recalculateTotal()
	b.UpdatedAt = time.Now()
	return line, nil
}

// RepriceLine replaces a line's pricing inputs and recomputes the booking total
func (b *Booking) RepriceLine(lineID uuid.UUID, in LineInput) error {
	if b.Status != BookingStatusBooked {
		return shared.NewDomainError("INVALID_STATE", "Cannot update lines of a booking past booked custody")
	}

	for idx := range b.Lines {
		if b.Lines[idx].ID == lineID {
			if err := b.Lines[idx].Reprice(in); err != nil {
				return err
			}
			b.recalculateTotal()
			b.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.ErrNotFound
}

// RemoveLine detaches a line that has not left booked custody
func (b *Booking) RemoveLine(lineID uuid.UUID) error {
	if b.Status != BookingStatusBooked {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove lines from a booking past booked custody")
	}

	for idx := range b.Lines {
		if b.Lines[idx].ID == lineID {
			if b.Lines[idx].Status != LineStatusBooked {
				return shared.NewInvalidTransitionError("Cannot remove a line that left booked custody")
			}
			b.Lines = append(b.Lines[:idx], b.Lines[idx+1:]...)
			b.recalculateTotal()
			b.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.ErrNotFound
}

// CancelLine soft-cancels one line and removes it from the billed total
func (b *Booking) CancelLine(lineID uuid.UUID, reason string) error {
	line := b.Line(lineID)
	if line == nil {
		return shared.ErrNotFound
	}
	if err := line.Cancel(reason); err != nil {
		return err
	}
	b.recalculateTotal()
	b.UpdatedAt = time.Now()
	b.AddDomainEvent(NewLineCustodyChangedEvent(b, line))
	return nil
}

// LoadLine moves one line into loaded custody. Loading is only possible
// while the booking itself is booked or in transit.
func (b *Booking) LoadLine(lineID, actor uuid.UUID, at time.Time) error {
	if b.Status != BookingStatusBooked && b.Status != BookingStatusInTransit {
		return shared.NewInvalidTransitionError(
			fmt.Sprintf("Cannot load lines of a booking in %s status", b.Status))
	}
	line := b.Line(lineID)
	if line == nil {
		return shared.ErrNotFound
	}
	prev := line.Status
	if err := line.MarkLoaded(actor, at); err != nil {
		return err
	}
	if line.Status != prev {
		b.UpdatedAt = time.Now()
		b.AddDomainEvent(NewLineCustodyChangedEvent(b, line))
	}
	return nil
}

// UnloadLine moves one line into unloaded custody at the destination
func (b *Booking) UnloadLine(lineID, actor uuid.UUID, at time.Time) error {
	line := b.Line(lineID)
	if line == nil {
		return shared.ErrNotFound
	}
	prev := line.Status
	if err := line.MarkUnloaded(actor, at); err != nil {
		return err
	}
	if line.Status != prev {
		b.UpdatedAt = time.Now()
		b.AddDomainEvent(NewLineCustodyChangedEvent(b, line))
	}
	return nil
}

// MarkLineOutForDelivery sends an unloaded line out for final delivery
func (b *Booking) MarkLineOutForDelivery(lineID uuid.UUID) error {
	line := b.Line(lineID)
	if line == nil {
		return shared.ErrNotFound
	}
	return line.MarkOutForDelivery()
}

// DeliverLine records delivery of one line. When every non-cancelled line
// has been delivered, the whole booking advances to delivered.
func (b *Booking) DeliverLine(lineID, actor uuid.UUID, at time.Time) error {
	line := b.Line(lineID)
	if line == nil {
		return shared.ErrNotFound
	}
	prev := line.Status
	if err := line.MarkDelivered(actor, at); err != nil {
		return err
	}
	if line.Status != prev {
		b.UpdatedAt = time.Now()
		b.AddDomainEvent(NewLineCustodyChangedEvent(b, line))
	}

	if b.Status == BookingStatusInTransit && b.allLinesDelivered() {
		now := time.Now()
		b.Status = BookingStatusDelivered
		b.DeliveredAt = &now
		b.UpdatedAt = now
		b.AddDomainEvent(NewBookingDeliveredEvent(b))
	}
	return nil
}

// MarkLineDamaged records one line as damaged
func (b *Booking) MarkLineDamaged(lineID uuid.UUID, reason string) error {
	line := b.Line(lineID)
	if line == nil {
		return shared.ErrNotFound
	}
	if err := line.MarkDamaged(reason); err != nil {
		return err
	}
	b.UpdatedAt = time.Now()
	b.AddDomainEvent(NewLineCustodyChangedEvent(b, line))
	return nil
}

// MarkLineMissing records one line as missing
func (b *Booking) MarkLineMissing(lineID uuid.UUID, reason string) error {
	line := b.Line(lineID)
	if line == nil {
		return shared.ErrNotFound
	}
	if err := line.MarkMissing(reason); err != nil {
		return err
	}
	b.UpdatedAt = time.Now()
	b.AddDomainEvent(NewLineCustodyChangedEvent(b, line))
	return nil
}

// MarkInTransit advances the booking when its lines leave the origin
// branch. Re-applying is a no-op.
func (b *Booking) MarkInTransit() error {
	if b.Status == BookingStatusInTransit {
		return nil
	}
	if !b.Status.CanTransitionTo(BookingStatusInTransit) {
		return shared.NewInvalidTransitionError(
			fmt.Sprintf("Cannot move booking from %s to %s", b.Status, BookingStatusInTransit))
	}
	now := time.Now()
	b.Status = BookingStatusInTransit
	b.InTransitAt = &now
	b.UpdatedAt = now
	return nil
}

// Deliver marks the whole booking delivered. Every non-cancelled line must
// already be delivered.
func (b *Booking) Deliver() error {
	if b.Status == BookingStatusDelivered {
		return nil
	}
	if !b.Status.CanTransitionTo(BookingStatusDelivered) {
		return shared.NewInvalidTransitionError(
			fmt.Sprintf("Cannot move booking from %s to %s", b.Status, BookingStatusDelivered))
	}
	if !b.allLinesDelivered() {
		return shared.NewInvalidTransitionError("All non-cancelled lines must be delivered first")
	}

	now := time.Now()
	b.Status = BookingStatusDelivered
	b.DeliveredAt = &now
	b.UpdatedAt = now
	b.AddDomainEvent(NewBookingDeliveredEvent(b))
	return nil
}

// Cancel soft-cancels the booking and all its non-terminal lines. Bookings
// are never physically deleted once articles are attached.
func (b *Booking) Cancel(reason string) error {
	if !b.Status.CanTransitionTo(BookingStatusCancelled) {
		return shared.NewInvalidTransitionError(
			fmt.Sprintf("Cannot cancel booking in %s status", b.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Cancel reason is required")
	}

	now := time.Now()
	for idx := range b.Lines {
		if !b.Lines[idx].Status.IsTerminal() {
			// line-level cancel cannot fail from a non-terminal state
			_ = b.Lines[idx].Cancel(reason)
		}
	}
	b.Status = BookingStatusCancelled
	b.CancelledAt = &now
	b.CancelReason = reason
	b.recalculateTotal()
	b.UpdatedAt = now
	b.AddDomainEvent(NewBookingCancelledEvent(b))
	return nil
}

// Line returns a line by its ID, or nil
func (b *Booking) Line(lineID uuid.UUID) *ArticleLine {
	for idx := range b.Lines {
		if b.Lines[idx].ID == lineID {
			return &b.Lines[idx]
		}
	}
	return nil
}

// ActiveLines returns the non-cancelled lines
func (b *Booking) ActiveLines() []ArticleLine {
	active := make([]ArticleLine, 0, len(b.Lines))
	for _, line := range b.Lines {
		if !line.IsCancelled() {
			active = append(active, line)
		}
	}
	return active
}

// RecalculateTotal recomputes the booking total from the current line set.
// Repositories call this inside the mutation transaction so a reader never
// observes a line set with a stale total.
func (b *Booking) RecalculateTotal() {
	b.recalculateTotal()
}

func (b *Booking) recalculateTotal() {
	total := decimal.Zero
	for _, line := range b.Lines {
		if line.IsCancelled() {
			continue
		}
		total = total.Add(line.LineTotal)
	}
	b.TotalAmount = total
}

// allLinesDelivered reports whether every non-cancelled line is delivered.
// A booking with no active lines cannot be considered delivered.
func (b *Booking) allLinesDelivered() bool {
	active := 0
	for _, line := range b.Lines {
		if line.IsCancelled() {
			continue
		}
		active++
		if line.Status != LineStatusDelivered {
			return false
		}
	}
	return active > 0
}

// IsCancelled reports whether the booking is cancelled
func (b *Booking) IsCancelled() bool {
	return b.Status == BookingStatusCancelled
}

// IsTerminal reports whether the booking is in a terminal state
func (b *Booking) IsTerminal() bool {
	return b.Status.IsTerminal()
}
