package booking

import (
	"context"
	"time"

	"github.com/freightpro/backend/internal/domain/booking"
	"github.com/freightpro/backend/internal/domain/pricing"
	"github.com/freightpro/backend/internal/domain/shared"
	"github.com/freightpro/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// BookingService handles the booking lifecycle: creation with priced lines,
// structural changes while booked, and per-line custody operations.
type BookingService struct {
	bookingRepo    booking.BookingRepository
	resolver       *pricing.RateResolver
	eventPublisher shared.EventPublisher
}

// NewBookingService creates a new BookingService
func NewBookingService(bookingRepo booking.BookingRepository, resolver *pricing.RateResolver) *BookingService {
	return &BookingService{
		bookingRepo: bookingRepo,
		resolver:    resolver,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *BookingService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create books a shipment with its article lines in one unit of work.
// Each line's rate is resolved through the pricing tiers and its charged
// weight derived from the rounding policy before validation; if any line is
// invalid, nothing is persisted.
func (s *BookingService) Create(ctx context.Context, scope shared.Scope, req CreateBookingRequest) (*BookingResponse, error) {
	trackingNumber, err := s.bookingRepo.GenerateTrackingNumber(ctx, scope)
	if err != nil {
		return nil, err
	}

	receiverID := uuid.Nil
	if req.ReceiverID != nil {
		receiverID = *req.ReceiverID
	}

	b, err := booking.NewBooking(
		scope.OrgID, scope.BranchID, req.DestinationBranchID,
		trackingNumber,
		req.SenderID, req.SenderName,
		receiverID, req.ReceiverName,
		booking.PaymentTerms(req.PaymentTerms),
	)
	if err != nil {
		return nil, err
	}
	b.SetCreatedBy(scope.UserID)
	if req.Remark != "" {
		b.Remark = req.Remark
	}

	for _, lineReq := range req.Lines {
		input, err := s.buildLineInput(ctx, scope, req.SenderID, lineReq)
		if err != nil {
			return nil, err
		}
		if _, err := b.AddLine(input); err != nil {
			return nil, err
		}
	}

	if err := s.bookingRepo.Save(ctx, b); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, b)
	response := ToBookingResponse(b)
	return &response, nil
}

// GetByID retrieves a booking by ID within the caller's scope
func (s *BookingService) GetByID(ctx context.Context, scope shared.Scope, bookingID uuid.UUID) (*BookingResponse, error) {
	b, err := s.bookingRepo.FindByIDForScope(ctx, scope, bookingID)
	if err != nil {
		return nil, err
	}
	response := ToBookingResponse(b)
	return &response, nil
}

// GetByTrackingNumber retrieves a booking by its tracking number
func (s *BookingService) GetByTrackingNumber(ctx context.Context, scope shared.Scope, trackingNumber string) (*BookingResponse, error) {
	b, err := s.bookingRepo.FindByTrackingNumber(ctx, scope, trackingNumber)
	if err != nil {
		return nil, err
	}
	response := ToBookingResponse(b)
	return &response, nil
}

// Track returns the custody timeline for a tracking number
func (s *BookingService) Track(ctx context.Context, scope shared.Scope, trackingNumber string) (*TrackingResponse, error) {
	b, err := s.bookingRepo.FindByTrackingNumber(ctx, scope, trackingNumber)
	if err != nil {
		return nil, err
	}
	response := ToTrackingResponse(b)
	return &response, nil
}

// List retrieves bookings with filtering and pagination
func (s *BookingService) List(ctx context.Context, scope shared.Scope, filter BookingListFilter) ([]BookingListItemResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.SenderID != nil {
		domainFilter.Filters["sender_id"] = *filter.SenderID
	}
	if filter.DestinationBranchID != nil {
		domainFilter.Filters["destination_branch_id"] = *filter.DestinationBranchID
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = *filter.Status
	}
	if filter.PaymentTerms != nil {
		domainFilter.Filters["payment_terms"] = *filter.PaymentTerms
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}

	bookings, err := s.bookingRepo.FindAllForScope(ctx, scope, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.bookingRepo.CountForScope(ctx, scope, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToBookingListItemResponses(bookings), total, nil
}

// AddLine prices and attaches a new line to a booked booking
func (s *BookingService) AddLine(ctx context.Context, scope shared.Scope, bookingID uuid.UUID, req AddLineRequest) (*BookingResponse, error) {
	b, err := s.bookingRepo.FindByIDForScope(ctx, scope, bookingID)
	if err != nil {
		return nil, err
	}

	input, err := s.buildLineInput(ctx, scope, b.SenderID, req.CreateArticleLineInput)
	if err != nil {
		return nil, err
	}
	if _, err := b.AddLine(input); err != nil {
		return nil, err
	}

	if err := s.bookingRepo.SaveWithLock(ctx, b); err != nil {
		return nil, err
	}
	response := ToBookingResponse(b)
	return &response, nil
}

// RepriceLine replaces the pricing inputs of one line and recomputes totals
func (s *BookingService) RepriceLine(ctx context.Context, scope shared.Scope, bookingID, lineID uuid.UUID, req RepriceLineRequest) (*BookingResponse, error) {
	b, err := s.bookingRepo.FindByIDForScope(ctx, scope, bookingID)
	if err != nil {
		return nil, err
	}

	input, err := s.buildLineInput(ctx, scope, b.SenderID, req.CreateArticleLineInput)
	if err != nil {
		return nil, err
	}
	if err := b.RepriceLine(lineID, input); err != nil {
		return nil, err
	}

	if err := s.bookingRepo.SaveWithLock(ctx, b); err != nil {
		return nil, err
	}
	response := ToBookingResponse(b)
	return &response, nil
}

// RemoveLine detaches a line that has not left booked custody
func (s *BookingService) RemoveLine(ctx context.Context, scope shared.Scope, bookingID, lineID uuid.UUID) (*BookingResponse, error) {
	b, err := s.bookingRepo.FindByIDForScope(ctx, scope, bookingID)
	if err != nil {
		return nil, err
	}
	if err := b.RemoveLine(lineID); err != nil {
		return nil, err
	}
	if err := s.bookingRepo.SaveWithLock(ctx, b); err != nil {
		return nil, err
	}
	response := ToBookingResponse(b)
	return &response, nil
}

// CancelLine soft-cancels one line, removing it from the billed total
func (s *BookingService) CancelLine(ctx context.Context, scope shared.Scope, bookingID, lineID uuid.UUID, req CancelRequest) (*BookingResponse, error) {
	b, err := s.bookingRepo.FindByIDForScope(ctx, scope, bookingID)
	if err != nil {
		return nil, err
	}
	if err := b.CancelLine(lineID, req.Reason); err != nil {
		return nil, err
	}
	if err := s.bookingRepo.SaveWithLock(ctx, b); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, b)
	response := ToBookingResponse(b)
	return &response, nil
}

// LoadLine records one line being loaded onto a vehicle
func (s *BookingService) LoadLine(ctx context.Context, scope shared.Scope, bookingID, lineID uuid.UUID) (*BookingResponse, error) {
	return s.custodyOp(ctx, scope, bookingID, func(b *booking.Booking) error {
		return b.LoadLine(lineID, scope.UserID, time.Now())
	})
}

// UnloadLine records one line being unloaded at the destination branch
func (s *BookingService) UnloadLine(ctx context.Context, scope shared.Scope, bookingID, lineID uuid.UUID) (*BookingResponse, error) {
	return s.custodyOp(ctx, scope, bookingID, func(b *booking.Booking) error {
		return b.UnloadLine(lineID, scope.UserID, time.Now())
	})
}

// MarkLineOutForDelivery sends an unloaded line out for final delivery
func (s *BookingService) MarkLineOutForDelivery(ctx context.Context, scope shared.Scope, bookingID, lineID uuid.UUID) (*BookingResponse, error) {
	return s.custodyOp(ctx, scope, bookingID, func(b *booking.Booking) error {
		return b.MarkLineOutForDelivery(lineID)
	})
}

// DeliverLine records delivery of one line; the booking auto-advances when
// every active line has been delivered
func (s *BookingService) DeliverLine(ctx context.Context, scope shared.Scope, bookingID, lineID uuid.UUID) (*BookingResponse, error) {
	return s.custodyOp(ctx, scope, bookingID, func(b *booking.Booking) error {
		return b.DeliverLine(lineID, scope.UserID, time.Now())
	})
}

// MarkLineDamaged reports a line as damaged
func (s *BookingService) MarkLineDamaged(ctx context.Context, scope shared.Scope, bookingID, lineID uuid.UUID, req LineExceptionRequest) (*BookingResponse, error) {
	return s.custodyOp(ctx, scope, bookingID, func(b *booking.Booking) error {
		return b.MarkLineDamaged(lineID, req.Reason)
	})
}

// MarkLineMissing reports a line as missing
func (s *BookingService) MarkLineMissing(ctx context.Context, scope shared.Scope, bookingID, lineID uuid.UUID, req LineExceptionRequest) (*BookingResponse, error) {
	return s.custodyOp(ctx, scope, bookingID, func(b *booking.Booking) error {
		return b.MarkLineMissing(lineID, req.Reason)
	})
}

// MarkInTransit advances the whole booking when its lines leave the origin
func (s *BookingService) MarkInTransit(ctx context.Context, scope shared.Scope, bookingID uuid.UUID) (*BookingResponse, error) {
	return s.custodyOp(ctx, scope, bookingID, func(b *booking.Booking) error {
		return b.MarkInTransit()
	})
}

// Deliver explicitly marks the whole booking delivered. The delivered event
// feeds invoicing, so it is written through the transactional outbox rather
// than the in-memory bus.
func (s *BookingService) Deliver(ctx context.Context, scope shared.Scope, bookingID uuid.UUID) (*BookingResponse, error) {
	b, err := s.bookingRepo.FindByIDForScope(ctx, scope, bookingID)
	if err != nil {
		return nil, err
	}
	if err := b.Deliver(); err != nil {
		return nil, err
	}

	events := b.GetDomainEvents()
	b.ClearDomainEvents()
	if err := s.bookingRepo.SaveWithLockAndEvents(ctx, b, events); err != nil {
		return nil, err
	}

	response := ToBookingResponse(b)
	return &response, nil
}

// Cancel soft-cancels the booking and its non-terminal lines
func (s *BookingService) Cancel(ctx context.Context, scope shared.Scope, bookingID uuid.UUID, req CancelRequest) (*BookingResponse, error) {
	return s.custodyOp(ctx, scope, bookingID, func(b *booking.Booking) error {
		return b.Cancel(req.Reason)
	})
}

// custodyOp loads the booking, applies one mutation and saves with the
// version check, publishing any events the mutation raised.
func (s *BookingService) custodyOp(ctx context.Context, scope shared.Scope, bookingID uuid.UUID, op func(*booking.Booking) error) (*BookingResponse, error) {
	b, err := s.bookingRepo.FindByIDForScope(ctx, scope, bookingID)
	if err != nil {
		return nil, err
	}
	if err := op(b); err != nil {
		return nil, err
	}
	if err := s.bookingRepo.SaveWithLock(ctx, b); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, b)
	response := ToBookingResponse(b)
	return &response, nil
}

// buildLineInput resolves the rate and charged weight for one requested line.
// A manual rate override replaces the resolved rate but keeps its basis.
func (s *BookingService) buildLineInput(ctx context.Context, scope shared.Scope, customerID uuid.UUID, req CreateArticleLineInput) (booking.LineInput, error) {
	actual, err := valueobject.NewWeight(req.ActualWeight)
	if err != nil {
		return booking.LineInput{}, err
	}

	quote, err := s.resolver.QuoteLine(ctx, scope, customerID, req.ArticleID, req.Quantity, actual)
	if err != nil {
		return booking.LineInput{}, err
	}

	rate := quote.RatePerUnit
	if req.RateOverride != nil {
		rate = *req.RateOverride
	}

	return booking.LineInput{
		ArticleID:              req.ArticleID,
		Description:            req.Description,
		Quantity:               req.Quantity,
		Unit:                   req.Unit,
		ActualWeight:           quote.ActualWeight.Kilograms(),
		ChargedWeight:          quote.ChargedWeight.Kilograms(),
		DeclaredValue:          req.DeclaredValue,
		RatePerUnit:            rate,
		RateBasis:              quote.Basis,
		LoadingChargePerUnit:   req.LoadingCharge,
		UnloadingChargePerUnit: req.UnloadingCharge,
		InsuranceRequired:      req.InsuranceRequired,
		InsuranceValue:         req.InsuranceValue,
		InsuranceCharge:        req.InsuranceCharge,
		PackagingCharge:        req.PackagingCharge,
	}, nil
}

func (s *BookingService) publishEvents(ctx context.Context, b *booking.Booking) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range b.GetDomainEvents() {
		// event delivery is best-effort; persistence already succeeded
		_ = s.eventPublisher.Publish(ctx, event)
	}
	b.ClearDomainEvents()
}
