package dispatch

import (
	"context"
	"time"

	"github.com/freightpro/backend/internal/domain/booking"
	"github.com/freightpro/backend/internal/domain/dispatch"
	"github.com/freightpro/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ManifestService handles loading manifests and their bulk custody phases.
// Both phases are evaluated line-by-line: each member line's custody
// transition runs in its own save, an individual failure is recorded on the
// manifest line and never aborts the siblings.
type ManifestService struct {
	manifestRepo   dispatch.ManifestRepository
	bookingRepo    booking.BookingRepository
	eventPublisher shared.EventPublisher
}

// NewManifestService creates a new ManifestService
func NewManifestService(manifestRepo dispatch.ManifestRepository, bookingRepo booking.BookingRepository) *ManifestService {
	return &ManifestService{
		manifestRepo: manifestRepo,
		bookingRepo:  bookingRepo,
	}
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *ManifestService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create builds a manifest for one vehicle trip. Every requested line must
// exist in scope and still be in booked custody; otherwise nothing is
// persisted.
func (s *ManifestService) Create(ctx context.Context, scope shared.Scope, req CreateManifestRequest) (*ManifestResponse, error) {
	manifestNumber, err := s.manifestRepo.GenerateManifestNumber(ctx, scope)
	if err != nil {
		return nil, err
	}

	m, err := dispatch.NewLoadingManifest(
		scope.OrgID, scope.BranchID, req.DestinationBranchID,
		manifestNumber, req.VehicleNumber, req.DriverName, req.DepartureDate,
	)
	if err != nil {
		return nil, err
	}
	m.SetCreatedBy(scope.UserID)

	for _, lineReq := range req.Lines {
		if err := s.checkLineEligible(ctx, scope, lineReq.BookingID, lineReq.LineID); err != nil {
			return nil, err
		}
		if err := m.AddLine(lineReq.BookingID, lineReq.LineID); err != nil {
			return nil, err
		}
	}

	if err := s.manifestRepo.Save(ctx, m); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, m)
	response := ToManifestResponse(m)
	return &response, nil
}

// GetByID retrieves a manifest by ID
func (s *ManifestService) GetByID(ctx context.Context, scope shared.Scope, manifestID uuid.UUID) (*ManifestResponse, error) {
	m, err := s.manifestRepo.FindByIDForScope(ctx, scope, manifestID)
	if err != nil {
		return nil, err
	}
	response := ToManifestResponse(m)
	return &response, nil
}

// List retrieves manifests with filtering and pagination
func (s *ManifestService) List(ctx context.Context, scope shared.Scope, filter ManifestListFilter) ([]ManifestResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "departure_date"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]interface{}),
	}
	if filter.DestinationBranchID != nil {
		domainFilter.Filters["destination_branch_id"] = *filter.DestinationBranchID
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = *filter.Status
	}
	if filter.StartDate != nil {
		domainFilter.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		domainFilter.Filters["end_date"] = *filter.EndDate
	}

	manifests, err := s.manifestRepo.FindAllForScope(ctx, scope, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.manifestRepo.CountForScope(ctx, scope, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToManifestResponses(manifests), total, nil
}

// AddLine attaches one booking line to an undispatched manifest
func (s *ManifestService) AddLine(ctx context.Context, scope shared.Scope, manifestID uuid.UUID, req ManifestLineInput) (*ManifestResponse, error) {
	m, err := s.manifestRepo.FindByIDForScope(ctx, scope, manifestID)
	if err != nil {
		return nil, err
	}
	if err := s.checkLineEligible(ctx, scope, req.BookingID, req.LineID); err != nil {
		return nil, err
	}
	if err := m.AddLine(req.BookingID, req.LineID); err != nil {
		return nil, err
	}
	if err := s.manifestRepo.Save(ctx, m); err != nil {
		return nil, err
	}
	response := ToManifestResponse(m)
	return &response, nil
}

// RemoveLine detaches one booking line from an undispatched manifest
func (s *ManifestService) RemoveLine(ctx context.Context, scope shared.Scope, manifestID, lineID uuid.UUID) (*ManifestResponse, error) {
	m, err := s.manifestRepo.FindByIDForScope(ctx, scope, manifestID)
	if err != nil {
		return nil, err
	}
	if err := m.RemoveLine(lineID); err != nil {
		return nil, err
	}
	if err := s.manifestRepo.Save(ctx, m); err != nil {
		return nil, err
	}
	response := ToManifestResponse(m)
	return &response, nil
}

// Dispatch runs the loading phase: every unresolved member line is moved to
// loaded custody on its booking, one line at a time. Lines whose custody
// transition is rejected are recorded as failed with the rejection reason;
// the phase itself still succeeds. Bookings holding loaded lines advance to
// in-transit when the vehicle departs.
func (s *ManifestService) Dispatch(ctx context.Context, scope shared.Scope, manifestID uuid.UUID) (*PhaseResultResponse, error) {
	m, err := s.manifestRepo.FindByIDForScope(ctx, scope, manifestID)
	if err != nil {
		return nil, err
	}
	if !m.CanDispatch() {
		return nil, shared.NewInvalidTransitionError("Manifest is not in a dispatchable state")
	}

	now := time.Now()
	outcomes := make([]LineOutcome, 0, len(m.Lines))
	departed := make(map[uuid.UUID]bool)

	for _, ml := range m.PendingLines() {
		outcome := s.applyLinePhase(ctx, scope, ml, func(b *booking.Booking) error {
			return b.LoadLine(ml.LineID, scope.UserID, now)
		})
		if outcome.Succeeded {
			if err := m.RecordLineLoaded(ml.LineID); err != nil {
				return nil, err
			}
			departed[ml.BookingID] = true
		} else {
			if err := m.RecordLineFailed(ml.LineID, outcome.Reason); err != nil {
				return nil, err
			}
		}
		outcomes = append(outcomes, outcome)
	}

	for bookingID := range departed {
		if err := s.markBookingInTransit(ctx, scope, bookingID); err != nil {
			return nil, err
		}
	}

	if err := m.FinishDispatch(scope.UserID, now); err != nil {
		return nil, err
	}
	if err := s.manifestRepo.Save(ctx, m); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, m)
	return &PhaseResultResponse{
		Manifest: ToManifestResponse(m),
		Outcomes: outcomes,
	}, nil
}

// Complete runs the unloading phase at the destination branch with the same
// line-by-line semantics as Dispatch.
func (s *ManifestService) Complete(ctx context.Context, scope shared.Scope, manifestID uuid.UUID) (*PhaseResultResponse, error) {
	m, err := s.manifestRepo.FindByIDForScope(ctx, scope, manifestID)
	if err != nil {
		return nil, err
	}
	if !m.CanComplete() {
		return nil, shared.NewInvalidTransitionError("Manifest is not in a completable state")
	}

	now := time.Now()
	outcomes := make([]LineOutcome, 0, len(m.Lines))

	for _, ml := range m.LoadedLines() {
		outcome := s.applyLinePhase(ctx, scope, ml, func(b *booking.Booking) error {
			return b.UnloadLine(ml.LineID, scope.UserID, now)
		})
		if outcome.Succeeded {
			if err := m.RecordLineUnloaded(ml.LineID); err != nil {
				return nil, err
			}
		} else {
			if err := m.RecordLineFailed(ml.LineID, outcome.Reason); err != nil {
				return nil, err
			}
		}
		outcomes = append(outcomes, outcome)
	}

	if err := m.FinishCompletion(scope.UserID, now); err != nil {
		return nil, err
	}
	if err := s.manifestRepo.Save(ctx, m); err != nil {
		return nil, err
	}

	s.publishEvents(ctx, m)
	return &PhaseResultResponse{
		Manifest: ToManifestResponse(m),
		Outcomes: outcomes,
	}, nil
}

// Cancel cancels an undispatched manifest
func (s *ManifestService) Cancel(ctx context.Context, scope shared.Scope, manifestID uuid.UUID) (*ManifestResponse, error) {
	m, err := s.manifestRepo.FindByIDForScope(ctx, scope, manifestID)
	if err != nil {
		return nil, err
	}
	if err := m.Cancel(); err != nil {
		return nil, err
	}
	if err := s.manifestRepo.Save(ctx, m); err != nil {
		return nil, err
	}
	response := ToManifestResponse(m)
	return &response, nil
}

// applyLinePhase loads one booking, applies the custody transition and saves
// it, translating any failure into a per-line outcome instead of an error.
func (s *ManifestService) applyLinePhase(ctx context.Context, scope shared.Scope, ml dispatch.ManifestLine, op func(*booking.Booking) error) LineOutcome {
	outcome := LineOutcome{LineID: ml.LineID, BookingID: ml.BookingID}

	b, err := s.bookingRepo.FindByIDForScope(ctx, scope, ml.BookingID)
	if err != nil {
		outcome.Reason = err.Error()
		return outcome
	}
	if err := op(b); err != nil {
		outcome.Reason = err.Error()
		return outcome
	}
	if err := s.bookingRepo.SaveWithLock(ctx, b); err != nil {
		outcome.Reason = err.Error()
		return outcome
	}

	s.publishBookingEvents(ctx, b)
	outcome.Succeeded = true
	return outcome
}

// markBookingInTransit advances one booking after its lines departed.
// Already-in-transit bookings are a no-op.
func (s *ManifestService) markBookingInTransit(ctx context.Context, scope shared.Scope, bookingID uuid.UUID) error {
	b, err := s.bookingRepo.FindByIDForScope(ctx, scope, bookingID)
	if err != nil {
		return err
	}
	if b.Status == booking.BookingStatusInTransit {
		return nil
	}
	if err := b.MarkInTransit(); err != nil {
		return err
	}
	return s.bookingRepo.SaveWithLock(ctx, b)
}

// checkLineEligible verifies the referenced booking line exists in scope and
// has not left booked custody.
func (s *ManifestService) checkLineEligible(ctx context.Context, scope shared.Scope, bookingID, lineID uuid.UUID) error {
	b, err := s.bookingRepo.FindByIDForScope(ctx, scope, bookingID)
	if err != nil {
		return err
	}
	line := b.Line(lineID)
	if line == nil {
		return shared.ErrNotFound
	}
	if line.Status != booking.LineStatusBooked {
		return shared.NewDomainError("LINE_NOT_ELIGIBLE", "Line has already left booked custody")
	}
	return nil
}

func (s *ManifestService) publishEvents(ctx context.Context, m *dispatch.LoadingManifest) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range m.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	m.ClearDomainEvents()
}

func (s *ManifestService) publishBookingEvents(ctx context.Context, b *booking.Booking) {
	if s.eventPublisher == nil {
		return
	}
	for _, event := range b.GetDomainEvents() {
		_ = s.eventPublisher.Publish(ctx, event)
	}
	b.ClearDomainEvents()
}
