package dispatch

import (
	"context"
	"fmt"

	"github.com/freightpro/backend/internal/domain/booking"
	"github.com/freightpro/backend/internal/domain/dispatch"
	"github.com/freightpro/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// BookingCancelledHandler handles BookingCancelledEvent and pulls the
// cancelled booking's lines off any manifest that has not departed yet.
// Dispatched manifests are left alone: goods already on a vehicle are
// resolved through the completion phase, not by editing the manifest.
type BookingCancelledHandler struct {
	manifestRepo dispatch.ManifestRepository
	logger       *zap.Logger
}

// NewBookingCancelledHandler creates a new handler for booking cancelled events
func NewBookingCancelledHandler(
	manifestRepo dispatch.ManifestRepository,
	logger *zap.Logger,
) *BookingCancelledHandler {
	return &BookingCancelledHandler{
		manifestRepo: manifestRepo,
		logger:       logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *BookingCancelledHandler) EventTypes() []string {
	return []string{booking.EventTypeBookingCancelled}
}

// Handle processes a BookingCancelledEvent by removing the booking's lines
// from every open manifest within the organization
func (h *BookingCancelledHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	cancelledEvent, ok := event.(*booking.BookingCancelledEvent)
	if !ok {
		h.logger.Error("unexpected event type",
			zap.String("expected", booking.EventTypeBookingCancelled),
			zap.String("actual", event.EventType()),
		)
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			booking.EventTypeBookingCancelled, event.EventType())
	}

	// Event processing is an org-level concern: manifests may live at a
	// different branch than the booking's origin
	scope := shared.Scope{OrgID: event.OrgID(), AllBranches: true}

	manifests, err := h.manifestRepo.FindOpenByBookingForScope(ctx, scope, cancelledEvent.BookingID)
	if err != nil {
		h.logger.Error("failed to look up open manifests for cancelled booking",
			zap.String("booking_id", cancelledEvent.BookingID.String()),
			zap.Error(err),
		)
		return fmt.Errorf("failed to look up open manifests: %w", err)
	}

	if len(manifests) == 0 {
		return nil
	}

	for i := range manifests {
		m := &manifests[i]

		lineIDs := make([]uuid.UUID, 0, len(m.Lines))
		for _, ml := range m.Lines {
			if ml.BookingID == cancelledEvent.BookingID {
				lineIDs = append(lineIDs, ml.LineID)
			}
		}

		for _, lineID := range lineIDs {
			if err := m.RemoveLine(lineID); err != nil {
				h.logger.Error("failed to remove cancelled line from manifest",
					zap.String("manifest_id", m.ID.String()),
					zap.String("line_id", lineID.String()),
					zap.Error(err),
				)
				return fmt.Errorf("failed to remove line from manifest %s: %w", m.ManifestNumber, err)
			}
		}

		if err := h.manifestRepo.Save(ctx, m); err != nil {
			h.logger.Error("failed to save manifest after removing cancelled lines",
				zap.String("manifest_id", m.ID.String()),
				zap.Error(err),
			)
			return fmt.Errorf("failed to save manifest %s: %w", m.ManifestNumber, err)
		}

		h.logger.Info("removed cancelled booking lines from manifest",
			zap.String("manifest_number", m.ManifestNumber),
			zap.String("booking_id", cancelledEvent.BookingID.String()),
			zap.String("tracking_number", cancelledEvent.TrackingNumber),
			zap.Int("lines_removed", len(lineIDs)),
		)
	}

	return nil
}

// Ensure BookingCancelledHandler implements shared.EventHandler
var _ shared.EventHandler = (*BookingCancelledHandler)(nil)
