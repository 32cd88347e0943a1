package booking

import (
	"context"

	"github.com/freightpro/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// BookingRepository persists bookings together with their article lines.
// Save and SaveWithLock must write the header and the line set in one
// transaction, recomputing the total over the persisted line set inside
// that transaction, so that a concurrent reader never observes a line set
// and a stale total.
type BookingRepository interface {
	FindByIDForScope(ctx context.Context, scope shared.Scope, id uuid.UUID) (*Booking, error)
	FindByTrackingNumber(ctx context.Context, scope shared.Scope, trackingNumber string) (*Booking, error)
	// FindByLineID returns the booking owning the given article line
	FindByLineID(ctx context.Context, scope shared.Scope, lineID uuid.UUID) (*Booking, error)
	FindAllForScope(ctx context.Context, scope shared.Scope, filter shared.Filter) ([]Booking, error)
	CountForScope(ctx context.Context, scope shared.Scope, filter shared.Filter) (int64, error)

	// Save persists the booking and its lines atomically
	Save(ctx context.Context, b *Booking) error
	// SaveWithLock persists with an optimistic version check; a concurrent
	// mutation of the same booking surfaces ErrConcurrencyConflict
	SaveWithLock(ctx context.Context, b *Booking) error
	// SaveWithLockAndEvents additionally writes the given domain events to
	// the outbox inside the same transaction (transactional outbox pattern)
	SaveWithLockAndEvents(ctx context.Context, b *Booking, events []shared.DomainEvent) error

	ExistsByTrackingNumber(ctx context.Context, scope shared.Scope, trackingNumber string) (bool, error)
	// GenerateTrackingNumber produces the next tracking number for the
	// organization, unique within it
	GenerateTrackingNumber(ctx context.Context, scope shared.Scope) (string, error)
}
