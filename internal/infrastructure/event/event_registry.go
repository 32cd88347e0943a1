package event

import (
	"github.com/freightpro/backend/internal/domain/booking"
	"github.com/freightpro/backend/internal/domain/dispatch"
	"github.com/freightpro/backend/internal/domain/shared"
)

// RegisterAllEvents registers every domain event type with the serializer.
// The OutboxProcessor needs these registrations to decode outbox payloads,
// including rows written under older payload schemas.
func RegisterAllEvents(serializer *VersionedSerializer) error {
	// Booking domain events
	serializer.Register(booking.EventTypeBookingCreated, &booking.BookingCreatedEvent{})
	serializer.Register(booking.EventTypeBookingCancelled, &booking.BookingCancelledEvent{})
	serializer.Register(booking.EventTypeLineCustodyChange, &booking.LineCustodyChangedEvent{})

	// Dispatch domain events
	serializer.Register(dispatch.EventTypeManifestCreated, &dispatch.ManifestCreatedEvent{})
	serializer.Register(dispatch.EventTypeManifestDispatched, &dispatch.ManifestDispatchedEvent{})
	serializer.Register(dispatch.EventTypeManifestCompleted, &dispatch.ManifestCompletedEvent{})

	// BookingDelivered v1 predates payment terms on the payload. Old outbox
	// rows are upgraded on read; to-pay is the safe default because invoicing
	// treats it as "collect before closing".
	return serializer.RegisterVersioned(
		booking.EventTypeBookingDelivered,
		booking.BookingDeliveredSchemaVersion,
		map[int]shared.DomainEvent{
			1: &booking.BookingDeliveredEvent{},
			2: &booking.BookingDeliveredEvent{},
		},
		NewBaseEventUpgrader(1, 2, func(data map[string]any) (map[string]any, error) {
			if _, ok := data["payment_terms"]; !ok {
				data["payment_terms"] = string(booking.PaymentTermsToPay)
			}
			return data, nil
		}),
	)
}
