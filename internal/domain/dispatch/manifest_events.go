package dispatch

import (
	"time"

	"github.com/freightpro/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Aggregate type constant
const AggregateTypeManifest = "LoadingManifest"

// Event type constants
const (
	EventTypeManifestCreated    = "ManifestCreated"
	EventTypeManifestDispatched = "ManifestDispatched"
	EventTypeManifestCompleted  = "ManifestCompleted"
)

// ManifestCreatedEvent is raised when a manifest is created
type ManifestCreatedEvent struct {
	shared.BaseDomainEvent
	ManifestID     uuid.UUID `json:"manifest_id"`
	ManifestNumber string    `json:"manifest_number"`
	VehicleNumber  string    `json:"vehicle_number"`
	DepartureDate  time.Time `json:"departure_date"`
}

// NewManifestCreatedEvent creates a new ManifestCreatedEvent
func NewManifestCreatedEvent(m *LoadingManifest) *ManifestCreatedEvent {
	return &ManifestCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeManifestCreated, AggregateTypeManifest, m.ID, m.OrgID),
		ManifestID:      m.ID,
		ManifestNumber:  m.ManifestNumber,
		VehicleNumber:   m.VehicleNumber,
		DepartureDate:   m.DepartureDate,
	}
}

// EventType returns the event type name
func (e *ManifestCreatedEvent) EventType() string {
	return EventTypeManifestCreated
}

// ManifestDispatchedEvent is raised when the loading phase finishes
type ManifestDispatchedEvent struct {
	shared.BaseDomainEvent
	ManifestID     uuid.UUID      `json:"manifest_id"`
	ManifestNumber string         `json:"manifest_number"`
	Status         ManifestStatus `json:"status"`
	LoadedCount    int            `json:"loaded_count"`
	FailedCount    int            `json:"failed_count"`
}

// NewManifestDispatchedEvent creates a new ManifestDispatchedEvent
func NewManifestDispatchedEvent(m *LoadingManifest) *ManifestDispatchedEvent {
	loaded, failed := 0, 0
	for _, ml := range m.Lines {
		switch ml.Status {
		case ManifestLineLoaded:
			loaded++
		case ManifestLineFailed:
			failed++
		}
	}
	return &ManifestDispatchedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeManifestDispatched, AggregateTypeManifest, m.ID, m.OrgID),
		ManifestID:      m.ID,
		ManifestNumber:  m.ManifestNumber,
		Status:          m.Status,
		LoadedCount:     loaded,
		FailedCount:     failed,
	}
}

// EventType returns the event type name
func (e *ManifestDispatchedEvent) EventType() string {
	return EventTypeManifestDispatched
}

// ManifestCompletedEvent is raised when the unloading phase finishes
type ManifestCompletedEvent struct {
	shared.BaseDomainEvent
	ManifestID     uuid.UUID      `json:"manifest_id"`
	ManifestNumber string         `json:"manifest_number"`
	Status         ManifestStatus `json:"status"`
}

// NewManifestCompletedEvent creates a new ManifestCompletedEvent
func NewManifestCompletedEvent(m *LoadingManifest) *ManifestCompletedEvent {
	return &ManifestCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeManifestCompleted, AggregateTypeManifest, m.ID, m.OrgID),
		ManifestID:      m.ID,
		ManifestNumber:  m.ManifestNumber,
		Status:          m.Status,
	}
}

// EventType returns the event type name
func (e *ManifestCompletedEvent) EventType() string {
	return EventTypeManifestCompleted
}
