package dispatch

import (
	"fmt"
	"time"

	"github.com/freightpro/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ManifestStatus is the lifecycle state of a loading manifest
type ManifestStatus string

const (
	ManifestStatusCreated ManifestStatus = "CREATED"
	// ManifestStatusInTransit means every member line was loaded and the
	// vehicle has departed
	ManifestStatusInTransit ManifestStatus = "IN_TRANSIT"
	// ManifestStatusPartiallyProcessed means a bulk phase finished with at
	// least one member line unresolved; the manifest never silently
	// advances past such lines
	ManifestStatusPartiallyProcessed ManifestStatus = "PARTIALLY_PROCESSED"
	ManifestStatusCompleted          ManifestStatus = "COMPLETED"
	ManifestStatusCancelled          ManifestStatus = "CANCELLED"
)

// IsValid checks if the status is a valid ManifestStatus
func (s ManifestStatus) IsValid() bool {
	switch s {
	case ManifestStatusCreated, ManifestStatusInTransit, ManifestStatusPartiallyProcessed,
		ManifestStatusCompleted, ManifestStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of ManifestStatus
func (s ManifestStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the status is terminal
func (s ManifestStatus) IsTerminal() bool {
	return s == ManifestStatusCompleted || s == ManifestStatusCancelled
}

// ManifestLineStatus tracks one member line through the manifest's bulk phases
type ManifestLineStatus string

const (
	ManifestLinePending  ManifestLineStatus = "PENDING"
	ManifestLineLoaded   ManifestLineStatus = "LOADED"
	ManifestLineUnloaded ManifestLineStatus = "UNLOADED"
	ManifestLineFailed   ManifestLineStatus = "FAILED"
)

// ManifestLine is a reference to one booking article line carried on the
// manifest's vehicle. Lines from multiple bookings share one manifest.
type ManifestLine struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	ManifestID    uuid.UUID `gorm:"type:uuid;not null;index"`
	BookingID     uuid.UUID `gorm:"type:uuid;not null;index"`
	LineID        uuid.UUID `gorm:"type:uuid;not null;index"`
	Status        ManifestLineStatus
	FailureReason string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName returns the table name for GORM
func (ManifestLine) TableName() string {
	return "manifest_lines"
}

// LoadingManifest groups article lines bound for the same vehicle, route and
// departure date. Its bulk custody phases (dispatch, completion) are
// evaluated line-by-line, never all-or-nothing, so one damaged or missing
// item cannot block the rest of the shipment.
type LoadingManifest struct {
	shared.BranchAggregateRoot
	ManifestNumber      string
	DestinationBranchID uuid.UUID `gorm:"type:uuid;not null;index"`
	VehicleNumber       string
	DriverName          string
	DepartureDate       time.Time
	Status              ManifestStatus
	Lines               []ManifestLine `gorm:"foreignKey:ManifestID"`
	DispatchedAt        *time.Time
	DispatchedBy        *uuid.UUID `gorm:"type:uuid"`
	CompletedAt         *time.Time
	CompletedBy         *uuid.UUID `gorm:"type:uuid"`
}

// TableName returns the table name for GORM
func (LoadingManifest) TableName() string {
	return "loading_manifests"
}

// NewLoadingManifest creates an empty manifest for one vehicle trip
func NewLoadingManifest(orgID, branchID, destinationBranchID uuid.UUID, manifestNumber, vehicleNumber, driverName string, departureDate time.Time) (*LoadingManifest, error) {
	if manifestNumber == "" {
		return nil, shared.NewDomainError("INVALID_MANIFEST_NUMBER", "Manifest number cannot be empty")
	}
	if destinationBranchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Destination branch is required")
	}
	if vehicleNumber == "" {
		return nil, shared.NewDomainError("INVALID_VEHICLE", "Vehicle number cannot be empty")
	}

	m := &LoadingManifest{
		BranchAggregateRoot: shared.NewBranchAggregateRoot(orgID, branchID),
		ManifestNumber:      manifestNumber,
		DestinationBranchID: destinationBranchID,
		VehicleNumber:       vehicleNumber,
		DriverName:          driverName,
		DepartureDate:       departureDate,
		Status:              ManifestStatusCreated,
		Lines:               make([]ManifestLine, 0),
	}
	m.AddDomainEvent(NewManifestCreatedEvent(m))
	return m, nil
}

// AddLine attaches one booking line before dispatch
func (m *LoadingManifest) AddLine(bookingID, lineID uuid.UUID) error {
	if m.Status != ManifestStatusCreated {
		return shared.NewDomainError("INVALID_STATE", "Cannot add lines to a dispatched manifest")
	}
	if bookingID == uuid.Nil || lineID == uuid.Nil {
		return shared.NewDomainError("INVALID_LINE", "Booking and line IDs are required")
	}
	for _, ml := range m.Lines {
		if ml.LineID == lineID {
			return shared.NewDomainError("DUPLICATE_LINE", "Line is already on this manifest")
		}
	}

	now := time.Now()
	m.Lines = append(m.Lines, ManifestLine{
		ID:         uuid.New(),
		ManifestID: m.ID,
		BookingID:  bookingID,
		LineID:     lineID,
		Status:     ManifestLinePending,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	m.UpdatedAt = now
	return nil
}

// RemoveLine detaches a member line before dispatch
func (m *LoadingManifest) RemoveLine(lineID uuid.UUID) error {
	if m.Status != ManifestStatusCreated {
		return shared.NewDomainError("INVALID_STATE", "Cannot remove lines from a dispatched manifest")
	}
	for idx := range m.Lines {
		if m.Lines[idx].LineID == lineID {
			m.Lines = append(m.Lines[:idx], m.Lines[idx+1:]...)
			m.UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.ErrNotFound
}

// CanDispatch reports whether a dispatch phase may run. A partially
// processed manifest already carries DispatchedAt from the first attempt
// and may still retry the loading phase for its unresolved lines.
func (m *LoadingManifest) CanDispatch() bool {
	if len(m.Lines) == 0 {
		return false
	}
	switch m.Status {
	case ManifestStatusCreated:
		return m.DispatchedAt == nil
	case ManifestStatusPartiallyProcessed:
		return true
	default:
		return false
	}
}

// CanComplete reports whether an unloading phase may run
func (m *LoadingManifest) CanComplete() bool {
	return (m.Status == ManifestStatusInTransit || m.Status == ManifestStatusPartiallyProcessed) &&
		m.DispatchedAt != nil
}

// RecordLineLoaded marks one member line as loaded during dispatch
func (m *LoadingManifest) RecordLineLoaded(lineID uuid.UUID) error {
	return m.recordLineStatus(lineID, ManifestLineLoaded, "")
}

// RecordLineUnloaded marks one member line as unloaded during completion
func (m *LoadingManifest) RecordLineUnloaded(lineID uuid.UUID) error {
	return m.recordLineStatus(lineID, ManifestLineUnloaded, "")
}

// RecordLineFailed records an individually-failed member line with its reason
func (m *LoadingManifest) RecordLineFailed(lineID uuid.UUID, reason string) error {
	return m.recordLineStatus(lineID, ManifestLineFailed, reason)
}

func (m *LoadingManifest) recordLineStatus(lineID uuid.UUID, status ManifestLineStatus, reason string) error {
	for idx := range m.Lines {
		if m.Lines[idx].LineID == lineID {
			m.Lines[idx].Status = status
			m.Lines[idx].FailureReason = reason
			m.Lines[idx].UpdatedAt = time.Now()
			return nil
		}
	}
	return shared.ErrNotFound
}

// FinishDispatch closes the loading phase after every member line has a
// recorded outcome. The manifest only moves to in-transit when all lines
// loaded; any failure leaves it partially processed so the unresolved lines
// stay visible.
func (m *LoadingManifest) FinishDispatch(actor uuid.UUID, at time.Time) error {
	if m.Status != ManifestStatusCreated && m.Status != ManifestStatusPartiallyProcessed {
		return shared.NewInvalidTransitionError(
			fmt.Sprintf("Cannot dispatch manifest in %s status", m.Status))
	}
	if len(m.Lines) == 0 {
		return shared.NewDomainError("EMPTY_MANIFEST", "Manifest has no lines to dispatch")
	}

	m.DispatchedAt = &at
	m.DispatchedBy = &actor
	if m.allLines(ManifestLineLoaded) {
		m.Status = ManifestStatusInTransit
	} else {
		m.Status = ManifestStatusPartiallyProcessed
	}
	m.UpdatedAt = time.Now()
	m.AddDomainEvent(NewManifestDispatchedEvent(m))
	return nil
}

// FinishCompletion closes the unloading phase. The manifest is only marked
// completed once every member line reached a terminal-for-this-phase state
// (unloaded, or individually failed); anything unresolved keeps it partially
// processed.
func (m *LoadingManifest) FinishCompletion(actor uuid.UUID, at time.Time) error {
	if !m.CanComplete() {
		return shared.NewInvalidTransitionError(
			fmt.Sprintf("Cannot complete manifest in %s status", m.Status))
	}

	if m.allLines(ManifestLineUnloaded) {
		m.Status = ManifestStatusCompleted
		m.CompletedAt = &at
		m.CompletedBy = &actor
	} else {
		m.Status = ManifestStatusPartiallyProcessed
	}
	m.UpdatedAt = time.Now()
	m.AddDomainEvent(NewManifestCompletedEvent(m))
	return nil
}

// Cancel cancels an undispatched manifest
func (m *LoadingManifest) Cancel() error {
	if m.Status != ManifestStatusCreated {
		return shared.NewInvalidTransitionError(
			fmt.Sprintf("Cannot cancel manifest in %s status", m.Status))
	}
	m.Status = ManifestStatusCancelled
	m.UpdatedAt = time.Now()
	return nil
}

// PendingLines returns member lines without a terminal phase outcome yet
func (m *LoadingManifest) PendingLines() []ManifestLine {
	pending := make([]ManifestLine, 0)
	for _, ml := range m.Lines {
		if ml.Status == ManifestLinePending || ml.Status == ManifestLineFailed {
			pending = append(pending, ml)
		}
	}
	return pending
}

// LoadedLines returns member lines currently marked loaded
func (m *LoadingManifest) LoadedLines() []ManifestLine {
	loaded := make([]ManifestLine, 0)
	for _, ml := range m.Lines {
		if ml.Status == ManifestLineLoaded {
			loaded = append(loaded, ml)
		}
	}
	return loaded
}

func (m *LoadingManifest) allLines(status ManifestLineStatus) bool {
	for _, ml := range m.Lines {
		if ml.Status != status {
			return false
		}
	}
	return len(m.Lines) > 0
}
