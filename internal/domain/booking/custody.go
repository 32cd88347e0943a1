package booking

// BookingStatus is the physical-custody state of a whole booking
type BookingStatus string

const (
	BookingStatusBooked    BookingStatus = "BOOKED"
	BookingStatusInTransit BookingStatus = "IN_TRANSIT"
	BookingStatusDelivered BookingStatus = "DELIVERED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
)

// IsValid checks if the status is a valid BookingStatus
func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusBooked, BookingStatusInTransit, BookingStatusDelivered, BookingStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of BookingStatus
func (s BookingStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the status is terminal
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusDelivered || s == BookingStatusCancelled
}

// CanTransitionTo checks if the status can transition to the target status
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	switch s {
	case BookingStatusBooked:
		return target == BookingStatusInTransit || target == BookingStatusCancelled
	case BookingStatusInTransit:
		return target == BookingStatusDelivered || target == BookingStatusCancelled
	case BookingStatusDelivered, BookingStatusCancelled:
		return false
	}
	return false
}

// LineStatus is the per-article-line custody state, more granular than the
// booking-level status.
type LineStatus string

const (
	LineStatusBooked         LineStatus = "BOOKED"
	LineStatusLoaded         LineStatus = "LOADED"
	LineStatusInTransit      LineStatus = "IN_TRANSIT"
	LineStatusUnloaded       LineStatus = "UNLOADED"
	LineStatusOutForDelivery LineStatus = "OUT_FOR_DELIVERY"
	LineStatusDelivered      LineStatus = "DELIVERED"
	LineStatusDamaged        LineStatus = "DAMAGED"
	LineStatusMissing        LineStatus = "MISSING"
	LineStatusCancelled      LineStatus = "CANCELLED"
)

// IsValid checks if the status is a valid LineStatus
func (s LineStatus) IsValid() bool {
	switch s {
	case LineStatusBooked, LineStatusLoaded, LineStatusInTransit, LineStatusUnloaded,
		LineStatusOutForDelivery, LineStatusDelivered, LineStatusDamaged,
		LineStatusMissing, LineStatusCancelled:
		return true
	}
	return false
}

// String returns the string representation of LineStatus
func (s LineStatus) String() string {
	return string(s)
}

// IsTerminal reports whether the status is terminal
func (s LineStatus) IsTerminal() bool {
	switch s {
	case LineStatusDelivered, LineStatusDamaged, LineStatusMissing, LineStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status.
// Damaged, missing and cancelled are reachable from any non-terminal state;
// the forward chain is booked, loaded, in transit, unloaded, out for
// delivery, delivered. A line can skip the in-transit and out-for-delivery
// stamps (short local trips) but never the loaded and unloaded ones.
func (s LineStatus) CanTransitionTo(target LineStatus) bool {
	if s.IsTerminal() {
		return false
	}
	switch target {
	case LineStatusDamaged, LineStatusMissing, LineStatusCancelled:
		return true
	}

	switch s {
	case LineStatusBooked:
		return target == LineStatusLoaded
	case LineStatusLoaded:
		return target == LineStatusInTransit || target == LineStatusUnloaded
	case LineStatusInTransit:
		return target == LineStatusUnloaded
	case LineStatusUnloaded:
		return target == LineStatusOutForDelivery || target == LineStatusDelivered
	case LineStatusOutForDelivery:
		return target == LineStatusDelivered
	}
	return false
}
