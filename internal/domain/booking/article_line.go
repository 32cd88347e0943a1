package booking

import (
	"time"

	"github.com/freightpro/backend/internal/domain/pricing"
	"github.com/freightpro/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// LineInput is the caller-supplied part of an article line. Everything
// derived from it (freight amount, handling totals, line total) is computed
// here and never settable from outside.
type LineInput struct {
	ArticleID              uuid.UUID
	Description            string
	Quantity               int
	Unit                   string
	ActualWeight           decimal.Decimal
	ChargedWeight          decimal.Decimal
	DeclaredValue          decimal.Decimal
	RatePerUnit            decimal.Decimal
	RateBasis              pricing.RateBasis
	LoadingChargePerUnit   decimal.Decimal
	UnloadingChargePerUnit decimal.Decimal
	InsuranceRequired      bool
	InsuranceValue         decimal.Decimal
	InsuranceCharge        decimal.Decimal
	PackagingCharge        decimal.Decimal
}

// Validate rejects out-of-range input before anything is computed or
// persisted. Violations are never clamped.
func (in LineInput) Validate() error {
	if in.ArticleID == uuid.Nil {
		return shared.NewValidationError("Article ID cannot be empty")
	}
	if in.Quantity <= 0 {
		return shared.NewValidationError("Quantity must be positive")
	}
	if in.ActualWeight.IsNegative() {
		return shared.NewValidationError("Actual weight cannot be negative")
	}
	if in.ChargedWeight.LessThan(in.ActualWeight) {
		return shared.NewValidationError("Charged weight cannot be below actual weight")
	}
	if in.RatePerUnit.IsNegative() {
		return shared.NewValidationError("Rate cannot be negative")
	}
	if !in.RateBasis.IsValid() {
		return shared.NewValidationError("Unknown rate basis")
	}
	if in.LoadingChargePerUnit.IsNegative() || in.UnloadingChargePerUnit.IsNegative() {
		return shared.NewValidationError("Handling charges cannot be negative")
	}
	if in.InsuranceRequired && !in.InsuranceValue.IsPositive() {
		return shared.NewValidationError("Insurance value must be positive when insurance is required")
	}
	if !in.InsuranceRequired && in.InsuranceCharge.IsPositive() {
		return shared.NewValidationError("Insurance charge requires the insurance flag")
	}
	if in.InsuranceCharge.IsNegative() || in.PackagingCharge.IsNegative() {
		return shared.NewValidationError("Charges cannot be negative")
	}
	return nil
}

// LineCharges holds the derived monetary fields of a line
type LineCharges struct {
	FreightAmount  decimal.Decimal
	LoadingTotal   decimal.Decimal
	UnloadingTotal decimal.Decimal
	LineTotal      decimal.Decimal
}

// ComputeLineCharges derives the billed amounts for a validated input.
// Per-weight freight always uses the charged weight, reflecting the policy
// that rounded-up weight classes determine price. Handling charges multiply
// by quantity because each physical unit is handled separately.
func ComputeLineCharges(in LineInput) LineCharges {
	quantity := decimal.NewFromInt(int64(in.Quantity))

	var freight decimal.Decimal
	if in.RateBasis == pricing.RateBasisPerWeight {
		freight = in.ChargedWeight.Mul(in.RatePerUnit)
	} else {
		freight = quantity.Mul(in.RatePerUnit)
	}

	loading := in.LoadingChargePerUnit.Mul(quantity)
	unloading := in.UnloadingChargePerUnit.Mul(quantity)
	total := freight.Add(loading).Add(unloading).Add(in.InsuranceCharge).Add(in.PackagingCharge)

	return LineCharges{
		FreightAmount:  freight,
		LoadingTotal:   loading,
		UnloadingTotal: unloading,
		LineTotal:      total,
	}
}

// ArticleLine is one priced, trackable physical item or batch within a
// booking. It carries its own custody status, constrained by the parent
// booking's status.
type ArticleLine struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	BookingID   uuid.UUID `gorm:"type:uuid;not null;index"`
	ArticleID   uuid.UUID `gorm:"type:uuid;not null;index"`
	Description string
	Quantity    int
	Unit        string

	ActualWeight  decimal.Decimal
	ChargedWeight decimal.Decimal
	DeclaredValue decimal.Decimal

	RatePerUnit            decimal.Decimal
	RateBasis              pricing.RateBasis
	FreightAmount          decimal.Decimal
	LoadingChargePerUnit   decimal.Decimal
	UnloadingChargePerUnit decimal.Decimal
	LoadingTotal           decimal.Decimal
	UnloadingTotal         decimal.Decimal
	InsuranceRequired      bool
	InsuranceValue         decimal.Decimal
	InsuranceCharge        decimal.Decimal
	PackagingCharge        decimal.Decimal
	LineTotal              decimal.Decimal

	Status       LineStatus
	LoadedAt     *time.Time
	LoadedBy     *uuid.UUID `gorm:"type:uuid"`
	UnloadedAt   *time.Time
	UnloadedBy   *uuid.UUID `gorm:"type:uuid"`
	DeliveredAt  *time.Time
	DeliveredBy  *uuid.UUID `gorm:"type:uuid"`
	StatusReason string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName returns the table name for GORM
func (ArticleLine) TableName() string {
	return "article_lines"
}

// NewArticleLine validates the input and builds a priced line
func NewArticleLine(bookingID uuid.UUID, in LineInput) (*ArticleLine, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	charges := ComputeLineCharges(in)
	now := time.Now()

	return &ArticleLine{
		ID:                     uuid.New(),
		BookingID:              bookingID,
		ArticleID:              in.ArticleID,
		Description:            in.Description,
		Quantity:               in.Quantity,
		Unit:                   in.Unit,
		ActualWeight:           in.ActualWeight,
		ChargedWeight:          in.ChargedWeight,
		DeclaredValue:          in.DeclaredValue,
		RatePerUnit:            in.RatePerUnit,
		RateBasis:              in.RateBasis,
		FreightAmount:          charges.FreightAmount,
		LoadingChargePerUnit:   in.LoadingChargePerUnit,
		UnloadingChargePerUnit: in.UnloadingChargePerUnit,
		LoadingTotal:           charges.LoadingTotal,
		UnloadingTotal:         charges.UnloadingTotal,
		InsuranceRequired:      in.InsuranceRequired,
		InsuranceValue:         in.InsuranceValue,
		InsuranceCharge:        in.InsuranceCharge,
		PackagingCharge:        in.PackagingCharge,
		LineTotal:              charges.LineTotal,
		Status:                 LineStatusBooked,
		CreatedAt:              now,
		UpdatedAt:              now,
	}, nil
}

// Reprice replaces the pricing inputs and recomputes the derived amounts.
// Only allowed while the line is still in booked custody.
func (l *ArticleLine) Reprice(in LineInput) error {
	if l.Status != LineStatusBooked {
		return shared.NewInvalidTransitionError("Cannot reprice a line that left booked custody")
	}
	if err := in.Validate(); err != nil {
		return err
	}

	charges := ComputeLineCharges(in)
	l.ArticleID = in.ArticleID
	l.Description = in.Description
	l.Quantity = in.Quantity
	l.Unit = in.Unit
	l.ActualWeight = in.ActualWeight
	l.ChargedWeight = in.ChargedWeight
	l.DeclaredValue = in.DeclaredValue
	l.RatePerUnit = in.RatePerUnit
	l.RateBasis = in.RateBasis
	l.FreightAmount = charges.FreightAmount
	l.LoadingChargePerUnit = in.LoadingChargePerUnit
	l.UnloadingChargePerUnit = in.UnloadingChargePerUnit
	l.LoadingTotal = charges.LoadingTotal
	l.UnloadingTotal = charges.UnloadingTotal
	l.InsuranceRequired = in.InsuranceRequired
	l.InsuranceValue = in.InsuranceValue
	l.InsuranceCharge = in.InsuranceCharge
	l.PackagingCharge = in.PackagingCharge
	l.LineTotal = charges.LineTotal
	l.UpdatedAt = time.Now()
	return nil
}

// transition moves the line to the target status, or reports why it cannot.
// Re-applying the current status is a no-op so retried operational scans do
// not fail.
func (l *ArticleLine) transition(target LineStatus) (applied bool, err error) {
	if l.Status == target {
		return false, nil
	}
	if !l.Status.CanTransitionTo(target) {
		return false, shared.NewInvalidTransitionError(
			"Line cannot move from " + l.Status.String() + " to " + target.String())
	}
	l.Status = target
	l.UpdatedAt = time.Now()
	return true, nil
}

// MarkLoaded records the line being loaded onto a vehicle
func (l *ArticleLine) MarkLoaded(actor uuid.UUID, at time.Time) error {
	applied, err := l.transition(LineStatusLoaded)
	if err != nil || !applied {
		return err
	}
	l.LoadedAt = &at
	l.LoadedBy = &actor
	return nil
}

// MarkInTransit records the line leaving the origin branch
func (l *ArticleLine) MarkInTransit() error {
	_, err := l.transition(LineStatusInTransit)
	return err
}

// MarkUnloaded records the line being unloaded at the destination
func (l *ArticleLine) MarkUnloaded(actor uuid.UUID, at time.Time) error {
	applied, err := l.transition(LineStatusUnloaded)
	if err != nil || !applied {
		return err
	}
	l.UnloadedAt = &at
	l.UnloadedBy = &actor
	return nil
}

// MarkOutForDelivery records the line leaving for final delivery
func (l *ArticleLine) MarkOutForDelivery() error {
	_, err := l.transition(LineStatusOutForDelivery)
	return err
}

// MarkDelivered records delivery to the receiver. A line can only be
// delivered after it has been unloaded.
func (l *ArticleLine) MarkDelivered(actor uuid.UUID, at time.Time) error {
	applied, err := l.transition(LineStatusDelivered)
	if err != nil || !applied {
		return err
	}
	l.DeliveredAt = &at
	l.DeliveredBy = &actor
	return nil
}

// MarkDamaged records the line as damaged, terminal
func (l *ArticleLine) MarkDamaged(reason string) error {
	applied, err := l.transition(LineStatusDamaged)
	if err != nil || !applied {
		return err
	}
	l.StatusReason = reason
	return nil
}

// MarkMissing records the line as missing, terminal
func (l *ArticleLine) MarkMissing(reason string) error {
	applied, err := l.transition(LineStatusMissing)
	if err != nil || !applied {
		return err
	}
	l.StatusReason = reason
	return nil
}

// Cancel removes the line from billing and custody tracking
func (l *ArticleLine) Cancel(reason string) error {
	applied, err := l.transition(LineStatusCancelled)
	if err != nil || !applied {
		return err
	}
	l.StatusReason = reason
	return nil
}

// IsCancelled reports whether the line is cancelled
func (l *ArticleLine) IsCancelled() bool {
	return l.Status == LineStatusCancelled
}
