package pricing

import (
	"time"

	"github.com/freightpro/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// CustomerRate is a negotiated per-article rate for one customer. It sits
// between a rate contract override and the article base rate in the
// resolution order.
type CustomerRate struct {
	shared.OrgAggregateRoot
	CustomerID  uuid.UUID `gorm:"type:uuid;not null;index"`
	ArticleID   uuid.UUID `gorm:"type:uuid;not null;index"`
	RatePerUnit decimal.Decimal
	Basis       RateBasis
}

// TableName returns the table name for GORM
func (CustomerRate) TableName() string {
	return "customer_rates"
}

// NewCustomerRate creates a negotiated rate row
func NewCustomerRate(orgID, customerID, articleID uuid.UUID, ratePerUnit decimal.Decimal, basis RateBasis) (*CustomerRate, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if articleID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ARTICLE", "Article ID cannot be empty")
	}
	if ratePerUnit.IsNegative() {
		return nil, shared.NewDomainError("INVALID_RATE", "Rate cannot be negative")
	}
	if !basis.IsValid() {
		return nil, shared.NewDomainError("INVALID_RATE_BASIS", "Unknown rate basis")
	}

	return &CustomerRate{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		CustomerID:       customerID,
		ArticleID:        articleID,
		RatePerUnit:      ratePerUnit,
		Basis:            basis,
	}, nil
}

// UpdateRate changes the negotiated rate
func (r *CustomerRate) UpdateRate(ratePerUnit decimal.Decimal, basis RateBasis) error {
	if ratePerUnit.IsNegative() {
		return shared.NewDomainError("INVALID_RATE", "Rate cannot be negative")
	}
	if !basis.IsValid() {
		return shared.NewDomainError("INVALID_RATE_BASIS", "Unknown rate basis")
	}
	r.RatePerUnit = ratePerUnit
	r.Basis = basis
	r.UpdatedAt = time.Now()
	return nil
}
