package pricing

import (
	"time"

	"github.com/freightpro/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RateBasis determines how a freight rate is applied to a line
type RateBasis string

const (
	// RateBasisPerWeight bills by charged weight (rate x charged kg)
	RateBasisPerWeight RateBasis = "PER_WEIGHT"
	// RateBasisPerUnit bills by quantity (rate x units)
	RateBasisPerUnit RateBasis = "PER_UNIT"
)

// IsValid checks if the basis is a known RateBasis
func (b RateBasis) IsValid() bool {
	return b == RateBasisPerWeight || b == RateBasisPerUnit
}

// String returns the string representation of RateBasis
func (b RateBasis) String() string {
	return string(b)
}

// Article is a transportable goods type in the organization's catalog.
// Its base rate is the pricing fallback when no customer-specific or
// contract rate applies.
type Article struct {
	shared.OrgAggregateRoot
	Name      string
	Code      string
	Unit      string
	BaseRate  decimal.Decimal
	BaseBasis RateBasis
	Active    bool
}

// TableName returns the table name for GORM
func (Article) TableName() string {
	return "articles"
}

// NewArticle creates a new article in the catalog
func NewArticle(orgID uuid.UUID, name, code, unit string, baseRate decimal.Decimal, basis RateBasis) (*Article, error) {
	if name == "" {
		return nil, shared.NewDomainError("INVALID_ARTICLE_NAME", "Article name cannot be empty")
	}
	if code == "" {
		return nil, shared.NewDomainError("INVALID_ARTICLE_CODE", "Article code cannot be empty")
	}
	if unit == "" {
		return nil, shared.NewDomainError("INVALID_UNIT", "Unit cannot be empty")
	}
	if baseRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_RATE", "Base rate cannot be negative")
	}
	if !basis.IsValid() {
		return nil, shared.NewDomainError("INVALID_RATE_BASIS", "Unknown rate basis")
	}

	return &Article{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		Name:             name,
		Code:             code,
		Unit:             unit,
		BaseRate:         baseRate,
		BaseBasis:        basis,
		Active:           true,
	}, nil
}

// UpdateBaseRate changes the fallback rate for the article
func (a *Article) UpdateBaseRate(rate decimal.Decimal, basis RateBasis) error {
	if rate.IsNegative() {
		return shared.NewDomainError("INVALID_RATE", "Base rate cannot be negative")
	}
	if !basis.IsValid() {
		return shared.NewDomainError("INVALID_RATE_BASIS", "Unknown rate basis")
	}
	a.BaseRate = rate
	a.BaseBasis = basis
	a.UpdatedAt = time.Now()
	return nil
}

// Deactivate removes the article from active use without deleting history
func (a *Article) Deactivate() {
	a.Active = false
	a.UpdatedAt = time.Now()
}
