package pricing

import (
	"context"
	"errors"
	"time"

	"github.com/freightpro/backend/internal/domain/shared"
	"github.com/freightpro/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RateSource identifies which pricing tier produced a resolved rate
type RateSource string

const (
	RateSourceContract RateSource = "CONTRACT"
	RateSourceCustomer RateSource = "CUSTOMER"
	RateSourceBase     RateSource = "BASE"
)

// ResolvedRate is the outcome of rate resolution for one article
type ResolvedRate struct {
	RatePerUnit decimal.Decimal
	Basis       RateBasis
	Source      RateSource
	ContractID  *uuid.UUID
}

// Quote extends a resolved rate with the billable weight for a candidate line
type Quote struct {
	ResolvedRate
	ActualWeight  valueobject.Weight
	ChargedWeight valueobject.Weight
}

// RateResolver resolves the price per unit for a customer and article.
// Resolution order, first match wins: an active rate contract override for
// the article, then a negotiated customer rate, then the article base rate.
// Ties between active contracts go to the most recently approved one.
//
// The resolver also owns the charged-weight rounding policy: callers may
// supply a pre-rounded charged weight, but quoting through the resolver
// applies the organization's round-up increment.
type RateResolver struct {
	articles      ArticleRepository
	customerRates CustomerRateRepository
	contracts     RateContractRepository
	rounding      valueobject.WeightRoundingPolicy
	now           func() time.Time
}

// NewRateResolver creates a rate resolver with the given rounding policy
func NewRateResolver(
	articles ArticleRepository,
	customerRates CustomerRateRepository,
	contracts RateContractRepository,
	rounding valueobject.WeightRoundingPolicy,
) *RateResolver {
	return &RateResolver{
		articles:      articles,
		customerRates: customerRates,
		contracts:     contracts,
		rounding:      rounding,
		now:           time.Now,
	}
}

// WithClock overrides the resolver's clock, for tests
func (r *RateResolver) WithClock(now func() time.Time) *RateResolver {
	r.now = now
	return r
}

// Resolve returns the rate per unit and basis for the customer and article.
// Missing article in scope is NotFound; absence of any customer-specific
// pricing is not an error, the article base rate applies.
func (r *RateResolver) Resolve(ctx context.Context, scope shared.Scope, customerID, articleID uuid.UUID) (ResolvedRate, error) {
	article, err := r.articles.FindByIDForScope(ctx, scope, articleID)
	if err != nil {
		return ResolvedRate{}, err
	}

	if customerID != uuid.Nil {
		if resolved, ok, cerr := r.resolveFromContracts(ctx, scope, customerID, articleID); cerr != nil {
			return ResolvedRate{}, cerr
		} else if ok {
			return resolved, nil
		}

		rate, rerr := r.customerRates.FindForCustomerArticle(ctx, scope, customerID, articleID)
		if rerr != nil && !errors.Is(rerr, shared.ErrNotFound) {
			return ResolvedRate{}, rerr
		}
		if rerr == nil {
			return ResolvedRate{
				RatePerUnit: rate.RatePerUnit,
				Basis:       rate.Basis,
				Source:      RateSourceCustomer,
			}, nil
		}
	}

	return ResolvedRate{
		RatePerUnit: article.BaseRate,
		Basis:       article.BaseBasis,
		Source:      RateSourceBase,
	}, nil
}

// QuoteLine resolves the rate and computes the charged weight for a
// candidate line. The charged weight is the actual weight rounded up by the
// resolver's policy, never below the actual weight.
func (r *RateResolver) QuoteLine(ctx context.Context, scope shared.Scope, customerID, articleID uuid.UUID, quantity int, actualWeight valueobject.Weight) (Quote, error) {
	if quantity <= 0 {
		return Quote{}, shared.NewValidationError("Quantity must be positive")
	}

	resolved, err := r.Resolve(ctx, scope, customerID, articleID)
	if err != nil {
		return Quote{}, err
	}

	return Quote{
		ResolvedRate:  resolved,
		ActualWeight:  actualWeight,
		ChargedWeight: r.rounding.ChargedWeight(actualWeight),
	}, nil
}

// resolveFromContracts checks active contracts for an article override.
// The repository returns candidates most-recently-approved first, so the
// first contract carrying the article wins.
func (r *RateResolver) resolveFromContracts(ctx context.Context, scope shared.Scope, customerID, articleID uuid.UUID) (ResolvedRate, bool, error) {
	contracts, err := r.contracts.FindActiveForCustomer(ctx, scope, customerID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ResolvedRate{}, false, nil
		}
		return ResolvedRate{}, false, err
	}

	now := r.now()
	for idx := range contracts {
		contract := &contracts[idx]
		if !contract.IsActiveAt(now) {
			continue
		}
		if item, ok := contract.RateFor(articleID); ok {
			contractID := contract.ID
			return ResolvedRate{
				RatePerUnit: item.RatePerUnit,
				Basis:       item.Basis,
				Source:      RateSourceContract,
				ContractID:  &contractID,
			}, true, nil
		}
	}
	return ResolvedRate{}, false, nil
}
