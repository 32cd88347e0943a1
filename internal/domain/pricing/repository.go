package pricing

import (
	"context"

	"github.com/freightpro/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ArticleRepository persists the article catalog
type ArticleRepository interface {
	FindByIDForScope(ctx context.Context, scope shared.Scope, id uuid.UUID) (*Article, error)
	FindByCodeForScope(ctx context.Context, scope shared.Scope, code string) (*Article, error)
	FindAllForScope(ctx context.Context, scope shared.Scope, filter shared.Filter) ([]Article, error)
	CountForScope(ctx context.Context, scope shared.Scope, filter shared.Filter) (int64, error)
	Save(ctx context.Context, article *Article) error
	Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error
}

// CustomerRateRepository persists negotiated per-customer rates
type CustomerRateRepository interface {
	FindForCustomerArticle(ctx context.Context, scope shared.Scope, customerID, articleID uuid.UUID) (*CustomerRate, error)
	FindAllForCustomer(ctx context.Context, scope shared.Scope, customerID uuid.UUID) ([]CustomerRate, error)
	Save(ctx context.Context, rate *CustomerRate) error
	Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error
}

// RateContractRepository persists rate contracts
type RateContractRepository interface {
	FindByIDForScope(ctx context.Context, scope shared.Scope, id uuid.UUID) (*RateContract, error)
	// FindActiveForCustomer returns active contracts whose validity window
	// contains now, ordered by most recently approved first.
	FindActiveForCustomer(ctx context.Context, scope shared.Scope, customerID uuid.UUID) ([]RateContract, error)
	FindAllForScope(ctx context.Context, scope shared.Scope, filter shared.Filter) ([]RateContract, error)
	CountForScope(ctx context.Context, scope shared.Scope, filter shared.Filter) (int64, error)
	ExistsByContractNumber(ctx context.Context, scope shared.Scope, contractNumber string) (bool, error)
	Save(ctx context.Context, contract *RateContract) error
	Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error
}
