package pricing

import (
	"context"

	"github.com/freightpro/backend/internal/domain/pricing"
	"github.com/freightpro/backend/internal/domain/shared"
	"github.com/freightpro/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// ArticleService manages the article catalog, negotiated customer rates and
// ad-hoc rate quotes.
type ArticleService struct {
	articleRepo pricing.ArticleRepository
	rateRepo    pricing.CustomerRateRepository
	resolver    *pricing.RateResolver
}

// NewArticleService creates a new ArticleService
func NewArticleService(articleRepo pricing.ArticleRepository, rateRepo pricing.CustomerRateRepository, resolver *pricing.RateResolver) *ArticleService {
	return &ArticleService{
		articleRepo: articleRepo,
		rateRepo:    rateRepo,
		resolver:    resolver,
	}
}

// Create adds an article to the organization's catalog
func (s *ArticleService) Create(ctx context.Context, scope shared.Scope, req CreateArticleRequest) (*ArticleResponse, error) {
	if existing, err := s.articleRepo.FindByCodeForScope(ctx, scope, req.Code); err == nil && existing != nil {
		return nil, shared.NewDomainError("DUPLICATE_CODE", "An article with this code already exists")
	}

	article, err := pricing.NewArticle(scope.OrgID, req.Name, req.Code, req.Unit,
		req.BaseRate, pricing.RateBasis(req.BaseBasis))
	if err != nil {
		return nil, err
	}
	article.SetCreatedBy(scope.UserID)

	if err := s.articleRepo.Save(ctx, article); err != nil {
		return nil, err
	}
	response := ToArticleResponse(article)
	return &response, nil
}

// GetByID retrieves an article by ID
func (s *ArticleService) GetByID(ctx context.Context, scope shared.Scope, articleID uuid.UUID) (*ArticleResponse, error) {
	article, err := s.articleRepo.FindByIDForScope(ctx, scope, articleID)
	if err != nil {
		return nil, err
	}
	response := ToArticleResponse(article)
	return &response, nil
}

// List retrieves catalog articles with filtering and pagination
func (s *ArticleService) List(ctx context.Context, scope shared.Scope, filter ArticleListFilter) ([]ArticleResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "name"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "asc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Search:   filter.Search,
		Filters:  make(map[string]interface{}),
	}
	if filter.Active != nil {
		domainFilter.Filters["active"] = *filter.Active
	}

	articles, err := s.articleRepo.FindAllForScope(ctx, scope, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.articleRepo.CountForScope(ctx, scope, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToArticleResponses(articles), total, nil
}

// UpdateRate changes an article's base rate
func (s *ArticleService) UpdateRate(ctx context.Context, scope shared.Scope, articleID uuid.UUID, req UpdateArticleRateRequest) (*ArticleResponse, error) {
	article, err := s.articleRepo.FindByIDForScope(ctx, scope, articleID)
	if err != nil {
		return nil, err
	}
	if err := article.UpdateBaseRate(req.BaseRate, pricing.RateBasis(req.BaseBasis)); err != nil {
		return nil, err
	}
	if err := s.articleRepo.Save(ctx, article); err != nil {
		return nil, err
	}
	response := ToArticleResponse(article)
	return &response, nil
}

// Deactivate retires an article from the catalog
func (s *ArticleService) Deactivate(ctx context.Context, scope shared.Scope, articleID uuid.UUID) (*ArticleResponse, error) {
	article, err := s.articleRepo.FindByIDForScope(ctx, scope, articleID)
	if err != nil {
		return nil, err
	}
	article.Deactivate()
	if err := s.articleRepo.Save(ctx, article); err != nil {
		return nil, err
	}
	response := ToArticleResponse(article)
	return &response, nil
}

// SetCustomerRate creates or replaces a negotiated rate for one customer and
// article pair
func (s *ArticleService) SetCustomerRate(ctx context.Context, scope shared.Scope, req SetCustomerRateRequest) (*CustomerRateResponse, error) {
	if _, err := s.articleRepo.FindByIDForScope(ctx, scope, req.ArticleID); err != nil {
		return nil, err
	}

	existing, err := s.rateRepo.FindForCustomerArticle(ctx, scope, req.CustomerID, req.ArticleID)
	if err == nil {
		if uerr := existing.UpdateRate(req.RatePerUnit, pricing.RateBasis(req.Basis)); uerr != nil {
			return nil, uerr
		}
		if serr := s.rateRepo.Save(ctx, existing); serr != nil {
			return nil, serr
		}
		response := ToCustomerRateResponse(existing)
		return &response, nil
	}

	rate, err := pricing.NewCustomerRate(scope.OrgID, req.CustomerID, req.ArticleID,
		req.RatePerUnit, pricing.RateBasis(req.Basis))
	if err != nil {
		return nil, err
	}
	rate.SetCreatedBy(scope.UserID)
	if err := s.rateRepo.Save(ctx, rate); err != nil {
		return nil, err
	}
	response := ToCustomerRateResponse(rate)
	return &response, nil
}

// RemoveCustomerRate deletes a negotiated rate, falling pricing back to the
// article base rate
func (s *ArticleService) RemoveCustomerRate(ctx context.Context, scope shared.Scope, rateID uuid.UUID) error {
	return s.rateRepo.Delete(ctx, scope, rateID)
}

// Quote resolves the effective rate and billable weight for a candidate line
func (s *ArticleService) Quote(ctx context.Context, scope shared.Scope, req QuoteRequest) (*QuoteResponse, error) {
	actual, err := valueobject.NewWeight(req.ActualWeight)
	if err != nil {
		return nil, err
	}

	customerID := uuid.Nil
	if req.CustomerID != nil {
		customerID = *req.CustomerID
	}

	quote, err := s.resolver.QuoteLine(ctx, scope, customerID, req.ArticleID, req.Quantity, actual)
	if err != nil {
		return nil, err
	}

	return &QuoteResponse{
		RatePerUnit:   quote.RatePerUnit,
		Basis:         quote.Basis.String(),
		Source:        string(quote.Source),
		ContractID:    quote.ContractID,
		ActualWeight:  quote.ActualWeight.Kilograms(),
		ChargedWeight: quote.ChargedWeight.Kilograms(),
	}, nil
}
