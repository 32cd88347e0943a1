package pricing

import (
	"context"

	"github.com/freightpro/backend/internal/domain/pricing"
	"github.com/freightpro/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// RateContractService manages the rate contract lifecycle from draft through
// approval to expiry or termination.
type RateContractService struct {
	contractRepo pricing.RateContractRepository
	articleRepo  pricing.ArticleRepository
}

// NewRateContractService creates a new RateContractService
func NewRateContractService(contractRepo pricing.RateContractRepository, articleRepo pricing.ArticleRepository) *RateContractService {
	return &RateContractService{
		contractRepo: contractRepo,
		articleRepo:  articleRepo,
	}
}

// Create drafts a rate contract with its initial per-article overrides
func (s *RateContractService) Create(ctx context.Context, scope shared.Scope, req CreateRateContractRequest) (*RateContractResponse, error) {
	exists, err := s.contractRepo.ExistsByContractNumber(ctx, scope, req.ContractNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("DUPLICATE_CONTRACT_NUMBER", "A contract with this number already exists")
	}

	contract, err := pricing.NewRateContract(scope.OrgID, req.ContractNumber,
		req.CustomerID, req.DiscountPercent, req.ValidFrom, req.ValidTo)
	if err != nil {
		return nil, err
	}
	contract.SetCreatedBy(scope.UserID)

	for _, item := range req.Items {
		if _, aerr := s.articleRepo.FindByIDForScope(ctx, scope, item.ArticleID); aerr != nil {
			return nil, aerr
		}
		if aerr := contract.AddItem(item.ArticleID, item.RatePerUnit, pricing.RateBasis(item.Basis)); aerr != nil {
			return nil, aerr
		}
	}

	if err := s.contractRepo.Save(ctx, contract); err != nil {
		return nil, err
	}
	response := ToRateContractResponse(contract)
	return &response, nil
}

// GetByID retrieves a contract by ID
func (s *RateContractService) GetByID(ctx context.Context, scope shared.Scope, contractID uuid.UUID) (*RateContractResponse, error) {
	contract, err := s.contractRepo.FindByIDForScope(ctx, scope, contractID)
	if err != nil {
		return nil, err
	}
	response := ToRateContractResponse(contract)
	return &response, nil
}

// List retrieves contracts with filtering and pagination
func (s *RateContractService) List(ctx context.Context, scope shared.Scope, filter ContractListFilter) ([]RateContractResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}
	if filter.OrderBy == "" {
		filter.OrderBy = "created_at"
	}
	if filter.OrderDir == "" {
		filter.OrderDir = "desc"
	}

	domainFilter := shared.Filter{
		Page:     filter.Page,
		PageSize: filter.PageSize,
		OrderBy:  filter.OrderBy,
		OrderDir: filter.OrderDir,
		Filters:  make(map[string]interface{}),
	}
	if filter.CustomerID != nil {
		domainFilter.Filters["customer_id"] = *filter.CustomerID
	}
	if filter.Status != nil {
		domainFilter.Filters["status"] = *filter.Status
	}

	contracts, err := s.contractRepo.FindAllForScope(ctx, scope, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.contractRepo.CountForScope(ctx, scope, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToRateContractResponses(contracts), total, nil
}

// AddItem adds a per-article override to a draft contract
func (s *RateContractService) AddItem(ctx context.Context, scope shared.Scope, contractID uuid.UUID, req ContractItemInput) (*RateContractResponse, error) {
	contract, err := s.contractRepo.FindByIDForScope(ctx, scope, contractID)
	if err != nil {
		return nil, err
	}
	if _, err := s.articleRepo.FindByIDForScope(ctx, scope, req.ArticleID); err != nil {
		return nil, err
	}
	if err := contract.AddItem(req.ArticleID, req.RatePerUnit, pricing.RateBasis(req.Basis)); err != nil {
		return nil, err
	}
	if err := s.contractRepo.Save(ctx, contract); err != nil {
		return nil, err
	}
	response := ToRateContractResponse(contract)
	return &response, nil
}

// SubmitForApproval moves a draft contract into the approval queue
func (s *RateContractService) SubmitForApproval(ctx context.Context, scope shared.Scope, contractID uuid.UUID) (*RateContractResponse, error) {
	return s.lifecycleOp(ctx, scope, contractID, func(c *pricing.RateContract) error {
		return c.SubmitForApproval()
	})
}

// Approve activates a pending contract
func (s *RateContractService) Approve(ctx context.Context, scope shared.Scope, contractID uuid.UUID) (*RateContractResponse, error) {
	return s.lifecycleOp(ctx, scope, contractID, func(c *pricing.RateContract) error {
		return c.Approve(scope.UserID)
	})
}

// Reject sends a pending contract back to draft
func (s *RateContractService) Reject(ctx context.Context, scope shared.Scope, contractID uuid.UUID) (*RateContractResponse, error) {
	return s.lifecycleOp(ctx, scope, contractID, func(c *pricing.RateContract) error {
		return c.Reject()
	})
}

// Terminate ends an active contract early
func (s *RateContractService) Terminate(ctx context.Context, scope shared.Scope, contractID uuid.UUID, req TerminateContractRequest) (*RateContractResponse, error) {
	return s.lifecycleOp(ctx, scope, contractID, func(c *pricing.RateContract) error {
		return c.Terminate(req.Reason)
	})
}

func (s *RateContractService) lifecycleOp(ctx context.Context, scope shared.Scope, contractID uuid.UUID, op func(*pricing.RateContract) error) (*RateContractResponse, error) {
	contract, err := s.contractRepo.FindByIDForScope(ctx, scope, contractID)
	if err != nil {
		return nil, err
	}
	if err := op(contract); err != nil {
		return nil, err
	}
	if err := s.contractRepo.Save(ctx, contract); err != nil {
		return nil, err
	}
	response := ToRateContractResponse(contract)
	return &response, nil
}
