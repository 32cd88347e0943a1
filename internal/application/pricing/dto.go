package pricing

import (
	"time"

	"github.com/freightpro/backend/internal/domain/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ==================== Article DTOs ====================

// CreateArticleRequest represents a request to create a catalog article
type CreateArticleRequest struct {
	Name      string          `json:"name" binding:"required,min=1,max=200"`
	Code      string          `json:"code" binding:"required,min=1,max=50"`
	Unit      string          `json:"unit" binding:"required,min=1,max=20"`
	BaseRate  decimal.Decimal `json:"base_rate" binding:"required"`
	BaseBasis string          `json:"base_basis" binding:"required,oneof=PER_WEIGHT PER_UNIT"`
}

// UpdateArticleRateRequest updates an article's base rate
type UpdateArticleRateRequest struct {
	BaseRate  decimal.Decimal `json:"base_rate" binding:"required"`
	BaseBasis string          `json:"base_basis" binding:"required,oneof=PER_WEIGHT PER_UNIT"`
}

// ArticleResponse represents an article in API responses
type ArticleResponse struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	Code      string          `json:"code"`
	Unit      string          `json:"unit"`
	BaseRate  decimal.Decimal `json:"base_rate"`
	BaseBasis string          `json:"base_basis"`
	Active    bool            `json:"active"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ArticleListFilter represents filter options for article lists
type ArticleListFilter struct {
	Search   string `form:"search"`
	Active   *bool  `form:"active"`
	Page     int    `form:"page" binding:"min=0"`
	PageSize int    `form:"page_size" binding:"min=0,max=100"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ==================== Customer rate DTOs ====================

// SetCustomerRateRequest creates or replaces a negotiated customer rate
type SetCustomerRateRequest struct {
	CustomerID  uuid.UUID       `json:"customer_id" binding:"required"`
	ArticleID   uuid.UUID       `json:"article_id" binding:"required"`
	RatePerUnit decimal.Decimal `json:"rate_per_unit" binding:"required"`
	Basis       string          `json:"basis" binding:"required,oneof=PER_WEIGHT PER_UNIT"`
}

// CustomerRateResponse represents a customer rate in API responses
type CustomerRateResponse struct {
	ID          uuid.UUID       `json:"id"`
	CustomerID  uuid.UUID       `json:"customer_id"`
	ArticleID   uuid.UUID       `json:"article_id"`
	RatePerUnit decimal.Decimal `json:"rate_per_unit"`
	Basis       string          `json:"basis"`
}

// ==================== Quote DTOs ====================

// QuoteRequest asks for the effective rate of one candidate line
type QuoteRequest struct {
	CustomerID   *uuid.UUID      `json:"customer_id"`
	ArticleID    uuid.UUID       `json:"article_id" binding:"required"`
	Quantity     int             `json:"quantity" binding:"required,min=1"`
	ActualWeight decimal.Decimal `json:"actual_weight"`
}

// QuoteResponse is the resolved rate plus the billable weight
type QuoteResponse struct {
	RatePerUnit   decimal.Decimal `json:"rate_per_unit"`
	Basis         string          `json:"basis"`
	Source        string          `json:"source"`
	ContractID    *uuid.UUID      `json:"contract_id,omitempty"`
	ActualWeight  decimal.Decimal `json:"actual_weight"`
	ChargedWeight decimal.Decimal `json:"charged_weight"`
}

// ==================== Rate contract DTOs ====================

// CreateRateContractRequest represents a request to draft a rate contract
type CreateRateContractRequest struct {
	ContractNumber  string              `json:"contract_number" binding:"required,min=1,max=50"`
	CustomerID      uuid.UUID           `json:"customer_id" binding:"required"`
	DiscountPercent decimal.Decimal     `json:"discount_percent"`
	ValidFrom       time.Time           `json:"valid_from" binding:"required"`
	ValidTo         time.Time           `json:"valid_to" binding:"required"`
	Items           []ContractItemInput `json:"items"`
}

// ContractItemInput is one per-article override in a contract
type ContractItemInput struct {
	ArticleID   uuid.UUID       `json:"article_id" binding:"required"`
	RatePerUnit decimal.Decimal `json:"rate_per_unit" binding:"required"`
	Basis       string          `json:"basis" binding:"required,oneof=PER_WEIGHT PER_UNIT"`
}

// TerminateContractRequest carries the termination reason
type TerminateContractRequest struct {
	Reason string `json:"reason" binding:"required,min=1,max=500"`
}

// ContractItemResponse represents a contract item in API responses
type ContractItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ArticleID   uuid.UUID       `json:"article_id"`
	RatePerUnit decimal.Decimal `json:"rate_per_unit"`
	Basis       string          `json:"basis"`
}

// RateContractResponse represents a rate contract in API responses
type RateContractResponse struct {
	ID              uuid.UUID              `json:"id"`
	ContractNumber  string                 `json:"contract_number"`
	CustomerID      uuid.UUID              `json:"customer_id"`
	DiscountPercent decimal.Decimal        `json:"discount_percent"`
	ValidFrom       time.Time              `json:"valid_from"`
	ValidTo         time.Time              `json:"valid_to"`
	Status          string                 `json:"status"`
	Items           []ContractItemResponse `json:"items"`
	ApprovedAt      *time.Time             `json:"approved_at,omitempty"`
	ApprovedBy      *uuid.UUID             `json:"approved_by,omitempty"`
	TerminatedAt    *time.Time             `json:"terminated_at,omitempty"`
	TerminateReason string                 `json:"terminate_reason,omitempty"`
	Version         int                    `json:"version"`
	CreatedAt       time.Time              `json:"created_at"`
	UpdatedAt       time.Time              `json:"updated_at"`
}

// ContractListFilter represents filter options for contract lists
type ContractListFilter struct {
	CustomerID *uuid.UUID `form:"customer_id"`
	Status     *string    `form:"status"`
	Page       int        `form:"page" binding:"min=0"`
	PageSize   int        `form:"page_size" binding:"min=0,max=100"`
	OrderBy    string     `form:"order_by"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ToArticleResponse converts a domain article to a response DTO
func ToArticleResponse(a *pricing.Article) ArticleResponse {
	return ArticleResponse{
		ID:        a.ID,
		Name:      a.Name,
		Code:      a.Code,
		Unit:      a.Unit,
		BaseRate:  a.BaseRate,
		BaseBasis: a.BaseBasis.String(),
		Active:    a.Active,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// ToArticleResponses converts domain articles to response DTOs
func ToArticleResponses(articles []pricing.Article) []ArticleResponse {
	out := make([]ArticleResponse, 0, len(articles))
	for idx := range articles {
		out = append(out, ToArticleResponse(&articles[idx]))
	}
	return out
}

// ToCustomerRateResponse converts a domain customer rate to a response DTO
func ToCustomerRateResponse(r *pricing.CustomerRate) CustomerRateResponse {
	return CustomerRateResponse{
		ID:          r.ID,
		CustomerID:  r.CustomerID,
		ArticleID:   r.ArticleID,
		RatePerUnit: r.RatePerUnit,
		Basis:       r.Basis.String(),
	}
}

// ToRateContractResponse converts a domain contract to a response DTO
func ToRateContractResponse(c *pricing.RateContract) RateContractResponse {
	items := make([]ContractItemResponse, 0, len(c.Items))
	for _, item := range c.Items {
		items = append(items, ContractItemResponse{
			ID:          item.ID,
			ArticleID:   item.ArticleID,
			RatePerUnit: item.RatePerUnit,
			Basis:       item.Basis.String(),
		})
	}

	return RateContractResponse{
		ID:              c.ID,
		ContractNumber:  c.ContractNumber,
		CustomerID:      c.CustomerID,
		DiscountPercent: c.DiscountPercent,
		ValidFrom:       c.ValidFrom,
		ValidTo:         c.ValidTo,
		Status:          c.Status.String(),
		Items:           items,
		ApprovedAt:      c.ApprovedAt,
		ApprovedBy:      c.ApprovedBy,
		TerminatedAt:    c.TerminatedAt,
		TerminateReason: c.TerminateReason,
		Version:         c.GetVersion(),
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

// ToRateContractResponses converts domain contracts to response DTOs
func ToRateContractResponses(contracts []pricing.RateContract) []RateContractResponse {
	out := make([]RateContractResponse, 0, len(contracts))
	for idx := range contracts {
		out = append(out, ToRateContractResponse(&contracts[idx]))
	}
	return out
}
