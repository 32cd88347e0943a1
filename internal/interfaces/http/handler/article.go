package handler

import (
	pricingapp "github.com/freightpro/backend/internal/application/pricing"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ArticleHandler handles article catalog and customer rate API endpoints
type ArticleHandler struct {
	BaseHandler
	articleService *pricingapp.ArticleService
}

// NewArticleHandler creates a new ArticleHandler
func NewArticleHandler(articleService *pricingapp.ArticleService) *ArticleHandler {
	return &ArticleHandler{
		articleService: articleService,
	}
}

// Create adds an article to the organization's catalog
func (h *ArticleHandler) Create(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req pricingapp.CreateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	article, err := h.articleService.Create(c.Request.Context(), scope, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, article)
}

// GetByID retrieves an article by ID
func (h *ArticleHandler) GetByID(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	articleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid article ID format")
		return
	}

	article, err := h.articleService.GetByID(c.Request.Context(), scope, articleID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, article)
}

// List retrieves a paginated list of catalog articles
func (h *ArticleHandler) List(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var filter pricingapp.ArticleListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 20
	}

	articles, total, err := h.articleService.List(c.Request.Context(), scope, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, articles, total, filter.Page, filter.PageSize)
}

// UpdateRate changes an article's base rate
func (h *ArticleHandler) UpdateRate(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	articleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid article ID format")
		return
	}

	var req pricingapp.UpdateArticleRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	article, err := h.articleService.UpdateRate(c.Request.Context(), scope, articleID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, article)
}

// Deactivate retires an article so new lines cannot use it
func (h *ArticleHandler) Deactivate(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	articleID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid article ID format")
		return
	}

	article, err := h.articleService.Deactivate(c.Request.Context(), scope, articleID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, article)
}

// SetCustomerRate creates or replaces a negotiated rate for one customer and
// article pair
func (h *ArticleHandler) SetCustomerRate(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req pricingapp.SetCustomerRateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	rate, err := h.articleService.SetCustomerRate(c.Request.Context(), scope, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, rate)
}

// RemoveCustomerRate deletes a negotiated rate, falling pricing back to the
// article base rate
func (h *ArticleHandler) RemoveCustomerRate(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	rateID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid rate ID format")
		return
	}

	if err := h.articleService.RemoveCustomerRate(c.Request.Context(), scope, rateID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// Quote resolves the effective rate and billable weight for a candidate line
// without creating a booking
func (h *ArticleHandler) Quote(c *gin.Context) {
	scope, err := getScope(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req pricingapp.QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	quote, err := h.articleService.Quote(c.Request.Context(), scope, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, quote)
}
