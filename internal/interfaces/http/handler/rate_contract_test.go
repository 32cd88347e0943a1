package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	pricingapp "github.com/freightpro/backend/internal/application/pricing"
	"github.com/freightpro/backend/internal/domain/pricing"
	"github.com/freightpro/backend/internal/domain/shared"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type contractHandlerFixture struct {
	router       *gin.Engine
	contractRepo *MockRateContractRepository
	articleRepo  *MockArticleRepository
	handler      *RateContractHandler
	scope        shared.Scope
}

func setupContractHandler() *contractHandlerFixture {
	gin.SetMode(gin.TestMode)

	contractRepo := new(MockRateContractRepository)
	articleRepo := new(MockArticleRepository)
	service := pricingapp.NewRateContractService(contractRepo, articleRepo)
	h := NewRateContractHandler(service)

	scope := testScope()
	router := gin.New()
	router.Use(scopeMiddleware(scope))

	return &contractHandlerFixture{
		router:       router,
		contractRepo: contractRepo,
		articleRepo:  articleRepo,
		handler:      h,
		scope:        scope,
	}
}

func testDraftContract(scope shared.Scope, customerID uuid.UUID) *pricing.RateContract {
	c, err := pricing.NewRateContract(
		scope.OrgID, "RC-2026-0007", customerID,
		decimal.NewFromInt(5),
		time.Now().AddDate(0, 0, -1), time.Now().AddDate(0, 3, 0),
	)
	if err != nil {
		panic(err)
	}
	return c
}

func TestRateContractHandler_Create(t *testing.T) {
	t.Run("should draft a contract with items", func(t *testing.T) {
		f := setupContractHandler()
		f.router.POST("/rate-contracts", f.handler.Create)

		article := testArticle(f.scope.OrgID)
		customerID := uuid.New()

		f.contractRepo.On("ExistsByContractNumber", mock.Anything, f.scope, "RC-2026-0007").
			Return(false, nil)
		f.articleRepo.On("FindByIDForScope", mock.Anything, f.scope, article.ID).
			Return(article, nil)
		f.contractRepo.On("Save", mock.Anything, mock.AnythingOfType("*pricing.RateContract")).
			Return(nil)

		reqBody := pricingapp.CreateRateContractRequest{
			ContractNumber:  "RC-2026-0007",
			CustomerID:      customerID,
			DiscountPercent: decimal.NewFromInt(5),
			ValidFrom:       time.Now().AddDate(0, 0, -1),
			ValidTo:         time.Now().AddDate(0, 3, 0),
			Items: []pricingapp.ContractItemInput{
				{ArticleID: article.ID, RatePerUnit: decimal.NewFromInt(6), Basis: "PER_WEIGHT"},
			},
		}

		w := doJSON(f.router, http.MethodPost, "/rate-contracts", reqBody)

		assert.Equal(t, http.StatusCreated, w.Code)

		var response map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "DRAFT", data["status"])
		items := data["items"].([]interface{})
		assert.Len(t, items, 1)

		f.contractRepo.AssertExpectations(t)
	})

	t.Run("should reject duplicate contract number", func(t *testing.T) {
		f := setupContractHandler()
		f.router.POST("/rate-contracts", f.handler.Create)

		f.contractRepo.On("ExistsByContractNumber", mock.Anything, f.scope, "RC-2026-0007").
			Return(true, nil)

		reqBody := pricingapp.CreateRateContractRequest{
			ContractNumber: "RC-2026-0007",
			CustomerID:     uuid.New(),
			ValidFrom:      time.Now(),
			ValidTo:        time.Now().AddDate(0, 3, 0),
		}

		w := doJSON(f.router, http.MethodPost, "/rate-contracts", reqBody)

		assert.NotEqual(t, http.StatusCreated, w.Code)
		f.contractRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("should return 404 when an item references an unknown article", func(t *testing.T) {
		f := setupContractHandler()
		f.router.POST("/rate-contracts", f.handler.Create)

		articleID := uuid.New()
		f.contractRepo.On("ExistsByContractNumber", mock.Anything, f.scope, "RC-2026-0008").
			Return(false, nil)
		f.articleRepo.On("FindByIDForScope", mock.Anything, f.scope, articleID).
			Return(nil, shared.ErrNotFound)

		reqBody := pricingapp.CreateRateContractRequest{
			ContractNumber: "RC-2026-0008",
			CustomerID:     uuid.New(),
			ValidFrom:      time.Now(),
			ValidTo:        time.Now().AddDate(0, 3, 0),
			Items: []pricingapp.ContractItemInput{
				{ArticleID: articleID, RatePerUnit: decimal.NewFromInt(6), Basis: "PER_WEIGHT"},
			},
		}

		w := doJSON(f.router, http.MethodPost, "/rate-contracts", reqBody)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestRateContractHandler_Lifecycle(t *testing.T) {
	t.Run("should approve a submitted contract", func(t *testing.T) {
		f := setupContractHandler()
		f.router.POST("/rate-contracts/:id/approve", f.handler.Approve)

		contract := testDraftContract(f.scope, uuid.New())
		assert.NoError(t, contract.SubmitForApproval())

		f.contractRepo.On("FindByIDForScope", mock.Anything, f.scope, contract.ID).
			Return(contract, nil)
		f.contractRepo.On("Save", mock.Anything, mock.AnythingOfType("*pricing.RateContract")).
			Return(nil)

		w := doJSON(f.router, http.MethodPost, "/rate-contracts/"+contract.ID.String()+"/approve", nil)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "ACTIVE", data["status"])
		assert.NotNil(t, data["approved_at"])
	})

	t.Run("should not approve a draft that was never submitted", func(t *testing.T) {
		f := setupContractHandler()
		f.router.POST("/rate-contracts/:id/approve", f.handler.Approve)

		contract := testDraftContract(f.scope, uuid.New())

		f.contractRepo.On("FindByIDForScope", mock.Anything, f.scope, contract.ID).
			Return(contract, nil)

		w := doJSON(f.router, http.MethodPost, "/rate-contracts/"+contract.ID.String()+"/approve", nil)

		assert.Equal(t, http.StatusConflict, w.Code)
		f.contractRepo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})

	t.Run("should send a rejected contract back to draft", func(t *testing.T) {
		f := setupContractHandler()
		f.router.POST("/rate-contracts/:id/reject", f.handler.Reject)

		contract := testDraftContract(f.scope, uuid.New())
		assert.NoError(t, contract.SubmitForApproval())

		f.contractRepo.On("FindByIDForScope", mock.Anything, f.scope, contract.ID).
			Return(contract, nil)
		f.contractRepo.On("Save", mock.Anything, mock.AnythingOfType("*pricing.RateContract")).
			Return(nil)

		w := doJSON(f.router, http.MethodPost, "/rate-contracts/"+contract.ID.String()+"/reject", nil)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "DRAFT", data["status"])
	})

	t.Run("should terminate an active contract with a reason", func(t *testing.T) {
		f := setupContractHandler()
		f.router.POST("/rate-contracts/:id/terminate", f.handler.Terminate)

		contract := testDraftContract(f.scope, uuid.New())
		assert.NoError(t, contract.SubmitForApproval())
		assert.NoError(t, contract.Approve(uuid.New()))

		f.contractRepo.On("FindByIDForScope", mock.Anything, f.scope, contract.ID).
			Return(contract, nil)
		f.contractRepo.On("Save", mock.Anything, mock.AnythingOfType("*pricing.RateContract")).
			Return(nil)

		reqBody := pricingapp.TerminateContractRequest{Reason: "Customer closed their account"}

		w := doJSON(f.router, http.MethodPost, "/rate-contracts/"+contract.ID.String()+"/terminate", reqBody)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		data := response["data"].(map[string]interface{})
		assert.Equal(t, "TERMINATED", data["status"])
		assert.Equal(t, "Customer closed their account", data["terminate_reason"])
	})

	t.Run("should require a termination reason", func(t *testing.T) {
		f := setupContractHandler()
		f.router.POST("/rate-contracts/:id/terminate", f.handler.Terminate)

		w := doJSON(f.router, http.MethodPost, "/rate-contracts/"+uuid.New().String()+"/terminate",
			map[string]interface{}{})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRateContractHandler_AddItem(t *testing.T) {
	t.Run("should add an item to a draft contract", func(t *testing.T) {
		f := setupContractHandler()
		f.router.POST("/rate-contracts/:id/items", f.handler.AddItem)

		article := testArticle(f.scope.OrgID)
		contract := testDraftContract(f.scope, uuid.New())

		f.contractRepo.On("FindByIDForScope", mock.Anything, f.scope, contract.ID).
			Return(contract, nil)
		f.articleRepo.On("FindByIDForScope", mock.Anything, f.scope, article.ID).
			Return(article, nil)
		f.contractRepo.On("Save", mock.Anything, mock.AnythingOfType("*pricing.RateContract")).
			Return(nil)

		reqBody := pricingapp.ContractItemInput{
			ArticleID:   article.ID,
			RatePerUnit: decimal.NewFromInt(6),
			Basis:       "PER_WEIGHT",
		}

		w := doJSON(f.router, http.MethodPost, "/rate-contracts/"+contract.ID.String()+"/items", reqBody)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		data := response["data"].(map[string]interface{})
		items := data["items"].([]interface{})
		assert.Len(t, items, 1)
	})
}

func TestRateContractHandler_List(t *testing.T) {
	t.Run("should list contracts filtered by status", func(t *testing.T) {
		f := setupContractHandler()
		f.router.GET("/rate-contracts", f.handler.List)

		contracts := []pricing.RateContract{*testDraftContract(f.scope, uuid.New())}
		f.contractRepo.On("FindAllForScope", mock.Anything, f.scope, mock.AnythingOfType("shared.Filter")).
			Return(contracts, nil)
		f.contractRepo.On("CountForScope", mock.Anything, f.scope, mock.AnythingOfType("shared.Filter")).
			Return(int64(1), nil)

		w := doJSON(f.router, http.MethodGet, "/rate-contracts?status=DRAFT", nil)

		assert.Equal(t, http.StatusOK, w.Code)

		var response map[string]interface{}
		assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
		assert.True(t, response["success"].(bool))
		assert.NotNil(t, response["meta"])
	})
}
