package pricing

import (
	"context"
	"testing"
	"time"

	"github.com/freightpro/backend/internal/domain/shared"
	"github.com/freightpro/backend/internal/domain/shared/valueobject"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockArticleRepository is a mock implementation of ArticleRepository
type MockArticleRepository struct {
	mock.Mock
}

func (m *MockArticleRepository) FindByIDForScope(ctx context.Context, scope shared.Scope, id uuid.UUID) (*Article, error) {
	args := m.Called(ctx, scope, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Article), args.Error(1)
}

func (m *MockArticleRepository) FindByCodeForScope(ctx context.Context, scope shared.Scope, code string) (*Article, error) {
	args := m.Called(ctx, scope, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Article), args.Error(1)
}

func (m *MockArticleRepository) FindAllForScope(ctx context.Context, scope shared.Scope, filter shared.Filter) ([]Article, error) {
	args := m.Called(ctx, scope, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Article), args.Error(1)
}

func (m *MockArticleRepository) CountForScope(ctx context.Context, scope shared.Scope, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, scope, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockArticleRepository) Save(ctx context.Context, article *Article) error {
	args := m.Called(ctx, article)
	return args.Error(0)
}

func (m *MockArticleRepository) Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error {
	args := m.Called(ctx, scope, id)
	return args.Error(0)
}

// MockCustomerRateRepository is a mock implementation of CustomerRateRepository
type MockCustomerRateRepository struct {
	mock.Mock
}

func (m *MockCustomerRateRepository) FindForCustomerArticle(ctx context.Context, scope shared.Scope, customerID, articleID uuid.UUID) (*CustomerRate, error) {
	args := m.Called(ctx, scope, customerID, articleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CustomerRate), args.Error(1)
}

func (m *MockCustomerRateRepository) FindAllForCustomer(ctx context.Context, scope shared.Scope, customerID uuid.UUID) ([]CustomerRate, error) {
	args := m.Called(ctx, scope, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]CustomerRate), args.Error(1)
}

func (m *MockCustomerRateRepository) Save(ctx context.Context, rate *CustomerRate) error {
	args := m.Called(ctx, rate)
	return args.Error(0)
}

func (m *MockCustomerRateRepository) Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error {
	args := m.Called(ctx, scope, id)
	return args.Error(0)
}

// MockRateContractRepository is a mock implementation of RateContractRepository
type MockRateContractRepository struct {
	mock.Mock
}

func (m *MockRateContractRepository) FindByIDForScope(ctx context.Context, scope shared.Scope, id uuid.UUID) (*RateContract, error) {
	args := m.Called(ctx, scope, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*RateContract), args.Error(1)
}

func (m *MockRateContractRepository) FindActiveForCustomer(ctx context.Context, scope shared.Scope, customerID uuid.UUID) ([]RateContract, error) {
	args := m.Called(ctx, scope, customerID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]RateContract), args.Error(1)
}

func (m *MockRateContractRepository) FindAllForScope(ctx context.Context, scope shared.Scope, filter shared.Filter) ([]RateContract, error) {
	args := m.Called(ctx, scope, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]RateContract), args.Error(1)
}

func (m *MockRateContractRepository) CountForScope(ctx context.Context, scope shared.Scope, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, scope, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRateContractRepository) ExistsByContractNumber(ctx context.Context, scope shared.Scope, contractNumber string) (bool, error) {
	args := m.Called(ctx, scope, contractNumber)
	return args.Bool(0), args.Error(1)
}

func (m *MockRateContractRepository) Save(ctx context.Context, contract *RateContract) error {
	args := m.Called(ctx, contract)
	return args.Error(0)
}

func (m *MockRateContractRepository) Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error {
	args := m.Called(ctx, scope, id)
	return args.Error(0)
}

func newTestResolver(articles *MockArticleRepository, rates *MockCustomerRateRepository, contracts *MockRateContractRepository) *RateResolver {
	policy, _ := valueobject.NewWeightRoundingPolicy(decimal.RequireFromString("0.5"))
	return NewRateResolver(articles, rates, contracts, policy)
}

func activeContractWithRate(t *testing.T, orgID, customerID, articleID uuid.UUID, rate int64, basis RateBasis) RateContract {
	t.Helper()
	contract, err := NewRateContract(orgID, "RC-2026-100", customerID, decimal.Zero,
		time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	require.NoError(t, contract.AddItem(articleID, decimal.NewFromInt(rate), basis))
	require.NoError(t, contract.SubmitForApproval())
	require.NoError(t, contract.Approve(uuid.New()))
	return *contract
}

func TestRateResolver_Resolve(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	scope := shared.NewScope(orgID, uuid.New(), uuid.New())
	customerID := uuid.New()
	articleID := uuid.New()

	article, err := NewArticle(orgID, "Cotton Bales", "ART-001", "bale", decimal.NewFromInt(30), RateBasisPerUnit)
	require.NoError(t, err)
	article.ID = articleID

	t.Run("active contract override wins", func(t *testing.T) {
		articles := new(MockArticleRepository)
		rates := new(MockCustomerRateRepository)
		contracts := new(MockRateContractRepository)

		contract := activeContractWithRate(t, orgID, customerID, articleID, 42, RateBasisPerWeight)
		articles.On("FindByIDForScope", ctx, scope, articleID).Return(article, nil)
		contracts.On("FindActiveForCustomer", ctx, scope, customerID).Return([]RateContract{contract}, nil)

		resolver := newTestResolver(articles, rates, contracts)
		resolved, err := resolver.Resolve(ctx, scope, customerID, articleID)
		require.NoError(t, err)

		assert.Equal(t, RateSourceContract, resolved.Source)
		assert.True(t, resolved.RatePerUnit.Equal(decimal.NewFromInt(42)))
		assert.Equal(t, RateBasisPerWeight, resolved.Basis)
		require.NotNil(t, resolved.ContractID)
		assert.Equal(t, contract.ID, *resolved.ContractID)
		rates.AssertNotCalled(t, "FindForCustomerArticle", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("contract without article falls through to customer rate", func(t *testing.T) {
		articles := new(MockArticleRepository)
		rates := new(MockCustomerRateRepository)
		contracts := new(MockRateContractRepository)

		otherArticle := activeContractWithRate(t, orgID, customerID, uuid.New(), 42, RateBasisPerWeight)
		customerRate, err := NewCustomerRate(orgID, customerID, articleID, decimal.NewFromInt(25), RateBasisPerUnit)
		require.NoError(t, err)

		articles.On("FindByIDForScope", ctx, scope, articleID).Return(article, nil)
		contracts.On("FindActiveForCustomer", ctx, scope, customerID).Return([]RateContract{otherArticle}, nil)
		rates.On("FindForCustomerArticle", ctx, scope, customerID, articleID).Return(customerRate, nil)

		resolver := newTestResolver(articles, rates, contracts)
		resolved, err := resolver.Resolve(ctx, scope, customerID, articleID)
		require.NoError(t, err)

		assert.Equal(t, RateSourceCustomer, resolved.Source)
		assert.True(t, resolved.RatePerUnit.Equal(decimal.NewFromInt(25)))
	})

	t.Run("no discount falls back to base rate without error", func(t *testing.T) {
		articles := new(MockArticleRepository)
		rates := new(MockCustomerRateRepository)
		contracts := new(MockRateContractRepository)

		articles.On("FindByIDForScope", ctx, scope, articleID).Return(article, nil)
		contracts.On("FindActiveForCustomer", ctx, scope, customerID).Return([]RateContract{}, nil)
		rates.On("FindForCustomerArticle", ctx, scope, customerID, articleID).Return(nil, shared.ErrNotFound)

		resolver := newTestResolver(articles, rates, contracts)
		resolved, err := resolver.Resolve(ctx, scope, customerID, articleID)
		require.NoError(t, err)

		assert.Equal(t, RateSourceBase, resolved.Source)
		assert.True(t, resolved.RatePerUnit.Equal(decimal.NewFromInt(30)))
		assert.Equal(t, RateBasisPerUnit, resolved.Basis)
	})

	t.Run("multiple active contracts pick first (most recently approved)", func(t *testing.T) {
		articles := new(MockArticleRepository)
		rates := new(MockCustomerRateRepository)
		contracts := new(MockRateContractRepository)

		newer := activeContractWithRate(t, orgID, customerID, articleID, 40, RateBasisPerUnit)
		older := activeContractWithRate(t, orgID, customerID, articleID, 50, RateBasisPerUnit)

		articles.On("FindByIDForScope", ctx, scope, articleID).Return(article, nil)
		contracts.On("FindActiveForCustomer", ctx, scope, customerID).Return([]RateContract{newer, older}, nil)

		resolver := newTestResolver(articles, rates, contracts)
		resolved, err := resolver.Resolve(ctx, scope, customerID, articleID)
		require.NoError(t, err)
		assert.True(t, resolved.RatePerUnit.Equal(decimal.NewFromInt(40)))
	})

	t.Run("missing article is NotFound", func(t *testing.T) {
		articles := new(MockArticleRepository)
		rates := new(MockCustomerRateRepository)
		contracts := new(MockRateContractRepository)

		articles.On("FindByIDForScope", ctx, scope, articleID).Return(nil, shared.ErrNotFound)

		resolver := newTestResolver(articles, rates, contracts)
		_, err := resolver.Resolve(ctx, scope, customerID, articleID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("nil customer skips customer tiers", func(t *testing.T) {
		articles := new(MockArticleRepository)
		rates := new(MockCustomerRateRepository)
		contracts := new(MockRateContractRepository)

		articles.On("FindByIDForScope", ctx, scope, articleID).Return(article, nil)

		resolver := newTestResolver(articles, rates, contracts)
		resolved, err := resolver.Resolve(ctx, scope, uuid.Nil, articleID)
		require.NoError(t, err)
		assert.Equal(t, RateSourceBase, resolved.Source)
		contracts.AssertNotCalled(t, "FindActiveForCustomer", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestRateResolver_QuoteLine(t *testing.T) {
	ctx := context.Background()
	orgID := uuid.New()
	scope := shared.NewScope(orgID, uuid.New(), uuid.New())
	articleID := uuid.New()

	article, err := NewArticle(orgID, "Machine Parts", "ART-002", "box", decimal.NewFromInt(50), RateBasisPerWeight)
	require.NoError(t, err)
	article.ID = articleID

	articles := new(MockArticleRepository)
	rates := new(MockCustomerRateRepository)
	contracts := new(MockRateContractRepository)
	articles.On("FindByIDForScope", ctx, scope, articleID).Return(article, nil)

	resolver := newTestResolver(articles, rates, contracts)

	t.Run("rounds charged weight up", func(t *testing.T) {
		actual, err := valueobject.NewWeightFromFloat(25.1)
		require.NoError(t, err)

		quote, err := resolver.QuoteLine(ctx, scope, uuid.Nil, articleID, 10, actual)
		require.NoError(t, err)

		assert.True(t, quote.ChargedWeight.Kilograms().Equal(decimal.RequireFromString("25.5")))
		assert.False(t, quote.ChargedWeight.LessThan(quote.ActualWeight))
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		actual, err := valueobject.NewWeightFromFloat(10)
		require.NoError(t, err)

		_, err = resolver.QuoteLine(ctx, scope, uuid.Nil, articleID, 0, actual)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "VALIDATION_FAILED", domainErr.Code)
	})
}
