package persistence

import (
	"context"
	"errors"

	"github.com/freightpro/backend/internal/domain/pricing"
	"github.com/freightpro/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormCustomerRateRepository implements CustomerRateRepository using GORM
type GormCustomerRateRepository struct {
	db *gorm.DB
}

// NewGormCustomerRateRepository creates a new GormCustomerRateRepository
func NewGormCustomerRateRepository(db *gorm.DB) *GormCustomerRateRepository {
	return &GormCustomerRateRepository{db: db}
}

// FindForCustomerArticle finds the negotiated rate for one customer/article pair
func (r *GormCustomerRateRepository) FindForCustomerArticle(ctx context.Context, scope shared.Scope, customerID, articleID uuid.UUID) (*pricing.CustomerRate, error) {
	var rate pricing.CustomerRate
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND customer_id = ? AND article_id = ?", scope.OrgID, customerID, articleID).
		First(&rate).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &rate, nil
}

// FindAllForCustomer lists all negotiated rates for a customer
func (r *GormCustomerRateRepository) FindAllForCustomer(ctx context.Context, scope shared.Scope, customerID uuid.UUID) ([]pricing.CustomerRate, error) {
	var rates []pricing.CustomerRate
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND customer_id = ?", scope.OrgID, customerID).
		Order("created_at DESC").
		Find(&rates).Error; err != nil {
		return nil, err
	}
	return rates, nil
}

// Save creates or updates a negotiated rate
func (r *GormCustomerRateRepository) Save(ctx context.Context, rate *pricing.CustomerRate) error {
	return r.db.WithContext(ctx).Save(rate).Error
}

// Delete removes a negotiated rate
func (r *GormCustomerRateRepository) Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&pricing.CustomerRate{}, "org_id = ? AND id = ?", scope.OrgID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormCustomerRateRepository implements CustomerRateRepository
var _ pricing.CustomerRateRepository = (*GormCustomerRateRepository)(nil)
