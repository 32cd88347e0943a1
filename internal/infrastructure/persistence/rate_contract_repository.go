package persistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/freightpro/backend/internal/domain/pricing"
	"github.com/freightpro/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormRateContractRepository implements RateContractRepository using GORM
type GormRateContractRepository struct {
	db *gorm.DB
}

// NewGormRateContractRepository creates a new GormRateContractRepository
func NewGormRateContractRepository(db *gorm.DB) *GormRateContractRepository {
	return &GormRateContractRepository{db: db}
}

// FindByIDForScope finds a rate contract by ID within the organization
func (r *GormRateContractRepository) FindByIDForScope(ctx context.Context, scope shared.Scope, id uuid.UUID) (*pricing.RateContract, error) {
	var contract pricing.RateContract
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("org_id = ? AND id = ?", scope.OrgID, id).
		First(&contract).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &contract, nil
}

// FindActiveForCustomer returns active contracts whose validity window
// contains now, most recently approved first. Rate resolution takes the
// first contract carrying an override for the article.
func (r *GormRateContractRepository) FindActiveForCustomer(ctx context.Context, scope shared.Scope, customerID uuid.UUID) ([]pricing.RateContract, error) {
	now := time.Now()
	var contracts []pricing.RateContract
	if err := r.db.WithContext(ctx).
		Preload("Items").
		Where("org_id = ? AND customer_id = ? AND status = ? AND valid_from <= ? AND valid_to >= ?",
			scope.OrgID, customerID, pricing.ContractStatusActive, now, now).
		Order("approved_at DESC").
		Find(&contracts).Error; err != nil {
		return nil, err
	}
	return contracts, nil
}

// FindAllForScope lists rate contracts for the organization with filtering
func (r *GormRateContractRepository) FindAllForScope(ctx context.Context, scope shared.Scope, filter shared.Filter) ([]pricing.RateContract, error) {
	var contracts []pricing.RateContract
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&pricing.RateContract{}).Where("org_id = ?", scope.OrgID).Preload("Items"),
		filter,
	)

	if err := query.Find(&contracts).Error; err != nil {
		return nil, err
	}
	return contracts, nil
}

// CountForScope counts rate contracts for the organization
func (r *GormRateContractRepository) CountForScope(ctx context.Context, scope shared.Scope, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&pricing.RateContract{}).Where("org_id = ?", scope.OrgID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ExistsByContractNumber checks if a contract number exists for the organization
func (r *GormRateContractRepository) ExistsByContractNumber(ctx context.Context, scope shared.Scope, contractNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&pricing.RateContract{}).
		Where("org_id = ? AND contract_number = ?", scope.OrgID, contractNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Save persists a contract and its item overrides atomically
func (r *GormRateContractRepository) Save(ctx context.Context, contract *pricing.RateContract) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(contract).Error; err != nil {
			return err
		}

		if contract.ID != uuid.Nil {
			currentItemIDs := make([]uuid.UUID, len(contract.Items))
			for i, item := range contract.Items {
				currentItemIDs[i] = item.ID
			}

			if len(currentItemIDs) > 0 {
				if err := tx.Where("contract_id = ? AND id NOT IN ?", contract.ID, currentItemIDs).
					Delete(&pricing.RateContractItem{}).Error; err != nil {
					return err
				}
			} else {
				if err := tx.Where("contract_id = ?", contract.ID).
					Delete(&pricing.RateContractItem{}).Error; err != nil {
					return err
				}
			}

			for i := range contract.Items {
				contract.Items[i].ContractID = contract.ID
				if err := tx.Save(&contract.Items[i]).Error; err != nil {
					return err
				}
			}
		}

		return nil
	})
}

// Delete removes a rate contract and its items
func (r *GormRateContractRepository) Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var contract pricing.RateContract
		if err := tx.Where("org_id = ? AND id = ?", scope.OrgID, id).First(&contract).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return shared.ErrNotFound
			}
			return err
		}

		if err := tx.Where("contract_id = ?", id).Delete(&pricing.RateContractItem{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&pricing.RateContract{}, "org_id = ? AND id = ?", scope.OrgID, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// applyFilter applies filter options to the query
func (r *GormRateContractRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply sorting with whitelist validation to prevent SQL injection
	sortField := ValidateSortField(filter.OrderBy, RateContractSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormRateContractRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("contract_number ILIKE ?", searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "valid_on":
			if t, ok := value.(time.Time); ok {
				query = query.Where("valid_from <= ? AND valid_to >= ?", t, t)
			}
		}
	}

	return query
}

// Ensure GormRateContractRepository implements RateContractRepository
var _ pricing.RateContractRepository = (*GormRateContractRepository)(nil)
