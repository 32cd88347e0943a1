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

// GormArticleRepository implements ArticleRepository using GORM.
// Articles are organization-level catalog data, so scoping is org-only.
type GormArticleRepository struct {
	db *gorm.DB
}

// NewGormArticleRepository creates a new GormArticleRepository
func NewGormArticleRepository(db *gorm.DB) *GormArticleRepository {
	return &GormArticleRepository{db: db}
}

// FindByIDForScope finds an article by ID within the caller's organization
func (r *GormArticleRepository) FindByIDForScope(ctx context.Context, scope shared.Scope, id uuid.UUID) (*pricing.Article, error) {
	var article pricing.Article
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND id = ?", scope.OrgID, id).
		First(&article).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &article, nil
}

// FindByCodeForScope finds an article by its code within the organization
func (r *GormArticleRepository) FindByCodeForScope(ctx context.Context, scope shared.Scope, code string) (*pricing.Article, error) {
	var article pricing.Article
	if err := r.db.WithContext(ctx).
		Where("org_id = ? AND code = ?", scope.OrgID, code).
		First(&article).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &article, nil
}

// FindAllForScope lists articles for the organization with filtering
func (r *GormArticleRepository) FindAllForScope(ctx context.Context, scope shared.Scope, filter shared.Filter) ([]pricing.Article, error) {
	var articles []pricing.Article
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&pricing.Article{}).Where("org_id = ?", scope.OrgID),
		filter,
	)

	if err := query.Find(&articles).Error; err != nil {
		return nil, err
	}
	return articles, nil
}

// CountForScope counts articles for the organization
func (r *GormArticleRepository) CountForScope(ctx context.Context, scope shared.Scope, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&pricing.Article{}).Where("org_id = ?", scope.OrgID)
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save creates or updates an article
func (r *GormArticleRepository) Save(ctx context.Context, article *pricing.Article) error {
	return r.db.WithContext(ctx).Save(article).Error
}

// Delete removes an article from the organization catalog
func (r *GormArticleRepository) Delete(ctx context.Context, scope shared.Scope, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Delete(&pricing.Article{}, "org_id = ? AND id = ?", scope.OrgID, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// applyFilter applies filter options to the query
func (r *GormArticleRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply sorting with whitelist validation to prevent SQL injection
	sortField := ValidateSortField(filter.OrderBy, ArticleSortFields, "name")
	sortOrder := "ASC"
	if filter.OrderDir != "" {
		sortOrder = ValidateSortOrder(filter.OrderDir)
	}
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormArticleRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR code ILIKE ?", searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "active":
			query = query.Where("active = ?", value)
		case "base_basis":
			query = query.Where("base_basis = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("created_at <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormArticleRepository implements ArticleRepository
var _ pricing.ArticleRepository = (*GormArticleRepository)(nil)
