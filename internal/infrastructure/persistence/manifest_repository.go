package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/freightpro/backend/internal/domain/dispatch"
	"github.com/freightpro/backend/internal/domain/shared"
	"github.com/freightpro/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormManifestRepository implements ManifestRepository using GORM
type GormManifestRepository struct {
	db *gorm.DB
}

// NewGormManifestRepository creates a new GormManifestRepository
func NewGormManifestRepository(db *gorm.DB) *GormManifestRepository {
	return &GormManifestRepository{db: db}
}

// FindByIDForScope finds a manifest by ID within the caller's scope
func (r *GormManifestRepository) FindByIDForScope(ctx context.Context, scope shared.Scope, id uuid.UUID) (*dispatch.LoadingManifest, error) {
	var m dispatch.LoadingManifest
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("org_id = ? AND id = ?", scope.OrgID, id).
		First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if !scope.AllBranches && m.BranchID != scope.BranchID {
		return nil, shared.ErrForbidden
	}
	return &m, nil
}

// FindAllForScope lists manifests visible to the scope with filtering
func (r *GormManifestRepository) FindAllForScope(ctx context.Context, scope shared.Scope, filter shared.Filter) ([]dispatch.LoadingManifest, error) {
	var manifests []dispatch.LoadingManifest
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&dispatch.LoadingManifest{}).Scopes(tenant.ScopeFrom(scope)).Preload("Lines"),
		filter,
	)

	if err := query.Find(&manifests).Error; err != nil {
		return nil, err
	}
	return manifests, nil
}

// CountForScope counts manifests visible to the scope
func (r *GormManifestRepository) CountForScope(ctx context.Context, scope shared.Scope, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&dispatch.LoadingManifest{}).Scopes(tenant.ScopeFrom(scope))
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindOpenByBookingForScope returns CREATED manifests carrying any line of
// the given booking
func (r *GormManifestRepository) FindOpenByBookingForScope(ctx context.Context, scope shared.Scope, bookingID uuid.UUID) ([]dispatch.LoadingManifest, error) {
	var manifests []dispatch.LoadingManifest
	if err := r.db.WithContext(ctx).
		Model(&dispatch.LoadingManifest{}).
		Scopes(tenant.ScopeFrom(scope)).
		Preload("Lines").
		Distinct("loading_manifests.*").
		Joins("JOIN manifest_lines ON manifest_lines.manifest_id = loading_manifests.id").
		Where("manifest_lines.booking_id = ?", bookingID).
		Where("loading_manifests.status = ?", dispatch.ManifestStatusCreated).
		Find(&manifests).Error; err != nil {
		return nil, err
	}
	return manifests, nil
}

// Save persists a manifest and its lines atomically
func (r *GormManifestRepository) Save(ctx context.Context, m *dispatch.LoadingManifest) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(m).Error; err != nil {
			return err
		}

		if m.ID != uuid.Nil {
			currentLineIDs := make([]uuid.UUID, len(m.Lines))
			for i, line := range m.Lines {
				currentLineIDs[i] = line.ID
			}

			if len(currentLineIDs) > 0 {
				if err := tx.Where("manifest_id = ? AND id NOT IN ?", m.ID, currentLineIDs).
					Delete(&dispatch.ManifestLine{}).Error; err != nil {
					return err
				}
			} else {
				if err := tx.Where("manifest_id = ?", m.ID).
					Delete(&dispatch.ManifestLine{}).Error; err != nil {
					return err
				}
			}

			for i := range m.Lines {
				m.Lines[i].ManifestID = m.ID
				if err := tx.Save(&m.Lines[i]).Error; err != nil {
					return err
				}
			}
		}

		return nil
	})
}

// ExistsByManifestNumber checks if a manifest number exists for an organization
func (r *GormManifestRepository) ExistsByManifestNumber(ctx context.Context, scope shared.Scope, manifestNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&dispatch.LoadingManifest{}).
		Where("org_id = ? AND manifest_number = ?", scope.OrgID, manifestNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateManifestNumber generates a unique manifest number for the organization
// Format: MF-YYYY-NNNNN (e.g., MF-2026-00001)
func (r *GormManifestRepository) GenerateManifestNumber(ctx context.Context, scope shared.Scope) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("MF-%d-", year)

	var lastManifest dispatch.LoadingManifest
	err := r.db.WithContext(ctx).
		Model(&dispatch.LoadingManifest{}).
		Where("org_id = ? AND manifest_number LIKE ?", scope.OrgID, prefix+"%").
		Order("manifest_number DESC").
		First(&lastManifest).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastManifest.ManifestNumber != "" {
		parts := strings.Split(lastManifest.ManifestNumber, "-")
		if len(parts) == 3 {
			var num int64
			_, parseErr := fmt.Sscanf(parts[2], "%d", &num)
			if parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	manifestNumber := fmt.Sprintf("%s%05d", prefix, nextNum)

	exists, err := r.ExistsByManifestNumber(ctx, scope, manifestNumber)
	if err != nil {
		return "", err
	}
	if exists {
		for i := 0; i < 100; i++ {
			nextNum++
			manifestNumber = fmt.Sprintf("%s%05d", prefix, nextNum)
			exists, err = r.ExistsByManifestNumber(ctx, scope, manifestNumber)
			if err != nil {
				return "", err
			}
			if !exists {
				break
			}
		}
	}

	return manifestNumber, nil
}

// applyFilter applies filter options to the query
func (r *GormManifestRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply sorting with whitelist validation to prevent SQL injection
	sortField := ValidateSortField(filter.OrderBy, ManifestSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormManifestRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("manifest_number ILIKE ? OR vehicle_number ILIKE ? OR driver_name ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "destination_branch_id":
			query = query.Where("destination_branch_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "vehicle_number":
			query = query.Where("vehicle_number = ?", value)
		case "start_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("departure_date >= ?", t)
			}
		case "end_date":
			if t, ok := value.(time.Time); ok {
				query = query.Where("departure_date <= ?", t)
			}
		}
	}

	return query
}

// Ensure GormManifestRepository implements ManifestRepository
var _ dispatch.ManifestRepository = (*GormManifestRepository)(nil)
