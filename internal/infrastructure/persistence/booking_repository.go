package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/freightpro/backend/internal/domain/booking"
	"github.com/freightpro/backend/internal/domain/shared"
	"github.com/freightpro/backend/internal/infrastructure/persistence/tenant"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormBookingRepository implements BookingRepository using GORM
type GormBookingRepository struct {
	db          *gorm.DB
	outboxSaver shared.OutboxEventSaver // optional, for transactional outbox pattern
}

// NewGormBookingRepository creates a new GormBookingRepository
func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

// SetOutboxEventSaver sets the outbox event saver for transactional event publishing
func (r *GormBookingRepository) SetOutboxEventSaver(saver shared.OutboxEventSaver) {
	r.outboxSaver = saver
}

// FindByIDForScope finds a booking by ID within the caller's scope.
// A booking in the caller's organization but outside its branch visibility
// is a scope violation, not an absence; cross-org rows stay invisible.
func (r *GormBookingRepository) FindByIDForScope(ctx context.Context, scope shared.Scope, id uuid.UUID) (*booking.Booking, error) {
	var b booking.Booking
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("org_id = ? AND id = ?", scope.OrgID, id).
		First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if !scope.AllBranches && b.BranchID != scope.BranchID {
		return nil, shared.ErrForbidden
	}
	return &b, nil
}

// FindByTrackingNumber finds a booking by tracking number within scope
func (r *GormBookingRepository) FindByTrackingNumber(ctx context.Context, scope shared.Scope, trackingNumber string) (*booking.Booking, error) {
	var b booking.Booking
	if err := r.db.WithContext(ctx).
		Preload("Lines").
		Where("org_id = ? AND tracking_number = ?", scope.OrgID, trackingNumber).
		First(&b).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	if !scope.AllBranches && b.BranchID != scope.BranchID {
		return nil, shared.ErrForbidden
	}
	return &b, nil
}

// FindByLineID finds the booking owning the given article line
func (r *GormBookingRepository) FindByLineID(ctx context.Context, scope shared.Scope, lineID uuid.UUID) (*booking.Booking, error) {
	var line booking.ArticleLine
	if err := r.db.WithContext(ctx).
		Where("id = ?", lineID).
		First(&line).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return r.FindByIDForScope(ctx, scope, line.BookingID)
}

// FindAllForScope lists bookings visible to the scope with filtering
func (r *GormBookingRepository) FindAllForScope(ctx context.Context, scope shared.Scope, filter shared.Filter) ([]booking.Booking, error) {
	var bookings []booking.Booking
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&booking.Booking{}).Scopes(tenant.ScopeFrom(scope)).Preload("Lines"),
		filter,
	)

	if err := query.Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// CountForScope counts bookings visible to the scope
func (r *GormBookingRepository) CountForScope(ctx context.Context, scope shared.Scope, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&booking.Booking{}).Scopes(tenant.ScopeFrom(scope))
	query = r.applyFilterWithoutPagination(query, filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Save persists a booking and its lines atomically
func (r *GormBookingRepository) Save(ctx context.Context, b *booking.Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(b).Error; err != nil {
			return err
		}

		// Handle lines: delete removed lines and save/update existing ones
		if b.ID != uuid.Nil {
			currentLineIDs := make([]uuid.UUID, len(b.Lines))
			for i, line := range b.Lines {
				currentLineIDs[i] = line.ID
			}

			if len(currentLineIDs) > 0 {
				if err := tx.Where("booking_id = ? AND id NOT IN ?", b.ID, currentLineIDs).
					Delete(&booking.ArticleLine{}).Error; err != nil {
					return err
				}
			} else {
				if err := tx.Where("booking_id = ?", b.ID).
					Delete(&booking.ArticleLine{}).Error; err != nil {
					return err
				}
			}

			for i := range b.Lines {
				b.Lines[i].BookingID = b.ID
				if err := tx.Save(&b.Lines[i]).Error; err != nil {
					return err
				}
			}
		}

		return nil
	})
}

// SaveWithLock saves with optimistic locking (version check)
func (r *GormBookingRepository) SaveWithLock(ctx context.Context, b *booking.Booking) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return r.saveWithLockTx(tx, b)
	})
}

// SaveWithLockAndEvents saves with optimistic locking and writes the domain
// events to the outbox within the same transaction, so an event is persisted
// if and only if the booking change committed.
func (r *GormBookingRepository) SaveWithLockAndEvents(ctx context.Context, b *booking.Booking, events []shared.DomainEvent) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.saveWithLockTx(tx, b); err != nil {
			return err
		}
		if r.outboxSaver != nil && len(events) > 0 {
			if err := r.outboxSaver.SaveEvents(ctx, tx, events...); err != nil {
				return fmt.Errorf("failed to save events to outbox: %w", err)
			}
		}
		return nil
	})
}

func (r *GormBookingRepository) saveWithLockTx(tx *gorm.DB, b *booking.Booking) error {
	// Get current version from database. Scan does not raise
	// ErrRecordNotFound on an empty result, so check RowsAffected to tell
	// a deleted booking apart from a version conflict.
	var currentVersion int
	versionQuery := tx.Model(&booking.Booking{}).
		Where("id = ?", b.ID).
		Select("version").
		Scan(&currentVersion)
	if versionQuery.Error != nil {
		return versionQuery.Error
	}
	if versionQuery.RowsAffected == 0 {
		return shared.ErrNotFound
	}

	if currentVersion != b.Version {
		return shared.ErrConcurrencyConflict
	}

	b.Version++
	b.UpdatedAt = time.Now()

	result := tx.Model(&booking.Booking{}).
		Where("id = ? AND version = ?", b.ID, currentVersion).
		Updates(map[string]interface{}{
			"destination_branch_id": b.DestinationBranchID,
			"sender_id":             b.SenderID,
			"sender_name":           b.SenderName,
			"receiver_id":           b.ReceiverID,
			"receiver_name":         b.ReceiverName,
			"payment_terms":         b.PaymentTerms,
			"status":                b.Status,
			"total_amount":          b.TotalAmount,
			"remark":                b.Remark,
			"in_transit_at":         b.InTransitAt,
			"delivered_at":          b.DeliveredAt,
			"cancelled_at":          b.CancelledAt,
			"cancel_reason":         b.CancelReason,
			"version":               b.Version,
			"updated_at":            b.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}

	// Handle lines
	currentLineIDs := make([]uuid.UUID, len(b.Lines))
	for i, line := range b.Lines {
		currentLineIDs[i] = line.ID
	}

	if len(currentLineIDs) > 0 {
		if err := tx.Where("booking_id = ? AND id NOT IN ?", b.ID, currentLineIDs).
			Delete(&booking.ArticleLine{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("booking_id = ?", b.ID).
			Delete(&booking.ArticleLine{}).Error; err != nil {
			return err
		}
	}

	for i := range b.Lines {
		b.Lines[i].BookingID = b.ID
		if err := tx.Save(&b.Lines[i]).Error; err != nil {
			return err
		}
	}

	return nil
}

// ExistsByTrackingNumber checks if a tracking number exists for an organization
func (r *GormBookingRepository) ExistsByTrackingNumber(ctx context.Context, scope shared.Scope, trackingNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&booking.Booking{}).
		Where("org_id = ? AND tracking_number = ?", scope.OrgID, trackingNumber).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateTrackingNumber generates a unique tracking number for the organization
// Format: BK-YYYY-NNNNN (e.g., BK-2026-00001)
func (r *GormBookingRepository) GenerateTrackingNumber(ctx context.Context, scope shared.Scope) (string, error) {
	year := time.Now().Year()
	prefix := fmt.Sprintf("BK-%d-", year)

	// Get the highest tracking number for this year
	var lastBooking booking.Booking
	err := r.db.WithContext(ctx).
		Model(&booking.Booking{}).
		Where("org_id = ? AND tracking_number LIKE ?", scope.OrgID, prefix+"%").
		Order("tracking_number DESC").
		First(&lastBooking).Error

	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", err
	}

	var nextNum int64 = 1
	if err == nil && lastBooking.TrackingNumber != "" {
		parts := strings.Split(lastBooking.TrackingNumber, "-")
		if len(parts) == 3 {
			var num int64
			_, parseErr := fmt.Sscanf(parts[2], "%d", &num)
			if parseErr == nil {
				nextNum = num + 1
			}
		}
	}

	trackingNumber := fmt.Sprintf("%s%05d", prefix, nextNum)

	// Verify uniqueness
	exists, err := r.ExistsByTrackingNumber(ctx, scope, trackingNumber)
	if err != nil {
		return "", err
	}
	if exists {
		// If exists, try incrementing until we find a unique one
		for i := 0; i < 100; i++ {
			nextNum++
			trackingNumber = fmt.Sprintf("%s%05d", prefix, nextNum)
			exists, err = r.ExistsByTrackingNumber(ctx, scope, trackingNumber)
			if err != nil {
				return "", err
			}
			if !exists {
				break
			}
		}
	}

	return trackingNumber, nil
}

// applyFilter applies filter options to the query
func (r *GormBookingRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	// Apply pagination
	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	// Apply sorting with whitelist validation to prevent SQL injection
	sortField := ValidateSortField(filter.OrderBy, BookingSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(fmt.Sprintf("%s %s", sortField, sortOrder))

	return query
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormBookingRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	// Apply search
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("tracking_number ILIKE ? OR sender_name ILIKE ? OR receiver_name ILIKE ?",
			searchPattern, searchPattern, searchPattern)
	}

	// Apply additional filters
	for key, value := range filter.Filters {
		switch key {
		case "sender_id":
			query = query.Where("sender_id = ?", value)
		case "destination_branch_id":
			query = query.Where("destination_branch_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "payment_terms":
			query = query.Where("payment_terms = ?", value)
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

// Ensure GormBookingRepository implements BookingRepository
var _ booking.BookingRepository = (*GormBookingRepository)(nil)
