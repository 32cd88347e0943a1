// Package tenant provides multi-tenant database scoping for GORM.
//
// Every row in tenant-owned tables carries an org_id (the hard isolation
// boundary) and a branch_id (the visibility boundary within an org). This
// package applies WHERE org_id = ? automatically from the request context
// and offers scope helpers that narrow queries to a branch unless the
// caller holds org-wide visibility.
//
// Usage:
//
//	db := tenant.NewTenantDB(gormDB)
//	scopedDB := db.WithContext(ctx)       // WHERE org_id = ? auto-added
//	scopedDB.Scopes(tenant.ScopeFrom(sc)) // plus branch narrowing
package tenant

import (
	"context"
	"errors"

	"github.com/freightpro/backend/internal/domain/shared"
	"github.com/freightpro/backend/internal/infrastructure/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrOrgIDRequired is returned when org_id is required but not found
var ErrOrgIDRequired = errors.New("org_id is required but not found in context")

// ErrInvalidOrgID is returned when org_id format is invalid
var ErrInvalidOrgID = errors.New("invalid org_id format")

// OrgScope applies organization filtering to GORM queries
func OrgScope(orgID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("org_id = ?", orgID)
	}
}

// OrgScopeString applies organization filtering using a string org ID
func OrgScopeString(orgID string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("org_id = ?", orgID)
	}
}

// BranchScope applies branch filtering to GORM queries
func BranchScope(branchID uuid.UUID) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("branch_id = ?", branchID)
	}
}

// ScopeFrom applies the full visibility scope: org_id always, branch_id
// unless the scope grants org-wide visibility.
func ScopeFrom(sc shared.Scope) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		db = db.Where("org_id = ?", sc.OrgID)
		if !sc.AllBranches {
			db = db.Where("branch_id = ?", sc.BranchID)
		}
		return db
	}
}

// TenantDB wraps GORM DB with automatic org scoping
type TenantDB struct {
	db        *gorm.DB
	orgColumn string
	required  bool
}

// Config holds configuration for TenantDB
type Config struct {
	// OrgColumn is the name of the org ID column (default: "org_id")
	OrgColumn string
	// Required determines if org_id is mandatory (default: true)
	Required bool
}

// DefaultConfig returns default TenantDB configuration
func DefaultConfig() Config {
	return Config{
		OrgColumn: "org_id",
		Required:  true,
	}
}

// NewTenantDB creates a new TenantDB with default configuration
func NewTenantDB(db *gorm.DB) *TenantDB {
	return NewTenantDBWithConfig(db, DefaultConfig())
}

// NewTenantDBWithConfig creates a new TenantDB with custom configuration
func NewTenantDBWithConfig(db *gorm.DB, cfg Config) *TenantDB {
	if cfg.OrgColumn == "" {
		cfg.OrgColumn = "org_id"
	}
	return &TenantDB{
		db:        db,
		orgColumn: cfg.OrgColumn,
		required:  cfg.Required,
	}
}

// DB returns the underlying GORM DB without org scoping.
// Use with caution - this bypasses tenant isolation.
func (t *TenantDB) DB() *gorm.DB {
	return t.db
}

// WithContext returns a GORM DB scoped to the org from context.
// It extracts org_id from the context (set by the auth middleware)
// and automatically applies the org filter to all queries.
//
// If org_id is not found in context and Required is true, it returns
// a DB that will error on any operation.
func (t *TenantDB) WithContext(ctx context.Context) *gorm.DB {
	orgID := logger.GetOrgID(ctx)

	if orgID == "" {
		if t.required {
			// Return a DB that will error on execution
			db := t.db.WithContext(ctx)
			_ = db.AddError(ErrOrgIDRequired)
			return db
		}
		// If not required, return DB without org scope
		return t.db.WithContext(ctx)
	}

	// Validate UUID format
	if _, err := uuid.Parse(orgID); err != nil {
		db := t.db.WithContext(ctx)
		_ = db.AddError(ErrInvalidOrgID)
		return db
	}

	// Apply org scope
	return t.db.WithContext(ctx).Scopes(OrgScopeString(orgID))
}

// WithOrg returns a GORM DB scoped to a specific org ID.
// Use this when you have the org ID directly rather than from context.
func (t *TenantDB) WithOrg(orgID uuid.UUID) *gorm.DB {
	if orgID == uuid.Nil {
		if t.required {
			db := t.db
			_ = db.AddError(ErrOrgIDRequired)
			return db
		}
		return t.db
	}
	return t.db.Scopes(OrgScope(orgID))
}

// ForScope creates a GORM DB narrowed to the given visibility scope.
// This is what repositories use to honor branch visibility.
func (t *TenantDB) ForScope(ctx context.Context, sc shared.Scope) *gorm.DB {
	if sc.OrgID == uuid.Nil {
		db := t.db.WithContext(ctx)
		_ = db.AddError(ErrOrgIDRequired)
		return db
	}
	return t.db.WithContext(ctx).Scopes(ScopeFrom(sc))
}

// Transaction executes a function within a database transaction with org scope
func (t *TenantDB) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	orgID := logger.GetOrgID(ctx)

	if orgID == "" && t.required {
		return ErrOrgIDRequired
	}

	return t.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if orgID != "" {
			tx = tx.Scopes(OrgScopeString(orgID))
		}
		return fn(tx)
	})
}

// Unscoped returns the underlying DB without any org scoping.
// WARNING: Use this with extreme caution as it bypasses tenant isolation.
// This should only be used for system-level operations or migrations.
func (t *TenantDB) Unscoped() *gorm.DB {
	return t.db
}

// SetRequired changes whether org_id is required
func (t *TenantDB) SetRequired(required bool) *TenantDB {
	return &TenantDB{
		db:        t.db,
		orgColumn: t.orgColumn,
		required:  required,
	}
}
