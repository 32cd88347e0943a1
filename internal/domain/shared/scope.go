package shared

import (
	"github.com/google/uuid"
)

// Scope is the authenticated caller's tenant scope. Every read and write in
// the system is bounded by an organization and, unless the caller holds an
// all-branches role, by a single branch. The scope is threaded explicitly
// through application services and repositories rather than carried as
// ambient session state.
type Scope struct {
	OrgID       uuid.UUID
	BranchID    uuid.UUID
	UserID      uuid.UUID
	AllBranches bool
}

// NewScope creates a branch-bound scope
func NewScope(orgID, branchID, userID uuid.UUID) Scope {
	return Scope{
		OrgID:    orgID,
		BranchID: branchID,
		UserID:   userID,
	}
}

// NewElevatedScope creates an all-branches scope. Elevated callers bypass the
// branch filter but never the organization filter.
func NewElevatedScope(orgID, userID uuid.UUID) Scope {
	return Scope{
		OrgID:       orgID,
		UserID:      userID,
		AllBranches: true,
	}
}

// IsValid reports whether the scope carries a usable organization binding
func (s Scope) IsValid() bool {
	if s.OrgID == uuid.Nil {
		return false
	}
	return s.AllBranches || s.BranchID != uuid.Nil
}

// CanAccessBranch reports whether the scope may touch rows of the given branch
func (s Scope) CanAccessBranch(branchID uuid.UUID) bool {
	if s.AllBranches {
		return true
	}
	return s.BranchID == branchID
}

// Authorize checks the scope against a concrete row's tenancy. A mismatched
// organization or, for non-elevated callers, a mismatched branch is Forbidden.
func (s Scope) Authorize(orgID, branchID uuid.UUID) error {
	if orgID != s.OrgID {
		return ErrForbidden
	}
	if !s.CanAccessBranch(branchID) {
		return ErrForbidden
	}
	return nil
}

// AuthorizeOrg checks only the organization binding, for org-level entities
// such as rate contracts that are not bound to a single branch.
func (s Scope) AuthorizeOrg(orgID uuid.UUID) error {
	if orgID != s.OrgID {
		return ErrForbidden
	}
	return nil
}
