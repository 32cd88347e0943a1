package pricing

import (
	"fmt"
	"time"

	"github.com/freightpro/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContractStatus represents the approval lifecycle of a rate contract
type ContractStatus string

const (
	ContractStatusDraft           ContractStatus = "DRAFT"
	ContractStatusPendingApproval ContractStatus = "PENDING_APPROVAL"
	ContractStatusActive          ContractStatus = "ACTIVE"
	ContractStatusExpired         ContractStatus = "EXPIRED"
	ContractStatusTerminated      ContractStatus = "TERMINATED"
)

// IsValid checks if the status is a valid ContractStatus
func (s ContractStatus) IsValid() bool {
	switch s {
	case ContractStatusDraft, ContractStatusPendingApproval, ContractStatusActive,
		ContractStatusExpired, ContractStatusTerminated:
		return true
	}
	return false
}

// String returns the string representation of ContractStatus
func (s ContractStatus) String() string {
	return string(s)
}

// CanTransitionTo checks if the status can transition to the target status
func (s ContractStatus) CanTransitionTo(target ContractStatus) bool {
	switch s {
	case ContractStatusDraft:
		return target == ContractStatusPendingApproval || target == ContractStatusTerminated
	case ContractStatusPendingApproval:
		return target == ContractStatusActive || target == ContractStatusDraft || target == ContractStatusTerminated
	case ContractStatusActive:
		return target == ContractStatusExpired || target == ContractStatusTerminated
	case ContractStatusExpired, ContractStatusTerminated:
		return false
	}
	return false
}

// RateContractItem is a per-article rate override inside a contract
type RateContractItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"`
	ContractID  uuid.UUID `gorm:"type:uuid;not null;index"`
	ArticleID   uuid.UUID `gorm:"type:uuid;not null;index"`
	RatePerUnit decimal.Decimal
	Basis       RateBasis
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName returns the table name for GORM
func (RateContractItem) TableName() string {
	return "rate_contract_items"
}

// RateContract is a time-bounded pricing agreement between the organization
// and one customer. When active and inside its validity window, its article
// overrides win over customer rates and article base rates.
type RateContract struct {
	shared.OrgAggregateRoot
	ContractNumber  string
	CustomerID      uuid.UUID `gorm:"type:uuid;not null;index"`
	DiscountPercent decimal.Decimal
	ValidFrom       time.Time
	ValidTo         time.Time
	Status          ContractStatus
	Items           []RateContractItem `gorm:"foreignKey:ContractID"`
	ApprovedAt      *time.Time
	ApprovedBy      *uuid.UUID `gorm:"type:uuid"`
	TerminatedAt    *time.Time
	TerminateReason string
}

// TableName returns the table name for GORM
func (RateContract) TableName() string {
	return "rate_contracts"
}

// NewRateContract creates a draft contract
func NewRateContract(orgID uuid.UUID, contractNumber string, customerID uuid.UUID, discountPercent decimal.Decimal, validFrom, validTo time.Time) (*RateContract, error) {
	if contractNumber == "" {
		return nil, shared.NewDomainError("INVALID_CONTRACT_NUMBER", "Contract number cannot be empty")
	}
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CUSTOMER", "Customer ID cannot be empty")
	}
	if discountPercent.IsNegative() || discountPercent.GreaterThan(decimal.NewFromInt(100)) {
		return nil, shared.NewDomainError("INVALID_DISCOUNT", "Discount percent must be between 0 and 100")
	}
	if !validTo.After(validFrom) {
		return nil, shared.NewDomainError("INVALID_VALIDITY", "Validity window end must be after start")
	}

	return &RateContract{
		OrgAggregateRoot: shared.NewOrgAggregateRoot(orgID),
		ContractNumber:   contractNumber,
		CustomerID:       customerID,
		DiscountPercent:  discountPercent,
		ValidFrom:        validFrom,
		ValidTo:          validTo,
		Status:           ContractStatusDraft,
		Items:            make([]RateContractItem, 0),
	}, nil
}

// AddItem adds a per-article override while the contract is a draft
func (c *RateContract) AddItem(articleID uuid.UUID, ratePerUnit decimal.Decimal, basis RateBasis) error {
	if c.Status != ContractStatusDraft {
		return shared.NewDomainError("INVALID_STATE", "Cannot add items to a non-draft contract")
	}
	if articleID == uuid.Nil {
		return shared.NewDomainError("INVALID_ARTICLE", "Article ID cannot be empty")
	}
	if ratePerUnit.IsNegative() {
		return shared.NewDomainError("INVALID_RATE", "Rate cannot be negative")
	}
	if !basis.IsValid() {
		return shared.NewDomainError("INVALID_RATE_BASIS", "Unknown rate basis")
	}
	for _, item := range c.Items {
		if item.ArticleID == articleID {
			return shared.NewDomainError("DUPLICATE_ARTICLE", "Article already has a rate in this contract")
		}
	}

	now := time.Now()
	c.Items = append(c.Items, RateContractItem{
		ID:          uuid.New(),
		ContractID:  c.ID,
		ArticleID:   articleID,
		RatePerUnit: ratePerUnit,
		Basis:       basis,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	c.UpdatedAt = now
	return nil
}

// SubmitForApproval moves the draft into the approval queue
func (c *RateContract) SubmitForApproval() error {
	if !c.Status.CanTransitionTo(ContractStatusPendingApproval) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot submit contract in %s status", c.Status))
	}
	if len(c.Items) == 0 && c.DiscountPercent.IsZero() {
		return shared.NewDomainError("EMPTY_CONTRACT", "Contract needs article rates or a discount before approval")
	}

	c.Status = ContractStatusPendingApproval
	c.UpdatedAt = time.Now()
	return nil
}

// Approve activates the contract, stamping approver and time
func (c *RateContract) Approve(approvedBy uuid.UUID) error {
	if !c.Status.CanTransitionTo(ContractStatusActive) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot approve contract in %s status", c.Status))
	}
	if approvedBy == uuid.Nil {
		return shared.NewDomainError("INVALID_APPROVER", "Approver is required")
	}

	now := time.Now()
	c.Status = ContractStatusActive
	c.ApprovedAt = &now
	c.ApprovedBy = &approvedBy
	c.UpdatedAt = now
	return nil
}

// Reject returns a pending contract to draft for rework
func (c *RateContract) Reject() error {
	if c.Status != ContractStatusPendingApproval {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot reject contract in %s status", c.Status))
	}
	c.Status = ContractStatusDraft
	c.UpdatedAt = time.Now()
	return nil
}

// Terminate ends the contract before its validity window closes
func (c *RateContract) Terminate(reason string) error {
	if !c.Status.CanTransitionTo(ContractStatusTerminated) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot terminate contract in %s status", c.Status))
	}
	if reason == "" {
		return shared.NewDomainError("INVALID_REASON", "Terminate reason is required")
	}

	now := time.Now()
	c.Status = ContractStatusTerminated
	c.TerminatedAt = &now
	c.TerminateReason = reason
	c.UpdatedAt = now
	return nil
}

// MarkExpired closes a contract whose validity window has passed
func (c *RateContract) MarkExpired(now time.Time) error {
	if !c.Status.CanTransitionTo(ContractStatusExpired) {
		return shared.NewDomainError("INVALID_STATE", fmt.Sprintf("Cannot expire contract in %s status", c.Status))
	}
	if now.Before(c.ValidTo) {
		return shared.NewDomainError("NOT_EXPIRED", "Contract validity window has not ended")
	}
	c.Status = ContractStatusExpired
	c.UpdatedAt = time.Now()
	return nil
}

// IsActiveAt reports whether the contract can price shipments at the instant
func (c *RateContract) IsActiveAt(now time.Time) bool {
	if c.Status != ContractStatusActive {
		return false
	}
	return !now.Before(c.ValidFrom) && !now.After(c.ValidTo)
}

// RateFor returns the contract's override for the article, if any
func (c *RateContract) RateFor(articleID uuid.UUID) (*RateContractItem, bool) {
	for idx := range c.Items {
		if c.Items[idx].ArticleID == articleID {
			return &c.Items[idx], true
		}
	}
	return nil, false
}
