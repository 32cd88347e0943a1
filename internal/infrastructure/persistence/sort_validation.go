package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed
// columns. The order_by query parameter is caller-controlled and interpolated
// into ORDER BY, so anything off the whitelist falls back to defaultField.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// BookingSortFields contains allowed sort columns for bookings
var BookingSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"tracking_number": true,
	"sender_name":     true,
	"receiver_name":   true,
	"payment_terms":   true,
	"status":          true,
	"total_amount":    true,
	"in_transit_at":   true,
	"delivered_at":    true,
}

// ArticleSortFields contains allowed sort columns for articles
var ArticleSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"code":       true,
	"name":       true,
	"unit":       true,
	"base_rate":  true,
	"basis":      true,
	"active":     true,
}

// ManifestSortFields contains allowed sort columns for loading manifests
var ManifestSortFields = map[string]bool{
	"id":              true,
	"created_at":      true,
	"updated_at":      true,
	"manifest_number": true,
	"vehicle_number":  true,
	"driver_name":     true,
	"departure_date":  true,
	"status":          true,
	"dispatched_at":   true,
	"completed_at":    true,
}

// RateContractSortFields contains allowed sort columns for rate contracts
var RateContractSortFields = map[string]bool{
	"id":               true,
	"created_at":       true,
	"updated_at":       true,
	"contract_number":  true,
	"customer_id":      true,
	"discount_percent": true,
	"valid_from":       true,
	"valid_to":         true,
	"status":           true,
	"approved_at":      true,
}
