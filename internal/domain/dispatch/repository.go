package dispatch

import (
	"context"

	"github.com/freightpro/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ManifestRepository persists loading manifests with their member lines
type ManifestRepository interface {
	FindByIDForScope(ctx context.Context, scope shared.Scope, id uuid.UUID) (*LoadingManifest, error)
	FindAllForScope(ctx context.Context, scope shared.Scope, filter shared.Filter) ([]LoadingManifest, error)
	CountForScope(ctx context.Context, scope shared.Scope, filter shared.Filter) (int64, error)
	// FindOpenByBookingForScope returns CREATED manifests carrying any line
	// of the given booking
	FindOpenByBookingForScope(ctx context.Context, scope shared.Scope, bookingID uuid.UUID) ([]LoadingManifest, error)
	Save(ctx context.Context, m *LoadingManifest) error
	ExistsByManifestNumber(ctx context.Context, scope shared.Scope, manifestNumber string) (bool, error)
	GenerateManifestNumber(ctx context.Context, scope shared.Scope) (string, error)
}
