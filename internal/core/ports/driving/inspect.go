package driving

import (
	"context"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
)

// InspectService reports on the stored index.
type InspectService interface {
	// Inspect returns statistics for the index.
	// Returns domain.ErrEmptyIndex when nothing is stored.
	Inspect(ctx context.Context) (*domain.IndexStats, error)
}
