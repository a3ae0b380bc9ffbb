package driving

import (
	"context"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
)

// QueryService answers questions over the vector index.
type QueryService interface {
	// Retrieve returns the chunks most similar to question.
	Retrieve(ctx context.Context, question string, opts domain.QueryOptions) ([]domain.RetrievedChunk, error)

	// Ask retrieves context for question and asks the LLM.
	Ask(ctx context.Context, question string, opts domain.QueryOptions) (*domain.Answer, error)
}
