package services

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driven"
	"github.com/custodia-labs/fragmenter/internal/core/ports/driving"
	"github.com/custodia-labs/fragmenter/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

const qaPrompt = "Context information is below.\n" +
	"---------------------\n" +
	"%s\n" +
	"---------------------\n" +
	"Given the context information and not prior knowledge, answer the query.\n" +
	"Query: %s\n" +
	"Answer: "

// QueryService retrieves chunks and answers questions over them.
type QueryService struct {
	embedder driven.EmbeddingService
	vectors  driven.VectorStore
	llm      driven.LLMService
	gen      driven.GenerateOptions
}

// NewQueryService creates a query service.
// llm is optional; without it only Retrieve works.
func NewQueryService(
	embedder driven.EmbeddingService,
	vectors driven.VectorStore,
	llm driven.LLMService,
	gen driven.GenerateOptions,
) *QueryService {
	return &QueryService{
		embedder: embedder,
		vectors:  vectors,
		llm:      llm,
		gen:      gen,
	}
}

// Retrieve returns the top-k chunks by cosine similarity.
func (s *QueryService) Retrieve(
	ctx context.Context, question string, opts domain.QueryOptions,
) ([]domain.RetrievedChunk, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if s.embedder == nil {
		return nil, domain.ErrEmbeddingUnavailable
	}

	count, err := s.vectors.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count vectors: %w", err)
	}
	if count == 0 {
		return nil, domain.ErrEmptyIndex
	}

	k := opts.TopK
	if k <= 0 {
		k = domain.DefaultTopK
	}

	vec, err := s.embedder.Embed(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := s.vectors.Query(ctx, vec, k, opts.Filter)
	if err != nil {
		return nil, fmt.Errorf("query vectors: %w", err)
	}
	logger.Debug("Retrieved %d chunks for %q", len(hits), domain.Preview(question, 100))
	return hits, nil
}

// Ask retrieves context for question and generates an answer.
func (s *QueryService) Ask(ctx context.Context, question string, opts domain.QueryOptions) (*domain.Answer, error) {
	if s.llm == nil {
		return nil, domain.ErrLLMUnavailable
	}
	hits, err := s.Retrieve(ctx, question, opts)
	if err != nil {
		return nil, err
	}

	logger.Info("Querying %s with: %s", s.llm.ModelName(), domain.Preview(question, 100))
	text, err := s.llm.Generate(ctx, BuildQAPrompt(question, hits), s.gen)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrLLMUnavailable, err)
	}
	logger.Debug("Response: %s", domain.Preview(text, 200))

	return &domain.Answer{
		Question: strings.TrimSpace(question),
		Text:     strings.TrimSpace(text),
		Sources:  hits,
	}, nil
}

// BuildQAPrompt renders the retrieved chunks and the question into an
// answer prompt. Each chunk is preceded by its source path.
func BuildQAPrompt(question string, hits []domain.RetrievedChunk) string {
	parts := make([]string, 0, len(hits))
	for _, h := range hits {
		if src := SourcePath(h.Chunk.Metadata); src != "" {
			parts = append(parts, "source: "+src+"\n\n"+h.Chunk.Text)
			continue
		}
		parts = append(parts, h.Chunk.Text)
	}
	return fmt.Sprintf(qaPrompt, strings.Join(parts, "\n\n"), strings.TrimSpace(question))
}

// SourcePath returns the most specific file identity in md.
func SourcePath(md domain.Metadata) string {
	for _, key := range []string{domain.KeyRelativePath, domain.KeyFilePath, domain.KeyFileName} {
		if v := md.String(key); v != "" {
			return v
		}
	}
	return ""
}

var codeBlockPattern = regexp.MustCompile("(?s)```(\\w+)?\\n(.*?)```")

// ExtractCodeBlocks returns the fenced code blocks in text, in order.
// A non-empty language keeps only blocks tagged with it.
func ExtractCodeBlocks(text, language string) []domain.CodeBlock {
	var blocks []domain.CodeBlock
	for _, m := range codeBlockPattern.FindAllStringSubmatch(text, -1) {
		if language != "" && !strings.EqualFold(m[1], language) {
			continue
		}
		blocks = append(blocks, domain.CodeBlock{Language: m[1], Code: m[2]})
	}
	return blocks
}

// CodeOnly joins the code blocks of text for saving. The second return is
// false when text has no matching blocks.
func CodeOnly(text, language string) (string, bool) {
	blocks := ExtractCodeBlocks(text, language)
	if len(blocks) == 0 {
		return text, false
	}
	codes := make([]string, len(blocks))
	for i, b := range blocks {
		codes[i] = b.Code
	}
	return strings.Join(codes, "\n\n"), true
}
