package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
	"github.com/custodia-labs/fragmenter/internal/core/services"
)

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query  string            `json:"query" jsonschema:"the question or text to find similar chunks for"`
	TopK   int               `json:"top_k,omitempty" jsonschema:"number of chunks to return (default 5)"`
	Filter map[string]string `json:"filter,omitempty" jsonschema:"metadata values every returned chunk must match, e.g. file_type"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Chunks []ChunkOutput `json:"chunks"`
	Count  int           `json:"count"`
}

// ChunkOutput is one retrieved chunk.
type ChunkOutput struct {
	ID       string         `json:"id"`
	Source   string         `json:"source"`
	Score    float64        `json:"score"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the question to answer from the indexed files"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"number of chunks used as context (default 5)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string        `json:"answer"`
	Sources []ChunkOutput `json:"sources"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Return the indexed chunks most similar to a query",
	}, s.handleRetrieve)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question using the indexed code and documentation as context",
	}, s.handleAsk)
}

func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	opts := domain.QueryOptions{TopK: input.TopK}
	if len(input.Filter) > 0 {
		opts.Filter = make(domain.Metadata, len(input.Filter))
		for k, v := range input.Filter {
			opts.Filter[k] = v
		}
	}

	hits, err := s.ports.Query.Retrieve(ctx, input.Query, opts)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	return nil, RetrieveOutput{
		Chunks: chunkOutputs(hits, true),
		Count:  len(hits),
	}, nil
}

func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Query.Ask(ctx, input.Question, domain.QueryOptions{TopK: input.TopK})
	if err != nil {
		return nil, AskOutput{}, err
	}

	return nil, AskOutput{
		Answer:  answer.Text,
		Sources: chunkOutputs(answer.Sources, false),
	}, nil
}

// chunkOutputs converts hits. Without full only identity and score are kept.
func chunkOutputs(hits []domain.RetrievedChunk, full bool) []ChunkOutput {
	out := make([]ChunkOutput, len(hits))
	for i, h := range hits {
		out[i] = ChunkOutput{
			ID:     h.Chunk.ID,
			Source: services.SourcePath(h.Chunk.Metadata),
			Score:  h.Score,
		}
		if full {
			out[i].Text = h.Chunk.Text
			out[i].Metadata = h.Chunk.Metadata
		}
	}
	return out
}
