package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/fragmenter/internal/core/domain"
)

// uriScheme is the URI scheme for fragmenter resources.
const uriScheme = "fragmenter://"

// StatsURI is the index statistics resource.
const StatsURI = uriScheme + "index/stats"

// statsOutput is the JSON body of the stats resource.
type statsOutput struct {
	Vectors      int            `json:"vectors"`
	Documents    int            `json:"documents"`
	Mismatch     bool           `json:"mismatch,omitempty"`
	UniqueFiles  int            `json:"unique_files"`
	Repositories map[string]int `json:"repositories,omitempty"`
	FileTypes    []string       `json:"file_types,omitempty"`
	CodeChunks   int            `json:"code_chunks"`
	DocChunks    int            `json:"doc_chunks"`
	MinLength    int            `json:"min_length"`
	MaxLength    int            `json:"max_length"`
	MeanLength   float64        `json:"mean_length"`
	LastRun      string         `json:"last_run,omitempty"`
}

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	if s.ports.Inspect == nil {
		return
	}
	s.server.AddResource(&mcp.Resource{
		URI:         StatsURI,
		Name:        "index-stats",
		Description: "Counts and chunk statistics of the local index",
		MIMEType:    "application/json",
	}, s.handleStatsResource)
}

func (s *Server) handleStatsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	stats, err := s.ports.Inspect.Inspect(ctx)
	if errors.Is(err, domain.ErrEmptyIndex) {
		stats = &domain.IndexStats{}
	} else if err != nil {
		return nil, fmt.Errorf("inspecting index: %w", err)
	}

	data, err := json.MarshalIndent(newStatsOutput(stats), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling stats: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

func newStatsOutput(stats *domain.IndexStats) statsOutput {
	out := statsOutput{
		Vectors:      stats.VectorCount,
		Documents:    stats.DocCount,
		Mismatch:     stats.Mismatch,
		UniqueFiles:  stats.UniqueFiles,
		Repositories: stats.RepositoryCounts,
		FileTypes:    stats.FileTypes,
		CodeChunks:   stats.CodeChunks,
		DocChunks:    stats.DocChunks,
		MinLength:    stats.MinLength,
		MaxLength:    stats.MaxLength,
		MeanLength:   stats.MeanLength,
	}
	if stats.LastRun != nil {
		out.LastRun = stats.LastRun.RunID
	}
	return out
}
