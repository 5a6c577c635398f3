package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/athenaeum-labs/alexandria/internal/core/domain"
)

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query         string `json:"query" jsonschema:"the query to search the library for"`
	Mode          string `json:"mode,omitempty" jsonschema:"retrieval mode: auto, flat or hierarchical (default auto)"`
	Limit         int    `json:"limit,omitempty" jsonschema:"maximum chunks per section (default 5)"`
	SectionsLimit int    `json:"sections_limit,omitempty" jsonschema:"maximum section groups (default 3)"`
	WorkTitle     string `json:"work_title,omitempty" jsonschema:"restrict results to this work title"`
	WorkAuthor    string `json:"work_author,omitempty" jsonschema:"restrict results to this work author"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Mode     string        `json:"mode"`
	Fallback bool          `json:"fallback"`
	Groups   []GroupOutput `json:"groups,omitempty"`
	Chunks   []ChunkOutput `json:"chunks,omitempty"`
}

// GroupOutput is one matched section with its chunks.
type GroupOutput struct {
	SectionPath string        `json:"section_path"`
	WorkTitle   string        `json:"work_title"`
	WorkAuthor  string        `json:"work_author"`
	Summary     string        `json:"summary,omitempty"`
	Score       float64       `json:"score"`
	Chunks      []ChunkOutput `json:"chunks"`
}

// ChunkOutput is a single retrieved chunk.
type ChunkOutput struct {
	WorkTitle   string  `json:"work_title"`
	WorkAuthor  string  `json:"work_author"`
	SectionPath string  `json:"section_path,omitempty"`
	Text        string  `json:"text"`
	Score       float64 `json:"score"`
}

// ListWorksOutput is the output schema for the list_works tool.
type ListWorksOutput struct {
	Works []domain.WorkCount `json:"works"`
	Count int                `json:"count"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Search the library, flat or hierarchically by section",
	}, s.handleSearch)

	if s.ports.Catalog != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "list_works",
			Description: "List the works in the library with their chunk counts",
		}, s.handleListWorks)
	}
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	opts := domain.RetrieveOptions{
		Limit:         input.Limit,
		SectionsLimit: input.SectionsLimit,
	}
	switch input.Mode {
	case "", "auto":
		opts.Mode = domain.QueryModeAuto
	case "flat":
		opts.Mode = domain.QueryModeFlat
	case "hierarchical":
		opts.Mode = domain.QueryModeHierarchical
	default:
		return nil, SearchOutput{}, fmt.Errorf("invalid mode %q", input.Mode)
	}
	if input.WorkTitle != "" || input.WorkAuthor != "" {
		opts.Filter = &domain.WorkRef{Title: input.WorkTitle, Author: input.WorkAuthor}
	}

	result, err := s.ports.Retrieval.Retrieve(ctx, input.Query, opts)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Mode:     string(result.Mode),
		Fallback: result.Fallback,
		Chunks:   chunkOutputs(result.Chunks),
	}
	for _, g := range result.Groups {
		output.Groups = append(output.Groups, GroupOutput{
			SectionPath: string(g.SectionPath),
			WorkTitle:   g.Work.Title,
			WorkAuthor:  g.Work.Author,
			Summary:     g.SummaryText,
			Score:       g.Score,
			Chunks:      chunkOutputs(g.Chunks),
		})
	}
	return nil, output, nil
}

// handleListWorks handles the list_works tool invocation.
func (s *Server) handleListWorks(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, ListWorksOutput, error) {
	works, err := s.ports.Catalog.ListWorks(ctx)
	if err != nil {
		return nil, ListWorksOutput{}, err
	}
	if works == nil {
		works = []domain.WorkCount{}
	}
	return nil, ListWorksOutput{Works: works, Count: len(works)}, nil
}

func chunkOutputs(chunks []domain.ScoredChunk) []ChunkOutput {
	out := make([]ChunkOutput, len(chunks))
	for i, sc := range chunks {
		out[i] = ChunkOutput{
			WorkTitle:   sc.Chunk.Work.Title,
			WorkAuthor:  sc.Chunk.Work.Author,
			SectionPath: string(sc.Chunk.SectionPath),
			Text:        sc.Chunk.Text,
			Score:       sc.Score,
		}
	}
	return out
}
