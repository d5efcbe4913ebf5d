package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the natural-language question to answer from the notes"`
	TopK     int    `json:"top_k,omitempty" jsonschema:"number of note chunks to retrieve, 1-20 (default from settings)"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer  string         `json:"answer"`
	Sources []SourceOutput `json:"sources"`
}

// SourceOutput attributes an answer to one note.
type SourceOutput struct {
	Title string `json:"title"`
	Path  string `json:"path"`
}

// SearchInput is the input schema for the search tool.
type SearchInput struct {
	Query string `json:"query" jsonschema:"the search query to find note chunks"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of chunks to return, 1-20 (default from settings)"`
}

// SearchOutput is the output schema for the search tool.
type SearchOutput struct {
	Results []ChunkOutput `json:"results"`
	Count   int           `json:"count"`
}

// ChunkOutput represents a single retrieved chunk.
type ChunkOutput struct {
	Title   string   `json:"title"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
	Path    string   `json:"path"`
	Score   float64  `json:"score"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Answer a question from the user's notes, with source attribution",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search",
		Description: "Retrieve the most relevant note chunks without generating an answer",
	}, s.handleSearch)
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	answer, err := s.ports.Ask.Ask(ctx, input.Question, input.TopK)
	if err != nil {
		return nil, AskOutput{}, err
	}

	output := AskOutput{
		Answer:  answer.Text,
		Sources: make([]SourceOutput, len(answer.Sources)),
	}
	for i, src := range answer.Sources {
		output.Sources[i] = SourceOutput{
			Title: src.Title,
			Path:  src.Path,
		}
	}

	return nil, output, nil
}

// handleSearch handles the search tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	chunks, err := s.ports.Ask.Retrieve(ctx, input.Query, input.TopK)
	if err != nil {
		return nil, SearchOutput{}, err
	}

	output := SearchOutput{
		Results: make([]ChunkOutput, len(chunks)),
		Count:   len(chunks),
	}
	for i := range chunks {
		output.Results[i] = ChunkOutput{
			Title:   chunks[i].Title,
			Content: chunks[i].Content,
			Tags:    chunks[i].Tags,
			Path:    chunks[i].SourcePath,
			Score:   chunks[i].Score,
		}
	}

	return nil, output, nil
}
