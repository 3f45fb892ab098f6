package mcp

import (
	"context"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
)

// RetrieveInput is the input schema for the retrieve tool.
type RetrieveInput struct {
	Query string `json:"query" jsonschema:"the question or phrase to look up in the knowledge base"`
	TopK  int    `json:"top_k,omitempty" jsonschema:"maximum number of chunks to return (default 3)"`
}

// RetrieveOutput is the output schema for the retrieve tool.
type RetrieveOutput struct {
	Results []ChunkOutput `json:"results"`
	Count   int           `json:"count"`
	Context string        `json:"context"`
}

// ChunkOutput is a single retrieved chunk.
type ChunkOutput struct {
	Source   string  `json:"source"`
	ChunkID  int     `json:"chunk_id"`
	Distance float64 `json:"distance"`
	Text     string  `json:"text"`
}

// AskInput is the input schema for the ask tool.
type AskInput struct {
	Question string `json:"question" jsonschema:"the user's question"`
}

// AskOutput is the output schema for the ask tool.
type AskOutput struct {
	Answer      string             `json:"answer"`
	SessionID   string             `json:"session_id"`
	UsedContext bool               `json:"used_context"`
	Outcome     domain.TurnOutcome `json:"outcome"`
}

// ResetOutput is the output schema for the reset_conversation tool.
type ResetOutput struct {
	SessionID string `json:"session_id"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "retrieve",
		Description: "Find the knowledge base passages most relevant to a query",
	}, s.handleRetrieve)

	if s.ports.Conversation == nil {
		return
	}

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "ask",
		Description: "Ask the voice assistant a question answered from the knowledge base",
	}, s.handleAsk)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reset_conversation",
		Description: "Clear the conversation history and start a new session",
	}, s.handleReset)
}

// handleRetrieve handles the retrieve tool invocation.
func (s *Server) handleRetrieve(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RetrieveInput,
) (*mcp.CallToolResult, RetrieveOutput, error) {
	if strings.TrimSpace(input.Query) == "" {
		return nil, RetrieveOutput{}, ErrEmptyQuery
	}
	topK := input.TopK
	if topK <= 0 {
		topK = s.ports.TopK
	}

	results, err := s.ports.Retrieval.Retrieve(ctx, input.Query, topK)
	if err != nil {
		return nil, RetrieveOutput{}, err
	}

	output := RetrieveOutput{
		Results: make([]ChunkOutput, len(results)),
		Count:   len(results),
		Context: domain.FormatResults(results),
	}
	for i := range results {
		output.Results[i] = ChunkOutput{
			Source:   results[i].Metadata.Source,
			ChunkID:  results[i].Metadata.ChunkIndex,
			Distance: results[i].Distance,
			Text:     results[i].Text,
		}
	}

	return nil, output, nil
}

// handleAsk handles the ask tool invocation.
func (s *Server) handleAsk(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, AskOutput{}, ErrEmptyQuery
	}

	s.convMu.Lock()
	defer s.convMu.Unlock()

	conv := s.ports.Conversation
	output := AskOutput{
		Answer:    conv.ProcessInput(ctx, input.Question),
		SessionID: conv.SessionID(),
	}
	if history := conv.History(); len(history) > 0 {
		last := history[len(history)-1]
		output.UsedContext = last.UsedContext
		output.Outcome = last.Outcome
	}

	return nil, output, nil
}

// handleReset handles the reset_conversation tool invocation.
func (s *Server) handleReset(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ struct{},
) (*mcp.CallToolResult, ResetOutput, error) {
	s.convMu.Lock()
	defer s.convMu.Unlock()

	s.ports.Conversation.Reset()
	return nil, ResetOutput{SessionID: s.ports.Conversation.SessionID()}, nil
}
