package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for assistant resources.
	uriScheme = "sercha-voice://"

	statsURI   = uriScheme + "corpus/stats"
	historyURI = uriScheme + "conversation/history"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         statsURI,
		Name:        "corpus-stats",
		Description: "Size and embedding model of the indexed knowledge base",
		MIMEType:    "application/json",
	}, s.handleStatsResource)

	if s.ports.Conversation == nil {
		return
	}

	s.server.AddResource(&mcp.Resource{
		URI:         historyURI,
		Name:        "conversation-history",
		Description: "Turns of the current conversation, oldest first",
		MIMEType:    "application/json",
	}, s.handleHistoryResource)
}

// handleStatsResource returns the corpus summary.
func (s *Server) handleStatsResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return jsonResource(req.Params.URI, s.ports.Retrieval.Stats())
}

// handleHistoryResource returns the conversation history.
func (s *Server) handleHistoryResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	s.convMu.Lock()
	history := s.ports.Conversation.History()
	s.convMu.Unlock()

	return jsonResource(req.Params.URI, history)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling %s: %w", uri, err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}
