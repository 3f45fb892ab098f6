// Package mcp provides an MCP (Model Context Protocol) server adapter.
// It lets AI assistants query the knowledge base and hold a grounded
// conversation with the voice assistant core.
package mcp

import "errors"

// ErrMissingRetrievalService is returned when the retrieval service is not provided.
var ErrMissingRetrievalService = errors.New("mcp: retrieval service is required")

// ErrEmptyQuery is returned when a tool is called without text.
var ErrEmptyQuery = errors.New("mcp: query must not be empty")
