// Package domain defines the core entities of the knowledge base assistant.
//
// This package is the innermost layer of the hexagon. It may only import
// the Go standard library and defines the fundamental types:
//
//   - Document: raw knowledge base text with its source identifier
//   - Chunk: a retrievable unit cut from a Document
//   - RetrievalResult: a ranked chunk returned for a query
//   - Generation: the structured output of a generation collaborator
//   - ConversationTurn: one recorded exchange of a conversation session
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
