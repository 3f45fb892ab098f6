// Package connectors provides DocumentSource implementations for the places
// a knowledge base can live: a local directory (filesystem) or a GitHub
// repository (github). Both load only .txt files.
//
// The bootstrap package picks one from the knowledge_base.kind setting.
package connectors
