// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// RetrievalService owns the corpus and the vector index.
// ConversationService runs one grounded conversation session on top of it.
// SettingsService assembles configuration from defaults, file and environment.
package services
