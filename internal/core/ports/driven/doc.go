// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentSource: Enumerates knowledge base documents
//   - EmbeddingService: Maps text to fixed-dimension vectors
//   - VectorIndexFactory / VectorIndex: Exact nearest-neighbour search
//   - LLMService: Generates answers from prompts
//   - PostProcessorPipeline: Chunks documents
//
// # Optional Interfaces
//
//   - SnapshotStore: Persists a built corpus between runs
//   - ConfigStore: Application configuration
//   - PromptStore: User-editable prompt templates
//   - AIConfigValidator: Live provider reachability checks
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or connector package
package driven
