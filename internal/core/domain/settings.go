package domain

import (
	"fmt"
	"time"
)

const unknownDescription = "Unknown"

// AIProvider identifies an AI service provider for embeddings or generation.
type AIProvider string

// Available AI providers.
const (
	// AIProviderGemini is the Google Gemini API.
	AIProviderGemini AIProvider = "gemini"

	// AIProviderOpenAI is the OpenAI API.
	AIProviderOpenAI AIProvider = "openai"

	// AIProviderOllama is a local Ollama instance.
	AIProviderOllama AIProvider = "ollama"

	// AIProviderLocal is the built-in feature hashing embedder.
	// It supports embeddings only.
	AIProviderLocal AIProvider = "local"
)

// IsValid returns true if the AI provider is recognised.
func (p AIProvider) IsValid() bool {
	switch p {
	case AIProviderGemini, AIProviderOpenAI, AIProviderOllama, AIProviderLocal:
		return true
	default:
		return false
	}
}

// RequiresAPIKey returns true if this provider needs an API key.
func (p AIProvider) RequiresAPIKey() bool {
	return p == AIProviderGemini || p == AIProviderOpenAI
}

// String returns the string representation.
func (p AIProvider) String() string {
	return string(p)
}

// Description returns a human-readable description of the provider.
func (p AIProvider) Description() string {
	switch p {
	case AIProviderGemini:
		return "Google Gemini (cloud)"
	case AIProviderOpenAI:
		return "OpenAI (cloud)"
	case AIProviderOllama:
		return "Ollama (local)"
	case AIProviderLocal:
		return "Feature hashing (built-in)"
	default:
		return unknownDescription
	}
}

// KnowledgeBaseKind selects where knowledge base documents are loaded from.
type KnowledgeBaseKind string

// Knowledge base kinds.
const (
	// KnowledgeBaseFilesystem loads .txt files from a local directory.
	KnowledgeBaseFilesystem KnowledgeBaseKind = "filesystem"

	// KnowledgeBaseGitHub loads .txt files from a GitHub repository.
	KnowledgeBaseGitHub KnowledgeBaseKind = "github"
)

// KnowledgeBaseSettings locates the documents the corpus is built from.
type KnowledgeBaseSettings struct {
	// Kind selects the document source.
	Kind KnowledgeBaseKind

	// Path is the local directory for the filesystem kind.
	Path string

	// GitHub configures the github kind.
	GitHub GitHubSettings
}

// GitHubSettings locates a knowledge base inside a GitHub repository.
type GitHubSettings struct {
	Owner  string
	Repo   string
	Ref    string // Branch, tag or SHA. Empty means the default branch.
	Prefix string // Only files under this path are loaded.
	Token  string
}

// ChunkingSettings configures the paragraph chunker.
type ChunkingSettings struct {
	// MaxChunkSize is the chunk size bound in characters.
	MaxChunkSize int
}

// EmbeddingSettings holds embedding provider configuration.
type EmbeddingSettings struct {
	Provider AIProvider
	Model    string
	BaseURL  string
	APIKey   string

	// Dimensions overrides the model's known vector size.
	Dimensions int

	// RequestsPerSecond throttles provider calls. Zero disables throttling.
	RequestsPerSecond float64
}

// IsConfigured returns true if the embedding provider is set up.
func (e EmbeddingSettings) IsConfigured() bool {
	if !e.Provider.IsValid() {
		return false
	}
	if e.Provider.RequiresAPIKey() && e.APIKey == "" {
		return false
	}
	return true
}

// LLMSettings holds generation provider configuration.
type LLMSettings struct {
	Provider AIProvider
	Model    string
	BaseURL  string
	APIKey   string

	// RequestsPerSecond throttles provider calls. Zero disables throttling.
	RequestsPerSecond float64
}

// IsConfigured returns true if the generation provider is set up.
func (l LLMSettings) IsConfigured() bool {
	if !l.Provider.IsValid() || l.Provider == AIProviderLocal {
		return false
	}
	if l.Provider.RequiresAPIKey() && l.APIKey == "" {
		return false
	}
	return true
}

// ConversationSettings configures the turn pipeline.
type ConversationSettings struct {
	// TopK is how many chunks are retrieved per turn.
	TopK int

	// ContextPreview caps each retrieved chunk in the prompt, in characters.
	ContextPreview int

	// FallbackPreview caps the context-derived fallback answer, in characters.
	FallbackPreview int

	// Temperature and MaxOutputTokens bound generation.
	Temperature     float64
	MaxOutputTokens int

	// SafetyThreshold is applied to every content-filter category.
	SafetyThreshold HarmThreshold

	// Timeout bounds a single generation call.
	Timeout time.Duration

	// MaxRetries is how many times a transient generation failure is retried.
	MaxRetries int

	// RetryBackoff is the initial delay between retries; it doubles per attempt.
	RetryBackoff time.Duration
}

// Sampling returns the generation sampling derived from these settings.
func (c ConversationSettings) Sampling() SamplingConfig {
	safety := make([]SafetySetting, 0, len(AllHarmCategories()))
	for _, category := range AllHarmCategories() {
		safety = append(safety, SafetySetting{Category: category, Threshold: c.SafetyThreshold})
	}
	return SamplingConfig{
		Temperature:     c.Temperature,
		MaxOutputTokens: c.MaxOutputTokens,
		Safety:          safety,
	}
}

// ServerSettings configures the HTTP API.
type ServerSettings struct {
	// Addr is the listen address (e.g. ":8000").
	Addr string
}

// StorageSettings configures where index snapshots live.
type StorageSettings struct {
	// DataDir holds the snapshot database. Empty means ~/.sercha-voice/data.
	DataDir string
}

// AppSettings holds all application settings. It is loaded once at start-up,
// validated eagerly and passed explicitly to every component that needs it.
type AppSettings struct {
	KnowledgeBase KnowledgeBaseSettings
	Chunking      ChunkingSettings
	Embedding     EmbeddingSettings
	LLM           LLMSettings
	Conversation  ConversationSettings
	Server        ServerSettings
	Storage       StorageSettings
}

// DefaultAppSettings returns settings with the assistant's defaults.
func DefaultAppSettings() AppSettings {
	return AppSettings{
		KnowledgeBase: KnowledgeBaseSettings{
			Kind: KnowledgeBaseFilesystem,
			Path: "knowledge_base",
		},
		Chunking: ChunkingSettings{
			MaxChunkSize: 500,
		},
		Embedding: EmbeddingSettings{
			Provider: AIProviderGemini,
			Model:    DefaultEmbeddingModels()[AIProviderGemini],
		},
		LLM: LLMSettings{
			Provider: AIProviderGemini,
			Model:    DefaultLLMModels()[AIProviderGemini],
		},
		Conversation: ConversationSettings{
			TopK:            3,
			ContextPreview:  400,
			FallbackPreview: 200,
			Temperature:     0.7,
			MaxOutputTokens: 150,
			SafetyThreshold: HarmThresholdBlockNone,
			Timeout:         30 * time.Second,
			MaxRetries:      0,
			RetryBackoff:    500 * time.Millisecond,
		},
		Server: ServerSettings{
			Addr: ":8000",
		},
	}
}

// Validate checks the settings and fails fast on anything that would stop
// the assistant from working. All failures wrap ErrConfiguration.
func (s AppSettings) Validate() error {
	switch s.KnowledgeBase.Kind {
	case KnowledgeBaseFilesystem:
		if s.KnowledgeBase.Path == "" {
			return fmt.Errorf("%w: knowledge base path is required", ErrConfiguration)
		}
	case KnowledgeBaseGitHub:
		if s.KnowledgeBase.GitHub.Owner == "" || s.KnowledgeBase.GitHub.Repo == "" {
			return fmt.Errorf("%w: github knowledge base needs owner and repo", ErrConfiguration)
		}
	default:
		return fmt.Errorf("%w: unknown knowledge base kind %q", ErrConfiguration, s.KnowledgeBase.Kind)
	}

	if s.Chunking.MaxChunkSize <= 0 {
		return fmt.Errorf("%w: max chunk size must be positive", ErrConfiguration)
	}

	if !s.Embedding.Provider.IsValid() {
		return fmt.Errorf("%w: unknown embedding provider %q", ErrConfiguration, s.Embedding.Provider)
	}
	if !s.Embedding.IsConfigured() {
		return fmt.Errorf("%w: %s embeddings need an API key", ErrConfiguration, s.Embedding.Provider)
	}

	if s.LLM.Provider == AIProviderLocal {
		return fmt.Errorf("%w: the local provider cannot generate answers", ErrConfiguration)
	}
	if !s.LLM.Provider.IsValid() {
		return fmt.Errorf("%w: unknown llm provider %q", ErrConfiguration, s.LLM.Provider)
	}
	if !s.LLM.IsConfigured() {
		return fmt.Errorf("%w: %s generation needs an API key", ErrConfiguration, s.LLM.Provider)
	}

	c := s.Conversation
	if c.TopK <= 0 || c.ContextPreview <= 0 || c.FallbackPreview <= 0 {
		return fmt.Errorf("%w: conversation sizes must be positive", ErrConfiguration)
	}
	if c.MaxOutputTokens <= 0 {
		return fmt.Errorf("%w: max output tokens must be positive", ErrConfiguration)
	}
	if !c.SafetyThreshold.IsValid() {
		return fmt.Errorf("%w: unknown safety threshold %q", ErrConfiguration, c.SafetyThreshold)
	}
	if c.MaxRetries < 0 {
		return fmt.Errorf("%w: max retries cannot be negative", ErrConfiguration)
	}

	return nil
}

// AllEmbeddingProviders returns providers that support embeddings.
func AllEmbeddingProviders() []AIProvider {
	return []AIProvider{
		AIProviderGemini,
		AIProviderOpenAI,
		AIProviderOllama,
		AIProviderLocal,
	}
}

// AllLLMProviders returns providers that support generation.
func AllLLMProviders() []AIProvider {
	return []AIProvider{
		AIProviderGemini,
		AIProviderOpenAI,
		AIProviderOllama,
	}
}

// DefaultEmbeddingModels returns default models for each embedding provider.
func DefaultEmbeddingModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGemini: "models/text-embedding-004",
		AIProviderOpenAI: "text-embedding-3-small",
		AIProviderOllama: "nomic-embed-text",
		AIProviderLocal:  "hashing-256",
	}
}

// DefaultLLMModels returns default models for each generation provider.
func DefaultLLMModels() map[AIProvider]string {
	return map[AIProvider]string{
		AIProviderGemini: "models/gemini-2.5-flash",
		AIProviderOpenAI: "gpt-4o-mini",
		AIProviderOllama: "llama3.2",
	}
}

// EmbeddingDimensions returns the vector dimensions for known models.
func EmbeddingDimensions() map[string]int {
	return map[string]int{
		// Gemini models
		"models/text-embedding-004": 768,
		"models/embedding-001":      768,
		// OpenAI models
		"text-embedding-3-small": 1536,
		"text-embedding-3-large": 3072,
		"text-embedding-ada-002": 1536,
		// Ollama models
		"nomic-embed-text":  768,
		"mxbai-embed-large": 1024,
		"all-minilm":        384,
		// Built-in
		"hashing-256": 256,
	}
}
