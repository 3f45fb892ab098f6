package services

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
	"github.com/custodia-labs/sercha-voice/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-voice/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyKBKind        = "knowledge_base.kind"
	keyKBPath        = "knowledge_base.path"
	keyGitHubOwner   = "knowledge_base.github.owner"
	keyGitHubRepo    = "knowledge_base.github.repo"
	keyGitHubRef     = "knowledge_base.github.ref"
	keyGitHubPrefix  = "knowledge_base.github.prefix"
	keyGitHubToken   = "knowledge_base.github.token"
	keyMaxChunkSize  = "chunking.max_chunk_size"
	keyEmbedProvider = "embedding.provider"
	keyEmbedModel    = "embedding.model"
	keyEmbedBaseURL  = "embedding.base_url"
	keyEmbedAPIKey   = "embedding.api_key"
	keyEmbedDims     = "embedding.dimensions"
	keyEmbedRPS      = "embedding.requests_per_second"
	keyLLMProvider   = "llm.provider"
	keyLLMModel      = "llm.model"
	keyLLMBaseURL    = "llm.base_url"
	keyLLMAPIKey     = "llm.api_key"
	keyLLMRPS        = "llm.requests_per_second"
	keyTopK          = "conversation.top_k"
	keyContextLen    = "conversation.context_preview"
	keyFallbackLen   = "conversation.fallback_preview"
	keyTemperature   = "conversation.temperature"
	keyMaxTokens     = "conversation.max_output_tokens"
	keySafety        = "conversation.safety_threshold"
	keyTimeout       = "conversation.timeout"
	keyMaxRetries    = "conversation.max_retries"
	keyRetryBackoff  = "conversation.retry_backoff"
	keyServerAddr    = "server.addr"
	keyDataDir       = "storage.data_dir"
)

// Environment variables that override stored values.
//
//nolint:gosec // G101: These are variable names, not credentials.
const (
	EnvGeminiAPIKey      = "GEMINI_API_KEY"
	EnvOpenAIAPIKey      = "OPENAI_API_KEY"
	EnvGitHubToken       = "GITHUB_TOKEN"
	EnvKnowledgeBasePath = "SERCHA_KB_PATH"
)

// valueKind is the type a config key is stored as.
type valueKind int

const (
	kindString valueKind = iota
	kindInt
	kindFloat
	kindDuration
	kindProvider
	kindThreshold
	kindKBKind
	kindSecret
)

// settingKinds lists every key accepted by Set.
var settingKinds = map[string]valueKind{
	keyKBKind:        kindKBKind,
	keyKBPath:        kindString,
	keyGitHubOwner:   kindString,
	keyGitHubRepo:    kindString,
	keyGitHubRef:     kindString,
	keyGitHubPrefix:  kindString,
	keyGitHubToken:   kindSecret,
	keyMaxChunkSize:  kindInt,
	keyEmbedProvider: kindProvider,
	keyEmbedModel:    kindString,
	keyEmbedBaseURL:  kindString,
	keyEmbedAPIKey:   kindSecret,
	keyEmbedDims:     kindInt,
	keyEmbedRPS:      kindFloat,
	keyLLMProvider:   kindProvider,
	keyLLMModel:      kindString,
	keyLLMBaseURL:    kindString,
	keyLLMAPIKey:     kindSecret,
	keyLLMRPS:        kindFloat,
	keyTopK:          kindInt,
	keyContextLen:    kindInt,
	keyFallbackLen:   kindInt,
	keyTemperature:   kindFloat,
	keyMaxTokens:     kindInt,
	keySafety:        kindThreshold,
	keyTimeout:       kindDuration,
	keyMaxRetries:    kindInt,
	keyRetryBackoff:  kindDuration,
	keyServerAddr:    kindString,
	keyDataDir:       kindString,
}

// SettingsService assembles application settings from defaults, the config
// store and the environment, in increasing order of precedence.
type SettingsService struct {
	configStore driven.ConfigStore
	getenv      func(string) string
}

// SettingsOption configures a SettingsService.
type SettingsOption func(*SettingsService)

// WithEnv sets the environment lookup. Defaults to os.Getenv.
func WithEnv(getenv func(string) string) SettingsOption {
	return func(s *SettingsService) {
		if getenv != nil {
			s.getenv = getenv
		}
	}
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, opts ...SettingsOption) *SettingsService {
	s := &SettingsService{
		configStore: configStore,
		getenv:      os.Getenv,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get retrieves current application settings. It fails only when a stored
// duration cannot be parsed; use Validate for a full check.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()

	timeout, err := s.getDuration(keyTimeout, defaults.Conversation.Timeout)
	if err != nil {
		return nil, err
	}
	backoff, err := s.getDuration(keyRetryBackoff, defaults.Conversation.RetryBackoff)
	if err != nil {
		return nil, err
	}

	embedProvider := s.getProvider(keyEmbedProvider, defaults.Embedding.Provider)
	embedModel := s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[embedProvider])
	llmProvider := s.getProvider(keyLLMProvider, defaults.LLM.Provider)

	settings := &domain.AppSettings{
		KnowledgeBase: domain.KnowledgeBaseSettings{
			Kind: s.getKBKind(defaults.KnowledgeBase.Kind),
			Path: s.getString(keyKBPath, defaults.KnowledgeBase.Path),
			GitHub: domain.GitHubSettings{
				Owner:  s.configStore.GetString(keyGitHubOwner),
				Repo:   s.configStore.GetString(keyGitHubRepo),
				Ref:    s.configStore.GetString(keyGitHubRef),
				Prefix: s.configStore.GetString(keyGitHubPrefix),
				Token:  s.configStore.GetString(keyGitHubToken),
			},
		},
		Chunking: domain.ChunkingSettings{
			MaxChunkSize: s.getInt(keyMaxChunkSize, defaults.Chunking.MaxChunkSize),
		},
		Embedding: domain.EmbeddingSettings{
			Provider:          embedProvider,
			Model:             embedModel,
			BaseURL:           s.configStore.GetString(keyEmbedBaseURL), // Empty is valid for cloud providers
			APIKey:            s.configStore.GetString(keyEmbedAPIKey),
			Dimensions:        s.getInt(keyEmbedDims, domain.EmbeddingDimensions()[embedModel]),
			RequestsPerSecond: s.getFloat(keyEmbedRPS, 0),
		},
		LLM: domain.LLMSettings{
			Provider:          llmProvider,
			Model:             s.getString(keyLLMModel, domain.DefaultLLMModels()[llmProvider]),
			BaseURL:           s.configStore.GetString(keyLLMBaseURL),
			APIKey:            s.configStore.GetString(keyLLMAPIKey),
			RequestsPerSecond: s.getFloat(keyLLMRPS, 0),
		},
		Conversation: domain.ConversationSettings{
			TopK:            s.getInt(keyTopK, defaults.Conversation.TopK),
			ContextPreview:  s.getInt(keyContextLen, defaults.Conversation.ContextPreview),
			FallbackPreview: s.getInt(keyFallbackLen, defaults.Conversation.FallbackPreview),
			Temperature:     s.getFloat(keyTemperature, defaults.Conversation.Temperature),
			MaxOutputTokens: s.getInt(keyMaxTokens, defaults.Conversation.MaxOutputTokens),
			SafetyThreshold: s.getThreshold(defaults.Conversation.SafetyThreshold),
			Timeout:         timeout,
			MaxRetries:      s.getInt(keyMaxRetries, defaults.Conversation.MaxRetries),
			RetryBackoff:    backoff,
		},
		Server: domain.ServerSettings{
			Addr: s.getString(keyServerAddr, defaults.Server.Addr),
		},
		Storage: domain.StorageSettings{
			DataDir: s.configStore.GetString(keyDataDir),
		},
	}

	s.applyEnv(settings)
	return settings, nil
}

// Validate loads the settings and checks them.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return settings.Validate()
}

// Set stores a single value. The value is parsed according to the key's type
// and rejected with domain.ErrValidation when the key is unknown or the value
// does not parse.
func (s *SettingsService) Set(key, value string) error {
	kind, ok := settingKinds[key]
	if !ok {
		return fmt.Errorf("%w: unknown config key %q", domain.ErrValidation, key)
	}

	parsed, err := parseSetting(kind, value)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrValidation, key, err)
	}

	if err := s.configStore.Set(key, parsed); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}

// Values returns the stored configuration keyed by dot notation, with
// secrets masked.
func (s *SettingsService) Values() map[string]any {
	values := make(map[string]any)
	for _, key := range s.configStore.Keys() {
		val, ok := s.configStore.Get(key)
		if !ok {
			continue
		}
		if settingKinds[key] == kindSecret {
			str, _ := val.(string)
			val = maskSecret(str)
		}
		values[key] = val
	}
	return values
}

// ConfigPath returns the configuration file location.
func (s *SettingsService) ConfigPath() string {
	return s.configStore.Path()
}

// Keys returns every settable config key in sorted order.
func (s *SettingsService) Keys() []string {
	keys := make([]string, 0, len(settingKinds))
	for k := range settingKinds {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// applyEnv overrides stored values with environment variables.
func (s *SettingsService) applyEnv(settings *domain.AppSettings) {
	if path := s.getenv(EnvKnowledgeBasePath); path != "" {
		settings.KnowledgeBase.Path = path
	}
	if token := s.getenv(EnvGitHubToken); token != "" {
		settings.KnowledgeBase.GitHub.Token = token
	}
	settings.Embedding.APIKey = s.apiKey(settings.Embedding.Provider, settings.Embedding.APIKey)
	settings.LLM.APIKey = s.apiKey(settings.LLM.Provider, settings.LLM.APIKey)
}

// apiKey returns the provider's key from the environment, or current.
func (s *SettingsService) apiKey(provider domain.AIProvider, current string) string {
	var name string
	switch provider {
	case domain.AIProviderGemini:
		name = EnvGeminiAPIKey
	case domain.AIProviderOpenAI:
		name = EnvOpenAIAPIKey
	default:
		return current
	}
	if key := s.getenv(name); key != "" {
		return key
	}
	return current
}

func (s *SettingsService) getString(key, defaultVal string) string {
	if val := s.configStore.GetString(key); val != "" {
		return val
	}
	return defaultVal
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetInt(key)
}

func (s *SettingsService) getFloat(key string, defaultVal float64) float64 {
	if _, exists := s.configStore.Get(key); !exists {
		return defaultVal
	}
	return s.configStore.GetFloat(key)
}

func (s *SettingsService) getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(val)
	if err != nil {
		return 0, fmt.Errorf("%w: %s: %v", domain.ErrConfiguration, key, err)
	}
	return d, nil
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return domain.AIProvider(val)
}

func (s *SettingsService) getThreshold(defaultVal domain.HarmThreshold) domain.HarmThreshold {
	val := s.configStore.GetString(keySafety)
	if val == "" {
		return defaultVal
	}
	return domain.HarmThreshold(val)
}

func (s *SettingsService) getKBKind(defaultVal domain.KnowledgeBaseKind) domain.KnowledgeBaseKind {
	val := s.configStore.GetString(keyKBKind)
	if val == "" {
		return defaultVal
	}
	return domain.KnowledgeBaseKind(val)
}

// parseSetting converts a command-line value to the stored type.
func parseSetting(kind valueKind, value string) (any, error) {
	switch kind {
	case kindInt:
		return strconv.Atoi(value)
	case kindFloat:
		return strconv.ParseFloat(value, 64)
	case kindDuration:
		if _, err := time.ParseDuration(value); err != nil {
			return nil, err
		}
		return value, nil
	case kindProvider:
		if !domain.AIProvider(value).IsValid() {
			return nil, fmt.Errorf("unknown provider %q", value)
		}
		return value, nil
	case kindThreshold:
		if !domain.HarmThreshold(value).IsValid() {
			return nil, fmt.Errorf("unknown safety threshold %q", value)
		}
		return value, nil
	case kindKBKind:
		switch domain.KnowledgeBaseKind(value) {
		case domain.KnowledgeBaseFilesystem, domain.KnowledgeBaseGitHub:
			return value, nil
		}
		return nil, fmt.Errorf("unknown knowledge base kind %q", value)
	default:
		return value, nil
	}
}

// maskSecret hides all but the last four characters of a secret.
func maskSecret(secret string) string {
	if secret == "" {
		return ""
	}
	if len(secret) <= 4 {
		return strings.Repeat("*", len(secret))
	}
	return strings.Repeat("*", 8) + secret[len(secret)-4:]
}
