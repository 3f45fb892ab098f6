// Package bootstrap wires adapters and services into a running assistant.
// It is the composition root used by the command line entry point.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/custodia-labs/sercha-voice/internal/adapters/driven/ai"
	"github.com/custodia-labs/sercha-voice/internal/adapters/driven/config/file"
	"github.com/custodia-labs/sercha-voice/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/sercha-voice/internal/adapters/driven/vector/flat"
	"github.com/custodia-labs/sercha-voice/internal/connectors/filesystem"
	"github.com/custodia-labs/sercha-voice/internal/connectors/github"
	"github.com/custodia-labs/sercha-voice/internal/core/domain"
	"github.com/custodia-labs/sercha-voice/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-voice/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-voice/internal/core/services"
	"github.com/custodia-labs/sercha-voice/internal/logger"
	"github.com/custodia-labs/sercha-voice/internal/postprocessors"
)

// Options configures a Container. Zero values select the production
// adapters.
type Options struct {
	// ConfigPath is the TOML config file. Empty means ~/.sercha-voice/config.toml.
	ConfigPath string

	// SkipPing disables the provider reachability check at start-up.
	SkipPing bool

	// Getenv overrides environment lookup.
	Getenv func(string) string

	// PromptDir holds prompt templates. Empty means a prompts directory next
	// to the config file.
	PromptDir string

	// ConfigStore replaces the TOML file store.
	ConfigStore driven.ConfigStore

	// Snapshots replaces the SQLite snapshot store.
	Snapshots driven.SnapshotStore

	// Embedder and LLM replace the providers selected by settings.
	Embedder driven.EmbeddingService
	LLM      driven.LLMService

	// Source replaces the knowledge base selected by settings.
	Source driven.DocumentSource

	// Validator replaces the live provider check used by CheckProviders.
	Validator driven.AIConfigValidator
}

// Container builds services on first use and shares them afterwards.
type Container struct {
	opts     Options
	settings *services.SettingsService
	prompts  driven.PromptStore

	mu        sync.Mutex
	app       *domain.AppSettings
	embedder  driven.EmbeddingService
	llm       driven.LLMService
	snapshots driven.SnapshotStore
	retriever *services.RetrievalService
	loaded    bool
}

// New opens the configuration and prompt stores.
func New(opts Options) (*Container, error) {
	store := opts.ConfigStore
	promptDir := opts.PromptDir
	if store == nil {
		var fileStore *file.ConfigStore
		var err error
		if opts.ConfigPath != "" {
			fileStore, err = file.NewConfigStoreAt(opts.ConfigPath)
			if promptDir == "" {
				promptDir = filepath.Join(filepath.Dir(opts.ConfigPath), "prompts")
			}
		} else {
			fileStore, err = file.NewConfigStore("")
		}
		if err != nil {
			return nil, fmt.Errorf("open config: %w", err)
		}
		store = fileStore
	}

	prompts, err := file.NewPromptStore(promptDir)
	if err != nil {
		return nil, fmt.Errorf("open prompts: %w", err)
	}

	var settingsOpts []services.SettingsOption
	if opts.Getenv != nil {
		settingsOpts = append(settingsOpts, services.WithEnv(opts.Getenv))
	}

	return &Container{
		opts:     opts,
		settings: services.NewSettingsService(store, settingsOpts...),
		prompts:  prompts,
	}, nil
}

// Settings returns the settings service. It does not validate.
func (c *Container) Settings() driving.SettingsService {
	return c.settings
}

// AppSettings loads and validates the settings once.
func (c *Container) AppSettings() (*domain.AppSettings, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.appSettingsLocked()
}

func (c *Container) appSettingsLocked() (*domain.AppSettings, error) {
	if c.app != nil {
		return c.app, nil
	}
	app, err := c.settings.Get()
	if err != nil {
		return nil, err
	}
	if err := app.Validate(); err != nil {
		return nil, err
	}
	c.app = app
	return app, nil
}

// CheckProviders validates the settings and pings both configured
// providers. Failures of each provider are reported together.
func (c *Container) CheckProviders(ctx context.Context) error {
	app, err := c.AppSettings()
	if err != nil {
		return err
	}

	validator := c.opts.Validator
	if validator == nil {
		validator = ai.NewConfigValidator()
	}

	var errs []error
	if err := validator.ValidateEmbedding(ctx, app.Embedding); err != nil {
		errs = append(errs, fmt.Errorf("embedding provider %s: %w", app.Embedding.Provider, err))
	}
	if err := validator.ValidateLLM(ctx, app.LLM); err != nil {
		errs = append(errs, fmt.Errorf("llm provider %s: %w", app.LLM.Provider, err))
	}
	return errors.Join(errs...)
}

// Source returns the knowledge base document source.
func (c *Container) Source(ctx context.Context) (driven.DocumentSource, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sourceLocked(ctx)
}

func (c *Container) sourceLocked(ctx context.Context) (driven.DocumentSource, error) {
	if c.opts.Source != nil {
		return c.opts.Source, nil
	}
	app, err := c.appSettingsLocked()
	if err != nil {
		return nil, err
	}

	kb := app.KnowledgeBase
	switch kb.Kind {
	case domain.KnowledgeBaseGitHub:
		client, err := github.NewClient(ctx, kb.GitHub.Token)
		if err != nil {
			return nil, err
		}
		return github.NewSource(client, github.Config{
			Owner:  kb.GitHub.Owner,
			Repo:   kb.GitHub.Repo,
			Ref:    kb.GitHub.Ref,
			Prefix: kb.GitHub.Prefix,
		})
	case domain.KnowledgeBaseFilesystem:
		return filesystem.New(kb.Path), nil
	default:
		return nil, fmt.Errorf("%w: unknown knowledge base kind %q", domain.ErrConfiguration, kb.Kind)
	}
}

// Corpus returns a retrieval service with a loaded corpus. The saved
// snapshot is used when it matches the current embedder; otherwise, or when
// rebuild is set, the corpus is built from the source and saved.
func (c *Container) Corpus(ctx context.Context, rebuild bool) (driving.RetrievalService, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded && !rebuild {
		return c.retriever, nil
	}
	retriever, err := c.retrieverLocked(ctx)
	if err != nil {
		return nil, err
	}

	if !rebuild {
		restored, err := c.restoreLocked(ctx)
		if err != nil {
			return nil, err
		}
		if restored {
			c.loaded = true
			return retriever, nil
		}
	}

	if err := c.buildLocked(ctx); err != nil {
		return nil, err
	}
	return retriever, nil
}

// Rebuild builds the corpus from the source and saves a snapshot.
func (c *Container) Rebuild(ctx context.Context) (driving.RetrievalService, error) {
	return c.Corpus(ctx, true)
}

// Watch reports knowledge base changes when the source supports it.
func (c *Container) Watch(ctx context.Context) (<-chan domain.DocumentChange, error) {
	source, err := c.Source(ctx)
	if err != nil {
		return nil, err
	}
	watchable, ok := source.(driven.WatchableSource)
	if !ok {
		return nil, fmt.Errorf("%w: %s cannot be watched", domain.ErrConfiguration, source.Name())
	}
	return watchable.Watch(ctx)
}

// Conversations loads the corpus and the generator, then returns a factory
// for independent conversation sessions.
func (c *Container) Conversations(ctx context.Context, rebuild bool) (func() driving.ConversationService, error) {
	corpus, err := c.Corpus(ctx, rebuild)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	llm, err := c.llmLocked(ctx)
	if err != nil {
		return nil, err
	}
	settings := c.app.Conversation
	prompts := c.prompts

	return func() driving.ConversationService {
		return services.NewConversationService(corpus, llm, settings, services.WithPromptStore(prompts))
	}, nil
}

// Close releases provider and storage resources.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if c.embedder != nil {
		errs = append(errs, c.embedder.Close())
	}
	if c.llm != nil {
		errs = append(errs, c.llm.Close())
	}
	if c.snapshots != nil {
		errs = append(errs, c.snapshots.Close())
	}
	return errors.Join(errs...)
}

func (c *Container) retrieverLocked(ctx context.Context) (*services.RetrievalService, error) {
	if c.retriever != nil {
		return c.retriever, nil
	}
	app, err := c.appSettingsLocked()
	if err != nil {
		return nil, err
	}

	embedder := c.opts.Embedder
	if embedder == nil {
		if c.opts.SkipPing {
			embedder, err = ai.CreateEmbeddingService(ctx, app.Embedding)
		} else {
			embedder, err = ai.CreateAndValidateEmbeddingService(ctx, app.Embedding)
		}
		if err != nil {
			return nil, err
		}
	}
	c.embedder = embedder

	pipeline, err := postprocessors.NewDefaultPipeline(app.Chunking.MaxChunkSize)
	if err != nil {
		return nil, fmt.Errorf("build chunking pipeline: %w", err)
	}

	c.retriever = services.NewRetrievalService(embedder, pipeline, flat.Factory{})
	return c.retriever, nil
}

func (c *Container) llmLocked(ctx context.Context) (driven.LLMService, error) {
	if c.llm != nil {
		return c.llm, nil
	}
	if c.opts.LLM != nil {
		c.llm = c.opts.LLM
		return c.llm, nil
	}

	var llm driven.LLMService
	var err error
	if c.opts.SkipPing {
		llm, err = ai.CreateLLMService(ctx, c.app.LLM)
	} else {
		llm, err = ai.CreateAndValidateLLMService(ctx, c.app.LLM)
	}
	if err != nil {
		return nil, err
	}
	c.llm = llm
	return llm, nil
}

func (c *Container) snapshotStoreLocked() (driven.SnapshotStore, error) {
	if c.snapshots != nil {
		return c.snapshots, nil
	}
	if c.opts.Snapshots != nil {
		c.snapshots = c.opts.Snapshots
		return c.snapshots, nil
	}
	store, err := sqlite.NewStore(c.app.Storage.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open snapshot store: %w", err)
	}
	c.snapshots = store
	return store, nil
}

// restoreLocked loads the saved snapshot. A missing or incompatible
// snapshot, or one built from different documents, is not an error; the
// caller rebuilds.
func (c *Container) restoreLocked(ctx context.Context) (bool, error) {
	store, err := c.snapshotStoreLocked()
	if err != nil {
		return false, err
	}
	snapshot, err := store.Load(ctx)
	if errors.Is(err, domain.ErrNotFound) {
		logger.Debug("No saved corpus snapshot")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load snapshot: %w", err)
	}
	if c.sourceChangedLocked(ctx, snapshot) {
		logger.Info("Knowledge base changed since the saved corpus was built, rebuilding")
		return false, nil
	}
	if err := c.retriever.RestoreCorpus(snapshot); err != nil {
		if errors.Is(err, domain.ErrValidation) {
			logger.Warn("Saved corpus is stale, rebuilding: %v", err)
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// sourceChangedLocked reports whether the knowledge base documents differ
// from those the snapshot was built from. An unreadable source keeps the
// snapshot so the assistant still starts offline.
func (c *Container) sourceChangedLocked(ctx context.Context, snapshot *domain.CorpusSnapshot) bool {
	source, err := c.sourceLocked(ctx)
	if err != nil {
		logger.Warn("Cannot check knowledge base for changes, using saved corpus: %v", err)
		return false
	}
	docs, err := source.Documents(ctx)
	if err != nil {
		logger.Warn("Cannot read %s, using saved corpus: %v", source.Name(), err)
		return false
	}
	return domain.FingerprintDocuments(docs) != snapshot.SourceFingerprint
}

func (c *Container) buildLocked(ctx context.Context) error {
	source, err := c.sourceLocked(ctx)
	if err != nil {
		return err
	}

	if err := c.retriever.BuildCorpus(ctx, source); err != nil {
		return err
	}
	c.loaded = true

	store, err := c.snapshotStoreLocked()
	if err != nil {
		return err
	}
	snapshot, err := c.retriever.Snapshot()
	if err != nil {
		return err
	}
	if err := store.Save(ctx, snapshot); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	logger.Info("Saved corpus snapshot with %d chunks", len(snapshot.Chunks))
	return nil
}
