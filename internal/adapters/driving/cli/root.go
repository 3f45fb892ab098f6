// Package cli provides the sercha-voice command line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
	"github.com/custodia-labs/sercha-voice/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-voice/internal/logger"
)

// Backend is what commands need from the composition root.
type Backend interface {
	// Settings returns the settings service without validating it.
	Settings() driving.SettingsService

	// AppSettings returns validated settings.
	AppSettings() (*domain.AppSettings, error)

	// Corpus returns a retrieval service with a loaded corpus, building it
	// when no usable snapshot exists or rebuild is set.
	Corpus(ctx context.Context, rebuild bool) (driving.RetrievalService, error)

	// Rebuild builds the corpus from the knowledge base and saves it.
	Rebuild(ctx context.Context) (driving.RetrievalService, error)

	// Conversations returns a factory for independent sessions.
	Conversations(ctx context.Context, rebuild bool) (func() driving.ConversationService, error)

	// CheckProviders pings the configured embedding and generation providers.
	CheckProviders(ctx context.Context) error

	// Watch reports knowledge base changes.
	Watch(ctx context.Context) (<-chan domain.DocumentChange, error)

	// Close releases resources.
	Close() error
}

// BackendOptions are the global flags that shape the backend.
type BackendOptions struct {
	ConfigPath string
	SkipPing   bool
}

// BackendFactory creates the backend once flags are parsed.
type BackendFactory func(opts BackendOptions) (Backend, error)

var (
	version = "dev"

	cfgFile  string
	envFile  string
	verbose  bool
	skipPing bool

	newBackend BackendFactory
	backend    Backend
)

var rootCmd = &cobra.Command{
	Use:   "sercha-voice",
	Short: "Knowledge base voice assistant",
	Long: `sercha-voice answers questions from a plain-text knowledge base.

It chunks .txt documents, embeds them into an in-memory vector index and
grounds every answer in the passages nearest to the question. Use it from
the terminal, over HTTP or as an MCP server.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.sercha-voice/config.toml)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "dotenv file to load (default .env when present)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")
	rootCmd.PersistentFlags().BoolVar(&skipPing, "skip-ping", false, "do not check providers at start-up")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	version = v
}

// SetBackendFactory sets how the backend is created.
func SetBackendFactory(f BackendFactory) {
	newBackend = f
}

// Execute runs the root command and releases the backend afterwards.
func Execute(ctx context.Context) error {
	defer closeBackend()
	rootCmd.SetOut(os.Stdout)
	return rootCmd.ExecuteContext(ctx)
}

func setup(_ *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return fmt.Errorf("load %s: %w", envFile, err)
		}
		return nil
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Ignoring .env: %v", err)
	}
	return nil
}

// getBackend creates the backend on first use.
func getBackend() (Backend, error) {
	if backend != nil {
		return backend, nil
	}
	if newBackend == nil {
		return nil, errors.New("backend not configured")
	}
	b, err := newBackend(BackendOptions{ConfigPath: cfgFile, SkipPing: skipPing})
	if err != nil {
		return nil, err
	}
	backend = b
	return backend, nil
}

func closeBackend() {
	if backend == nil {
		return
	}
	if err := backend.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "close: %v\n", err)
	}
	backend = nil
}
