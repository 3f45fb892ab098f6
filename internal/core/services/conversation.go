package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
	"github.com/custodia-labs/sercha-voice/internal/core/ports/driven"
	"github.com/custodia-labs/sercha-voice/internal/core/ports/driving"
	"github.com/custodia-labs/sercha-voice/internal/logger"
)

// Ensure ConversationService implements the interface.
var _ driving.ConversationService = (*ConversationService)(nil)

// Built-in prompt templates, used when no PromptStore is configured.
const (
	defaultGroundedPrompt = "Context: %s\n\nQuestion: %s\n\nAnswer briefly:"
	defaultBarePrompt     = "Answer briefly: %s"
)

// contextSeparator joins retrieved chunks in the prompt.
const contextSeparator = "\n\n"

// ConversationService runs the turn pipeline for one session: retrieve
// context, build the prompt, generate, extract an answer and record the turn.
type ConversationService struct {
	retriever  driving.RetrievalService
	llm        driven.LLMService
	prompts    driven.PromptStore
	settings   domain.ConversationSettings
	strategies []AnswerStrategy
	now        func() time.Time

	mu        sync.RWMutex
	history   []domain.ConversationTurn
	state     domain.ConversationState
	sessionID string
}

// ConversationOption configures a ConversationService.
type ConversationOption func(*ConversationService)

// WithPromptStore loads prompt templates from the store instead of the
// built-in defaults.
func WithPromptStore(store driven.PromptStore) ConversationOption {
	return func(s *ConversationService) {
		s.prompts = store
	}
}

// WithAnswerStrategies replaces the answer extraction chain.
func WithAnswerStrategies(strategies ...AnswerStrategy) ConversationOption {
	return func(s *ConversationService) {
		if len(strategies) > 0 {
			s.strategies = strategies
		}
	}
}

// WithClock sets the time source used to stamp turns.
func WithClock(now func() time.Time) ConversationOption {
	return func(s *ConversationService) {
		if now != nil {
			s.now = now
		}
	}
}

// NewConversationService creates a conversation session.
func NewConversationService(
	retriever driving.RetrievalService,
	llm driven.LLMService,
	settings domain.ConversationSettings,
	opts ...ConversationOption,
) *ConversationService {
	s := &ConversationService{
		retriever:  retriever,
		llm:        llm,
		settings:   settings,
		strategies: DefaultAnswerStrategies(settings.FallbackPreview),
		now:        time.Now,
		state:      domain.StateIdle,
		sessionID:  uuid.New().String(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ProcessInput answers the user's text. It never fails: errors anywhere in
// the turn produce the apology answer and an errored turn in the history.
func (s *ConversationService) ProcessInput(ctx context.Context, text string) string {
	logger.Section("Conversation Turn")
	logger.Info("User: %s", text)

	turn, err := s.runTurn(ctx, text)
	if err != nil {
		logger.Error("Turn failed: %v", err)
		turn = domain.ConversationTurn{
			User:      text,
			Assistant: domain.ErrorAnswer,
			Outcome:   domain.TurnErrored,
		}
	}
	turn.At = s.now()

	s.mu.Lock()
	s.history = append(s.history, turn)
	s.state = domain.StateIdle
	s.mu.Unlock()

	logger.Info("Assistant: %s", turn.Assistant)
	return turn.Assistant
}

func (s *ConversationService) runTurn(ctx context.Context, text string) (turn domain.ConversationTurn, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic during turn: %v", r)
		}
	}()

	s.setState(domain.StateRetrievingContext)
	results, err := s.retriever.Retrieve(ctx, text, s.settings.TopK)
	if err != nil {
		return turn, fmt.Errorf("retrieve context: %w", err)
	}

	contexts := make([]string, 0, len(results))
	for _, r := range results {
		contexts = append(contexts, truncateRunes(r.Text, s.settings.ContextPreview))
		logger.Info("Retrieved from %s (distance: %.2f)", r.Metadata.Source, r.Distance)
	}
	contextText := strings.Join(contexts, contextSeparator)

	prompt := s.buildPrompt(contextText, text)
	s.setState(domain.StatePromptBuilt)
	logger.Debug("Prompt: %q", prompt)

	s.setState(domain.StateAwaitingGeneration)
	gen, err := s.generate(ctx, prompt)
	if err != nil {
		return turn, fmt.Errorf("generate answer: %w", err)
	}

	answer, strategy := extractAnswer(s.strategies, gen, contexts)
	outcome := domain.TurnSuccess
	if strategy.Degraded {
		outcome = domain.TurnDegraded
		reason := "empty response"
		if gen != nil && gen.BlockReason != "" {
			reason = "blocked: " + gen.BlockReason
		}
		logger.Warn("%v: %s, answered with %s", domain.ErrGenerationDegraded, reason, strategy.Name)
	}
	s.setState(domain.StateResponded)

	return domain.ConversationTurn{
		User:        text,
		Assistant:   answer,
		UsedContext: contextText != "",
		Outcome:     outcome,
	}, nil
}

// generate calls the provider with a per-attempt timeout and retries
// transient failures.
func (s *ConversationService) generate(ctx context.Context, prompt string) (*domain.Generation, error) {
	sampling := s.settings.Sampling()

	var gen *domain.Generation
	err := withRetry(ctx, s.settings.MaxRetries, s.settings.RetryBackoff, func(ctx context.Context) error {
		if s.settings.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.settings.Timeout)
			defer cancel()
		}
		var err error
		gen, err = s.llm.Generate(ctx, prompt, sampling)
		return err
	})
	return gen, err
}

// buildPrompt renders the grounded prompt when context exists and the bare
// prompt otherwise.
func (s *ConversationService) buildPrompt(contextText, question string) string {
	if contextText == "" {
		return fmt.Sprintf(s.template(driven.PromptBareAnswer, defaultBarePrompt), question)
	}
	return fmt.Sprintf(s.template(driven.PromptGroundedAnswer, defaultGroundedPrompt), contextText, question)
}

func (s *ConversationService) template(name, fallback string) string {
	if s.prompts == nil {
		return fallback
	}
	tpl, err := s.prompts.Load(name)
	if err != nil || strings.TrimSpace(tpl) == "" {
		logger.Warn("Prompt %s unavailable, using built-in: %v", name, err)
		return fallback
	}
	return tpl
}

func (s *ConversationService) setState(state domain.ConversationState) {
	s.mu.Lock()
	s.state = state
	s.mu.Unlock()
}

// History returns a copy of the recorded turns, oldest first.
func (s *ConversationService) History() []domain.ConversationTurn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.ConversationTurn, len(s.history))
	copy(out, s.history)
	return out
}

// Reset clears the history and starts a new session.
func (s *ConversationService) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = nil
	s.state = domain.StateIdle
	s.sessionID = uuid.New().String()
}

// State returns the current turn processing state.
func (s *ConversationService) State() domain.ConversationState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// SessionID identifies the current session.
func (s *ConversationService) SessionID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessionID
}
