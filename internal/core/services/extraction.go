package services

import (
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
)

// AnswerStrategy derives an answer from a generation response. Strategies
// are tried in order and the first one that reports ok wins.
type AnswerStrategy struct {
	// Name identifies the strategy in logs.
	Name string

	// Degraded marks answers that did not come from the provider.
	Degraded bool

	// Extract returns the answer, or ok=false to pass to the next strategy.
	// gen may be nil; contexts are the truncated chunks put in the prompt.
	Extract func(gen *domain.Generation, contexts []string) (answer string, ok bool)
}

// DefaultAnswerStrategies returns the standard extraction chain: the
// response text, then the first candidate part, then a sentence-trimmed
// preview of the best context chunk, then a fixed fallback answer.
func DefaultAnswerStrategies(fallbackPreview int) []AnswerStrategy {
	return []AnswerStrategy{
		{Name: "response_text", Extract: responseText},
		{Name: "candidate_part", Extract: candidatePart},
		{Name: "context_preview", Degraded: true, Extract: contextPreview(fallbackPreview)},
		{Name: "generic", Degraded: true, Extract: genericAnswer},
	}
}

// extractAnswer runs the strategies in order. If none succeeds it returns
// the generic fallback as a degraded answer.
func extractAnswer(strategies []AnswerStrategy, gen *domain.Generation, contexts []string) (string, AnswerStrategy) {
	for _, s := range strategies {
		if answer, ok := s.Extract(gen, contexts); ok {
			return answer, s
		}
	}
	return domain.GenericFallbackAnswer, AnswerStrategy{Name: "generic", Degraded: true}
}

func responseText(gen *domain.Generation, _ []string) (string, bool) {
	if gen == nil {
		return "", false
	}
	text := strings.TrimSpace(gen.Text)
	return text, text != ""
}

func candidatePart(gen *domain.Generation, _ []string) (string, bool) {
	if gen == nil {
		return "", false
	}
	for _, c := range gen.Candidates {
		if len(c.Parts) == 0 {
			continue
		}
		if text := strings.TrimSpace(c.Parts[0]); text != "" {
			return text, true
		}
	}
	return "", false
}

func contextPreview(limit int) func(*domain.Generation, []string) (string, bool) {
	return func(_ *domain.Generation, contexts []string) (string, bool) {
		if len(contexts) == 0 {
			return "", false
		}
		text := strings.TrimSpace(truncateRunes(contexts[0], limit))
		// Drop the trailing fragment after the last full stop.
		if i := strings.LastIndex(text, "."); i >= 0 {
			text = strings.TrimSpace(text[:i+1])
		}
		return text, text != "" && text != "."
	}
}

func genericAnswer(_ *domain.Generation, _ []string) (string, bool) {
	return domain.GenericFallbackAnswer, true
}

// truncateRunes returns at most n characters of s.
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
