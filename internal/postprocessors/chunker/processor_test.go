package chunker

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/custodia-labs/sercha-voice/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p := New()
		if p.MaxSize() != DefaultMaxChunkSize {
			t.Errorf("expected maxSize %d, got %d", DefaultMaxChunkSize, p.MaxSize())
		}
	})

	t.Run("custom max size", func(t *testing.T) {
		p := New(WithMaxSize(120))
		if p.MaxSize() != 120 {
			t.Errorf("expected maxSize 120, got %d", p.MaxSize())
		}
	})

	t.Run("non-positive values ignored", func(t *testing.T) {
		p := New(WithMaxSize(0), WithMaxSize(-5))
		if p.MaxSize() != DefaultMaxChunkSize {
			t.Errorf("expected default maxSize, got %d", p.MaxSize())
		}
	})
}

func TestProcessor_Name(t *testing.T) {
	p := New()
	if p.Name() != "chunker" {
		t.Errorf("expected name 'chunker', got '%s'", p.Name())
	}
}

func TestProcessor_Split_Empty(t *testing.T) {
	p := New()
	for _, text := range []string{"", "   ", "\n\n\n\n", " \t\n"} {
		if chunks := p.Split(text); len(chunks) != 0 {
			t.Errorf("expected no chunks for %q, got %d", text, len(chunks))
		}
	}
}

func TestProcessor_Split_MergesShortParagraphs(t *testing.T) {
	p := New(WithMaxSize(500))
	text := "Business hours: Mon-Fri 9am-6pm.\n\nPricing: $10/month."

	chunks := p.Split(text)

	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d: %q", len(chunks), chunks)
	}
	if chunks[0] != text {
		t.Errorf("unexpected chunk %q", chunks[0])
	}
}

func TestProcessor_Split_ClosesBufferAtBound(t *testing.T) {
	// "aaaa\n\n" is 6 characters; adding "bbbb" gives 10, which reaches the bound.
	p := New(WithMaxSize(10))

	chunks := p.Split("aaaa\n\nbbbb\n\ncc")

	want := []string{"aaaa", "bbbb\n\ncc"}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d: %q", len(want), len(chunks), chunks)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d: expected %q, got %q", i, want[i], chunks[i])
		}
	}
}

func TestProcessor_Split_KeepsOversizedParagraphWhole(t *testing.T) {
	p := New(WithMaxSize(20))
	long := strings.Repeat("x", 50)

	chunks := p.Split("short\n\n" + long + "\n\ntail")

	want := []string{"short", long, "tail"}
	if len(chunks) != len(want) {
		t.Fatalf("expected %d chunks, got %d: %q", len(want), len(chunks), chunks)
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk %d: expected %q, got %q", i, want[i], chunks[i])
		}
	}
}

func TestProcessor_Split_TrimsAndDropsBlankParagraphs(t *testing.T) {
	p := New(WithMaxSize(5))

	chunks := p.Split("  first  \n\n\n\n   \n\n second\n")

	if len(chunks) != 2 || chunks[0] != "first" || chunks[1] != "second" {
		t.Errorf("unexpected chunks %q", chunks)
	}
}

func TestProcessor_Split_SingleParagraphWithoutBreaks(t *testing.T) {
	p := New()
	text := "one line\nanother line"

	chunks := p.Split(text)

	if len(chunks) != 1 || chunks[0] != text {
		t.Errorf("unexpected chunks %q", chunks)
	}
}

func TestProcessor_Split_CountsCharactersNotBytes(t *testing.T) {
	// Each paragraph is 4 characters but 8 bytes.
	p := New(WithMaxSize(11))

	chunks := p.Split("éééé\n\nüüüü")

	if len(chunks) != 1 {
		t.Errorf("expected paragraphs to merge by character count, got %q", chunks)
	}
}

func TestProcessor_Split_Properties(t *testing.T) {
	text := strings.Join([]string{
		"Our office is open Monday to Friday.",
		strings.Repeat("Support is available around the clock. ", 6),
		"Pricing starts at $10 per month.",
		"Enterprise plans include SSO.",
		"Refunds are processed within five business days.",
		strings.Repeat("z", 90),
		"Contact us at hello@example.com.",
	}, "\n\n")
	maxSize := 80
	p := New(WithMaxSize(maxSize))

	chunks := p.Split(text)

	t.Run("reconstructs paragraphs in order", func(t *testing.T) {
		rebuilt := strings.Join(chunks, "\n\n")
		if strings.Join(paragraphs(rebuilt), "|") != strings.Join(paragraphs(text), "|") {
			t.Errorf("paragraphs changed:\n%q\n%q", paragraphs(rebuilt), paragraphs(text))
		}
	})

	t.Run("chunks respect the bound unless a single paragraph", func(t *testing.T) {
		for _, chunk := range chunks {
			if utf8.RuneCountInString(chunk) < maxSize {
				continue
			}
			if len(paragraphs(chunk)) != 1 {
				t.Errorf("oversized chunk holds several paragraphs: %q", chunk)
			}
		}
	})
}

func TestProcessor_Process(t *testing.T) {
	p := New(WithMaxSize(10))
	doc := &domain.Document{
		Source:  "faq.txt",
		Content: "aaaa\n\nbbbb\n\ncc",
	}

	chunks, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(chunks))
	}

	seen := make(map[string]bool)
	for i, chunk := range chunks {
		if chunk.Index != i {
			t.Errorf("chunk %d: expected index %d, got %d", i, i, chunk.Index)
		}
		if chunk.Source != "faq.txt" {
			t.Errorf("chunk %d: expected source faq.txt, got %q", i, chunk.Source)
		}
		if chunk.ID == "" || seen[chunk.ID] {
			t.Errorf("chunk %d: expected unique ID, got %q", i, chunk.ID)
		}
		seen[chunk.ID] = true
	}
}

func TestProcessor_Process_EmptyContent(t *testing.T) {
	p := New()
	doc := &domain.Document{Source: "empty.txt"}

	chunks, err := p.Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks for empty content, got %d", len(chunks))
	}
}
