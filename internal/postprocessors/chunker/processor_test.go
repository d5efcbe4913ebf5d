package chunker

import (
	"errors"
	"strings"
	"testing"

	"github.com/recall-labs/recall-cli/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		p, err := New()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("chunkSize = %d, want %d", p.chunkSize, DefaultChunkSize)
		}
		if p.overlap != DefaultChunkOverlap {
			t.Errorf("overlap = %d, want %d", p.overlap, DefaultChunkOverlap)
		}
	})

	t.Run("size option", func(t *testing.T) {
		p, err := New(WithChunkSize(500))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if p.chunkSize != 500 {
			t.Errorf("chunkSize = %d, want 500", p.chunkSize)
		}
	})

	t.Run("zero overlap allowed", func(t *testing.T) {
		if _, err := New(WithChunkSize(100), WithOverlap(0)); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("invalid configurations rejected", func(t *testing.T) {
		cases := []struct {
			name string
			opts []Option
		}{
			{"zero chunk size", []Option{WithChunkSize(0)}},
			{"negative chunk size", []Option{WithChunkSize(-5)}},
			{"negative overlap", []Option{WithOverlap(-1)}},
			{"overlap equals chunk size", []Option{WithChunkSize(100), WithOverlap(100)}},
			{"overlap exceeds chunk size", []Option{WithChunkSize(100), WithOverlap(150)}},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := New(tc.opts...)
				if !errors.Is(err, domain.ErrInvalidConfiguration) {
					t.Errorf("expected ErrInvalidConfiguration, got %v", err)
				}
			})
		}
	})
}

func TestProcessor_Split_EmptyText(t *testing.T) {
	p, _ := New()
	if spans := p.Split(""); len(spans) != 0 {
		t.Errorf("expected 0 spans for empty text, got %d", len(spans))
	}
}

func TestProcessor_Split_ShortText(t *testing.T) {
	// A 40-character note with the default window is exactly one chunk.
	p, _ := New(WithChunkSize(1000), WithOverlap(100))
	text := "Docker Basics: containers made simple!!!"
	if len(text) != 40 {
		t.Fatalf("fixture should be 40 chars, got %d", len(text))
	}

	spans := p.Split(text)
	if len(spans) != 1 {
		t.Fatalf("expected exactly 1 span, got %d", len(spans))
	}
	if spans[0] != text {
		t.Errorf("span should equal the full text, got %q", spans[0])
	}
}

func TestProcessor_Split_Overlap(t *testing.T) {
	p, _ := New(WithChunkSize(10), WithOverlap(3))
	text := "abcdefghijklmnopqrstuvwxyz"

	spans := p.Split(text)

	// Each span after the first starts with the last `overlap` chars of
	// its predecessor.
	for i := 1; i < len(spans); i++ {
		prevTail := spans[i-1][len(spans[i-1])-3:]
		if !strings.HasPrefix(spans[i], prevTail) {
			t.Errorf("span %d does not overlap predecessor: %q then %q", i, spans[i-1], spans[i])
		}
	}

	// Concatenating the non-overlapping leading portions reconstructs the
	// input.
	var rebuilt strings.Builder
	for i, span := range spans {
		if i == len(spans)-1 {
			rebuilt.WriteString(span)
			break
		}
		rebuilt.WriteString(span[:len(span)-3])
	}
	if rebuilt.String() != text {
		t.Errorf("reconstruction mismatch: got %q", rebuilt.String())
	}
}

func TestProcessor_Split_ChunkCount(t *testing.T) {
	cases := []struct {
		name    string
		size    int
		overlap int
		textLen int
		want    int
	}{
		{"exact fit", 10, 2, 10, 1},
		{"one past window", 10, 2, 11, 2},
		{"two windows", 10, 2, 18, 2},
		{"just past two windows", 10, 2, 19, 3},
		{"no overlap", 10, 0, 30, 3},
		{"no overlap remainder", 10, 0, 31, 4},
		{"shorter than overlap", 10, 5, 3, 1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, err := New(WithChunkSize(tc.size), WithOverlap(tc.overlap))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			text := strings.Repeat("x", tc.textLen)
			spans := p.Split(text)

			if len(spans) != tc.want {
				t.Errorf("expected %d spans for len %d, got %d", tc.want, tc.textLen, len(spans))
			}

			// Cross-check against ceil((len-overlap)/(size-overlap)),
			// which holds whenever the text is longer than the overlap.
			if tc.textLen > tc.overlap {
				step := tc.size - tc.overlap
				formula := (tc.textLen - tc.overlap + step - 1) / step
				if len(spans) != formula {
					t.Errorf("span count %d disagrees with formula %d", len(spans), formula)
				}
			}
		})
	}
}

func TestProcessor_Split_Multibyte(t *testing.T) {
	p, _ := New(WithChunkSize(4), WithOverlap(1))
	text := "héllo wörld"

	spans := p.Split(text)

	for i, span := range spans {
		// Every span must be valid UTF-8 of at most 4 runes.
		runes := []rune(span)
		if len(runes) > 4 {
			t.Errorf("span %d has %d runes: %q", i, len(runes), span)
		}
	}

	var rebuilt strings.Builder
	for i, span := range spans {
		runes := []rune(span)
		if i == len(spans)-1 {
			rebuilt.WriteString(span)
			break
		}
		rebuilt.WriteString(string(runes[:len(runes)-1]))
	}
	if rebuilt.String() != text {
		t.Errorf("multibyte reconstruction mismatch: got %q", rebuilt.String())
	}
}

func TestProcessor_Chunk(t *testing.T) {
	p, _ := New(WithChunkSize(10), WithOverlap(2))
	doc := domain.Document{
		SourcePath: "notes/docker.md",
		Title:      "Docker Basics",
		Content:    strings.Repeat("abcdefgh", 4),
	}

	chunks := p.Chunk(doc)

	if len(chunks) == 0 {
		t.Fatal("expected chunks")
	}
	for i, c := range chunks {
		if c.SourcePath != doc.SourcePath {
			t.Errorf("chunk %d has wrong source path %q", i, c.SourcePath)
		}
		if c.Index != i {
			t.Errorf("chunk %d has index %d", i, c.Index)
		}
		if c.ID() != domain.EntryID(doc.SourcePath, i) {
			t.Errorf("chunk %d id mismatch", i)
		}
	}
}

func TestProcessor_Chunk_EmptyDocument(t *testing.T) {
	p, _ := New()
	chunks := p.Chunk(domain.Document{SourcePath: "empty.md"})
	if chunks != nil {
		t.Errorf("expected nil chunks for empty document, got %d", len(chunks))
	}
}
