package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/recall-labs/recall-cli/internal/core/domain"
	"github.com/recall-labs/recall-cli/internal/core/ports/driven"
)

// rrfK is the reciprocal rank fusion constant. 60 is the standard choice;
// it keeps a single top rank from dominating the fused score.
const rrfK = 60

// Ensure Index implements the interface.
var _ driven.HybridIndex = (*Index)(nil)

// Index is an in-memory implementation of driven.HybridIndex. Lexical
// matching is token overlap and vector matching is exact cosine similarity,
// fused by reciprocal rank the same way the Postgres adapter fuses them.
// The index is lost when the process exits.
type Index struct {
	mu         sync.RWMutex
	dimensions int
	entries    map[string]domain.IndexEntry
}

// NewIndex creates a new in-memory hybrid index.
func NewIndex() *Index {
	return &Index{
		entries: make(map[string]domain.IndexEntry),
	}
}

// EnsureSchema fixes the index dimensionality. The first call configures
// the index; later calls are no-ops as long as the dimensionality matches.
func (idx *Index) EnsureSchema(_ context.Context, dimensions int) error {
	if dimensions <= 0 {
		return fmt.Errorf("%w: index dimensions must be positive, got %d",
			domain.ErrInvalidConfiguration, dimensions)
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.dimensions == 0 {
		idx.dimensions = dimensions
		return nil
	}
	if idx.dimensions != dimensions {
		return fmt.Errorf("%w: index already configured for %d dimensions, got %d",
			domain.ErrInvalidConfiguration, idx.dimensions, dimensions)
	}
	return nil
}

// Upsert writes a batch of entries, overwriting entries with existing ids.
func (idx *Index) Upsert(_ context.Context, entries []domain.IndexEntry) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	if idx.dimensions == 0 {
		return fmt.Errorf("%w: schema not initialised", domain.ErrIndexWrite)
	}

	for _, entry := range entries {
		if entry.ID == "" {
			return fmt.Errorf("%w: entry for %s chunk %d has no id",
				domain.ErrIndexWrite, entry.SourcePath, entry.ChunkIndex)
		}
		if len(entry.Embedding) != idx.dimensions {
			return fmt.Errorf("%w: entry %s has %d dimensions, index expects %d",
				domain.ErrIndexWrite, entry.ID, len(entry.Embedding), idx.dimensions)
		}
	}

	for _, entry := range entries {
		idx.entries[entry.ID] = entry
	}
	return nil
}

// Search runs one combined lexical + vector query and returns at most topK
// chunks ranked by fused relevance.
func (idx *Index) Search(_ context.Context, keywordText string, vector []float32, topK int) ([]domain.RetrievedChunk, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	if topK <= 0 {
		return []domain.RetrievedChunk{}, nil
	}

	lexical := idx.lexicalRanking(keywordText, topK)
	semantic := idx.vectorRanking(vector, topK)

	fused := fuseRankings(lexical, semantic)
	if len(fused) > topK {
		fused = fused[:topK]
	}

	results := make([]domain.RetrievedChunk, 0, len(fused))
	for _, f := range fused {
		entry := idx.entries[f.id]
		results = append(results, domain.RetrievedChunk{
			Title:      entry.Title,
			Content:    entry.Content,
			Tags:       entry.Tags,
			SourcePath: entry.SourcePath,
			Score:      f.score,
		})
	}
	return results, nil
}

// DeleteFrom removes every entry of sourcePath with chunk index >= fromIndex.
func (idx *Index) DeleteFrom(_ context.Context, sourcePath string, fromIndex int) error {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	for id, entry := range idx.entries {
		if entry.SourcePath == sourcePath && entry.ChunkIndex >= fromIndex {
			delete(idx.entries, id)
		}
	}
	return nil
}

// Count returns the number of entries in the index.
func (idx *Index) Count(_ context.Context) (int, error) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries), nil
}

// Close releases resources.
func (idx *Index) Close() error {
	return nil
}

// ranked is one entry in a single-signal ranking.
type ranked struct {
	id    string
	score float64
}

// lexicalRanking ranks entries by how many query tokens appear in their
// title, tags or content. Entries matching no token are excluded.
func (idx *Index) lexicalRanking(keywordText string, limit int) []ranked {
	tokens := tokenize(keywordText)
	if len(tokens) == 0 {
		return nil
	}

	var hits []ranked
	for id, entry := range idx.entries {
		haystack := strings.ToLower(entry.Title + " " + strings.Join(entry.Tags, " ") + " " + entry.Content)
		matches := 0
		for _, tok := range tokens {
			if strings.Contains(haystack, tok) {
				matches++
			}
		}
		if matches > 0 {
			hits = append(hits, ranked{id: id, score: float64(matches)})
		}
	}

	sortRanked(hits)
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// vectorRanking ranks entries by cosine similarity to the query vector.
func (idx *Index) vectorRanking(vector []float32, limit int) []ranked {
	if len(vector) == 0 {
		return nil
	}

	var hits []ranked
	for id, entry := range idx.entries {
		sim := cosineSimilarity(vector, entry.Embedding)
		hits = append(hits, ranked{id: id, score: sim})
	}

	sortRanked(hits)
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits
}

// sortRanked orders by score descending with id as a deterministic tie-break.
func sortRanked(hits []ranked) {
	sort.Slice(hits, func(i, j int) bool {
		if hits[i].score != hits[j].score {
			return hits[i].score > hits[j].score
		}
		return hits[i].id < hits[j].id
	})
}

// fuseRankings merges two ranked lists using reciprocal rank fusion.
func fuseRankings(lexical, semantic []ranked) []ranked {
	scores := make(map[string]float64)

	for rank, hit := range lexical {
		scores[hit.id] += 1.0 / float64(rrfK+rank+1)
	}
	for rank, hit := range semantic {
		scores[hit.id] += 1.0 / float64(rrfK+rank+1)
	}

	fused := make([]ranked, 0, len(scores))
	for id, score := range scores {
		fused = append(fused, ranked{id: id, score: score})
	}
	sortRanked(fused)
	return fused
}

// tokenize lowercases and splits text on non-alphanumeric runes.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9' || r > 127)
	})
}

// cosineSimilarity computes the cosine of the angle between two vectors,
// returning 0 for mismatched lengths or zero vectors.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
