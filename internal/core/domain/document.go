package domain

import (
	"crypto/md5" //nolint:gosec // change detection, not security
	"encoding/base64"
	"encoding/hex"
	"strconv"
	"strings"
)

// Metadata keys stored alongside a document blob.
const (
	MetaTitle      = "title"
	MetaTags       = "tags"
	MetaContentMD5 = "content_md5"
)

// Document represents a note in the corpus, keyed by its source path.
// Re-uploading a document with the same source path overwrites it.
type Document struct {
	// SourcePath is the vault-relative path, unique within the corpus.
	SourcePath string

	// Title is the human-readable title.
	Title string

	// Tags are the document's tags. Order is insignificant.
	Tags []string

	// Content is the full text, front matter stripped.
	Content string

	// ContentMD5 is the md5 of Content, used for change detection.
	ContentMD5 string
}

// Metadata returns the flat string map persisted with the document blob.
func (d Document) Metadata() map[string]string {
	return map[string]string{
		MetaTitle:      d.Title,
		MetaTags:       JoinTags(d.Tags),
		MetaContentMD5: d.ContentMD5,
	}
}

// Chunk is a bounded, possibly-overlapping slice of a document's text.
// Its identity is the pair (source path, index).
type Chunk struct {
	// SourcePath is the owning document's source path.
	SourcePath string

	// Index is the zero-based position within the document.
	Index int

	// Content is the text span.
	Content string
}

// ID returns the stable index-entry id for this chunk.
func (c Chunk) ID() string {
	return EntryID(c.SourcePath, c.Index)
}

// EntryID derives the index-entry id for a (source path, chunk index) pair.
// The derivation is deterministic so repeated ingestion of an unchanged
// document overwrites identical ids instead of accumulating duplicates.
func EntryID(sourcePath string, index int) string {
	key := strings.TrimSuffix(sourcePath, ".md") + "_" + strconv.Itoa(index)
	return base64.URLEncoding.EncodeToString([]byte(key))
}

// IndexEntry is the persisted unit in the hybrid index.
type IndexEntry struct {
	// ID is the derived entry id, unique within the index.
	ID string

	// Title is the owning document's title.
	Title string

	// Tags are the owning document's tags.
	Tags []string

	// Content is the chunk text.
	Content string

	// SourcePath is the owning document's source path.
	SourcePath string

	// ChunkIndex is the chunk's position within the document.
	ChunkIndex int

	// Embedding is the chunk's vector. Its length must equal the index
	// schema's configured dimensionality.
	Embedding []float32
}

// HashContent returns the md5 hex digest of data.
func HashContent(data []byte) string {
	sum := md5.Sum(data) //nolint:gosec // change detection, not security
	return hex.EncodeToString(sum[:])
}

// JoinTags flattens tags into a comma-joined, ASCII-safe string suitable
// for blob metadata. Non-ASCII runes are dropped.
func JoinTags(tags []string) string {
	cleaned := make([]string, 0, len(tags))
	for _, tag := range tags {
		var b strings.Builder
		for _, r := range tag {
			if r < 128 {
				b.WriteRune(r)
			}
		}
		if s := strings.TrimSpace(b.String()); s != "" {
			cleaned = append(cleaned, s)
		}
	}
	return strings.Join(cleaned, ",")
}

// ParseTags splits a comma-joined tag string back into a slice.
func ParseTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			tags = append(tags, p)
		}
	}
	return tags
}
