package vault

import (
	"path/filepath"
	"strings"

	"github.com/recall-labs/recall-cli/internal/core/domain"
	"github.com/recall-labs/recall-cli/internal/logger"
)

// Note is a parsed vault note, ready to upload.
type Note struct {
	// RelPath is the vault-relative path with forward slashes.
	RelPath string

	// Title comes from front matter, the first H1, or the file name.
	Title string

	// Tags come from front matter.
	Tags []string

	// Body is the note content with front matter stripped.
	Body string

	// MD5 is the content hash of Body.
	MD5 string
}

// Document converts the note into its corpus representation.
func (n Note) Document() domain.Document {
	return domain.Document{
		SourcePath: n.RelPath,
		Title:      n.Title,
		Tags:       n.Tags,
		Content:    n.Body,
		ContentMD5: n.MD5,
	}
}

// ParseNote builds a Note from raw file bytes.
func ParseNote(relPath string, data []byte) Note {
	meta, body, ok := splitFrontMatter(string(data))
	if !ok && strings.HasPrefix(string(data), frontMatterDelim) {
		logger.Warn("note %s: unreadable front matter, ingesting as-is", relPath)
	}

	title := strings.TrimSpace(meta.Title)
	if title == "" {
		title = firstHeading(body)
	}
	if title == "" {
		title = stemTitle(relPath)
	}

	return Note{
		RelPath: filepath.ToSlash(relPath),
		Title:   title,
		Tags:    meta.Tags,
		Body:    body,
		MD5:     domain.HashContent([]byte(body)),
	}
}

// firstHeading returns the text of the first H1 heading, if any.
func firstHeading(content string) string {
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "#"))
		}
	}
	return ""
}

// stemTitle derives a title from the file name.
func stemTitle(relPath string) string {
	filename := filepath.Base(relPath)
	if ext := filepath.Ext(filename); ext != "" {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return filename
}
