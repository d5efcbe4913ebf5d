// Package vault reads markdown notes from a local vault directory and
// watches it for changes.
package vault

import (
	"strings"

	"gopkg.in/yaml.v3"
)

const frontMatterDelim = "---"

// frontMatter is the YAML block an Obsidian-style note may open with.
type frontMatter struct {
	Title string  `yaml:"title"`
	Tags  tagList `yaml:"tags"`
}

// tagList accepts both YAML forms notes use in the wild:
// a sequence ([a, b]) or a comma-joined scalar ("a, b").
type tagList []string

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *tagList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var items []string
		if err := value.Decode(&items); err != nil {
			return err
		}
		*t = items
	case yaml.ScalarNode:
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		var items []string
		for _, part := range strings.Split(s, ",") {
			if part = strings.TrimSpace(part); part != "" {
				items = append(items, part)
			}
		}
		*t = items
	}
	return nil
}

// splitFrontMatter separates a leading YAML front-matter block from the
// note body. When the note has no block, or the block is malformed, ok is
// false and body is the full content; a broken header should not keep a
// note out of the corpus.
func splitFrontMatter(content string) (meta frontMatter, body string, ok bool) {
	normalised := strings.ReplaceAll(content, "\r\n", "\n")
	if !strings.HasPrefix(normalised, frontMatterDelim+"\n") {
		return frontMatter{}, content, false
	}

	rest := normalised[len(frontMatterDelim)+1:]
	end := strings.Index(rest, "\n"+frontMatterDelim)
	if end < 0 {
		return frontMatter{}, content, false
	}

	block := rest[:end]
	body = rest[end+len(frontMatterDelim)+1:]
	body = strings.TrimPrefix(body, "\n")

	if err := yaml.Unmarshal([]byte(block), &meta); err != nil {
		return frontMatter{}, content, false
	}

	return meta, body, true
}
