package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/recall-labs/recall-cli/internal/core/domain"
)

// uriScheme prefixes every resource this server exposes.
const uriScheme = "recall://"

// registerResources wires the corpus resources: a static listing of all
// notes, and a template resolving one note's markdown.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "documents",
		Name:        "documents",
		Description: "Titles and tags of every note in the corpus",
		MIMEType:    "application/json",
	}, s.handleDocumentsResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "documents/{+path}",
		Name:        "document-content",
		Description: "Raw markdown content of a specific note",
		MIMEType:    "text/markdown",
	}, s.handleDocumentContentResource)
}

// resourceText wraps one text payload in the result envelope the SDK
// expects.
func resourceText(uri, mimeType, text string) *mcp.ReadResourceResult {
	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: mimeType,
			Text:     text,
		}},
	}
}

// handleDocumentsResource returns a listing of all stored notes.
func (s *Server) handleDocumentsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Corpus == nil {
		return resourceText(req.Params.URI, "application/json", "[]"), nil
	}

	blobs, err := s.ports.Corpus.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing corpus: %w", err)
	}

	type docInfo struct {
		Path  string   `json:"path"`
		Title string   `json:"title"`
		Tags  []string `json:"tags,omitempty"`
	}

	infos := make([]docInfo, len(blobs))
	for i, blob := range blobs {
		infos[i] = docInfo{
			Path:  blob.Name,
			Title: blob.Metadata[domain.MetaTitle],
			Tags:  domain.ParseTags(blob.Metadata[domain.MetaTags]),
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Path < infos[j].Path })

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding document listing: %w", err)
	}

	return resourceText(req.Params.URI, "application/json", string(data)), nil
}

// handleDocumentContentResource returns the markdown of a single note.
func (s *Server) handleDocumentContentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Corpus == nil {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	path := documentPath(req.Params.URI)
	if path == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	content, err := s.ports.Corpus.Read(ctx, path)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, mcp.ResourceNotFoundError(req.Params.URI)
		}
		return nil, fmt.Errorf("reading note: %w", err)
	}

	return resourceText(req.Params.URI, "text/markdown", string(content)), nil
}

// documentPath strips the scheme and resource prefix from a content URI
// like recall://documents/notes/docker.md.
func documentPath(uri string) string {
	path, ok := strings.CutPrefix(uri, uriScheme+"documents/")
	if !ok {
		return ""
	}
	return path
}
