package domain

import "time"

// UploadStatus reports the progress of a vault upload.
type UploadStatus struct {
	// Running indicates an upload is in progress.
	Running bool

	// FilesSeen is the number of markdown files discovered.
	FilesSeen int

	// Uploaded is the number of files written to the store.
	Uploaded int

	// Skipped is the number of files unchanged since last upload.
	Skipped int

	// Failed is the number of files that could not be uploaded.
	Failed int
}

// IndexOptions configures an index build.
type IndexOptions struct {
	// Full re-embeds every document, ignoring recorded index state.
	Full bool
}

// IndexStatus reports the progress of an index build.
type IndexStatus struct {
	// Running indicates a build is in progress.
	Running bool

	// DocumentsIndexed is the count of documents fully indexed.
	DocumentsIndexed int

	// DocumentsSkipped is the count of documents skipped as unchanged.
	DocumentsSkipped int

	// ChunksIndexed is the count of entries confirmed upserted.
	ChunksIndexed int

	// ErrorCount is the number of documents that failed.
	ErrorCount int
}

// IndexedState records what the index holds for one document.
type IndexedState struct {
	// SourcePath identifies the document.
	SourcePath string

	// ContentMD5 is the content hash at index time.
	ContentMD5 string

	// ChunkCount is the number of entries written for the document.
	ChunkCount int

	// IndexedAt is when the document was last indexed.
	IndexedAt time.Time
}

// Ingest run kinds.
const (
	RunKindUpload = "upload"
	RunKindIndex  = "index"
)

// IngestRun is a historical record of one upload or index run.
type IngestRun struct {
	// ID is the run's unique id.
	ID string

	// Kind is either RunKindUpload or RunKindIndex.
	Kind string

	// StartedAt is when the run began.
	StartedAt time.Time

	// FinishedAt is when the run completed.
	FinishedAt time.Time

	// Processed is the number of items handled successfully.
	Processed int

	// Skipped is the number of items skipped as unchanged.
	Skipped int

	// Failed is the number of items that errored.
	Failed int
}
