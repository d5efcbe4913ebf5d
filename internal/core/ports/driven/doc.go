// Package driven declares the outbound ports: everything the core
// services need from infrastructure, expressed as interfaces the
// adapters implement.
//
// The pipeline cannot run without BlobStore (the corpus), HybridIndex
// (keyword + vector retrieval), ConfigStore and IngestLedger.
// EmbeddingService and LLMService are optional; without them Recall
// degrades to keyword-only retrieval and canned answers.
//
// This package may import domain and nothing else from the module.
package driven
