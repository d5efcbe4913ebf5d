// Package services contains the core business logic, implementing the
// driving ports defined in ports/driving.
//
// Services orchestrate the question-answering pipeline using the driven
// ports (storage, embedding, generation, index) without knowing their
// concrete implementations:
//
//   - Ask composes retrieval and synthesis into the single externally
//     observable operation
//   - Retrieval embeds a question and runs one combined keyword + vector
//     search against the hybrid index
//   - Synthesis turns retrieved chunks into a grounded answer with source
//     attribution
//   - Ingest uploads vault notes to the corpus store and builds the index
//     with a bounded worker pool and batched idempotent upserts
//   - SettingsService reads and writes application configuration
package services
