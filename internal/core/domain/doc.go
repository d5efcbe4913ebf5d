// Package domain holds Recall's core types: Document and Chunk on the
// ingestion side, IndexEntry as the persisted unit of retrieval, and
// Query/Answer as the ask contract, along with the settings types and
// sentinel errors shared across the module.
//
// Everything else imports domain; domain imports only the standard
// library. Keeping it dependency-free is what lets the services stay
// testable against plain values.
package domain
