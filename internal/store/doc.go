// Package store holds the sample store: the owned mapping from parameter name
// to trace that every diagnostic reads from.
//
// A Samples value is created empty by the caller and populated either in bulk
// from parsed tables (Ingest) or incrementally while a sampler runs (Record).
// Names are unique and the first write wins: ingesting a table for a name that
// is already present is a silent no-op, so re-running an ingestion is
// idempotent.
//
// Readers never see live storage. Get returns an independent copy, so a caller
// mutating its trace cannot corrupt what another caller observes.
//
// There is no locking. The surrounding program is the single writer while
// ingesting or recording and every component only reads afterwards.
package store
