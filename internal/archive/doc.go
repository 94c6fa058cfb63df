// Package archive provides SQLite-backed durable storage for sample stores.
//
// An archive holds two tables:
//   - batches: one row per SaveSamples call, identified by a UUIDv7
//   - traces: one row per parameter, first write wins
//
// # Ordering
//
// All ordering uses seq INTEGER (a logical clock), never timestamps.
// Reads are ORDER BY seq ASC, name ASC COLLATE BINARY so a restored store
// has the same name order as the store that was saved.
//
// # Integrity
//
// Every trace row carries trace.Digest of its name, shape and data.
// LoadSamples recomputes the digest and refuses rows that do not match.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package archive
