// Package postgres provides PostgreSQL-specific implementations for the data
// storage interfaces defined in the internal/store package. It handles query
// execution and data mapping between domain entities and database records,
// and enforces the concurrency invariants (partial unique index on pending
// requests, compare-and-set status updates) the service layer relies on.
package postgres
