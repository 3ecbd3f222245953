// Package repository provides data access interfaces and implementations
// for the book catalog service.
//
// # Overview
//
// This package defines repository interfaces and their PostgreSQL
// implementations following the repository pattern to abstract data
// persistence from business logic.
//
// # Repository Interfaces
//
// The package provides the following repository interfaces:
//
//   - BookRepository: Manages book persistence and title search
//   - ChapterRepository: Manages chapter persistence and per-book listing
//   - ImageRepository: Manages image metadata persistence
//
// # Thread Safety
//
// All repository implementations are safe for concurrent use by multiple
// goroutines. The underlying pgxpool handles connection pooling and
// synchronization.
//
// # Error Handling
//
// All methods return domain-specific errors from the domain package.
// Wrap database errors with context using fmt.Errorf with %w verb.
// Common errors include:
//
//   - domain.ErrNotFound: Resource does not exist
//   - domain.ErrConflict: Unique constraint violation
//   - domain.ErrInvalidInput: Invalid parameters provided
//
// # Transactions
//
// Operations that pair a page fetch with a total count (title search,
// per-book chapter listing) run both statements inside one repeatable-read
// transaction so page and count observe the same snapshot. The repository
// is the only component that begins transactions.
package repository

import (
	"github.com/jackc/pgx/v5"

	"github.com/helixir/book-catalog-service/internal/database"
)

// DBTX is the database interface supporting both pool and transaction contexts.
type DBTX = database.DBTX

// TxBeginner is a DBTX that can also start transactions. Both *database.DB
// and the pool mocks used in tests satisfy it.
type TxBeginner = database.TxBeginner

// snapshotReadOptions are the transaction options for paired page+count
// reads. Read committed is insufficient: a commit landing between the two
// statements could yield a page and a count from different states.
var snapshotReadOptions = pgx.TxOptions{
	IsoLevel:   pgx.RepeatableRead,
	AccessMode: pgx.ReadOnly,
}
