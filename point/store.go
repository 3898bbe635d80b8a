/*
store.go - Persistence interfaces for balances and history

PURPOSE:
  Defines the boundary between the ledger engine and storage. Two
  narrow interfaces, one per table:

  BalanceStore: point lookup + unconditional overwrite of the balance row
  HistoryLog:   append-only journal of committed transactions

CONTRACT:
  - SelectByID never fails for an unknown user: it returns an implicit
    zero-balance record stamped with the current time and writes nothing.
  - InsertOrUpdate takes the NEW BALANCE, not a delta, and stamps the
    record with the current time. Validation of the new balance is the
    engine's job, not the store's.
  - HistoryLog.Insert assigns history ids from a process-wide monotonic
    counter starting at 1.
  - SelectAllByUserID returns records in unspecified order; readers that
    need ordering sort for themselves.

THREAD SAFETY:
  Implementations must tolerate concurrent calls for different users.
  Single-writer-per-user discipline is provided above this layer by the
  concurrency guard, so stores need no per-user coordination of their own.

IMPLEMENTATIONS:
  - point/store/memory.go: process-local maps (the default)
  - store/sqlite/sqlite.go: database/sql + sqlite3 alternate backend
*/
package point

import "context"

// BalanceStore holds the current balance record per user.
type BalanceStore interface {
	// SelectByID returns the stored record, or an implicit zero-balance
	// record if the user has never transacted.
	SelectByID(ctx context.Context, id int64) (UserPoint, error)

	// InsertOrUpdate replaces the record for id with {id, balance, now}
	// and returns the written record.
	InsertOrUpdate(ctx context.Context, id int64, balance int64) (UserPoint, error)
}

// HistoryLog is the append-only journal of committed transactions.
type HistoryLog interface {
	// Insert appends a record, assigns the next history id, returns it.
	Insert(ctx context.Context, userID int64, amount int64, txType TransactionType, timeMillis int64) (PointHistory, error)

	// SelectAllByUserID returns every record for the user, unordered.
	SelectAllByUserID(ctx context.Context, userID int64) ([]PointHistory, error)
}
