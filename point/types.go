/*
types.go - Core domain types for the point ledger

PURPOSE:
  Defines the two entities the service is built around:
  - UserPoint:    the current balance record for a user
  - PointHistory: one committed charge/use transaction

BALANCE MODEL:
  Balances are plain int64 point counts, always in [0, MaxPoint].
  There is no fractional arithmetic anywhere in the system.

TIMESTAMPS:
  All timestamps are wall-clock milliseconds (UnixMilli). The history
  row written by a mutation carries the same timestamp as the balance
  record it produced; the two are committed inside one critical section.

IMPLICIT USERS:
  A user that has never transacted is represented by an implicit
  zero-balance record. Nothing is ever written for a pure read.

SEE ALSO:
  - store.go:   persistence interfaces over these types
  - service.go: the ledger engine enforcing the balance invariants
*/
package point

// MaxPoint is the upper bound on any user's balance.
// A charge that would push the balance past it is rejected.
const MaxPoint int64 = 1_000_000

// TransactionType classifies a history record.
type TransactionType string

const (
	// TxCharge credits points. History amount is positive.
	TxCharge TransactionType = "CHARGE"
	// TxUse debits points. History amount is negative.
	TxUse TransactionType = "USE"
)

// UserPoint is the current balance record for a user.
type UserPoint struct {
	ID           int64 `json:"id"`
	Point        int64 `json:"point"`
	UpdateMillis int64 `json:"updateMillis"`
}

// PointHistory is one committed transaction.
// Amount is signed: positive for CHARGE, negative for USE; its absolute
// value equals the requested transaction amount.
type PointHistory struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"userId"`
	Type       TransactionType `json:"type"`
	Amount     int64           `json:"amount"`
	TimeMillis int64           `json:"timeMillis"`
}
