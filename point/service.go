/*
service.go - The ledger engine

PURPOSE:
  Orchestrates every point operation. Reads go straight to the stores;
  mutations run as a read-modify-write inside the per-user guard:

    lock(user) -> read balance -> validate -> write balance
               -> append history -> unlock

  The history row and the balance record are written inside the same
  critical section with the same timestamp, so after any successful
  mutation the history amounts for a user sum to the current balance.

VALIDATION:
  - user ids must be positive on every operation
  - charge/use amounts must be positive
  - a charge may not push the balance above MaxPoint
  - a use may not push the balance below zero
  On any validation failure nothing has been written; the transition
  aborts atomically.

ORDERING:
  Mutations for one user are linearizable in lock acquisition order.
  GetPoint and GetHistories take no lock: a reader may observe a balance
  whose history row is still being appended, but never a balance outside
  [0, MaxPoint].

SEE ALSO:
  - store.go: the two store interfaces the engine drives
  - lock.go:  the per-user guard
*/
package point

import (
	"context"
	"sort"
)

// Service is the transactional point-ledger engine.
type Service struct {
	balances BalanceStore
	history  HistoryLog
	guard    *Guard
	maxPoint int64
}

// NewService creates an engine over the given stores with the MaxPoint cap.
func NewService(balances BalanceStore, history HistoryLog) *Service {
	return &Service{
		balances: balances,
		history:  history,
		guard:    NewGuard(),
		maxPoint: MaxPoint,
	}
}

// GetPoint returns the current balance record for the user.
// Unknown users read as implicit zero-balance records.
func (s *Service) GetPoint(ctx context.Context, userID int64) (UserPoint, error) {
	if userID <= 0 {
		return UserPoint{}, ErrInvalidUserID
	}
	return s.balances.SelectByID(ctx, userID)
}

// GetHistories returns every committed transaction for the user, sorted by
// timeMillis ascending with ties broken by history id.
func (s *Service) GetHistories(ctx context.Context, userID int64) ([]PointHistory, error) {
	if userID <= 0 {
		return nil, ErrInvalidUserID
	}

	histories, err := s.history.SelectAllByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	sort.Slice(histories, func(i, j int) bool {
		if histories[i].TimeMillis != histories[j].TimeMillis {
			return histories[i].TimeMillis < histories[j].TimeMillis
		}
		return histories[i].ID < histories[j].ID
	})
	return histories, nil
}

// Charge credits amount points to the user and appends a CHARGE record.
// Fails with ErrMaxPointExceeded if the result would pass MaxPoint.
func (s *Service) Charge(ctx context.Context, userID, amount int64) (UserPoint, error) {
	if userID <= 0 {
		return UserPoint{}, ErrInvalidUserID
	}
	if amount <= 0 {
		return UserPoint{}, ErrInvalidChargeAmount
	}

	var updated UserPoint
	err := s.guard.WithUserLock(userID, func() error {
		current, err := s.balances.SelectByID(ctx, userID)
		if err != nil {
			return err
		}
		// Headroom compare: current.Point is in [0, maxPoint], so the
		// subtraction cannot overflow; current.Point+amount can.
		if amount > s.maxPoint-current.Point {
			return &MaxPointExceededError{UserID: userID, Balance: current.Point, Requested: amount}
		}

		updated, err = s.balances.InsertOrUpdate(ctx, userID, current.Point+amount)
		if err != nil {
			return err
		}
		_, err = s.history.Insert(ctx, userID, amount, TxCharge, updated.UpdateMillis)
		return err
	})
	if err != nil {
		return UserPoint{}, err
	}
	return updated, nil
}

// Use debits amount points from the user and appends a USE record.
// Fails with ErrInsufficientPoint if the balance is too low.
func (s *Service) Use(ctx context.Context, userID, amount int64) (UserPoint, error) {
	if userID <= 0 {
		return UserPoint{}, ErrInvalidUserID
	}
	if amount <= 0 {
		return UserPoint{}, ErrInvalidUseAmount
	}

	var updated UserPoint
	err := s.guard.WithUserLock(userID, func() error {
		current, err := s.balances.SelectByID(ctx, userID)
		if err != nil {
			return err
		}
		if current.Point < amount {
			return &InsufficientPointError{UserID: userID, Balance: current.Point, Requested: amount}
		}

		updated, err = s.balances.InsertOrUpdate(ctx, userID, current.Point-amount)
		if err != nil {
			return err
		}
		_, err = s.history.Insert(ctx, userID, -amount, TxUse, updated.UpdateMillis)
		return err
	})
	if err != nil {
		return UserPoint{}, err
	}
	return updated, nil
}
