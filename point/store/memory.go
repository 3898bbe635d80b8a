// Package store provides the in-memory BalanceStore and HistoryLog
// implementations. All state lives in process-local maps and is lost
// on shutdown.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/kimdoha/point-system/point"
)

// =============================================================================
// USER POINT TABLE - balance records
// =============================================================================

// UserPointTable is the in-memory BalanceStore.
type UserPointTable struct {
	mu      sync.RWMutex
	records map[int64]point.UserPoint
}

func NewUserPointTable() *UserPointTable {
	return &UserPointTable{records: make(map[int64]point.UserPoint)}
}

// SelectByID returns the stored record. Unknown users read as an implicit
// zero-balance record stamped with the current time; nothing is written.
func (t *UserPointTable) SelectByID(_ context.Context, id int64) (point.UserPoint, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if record, ok := t.records[id]; ok {
		return record, nil
	}
	return point.UserPoint{ID: id, Point: 0, UpdateMillis: time.Now().UnixMilli()}, nil
}

// InsertOrUpdate replaces the record for id with {id, balance, now}.
func (t *UserPointTable) InsertOrUpdate(_ context.Context, id int64, balance int64) (point.UserPoint, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	record := point.UserPoint{ID: id, Point: balance, UpdateMillis: time.Now().UnixMilli()}
	t.records[id] = record
	return record, nil
}

var _ point.BalanceStore = (*UserPointTable)(nil)

// =============================================================================
// POINT HISTORY TABLE - append-only journal
// =============================================================================

// PointHistoryTable is the in-memory HistoryLog.
type PointHistoryTable struct {
	mu      sync.RWMutex
	records []point.PointHistory
	nextID  int64
}

func NewPointHistoryTable() *PointHistoryTable {
	return &PointHistoryTable{nextID: 1}
}

// Insert appends a record and assigns the next history id.
func (t *PointHistoryTable) Insert(_ context.Context, userID int64, amount int64, txType point.TransactionType, timeMillis int64) (point.PointHistory, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	record := point.PointHistory{
		ID:         t.nextID,
		UserID:     userID,
		Type:       txType,
		Amount:     amount,
		TimeMillis: timeMillis,
	}
	t.nextID++
	t.records = append(t.records, record)
	return record, nil
}

// SelectAllByUserID returns a copy of every record for the user.
func (t *PointHistoryTable) SelectAllByUserID(_ context.Context, userID int64) ([]point.PointHistory, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	result := make([]point.PointHistory, 0)
	for _, record := range t.records {
		if record.UserID == userID {
			result = append(result, record)
		}
	}
	return result, nil
}

var _ point.HistoryLog = (*PointHistoryTable)(nil)
