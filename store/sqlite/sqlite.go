/*
Package sqlite provides a SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements point.BalanceStore and point.HistoryLog over database/sql.
  The default DSN is ":memory:", which keeps the service's contractual
  in-memory behavior; pointing the -db flag at a file opts into a
  persistent database with no other changes.

KEY TABLES:
  user_points:     one row per user, overwritten in place
  point_histories: append-only journal; ids from AUTOINCREMENT, so the
                   process-wide monotonic history id falls out of the schema

IMPLICIT USERS:
  SelectByID synthesizes a zero-balance record for an unknown user and
  writes nothing, matching the in-memory table.

CONCURRENCY:
  The connection pool is pinned to a single connection. An in-memory
  SQLite database is per-connection, so a pool of independent
  connections would each see an empty database. Single-writer-per-user
  discipline comes from the engine's guard, not from this layer.

USAGE:
  store, err := sqlite.New(":memory:")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := point.NewService(store, store)

SEE ALSO:
  - point/store.go: interface definitions
  - point/store/memory.go: the default in-memory implementation
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kimdoha/point-system/point"
	_ "github.com/mattn/go-sqlite3"
)

// Store implements both storage interfaces using SQLite.
type Store struct {
	db *sql.DB
}

// New creates a SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// In-memory databases exist per connection; one connection makes the
	// pool safe for both DSN kinds.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS user_points (
		id INTEGER PRIMARY KEY,
		point INTEGER NOT NULL,
		update_millis INTEGER NOT NULL
	);

	-- Append-only journal. AUTOINCREMENT guarantees history ids are
	-- strictly increasing and never reused.
	CREATE TABLE IF NOT EXISTS point_histories (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		user_id INTEGER NOT NULL,
		tx_type TEXT NOT NULL,
		amount INTEGER NOT NULL,
		time_millis INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_point_histories_user
		ON point_histories(user_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// BALANCE STORE
// =============================================================================

// SelectByID returns the stored record, or an implicit zero-balance record
// if the user has never transacted.
func (s *Store) SelectByID(ctx context.Context, id int64) (point.UserPoint, error) {
	var record point.UserPoint
	err := s.db.QueryRowContext(ctx,
		`SELECT id, point, update_millis FROM user_points WHERE id = ?`, id,
	).Scan(&record.ID, &record.Point, &record.UpdateMillis)
	if err == sql.ErrNoRows {
		return point.UserPoint{ID: id, Point: 0, UpdateMillis: time.Now().UnixMilli()}, nil
	}
	if err != nil {
		return point.UserPoint{}, fmt.Errorf("failed to select user point: %w", err)
	}
	return record, nil
}

// InsertOrUpdate replaces the record for id with {id, balance, now}.
func (s *Store) InsertOrUpdate(ctx context.Context, id int64, balance int64) (point.UserPoint, error) {
	record := point.UserPoint{ID: id, Point: balance, UpdateMillis: time.Now().UnixMilli()}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_points (id, point, update_millis) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET point = excluded.point, update_millis = excluded.update_millis`,
		record.ID, record.Point, record.UpdateMillis,
	)
	if err != nil {
		return point.UserPoint{}, fmt.Errorf("failed to upsert user point: %w", err)
	}
	return record, nil
}

// =============================================================================
// HISTORY LOG
// =============================================================================

// Insert appends a history record and returns it with its assigned id.
func (s *Store) Insert(ctx context.Context, userID int64, amount int64, txType point.TransactionType, timeMillis int64) (point.PointHistory, error) {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO point_histories (user_id, tx_type, amount, time_millis)
		VALUES (?, ?, ?, ?)`,
		userID, string(txType), amount, timeMillis,
	)
	if err != nil {
		return point.PointHistory{}, fmt.Errorf("failed to insert history: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return point.PointHistory{}, fmt.Errorf("failed to read history id: %w", err)
	}
	return point.PointHistory{
		ID:         id,
		UserID:     userID,
		Type:       txType,
		Amount:     amount,
		TimeMillis: timeMillis,
	}, nil
}

// SelectAllByUserID returns every history record for the user, unordered.
func (s *Store) SelectAllByUserID(ctx context.Context, userID int64) ([]point.PointHistory, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, tx_type, amount, time_millis
		FROM point_histories WHERE user_id = ?`, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to select histories: %w", err)
	}
	defer rows.Close()

	result := make([]point.PointHistory, 0)
	for rows.Next() {
		var record point.PointHistory
		var txType string
		if err := rows.Scan(&record.ID, &record.UserID, &txType, &record.Amount, &record.TimeMillis); err != nil {
			return nil, fmt.Errorf("failed to scan history: %w", err)
		}
		record.Type = point.TransactionType(txType)
		result = append(result, record)
	}
	return result, rows.Err()
}

var (
	_ point.BalanceStore = (*Store)(nil)
	_ point.HistoryLog   = (*Store)(nil)
)
