// Package export persists parsed sqllog entries to external stores.
package export

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/sqllog/sqllog-go/pkg/sqllog/entry"
)

// DefaultBatchSize is the number of entries written per transaction when
// the caller does not specify one.
const DefaultBatchSize = 1000

const schema = `
CREATE TABLE IF NOT EXISTS sqllog_entries (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	ts          TEXT    NOT NULL,
	ep          INTEGER NOT NULL,
	sess        TEXT    NOT NULL,
	thrd        TEXT    NOT NULL,
	user        TEXT    NOT NULL,
	trxid       TEXT    NOT NULL,
	stmt        TEXT    NOT NULL,
	appname     TEXT    NOT NULL,
	client_ip   TEXT    NOT NULL,
	body        TEXT    NOT NULL,
	exectime_ms REAL,
	rowcount    INTEGER,
	exec_id     INTEGER
);
CREATE INDEX IF NOT EXISTS ix_sqllog_entries_ts ON sqllog_entries(ts);
CREATE INDEX IF NOT EXISTS ix_sqllog_entries_sess ON sqllog_entries(sess);
`

const insertStmt = `
INSERT INTO sqllog_entries
	(ts, ep, sess, thrd, user, trxid, stmt, appname, client_ip, body,
	 exectime_ms, rowcount, exec_id)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`

// SQLiteOption configures a SQLite writer.
type SQLiteOption func(*SQLite)

// WithBatchSize sets how many entries WriteAll groups per transaction.
func WithBatchSize(n int) SQLiteOption {
	return func(s *SQLite) {
		s.batchSize = n
	}
}

// SQLite writes entries to a SQLite database. Safe for use from a single
// goroutine.
type SQLite struct {
	db        *sql.DB
	batchSize int
}

// OpenSQLite opens (creating if needed) the database at dsn and
// bootstraps the schema. Use ":memory:" for an in-memory database.
func OpenSQLite(dsn string, opts ...SQLiteOption) (*SQLite, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating sqlite schema: %w", err)
	}
	s := &SQLite{db: db, batchSize: DefaultBatchSize}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.batchSize <= 0 {
		s.batchSize = DefaultBatchSize
	}
	return s, nil
}

// WriteBatch inserts entries inside one transaction.
func (s *SQLite) WriteBatch(ctx context.Context, entries []*entry.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning sqlite transaction: %w", err)
	}
	st, err := tx.PrepareContext(ctx, insertStmt)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer func() { _ = st.Close() }()

	for _, e := range entries {
		var execTime sql.NullFloat64
		var rowCount, execID sql.NullInt64
		if e.Indicators != nil {
			execTime = sql.NullFloat64{Float64: float64(e.Indicators.ExecTimeMillis), Valid: true}
			rowCount = sql.NullInt64{Int64: int64(e.Indicators.RowCount), Valid: true}
			execID = sql.NullInt64{Int64: e.Indicators.ExecID, Valid: true}
		}
		_, err := st.ExecContext(ctx,
			e.Timestamp, e.Meta.ExecPoint, e.Meta.SessionID, e.Meta.ThreadID,
			e.Meta.Username, e.Meta.TrxID, e.Meta.StatementID, e.Meta.AppName,
			e.Meta.ClientIP, e.Body, execTime, rowCount, execID)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("inserting entry: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing sqlite transaction: %w", err)
	}
	return nil
}

// WriteAll inserts entries in batches of the configured size.
func (s *SQLite) WriteAll(ctx context.Context, entries []*entry.Entry) error {
	for len(entries) > 0 {
		n := s.batchSize
		if n > len(entries) {
			n = len(entries)
		}
		if err := s.WriteBatch(ctx, entries[:n]); err != nil {
			return err
		}
		entries = entries[n:]
	}
	return nil
}

// Count returns the number of stored entries.
func (s *SQLite) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqllog_entries").Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting entries: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
