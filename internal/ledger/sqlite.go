package ledger

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Senpai-Sama7/Astro-sub000/internal/core"
)

var _ core.ArchiveStore = (*SQLiteArchive)(nil)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS audit_entries (
	seq        INTEGER PRIMARY KEY,
	id         TEXT NOT NULL UNIQUE,
	ts         TEXT NOT NULL,
	actor_id   TEXT NOT NULL,
	role       TEXT NOT NULL,
	action     TEXT NOT NULL,
	resource   TEXT NOT NULL DEFAULT '',
	outcome    TEXT NOT NULL,
	risk_score REAL NOT NULL,
	metadata   TEXT,
	key_id     TEXT NOT NULL,
	signature  TEXT NOT NULL
);`

// SQLiteArchive stores evicted ledger entries durably in SQLite. Rows
// are only ever inserted; there is no update or delete path.
type SQLiteArchive struct {
	db *sql.DB
}

func OpenSQLiteArchive(path string) (*SQLiteArchive, error) {
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening audit archive db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating audit archive schema: %w", err)
	}
	return &SQLiteArchive{db: db}, nil
}

func (s *SQLiteArchive) Append(ctx context.Context, entries []core.AuditEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting archive transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for _, e := range entries {
		var metadata []byte
		if len(e.Metadata) > 0 {
			if metadata, err = json.Marshal(e.Metadata); err != nil {
				return fmt.Errorf("marshaling entry metadata: %w", err)
			}
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO audit_entries
			(seq, id, ts, actor_id, role, action, resource, outcome, risk_score, metadata, key_id, signature)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
		`, e.Seq, e.ID, e.Time.UTC().Format(time.RFC3339Nano),
			e.ActorID, string(e.Role), e.Action, e.Resource, string(e.Outcome),
			e.RiskScore, metadata, e.KeyID, e.Signature)
		if err != nil {
			return fmt.Errorf("inserting archive entry '%s': %w", e.ID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteArchive) All(ctx context.Context) ([]core.AuditEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, id, ts, actor_id, role, action, resource, outcome, risk_score, metadata, key_id, signature
		FROM audit_entries ORDER BY seq
	`)
	if err != nil {
		return nil, fmt.Errorf("querying audit archive: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var entries []core.AuditEntry
	for rows.Next() {
		var (
			e        core.AuditEntry
			ts       string
			role     string
			outcome  string
			metadata []byte
		)
		if err := rows.Scan(&e.Seq, &e.ID, &ts, &e.ActorID, &role, &e.Action,
			&e.Resource, &outcome, &e.RiskScore, &metadata, &e.KeyID, &e.Signature); err != nil {
			return nil, fmt.Errorf("scanning archive entry: %w", err)
		}
		if e.Time, err = parseArchiveTime(ts); err != nil {
			return nil, err
		}
		e.Role = core.Role(role)
		e.Outcome = core.Outcome(outcome)
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &e.Metadata); err != nil {
				return nil, fmt.Errorf("unmarshaling entry metadata: %w", err)
			}
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (s *SQLiteArchive) Close() error {
	return s.db.Close()
}

func parseArchiveTime(ts string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, ts)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing archive timestamp '%s': %w", ts, err)
	}
	return t, nil
}
