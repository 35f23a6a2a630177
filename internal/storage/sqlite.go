package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"chaintrail/internal/audit"
	"chaintrail/internal/database"
)

// SQLite is the durable store backed by a local SQLite database. Entries
// survive process restarts; the chain tip is recovered from the last row on
// reload. Each append is a single INSERT, so an acknowledged append is
// durably recorded.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite creates or opens the audit database at the default path.
func OpenSQLite() (*SQLite, error) {
	path, err := database.DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}
	return OpenSQLiteAt(path)
}

// OpenSQLiteAt creates or opens a SQLite database at the given path.
func OpenSQLiteAt(path string) (*SQLite, error) {
	db, err := database.Open(path)
	if err != nil {
		return nil, fmt.Errorf("storage: %w", err)
	}

	s := &SQLite{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLite) migrate() error {
	const ddl = `
        CREATE TABLE IF NOT EXISTS audit_log (
            id             INTEGER PRIMARY KEY AUTOINCREMENT,
            event_id       TEXT    UNIQUE NOT NULL,
            event_type     TEXT    NOT NULL,
            timestamp      TEXT    NOT NULL,
            actor          TEXT    NOT NULL,
            actor_type     TEXT    NOT NULL,
            action         TEXT    NOT NULL,
            resource       TEXT    NOT NULL DEFAULT '',
            outcome        TEXT    NOT NULL,
            input_summary  TEXT    NOT NULL DEFAULT '',
            output_summary TEXT    NOT NULL DEFAULT '',
            metadata       TEXT    NOT NULL DEFAULT '{}',
            previous_hash  TEXT    NOT NULL,
            entry_hash     TEXT    NOT NULL
        );
        CREATE INDEX IF NOT EXISTS idx_audit_log_timestamp ON audit_log(timestamp);
        CREATE INDEX IF NOT EXISTS idx_audit_log_actor ON audit_log(actor);
        CREATE INDEX IF NOT EXISTS idx_audit_log_event_type ON audit_log(event_type);
    `
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("storage: migration failed: %w", err)
	}
	return nil
}

const entryColumns = `event_id, event_type, timestamp, actor, actor_type, action, resource,
               outcome, input_summary, output_summary, metadata, previous_hash, entry_hash`

// Append durably inserts a new entry. The id column records the append
// sequence position.
func (s *SQLite) Append(entry *audit.Entry) error {
	meta, err := json.Marshal(entry.Metadata)
	if err != nil {
		return fmt.Errorf("storage: failed to marshal metadata: %w", err)
	}

	_, err = s.db.Exec(`
        INSERT INTO audit_log (`+entryColumns+`)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.EventID, string(entry.EventType), entry.Timestamp.UTC().Format(time.RFC3339Nano),
		entry.Actor, entry.ActorType, entry.Action, entry.Resource,
		entry.Outcome, entry.InputSummary, entry.OutputSummary, string(meta),
		entry.PreviousHash, entry.EntryHash,
	)
	if err != nil {
		return fmt.Errorf("storage: insert failed: %w", err)
	}
	return nil
}

// ReadAll returns every entry in append order.
func (s *SQLite) ReadAll() ([]audit.Entry, error) {
	rows, err := s.db.Query(`SELECT ` + entryColumns + ` FROM audit_log ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("storage: query failed: %w", err)
	}
	defer rows.Close()
	return scanRows(rows)
}

// Query returns entries matching the filter in append order. Filters are
// pushed into SQL so the timestamp/actor/event_type indexes avoid a full
// scan; a limit keeps the most recent matches.
func (s *SQLite) Query(f audit.Filter) ([]audit.Entry, error) {
	var conds []string
	var args []any

	if f.Type != "" {
		conds = append(conds, "event_type = ?")
		args = append(args, string(f.Type))
	}
	if f.Actor != "" {
		conds = append(conds, "actor = ?")
		args = append(args, f.Actor)
	}
	if !f.Since.IsZero() {
		conds = append(conds, "timestamp >= ?")
		args = append(args, f.Since.UTC().Format(time.RFC3339Nano))
	}

	query := `SELECT ` + entryColumns + ` FROM audit_log`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}

	if f.Limit > 0 {
		query += " ORDER BY id DESC LIMIT ?"
		args = append(args, f.Limit)
	} else {
		query += " ORDER BY id"
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("storage: query failed: %w", err)
	}
	defer rows.Close()

	entries, err := scanRows(rows)
	if err != nil {
		return nil, err
	}

	// Descending reads must be flipped back into append order.
	if f.Limit > 0 {
		for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
			entries[i], entries[j] = entries[j], entries[i]
		}
	}
	return entries, nil
}

// LastHash returns the entry_hash of the last appended row, or "" when the
// table is empty. This is how the chain tip is recovered on reload.
func (s *SQLite) LastHash() (string, error) {
	var hash string
	err := s.db.QueryRow(`SELECT entry_hash FROM audit_log ORDER BY id DESC LIMIT 1`).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("storage: query failed: %w", err)
	}
	return hash, nil
}

// Len returns the number of stored entries.
func (s *SQLite) Len() (int, error) {
	var n int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM audit_log`).Scan(&n); err != nil {
		return 0, fmt.Errorf("storage: count failed: %w", err)
	}
	return n, nil
}

// Close releases database resources.
func (s *SQLite) Close() error {
	return s.db.Close()
}

func scanRows(rows *sql.Rows) ([]audit.Entry, error) {
	var entries []audit.Entry
	for rows.Next() {
		var entry audit.Entry
		var eventType, timestampStr, metaStr string
		err := rows.Scan(
			&entry.EventID, &eventType, &timestampStr, &entry.Actor, &entry.ActorType,
			&entry.Action, &entry.Resource, &entry.Outcome,
			&entry.InputSummary, &entry.OutputSummary, &metaStr,
			&entry.PreviousHash, &entry.EntryHash,
		)
		if err != nil {
			return nil, fmt.Errorf("storage: scan failed: %w", err)
		}

		entry.EventType = audit.EventType(eventType)
		entry.Timestamp, err = time.Parse(time.RFC3339Nano, timestampStr)
		if err != nil {
			return nil, fmt.Errorf("storage: invalid timestamp %q: %w", timestampStr, err)
		}
		if err := json.Unmarshal([]byte(metaStr), &entry.Metadata); err != nil {
			return nil, fmt.Errorf("storage: invalid metadata: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}
