package history

import (
	"database/sql"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"github.com/unkn0wn-root/tinyscript/internal/errdef"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS history (
	id          TEXT PRIMARY KEY,
	session     TEXT NOT NULL,
	executed_at INTEGER NOT NULL,
	mode        TEXT NOT NULL,
	file_path   TEXT NOT NULL,
	source      TEXT NOT NULL,
	output      TEXT NOT NULL,
	status      TEXT NOT NULL,
	exit_code   INTEGER NOT NULL,
	error       TEXT NOT NULL,
	duration    INTEGER NOT NULL,
	steps       INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS history_session ON history(session);
CREATE INDEX IF NOT EXISTS history_file ON history(file_path);
`

const sqliteColumns = `id, session, executed_at, mode, file_path, source, output,
	status, exit_code, error, duration, steps`

// SQLiteStore keeps history in a SQLite database, pruned to maxEntries on
// every append.
type SQLiteStore struct {
	db         *sql.DB
	maxEntries int
	mu         sync.Mutex
	ready      bool
}

func OpenSQLite(path string, maxEntries int) (*SQLiteStore, error) {
	if maxEntries <= 0 {
		maxEntries = 200
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, errdef.Wrap(errdef.CodeFilesystem, err, "create history dir")
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errdef.Wrap(errdef.CodeHistory, err, "open history db")
	}
	db.SetMaxOpenConns(1)
	return &SQLiteStore{db: db, maxEntries: maxEntries}, nil
}

func (s *SQLiteStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ensureSchemaLocked()
}

func (s *SQLiteStore) ensureSchemaLocked() error {
	if s.ready {
		return nil
	}
	if _, err := s.db.Exec(sqliteSchema); err != nil {
		return errdef.Wrap(errdef.CodeHistory, err, "create history schema")
	}
	s.ready = true
	return nil
}

func (s *SQLiteStore) Append(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureSchemaLocked(); err != nil {
		return err
	}
	entry = prepare(entry)

	tx, err := s.db.Begin()
	if err != nil {
		return errdef.Wrap(errdef.CodeHistory, err, "begin history tx")
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(
		`INSERT OR REPLACE INTO history (`+sqliteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Session,
		entry.ExecutedAt.UnixNano(),
		entry.Mode,
		entry.FilePath,
		entry.Source,
		entry.Output,
		entry.Status,
		entry.ExitCode,
		entry.Error,
		int64(entry.Duration),
		entry.Steps,
	)
	if err != nil {
		return errdef.Wrap(errdef.CodeHistory, err, "insert history entry")
	}

	_, err = tx.Exec(
		`DELETE FROM history WHERE id NOT IN (
			SELECT id FROM history ORDER BY executed_at DESC, id DESC LIMIT ?
		)`,
		s.maxEntries,
	)
	if err != nil {
		return errdef.Wrap(errdef.CodeHistory, err, "prune history")
	}
	if err := tx.Commit(); err != nil {
		return errdef.Wrap(errdef.CodeHistory, err, "commit history")
	}
	return nil
}

func (s *SQLiteStore) Entries() []Entry {
	return s.query(`SELECT ` + sqliteColumns + ` FROM history ORDER BY executed_at DESC, id DESC`)
}

func (s *SQLiteStore) BySession(id string) []Entry {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	return s.query(
		`SELECT `+sqliteColumns+` FROM history WHERE session = ? ORDER BY executed_at DESC, id DESC`,
		id,
	)
}

func (s *SQLiteStore) ByFile(path string) []Entry {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil
	}
	return s.query(
		`SELECT `+sqliteColumns+` FROM history WHERE file_path = ? ORDER BY executed_at DESC, id DESC`,
		filepath.Clean(trimmed),
	)
}

func (s *SQLiteStore) Delete(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureSchemaLocked(); err != nil {
		return false, err
	}
	res, err := s.db.Exec(`DELETE FROM history WHERE id = ?`, id)
	if err != nil {
		return false, errdef.Wrap(errdef.CodeHistory, err, "delete history entry")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, errdef.Wrap(errdef.CodeHistory, err, "delete history entry")
	}
	return n > 0, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// query returns the rows it could read; errors yield a short or empty result.
func (s *SQLiteStore) query(q string, args ...any) []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ensureSchemaLocked(); err != nil {
		return nil
	}
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e        Entry
			executed int64
			duration int64
		)
		if err := rows.Scan(
			&e.ID,
			&e.Session,
			&executed,
			&e.Mode,
			&e.FilePath,
			&e.Source,
			&e.Output,
			&e.Status,
			&e.ExitCode,
			&e.Error,
			&duration,
			&e.Steps,
		); err != nil {
			return out
		}
		e.ExecutedAt = time.Unix(0, executed)
		e.Duration = time.Duration(duration)
		out = append(out, e)
	}
	return out
}
