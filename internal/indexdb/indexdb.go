package indexdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// SchemaVersion tracks the current index schema version.
// Bump this when adding migrations.
const SchemaVersion = 1

// Store wraps the SQLite session index. Opened by path; the schema is
// created on first open. Writes are plain autocommit statements, so a
// crash between a session upsert and its prompt rewrite can leave that
// session's prompts empty until the next build repairs it.
type Store struct {
	db *sql.DB
}

// SessionRecord is one indexed session file.
type SessionRecord struct {
	SessionID    string
	ProjectPath  string
	DirName      string
	GitBranch    string
	Summary      string
	FirstPrompt  string
	MessageCount int64
	CreatedAt    string
	ModifiedAt   string
	FileMtime    int64
}

// PromptRecord is one extracted user prompt. Timestamp is the raw
// RFC 3339 string from the log line, "" when the line had none.
type PromptRecord struct {
	Prompt    string
	Timestamp string
}

// SearchableSession is the in-memory search view of one session: its
// identity fields plus the extracted prompts in log order.
type SearchableSession struct {
	SessionID   string
	ProjectPath string
	DirName     string
	GitBranch   string
	Summary     string
	CreatedAt   string
	Prompts     []string
}

// Open creates or opens the index database at dbPath with WAL mode and
// a busy timeout, creating the parent directory and the schema as
// needed. Opening an existing index is idempotent.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0700); err != nil {
		return nil, fmt.Errorf("indexdb: mkdir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("indexdb: open: %w", err)
	}

	// WAL mode: a search can read while a build is writing
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("indexdb: wal mode: %w", err)
	}

	// Busy timeout: wait up to 5s if another process holds a lock
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("indexdb: busy timeout: %w", err)
	}

	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("indexdb: foreign keys: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close checkpoints WAL and closes the database.
func (s *Store) Close() error {
	_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
	return s.db.Close()
}

// DB returns the underlying sql.DB for advanced use cases (e.g., testing).
func (s *Store) DB() *sql.DB {
	return s.db
}

// migrate creates tables if they don't exist.
func (s *Store) migrate() error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("indexdb: begin migrate: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS metadata (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		)
	`); err != nil {
		return fmt.Errorf("indexdb: create metadata: %w", err)
	}

	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS sessions (
			session_id    TEXT PRIMARY KEY,
			project_path  TEXT NOT NULL,
			dir_name      TEXT NOT NULL,
			git_branch    TEXT DEFAULT '',
			summary       TEXT DEFAULT '',
			first_prompt  TEXT DEFAULT '',
			message_count INTEGER DEFAULT 0,
			created_at    TEXT DEFAULT '',
			modified_at   TEXT DEFAULT '',
			file_mtime    INTEGER DEFAULT 0
		)
	`); err != nil {
		return fmt.Errorf("indexdb: create sessions: %w", err)
	}

	if _, err := tx.Exec(`
		CREATE TABLE IF NOT EXISTS user_prompts (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			session_id TEXT NOT NULL REFERENCES sessions(session_id),
			prompt     TEXT NOT NULL,
			timestamp  TEXT,
			UNIQUE(session_id, prompt, timestamp)
		)
	`); err != nil {
		return fmt.Errorf("indexdb: create user_prompts: %w", err)
	}

	if _, err := tx.Exec(`
		INSERT OR REPLACE INTO metadata (key, value) VALUES ('schema_version', ?)
	`, fmt.Sprintf("%d", SchemaVersion)); err != nil {
		return fmt.Errorf("indexdb: set schema version: %w", err)
	}

	return tx.Commit()
}

// UpsertSession inserts or updates a session row. On conflict every
// non-key field is overwritten; there is no partial merge.
func (s *Store) UpsertSession(rec *SessionRecord) error {
	_, err := s.db.Exec(`
		INSERT INTO sessions (
			session_id, project_path, dir_name, git_branch, summary,
			first_prompt, message_count, created_at, modified_at, file_mtime
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(session_id) DO UPDATE SET
			project_path  = excluded.project_path,
			dir_name      = excluded.dir_name,
			git_branch    = excluded.git_branch,
			summary       = excluded.summary,
			first_prompt  = excluded.first_prompt,
			message_count = excluded.message_count,
			created_at    = excluded.created_at,
			modified_at   = excluded.modified_at,
			file_mtime    = excluded.file_mtime
	`,
		rec.SessionID, rec.ProjectPath, rec.DirName, rec.GitBranch, rec.Summary,
		rec.FirstPrompt, rec.MessageCount, rec.CreatedAt, rec.ModifiedAt, rec.FileMtime,
	)
	return err
}

// ReplacePrompts rewrites a session's prompt rows: delete, then insert
// in log order. Deliberately not wrapped in a transaction (see Store
// doc). The unique constraint drops duplicate (prompt, timestamp)
// pairs; prompts without a timestamp are stored as NULL and so never
// collide with each other.
func (s *Store) ReplacePrompts(sessionID string, prompts []PromptRecord) error {
	if _, err := s.db.Exec("DELETE FROM user_prompts WHERE session_id = ?", sessionID); err != nil {
		return err
	}

	stmt, err := s.db.Prepare(`
		INSERT OR IGNORE INTO user_prompts (session_id, prompt, timestamp)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range prompts {
		var ts any
		if p.Timestamp != "" {
			ts = p.Timestamp
		}
		if _, err := stmt.Exec(sessionID, p.Prompt, ts); err != nil {
			return err
		}
	}
	return nil
}

// GetFileMtime returns the stored mtime for a session and whether the
// session is known at all.
func (s *Store) GetFileMtime(sessionID string) (int64, bool, error) {
	var mtime int64
	err := s.db.QueryRow(
		"SELECT file_mtime FROM sessions WHERE session_id = ?", sessionID,
	).Scan(&mtime)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return mtime, true, nil
}

// SearchAll loads every indexed session with its prompts, newest
// sessions first, prompts in insertion order.
func (s *Store) SearchAll() ([]SearchableSession, error) {
	rows, err := s.db.Query(`
		SELECT session_id, project_path, dir_name, git_branch, summary, created_at
		FROM sessions ORDER BY created_at DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []SearchableSession
	for rows.Next() {
		var sess SearchableSession
		if err := rows.Scan(
			&sess.SessionID, &sess.ProjectPath, &sess.DirName,
			&sess.GitBranch, &sess.Summary, &sess.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, sess)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	stmt, err := s.db.Prepare(
		"SELECT prompt FROM user_prompts WHERE session_id = ? ORDER BY id",
	)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	for i := range result {
		prompts, err := queryPrompts(stmt, result[i].SessionID)
		if err != nil {
			return nil, err
		}
		result[i].Prompts = prompts
	}
	return result, nil
}

func queryPrompts(stmt *sql.Stmt, sessionID string) ([]string, error) {
	rows, err := stmt.Query(sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var prompts []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		prompts = append(prompts, p)
	}
	return prompts, rows.Err()
}

// AllSessionIDs returns the IDs of every indexed session.
func (s *Store) AllSessionIDs() ([]string, error) {
	rows, err := s.db.Query("SELECT session_id FROM sessions")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// SessionCount returns the number of indexed sessions.
func (s *Store) SessionCount() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM sessions").Scan(&count)
	return count, err
}

// SetMeta sets a key-value pair in the metadata table.
func (s *Store) SetMeta(key, value string) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO metadata (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta gets a value from the metadata table. Returns "" if not found.
func (s *Store) GetMeta(key string) (string, error) {
	var value string
	err := s.db.QueryRow("SELECT value FROM metadata WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	return value, err
}
