package mapping

import (
	"database/sql"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/arthrod/refaudit/internal/symbol"
)

const createEntriesTable = `
CREATE TABLE IF NOT EXISTS mapping_entries (
	position    INTEGER PRIMARY KEY,
	symbol_name TEXT NOT NULL UNIQUE,
	file_path   TEXT,
	line        INTEGER
)`

const createMetaTable = `
CREATE TABLE IF NOT EXISTS mapping_meta (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// RunInfo describes the run that last wrote a SQLite mapping artifact.
type RunInfo struct {
	RunID     string
	CreatedAt time.Time
	Found     int
	NotFound  int
	// Branch and Commit identify the audited tree when recorded.
	Branch string
	Commit string
}

// CreateSchema creates the mapping tables if they do not exist.
func CreateSchema(db *sql.DB) error {
	for _, ddl := range []string{createEntriesTable, createMetaTable} {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("failed to create mapping schema: %w", err)
		}
	}
	return nil
}

func openSQLite(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open mapping database: %w", err)
	}
	if err := CreateSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func persistSQLite(path string, store *Store) error {
	db, err := openSQLite(path)
	if err != nil {
		return err
	}
	defer db.Close()

	return WriteStore(db, store)
}

// WriteStore replaces the database contents with store in one transaction.
// Found entries take positions before not-found ones; each list keeps its order.
func WriteStore(db *sql.DB, store *Store) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Safe to call even after commit

	for _, table := range []string{"mapping_entries", "mapping_meta"} {
		if _, err := sq.Delete(table).RunWith(tx).Exec(); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	insertSQL, _, err := sq.Insert("mapping_entries").
		Columns("position", "symbol_name", "file_path", "line").
		Values(0, "", nil, nil).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build SQL: %w", err)
	}

	stmt, err := tx.Prepare(insertSQL)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	position := 0
	for _, e := range store.Found {
		if _, err := stmt.Exec(position, e.Name, e.Location.File, e.Location.Line); err != nil {
			return fmt.Errorf("failed to insert %s: %w", e.Name, err)
		}
		position++
	}
	for _, name := range store.NotFound {
		if _, err := stmt.Exec(position, name, nil, nil); err != nil {
			return fmt.Errorf("failed to insert %s: %w", name, err)
		}
		position++
	}

	meta := sq.Insert("mapping_meta").
		Columns("key", "value").
		Values("run_id", uuid.New().String()).
		Values("created_at", time.Now().UTC().Format(time.RFC3339))
	if _, err := meta.RunWith(tx).Exec(); err != nil {
		return fmt.Errorf("failed to write mapping metadata: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit mapping: %w", err)
	}
	return nil
}

// RecordRevision stores the branch and commit of the audited tree in the
// metadata of the SQLite artifact at path. Persist clears it.
func RecordRevision(path, branch, commit string) error {
	if format, err := FormatFor(path); err != nil || format != FormatSQLite {
		return fmt.Errorf("%w: revision requires a SQLite artifact", ErrUnsupportedFormat)
	}

	db, err := openSQLite(path)
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = sq.Insert("mapping_meta").
		Columns("key", "value").
		Values("git_branch", branch).
		Values("git_commit", commit).
		Suffix("ON CONFLICT(key) DO UPDATE SET value = excluded.value").
		RunWith(db).
		Exec()
	if err != nil {
		return fmt.Errorf("failed to record revision: %w", err)
	}
	return nil
}

func loadSQLite(path string) (*Store, error) {
	db, err := openSQLite(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	return ReadStore(db)
}

// ReadStore loads every entry in position order.
func ReadStore(db *sql.DB) (*Store, error) {
	rows, err := sq.Select("symbol_name", "file_path", "line").
		From("mapping_entries").
		OrderBy("position").
		RunWith(db).
		Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query mapping: %w", err)
	}
	defer rows.Close()

	store := NewStore()
	for rows.Next() {
		var (
			name string
			file sql.NullString
			line sql.NullInt64
		)
		if err := rows.Scan(&name, &file, &line); err != nil {
			return nil, fmt.Errorf("failed to scan mapping row: %w", err)
		}
		if file.Valid {
			store.Found = append(store.Found, Entry{
				Name:     name,
				Location: symbol.Location{File: file.String, Line: int(line.Int64)},
			})
		} else {
			store.NotFound = append(store.NotFound, name)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read mapping rows: %w", err)
	}

	return store, nil
}

// ReadRunInfo reports which run produced the SQLite artifact at path.
func ReadRunInfo(path string) (*RunInfo, error) {
	if format, err := FormatFor(path); err != nil || format != FormatSQLite {
		return nil, fmt.Errorf("%w: run info requires a SQLite artifact", ErrUnsupportedFormat)
	}

	store, err := Load(path)
	if err != nil {
		return nil, err
	}

	db, err := openSQLite(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := sq.Select("key", "value").From("mapping_meta").RunWith(db).Query()
	if err != nil {
		return nil, fmt.Errorf("failed to query mapping metadata: %w", err)
	}
	defer rows.Close()

	info := &RunInfo{Found: len(store.Found), NotFound: len(store.NotFound)}
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan mapping metadata: %w", err)
		}
		switch key {
		case "run_id":
			info.RunID = value
		case "created_at":
			if ts, err := time.Parse(time.RFC3339, value); err == nil {
				info.CreatedAt = ts
			}
		case "git_branch":
			info.Branch = value
		case "git_commit":
			info.Commit = value
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read mapping metadata: %w", err)
	}

	return info, nil
}
