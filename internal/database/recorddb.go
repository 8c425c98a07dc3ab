package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/etymscan/etymscan/internal/record"
	"github.com/etymscan/etymscan/internal/validator"
)

// RecordDB provides SQLite-based storage for crawled records.
//
// Design decision: We use a single database file per crawl job rather
// than one per page. This keeps fingerprint lookups and cross-page
// queries in one place and simplifies backup/restore.
type RecordDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures RecordDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// read performance.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a RecordDB in the specified directory.
// If CreateIfNotExists is false and the database doesn't exist, an
// error is returned.
func Open(dbDir string, opts Options) (*RecordDB, error) {
	dbPath := filepath.Join(dbDir, "etymscan.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite takes the access mode in the DSN: rw refuses
	// to create a missing file, rwc creates it.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &RecordDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Close closes the database connection.
func (rdb *RecordDB) Close() error {
	return rdb.db.Close()
}

// Path returns the database file location.
func (rdb *RecordDB) Path() string { return rdb.dbPath }

// createTables creates the database schema if it doesn't exist.
func (rdb *RecordDB) createTables() error {
	schema := `
	-- Records store the crawled tree flat, one row per record.
	CREATE TABLE IF NOT EXISTS records (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		parent_id INTEGER REFERENCES records(id),
		page INTEGER NOT NULL DEFAULT 0,
		ordinal INTEGER NOT NULL DEFAULT 0,
		depth INTEGER NOT NULL DEFAULT 0,
		url TEXT NOT NULL,
		fingerprint TEXT,
		duplicate INTEGER NOT NULL DEFAULT 0,
		fields TEXT NOT NULL,
		created DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_records_fingerprint ON records(fingerprint);
	CREATE INDEX IF NOT EXISTS idx_records_parent ON records(parent_id);
	CREATE INDEX IF NOT EXISTS idx_records_page ON records(page);
	`

	_, err := rdb.db.Exec(schema)
	return err
}

// SaveDocument persists the document's tree, replacing only the rows of
// the listing pages present in it. The crawler saves after every page
// with the document accumulated this run; a resumed run's document
// holds only the new pages, so rows persisted by earlier runs must
// survive. Re-saving a page already stored this run replaces its rows,
// which keeps per-page saves idempotent.
func (rdb *RecordDB) SaveDocument(ctx context.Context, doc *record.Document) error {
	if len(doc.Records) == 0 {
		return nil
	}

	tx, err := rdb.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Every record carries the listing page it was reached from, so one
	// delete per page set clears whole subtrees.
	pages := make(map[int]bool)
	var collect func(records []*record.Record)
	collect = func(records []*record.Record) {
		for _, r := range records {
			pages[r.Page] = true
			collect(r.Children)
		}
	}
	collect(doc.Records)
	placeholders := make([]string, 0, len(pages))
	args := make([]any, 0, len(pages))
	for page := range pages {
		placeholders = append(placeholders, "?")
		args = append(args, page)
	}
	clear := "DELETE FROM records WHERE page IN (" + strings.Join(placeholders, ",") + ")"
	if _, err := tx.ExecContext(ctx, clear, args...); err != nil {
		return fmt.Errorf("failed to clear page records: %w", err)
	}

	var insert func(records []*record.Record, parent *int64) error
	insert = func(records []*record.Record, parent *int64) error {
		for _, r := range records {
			fields, err := json.Marshal(r.Fields)
			if err != nil {
				return fmt.Errorf("failed to encode fields: %w", err)
			}

			var parentID any
			if parent != nil {
				parentID = *parent
			}

			res, err := tx.ExecContext(ctx, `
				INSERT INTO records (parent_id, page, ordinal, depth, url, fingerprint, duplicate, fields)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
				parentID, r.Page, r.Ordinal, r.Depth, r.URL, r.Fingerprint, r.Duplicate, string(fields))
			if err != nil {
				return fmt.Errorf("failed to insert record: %w", err)
			}

			id, err := res.LastInsertId()
			if err != nil {
				return fmt.Errorf("failed to read inserted id: %w", err)
			}
			if err := insert(r.Children, &id); err != nil {
				return err
			}
		}
		return nil
	}

	if err := insert(doc.Records, nil); err != nil {
		return err
	}
	return tx.Commit()
}

// StoredRecord is one row of the records table.
type StoredRecord struct {
	ID          int64
	ParentID    *int64
	Page        int
	Ordinal     int
	Depth       int
	URL         string
	Fingerprint string
	Duplicate   bool
	Fields      []record.Field
}

// CountRecords returns the number of stored records.
func (rdb *RecordDB) CountRecords(ctx context.Context) (int, error) {
	var count int
	err := rdb.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return count, nil
}

// GetByFingerprint retrieves the first stored record with the given
// fingerprint, or nil when none exists.
func (rdb *RecordDB) GetByFingerprint(ctx context.Context, fingerprint string) (*StoredRecord, error) {
	row := rdb.db.QueryRowContext(ctx, `
		SELECT id, parent_id, page, ordinal, depth, url, fingerprint, duplicate, fields
		FROM records WHERE fingerprint = ? ORDER BY id LIMIT 1`, fingerprint)

	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query record: %w", err)
	}
	return rec, nil
}

// Queries derives validation input from the stored root records: one
// query per non-duplicate root that carries a usable headword.
//
// Field vocabulary varies per source, so the mapping is by convention:
// the first headword-like field becomes the headword, a "number in ..."
// field becomes the external key.
func (rdb *RecordDB) Queries(ctx context.Context) ([]validator.Query, error) {
	rows, err := rdb.db.QueryContext(ctx, `
		SELECT id, parent_id, page, ordinal, depth, url, fingerprint, duplicate, fields
		FROM records WHERE parent_id IS NULL AND duplicate = 0 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query roots: %w", err)
	}
	defer rows.Close()

	var queries []validator.Query
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}

		q := validator.Query{LocalID: strconv.FormatInt(rec.ID, 10)}
		for _, f := range rec.Fields {
			name := strings.ToLower(strings.TrimSpace(f.Name))
			switch {
			case q.Headword == "" && headwordFields[name]:
				q.Headword = f.Value
			case q.Language == "" && name == "language":
				q.Language = f.Value
			case q.ExternalKey == "" && strings.HasPrefix(name, "number in"):
				q.ExternalKey = f.Value
			}
		}
		if q.Headword == "" {
			continue
		}
		queries = append(queries, q)
	}
	return queries, rows.Err()
}

// headwordFields are the field names accepted as a record's headword,
// in the vocabularies the sources actually use.
var headwordFields = map[string]bool{
	"headword":        true,
	"word":            true,
	"proto":           true,
	"proto-dravidian": true,
	"protodravidian":  true,
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord reads one records row.
func scanRecord(row rowScanner) (*StoredRecord, error) {
	var rec StoredRecord
	var parent sql.NullInt64
	var fields string

	err := row.Scan(&rec.ID, &parent, &rec.Page, &rec.Ordinal, &rec.Depth,
		&rec.URL, &rec.Fingerprint, &rec.Duplicate, &fields)
	if err != nil {
		return nil, err
	}

	if parent.Valid {
		rec.ParentID = &parent.Int64
	}
	if err := json.Unmarshal([]byte(fields), &rec.Fields); err != nil {
		return nil, fmt.Errorf("failed to decode fields: %w", err)
	}
	return &rec, nil
}
