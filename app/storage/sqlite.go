package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	log "github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"GoTelegramAI/app/utils"
)

const (
	MemoryPath = ":memory:"
	timeLayout = "2006-01-02 15:04:05"
)

var _ Interface = &SQLiteStorage{}

type SQLiteStorage struct {
	db *sql.DB
}

const schema = `
	CREATE TABLE IF NOT EXISTS collections (
		name TEXT NOT NULL PRIMARY KEY,
		vector_size INTEGER NOT NULL,
		distance TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS points (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL,
		collection TEXT NOT NULL,
		chat_id INTEGER NOT NULL,
		vector BLOB NOT NULL,
		payload TEXT NOT NULL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		UNIQUE (collection, id)
	);
	CREATE INDEX IF NOT EXISTS idx_points_chat ON points (collection, chat_id);
`

func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	if dbPath == "" {
		dbPath = MemoryPath
	}
	if dbPath != MemoryPath {
		if err := os.MkdirAll(filepath.Dir(dbPath), os.ModePerm); err != nil {
			return nil, fmt.Errorf("create data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	// Every pooled connection to :memory: would get its own empty database.
	db.SetMaxOpenConns(1)

	if _, err = db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}
	log.WithField("path", dbPath).Info("📂 SQLite storage ready")

	return &SQLiteStorage{db: db}, nil
}

func (s *SQLiteStorage) CollectionExists(ctx context.Context, name string) (bool, error) {
	var found string
	err := s.db.QueryRowContext(ctx, `SELECT name FROM collections WHERE name = ?`, name).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *SQLiteStorage) CreateCollection(ctx context.Context, c Collection) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO collections (name, vector_size, distance, created_at) VALUES (?, ?, ?, datetime(?))`,
		c.Name, c.VectorSize, c.Distance, c.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("create collection %s: %w", c.Name, err)
	}
	return nil
}

// SavePoints inserts all points in one transaction. A point whose id already
// exists in the collection is replaced.
func (s *SQLiteStorage) SavePoints(ctx context.Context, collection string, points []Record) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO points (id, collection, chat_id, vector, payload, created_at)
		 VALUES (?, ?, ?, ?, ?, datetime(?))`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range points {
		createdAt := p.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now()
		}
		if _, err = stmt.ExecContext(ctx, p.ID, collection, p.ChatID, utils.EncodeVector(p.Vector), p.Payload,
			createdAt.UTC().Format(timeLayout)); err != nil {
			return fmt.Errorf("save point %s: %w", p.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return err
	}
	log.WithFields(log.Fields{"collection": collection, "points": len(points)}).Debug("✅ Points saved")
	return nil
}

func (s *SQLiteStorage) GetPointsByChatID(ctx context.Context, collection string, chatID int64) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, chat_id, vector, payload, created_at
		 FROM points
		 WHERE collection = ? AND chat_id = ?
		 ORDER BY seq ASC`,
		collection, chatID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			r         Record
			blob      []byte
			createdAt any
		)
		if err = rows.Scan(&r.ID, &r.ChatID, &blob, &r.Payload, &createdAt); err != nil {
			return nil, err
		}
		if r.Vector, err = utils.DecodeVector(blob); err != nil {
			log.Warnf("⚠️ Skipping point %s: %v", r.ID, err)
			continue
		}
		r.CreatedAt = parseTime(createdAt)
		records = append(records, r)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

// parseTime accepts both shapes the driver hands back for TIMESTAMP columns.
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case string:
		parsed, _ := time.Parse(timeLayout, t)
		return parsed
	case []byte:
		parsed, _ := time.Parse(timeLayout, string(t))
		return parsed
	}
	return time.Time{}
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}
