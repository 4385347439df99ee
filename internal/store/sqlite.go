package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/AngelCh415/revpipe/internal/models"
)

//go:embed migrations/sqlite/*.sql
var sqliteMigrations embed.FS

// SQLiteStore persists content records in a single SQLite file.
type SQLiteStore struct {
	sqlDB *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

func OpenSQLite(path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &SQLiteStore{sqlDB: sqlDB}, nil
}

func applyMigrations(sqlDB *sql.DB) error {
	if _, err := sqlDB.Exec(`CREATE TABLE IF NOT EXISTS schema_migrations (name TEXT PRIMARY KEY, applied_at INTEGER NOT NULL)`); err != nil {
		return fmt.Errorf("ensure migration table: %w", err)
	}
	entries, err := fs.ReadDir(sqliteMigrations, "migrations/sqlite")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".sql") {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	for _, name := range names {
		var found int
		err := sqlDB.QueryRow(`SELECT 1 FROM schema_migrations WHERE name = ?`, name).Scan(&found)
		if err == nil {
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		raw, err := fs.ReadFile(sqliteMigrations, "migrations/sqlite/"+name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		tx, err := sqlDB.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %s: %w", name, err)
		}
		if _, err := tx.Exec(string(raw)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec migration %s: %w", name, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations (name, applied_at) VALUES (?, ?)`, name, time.Now().UTC().UnixMilli()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %s: %w", name, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %s: %w", name, err)
		}
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *SQLiteStore) Save(ctx context.Context, rec models.ContentRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := validate(rec); err != nil {
		return err
	}
	body, err := json.Marshal(rec.Content)
	if err != nil {
		return fmt.Errorf("encode content: %w", err)
	}
	createdAt := rec.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	_, err = s.sqlDB.ExecContext(ctx,
		`INSERT INTO content (
		   id, keyword, country, content_type, monetization_level,
		   title, content_json, html, estimated_revenue, created_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Unit.Keyword, rec.Unit.Country, rec.Unit.ContentType, string(rec.Unit.MonetizationLevel),
		rec.Content.Title, string(body), rec.HTML, rec.Content.Metadata.EstimatedRevenue, createdAt.UnixMilli(),
	)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "unique constraint") {
			return ErrDuplicate
		}
		return fmt.Errorf("insert content: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (models.ContentRecord, error) {
	var (
		rec       models.ContentRecord
		level     string
		body      string
		createdAt int64
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, keyword, country, content_type, monetization_level, content_json, html, created_at
		   FROM content WHERE id = ?`, id,
	).Scan(&rec.ID, &rec.Unit.Keyword, &rec.Unit.Country, &rec.Unit.ContentType, &level, &body, &rec.HTML, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ContentRecord{}, ErrNotFound
	}
	if err != nil {
		return models.ContentRecord{}, fmt.Errorf("get content: %w", err)
	}
	rec.Unit.MonetizationLevel = models.MonetizationLevel(level)
	if err := json.Unmarshal([]byte(body), &rec.Content); err != nil {
		return models.ContentRecord{}, fmt.Errorf("decode content: %w", err)
	}
	rec.CreatedAt = time.UnixMilli(createdAt).UTC()
	return rec, nil
}

func (s *SQLiteStore) Status(ctx context.Context) (models.StoreStatus, error) {
	rows, err := s.sqlDB.QueryContext(ctx, `SELECT country, COUNT(*) FROM content GROUP BY country`)
	if err != nil {
		return models.StoreStatus{}, fmt.Errorf("count content: %w", err)
	}
	defer rows.Close()
	st := models.StoreStatus{PerCountryCounts: map[string]int{}}
	for rows.Next() {
		var (
			country string
			n       int
		)
		if err := rows.Scan(&country, &n); err != nil {
			return models.StoreStatus{}, fmt.Errorf("scan count: %w", err)
		}
		st.PerCountryCounts[country] = n
		st.TotalPosts += n
	}
	if err := rows.Err(); err != nil {
		return models.StoreStatus{}, fmt.Errorf("iterate counts: %w", err)
	}
	return st, nil
}
