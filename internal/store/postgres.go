package store

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/AngelCh415/revpipe/internal/models"
)

//go:embed migrations/postgres/*.sql
var postgresMigrations embed.FS

type contentModel struct {
	ID                string    `gorm:"column:id;primaryKey"`
	Keyword           string    `gorm:"column:keyword"`
	Country           string    `gorm:"column:country"`
	ContentType       string    `gorm:"column:content_type"`
	MonetizationLevel string    `gorm:"column:monetization_level"`
	Title             string    `gorm:"column:title"`
	ContentJSON       string    `gorm:"column:content_json;type:jsonb"`
	HTML              string    `gorm:"column:html"`
	EstimatedRevenue  float64   `gorm:"column:estimated_revenue"`
	CreatedAt         time.Time `gorm:"column:created_at"`
}

func (contentModel) TableName() string { return "content" }

func toModel(rec models.ContentRecord) (contentModel, error) {
	body, err := json.Marshal(rec.Content)
	if err != nil {
		return contentModel{}, fmt.Errorf("encode content: %w", err)
	}
	createdAt := rec.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}
	return contentModel{
		ID:                rec.ID,
		Keyword:           rec.Unit.Keyword,
		Country:           rec.Unit.Country,
		ContentType:       rec.Unit.ContentType,
		MonetizationLevel: string(rec.Unit.MonetizationLevel),
		Title:             rec.Content.Title,
		ContentJSON:       string(body),
		HTML:              rec.HTML,
		EstimatedRevenue:  rec.Content.Metadata.EstimatedRevenue,
		CreatedAt:         createdAt,
	}, nil
}

func (m contentModel) toRecord() (models.ContentRecord, error) {
	rec := models.ContentRecord{
		ID: m.ID,
		Unit: models.ContentUnit{
			Keyword:           m.Keyword,
			Country:           m.Country,
			ContentType:       m.ContentType,
			MonetizationLevel: models.MonetizationLevel(m.MonetizationLevel),
		},
		HTML:      m.HTML,
		CreatedAt: m.CreatedAt.UTC(),
	}
	if err := json.Unmarshal([]byte(m.ContentJSON), &rec.Content); err != nil {
		return models.ContentRecord{}, fmt.Errorf("decode content: %w", err)
	}
	return rec, nil
}

type PostgresStore struct {
	db *gorm.DB
}

var _ Store = (*PostgresStore)(nil)

func OpenPostgres(ctx context.Context, databaseURL string, maxConns int) (*PostgresStore, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, fmt.Errorf("database url is required")
	}
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		PrepareStmt:    true,
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("gorm sql db: %w", err)
	}
	if maxConns > 0 {
		sqlDB.SetMaxOpenConns(maxConns)
		sqlDB.SetMaxIdleConns(maxConns / 2)
	}
	sqlDB.SetConnMaxIdleTime(15 * time.Minute)
	sqlDB.SetConnMaxLifetime(time.Hour)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	s := &PostgresStore{db: db}
	if err := s.migrate(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) migrate(ctx context.Context) error {
	entries, err := postgresMigrations.ReadDir("migrations/postgres")
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
		raw, err := postgresMigrations.ReadFile("migrations/postgres/" + name)
		if err != nil {
			return fmt.Errorf("read migration %s: %w", name, err)
		}
		if err := s.db.WithContext(ctx).Exec(string(raw)).Error; err != nil {
			return fmt.Errorf("exec migration %s: %w", name, err)
		}
	}
	return nil
}

func (s *PostgresStore) Save(ctx context.Context, rec models.ContentRecord) error {
	if err := validate(rec); err != nil {
		return err
	}
	m, err := toModel(rec)
	if err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicate
		}
		return fmt.Errorf("insert content: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id string) (models.ContentRecord, error) {
	var m contentModel
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.ContentRecord{}, ErrNotFound
	}
	if err != nil {
		return models.ContentRecord{}, fmt.Errorf("get content: %w", err)
	}
	return m.toRecord()
}

func (s *PostgresStore) Status(ctx context.Context) (models.StoreStatus, error) {
	var rows []struct {
		Country string
		Total   int
	}
	err := s.db.WithContext(ctx).Model(&contentModel{}).
		Select("country, COUNT(*) AS total").
		Group("country").
		Scan(&rows).Error
	if err != nil {
		return models.StoreStatus{}, fmt.Errorf("count content: %w", err)
	}
	st := models.StoreStatus{PerCountryCounts: make(map[string]int, len(rows))}
	for _, r := range rows {
		st.PerCountryCounts[r.Country] = r.Total
		st.TotalPosts += r.Total
	}
	return st, nil
}

func (s *PostgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
