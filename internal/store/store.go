// Package store persists finished content records.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/AngelCh415/revpipe/internal/models"
)

var (
	ErrDuplicate = errors.New("content record already stored")
	ErrNotFound  = errors.New("content record not found")
)

type Store interface {
	Save(ctx context.Context, rec models.ContentRecord) error
	Get(ctx context.Context, id string) (models.ContentRecord, error)
	Status(ctx context.Context) (models.StoreStatus, error)
	Close() error
}

func validate(rec models.ContentRecord) error {
	if strings.TrimSpace(rec.ID) == "" {
		return fmt.Errorf("record id is required")
	}
	if strings.TrimSpace(rec.Unit.Country) == "" {
		return fmt.Errorf("record country is required")
	}
	return nil
}

// Open picks a backend by driver name: memory, sqlite or postgres.
func Open(ctx context.Context, driver, sqlitePath, databaseURL string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", "memory":
		return NewMemoryStore(), nil
	case "sqlite":
		s, err := OpenSQLite(sqlitePath)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "postgres":
		s, err := OpenPostgres(ctx, databaseURL, 10)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown store driver %q", driver)
}
