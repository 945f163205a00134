package libstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/eagraf/habitat-store/core/state/library"
	"github.com/rs/zerolog/log"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// entryRow is one library entry as stored in sqlite. The entry data is kept as a JSON
// column so new fields do not need a migration.
type entryRow struct {
	AppID     string       `gorm:"primaryKey"`
	Data      library.Data `gorm:"serializer:json"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (entryRow) TableName() string {
	return "library_entries"
}

func (r *entryRow) entry() *library.Entry {
	return &library.Entry{AppID: r.AppID, Data: r.Data}
}

// SQLiteStore persists the library in a sqlite database file.
type SQLiteStore struct {
	db  *gorm.DB
	now func() time.Time
}

var _ library.Store = &SQLiteStore{}

func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("error creating library directory: %w", err)
	}
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("error opening library database %s: %w", path, err)
	}
	if err := db.AutoMigrate(&entryRow{}); err != nil {
		return nil, fmt.Errorf("error migrating library database: %w", err)
	}
	log.Debug().Msgf("Opened library database at %s", path)
	return &SQLiteStore{db: db, now: time.Now}, nil
}

func (s *SQLiteStore) TryGet(ctx context.Context, appID string) (*library.Entry, bool, error) {
	var row entryRow
	err := s.db.WithContext(ctx).Where("app_id = ?", appID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, fmt.Errorf("error getting library entry %s: %w", appID, err)
	}
	return row.entry(), true, nil
}

func (s *SQLiteStore) Update(ctx context.Context, appID string, fn func(library.Data) library.Data) (*library.Entry, error) {
	var row entryRow
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("app_id = ?", appID).First(&row).Error
		exists := err == nil
		if errors.Is(err, gorm.ErrRecordNotFound) {
			row = entryRow{AppID: appID, Data: library.Data{AddedAt: s.now()}}
		} else if err != nil {
			return err
		}
		before := row.Data
		row.Data = fn(before)
		if exists {
			err = tx.Save(&row).Error
		} else {
			err = tx.Create(&row).Error
		}
		if err != nil {
			return err
		}
		logChange(appID, before, row.Data)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("error updating library entry %s: %w", appID, err)
	}
	return row.entry(), nil
}

func (s *SQLiteStore) Add(ctx context.Context, appID string) (*library.Entry, error) {
	var row entryRow
	err := s.db.WithContext(ctx).
		Where(entryRow{AppID: appID}).
		Attrs(entryRow{Data: library.Data{AddedAt: s.now()}}).
		FirstOrCreate(&row).Error
	if err != nil {
		return nil, fmt.Errorf("error adding library entry %s: %w", appID, err)
	}
	return row.entry(), nil
}

func (s *SQLiteStore) Remove(ctx context.Context, appID string) (bool, error) {
	res := s.db.WithContext(ctx).Where("app_id = ?", appID).Delete(&entryRow{})
	if res.Error != nil {
		return false, fmt.Errorf("error removing library entry %s: %w", appID, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (s *SQLiteStore) List(ctx context.Context) ([]*library.Entry, error) {
	var rows []entryRow
	if err := s.db.WithContext(ctx).Order("app_id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("error listing library: %w", err)
	}
	entries := make([]*library.Entry, 0, len(rows))
	for i := range rows {
		entries = append(entries, rows[i].entry())
	}
	return entries, nil
}

func (s *SQLiteStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
