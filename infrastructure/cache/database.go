package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/helixml/plainspeak/internal/database"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// entryModel is the persisted form of a cache entry.
type entryModel struct {
	Key       string    `gorm:"column:cache_key;primaryKey;size:255"`
	Value     []byte    `gorm:"column:value;not null"`
	ExpiresAt time.Time `gorm:"column:expires_at;index;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

// TableName returns the cache table name.
func (entryModel) TableName() string { return "result_cache" }

// DatabaseStore keeps entries in a SQL table, for deployments that already
// run SQLite or PostgreSQL and have no Redis.
type DatabaseStore struct {
	db         *database.DB
	defaultTTL time.Duration
	now        func() time.Time
}

// NewDatabaseStore migrates the cache table and sweeps expired rows. The
// store takes ownership of db and closes it on Close.
func NewDatabaseStore(ctx context.Context, db *database.DB, defaultTTL time.Duration) (*DatabaseStore, error) {
	if err := db.Migrate(ctx, &entryModel{}); err != nil {
		return nil, fmt.Errorf("migrate cache table: %w", err)
	}

	s := &DatabaseStore{
		db:         db,
		defaultTTL: effectiveTTL(defaultTTL, DefaultTTL),
		now:        time.Now,
	}
	if _, err := s.PurgeExpired(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Get returns the cached value for key if it has not expired.
func (s *DatabaseStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var entry entryModel
	err := s.db.Session(ctx).
		Where("cache_key = ? AND expires_at > ?", key, s.now().UTC()).
		Take(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get: %w", err)
	}
	return entry.Value, true, nil
}

// Set upserts value under key.
func (s *DatabaseStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	now := s.now().UTC()
	entry := entryModel{
		Key:       key,
		Value:     value,
		ExpiresAt: now.Add(effectiveTTL(ttl, s.defaultTTL)),
		CreatedAt: now,
	}
	err := s.db.Session(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "cache_key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "expires_at", "created_at"}),
		}).
		Create(&entry).Error
	if err != nil {
		return fmt.Errorf("cache set: %w", err)
	}
	return nil
}

// PurgeExpired deletes expired rows and returns how many were removed.
func (s *DatabaseStore) PurgeExpired(ctx context.Context) (int64, error) {
	res := s.db.Session(ctx).
		Where("expires_at <= ?", s.now().UTC()).
		Delete(&entryModel{})
	if res.Error != nil {
		return 0, fmt.Errorf("purge expired cache entries: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Name returns "database".
func (s *DatabaseStore) Name() string { return BackendDatabase }

// Close closes the database connection.
func (s *DatabaseStore) Close() error {
	return s.db.Close()
}

var _ Store = (*DatabaseStore)(nil)
