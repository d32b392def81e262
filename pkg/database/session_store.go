package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/smartshelf/shelfweb/pkg/session"
)

// SessionRow is one persisted session. The column names match the keys
// the web tier uses: token and role.
type SessionRow struct {
	ID        string `gorm:"primaryKey;size:64"`
	Token     string `gorm:"not null"`
	Role      string `gorm:"size:32"`
	ExpiresAt time.Time
	UpdatedAt time.Time
}

func (SessionRow) TableName() string { return "sessions" }

// SessionStore implements session.Store on top of GORM.
type SessionStore struct {
	db *gorm.DB
}

// NewSessionStore wraps an opened database.
func NewSessionStore(db *gorm.DB) *SessionStore {
	return &SessionStore{db: db}
}

var _ session.Store = (*SessionStore)(nil)

func (s *SessionStore) Read(ctx context.Context, id string) (session.Record, bool, error) {
	var row SessionRow
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return session.Record{}, false, nil
	}
	if err != nil {
		return session.Record{}, false, fmt.Errorf("database: read session: %w", err)
	}
	return session.Record{Token: row.Token, Role: row.Role, ExpiresAt: row.ExpiresAt}, true, nil
}

func (s *SessionStore) Write(ctx context.Context, id string, rec session.Record) error {
	row := SessionRow{ID: id, Token: rec.Token, Role: rec.Role, ExpiresAt: rec.ExpiresAt}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"token", "role", "expires_at", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("database: write session: %w", err)
	}
	return nil
}

func (s *SessionStore) Remove(ctx context.Context, id string) error {
	if err := s.db.WithContext(ctx).Where("id = ?", id).Delete(&SessionRow{}).Error; err != nil {
		return fmt.Errorf("database: remove session: %w", err)
	}
	return nil
}
