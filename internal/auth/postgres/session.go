package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/hrms-portal/internal/auth"
	"github.com/frahmantamala/hrms-portal/internal/core/datamodel/session"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, s *session.Session) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *SessionRepository) FindByTokenHash(ctx context.Context, tokenHash string) (*session.Session, error) {
	var s session.Session
	err := r.db.WithContext(ctx).Where("token_hash = ?", tokenHash).First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, auth.ErrSessionNotFound
		}
		return nil, err
	}
	return &s, nil
}

// ModifyFlash rewrites the flash column under a row lock.
func (r *SessionRepository) ModifyFlash(ctx context.Context, sessionID string, fn func(current string) (string, error)) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s session.Session
		q := tx.Select("id", "flash").Where("id = ?", sessionID)
		if tx.Dialector.Name() == "postgres" {
			q = q.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		if err := q.First(&s).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return auth.ErrSessionNotFound
			}
			return err
		}

		next, err := fn(s.Flash)
		if err != nil {
			return err
		}
		if next == s.Flash {
			return nil
		}
		return tx.Model(&session.Session{}).Where("id = ?", sessionID).
			Updates(map[string]interface{}{"flash": next, "updated_at": time.Now()}).Error
	})
}

func (r *SessionRepository) Delete(ctx context.Context, sessionID string) error {
	return r.db.WithContext(ctx).Where("id = ?", sessionID).Delete(&session.Session{}).Error
}

func (r *SessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	res := r.db.WithContext(ctx).Where("expires_at <= ?", before).Delete(&session.Session{})
	return res.RowsAffected, res.Error
}
