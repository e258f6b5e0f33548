package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SessionStorage interface {
	Upsert(ctx context.Context, session *UserSession) error
	Validate(ctx context.Context, employeeID, eventID int, tokenHash string) (bool, error)
	Revoke(ctx context.Context, employeeID, eventID int) error
}

type GormSessionStorage struct {
	DB *gorm.DB
}

// Upsert replaces any previous session for the (employee, event) pair; a
// re-login invalidates the earlier token.
func (s *GormSessionStorage) Upsert(ctx context.Context, session *UserSession) error {
	if session.CreatedAt.IsZero() {
		session.CreatedAt = time.Now().UTC()
	}
	return s.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "employee_id"}, {Name: "event_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"token_hash", "expires_at", "ip_address", "user_agent", "created_at",
		}),
	}).Create(session).Error
}

// Validate is a read-only precondition: it never shares a transaction with
// a vote write.
func (s *GormSessionStorage) Validate(ctx context.Context, employeeID, eventID int, tokenHash string) (bool, error) {
	var session UserSession
	err := s.DB.WithContext(ctx).
		Where("employee_id = ? AND event_id = ? AND token_hash = ?", employeeID, eventID, tokenHash).
		First(&session).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return session.ExpiresAt.After(time.Now().UTC()), nil
}

func (s *GormSessionStorage) Revoke(ctx context.Context, employeeID, eventID int) error {
	return s.DB.WithContext(ctx).
		Where("employee_id = ? AND event_id = ?", employeeID, eventID).
		Delete(&UserSession{}).Error
}

// LoginAttemptStorage counts recent login attempts per identity so the
// throttle works across processes instead of resetting per instance.
type LoginAttemptStorage interface {
	Record(ctx context.Context, identity string) error
	CountSince(ctx context.Context, identity string, since time.Time) (int64, error)
	PruneBefore(ctx context.Context, cutoff time.Time) error
}

type GormLoginAttemptStorage struct {
	DB *gorm.DB
}

func (s *GormLoginAttemptStorage) Record(ctx context.Context, identity string) error {
	return s.DB.WithContext(ctx).Create(&LoginAttempt{
		Identity:    identity,
		AttemptedAt: time.Now().UTC(),
	}).Error
}

func (s *GormLoginAttemptStorage) CountSince(ctx context.Context, identity string, since time.Time) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&LoginAttempt{}).
		Where("identity = ? AND attempted_at >= ?", identity, since).
		Count(&count).Error
	return count, err
}

func (s *GormLoginAttemptStorage) PruneBefore(ctx context.Context, cutoff time.Time) error {
	return s.DB.WithContext(ctx).
		Where("attempted_at < ?", cutoff).
		Delete(&LoginAttempt{}).Error
}
