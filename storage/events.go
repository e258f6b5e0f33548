package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type EventStorage interface {
	Get(ctx context.Context, id int) (*Event, error)
	GetByCode(ctx context.Context, code string) (*Event, error)
	GetAll(ctx context.Context) ([]*Event, error)
	Create(ctx context.Context, event *Event) error
	Update(ctx context.Context, event *Event) error
	SetStatus(ctx context.Context, id int, status int) error
}

type GormEventStorage struct {
	DB *gorm.DB
}

func (s *GormEventStorage) Get(ctx context.Context, id int) (*Event, error) {
	var event Event
	if err := s.DB.WithContext(ctx).First(&event, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (s *GormEventStorage) GetByCode(ctx context.Context, code string) (*Event, error) {
	var event Event
	if err := s.DB.WithContext(ctx).Where("code = ?", code).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &event, nil
}

func (s *GormEventStorage) GetAll(ctx context.Context) ([]*Event, error) {
	var events []*Event
	if err := s.DB.WithContext(ctx).Order("created_at DESC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

func (s *GormEventStorage) Create(ctx context.Context, event *Event) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}
	if err := s.DB.WithContext(ctx).Create(event).Error; err != nil {
		if isDuplicateKeyErr(err) {
			return ErrItemWithIDAlreadyExists
		}
		return err
	}
	return nil
}

func (s *GormEventStorage) Update(ctx context.Context, event *Event) error {
	return s.DB.WithContext(ctx).Save(event).Error
}

func (s *GormEventStorage) SetStatus(ctx context.Context, id int, status int) error {
	res := s.DB.WithContext(ctx).Model(&Event{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
