package storage

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
)

type EmployeeStorage interface {
	Get(ctx context.Context, id int) (*Employee, error)
	GetByEmpNo(ctx context.Context, empNo string) (*Employee, error)
	List(ctx context.Context, department, search string, page, limit int) ([]*Employee, int64, error)
	BatchCreate(ctx context.Context, employees []*Employee) (int, error)
	Deactivate(ctx context.Context, id int) error
	TouchLastLogin(ctx context.Context, id int) error
	CountActive(ctx context.Context) (int64, error)
}

type GormEmployeeStorage struct {
	DB *gorm.DB
}

func (s *GormEmployeeStorage) Get(ctx context.Context, id int) (*Employee, error) {
	var employee Employee
	if err := s.DB.WithContext(ctx).First(&employee, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &employee, nil
}

func (s *GormEmployeeStorage) GetByEmpNo(ctx context.Context, empNo string) (*Employee, error) {
	var employee Employee
	err := s.DB.WithContext(ctx).
		Where("emp_no = ? AND status = ?", empNo, EmployeeStatusActive).
		First(&employee).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &employee, nil
}

func (s *GormEmployeeStorage) List(ctx context.Context, department, search string, page, limit int) ([]*Employee, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 50
	}

	q := s.DB.WithContext(ctx).Model(&Employee{}).Where("status = ?", EmployeeStatusActive)
	if department != "" {
		q = q.Where("department = ?", department)
	}
	if search != "" {
		pattern := "%" + search + "%"
		q = q.Where("name LIKE ? OR emp_no LIKE ?", pattern, pattern)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var employees []*Employee
	err := q.Order("created_at DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&employees).Error
	if err != nil {
		return nil, 0, err
	}
	return employees, total, nil
}

// BatchCreate imports employees, skipping rows whose emp_no already exists.
// Returns the number actually created.
func (s *GormEmployeeStorage) BatchCreate(ctx context.Context, employees []*Employee) (int, error) {
	created := 0
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, employee := range employees {
			if employee.CreatedAt.IsZero() {
				employee.CreatedAt = time.Now().UTC()
			}
			if employee.Status == 0 {
				employee.Status = EmployeeStatusActive
			}
			if err := tx.Create(employee).Error; err != nil {
				if isDuplicateKeyErr(err) {
					continue
				}
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return created, nil
}

// Deactivate soft-deletes: the row survives because votes reference it.
func (s *GormEmployeeStorage) Deactivate(ctx context.Context, id int) error {
	res := s.DB.WithContext(ctx).Model(&Employee{}).
		Where("id = ?", id).
		Update("status", EmployeeStatusInactive)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *GormEmployeeStorage) TouchLastLogin(ctx context.Context, id int) error {
	now := time.Now().UTC()
	return s.DB.WithContext(ctx).Model(&Employee{}).
		Where("id = ?", id).
		Update("last_login_at", now).Error
}

func (s *GormEmployeeStorage) CountActive(ctx context.Context) (int64, error) {
	var count int64
	err := s.DB.WithContext(ctx).Model(&Employee{}).
		Where("status = ?", EmployeeStatusActive).
		Count(&count).Error
	return count, err
}
