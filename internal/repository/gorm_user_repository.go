package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/spec-kit/account-service/internal/domain"
)

// userModel is the gorm mapping of the users table.
type userModel struct {
	ID           int64   `gorm:"primaryKey;autoIncrement"`
	Email        string  `gorm:"uniqueIndex;not null"`
	Name         *string `gorm:"size:255"`
	PasswordHash string  `gorm:"not null"`
	Role         string  `gorm:"size:16;not null;index"`
	IsActive     bool    `gorm:"not null"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userModel) TableName() string { return "users" }

func (m *userModel) toDomain() *domain.User {
	return &domain.User{
		ID:           m.ID,
		Email:        m.Email,
		Name:         m.Name,
		PasswordHash: m.PasswordHash,
		Role:         domain.Role(m.Role),
		IsActive:     m.IsActive,
		CreatedAt:    m.CreatedAt,
		UpdatedAt:    m.UpdatedAt,
	}
}

// MigrateGormUsers creates or updates the users table for gorm backed stores.
func MigrateGormUsers(db *gorm.DB) error {
	return db.AutoMigrate(&userModel{})
}

type gormUserRepository struct {
	db *gorm.DB
}

// NewGormUserRepository returns a gorm-backed implementation, used with SQLite.
func NewGormUserRepository(db *gorm.DB) UserRepository {
	return &gormUserRepository{db: db}
}

func (r *gormUserRepository) Create(ctx context.Context, user *domain.User) error {
	m := userModel{
		Email:        user.Email,
		Name:         user.Name,
		PasswordHash: user.PasswordHash,
		Role:         string(user.Role),
		IsActive:     user.IsActive,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return translateGormError(err)
	}
	user.ID = m.ID
	user.CreatedAt = m.CreatedAt
	user.UpdatedAt = m.UpdatedAt
	return nil
}

func (r *gormUserRepository) Update(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	res := r.db.WithContext(ctx).Model(&userModel{}).Where("id = ?", user.ID).Updates(map[string]any{
		"email":         user.Email,
		"name":          user.Name,
		"password_hash": user.PasswordHash,
		"role":          string(user.Role),
		"is_active":     user.IsActive,
		"updated_at":    now,
	})
	if res.Error != nil {
		return translateGormError(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	user.UpdatedAt = now
	return nil
}

func (r *gormUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	var m userModel
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translateGormError(err)
	}
	return m.toDomain(), nil
}

func (r *gormUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	var m userModel
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&m).Error; err != nil {
		return nil, translateGormError(err)
	}
	return m.toDomain(), nil
}

func (r *gormUserRepository) List(ctx context.Context) ([]domain.User, error) {
	var models []userModel
	if err := r.db.WithContext(ctx).Order("id").Find(&models).Error; err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(models))
	for i := range models {
		users = append(users, *models[i].toDomain())
	}
	return users, nil
}

func (r *gormUserRepository) Delete(ctx context.Context, id int64) (*domain.User, error) {
	var deleted *domain.User
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m userModel
		if err := tx.First(&m, id).Error; err != nil {
			return translateGormError(err)
		}
		if m.Role == string(domain.RoleAdmin) {
			var admins int64
			if err := tx.Model(&userModel{}).Where("role = ?", string(domain.RoleAdmin)).Count(&admins).Error; err != nil {
				return err
			}
			if admins <= 1 {
				return ErrLastAdmin
			}
		}
		if err := tx.Delete(&userModel{}, id).Error; err != nil {
			return err
		}
		deleted = m.toDomain()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return deleted, nil
}

func (r *gormUserRepository) CountAdmins(ctx context.Context) (int, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&userModel{}).Where("role = ?", string(domain.RoleAdmin)).Count(&count).Error
	return int(count), err
}

func translateGormError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey),
		strings.Contains(err.Error(), "UNIQUE constraint failed"):
		return ErrEmailTaken
	}
	return err
}
