package store

import (
	"context"

	"crm-backend/internal/models"

	"gorm.io/gorm"
)

const entityUser = "User"

type UserStore struct {
	db *gorm.DB
}

func NewUserStore(db *gorm.DB) *UserStore {
	return &UserStore{db: db}
}

func (s *UserStore) List(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).Order("created_at DESC").Find(&users).Error
	return users, translate(err, entityUser, "list")
}

func (s *UserStore) ListByRole(ctx context.Context, role models.UserRole) ([]models.User, error) {
	var users []models.User
	err := s.db.WithContext(ctx).
		Where("role = ?", role).
		Order("name ASC").
		Find(&users).Error
	return users, translate(err, entityUser, "list")
}

func (s *UserStore) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err, entityUser, "find")
	}
	return &u, nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var u models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&u).Error; err != nil {
		return nil, translate(err, entityUser, "find")
	}
	return &u, nil
}

func (s *UserStore) Create(ctx context.Context, u *models.User) error {
	return translate(s.db.WithContext(ctx).Create(u).Error, entityUser, "create")
}

func (s *UserStore) Update(ctx context.Context, u *models.User) error {
	return translate(s.db.WithContext(ctx).Save(u).Error, entityUser, "update")
}

func (s *UserStore) Delete(ctx context.Context, id uint) error {
	return deleted(s.db.WithContext(ctx).Delete(&models.User{}, id), entityUser)
}
