package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"procurement/internal/model"
)

// RefDataRepository checks membership in the closed reference sets.
type RefDataRepository interface {
	RoleExists(ctx context.Context, id string) (bool, error)
	UserStatusExists(ctx context.Context, id string) (bool, error)
	RequestStatusExists(ctx context.Context, id string) (bool, error)
}

type refDataRepository struct {
	db *gorm.DB
}

func NewRefDataRepository(db *gorm.DB) RefDataRepository {
	return &refDataRepository{db: db}
}

func (r *refDataRepository) RoleExists(ctx context.Context, id string) (bool, error) {
	return r.exists(ctx, &model.Role{}, id)
}

func (r *refDataRepository) UserStatusExists(ctx context.Context, id string) (bool, error) {
	return r.exists(ctx, &model.UserStatus{}, id)
}

func (r *refDataRepository) RequestStatusExists(ctx context.Context, id string) (bool, error) {
	return r.exists(ctx, &model.RequestStatus{}, id)
}

func (r *refDataRepository) exists(ctx context.Context, entity interface{}, id string) (bool, error) {
	err := GetDB(ctx, r.db).First(entity, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
