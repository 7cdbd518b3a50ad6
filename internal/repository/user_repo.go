package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"procurement/internal/model"
)

// UserRepository defines data access for User entities. The delete
// methods are split so the service can run the ordered cascading
// delete (details, then revisions, then the user) explicitly inside
// one transaction.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]model.User, error)
	Update(ctx context.Context, user *model.User) error
	DeleteDetailsByUser(ctx context.Context, userID uuid.UUID) error
	DeleteRequestsByUser(ctx context.Context, userID uuid.UUID) error
	Delete(ctx context.Context, userID uuid.UUID) error
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *model.User) error {
	return GetDB(ctx, r.db).Create(user).Error
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := GetDB(ctx, r.db).First(&user, "email = ?", email).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if err := GetDB(ctx, r.db).Order("created_at").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}

func (r *userRepository) Update(ctx context.Context, user *model.User) error {
	return GetDB(ctx, r.db).Save(user).Error
}

func (r *userRepository) DeleteDetailsByUser(ctx context.Context, userID uuid.UUID) error {
	db := GetDB(ctx, r.db)
	sub := db.Model(&model.Request{}).Select("id").Where("user_id = ?", userID)
	return db.Where("request_id IN (?)", sub).Delete(&model.RequestDetail{}).Error
}

func (r *userRepository) DeleteRequestsByUser(ctx context.Context, userID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("user_id = ?", userID).Delete(&model.Request{}).Error
}

func (r *userRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", userID).Delete(&model.User{}).Error
}
