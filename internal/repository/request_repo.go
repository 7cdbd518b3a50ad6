package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"procurement/internal/model"
)

// RequestRepository defines data access for request revision chains.
type RequestRepository interface {
	Create(ctx context.Context, req *model.Request) error
	CreateDetails(ctx context.Context, details []model.RequestDetail) error
	CurrentByRefNo(ctx context.Context, refNo uuid.UUID) (*model.Request, error)
	AllByRefNo(ctx context.Context, refNo uuid.UUID) ([]model.Request, error)
	ListCurrent(ctx context.Context, ownerEmail string) ([]model.Request, error)
	Update(ctx context.Context, req *model.Request) error
	DeleteDetailsByRefNo(ctx context.Context, refNo uuid.UUID) error
	DeleteByRefNo(ctx context.Context, refNo uuid.UUID) error
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, req *model.Request) error {
	return GetDB(ctx, r.db).Omit("RequestDetails").Create(req).Error
}

func (r *requestRepository) CreateDetails(ctx context.Context, details []model.RequestDetail) error {
	if len(details) == 0 {
		return nil
	}
	return GetDB(ctx, r.db).Create(&details).Error
}

// CurrentByRefNo loads the single current revision of a chain with its
// owner, or gorm.ErrRecordNotFound when the chain does not exist.
func (r *requestRepository) CurrentByRefNo(ctx context.Context, refNo uuid.UUID) (*model.Request, error) {
	var req model.Request
	err := GetDB(ctx, r.db).
		Preload("User").
		First(&req, "ref_no = ? AND is_current = 1", refNo).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// AllByRefNo loads every revision of a chain, with owners and details.
func (r *requestRepository) AllByRefNo(ctx context.Context, refNo uuid.UUID) ([]model.Request, error) {
	var requests []model.Request
	err := GetDB(ctx, r.db).
		Preload("User").
		Preload("RequestDetails").
		Where("ref_no = ?", refNo).
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// ListCurrent returns current revisions with full projections, filtered
// to one owner when ownerEmail is set.
func (r *requestRepository) ListCurrent(ctx context.Context, ownerEmail string) ([]model.Request, error) {
	var requests []model.Request
	query := GetDB(ctx, r.db).
		Preload("User").
		Preload("RequestDetails.Product").
		Where("is_current = 1")
	if ownerEmail != "" {
		sub := GetDB(ctx, r.db).Model(&model.User{}).Select("id").Where("email = ?", ownerEmail)
		query = query.Where("user_id IN (?)", sub)
	}
	if err := query.Order("created_at").Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

func (r *requestRepository) Update(ctx context.Context, req *model.Request) error {
	return GetDB(ctx, r.db).Omit("RequestDetails", "User").Save(req).Error
}

func (r *requestRepository) DeleteDetailsByRefNo(ctx context.Context, refNo uuid.UUID) error {
	db := GetDB(ctx, r.db)
	sub := db.Model(&model.Request{}).Select("id").Where("ref_no = ?", refNo)
	return db.Where("request_id IN (?)", sub).Delete(&model.RequestDetail{}).Error
}

func (r *requestRepository) DeleteByRefNo(ctx context.Context, refNo uuid.UUID) error {
	return GetDB(ctx, r.db).Where("ref_no = ?", refNo).Delete(&model.Request{}).Error
}
