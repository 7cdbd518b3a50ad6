package database

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"procurement/internal/model"
)

// NewConnection initializes the connection pool, migrates the schema
// and seeds the reference data.
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := Migrate(db); err != nil {
		return nil, err
	}
	if err := Seed(db); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates or updates the schema for all domain entities.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Role{},
		&model.UserStatus{},
		&model.RequestStatus{},
		&model.User{},
		&model.Product{},
		&model.Request{},
		&model.RequestDetail{},
	)
}

// Demo catalog ids are stable so clients and fixtures can refer to them.
var (
	ProductID1 = uuid.MustParse("e6f6ddb0-02dd-4106-8716-e6ffa329c664")
	ProductID2 = uuid.MustParse("ce901d35-85d4-45a2-8e14-49bc360f70eb")
	ProductID3 = uuid.MustParse("ad45055b-f1b3-46aa-a4c2-8ba5a4d27236")
)

// Seed inserts the closed reference sets and the demo product catalog.
// Idempotent: existing rows are left untouched.
func Seed(db *gorm.DB) error {
	for _, id := range []string{model.RoleUser, model.RoleCoordinator, model.RoleAdmin} {
		if err := db.FirstOrCreate(&model.Role{}, model.Role{ID: id}).Error; err != nil {
			return err
		}
	}

	for _, id := range []string{model.UserStatusPending, model.UserStatusApproved, model.UserStatusRejected} {
		if err := db.FirstOrCreate(&model.UserStatus{}, model.UserStatus{ID: id}).Error; err != nil {
			return err
		}
	}

	for _, id := range []string{model.RequestStatusPending, model.RequestStatusApproved, model.RequestStatusRejected} {
		if err := db.FirstOrCreate(&model.RequestStatus{}, model.RequestStatus{ID: id}).Error; err != nil {
			return err
		}
	}

	products := []model.Product{
		{ID: ProductID1, DisplayName: "Product1", Price: decimal.RequireFromString("5.99"), PriceCurrency: "Euro"},
		{ID: ProductID2, DisplayName: "Product2", Price: decimal.NewFromInt(15), PriceCurrency: "Euro"},
		{ID: ProductID3, DisplayName: "Product3", Price: decimal.NewFromInt(100), PriceCurrency: "Euro"},
	}
	for i := range products {
		if err := db.Where(model.Product{ID: products[i].ID}).FirstOrCreate(&products[i]).Error; err != nil {
			return err
		}
	}

	return nil
}
