package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Product is an item of the purchase catalog. The catalog is an
// immutable reference set in this service; rows are seeded at startup.
type Product struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	DisplayName   string          `gorm:"type:varchar(1000);not null" json:"display_name"`
	Price         decimal.Decimal `gorm:"type:decimal(30,5);not null" json:"price"`
	PriceCurrency string          `gorm:"type:varchar(255);not null" json:"price_currency"`
}

func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
