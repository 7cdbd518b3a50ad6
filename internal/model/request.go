package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RequestStatus ids found in the request_statuses reference table.
const (
	RequestStatusPending  = "Pending"
	RequestStatusApproved = "Approved"
	RequestStatusRejected = "Rejected"
)

// RequestStatus is a static reference entity keyed by its display id.
type RequestStatus struct {
	ID string `gorm:"type:varchar(50);primaryKey" json:"id"`
}

// Request is one revision of a purchase request. All revisions of a
// logical request share the same RefNo; exactly one of them carries
// IsCurrent=1. Content is never mutated in place: amending a request
// inserts a new revision row and flips IsCurrent on the previous one.
// Only the status of the current revision is updated in place.
type Request struct {
	ID              uuid.UUID       `gorm:"type:uuid;primaryKey" json:"id"`
	RefNo           uuid.UUID       `gorm:"type:uuid;not null;index" json:"ref_no"`
	IsCurrent       int             `gorm:"type:int;not null;index" json:"is_current"`
	UserID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"user_id"`
	User            User            `gorm:"foreignKey:UserID" json:"-"`
	RequestStatusID string          `gorm:"type:varchar(50);not null" json:"request_status_id"`
	RequestStatus   RequestStatus   `gorm:"foreignKey:RequestStatusID" json:"-"`
	RequestDetails  []RequestDetail `gorm:"foreignKey:RequestID" json:"request_details"`
	CreatedAt       time.Time       `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"autoUpdateTime" json:"updated_at"`
}

func (r *Request) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// RequestDetail is a line item of one request revision. Rows live and
// die with their parent revision.
type RequestDetail struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	RequestID uuid.UUID `gorm:"type:uuid;not null;index" json:"request_id"`
	Request   Request   `gorm:"foreignKey:RequestID" json:"-"`
	ProductID uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Product   Product   `gorm:"foreignKey:ProductID" json:"-"`
	Qty       int64     `gorm:"type:bigint;not null" json:"qty"`
}

func (d *RequestDetail) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
