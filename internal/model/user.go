package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Role ids found in the roles reference table. The set is closed:
// rows are seeded at startup and never created dynamically.
const (
	RoleUser        = "User"
	RoleCoordinator = "Coordinator"
	RoleAdmin       = "Admin"
)

// UserStatus ids found in the user_statuses reference table.
const (
	UserStatusPending  = "Pending"
	UserStatusApproved = "Approved"
	UserStatusRejected = "Rejected"
)

// Role is a static reference entity keyed by its display id.
type Role struct {
	ID string `gorm:"type:varchar(50);primaryKey" json:"id"`
}

// UserStatus is a static reference entity keyed by its display id.
type UserStatus struct {
	ID string `gorm:"type:varchar(50);primaryKey" json:"id"`
}

// User represents a portal account. Accounts created through the API
// always start in the Pending status regardless of the requested role.
type User struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string     `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	FirstName    string     `gorm:"type:varchar(255)" json:"first_name"`
	LastName     string     `gorm:"type:varchar(255)" json:"last_name"`
	RoleID       string     `gorm:"type:varchar(50);not null" json:"role_id"`
	Role         Role       `gorm:"foreignKey:RoleID" json:"-"`
	UserStatusID string     `gorm:"type:varchar(50);not null" json:"user_status_id"`
	UserStatus   UserStatus `gorm:"foreignKey:UserStatusID" json:"-"`
	Requests     []Request  `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

// BeforeCreate assigns the primary key so inserts work on every dialect.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
