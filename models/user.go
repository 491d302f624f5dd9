package models

import (
	"time"

	"github.com/google/uuid"
)

// Roles assigned to users. Catalog browsing is public; cart and
// checkout require Customer, management and the dashboard require Admin.
const (
	RoleAdmin    = "Admin"
	RoleCustomer = "Customer"
)

// User model
type User struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email     string    `gorm:"unique;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Name      string    `gorm:"not null" json:"name"`
	Role      string    `gorm:"type:varchar(50);default:'Customer'" json:"role"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"-"`
}
