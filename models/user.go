package models

import "time"

type User struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Name     string `gorm:"size:100;not null" json:"name"`
	Email    string `gorm:"size:191;uniqueIndex;not null" json:"email"`
	Password string `gorm:"size:255;not null" json:"-"`
	Role     string `gorm:"type:enum('CFC_ADMIN','CFC_MANAGER','OUR_ADMIN','OUR_MANAGER','OUR_USER');not null" json:"role"`
	OrgType  string `gorm:"type:enum('CFC','OUR');not null" json:"org_type"`
	IsActive bool   `gorm:"not null;default:true" json:"is_active"`
	// Profile picture object key, when uploaded
	Profile   *string   `gorm:"type:varchar(255)" json:"profile,omitempty"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

func (User) TableName() string {
	return "users"
}

// Principal is the authenticated identity attached to a request.
type Principal struct {
	ID      uint   `json:"id"`
	Name    string `json:"name"`
	Role    string `json:"role"`
	OrgType string `json:"org_type"`
}
