package models

import "time"

const (
	RoleAdmin    = "admin"
	RoleCustomer = "customer"
)

type AppUser struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:100;unique;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"` // bcrypt hash, never serialized
	Role      string    `gorm:"size:20;not null;default:'customer'" json:"role"`
	Company   string    `gorm:"size:150" json:"company"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Assignments []Assignment `gorm:"foreignKey:AppUserID" json:"-"`
	Submissions []Submission `gorm:"foreignKey:AnsweredByID" json:"-"`
	Tickets     []Ticket     `gorm:"foreignKey:CustomerID" json:"-"`
}

func (AppUser) TableName() string {
	return "app_users"
}

func (u *AppUser) IsAdmin() bool {
	return u.Role == RoleAdmin
}
