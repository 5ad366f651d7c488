package models

import "time"

const (
	AssignmentPending    = "pending"
	AssignmentInProgress = "inProgress"
	AssignmentSubmitted  = "submitted"
)

type Assignment struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	AppUserID  uint      `gorm:"column:app_user_id;not null;index" json:"app_user_id"`
	AppUser    AppUser   `gorm:"foreignKey:AppUserID;constraint:OnDelete:CASCADE" json:"-"`
	TemplateID uint      `gorm:"column:template_id;not null;index" json:"template_id"`
	Template   Template  `gorm:"foreignKey:TemplateID;constraint:OnDelete:CASCADE" json:"-"`
	Status     string    `gorm:"column:status;size:20;default:'pending'" json:"status"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Assignment) TableName() string {
	return "assignments"
}
