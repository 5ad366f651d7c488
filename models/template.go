package models

import "time"

type Template struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"column:name;size:255;not null" json:"name"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Status      string    `gorm:"column:status;size:20;default:'active'" json:"status"` // active | archived | deleted
	CreatedByID *uint     `gorm:"column:created_by_id" json:"created_by_id"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	CreatedBy *AppUser `gorm:"foreignKey:CreatedByID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`

	Sections    []Section    `gorm:"foreignKey:TemplateID" json:"sections,omitempty"`
	Assignments []Assignment `gorm:"foreignKey:TemplateID" json:"-"`
}

func (Template) TableName() string {
	return "templates"
}
