package models

import "time"

type Media struct {
	ID           uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UploadedByID *uint     `json:"uploaded_by_id"`
	UploadedBy   *AppUser  `gorm:"foreignKey:UploadedByID;constraint:OnDelete:SET NULL" json:"-"`
	FileName     string    `gorm:"size:255;not null" json:"file_name"`
	MimeType     string    `gorm:"size:100" json:"mime_type"`
	Size         int64     `json:"size"`
	URL          string    `gorm:"type:text;not null" json:"url"`
	CreatedAt    time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Media) TableName() string {
	return "media"
}
