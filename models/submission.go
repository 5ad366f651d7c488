package models

import "time"

// Submission holds one answer per (question, user). The pair is kept
// unique by the update-or-create lookup in the customer controller,
// not by a DB constraint.
type Submission struct {
	ID           uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	QuestionID   uint      `gorm:"column:question_id;not null;index" json:"question_id"`
	Question     Question  `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"-"`
	AnsweredByID uint      `gorm:"column:answered_by_id;not null;index" json:"answered_by_id"`
	AnsweredBy   AppUser   `gorm:"foreignKey:AnsweredByID;constraint:OnDelete:CASCADE" json:"-"`
	Answer       string    `gorm:"column:answer;type:text" json:"answer"`
	CreatedAt    time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (Submission) TableName() string {
	return "submissions"
}
