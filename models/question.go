package models

const (
	QuestionText       = "text"
	QuestionNumber     = "number"
	QuestionSelect     = "select"
	QuestionDate       = "date"
	QuestionImage      = "image"
	QuestionCheckbox   = "checkbox"
	QuestionAttachment = "attachment"
)

type Question struct {
	ID       uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	GroupID  uint   `json:"group_id"`
	Group    Group  `gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE" json:"-"`
	Title    string `gorm:"size:255;not null" json:"title"`
	Label    string `gorm:"size:255" json:"label"`
	Order    int    `gorm:"column:sort_order;default:0" json:"order"`
	Required bool   `gorm:"default:false" json:"required"`
	Type     string `gorm:"size:20;not null" json:"type"`

	SelectOptions []SelectOption `gorm:"foreignKey:QuestionID" json:"select_options,omitempty"`
	Submissions   []Submission   `gorm:"foreignKey:QuestionID" json:"-"`
}

func (Question) TableName() string {
	return "questions"
}

type SelectOption struct {
	ID         uint     `gorm:"primaryKey;autoIncrement" json:"id"`
	QuestionID uint     `json:"question_id"`
	Question   Question `gorm:"foreignKey:QuestionID;constraint:OnDelete:CASCADE" json:"-"`
	Value      string   `gorm:"type:text;not null" json:"value"`
	Order      int      `gorm:"column:sort_order;default:0" json:"order"`
}

func (SelectOption) TableName() string {
	return "select_options"
}
