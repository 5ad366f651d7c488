package models

// Group is the unit of conditional rendering: when ShowIfQuestionID is
// set, the group is only shown while the referenced question's answer
// matches (or mismatches) ShowIfValue. The reference is expected to
// point into the same template; enforced at creation, not at read time.
type Group struct {
	ID        uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	SectionID uint    `json:"section_id"`
	Section   Section `gorm:"foreignKey:SectionID;constraint:OnDelete:CASCADE" json:"-"`
	Title     string  `gorm:"size:255" json:"title"`
	Order     int     `gorm:"column:sort_order;default:0" json:"order"`

	ShowIfQuestionID *uint  `gorm:"column:show_if_question_id" json:"show_if_question_id"`
	ShowIfCondition  string `gorm:"column:show_if_condition;size:20" json:"show_if_condition"` // "equals" | "not equals"
	ShowIfValue      string `gorm:"column:show_if_value;type:text" json:"show_if_value"`

	Questions []Question `gorm:"foreignKey:GroupID" json:"questions,omitempty"`
}

func (Group) TableName() string {
	return "groups"
}
