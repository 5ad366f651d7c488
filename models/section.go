package models

type Section struct {
	ID          uint     `gorm:"primaryKey;autoIncrement" json:"id"`
	TemplateID  uint     `json:"template_id"`
	Template    Template `gorm:"foreignKey:TemplateID;constraint:OnDelete:CASCADE" json:"-"`
	Title       string   `gorm:"size:255;not null" json:"title"`
	Description string   `gorm:"type:text" json:"description"`
	Order       int      `gorm:"column:sort_order;default:0" json:"order"`

	Groups []Group `gorm:"foreignKey:SectionID" json:"groups,omitempty"`
}

func (Section) TableName() string {
	return "sections"
}
