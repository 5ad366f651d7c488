package models

import "time"

const (
	TicketOpen   = "open"
	TicketClosed = "closed"

	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

type Ticket struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CustomerID uint      `gorm:"column:customer_id;not null;index" json:"customer_id"`
	Customer   AppUser   `gorm:"foreignKey:CustomerID;constraint:OnDelete:CASCADE" json:"-"`
	Subject    string    `gorm:"column:subject;size:255;not null" json:"subject"`
	Priority   string    `gorm:"column:priority;size:10;default:'medium'" json:"priority"`
	Status     string    `gorm:"column:status;size:10;default:'open'" json:"status"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	Messages []Message `gorm:"foreignKey:TicketID" json:"messages,omitempty"`
}

func (Ticket) TableName() string {
	return "tickets"
}

type Message struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	TicketID  uint      `gorm:"not null;index" json:"ticket_id"`
	Ticket    Ticket    `gorm:"foreignKey:TicketID;constraint:OnDelete:CASCADE" json:"-"`
	SenderID  uint      `gorm:"not null" json:"sender_id"`
	Sender    AppUser   `gorm:"foreignKey:SenderID" json:"-"`
	Body      string    `gorm:"type:text;not null" json:"body"`
	Seen      bool      `gorm:"default:false" json:"seen"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}
