package controllers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/onboard-hq/onboard-server/config"
	"github.com/onboard-hq/onboard-server/middleware"
	"github.com/onboard-hq/onboard-server/models"
	"github.com/onboard-hq/onboard-server/ticketfeed"
)

// TicketHub fans new messages out to connected SSE clients.
var TicketHub = ticketfeed.NewHub()

type createTicketReq struct {
	Subject  string `json:"subject" binding:"required,min=1"`
	Priority string `json:"priority" binding:"omitempty,oneof=low medium high"`
	Body     string `json:"body"` // optional opening message
}

func CreateTicket(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.AppUser)

	var req createTicketReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}
	if req.Priority == "" {
		req.Priority = models.PriorityMedium
	}

	t := models.Ticket{
		CustomerID: u.ID,
		Subject:    req.Subject,
		Priority:   req.Priority,
		Status:     models.TicketOpen,
	}
	if err := config.DB.Create(&t).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not create ticket"})
		return
	}

	if req.Body != "" {
		m := models.Message{TicketID: t.ID, SenderID: u.ID, Body: req.Body}
		if err := config.DB.Create(&m).Error; err == nil {
			TicketHub.Publish(ticketfeed.Event{
				Message:    toFeedMessage(m),
				CustomerID: t.CustomerID,
			})
		}
	}

	c.JSON(http.StatusCreated, t)
}

func toFeedMessage(m models.Message) ticketfeed.Message {
	return ticketfeed.Message{
		ID:        m.ID,
		TicketID:  m.TicketID,
		SenderID:  m.SenderID,
		Body:      m.Body,
		Seen:      m.Seen,
		CreatedAt: m.CreatedAt,
	}
}

// buildFeed projects the caller's tickets into a ticketfeed.Feed.
// Admins see everything, customers only their own tickets.
func buildFeed(u models.AppUser) (*ticketfeed.Feed, error) {
	query := config.DB.Model(&models.Ticket{}).Preload("Customer").
		Preload("Messages", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC, id ASC") })
	if !u.IsAdmin() {
		query = query.Where("customer_id = ?", u.ID)
	}

	var tickets []models.Ticket
	if err := query.Find(&tickets).Error; err != nil {
		return nil, err
	}

	feed := ticketfeed.NewFeed(int64(u.ID))
	for _, t := range tickets {
		ft := ticketfeed.Ticket{
			ID:           t.ID,
			CustomerID:   t.CustomerID,
			CustomerName: t.Customer.Name,
			Subject:      t.Subject,
			Priority:     t.Priority,
			Status:       t.Status,
			CreatedAt:    t.CreatedAt,
		}
		for _, m := range t.Messages {
			ft.Messages = append(ft.Messages, toFeedMessage(m))
		}
		feed.Put(ft)
	}
	return feed, nil
}

// GET /api/tickets?sort=recency|name|priority&status=open&search=
func ListTickets(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.AppUser)

	feed, err := buildFeed(u)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not list tickets"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"tickets":          feed.Tickets(c.Query("sort"), c.Query("status"), c.Query("search")),
		"unread":           feed.UnreadCount(),
		"unread_by_ticket": feed.UnreadByTicket(),
	})
}

type postMessageReq struct {
	Body string `json:"body" binding:"required,min=1"`
}

// PostMessage appends to the ticket and broadcasts to subscribers.
func PostMessage(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.AppUser)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}

	var t models.Ticket
	if err := config.DB.First(&t, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Ticket not found"})
		return
	}
	if !u.IsAdmin() && t.CustomerID != u.ID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not your ticket"})
		return
	}
	if t.Status == models.TicketClosed {
		c.JSON(http.StatusConflict, gin.H{"message": "Ticket is closed"})
		return
	}

	var req postMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Invalid payload", "error": err.Error()})
		return
	}

	m := models.Message{TicketID: t.ID, SenderID: u.ID, Body: req.Body}
	if err := config.DB.Create(&m).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not post message"})
		return
	}
	config.DB.Model(&t).Update("updated_at", m.CreatedAt)

	TicketHub.Publish(ticketfeed.Event{Message: toFeedMessage(m), CustomerID: t.CustomerID})

	c.JSON(http.StatusCreated, m)
}

// MarkTicketRead marks all messages from other senders as seen.
func MarkTicketRead(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.AppUser)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}

	var t models.Ticket
	if err := config.DB.First(&t, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Ticket not found"})
		return
	}
	if !u.IsAdmin() && t.CustomerID != u.ID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not your ticket"})
		return
	}

	if err := config.DB.Model(&models.Message{}).
		Where("ticket_id = ? AND sender_id <> ? AND seen = ?", t.ID, u.ID, false).
		Update("seen", true).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not mark read"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "read"})
}

func CloseTicket(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.AppUser)

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return
	}

	var t models.Ticket
	if err := config.DB.First(&t, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"message": "Ticket not found"})
		return
	}
	if !u.IsAdmin() && t.CustomerID != u.ID {
		c.JSON(http.StatusForbidden, gin.H{"message": "Not your ticket"})
		return
	}

	if err := config.DB.Model(&t).Update("status", models.TicketClosed).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Could not close ticket"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "closed"})
}

// StreamTickets is the live subscription: one SSE event per new
// message until the client disconnects.
func StreamTickets(c *gin.Context) {
	u := c.MustGet(middleware.CtxUser).(models.AppUser)

	ch, cancel := TicketHub.Subscribe(u.ID, u.IsAdmin())
	defer cancel()

	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-ch:
			if !ok {
				return false
			}
			c.SSEvent("message", ev)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
