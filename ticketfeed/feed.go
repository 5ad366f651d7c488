// Package ticketfeed maintains the in-memory view of support tickets
// that the live subscription feeds into: message merge with dedup,
// unread counts and the list orderings. Everything is derived state
// recomputed from the ticket collection; nothing here touches the DB.
package ticketfeed

import (
	"sort"
	"strings"
	"time"
)

type Message struct {
	ID        uint      `json:"id"`
	TicketID  uint      `json:"ticket_id"`
	SenderID  uint      `json:"sender_id"`
	Body      string    `json:"body"`
	Seen      bool      `json:"seen"`
	CreatedAt time.Time `json:"created_at"`
}

type Ticket struct {
	ID           uint      `json:"id"`
	CustomerID   uint      `json:"customer_id"`
	CustomerName string    `json:"customer_name"`
	Subject      string    `json:"subject"`
	Priority     string    `json:"priority"`
	Status       string    `json:"status"`
	CreatedAt    time.Time `json:"created_at"`
	Messages     []Message `json:"messages"`
}

// LastMessageAt falls back to the ticket's creation time when no
// message exists yet, so fresh tickets still sort by recency.
func (t *Ticket) LastMessageAt() time.Time {
	if len(t.Messages) == 0 {
		return t.CreatedAt
	}
	return t.Messages[len(t.Messages)-1].CreatedAt
}

// Feed is one user's view of the ticket collection.
type Feed struct {
	UserID  int64
	tickets map[uint]*Ticket
	order   []uint // insertion order, stable base for sorts
	seen    map[uint]bool
}

func NewFeed(userID int64) *Feed {
	return &Feed{
		UserID:  userID,
		tickets: make(map[uint]*Ticket),
		seen:    make(map[uint]bool),
	}
}

// Put registers or replaces a ticket and records its messages as seen
// message ids for dedup.
func (f *Feed) Put(t Ticket) {
	if _, ok := f.tickets[t.ID]; !ok {
		f.order = append(f.order, t.ID)
	}
	f.tickets[t.ID] = &t
	for _, m := range t.Messages {
		f.seen[m.ID] = true
	}
}

// Merge appends a delivered message to its ticket unless the message
// id was already merged. It reports whether the message was added and
// whether a notification should fire (added and sender is not the
// feed's user). Messages for unknown tickets are dropped.
func (f *Feed) Merge(m Message) (added bool, notify bool) {
	if f.seen[m.ID] {
		return false, false
	}
	t, ok := f.tickets[m.TicketID]
	if !ok {
		return false, false
	}
	t.Messages = append(t.Messages, m)
	f.seen[m.ID] = true
	return true, m.SenderID != uint(f.UserID)
}

// UnreadCount counts messages addressed to the feed's user that are
// not yet marked seen: on an admin feed, unseen customer messages; on
// a customer feed, unseen messages from anyone else.
func (f *Feed) UnreadCount() int {
	n := 0
	for _, t := range f.tickets {
		for _, m := range t.Messages {
			if !m.Seen && m.SenderID != uint(f.UserID) {
				n++
			}
		}
	}
	return n
}

// UnreadByTicket returns the per-ticket unread breakdown.
func (f *Feed) UnreadByTicket() map[uint]int {
	out := make(map[uint]int, len(f.tickets))
	for id, t := range f.tickets {
		n := 0
		for _, m := range t.Messages {
			if !m.Seen && m.SenderID != uint(f.UserID) {
				n++
			}
		}
		out[id] = n
	}
	return out
}

var priorityRank = map[string]int{"high": 0, "medium": 1, "low": 2}

// Tickets returns the tickets ordered by the given key ("name",
// "priority" or "recency") and filtered by status/search. Empty
// status or search match everything.
func (f *Feed) Tickets(sortBy, status, search string) []Ticket {
	out := make([]Ticket, 0, len(f.order))
	search = strings.ToLower(search)
	for _, id := range f.order {
		t := f.tickets[id]
		if status != "" && t.Status != status {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(t.Subject), search) &&
			!strings.Contains(strings.ToLower(t.CustomerName), search) {
			continue
		}
		out = append(out, *t)
	}

	switch sortBy {
	case "name":
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].CustomerName) < strings.ToLower(out[j].CustomerName)
		})
	case "priority":
		sort.SliceStable(out, func(i, j int) bool {
			return priorityRank[out[i].Priority] < priorityRank[out[j].Priority]
		})
	default: // recency of last message
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].LastMessageAt().After(out[j].LastMessageAt())
		})
	}
	return out
}
