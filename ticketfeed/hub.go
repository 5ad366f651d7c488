package ticketfeed

import "sync"

// Event is what the live subscription delivers: a newly created
// message plus enough context to route it.
type Event struct {
	Message    Message `json:"message"`
	CustomerID uint    `json:"customer_id"` // ticket owner
}

// Hub fans newly created messages out to connected subscribers. Sends
// never block: a subscriber that cannot keep up loses events rather
// than stalling the publisher.
type Hub struct {
	mu   sync.Mutex
	subs map[chan Event]subscriber
}

type subscriber struct {
	userID  uint
	isAdmin bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[chan Event]subscriber)}
}

// Subscribe registers a listener. Admins receive every event,
// customers only events on their own tickets. The returned cancel
// func closes the channel and must be called exactly once.
func (h *Hub) Subscribe(userID uint, isAdmin bool) (<-chan Event, func()) {
	ch := make(chan Event, 16)
	h.mu.Lock()
	h.subs[ch] = subscriber{userID: userID, isAdmin: isAdmin}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subs[ch]; ok {
			delete(h.subs, ch)
			close(ch)
		}
		h.mu.Unlock()
	}
	return ch, cancel
}

// Publish delivers the event to every eligible subscriber.
func (h *Hub) Publish(ev Event) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch, sub := range h.subs {
		if !sub.isAdmin && sub.userID != ev.CustomerID {
			continue
		}
		select {
		case ch <- ev:
		default: // slow consumer, drop
		}
	}
}

// Subscribers returns the current listener count.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}
