package ticketfeed

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_RoutesByOwnership(t *testing.T) {
	h := NewHub()
	adminCh, cancelAdmin := h.Subscribe(1, true)
	defer cancelAdmin()
	ownerCh, cancelOwner := h.Subscribe(7, false)
	defer cancelOwner()
	otherCh, cancelOther := h.Subscribe(8, false)
	defer cancelOther()

	ev := Event{CustomerID: 7, Message: Message{ID: 1, TicketID: 1, SenderID: 1}}
	h.Publish(ev)

	require.Len(t, adminCh, 1)
	assert.Equal(t, ev, <-adminCh)
	require.Len(t, ownerCh, 1)
	assert.Equal(t, ev, <-ownerCh)
	assert.Empty(t, otherCh)
}

func TestHub_SlowConsumerDropsInsteadOfBlocking(t *testing.T) {
	h := NewHub()
	ch, cancel := h.Subscribe(1, true)
	defer cancel()

	for i := 0; i < 40; i++ {
		h.Publish(Event{CustomerID: 1, Message: Message{ID: uint(i + 1), TicketID: 1}})
	}
	// buffer holds 16, the rest were dropped, Publish never stalled
	assert.Len(t, ch, 16)
}

func TestHub_CancelIsIdempotent(t *testing.T) {
	h := NewHub()
	_, cancel := h.Subscribe(1, false)
	assert.Equal(t, 1, h.Subscribers())

	cancel()
	cancel()
	assert.Equal(t, 0, h.Subscribers())
}
