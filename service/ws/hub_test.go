package ws

import (
	"sync"
	"testing"
	"time"
)

func newTestClient(h *Hub, timelineID uint) *Client {
	return &Client{
		Hub:        h,
		Send:       make(chan []byte, 4),
		TimelineID: timelineID,
	}
}

func receiveOrFail(t *testing.T, c *Client) []byte {
	t.Helper()
	select {
	case msg := <-c.Send:
		return msg
	case <-time.After(time.Second):
		t.Fatalf("no message received within a second")
		return nil
	}
}

func TestBroadcastReachesTimelineSubscribers(t *testing.T) {
	h := NewHub()
	go h.Run()

	a := newTestClient(h, 1)
	b := newTestClient(h, 1)
	other := newTestClient(h, 2)
	h.Register <- a
	h.Register <- b
	h.Register <- other

	h.BroadcastPost(1, map[string]string{"type": "post"})

	receiveOrFail(t, a)
	receiveOrFail(t, b)

	select {
	case msg := <-other.Send:
		t.Fatalf("subscriber of another timeline received %q", msg)
	default:
	}
}

// Clients disconnecting while broadcasts are in flight must never crash the
// broadcasting goroutine: delivery and channel close are serialized on the
// hub goroutine.
func TestBroadcastDuringUnregister(t *testing.T) {
	h := NewHub()
	go h.Run()

	clients := make([]*Client, 0, 200)
	for i := 0; i < 200; i++ {
		c := newTestClient(h, 1)
		h.Register <- c
		clients = append(clients, c)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				h.BroadcastPost(1, "x")
			}
		}()
	}
	for _, c := range clients {
		h.Unregister <- c
	}
	wg.Wait()

	// The hub must still deliver to a fresh subscriber.
	late := newTestClient(h, 1)
	h.Register <- late
	h.BroadcastPost(1, "y")
	receiveOrFail(t, late)
}

func TestSlowConsumerIsDropped(t *testing.T) {
	h := NewHub()
	go h.Run()

	slow := &Client{Hub: h, Send: make(chan []byte), TimelineID: 1}
	h.Register <- slow

	// An unbuffered channel with no reader cannot accept the delivery.
	h.BroadcastPost(1, "x")

	// A follow-up broadcast proves the hub moved on; the dropped client's
	// channel is closed.
	witness := newTestClient(h, 1)
	h.Register <- witness
	h.BroadcastPost(1, "y")
	receiveOrFail(t, witness)

	select {
	case _, open := <-slow.Send:
		if open {
			t.Fatalf("slow consumer still receiving after drop")
		}
	case <-time.After(time.Second):
		t.Fatalf("slow consumer's channel was not closed")
	}
}
