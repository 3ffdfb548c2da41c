package eventbus

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"searchy/internal/domain"
)

func TestPublishDeliversInOrder(t *testing.T) {
	b := New()
	defer b.Close()

	var mu sync.Mutex
	var got []uint64
	done := make(chan struct{})
	b.Subscribe(EventSearchDispatched, func(e DomainEvent) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, e.(domain.SearchDispatchedEvent).Query.Seq)
		if len(got) == 3 {
			close(done)
		}
	})

	for seq := uint64(1); seq <= 3; seq++ {
		b.Publish(domain.SearchDispatchedEvent{Query: domain.SearchQuery{Seq: seq}})
	}

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("events were not delivered")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []uint64{1, 2, 3}, got)
}

func TestUnsubscribeStopsDelivery(t *testing.T) {
	b := New()
	defer b.Close()

	calls := make(chan string, 4)
	unsubscribe := b.Subscribe(EventSearchFailed, func(DomainEvent) { calls <- "first" })
	b.Subscribe(EventSearchFailed, func(DomainEvent) { calls <- "second" })
	unsubscribe()

	b.Publish(domain.SearchFailedEvent{})

	select {
	case c := <-calls:
		require.Equal(t, "second", c)
	case <-time.After(2 * time.Second):
		t.Fatal("remaining handler was not called")
	}
	select {
	case c := <-calls:
		t.Fatalf("unexpected delivery to %s", c)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHandlerPanicIsRecovered(t *testing.T) {
	b := New()
	defer b.Close()

	delivered := make(chan struct{})
	b.Subscribe(EventConfigSaved, func(DomainEvent) { panic("boom") })
	b.Subscribe(EventConfigSaved, func(DomainEvent) { close(delivered) })

	b.Publish(domain.ConfigSavedEvent{Path: "x"})

	select {
	case <-delivered:
	case <-time.After(2 * time.Second):
		t.Fatal("handler after the panicking one was not called")
	}
}

func TestPublishAfterCloseIsNoop(t *testing.T) {
	b := New()
	b.Close()
	assert.NotPanics(t, func() {
		b.Publish(domain.ConfigSavedEvent{})
		b.Close()
	})
}
