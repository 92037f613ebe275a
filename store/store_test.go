package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_StartsEmpty(t *testing.T) {
	s := New()
	assert.Equal(t, "", s.Get())
}

func TestStore_SetGet(t *testing.T) {
	s := New()

	s.Set("<p>hello</p>")
	assert.Equal(t, "<p>hello</p>", s.Get())

	s.Set("<p>replaced</p>")
	assert.Equal(t, "<p>replaced</p>", s.Get(), "only the latest value survives")
}

func TestStore_Reset(t *testing.T) {
	s := New()
	s.Set("<p>stale</p>")

	s.Reset()
	assert.Equal(t, "", s.Get())
}

func TestStore_SubscriberReceivesWrites(t *testing.T) {
	s := New()
	ch := s.Subscribe()
	defer s.Unsubscribe(ch)

	s.Set("<h1>hi</h1>")

	select {
	case got := <-ch:
		assert.Equal(t, "<h1>hi</h1>", got)
	case <-time.After(time.Second):
		t.Fatal("subscriber never notified")
	}
}

func TestStore_SlowSubscriberSeesLatestValue(t *testing.T) {
	s := New()
	ch := s.Subscribe()
	defer s.Unsubscribe(ch)

	// Burst of writes with nobody reading: intermediate values are
	// replaced, and the final value is what the subscriber observes.
	for i := 0; i < 10; i++ {
		s.Set(fmt.Sprintf("revision %d", i))
	}

	select {
	case got := <-ch:
		assert.Equal(t, "revision 9", got)
	case <-time.After(time.Second):
		t.Fatal("subscriber never notified")
	}
}

func TestStore_UnsubscribeStopsDelivery(t *testing.T) {
	s := New()
	ch := s.Subscribe()

	s.Unsubscribe(ch)
	s.Set("after unsubscribe")

	// The store owns channel closure: after Unsubscribe the channel is
	// closed and delivers nothing but the zero value.
	got, ok := <-ch
	assert.False(t, ok, "channel must be closed after Unsubscribe")
	assert.Equal(t, "", got)
}

func TestStore_UnsubscribeIdempotent(t *testing.T) {
	s := New()
	ch := s.Subscribe()

	s.Unsubscribe(ch)
	s.Unsubscribe(ch)
}

func TestStore_UnsubscribeDuringWrites(t *testing.T) {
	s := New()

	// A subscriber leaving while a writer is mid-burst must never see a
	// send land on its closed channel.
	var wg sync.WaitGroup
	stop := make(chan struct{})

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; ; i++ {
			select {
			case <-stop:
				return
			default:
				s.Set(fmt.Sprintf("revision %d", i))
			}
		}
	}()

	for i := 0; i < 500; i++ {
		ch := s.Subscribe()
		s.Unsubscribe(ch)
	}

	close(stop)
	wg.Wait()
}

func TestStore_ConcurrentReadersAndWriter(t *testing.T) {
	s := New()

	var wg sync.WaitGroup
	done := make(chan struct{})

	// One writer, many readers. Readers must always see a complete value.
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			s.Set(fmt.Sprintf("<p>%d</p>", i))
		}
		close(done)
	}()

	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					v := s.Get()
					if v != "" {
						require.Contains(t, v, "<p>")
						require.Contains(t, v, "</p>")
					}
				}
			}
		}()
	}

	wg.Wait()
}
