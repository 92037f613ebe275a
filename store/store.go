// Package store holds the playground's shared editable text: a single
// string slot written by the debounced sync and read by the preview. The
// slot keeps no history — only the latest value survives — and is created
// empty when a playground session starts and reset to empty when the
// session is torn down.
package store

import "sync"

// subscriberBuffer gives each subscriber room for one in-flight value.
// When a subscriber falls behind, the stale value is dropped in favor of
// the newest one: the preview only ever needs the latest document.
const subscriberBuffer = 1

// Store is a single shared text value with subscriber fan-out. Writes are
// atomic full-value replacements; readers always see either the old or the
// new complete value, never a partial one.
type Store struct {
	mu          sync.RWMutex
	value       string
	subscribers map[chan string]struct{}
}

// New creates an empty store.
func New() *Store {
	return &Store{
		subscribers: make(map[chan string]struct{}),
	}
}

// Get returns the current value.
func (s *Store) Get() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set replaces the value and notifies all subscribers. Sends happen
// under the lock: notify never blocks, and holding mu here means no
// channel can be closed by Unsubscribe mid-send.
func (s *Store) Set(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.value = text
	for ch := range s.subscribers {
		notify(ch, text)
	}
}

// Reset clears the value back to empty, notifying subscribers, so a
// freshly entered playground starts blank rather than showing stale
// content.
func (s *Store) Reset() {
	s.Set("")
}

// Subscribe registers a channel that receives every value written after
// this call. Slow subscribers observe latest-value semantics: unread
// intermediate values are replaced, not queued.
func (s *Store) Subscribe() chan string {
	ch := make(chan string, subscriberBuffer)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	s.mu.Unlock()

	return ch
}

// Unsubscribe removes a channel from the fan-out and closes it. Closure
// happens under the same lock Set sends under, so a concurrent write can
// never land on the closed channel. Callers must not close the channel
// themselves.
func (s *Store) Unsubscribe(ch chan string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.subscribers[ch]; !ok {
		return
	}
	delete(s.subscribers, ch)
	close(ch)
}

// notify delivers text to ch without blocking. If the buffer is full the
// stale value is drained and replaced with the newer one.
func notify(ch chan string, text string) {
	select {
	case ch <- text:
		return
	default:
	}

	select {
	case <-ch:
	default:
	}

	select {
	case ch <- text:
	default:
	}
}
