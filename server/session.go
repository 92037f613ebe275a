package server

import (
	"context"
	"time"

	"github.com/markuplab/playground/debounce"
	"github.com/markuplab/playground/store"
)

// session is one client's playground state: the shared editable-text slot
// plus the debouncer that feeds it. The store is created empty on session
// entry and reset to empty on teardown; the debouncer is the store's only
// writer, the preview forwarder its reader.
type session struct {
	store     *store.Store
	debouncer *debounce.Debouncer
	ctx       context.Context
	cancel    context.CancelFunc
}

// newSession wires a fresh store to a debouncer scoped to the parent
// context. Cancellation of the parent (server shutdown) or of the session
// itself (client disconnect) both guarantee the countdown never fires
// afterwards.
func newSession(parent context.Context, quiet time.Duration) *session {
	ctx, cancel := context.WithCancel(parent)
	st := store.New()

	return &session{
		store:     st,
		debouncer: debounce.New(ctx, quiet, st.Set),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// teardown cancels any pending publish and clears the store. Runs on
// every session exit path.
func (sn *session) teardown() {
	sn.debouncer.Stop()
	sn.cancel()
	sn.store.Reset()
}
