package auth

import (
	"context"
	"sync"
)

// Listener receives session state transitions.
type Listener func(ctx context.Context, from, to Session)

// Notifier fans session transitions out to subscribed listeners. The web
// layer publishes a transition when it sees a session change shape (a
// guest arriving authenticated); listeners such as the merge coordinator
// react to it.
type Notifier struct {
	mu        sync.RWMutex
	listeners []Listener
}

func NewNotifier() *Notifier {
	return &Notifier{}
}

func (n *Notifier) Subscribe(l Listener) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.listeners = append(n.listeners, l)
}

// Notify delivers the transition to every listener synchronously, in
// subscription order.
func (n *Notifier) Notify(ctx context.Context, from, to Session) {
	n.mu.RLock()
	listeners := make([]Listener, len(n.listeners))
	copy(listeners, n.listeners)
	n.mu.RUnlock()

	for _, l := range listeners {
		l(ctx, from, to)
	}
}
