package auth

import "context"

// State is the session mode reported by the auth collaborator. The cart
// subsystem observes it but never owns it: tokens are issued and validated
// by the commerce backend.
type State int

const (
	Anonymous State = iota
	Authenticated
)

// Session is a point-in-time view of one browser session. GuestID is
// present whenever the browser carries a guest-cart cookie, including
// right after login while the guest cart is still awaiting merge.
type Session struct {
	State   State
	UserID  string
	GuestID string
	Token   string
}

func (s Session) IsAuthenticated() bool {
	return s.State == Authenticated
}

type contextKey struct{}

// WithSession returns a new context carrying the session.
func WithSession(ctx context.Context, s Session) context.Context {
	return context.WithValue(ctx, contextKey{}, s)
}

// FromContext retrieves the session from context. The zero value is an
// anonymous session with no guest cart.
func FromContext(ctx context.Context) Session {
	if s, ok := ctx.Value(contextKey{}).(Session); ok {
		return s
	}
	return Session{}
}
