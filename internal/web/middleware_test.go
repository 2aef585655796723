package web

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Umesh8907/anuraga-pickles-sub000/internal/auth"
)

type mergeStateStub struct {
	mu          sync.Mutex
	merged      map[string]bool
	transitions []auth.Session
}

func newMergeStateStub() *mergeStateStub {
	return &mergeStateStub{merged: make(map[string]bool)}
}

func (m *mergeStateStub) Merged(guestID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.merged[guestID]
}

// observe mimics a coordinator that merges successfully on first sight
func (m *mergeStateStub) observe(_ context.Context, from, to auth.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.transitions = append(m.transitions, to)
	m.merged[to.GuestID] = true
}

func runSession(t *testing.T, state *mergeStateStub, prep func(*http.Request)) (*httptest.ResponseRecorder, auth.Session) {
	t.Helper()

	notifier := auth.NewNotifier()
	notifier.Subscribe(state.observe)

	var captured auth.Session
	handler := SessionMiddleware(notifier, state)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = auth.FromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	if prep != nil {
		prep(req)
	}
	handler.ServeHTTP(rec, req)
	return rec, captured
}

func TestSession_FirstVisitIssuesGuestCookie(t *testing.T) {
	rec, sess := runSession(t, newMergeStateStub(), nil)

	assert.Equal(t, auth.Anonymous, sess.State)
	require.NotEmpty(t, sess.GuestID)

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, guestCookieName, cookies[0].Name)
	assert.Equal(t, sess.GuestID, cookies[0].Value)
}

func TestSession_ReturningGuestKeepsID(t *testing.T) {
	rec, sess := runSession(t, newMergeStateStub(), func(r *http.Request) {
		r.AddCookie(&http.Cookie{Name: guestCookieName, Value: "g-existing"})
	})

	assert.Equal(t, "g-existing", sess.GuestID)
	assert.Empty(t, rec.Result().Cookies())
}

func TestSession_AuthenticatedRequest(t *testing.T) {
	_, sess := runSession(t, newMergeStateStub(), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer tok-1")
		r.Header.Set("X-User-ID", "user-1")
	})

	assert.Equal(t, auth.Authenticated, sess.State)
	assert.Equal(t, "user-1", sess.UserID)
	assert.Equal(t, "tok-1", sess.Token)
}

func TestSession_TokenWithoutUserIDStaysAnonymous(t *testing.T) {
	_, sess := runSession(t, newMergeStateStub(), func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer tok-1")
	})

	assert.Equal(t, auth.Anonymous, sess.State)
}

func TestSession_LoginWithGuestCartTriggersMerge(t *testing.T) {
	state := newMergeStateStub()

	rec, sess := runSession(t, state, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer tok-1")
		r.Header.Set("X-User-ID", "user-1")
		r.AddCookie(&http.Cookie{Name: guestCookieName, Value: "g1"})
	})

	require.Len(t, state.transitions, 1)
	assert.Equal(t, "user-1", state.transitions[0].UserID)
	assert.Equal(t, "g1", state.transitions[0].GuestID)
	assert.Equal(t, "g1", sess.GuestID)

	// Merge completed, so the guest cookie is expired
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, guestCookieName, cookies[0].Name)
	assert.Less(t, cookies[0].MaxAge, 0)
}

func TestSession_MergedGuestDoesNotRetrigger(t *testing.T) {
	state := newMergeStateStub()
	state.merged["g1"] = true

	runSession(t, state, func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer tok-1")
		r.Header.Set("X-User-ID", "user-1")
		r.AddCookie(&http.Cookie{Name: guestCookieName, Value: "g1"})
	})

	assert.Empty(t, state.transitions)
}

func TestRequestIDMiddleware(t *testing.T) {
	var got string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = requestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "req-fixed")
	handler.ServeHTTP(rec, req)

	assert.Equal(t, "req-fixed", got)
	assert.Equal(t, "req-fixed", rec.Header().Get("X-Request-ID"))
}
