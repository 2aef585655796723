package web

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Umesh8907/anuraga-pickles-sub000/internal/auth"
)

const guestCookieName = "ap_guest_cart"

// MergeState lets the middleware ask whether a guest cart already merged,
// so it can drop the guest cookie afterwards.
type MergeState interface {
	Merged(guestID string) bool
}

// SessionMiddleware builds the auth session for each request and
// publishes the anonymous-to-authenticated transition when it sees a
// logged-in request still carrying a guest cart cookie.
//
// The edge proxy validates the bearer token and forwards the user ID in
// X-User-ID; token issuance and validation stay with the backend.
func SessionMiddleware(notifier *auth.Notifier, mergeState MergeState) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			guestID := guestIDFromCookie(r)

			sess := auth.Session{State: auth.Anonymous, GuestID: guestID}
			if token := bearerToken(r); token != "" {
				if userID := r.Header.Get("X-User-ID"); userID != "" {
					sess = auth.Session{
						State:   auth.Authenticated,
						UserID:  userID,
						GuestID: guestID,
						Token:   token,
					}
				}
			}

			if !sess.IsAuthenticated() && guestID == "" {
				// First visit: issue a guest cart identity
				sess.GuestID = uuid.New().String()
				http.SetCookie(w, &http.Cookie{
					Name:     guestCookieName,
					Value:    sess.GuestID,
					Path:     "/",
					MaxAge:   int((30 * 24 * time.Hour).Seconds()),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := auth.WithSession(r.Context(), sess)

			if sess.IsAuthenticated() && guestID != "" {
				if !mergeState.Merged(guestID) {
					notifier.Notify(ctx, auth.Session{State: auth.Anonymous, GuestID: guestID}, sess)
				}
				if mergeState.Merged(guestID) {
					// Merge done: the guest cart no longer exists
					http.SetCookie(w, &http.Cookie{
						Name:   guestCookieName,
						Value:  "",
						Path:   "/",
						MaxAge: -1,
					})
				}
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func guestIDFromCookie(r *http.Request) string {
	cookie, err := r.Cookie(guestCookieName)
	if err != nil {
		return ""
	}
	return cookie.Value
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(header, "Bearer ")
}

// RequestIDMiddleware adds a unique request ID to each request
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = fmt.Sprintf("req-%d", time.Now().UnixNano())
		}

		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

type requestIDKey struct{}

func requestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}
