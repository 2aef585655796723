package remote

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a failed cart operation against the backend.
type ErrorKind string

const (
	// KindNotAuthenticated means the session token was missing or no
	// longer valid; callers should treat it as session expiry.
	KindNotAuthenticated ErrorKind = "not_authenticated"

	// KindVariantUnavailable means stock ran out or the variant was
	// retired between read and write; callers should refresh the cart.
	KindVariantUnavailable ErrorKind = "variant_unavailable"

	// KindTransient covers network and server failures with no state
	// change; safe to retry. The client itself never retries.
	KindTransient ErrorKind = "transient"
)

// OpError is the only error type cart operations return besides nil.
type OpError struct {
	Kind    ErrorKind
	Message string
}

func (e *OpError) Error() string {
	return fmt.Sprintf("cart operation failed (%s): %s", e.Kind, e.Message)
}

// IsKind reports whether err is an OpError of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var opErr *OpError
	return errors.As(err, &opErr) && opErr.Kind == kind
}
