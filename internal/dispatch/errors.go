package dispatch

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument matches (via errors.Is) every error returned for a nil
// provider or an empty provider id.
var ErrInvalidArgument = errors.New("invalid argument")

var (
	ErrAlreadyInitialized = errors.New("dispatch: already initialized")
	ErrShutdown           = errors.New("dispatch: service shut down")
)

// invalidArgumentError is returned by Register for unusable providers.
type invalidArgumentError struct{ msg string }

func (e invalidArgumentError) Error() string { return "invalid argument: " + e.msg }

func (e invalidArgumentError) Is(target error) bool { return target == ErrInvalidArgument }

// IsInvalidArgument reports whether err was caused by a nil provider or an
// empty provider id.
func IsInvalidArgument(err error) bool {
	var e invalidArgumentError
	return errors.As(err, &e)
}

// PanicError wraps a value recovered from a provider's Accept.
type PanicError struct {
	ProviderID string
	Value      any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("provider %s panicked: %v", e.ProviderID, e.Value)
}
