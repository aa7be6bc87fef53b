package axl

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrMissingConfiguration marks calls to an endpoint whose URL was never configured.
	ErrMissingConfiguration = errors.New("missing backend configuration")
	// ErrUnauthenticated marks calls rejected because the session token is absent or expired.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidResponse marks 2xx responses that do not carry the fields the caller needs.
	ErrInvalidResponse = errors.New("invalid backend response")
)

// MissingConfigError reports the endpoint whose URL is empty.
type MissingConfigError struct {
	Endpoint string
}

func (e *MissingConfigError) Error() string {
	return fmt.Sprintf("missing backend URL for %s", e.Endpoint)
}

func (e *MissingConfigError) Unwrap() error {
	return ErrMissingConfiguration
}

// RemoteError is a non-2xx response from the league backend. Message is the
// backend's own message when it sent one.
type RemoteError struct {
	Op      string
	Status  int
	Message string
}

func (e *RemoteError) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrUnauthenticated) match 401 responses.
func (e *RemoteError) Is(target error) bool {
	return target == ErrUnauthenticated && e.Status == http.StatusUnauthorized
}

// NetworkError is a transport failure before any response arrived.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s: no se pudo conectar con el servidor", e.Op)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// remoteMessage picks the backend's message, then its error field, then a
// generic "<op> error <status>" text.
func remoteMessage(op string, status int, payload *errorPayload) string {
	if payload != nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return fmt.Sprintf("%s error %d", op, status)
}

type errorPayload struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}
