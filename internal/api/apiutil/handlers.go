package apiutil

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/codr1/axl-portal/internal/axl"
)

type HandlerError struct {
	Status  int
	Message string
	Err     error
}

func (e HandlerError) Error() string {
	return e.Message
}

func (e HandlerError) Unwrap() error {
	return e.Err
}

func WriteJSON(w http.ResponseWriter, status int, payload any) error {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	if err := encoder.Encode(payload); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err := w.Write(buf.Bytes())
	return err
}

// UserMessage turns a league backend failure into text for a toast or form
// alert. Backend messages are passed through as they are.
func UserMessage(err error, fallback string) string {
	var (
		remote  *axl.RemoteError
		network *axl.NetworkError
		handler HandlerError
	)
	switch {
	case err == nil:
		return ""
	case errors.As(err, &handler):
		return handler.Message
	case errors.Is(err, axl.ErrMissingConfiguration):
		return "El servicio no está configurado. Contactá a la organización."
	case errors.As(err, &remote) && remote.Message != "":
		return remote.Message
	case errors.As(err, &network):
		return "No se pudo conectar con el servidor. Intentá de nuevo."
	}
	return fallback
}

// SessionExpired reports whether the backend rejected the session token.
func SessionExpired(err error) bool {
	return errors.Is(err, axl.ErrUnauthenticated)
}
