// Package flash carries a one-shot notification across a redirect in a
// short-lived cookie. The next page that renders pops it.
package flash

import (
	"encoding/base64"
	"encoding/json"
	"net/http"
)

const cookieName = "axl_flash"

type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
	KindInfo    Kind = "info"
)

type Message struct {
	Kind Kind   `json:"k"`
	Text string `json:"t"`
}

func Success(text string) Message { return Message{Kind: KindSuccess, Text: text} }
func Error(text string) Message   { return Message{Kind: KindError, Text: text} }
func Info(text string) Message    { return Message{Kind: KindInfo, Text: text} }

// Set replaces any pending message.
func Set(w http.ResponseWriter, m Message) {
	raw, err := json.Marshal(m)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    base64.RawURLEncoding.EncodeToString(raw),
		Path:     "/",
		MaxAge:   60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop returns the pending message, if any, and expires the cookie.
func Pop(w http.ResponseWriter, r *http.Request) *Message {
	c, err := r.Cookie(cookieName)
	if err != nil || c.Value == "" {
		return nil
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	raw, err := base64.RawURLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil
	}
	var m Message
	if err := json.Unmarshal(raw, &m); err != nil || m.Text == "" {
		return nil
	}
	return &m
}
