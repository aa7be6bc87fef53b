package apiutil

import (
	"bytes"
	"context"
	"io"
	"net/http"

	"github.com/a-h/templ"
	"github.com/rs/zerolog/log"

	"github.com/codr1/axl-portal/internal/api/htmx"
	"github.com/codr1/axl-portal/internal/flash"
	"github.com/codr1/axl-portal/internal/session"
	"github.com/codr1/axl-portal/internal/templates/layouts"
)

// RenderHTML buffers component so a render failure can still become a 500.
func RenderHTML(ctx context.Context, w http.ResponseWriter, status int, component templ.Component) bool {
	logger := log.Ctx(ctx)
	var buf bytes.Buffer
	if err := component.Render(ctx, &buf); err != nil {
		logger.Error().Err(err).Msg("Failed to render component")
		http.Error(w, "Failed to render page", http.StatusInternalServerError)
		return false
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Error().Err(err).Msg("Failed to write response")
	}
	return true
}

// RenderPage wraps content in the base layout, with any pending flash
// message and the signed-in username. Non-boosted htmx requests get the bare
// content. htmx only swaps 2xx responses, so they always get 200.
func RenderPage(w http.ResponseWriter, r *http.Request, status int, title string, content templ.Component) bool {
	if htmx.IsRequest(r) {
		status = http.StatusOK
		if r.Header.Get("HX-Boosted") == "" {
			return RenderHTML(r.Context(), w, status, content)
		}
	}
	page := layouts.Page{
		Title:   title,
		Flash:   flash.Pop(w, r),
		Content: content,
	}
	if sess, ok := session.FromContext(r.Context()); ok {
		page.User = sess.Username
	}
	return RenderHTML(r.Context(), w, status, layouts.Base(page))
}

// RenderFragment answers an htmx swap with content plus an out-of-band toast.
func RenderFragment(w http.ResponseWriter, r *http.Request, content templ.Component, m *flash.Message) bool {
	toast := layouts.Toast(m, true)
	return RenderHTML(r.Context(), w, http.StatusOK, templ.ComponentFunc(func(ctx context.Context, out io.Writer) error {
		if err := content.Render(ctx, out); err != nil {
			return err
		}
		_, err := io.WriteString(out, toast)
		return err
	}))
}
