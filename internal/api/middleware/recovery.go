package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/mcoot/peoplebingo/internal/api/apierr"
	"github.com/mcoot/peoplebingo/internal/middleware"
)

// Recovery creates panic recovery middleware for the API.
// Regular requests get a JSON INTERNAL_ERROR; event streams are left alone
// since their headers are already on the wire.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return middleware.Recovery(logger, apiPanicHandler)
}

func apiPanicHandler(w http.ResponseWriter, r *http.Request, _ any) {
	if isStreamRequest(r) {
		return
	}
	apierr.WriteError(w, apierr.NewInternalError())
}

func isStreamRequest(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket") ||
		strings.Contains(r.Header.Get("Accept"), "text/event-stream")
}
