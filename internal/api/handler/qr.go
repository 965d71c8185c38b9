package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/skip2/go-qrcode"

	"github.com/mcoot/peoplebingo/internal/api/apierr"
	"github.com/mcoot/peoplebingo/internal/api/response"
	"github.com/mcoot/peoplebingo/internal/model"
	"github.com/mcoot/peoplebingo/internal/services/session"
)

const (
	defaultQRSize = 320 // mobile-friendly size
	minQRSize     = 128
	maxQRSize     = 1024
)

// QRHandler serves QR codes that point players at a session's join page
type QRHandler struct {
	sessions  session.ControllerInterface
	publicURL string
}

// NewQRHandler creates a new QR handler. If publicURL is empty the join
// URL is derived from the request.
func NewQRHandler(sessions session.ControllerInterface, publicURL string) *QRHandler {
	return &QRHandler{
		sessions:  sessions,
		publicURL: strings.TrimSuffix(publicURL, "/"),
	}
}

// Get handles GET /api/games/{code}/qr
func (h *QRHandler) Get(w http.ResponseWriter, r *http.Request) {
	code := model.NormalizeCode(mux.Vars(r)["code"])

	exists, err := h.sessions.SessionExists(r.Context(), code)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}
	if !exists {
		apierr.WriteError(w, model.ErrSessionNotFound)
		return
	}

	size := defaultQRSize
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < minQRSize || n > maxQRSize {
			apierr.WriteError(w, apierr.NewInvalidRequestError("size must be between 128 and 1024"))
			return
		}
		size = n
	}

	png, err := qrcode.Encode(h.JoinURL(r, code), qrcode.Medium, size)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.Binary(w, "image/png", 3600, png)
}

// JoinURL returns the URL a player opens to join the session
func (h *QRHandler) JoinURL(r *http.Request, code model.SessionCode) string {
	base := h.publicURL
	if base == "" {
		// Respect TLS and X-Forwarded-Proto if present
		scheme := "http"
		if r.TLS != nil {
			scheme = "https"
		}
		if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
			scheme = proto
		}
		base = scheme + "://" + r.Host
	}
	return base + "/join/" + string(code)
}
