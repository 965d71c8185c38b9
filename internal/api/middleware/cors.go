package middleware

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/rs/cors"
)

// CORS allows browser clients from the given origins. An empty list or a
// "*" entry allows every origin. Rejected requests are logged at debug.
func CORS(allowedOrigins []string, logger *slog.Logger) func(http.Handler) http.Handler {
	origins := make([]string, 0, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o = strings.TrimSuffix(strings.TrimSpace(o), "/"); o != "" {
			origins = append(origins, o)
		}
	}

	c := cors.New(cors.Options{
		AllowedOrigins:       origins,
		AllowedMethods:       []string{http.MethodGet, http.MethodPost},
		AllowedHeaders:       []string{"Accept", "Content-Type"},
		MaxAge:               600,
		OptionsSuccessStatus: http.StatusNoContent,
		Logger:               slog.NewLogLogger(logger.With(slog.String("component", "cors")).Handler(), slog.LevelDebug),
	})
	return c.Handler
}
