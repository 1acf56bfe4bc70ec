package api

import (
	"net/http"

	"github.com/rs/cors"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
)

// BuildHandler assembles the full REST chain around the pipeline routes:
// CORS, request IDs, access logging and h2c for unencrypted HTTP/2.
func BuildHandler(h *Handler) http.Handler {
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	})

	return h2cHandler(RequestID(AccessLog(c.Handler(mux))))
}

func h2cHandler(handler http.Handler) http.Handler {
	return h2c.NewHandler(handler, &http2.Server{
		MaxConcurrentStreams: 250,
		MaxReadFrameSize:     1 << 20,
	})
}
