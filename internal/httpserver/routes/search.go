package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/voicelist/internal/httpserver/deps"
	"github.com/MrSnakeDoc/voicelist/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/voicelist/internal/httpserver/mw"
)

func init() { Register(registerSearch) }

func registerSearch(r chi.Router, d deps.Deps) {
	limit := mw.RateLimit(mw.RateLimitConfig{
		Burst:             d.SearchBurst,
		RefillPerIPPerMin: d.SearchRefillPerMin,
		MaxEntries:        10000,
		TrustProxy:        d.TrustProxy,
		Logger:            d.Logger,
	})
	r.With(limit).Post("/search", handlers.Search(d))
}
