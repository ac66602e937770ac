package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/voicelist/internal/httpserver/deps"
	"github.com/MrSnakeDoc/voicelist/internal/httpserver/handlers"
)

func init() { Register(registerWebhook) }

func registerWebhook(r chi.Router, d deps.Deps) {
	h := handlers.Webhook(d)
	r.Post("/", h)
	r.Post("/alice", h)
	r.Post("/alice/", h)
}
