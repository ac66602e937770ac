package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/voicelist/internal/alice"
	"github.com/MrSnakeDoc/voicelist/internal/domain"
	"github.com/MrSnakeDoc/voicelist/internal/httpserver/deps"
	"github.com/MrSnakeDoc/voicelist/internal/logger"
)

// maxWebhookBody caps the inbound request body.
const maxWebhookBody = 64 << 10

// Webhook answers the dialogue platform. It always responds 200 with a
// well-formed body; a body that cannot be decoded gets the apology reply.
func Webhook(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req alice.Request
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxWebhookBody)).Decode(&req); err != nil {
			d.Logger.Warn("malformed webhook body",
				logger.String("request_id", middleware.GetReqID(r.Context())),
				logger.Error(domain.WrapError(domain.ErrCodeInvalid, "invalid payload", err)))
			reply := d.Engine.Failure()
			writeJSON(w, d.Logger, http.StatusOK, alice.NewResponse(reply.Text, reply.EndSession))
			return
		}

		reply := d.Engine.Handle(r.Context(), req.UserID(), req.Command())
		writeJSON(w, d.Logger, http.StatusOK, alice.NewResponse(reply.Text, reply.EndSession))
	}
}
