package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/voicelist/internal/catalog"
	"github.com/MrSnakeDoc/voicelist/internal/httpserver/deps"
	"github.com/MrSnakeDoc/voicelist/internal/logger"
)

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Results []catalog.Product `json:"results"`
}

// Search looks products up in the current catalog by short or full name.
func Search(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req searchRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&req); err != nil {
			writeJSON(w, d.Logger, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
			return
		}

		query := strings.TrimSpace(req.Query)
		if query == "" {
			writeJSON(w, d.Logger, http.StatusBadRequest, errorResponse{Error: "query is required"})
			return
		}

		results := d.Catalog.Current().Search(query, d.SearchLimit)
		if results == nil {
			results = []catalog.Product{}
		}

		d.Logger.Debug("product search",
			logger.String("query", query),
			logger.Int("results", len(results)))

		writeJSON(w, d.Logger, http.StatusOK, searchResponse{Results: results})
	}
}
