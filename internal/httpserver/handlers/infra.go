package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/voicelist/internal/httpserver/deps"
)

type componentStatus struct {
	OK             bool   `json:"ok"`
	ProductsLoaded *int   `json:"products_loaded,omitempty"`
	UsersKnown     *int   `json:"users_known,omitempty"`
	LastReload     string `json:"last_reload,omitempty"`
	Source         string `json:"source,omitempty"`
	Impact         string `json:"impact,omitempty"`
	Error          string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the state of the backing components.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		components := map[string]componentStatus{
			"redis":   checkRedis(ctx, d),
			"catalog": checkCatalog(d),
		}

		writeJSON(w, d.Logger, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

// determineMode: redis down stops every dialog turn; an empty catalog only
// disables shopping enrichment and product search.
func determineMode(components map[string]componentStatus) string {
	if redis, ok := components["redis"]; ok && !redis.OK {
		return "critical"
	}
	if cat, ok := components["catalog"]; ok && !cat.OK {
		return "degraded"
	}
	return "optimal"
}

func checkRedis(ctx context.Context, d deps.Deps) componentStatus {
	if d.RedisClient == nil {
		return componentStatus{
			OK:     false,
			Impact: "dialog-unavailable",
			Error:  "client not initialized",
		}
	}

	if err := d.RedisClient.Ping(ctx).Err(); err != nil {
		return componentStatus{
			OK:     false,
			Impact: "dialog-unavailable",
			Error:  err.Error(),
		}
	}

	status := componentStatus{OK: true}
	if d.Store != nil {
		if n, err := d.Store.CountUsers(ctx); err == nil {
			status.UsersKnown = &n
		}
	}
	return status
}

func checkCatalog(d deps.Deps) componentStatus {
	if d.Catalog == nil {
		return componentStatus{OK: false, Impact: "no-enrichment", Error: "catalog not initialized"}
	}

	count := d.Catalog.Count()
	lastReload := "never"
	if t := d.Catalog.GetLastReload(); !t.IsZero() {
		lastReload = t.Format("2006-01-02 15:04:05")
	}

	status := componentStatus{
		OK:             count > 0,
		ProductsLoaded: &count,
		LastReload:     lastReload,
		Source:         d.CatalogFile,
	}
	if count == 0 {
		status.Impact = "no-enrichment"
	}
	return status
}
