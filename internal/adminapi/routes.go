// Package adminapi exposes the bulk-load admin/introspection surface:
// catalog listing and live job-progress WebSockets. Grounded directly on
// internal/api's chi + gorilla/websocket router, re-targeted from "live
// editable SQL queries over Postgres" to "catalog introspection and COPY
// job progress" (spec.md §6.4).
package adminapi

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oriondb/oriondb/internal/catalog"
	"github.com/oriondb/oriondb/internal/reactive"
)

// SetupRoutes wires the admin HTTP surface: GET /catalog, GET /jobs, and
// the WS /progress/{jobID} live-update endpoint.
func SetupRoutes(cat *catalog.Catalog, reg *reactive.Registry) http.Handler {
	r := chi.NewRouter()
	ws := &WSHandler{Registry: reg}

	r.Get("/progress/{jobID}", ws.HandleWS)

	r.Group(func(r chi.Router) {
		r.Use(LoggingMiddleware)
		r.Get("/catalog", handleCatalog(cat))
		r.Get("/catalog/{table}", handleDescribeTable(cat))
		r.Get("/jobs", handleJobs(reg))
	})

	return r
}
