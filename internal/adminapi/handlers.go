package adminapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/oriondb/oriondb/internal/catalog"
	"github.com/oriondb/oriondb/internal/reactive"
	"github.com/oriondb/oriondb/internal/types"
)

// tableView is the JSON-friendly projection of catalog.TableSchema GET
// /catalog returns; the catalog's own types carry unexported mutator
// methods that don't belong on the wire.
type tableView struct {
	ID         types.TableId `json:"id"`
	Name       string        `json:"name"`
	Type       string        `json:"type"`
	Properties []propView    `json:"properties"`
}

type propView struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func toTableView(t catalog.TableSchema) tableView {
	props := make([]propView, 0, t.NumProperties())
	for _, p := range t.Properties() {
		props = append(props, propView{Name: p.Name, Type: p.DType.Kind.String()})
	}
	return tableView{
		ID:         t.TableID(),
		Name:       t.Name(),
		Type:       t.TableType().String(),
		Properties: props,
	}
}

func handleCatalog(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := cat.Snapshot()
		tables := snap.ListTables()
		views := make([]tableView, 0, len(tables))
		for _, t := range tables {
			views = append(views, toTableView(t))
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(views)
	}
}

func handleDescribeTable(cat *catalog.Catalog) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		idParam := chi.URLParam(r, "table")
		id, err := strconv.ParseUint(idParam, 10, 64)
		if err != nil {
			http.Error(w, "invalid table id", http.StatusBadRequest)
			return
		}
		snap := cat.Snapshot()
		schema, ok := snap.DescribeTable(types.TableId(id))
		if !ok {
			http.Error(w, "table not found", http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(toTableView(schema))
	}
}

func handleJobs(reg *reactive.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(reg.SnapshotView())
	}
}
