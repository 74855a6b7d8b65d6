package main

import (
	"os"

	"github.com/oriondb/oriondb/internal/catalog"
	"github.com/oriondb/oriondb/internal/engine"
	"github.com/oriondb/oriondb/internal/oriorerr"
	"github.com/oriondb/oriondb/internal/reactive"
	"github.com/oriondb/oriondb/internal/storage"
)

// openCatalog loads dbPath if it exists, or starts an empty catalog on
// first use — the CLI has no separate "init" subcommand, mirroring how
// kuzu's shell lazily creates a database directory on first connect.
func openCatalog(path string) (*catalog.Catalog, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return catalog.New(), nil
		}
		return nil, oriorerr.Wrap(oriorerr.IO, "", err)
	}
	snap, err := catalog.LoadFromPath(path)
	if err != nil {
		return nil, err
	}
	return catalog.NewFromSnapshot(snap), nil
}

func saveCatalog(cat *catalog.Catalog, path string) error {
	return cat.Snapshot().PersistToFile(path)
}

// newEngine builds a one-shot Engine for a single CLI invocation: an
// in-memory Store (the CLI process owns no persistent row storage yet —
// spec.md's *Storage* collaborator stays external) and a Registry that no
// admin client is attached to, since this path never serves /progress.
func newEngine(cat *catalog.Catalog) *engine.Engine {
	store := storage.NewMemStore()
	reg := reactive.NewRegistry()
	deps := reactive.Deps{Broadcast: func(*reactive.Job, string, any) {}}
	return engine.New(cat, store, reg, deps)
}
