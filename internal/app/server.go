package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/oriondb/oriondb/internal/adminapi"
	"github.com/oriondb/oriondb/internal/catalog"
	"github.com/oriondb/oriondb/internal/engine"
	"github.com/oriondb/oriondb/internal/reactive"
	"github.com/oriondb/oriondb/internal/storage"
	"go.uber.org/zap"
)

// Server is the admin HTTP surface over one in-process Engine: catalog
// listing, job-progress WebSockets, and (eventually) a statement endpoint
// once a wire protocol is layered on top of internal/binder + internal/engine.
type Server struct {
	httpServer *http.Server
	Catalog    *catalog.Catalog
	Store      *storage.MemStore
	Registry   *reactive.Registry
	Engine     *engine.Engine
}

// NewServer wires one Catalog, one in-memory Store, and the job Registry
// into an Engine, then hands the Registry to adminapi's router so admin
// clients can list tables and stream COPY progress.
func NewServer() *Server {
	cat := catalog.New()
	store := storage.NewMemStore()
	reg := reactive.NewRegistry()

	deps := reactive.Deps{
		Broadcast: func(job *reactive.Job, msgType string, payload any) {
			job.Mu.RLock()
			defer job.Mu.RUnlock()
			for cl := range job.Clients {
				if err := cl.Send(msgType, payload); err != nil {
					zap.L().Warn("broadcast_failed", zap.String("job_id", job.ID), zap.Error(err))
				}
			}
		},
	}
	eng := engine.New(cat, store, reg, deps)

	mux := adminapi.SetupRoutes(cat, reg)
	return &Server{
		httpServer: &http.Server{
			Addr:    ":8080",
			Handler: mux,
		},
		Catalog:  cat,
		Store:    store,
		Registry: reg,
		Engine:   eng,
	}
}

// Run starts the HTTP server and blocks until SIGINT/SIGTERM, then drains
// in-flight requests before returning.
func (s *Server) Run() error {
	go func() {
		log.Printf("Listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}
