package api

import (
	"context"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sparrowup/ollama-pipeline/internal/mode"
	"github.com/sparrowup/ollama-pipeline/internal/storage"
	"github.com/sparrowup/ollama-pipeline/pkg/types"
)

// Runtime is what the status API needs from the running launcher.
type Runtime interface {
	Record() *types.HostCapabilityRecord
	Selection() mode.Selection
	State() storage.RunState
	ServerReady(ctx context.Context) bool
	PullModel(ctx context.Context, name string) error
}

func NewServer(port int, rt Runtime) *http.Server {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	handlers := NewHandlers(rt)

	r.Get("/healthz", handlers.HandleHealthz)
	r.Get("/sysinfo", handlers.HandleSysInfo)
	r.Get("/status", handlers.HandleStatus)
	r.Post("/models/pull", handlers.HandlePullModel)

	return &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: r,
	}
}
