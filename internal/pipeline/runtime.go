package pipeline

import (
	"context"

	"github.com/sparrowup/ollama-pipeline/internal/client"
	"github.com/sparrowup/ollama-pipeline/internal/mode"
	"github.com/sparrowup/ollama-pipeline/internal/storage"
	"github.com/sparrowup/ollama-pipeline/pkg/types"
)

// Runtime exposes the launcher's live state to the status API.
type Runtime struct {
	rec    *types.HostCapabilityRecord
	sel    mode.Selection
	store  *storage.Store
	ollama *client.OllamaClient
}

func NewRuntime(rec *types.HostCapabilityRecord, sel mode.Selection, store *storage.Store, ollama *client.OllamaClient) *Runtime {
	return &Runtime{rec: rec, sel: sel, store: store, ollama: ollama}
}

func (rt *Runtime) Record() *types.HostCapabilityRecord { return rt.rec }

func (rt *Runtime) Selection() mode.Selection { return rt.sel }

func (rt *Runtime) State() storage.RunState { return rt.store.Get() }

func (rt *Runtime) ServerReady(ctx context.Context) bool {
	_, err := rt.ollama.Version(ctx)
	return err == nil
}

func (rt *Runtime) PullModel(ctx context.Context, name string) error {
	return rt.ollama.PullModel(ctx, name)
}
