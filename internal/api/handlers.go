package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"
)

const pullTimeout = 30 * time.Minute

type Handlers struct {
	runtime Runtime
}

type pullRequest struct {
	Name string `json:"name"`
}

func NewHandlers(rt Runtime) *Handlers {
	return &Handlers{runtime: rt}
}

func (h *Handlers) HandleHealthz(w http.ResponseWriter, r *http.Request) {
	response := map[string]bool{"ok": true}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}

func (h *Handlers) HandleSysInfo(w http.ResponseWriter, r *http.Request) {
	rec := h.runtime.Record()
	if rec == nil {
		http.Error(w, "no capability record loaded", http.StatusServiceUnavailable)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(rec)
}

func (h *Handlers) HandleStatus(w http.ResponseWriter, r *http.Request) {
	sel := h.runtime.Selection()
	state := h.runtime.State()

	response := map[string]any{
		"run_id":       state.RunID,
		"container_id": state.ContainerID,
		"status":       state.Status,
		"mode":         sel.Mode,
		"cpu_flag":     sel.CPUFlag,
		"gpu_flag":     sel.GPUFlag,
		"ollama_ready": h.runtime.ServerReady(r.Context()),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(response)
}

func (h *Handlers) HandlePullModel(w http.ResponseWriter, r *http.Request) {
	var req pullRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Name == "" {
		http.Error(w, "name field is required", http.StatusBadRequest)
		return
	}

	go func() {
		// The request context dies with this handler; the pull runs on.
		ctx, cancel := context.WithTimeout(context.Background(), pullTimeout)
		defer cancel()
		if err := h.runtime.PullModel(ctx, req.Name); err != nil {
			log.Printf("ERROR: Failed to pull model %s: %v", req.Name, err)
		} else {
			log.Printf("Model %s pulled successfully in background.", req.Name)
		}
	}()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_, _ = w.Write([]byte(`{"message": "Model pull started"}`))
}
