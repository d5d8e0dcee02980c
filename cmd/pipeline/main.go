package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/coreos/go-systemd/daemon"
	"github.com/google/uuid"
	"github.com/spf13/pflag"

	"github.com/sparrowup/ollama-pipeline/internal/api"
	"github.com/sparrowup/ollama-pipeline/internal/client"
	"github.com/sparrowup/ollama-pipeline/internal/orchestrator"
	"github.com/sparrowup/ollama-pipeline/internal/pipeline"
	"github.com/sparrowup/ollama-pipeline/internal/storage"
)

const readyTimeout = 2 * time.Minute

func main() {
	var (
		sysConfig string
		imageTag  string
		pullModel string
		apiPort   int
		probeOnly bool
		stateFile string
		modelDir  string
	)
	pflag.StringVar(&sysConfig, "sys_config", "./config.toml", "Path to the system configuration file")
	pflag.StringVar(&imageTag, "image-tag", "latest", "Tag of the ollama/ollama image to run")
	pflag.StringVar(&pullModel, "pull", "", "Model to pull once the server is ready")
	pflag.IntVar(&apiPort, "api-port", 11435, "Port for the local status API")
	pflag.BoolVar(&probeOnly, "probe-only", false, "Derive the execution flags and exit without starting a container")
	pflag.StringVar(&stateFile, "state-file", defaultStateFile(), "Path to the launcher run-state file")
	pflag.StringVar(&modelDir, "model-dir", defaultModelDir(), "Host directory for the ollama model cache")
	pflag.Parse()

	logger := log.New(os.Stdout, "PIPELINE | ", log.LstdFlags)
	logger.Println("Starting ollama pipeline...")

	p := pipeline.New(logger, sysConfig)

	sel, rec, err := p.Select(context.Background())
	if err != nil {
		logger.Fatalf("FATAL: Failed to derive execution mode: %v", err)
	}

	if probeOnly {
		logger.Printf("Selected backend: %s. Exiting (probe-only).", sel.Mode)
		return
	}

	if err := os.MkdirAll(filepath.Dir(stateFile), 0755); err != nil {
		logger.Fatalf("FATAL: Failed to create state dir: %v", err)
	}
	store := storage.NewStore(stateFile)
	if err := store.Load(); err != nil {
		logger.Fatalf("FATAL: Failed to load run state: %v", err)
	}

	orch, err := orchestrator.New(logger)
	if err != nil {
		logger.Fatalf("FATAL: Failed to initialize orchestrator: %v", err)
	}

	// A previous launcher run may have left its container behind.
	if prev := store.Get(); prev.ContainerID != "" {
		logger.Printf("Removing leftover container %s from a previous run...", prev.ContainerID)
		if err := orch.StopServer(context.Background(), prev.ContainerID); err != nil {
			logger.Printf("Warning: failed to remove leftover container: %v", err)
		}
		if err := store.Clear(); err != nil {
			logger.Printf("Warning: failed to clear stale run state: %v", err)
		}
	}

	runID := uuid.NewString()
	state := storage.RunState{
		RunID:   runID,
		Mode:    string(sel.Mode),
		Status:  storage.StatusStarting,
		APIPort: apiPort,
	}
	if err := store.Save(state); err != nil {
		logger.Fatalf("FATAL: Failed to save run state: %v", err)
	}

	containerID, err := orch.StartServer(context.Background(), orchestrator.ServeOptions{
		ImageTag: imageTag,
		Mode:     sel.Mode,
		Port:     orchestrator.DefaultPort,
		ModelDir: modelDir,
	})
	if err != nil {
		_ = store.Clear()
		logger.Fatalf("FATAL: Failed to start ollama server: %v", err)
	}

	state.ContainerID = containerID
	if err := store.Save(state); err != nil {
		logger.Fatalf("FATAL: Failed to save run state: %v", err)
	}

	ollama := client.New(fmt.Sprintf("http://127.0.0.1:%d", orchestrator.DefaultPort), nil)

	logger.Println("Waiting for ollama server to become ready...")
	readyCtx, cancelReady := context.WithTimeout(context.Background(), readyTimeout)
	err = ollama.WaitReady(readyCtx)
	cancelReady()
	if err != nil {
		_ = orch.StopServer(context.Background(), containerID)
		_ = store.Clear()
		logger.Fatalf("FATAL: %v", err)
	}

	version, _ := ollama.Version(context.Background())
	logger.Printf("Ollama server ready (version %s) on port %d.", version, orchestrator.DefaultPort)

	state.Status = storage.StatusRunning
	if err := store.Save(state); err != nil {
		logger.Printf("Warning: failed to save run state: %v", err)
	}

	if pullModel != "" {
		logger.Printf("Pulling model %s...", pullModel)
		if err := ollama.PullModel(context.Background(), pullModel); err != nil {
			logger.Printf("Warning: model pull failed: %v", err)
		} else {
			logger.Printf("Model %s pulled.", pullModel)
		}
	}

	rt := pipeline.NewRuntime(rec, sel, store, ollama)
	httpServer := api.NewServer(apiPort, rt)
	logger.Printf("Status API configured on port %d.", apiPort)

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("FATAL: Could not start status API server: %v", err)
		}
	}()

	if interval, err := daemon.SdWatchdogEnabled(false); err == nil && interval > 0 {
		go func() {
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for range ticker.C {
				daemon.SdNotify(false, daemon.SdNotifyWatchdog)
			}
		}()
		logger.Println("Systemd watchdog enabled.")
	}

	daemon.SdNotify(false, daemon.SdNotifyReady)
	logger.Println("Pipeline is ready and supervising the ollama server.")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Println("Shutdown signal received. Shutting down gracefully...")

	daemon.SdNotify(false, daemon.SdNotifyStopping)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Printf("Warning: status API forced to shutdown: %v", err)
	}

	if err := orch.StopServer(ctx, containerID); err != nil {
		logger.Fatalf("FATAL: Failed to stop ollama server container: %v", err)
	}
	if err := store.Clear(); err != nil {
		logger.Printf("Warning: failed to clear run state: %v", err)
	}

	logger.Println("Pipeline shut down successfully.")
}

func defaultStateFile() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".ollama-pipeline", "state.json")
	}
	return "ollama-pipeline-state.json"
}

func defaultModelDir() string {
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".ollama-pipeline", "models")
	}
	return ""
}
