package storage

import (
	"path/filepath"
	"testing"
)

func TestLoadMissingFileIsIdle(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "state.json"))
	if err := s.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := s.Get().Status; got != StatusIdle {
		t.Errorf("status = %q, want idle", got)
	}
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s := NewStore(path)
	want := RunState{
		RunID:       "run-1234",
		ContainerID: "abcdef012345",
		Mode:        "gpu",
		Status:      StatusRunning,
		APIPort:     11435,
	}
	if err := s.Save(want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	fresh := NewStore(path)
	if err := fresh.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got := fresh.Get(); got != want {
		t.Errorf("state = %+v, want %+v", got, want)
	}
}

func TestClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")

	s := NewStore(path)
	if err := s.Save(RunState{RunID: "x", Status: StatusRunning}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if got := s.Get().Status; got != StatusIdle {
		t.Errorf("status after clear = %q, want idle", got)
	}

	// Clearing again is fine even though the file is gone.
	if err := s.Clear(); err != nil {
		t.Fatalf("second Clear failed: %v", err)
	}
}
