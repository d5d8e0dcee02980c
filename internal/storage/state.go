package storage

import (
	"encoding/json"
	"os"
	"sync"
)

const (
	StatusIdle     = "idle"
	StatusStarting = "starting"
	StatusRunning  = "running"
)

// RunState records the launcher's current container so a restarted process
// can tear down a leftover server.
type RunState struct {
	RunID       string `json:"run_id"`
	ContainerID string `json:"container_id"`
	Mode        string `json:"mode"`
	Status      string `json:"status"`
	APIPort     int    `json:"api_port,omitempty"`
}

type Store struct {
	path  string
	mu    sync.RWMutex
	state RunState
}

func NewStore(path string) *Store {
	return &Store{path: path, state: RunState{Status: StatusIdle}}
}

func (s *Store) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.state = RunState{Status: StatusIdle}
			return nil
		}
		return err
	}
	return json.Unmarshal(data, &s.state)
}

func (s *Store) Get() RunState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

func (s *Store) Save(state RunState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state

	data, _ := json.MarshalIndent(state, "", "  ")
	return os.WriteFile(s.path, data, 0644)
}

func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = RunState{Status: StatusIdle}

	err := os.Remove(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
