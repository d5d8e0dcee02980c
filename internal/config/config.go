// Package config persists the host capability record as a TOML document with
// a single top-level "system_info" table.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"

	"github.com/sparrowup/ollama-pipeline/pkg/types"
)

// ErrNoSystemInfo reports a document that decodes but has no system_info
// table at all.
var ErrNoSystemInfo = errors.New("configuration has no system_info table")

type document struct {
	SystemInfo types.HostCapabilityRecord `toml:"system_info"`
}

func Save(path string, rec *types.HostCapabilityRecord) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(document{SystemInfo: *rec}); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}

func Load(path string) (*types.HostCapabilityRecord, error) {
	var doc document
	md, err := toml.DecodeFile(path, &doc)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	if !md.IsDefined("system_info") {
		return nil, fmt.Errorf("%s: %w", path, ErrNoSystemInfo)
	}
	return &doc.SystemInfo, nil
}
