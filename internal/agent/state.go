package agent

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

const (
	machineIDFile = "machine_id"
	snapshotFile  = "last_sent.json"
)

// ensureMachineID loads the persisted machine identity, generating and
// saving one on first run. The ID is assigned once and never regenerated.
func ensureMachineID(stateDir string) (string, error) {
	path := filepath.Join(stateDir, machineIDFile)

	b, err := os.ReadFile(path)
	if err == nil {
		id := strings.TrimSpace(string(b))
		if id != "" {
			return id, nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", err
	}

	if err := os.MkdirAll(stateDir, 0700); err != nil {
		return "", err
	}
	id := uuid.NewString()
	if err := os.WriteFile(path, []byte(id+"\n"), 0600); err != nil {
		return "", err
	}
	return id, nil
}

// loadSnapshot returns the last-sent snapshot, or nil when none exists yet.
func loadSnapshot(stateDir string) (*Snapshot, error) {
	b, err := os.ReadFile(filepath.Join(stateDir, snapshotFile))
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		// A corrupt snapshot means we cannot trust the change detection
		// baseline; treat it as first run.
		return nil, nil
	}
	return &s, nil
}

func saveSnapshot(stateDir string, s *Snapshot) error {
	if err := os.MkdirAll(stateDir, 0700); err != nil {
		return err
	}
	b, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(stateDir, snapshotFile), b, 0600)
}
