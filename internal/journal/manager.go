package journal

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/google/uuid"
)

// Manager maps run IDs to directories under RunsDir.
type Manager struct {
	RunsDir string
}

func NewManager(runsDir string) *Manager {
	return &Manager{RunsDir: runsDir}
}

func (m *Manager) RunPath(id string) string {
	return filepath.Join(m.RunsDir, id)
}

// LogPath returns the event log of a run.
func (m *Manager) LogPath(id string) string {
	return filepath.Join(m.RunPath(id), "log.jsonl")
}

// Create allocates a new run directory and returns its ID and log path.
func (m *Manager) Create() (string, string, error) {
	id := uuid.NewString()
	dir := m.RunPath(id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", "", fmt.Errorf("failed to create run directory %s: %w", dir, err)
	}
	return id, m.LogPath(id), nil
}

// Load checks that the run exists and returns its log path. IDs must be
// valid UUIDs so they cannot escape RunsDir.
func (m *Manager) Load(id string) (string, error) {
	if _, err := uuid.Parse(id); err != nil {
		return "", fmt.Errorf("invalid run id %q: %w", id, err)
	}
	path := m.RunPath(id)
	if stat, err := os.Stat(path); err != nil || !stat.IsDir() {
		return "", fmt.Errorf("run not found: %s", path)
	}
	return m.LogPath(id), nil
}

// List returns the IDs of every run directory, sorted.
func (m *Manager) List() ([]string, error) {
	entries, err := os.ReadDir(m.RunsDir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := uuid.Parse(e.Name()); err != nil {
			continue
		}
		ids = append(ids, e.Name())
	}
	sort.Strings(ids)
	return ids, nil
}
