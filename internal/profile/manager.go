// Package profile manages persistent browser profile directories so logged-in
// sessions survive across runs.
package profile

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/dstanley/viewport/internal/filelock"
)

// Info describes one stored profile.
type Info struct {
	Name      string    `json:"name"`
	Path      string    `json:"path"`
	CreatedAt time.Time `json:"created_at"`
	SizeMB    float64   `json:"size_mb"`
}

// Manager owns a directory of named browser profiles. The mutex serializes
// this process's own calls; cross-process exclusion is Acquire's job.
type Manager struct {
	baseDir string
	mu      sync.Mutex
}

// NewManager creates a manager rooted at baseDir, creating it if needed.
func NewManager(baseDir string) (*Manager, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create profile directory: %w", err)
	}
	return &Manager{baseDir: baseDir}, nil
}

// Dir returns the on-disk path for the named profile without creating it.
func (m *Manager) Dir(name string) string {
	return filepath.Join(m.baseDir, name)
}

// Ensure creates the named profile directory if it does not already exist
// and returns its path.
func (m *Manager) Ensure(name string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	dir := m.Dir(name)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create profile %q: %w", name, err)
	}
	return dir, nil
}

// List returns all stored profiles sorted by name.
func (m *Manager) List() ([]Info, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entries, err := os.ReadDir(m.baseDir)
	if err != nil {
		return nil, err
	}

	var profiles []Info
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(m.baseDir, entry.Name())
		fi, err := os.Stat(dir)
		if err != nil {
			continue
		}
		profiles = append(profiles, Info{
			Name:      entry.Name(),
			Path:      dir,
			CreatedAt: fi.ModTime(),
			SizeMB:    dirSizeMB(dir),
		})
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].Name < profiles[j].Name })
	return profiles, nil
}

// Reset deletes the named profile's stored state entirely. The profile
// directory itself is recreated empty so the name stays valid.
func (m *Manager) Reset(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	dir := m.Dir(name)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return fmt.Errorf("profile %q not found", name)
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to reset profile %q: %w", name, err)
	}
	return os.MkdirAll(dir, 0o755)
}

// Acquire takes the cross-process lock guarding the named profile, creating
// the profile if needed. It returns the profile path and a release func.
// A profile already locked by another process is an error; concurrent runs
// against the same browser profile corrupt its state.
func (m *Manager) Acquire(name string) (string, func(), error) {
	dir, err := m.Ensure(name)
	if err != nil {
		return "", nil, err
	}

	lock := filelock.NewFileLock(dir + ".lock")
	acquired, err := lock.TryLock()
	if err != nil {
		return "", nil, err
	}
	if !acquired {
		return "", nil, fmt.Errorf("profile %q is in use by another process", name)
	}

	release := func() { _ = lock.Unlock() }
	return dir, release, nil
}

func dirSizeMB(path string) float64 {
	var total int64
	filepath.WalkDir(path, func(_ string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return nil
		}
		info, err := entry.Info()
		if err == nil {
			total += info.Size()
		}
		return nil
	})
	return float64(total) / (1024 * 1024)
}
