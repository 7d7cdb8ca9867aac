// Package workspace hands out per-request scratch directories under a shared root.
// Each directory is named by a random UUID; directories left behind by crashed
// requests are removed by [Manager.PruneStale].
package workspace

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/42Wor/Compress-image-M-dev/core"
	"github.com/google/uuid"
	"github.com/lmittmann/tint"
)

var ErrInvalidName = errors.New("invalid file name")

type Manager struct {
	root       string
	staleAfter time.Duration
}

// NewManager creates root if needed.
func NewManager(root string, staleAfter time.Duration) (*Manager, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("Failed to create workspace root: %w", err)
	}
	return &Manager{root: root, staleAfter: staleAfter}, nil
}

func (m *Manager) Root() string {
	return m.root
}

// Workspace is a scratch directory owned by a single request.
type Workspace struct {
	ID  string
	Dir string
}

// Create makes a new, empty workspace.
func (m *Manager) Create() (*Workspace, error) {
	id := uuid.NewString()
	dir := filepath.Join(m.root, id)
	if err := os.Mkdir(dir, 0o700); err != nil {
		return nil, fmt.Errorf("Failed to create workspace: %w", err)
	}
	return &Workspace{ID: id, Dir: dir}, nil
}

// PruneStale removes workspaces whose last modification is older than the manager's threshold.
// Only UUID-named directories are considered; anything else under root is left alone.
func (m *Manager) PruneStale() (int, error) {
	if m.staleAfter <= 0 {
		return 0, nil
	}
	entries, err := os.ReadDir(m.root)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("Failed to list workspaces: %w", err)
	}

	cutoff := time.Now().Add(-m.staleAfter)
	removed := 0
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := uuid.Parse(e.Name()); err != nil {
			continue
		}
		info, err := e.Info()
		if err != nil || info.ModTime().After(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(m.root, e.Name())); err != nil {
			slog.Error("Failed to remove stale workspace", tint.Err(err), "id", e.Name())
			continue
		}
		removed++
	}
	return removed, nil
}

// SaveUpload stores the client's upload under its sanitized name.
func (w *Workspace) SaveUpload(name string, data []byte) (string, error) {
	return w.write("", name, data)
}

// WriteOutput stores an encoded result under out/.
func (w *Workspace) WriteOutput(name string, data []byte) (string, error) {
	return w.write("out", name, data)
}

func (w *Workspace) write(subdir, name string, data []byte) (string, error) {
	safe := core.SafeFilename(name)
	if safe == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	path := filepath.Join(w.Dir, subdir, safe)
	if err := core.WriteFileAtomic(path, data); err != nil {
		return "", err
	}
	return path, nil
}

// Cleanup removes the workspace and everything in it. Safe to call more than once.
func (w *Workspace) Cleanup() error {
	return os.RemoveAll(w.Dir)
}
