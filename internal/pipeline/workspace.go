package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Workspace is the scratch directory owning every artifact of one job. It is
// created before the first stage runs and removed on every exit path.
type Workspace struct {
	dir string
}

// NewWorkspace creates a uniquely-named scratch directory under root.
func NewWorkspace(root string) (*Workspace, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create work root: %w", err)
	}
	dir := filepath.Join(root, "job-"+uuid.NewString())
	if err := os.Mkdir(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

func (w *Workspace) Dir() string {
	return w.dir
}

// Path returns the location for a named artifact inside the workspace.
func (w *Workspace) Path(name string) string {
	return filepath.Join(w.dir, name)
}

// Cleanup removes the workspace and everything in it. Removal errors are
// ignored; the directory is scratch space and the job outcome is already
// decided by the time this runs.
func (w *Workspace) Cleanup() {
	_ = os.RemoveAll(w.dir)
}
