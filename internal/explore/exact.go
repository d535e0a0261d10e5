package explore

import (
	"errors"
	"io/fs"
	"os"

	"github.com/just1ngray/jfswatch/internal/util"
)

// ExactExplorer watches a single literal path. The path not existing is
// meaningful state, not an error: its later creation is reported as new.
type ExactExplorer struct {
	path     string
	warnings *util.Limiter
}

func NewExact(path string, warnings *util.Limiter) *ExactExplorer {
	return &ExactExplorer{path: path, warnings: warnings}
}

func (e *ExactExplorer) Source() string {
	return e.path
}

func (e *ExactExplorer) Explore(res *Resolution) {
	info, err := os.Stat(e.path)
	if err == nil {
		res.Found(e.path, info.ModTime())
		return
	}
	if errors.Is(err, fs.ErrNotExist) {
		return
	}

	// Permission denied or similar: the path may well still exist, so it
	// must not look deleted this cycle.
	warn(e.warnings, "cannot stat watched path", "path", e.path, "error", err)
	res.Exclude(e.path)
}
