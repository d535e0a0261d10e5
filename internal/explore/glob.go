package explore

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"

	"github.com/just1ngray/jfswatch/internal/util"
)

// GlobExplorer watches every path matching an extended glob pattern.
//
// Pattern syntax follows github.com/gobwas/glob compiled with '/' as the
// separator: `*` matches within one path component, `?` matches one
// character, `[...]`/`[!...]` are character classes and `{a,b}` is
// alternation. A `**` component crosses components and may match zero of
// them, shell-globstar style: `src/**/*.rs` covers files directly in src
// as well as any depth below it. Matching is done against the path as
// written (relative patterns match relative paths), which lets the
// differ detect paths that stop matching via snapshot comparison.
type GlobExplorer struct {
	pattern  string
	compiled []glob.Glob
	root     string
	warnings *util.Limiter
}

// NewGlob compiles the pattern. A malformed pattern is a configuration
// error and fails startup.
func NewGlob(pattern string, warnings *util.Limiter) (*GlobExplorer, error) {
	// gobwas requires `**/` to consume a component, so each variant with
	// a `**` dropped is compiled too and a path may match any of them.
	variants := expandZeroDirs(pattern)
	compiled := make([]glob.Glob, 0, len(variants))
	for _, variant := range variants {
		g, err := glob.Compile(variant, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		compiled = append(compiled, g)
	}

	return &GlobExplorer{
		pattern:  pattern,
		compiled: compiled,
		root:     staticPrefix(pattern),
		warnings: warnings,
	}, nil
}

func (e *GlobExplorer) Source() string {
	return e.pattern
}

func (e *GlobExplorer) match(path string) bool {
	for _, g := range e.compiled {
		if g.Match(path) {
			return true
		}
	}
	return false
}

func (e *GlobExplorer) Explore(res *Resolution) {
	// A pattern without metacharacters degenerates to an exact lookup.
	if e.root == e.pattern {
		info, err := os.Stat(e.pattern)
		if err == nil {
			res.Found(e.pattern, info.ModTime())
		} else if !errors.Is(err, fs.ErrNotExist) {
			warn(e.warnings, "cannot stat glob target", "pattern", e.pattern, "error", err)
			res.Exclude(e.pattern)
		}
		return
	}

	err := filepath.WalkDir(e.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			warn(e.warnings, "cannot read path while expanding glob",
				"pattern", e.pattern, "path", path, "error", err)
			res.Exclude(path)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !e.match(path) {
			return nil
		}
		info, statErr := d.Info()
		if statErr != nil {
			// Raced with a deletion between readdir and stat; the next
			// cycle reports it.
			return nil
		}
		res.Found(path, info.ModTime())
		return nil
	})
	if err != nil {
		warn(e.warnings, "glob expansion failed", "pattern", e.pattern, "error", err)
		res.Exclude(e.root)
	}
}

// expandZeroDirs returns the pattern plus every variant with `**`
// components removed, so that `**` can also match zero directories.
// `a/**/b.txt` becomes {`a/**/b.txt`, `a/b.txt`}.
func expandZeroDirs(pattern string) []string {
	variants := [][]string{{}}
	for _, part := range strings.Split(pattern, "/") {
		if part == "**" {
			next := make([][]string, 0, len(variants)*2)
			for _, v := range variants {
				with := append(append([]string{}, v...), part)
				next = append(next, with, v)
			}
			variants = next
			continue
		}
		for i := range variants {
			variants[i] = append(append([]string{}, variants[i]...), part)
		}
	}

	seen := make(map[string]bool, len(variants))
	out := make([]string, 0, len(variants))
	for _, v := range variants {
		p := strings.Join(v, "/")
		if p == "" || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// staticPrefix returns the longest leading sequence of path components
// containing no glob metacharacters. It is the directory the walk starts
// from; "." when the pattern is metacharacter-first and relative.
func staticPrefix(pattern string) string {
	sep := string(filepath.Separator)

	var static []string
	for _, component := range strings.Split(pattern, "/") {
		if strings.ContainsAny(component, `*?[]{}\`) {
			break
		}
		static = append(static, component)
	}

	if len(static) == 0 {
		return "."
	}
	prefix := strings.Join(static, sep)
	if prefix == "" {
		// Absolute pattern with a metacharacter in the first component.
		return sep
	}
	if prefix == pattern {
		return pattern
	}
	return prefix
}
