// Package command renders the configured command for a detected change and
// runs it synchronously.
package command

import (
	"strings"
	"time"

	"github.com/just1ngray/jfswatch/internal/watchfs"
)

// MTimeFormat is how $mtime renders: RFC 3339 with nanoseconds.
const MTimeFormat = time.RFC3339Nano

// Template is the configured command argv. Each argument may contain the
// tokens $diff/${diff}, $path/${path} and $mtime/${mtime}, replaced
// per change record at render time.
//
// Replacement is plain text substitution, never shell evaluation. Any
// other $VAR sequence passes through untouched so the spawned command can
// still see it. For deleted paths $mtime renders as the empty string: the
// file is gone, so no modification time exists.
type Template struct {
	argv []string
}

func NewTemplate(argv []string) *Template {
	return &Template{argv: argv}
}

// Argv returns the unrendered argument list.
func (t *Template) Argv() []string {
	return t.argv
}

// Render substitutes the change record into every argument.
func (t *Template) Render(change watchfs.Change) []string {
	diff := change.Kind.String()
	mtime := ""
	if change.Kind != watchfs.Deleted {
		mtime = change.MTime.Format(MTimeFormat)
	}

	rendered := make([]string, len(t.argv))
	for i, arg := range t.argv {
		rendered[i] = substitute(arg, diff, change.Path, mtime)
	}
	return rendered
}

// substitute scans arg for the three recognized variables. This is an
// explicit token match rather than generic interpolation: unknown
// variables must survive unchanged.
func substitute(arg, diff, path, mtime string) string {
	var b strings.Builder
	b.Grow(len(arg))

	for i := 0; i < len(arg); {
		c := arg[i]
		if c != '$' {
			b.WriteByte(c)
			i++
			continue
		}

		rest := arg[i+1:]
		matched := false
		for _, v := range []struct{ name, value string }{
			{"diff", diff},
			{"path", path},
			{"mtime", mtime},
		} {
			if strings.HasPrefix(rest, v.name) {
				b.WriteString(v.value)
				i += 1 + len(v.name)
				matched = true
				break
			}
			braced := "{" + v.name + "}"
			if strings.HasPrefix(rest, braced) {
				b.WriteString(v.value)
				i += 1 + len(braced)
				matched = true
				break
			}
		}
		if !matched {
			b.WriteByte('$')
			i++
		}
	}

	return b.String()
}
