package ginja

import (
	"os"
	"path/filepath"
)

// LoadDir walks dir non-recursively, registering every regular file it
// finds as a template under its base name (SPEC_FULL.md "Directory
// loader" — the core only ever consumes (name, source) pairs; this is the
// one concrete filesystem collaborator wired on top of it). Subdirectories
// are skipped and logged at DEBUG rather than treated as an error, mirroring
// the original's lack of recursive descent.
func LoadDir(env *Environment, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		wrapped := newIOError(dir, err, "reading template directory %q", dir)
		env.errs = append(env.errs, wrapped)
		return wrapped
	}

	for _, entry := range entries {
		if entry.IsDir() {
			logger.Debugf("skipping subdirectory %q in template directory %q", entry.Name(), dir)
			continue
		}
		path := filepath.Join(dir, entry.Name())
		body, err := os.ReadFile(path)
		if err != nil {
			wrapped := newIOError(entry.Name(), err, "reading template file %q", path)
			env.errs = append(env.errs, wrapped)
			continue
		}
		env.AddTemplate(entry.Name(), string(body))
	}
	return nil
}
