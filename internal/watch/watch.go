// Package watch backs `fip run --watch`: it re-runs a file (relying on
// EvaluateFile's own fresh module cache per run to pick up edits) whenever
// fsnotify reports the file was written, standing in for an editor's
// live-reload expectations without attempting a full editor integration.
package watch

import (
	"fmt"

	"github.com/fsnotify/fsnotify"

	"github.com/fippli/fip/internal/cache"
)

// Run calls onChange once immediately, then again every time path's content
// actually changes, until the watcher errors or the process is interrupted.
// It blocks the calling goroutine.
//
// Editors commonly emit more than one fsnotify Write event per save; Run
// de-duplicates those with an in-memory content-hash table (internal/cache)
// so onChange only fires on a genuine content change.
func Run(path string, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("fip run --watch: %w", err)
	}
	defer w.Close()

	if err := w.Add(path); err != nil {
		return fmt.Errorf("fip run --watch: %w", err)
	}

	hashes := cache.New()
	hashes.Changed(path) // seed the initial hash before the first run
	onChange()
	for {
		select {
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) {
				continue
			}
			if !hashes.Changed(path) {
				continue
			}
			onChange()
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			fmt.Println("fip run --watch:", err)
		}
	}
}
