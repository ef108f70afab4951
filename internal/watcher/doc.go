// Package watcher provides real-time file system watching with automatic
// debouncing and gitignore-aware filtering.
//
// The package implements a hybrid watching strategy:
//   - Primary: fsnotify for efficient event-based watching
//   - Fallback: Polling for environments where fsnotify fails (network mounts, Docker volumes)
//
// Events are debounced to coalesce rapid changes from editors and sync
// clients, filtered against .gitignore patterns, and further filtered to
// paths with a recognized document format so the indexer is never woken
// for files it would skip anyway.
//
// Usage:
//
//	opts := watcher.DefaultOptions()
//	w, err := watcher.NewHybridWatcher(opts)
//	if err != nil {
//	    return err
//	}
//	defer w.Stop()
//
//	if err := w.Start(ctx, "/path/to/folder"); err != nil {
//	    return err
//	}
//
//	for event := range w.Events() {
//	    switch event.Operation {
//	    case watcher.OpCreate:
//	        // Handle file creation
//	    case watcher.OpModify:
//	        // Handle file modification
//	    case watcher.OpDelete:
//	        // Handle file deletion
//	    }
//	}
package watcher
