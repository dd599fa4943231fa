package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// cmdWatch runs the script once, then re-runs it on every change. The watch
// is on the script's directory, not the file, so editors that replace the
// file on save (rename + create) keep triggering.
func cmdWatch(args []string) int {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "usage: %s watch <file.wv> [args...]\n", appName)
		return 2
	}
	file := args[0]
	scriptArgs := args[1:]

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot start watcher: %v\n", appName, err)
		return 1
	}
	defer watcher.Close()

	dir := filepath.Dir(file)
	if err := watcher.Add(dir); err != nil {
		fmt.Fprintf(os.Stderr, "%s: cannot watch %s: %v\n", appName, dir, err)
		return 1
	}

	target, _ := filepath.Abs(file)
	runFile(file, scriptArgs)

	// Saves often arrive as bursts of events; collapse each burst into one
	// re-run.
	var pending *time.Timer
	rerun := make(chan struct{}, 1)

	for {
		select {
		case ev, ok := <-watcher.Events:
			if !ok {
				return 0
			}
			abs, _ := filepath.Abs(ev.Name)
			if abs != target {
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if pending != nil {
				pending.Stop()
			}
			pending = time.AfterFunc(100*time.Millisecond, func() {
				select {
				case rerun <- struct{}{}:
				default:
				}
			})
		case <-rerun:
			fmt.Fprintf(os.Stderr, "%s: %s changed, re-running\n", appName, file)
			runFile(file, scriptArgs)
		case err, ok := <-watcher.Errors:
			if !ok {
				return 0
			}
			fmt.Fprintf(os.Stderr, "%s: watch error: %v\n", appName, err)
		}
	}
}
