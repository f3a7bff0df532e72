package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/open-ce/envlint/pkg/console"
	"github.com/open-ce/envlint/pkg/fileutil"
	"github.com/open-ce/envlint/pkg/logger"
	"github.com/open-ce/envlint/pkg/validation"
)

var watchLog = logger.New("cli:watch")

// debounceDelay coalesces the burst of filesystem events editors emit for a
// single save into one validation run.
const debounceDelay = 200 * time.Millisecond

// watchAndValidate validates once, then re-validates whenever one of the env
// files changes. The watch loop never exits with a violation status; it runs
// until the context is canceled.
func watchAndValidate(ctx context.Context, validator *validation.Validator, paths []string, jsonOutput bool) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("unable to create file watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the containing directories rather than the files themselves:
	// editors typically replace files on save, which drops a file-level
	// watch.
	watched, err := fileutil.ExpandPaths(paths)
	if err != nil {
		return err
	}
	watchedFiles := make(map[string]bool, len(watched))
	dirSeen := make(map[string]bool)
	for _, path := range watched {
		watchedFiles[path] = true
		dir := filepath.Dir(path)
		if dirSeen[dir] {
			continue
		}
		dirSeen[dir] = true
		if err := watcher.Add(dir); err != nil {
			return fmt.Errorf("unable to watch %s: %w", dir, err)
		}
	}

	runOnce := func() {
		report, err := validator.Validate(ctx, paths)
		if err != nil {
			fmt.Fprintln(os.Stderr, console.FormatErrorMessage(err.Error()))
			return
		}
		printWatchResult(report, jsonOutput)
	}

	fmt.Fprintln(os.Stderr, console.FormatInfoMessage(fmt.Sprintf("Watching %d env file(s) for changes...", len(watched))))
	runOnce()

	var debounce *time.Timer
	pending := make(chan struct{}, 1)
	for {
		select {
		case <-ctx.Done():
			watchLog.Print("Watch loop canceled")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !watchedFiles[filepath.Clean(event.Name)] {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			watchLog.Printf("Change detected: %s (%s)", event.Name, event.Op)
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceDelay, func() {
				select {
				case pending <- struct{}{}:
				default:
				}
			})
		case <-pending:
			runOnce()
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			fmt.Fprintln(os.Stderr, console.FormatWarningMessage(fmt.Sprintf("Watcher error: %v", watchErr)))
		}
	}
}

func printWatchResult(report *validation.Report, jsonOutput bool) {
	if jsonOutput {
		// The JSON report shape is shared with one-shot mode.
		data, err := report.MarshalJSON()
		if err == nil {
			fmt.Println(string(data))
		}
		return
	}
	if report.HasViolations() {
		header := fmt.Sprintf("Found %d validation violation(s):", report.Len())
		fmt.Fprintln(os.Stderr, console.FormatErrorMessage(console.FormatList(header, report.Messages())))
		return
	}
	fmt.Fprintln(os.Stderr, console.FormatSuccessMessage("All env files valid"))
}
