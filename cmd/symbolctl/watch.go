package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/fsnotify/fsnotify"
)

func runWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	var opts convertOptions
	var out string
	finish := convertFlags(fs, &opts, &out)
	if err := fs.Parse(args); err != nil {
		return &usageError{err: err}
	}
	if err := finish(); err != nil {
		return err
	}
	if fs.NArg() != 1 || out == "" || out == "-" {
		return usageErrorf("watch needs one input file and an -o output file")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	return watch(ctx, fs.Arg(0), out, opts, nil)
}

// watch converts input into out now and again after every write to input,
// until ctx is done. ready, if set, is closed once the watcher is armed.
func watch(ctx context.Context, input, out string, opts convertOptions, ready chan<- struct{}) error {
	absInput, err := filepath.Abs(input)
	if err != nil {
		return err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	// Watch the directory: editors often replace the file rather than
	// writing it in place.
	if err := watcher.Add(filepath.Dir(absInput)); err != nil {
		return fmt.Errorf("watch %s: %w", input, err)
	}

	rebuild := func() {
		data, err := os.ReadFile(absInput)
		if err != nil {
			slog.Error("read input", "file", input, "error", err)
			return
		}
		body, err := convert(data, opts)
		if err != nil {
			slog.Error("convert", "file", input, "error", err)
			return
		}
		if err := writeOutput(out, body, nil); err != nil {
			slog.Error("write output", "file", out, "error", err)
			return
		}
		slog.Info("exported", "input", input, "output", out, "format", opts.format)
	}

	rebuild()
	if ready != nil {
		close(ready)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if abs, _ := filepath.Abs(event.Name); abs != absInput {
				continue
			}
			rebuild()
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			slog.Warn("watcher error", "error", err)
		}
	}
}
