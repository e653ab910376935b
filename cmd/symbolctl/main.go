// Command symbolctl converts symbol drawings between path data, annotated
// path data and SVG, watches files for re-export, and issues development
// tokens for the server.
//
// Usage:
//
//	symbolctl convert [-format f] [-absolute] [-origin x,y] [-o out] [input]
//	symbolctl watch [-format f] [-absolute] [-origin x,y] -o out input
//	symbolctl token [-subject s] [-ttl d]
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }

func usageErrorf(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

const usage = `usage: symbolctl <command> [flags]

commands:
  convert   convert path data or an SVG file to combined, annotated, or svg output
  watch     re-run convert whenever the input file is written
  token     issue a development JWT for the server
`

func main() {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})))

	if err := run(os.Args[1:], os.Stdin, os.Stdout); err != nil {
		var uerr *usageError
		if errors.As(err, &uerr) {
			fmt.Fprintf(os.Stderr, "symbolctl: %v\n\n%s", err, usage)
			os.Exit(2)
		}
		slog.Error("symbolctl failed", "error", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return usageErrorf("missing command")
	}
	switch cmd, rest := args[0], args[1:]; cmd {
	case "convert":
		return runConvert(rest, stdin, stdout)
	case "watch":
		return runWatch(rest)
	case "token":
		return runToken(rest, stdout)
	case "help", "-h", "--help":
		fmt.Fprint(stdout, usage)
		return nil
	default:
		return usageErrorf("unknown command %q", cmd)
	}
}
