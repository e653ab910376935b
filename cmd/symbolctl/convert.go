package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/wattline/wattline/backend-go/internal/document"
	"github.com/wattline/wattline/backend-go/internal/engine"
	"github.com/wattline/wattline/backend-go/internal/export"
	"github.com/wattline/wattline/backend-go/internal/pathdata"
)

type convertOptions struct {
	format   export.Format
	absolute bool
	origin   *document.Point
	width    float64
	height   float64
}

// convertFlags registers the flags shared by convert and watch.
func convertFlags(fs *flag.FlagSet, opts *convertOptions, out *string) func() error {
	format := fs.String("format", "combined", "output format: combined, annotated, or svg")
	origin := fs.String("origin", "", "symbol origin as x,y (default: derived from content)")
	fs.BoolVar(&opts.absolute, "absolute", false, "emit absolute coordinates instead of origin-relative ones")
	fs.Float64Var(&opts.width, "width", export.DefaultWidth, "svg canvas width")
	fs.Float64Var(&opts.height, "height", export.DefaultHeight, "svg canvas height")
	fs.StringVar(out, "o", "", "output file (default: stdout)")

	return func() error {
		f, err := export.ParseFormat(*format)
		if err != nil {
			return &usageError{err: err}
		}
		opts.format = f
		if *origin != "" {
			p, err := parsePoint(*origin)
			if err != nil {
				return &usageError{err: err}
			}
			opts.origin = &p
		}
		return nil
	}
}

func runConvert(args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
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
	if fs.NArg() > 1 {
		return usageErrorf("convert takes at most one input file")
	}

	var input []byte
	var err error
	if name := fs.Arg(0); name == "" || name == "-" {
		input, err = io.ReadAll(stdin)
	} else {
		input, err = os.ReadFile(name)
	}
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	body, err := convert(input, opts)
	if err != nil {
		return err
	}
	return writeOutput(out, body, stdout)
}

// convert parses input, either raw path data or an SVG document, and renders
// it in the requested format. Syntax errors that still leave shapes are
// logged as warnings.
func convert(input []byte, opts convertOptions) (string, error) {
	var shapes []document.Shape
	var perr error
	if trimmed := bytes.TrimSpace(input); bytes.HasPrefix(trimmed, []byte("<")) {
		shapes, perr = pathdata.ParseSVGDocument(bytes.NewReader(trimmed))
	} else {
		shapes, perr = pathdata.Parse(string(trimmed))
	}
	if perr != nil {
		if len(shapes) == 0 {
			return "", fmt.Errorf("parse input: %w", perr)
		}
		for _, line := range strings.Split(perr.Error(), "\n") {
			slog.Warn("skipped input", "reason", line)
		}
	}

	doc := document.Document{Shapes: shapes}
	if opts.origin != nil {
		doc.Origin = *opts.origin
	}
	e := engine.NewEngine()
	e.LoadDocument(doc)
	if opts.origin == nil {
		e.Layout()
	}

	res, err := export.Render(e, export.Options{
		Format:   opts.format,
		Relative: !opts.absolute,
		Width:    opts.width,
		Height:   opts.height,
	})
	if err != nil {
		return "", err
	}
	return res.Body, nil
}

func writeOutput(path, body string, stdout io.Writer) error {
	if !strings.HasSuffix(body, "\n") {
		body += "\n"
	}
	if path == "" || path == "-" {
		_, err := io.WriteString(stdout, body)
		return err
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func parsePoint(s string) (document.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return document.Point{}, fmt.Errorf("invalid point %q: want x,y", s)
	}
	x, err := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	if err != nil {
		return document.Point{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	y, err := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err != nil {
		return document.Point{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	return document.Point{X: x, Y: y}, nil
}
