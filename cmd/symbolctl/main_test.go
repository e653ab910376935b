package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/wattline/wattline/backend-go/internal/auth"
	"github.com/wattline/wattline/backend-go/internal/document"
	"github.com/wattline/wattline/backend-go/internal/export"
)

func TestConvert(t *testing.T) {
	zero := &document.Point{}
	tests := []struct {
		name  string
		input string
		opts  convertOptions
		want  string
	}{
		{"path data", "M 0 0 L 10 0", convertOptions{origin: zero}, "M 0 0 L 10 0"},
		{"relative to origin", "M 0 0 L 10 0", convertOptions{origin: &document.Point{X: 5}}, "M -5 0 L 5 0"},
		{"absolute ignores origin", "M 0 0 L 10 0", convertOptions{origin: &document.Point{X: 5}, absolute: true}, "M 0 0 L 10 0"},
		{"derived origin", "M 1000 1000 L 1100 1000", convertOptions{}, "M -50 0 L 50 0"},
		{"svg document", `<svg xmlns="http://www.w3.org/2000/svg"><line x1="0" y1="0" x2="10" y2="0"/></svg>`, convertOptions{origin: zero}, "M 0 0 L 10 0"},
		{"partial input", "M 0 0 L 10 0 Q", convertOptions{origin: zero}, "M 0 0 L 10 0"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.opts.format == "" {
				tt.opts.format = export.FormatCombined
			}
			got, err := convert([]byte(tt.input), tt.opts)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("convert(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}

	if _, err := convert([]byte("Z 1"), convertOptions{format: export.FormatCombined}); err == nil {
		t.Error("expected an error for input without shapes")
	}
}

func TestRunConvert(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"convert", "-format", "annotated", "-origin", "0,0"}, strings.NewReader("M 0 0 L 10 0"), &out)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "line") || !strings.Contains(out.String(), "M 0 0 L 10 0") {
		t.Errorf("output = %q", out.String())
	}
}

func TestRunUsageErrors(t *testing.T) {
	tests := [][]string{
		nil,
		{"draw"},
		{"convert", "-format", "png"},
		{"convert", "-origin", "12"},
		{"convert", "a.txt", "b.txt"},
		{"watch", "in.txt"},
		{"token", "-subject", ""},
	}
	for _, args := range tests {
		err := run(args, strings.NewReader(""), &bytes.Buffer{})
		var uerr *usageError
		if !errors.As(err, &uerr) {
			t.Errorf("run(%q) = %v, want a usage error", args, err)
		}
	}
}

func TestRunToken(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"token", "-secret", "s3cret", "-subject", "alice"}, nil, &out); err != nil {
		t.Fatal(err)
	}
	sub, err := auth.NewService("s3cret").ValidateToken(strings.TrimSpace(out.String()))
	if err != nil {
		t.Fatal(err)
	}
	if sub != "alice" {
		t.Errorf("subject = %q, want alice", sub)
	}
}

func TestParsePoint(t *testing.T) {
	p, err := parsePoint(" 10, -2.5")
	if err != nil {
		t.Fatal(err)
	}
	if p != (document.Point{X: 10, Y: -2.5}) {
		t.Errorf("parsePoint = %+v", p)
	}
	for _, bad := range []string{"", "1", "a,2", "1,b"} {
		if _, err := parsePoint(bad); err == nil {
			t.Errorf("parsePoint(%q) succeeded", bad)
		}
	}
}

func waitForFile(t *testing.T, path, want string) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if data, err := os.ReadFile(path); err == nil && strings.TrimSpace(string(data)) == want {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	data, _ := os.ReadFile(path)
	t.Fatalf("%s = %q, want %q", path, data, want)
}

func TestWatchReexportsOnWrite(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "symbol.txt")
	output := filepath.Join(dir, "symbol.out")
	if err := os.WriteFile(input, []byte("M 0 0 L 10 0"), 0o644); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- watch(ctx, input, output, convertOptions{format: export.FormatCombined, origin: &document.Point{}}, ready)
	}()
	<-ready
	waitForFile(t, output, "M 0 0 L 10 0")

	if err := os.WriteFile(input, []byte("M 0 0 L 0 20"), 0o644); err != nil {
		t.Fatal(err)
	}
	waitForFile(t, output, "M 0 0 L 0 20")

	cancel()
	if err := <-done; err != nil {
		t.Errorf("watch returned %v", err)
	}
}
