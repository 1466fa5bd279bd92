package driver

import (
	"context"
	"fmt"
	"os"
	"runtime"

	"golang.org/x/sync/errgroup"

	"lox/interpreter-go/pkg/diag"
	"lox/interpreter-go/pkg/interpreter"
)

// FileResult is the outcome of statically checking one script.
type FileResult struct {
	Path        string    `json:"path"`
	Diagnostics diag.List `json:"diagnostics,omitempty"`
}

// OK reports whether the file scanned, parsed and resolved cleanly.
func (r FileResult) OK() bool {
	return len(r.Diagnostics) == 0
}

// LoadSource reads a script from disk.
func LoadSource(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// Check compiles every path concurrently, at most limit at a time (limit <= 0
// means GOMAXPROCS). Results keep the order of paths. An unreadable file
// aborts the whole check; static errors do not.
func Check(ctx context.Context, paths []string, limit int) ([]FileResult, error) {
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}
	results := make([]FileResult, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)
	for idx, path := range paths {
		idx, path := idx, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			source, err := LoadSource(path)
			if err != nil {
				return err
			}
			_, errs := interpreter.Compile(source)
			results[idx] = FileResult{Path: path, Diagnostics: errs}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
