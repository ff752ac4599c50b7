// Package pages generates placeholder page components used to inflate the
// number of compile units a web build has to process.
package pages

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"
)

// DefaultTemplate is the content written to every placeholder page.
const DefaultTemplate = `export default function Page() {
  return (
    <div>
      <h1>데모 페이지</h1>
    </div>
  );
}
`

// DefaultExt is the extension given to placeholder pages.
const DefaultExt = ".tsx"

// DefaultConcurrency bounds the number of in-flight writes.
const DefaultConcurrency = 30

// Writer writes batches of placeholder pages into a directory.
type Writer struct {
	Concurrency int
	Template    string
	Ext         string
}

// NewWriter creates a Writer with the default template and extension.
// A non-positive concurrency falls back to DefaultConcurrency.
func NewWriter(concurrency int) *Writer {
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	return &Writer{
		Concurrency: concurrency,
		Template:    DefaultTemplate,
		Ext:         DefaultExt,
	}
}

// Write creates n pages with unique names under dir. At most
// w.Concurrency writes run at once. The first failing write cancels the
// rest and is returned; dir may then hold a partial batch.
func (w *Writer) Write(ctx context.Context, dir string, n int) error {
	if n < 0 {
		return fmt.Errorf("negative page count %d", n)
	}

	limit := w.Concurrency
	if limit <= 0 {
		limit = DefaultConcurrency
	}

	content := []byte(w.Template)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i := 0; i < n; i++ {
		// Go blocks until a slot frees up, so names are drawn lazily.
		if gctx.Err() != nil {
			break
		}

		path := filepath.Join(dir, NewID()+w.Ext)

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			return writeExclusive(path, content)
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("write pages to %s: %w", dir, err)
	}

	// The group context only reports the parent's cancellation here.
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("write pages to %s: %w", dir, err)
	}

	return nil
}

func writeExclusive(path string, content []byte) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}

	if _, err := f.Write(content); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}

	return f.Close()
}
