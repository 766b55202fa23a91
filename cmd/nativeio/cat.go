package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"github.com/desertwitch/nativeio/internal/deadline"
	"github.com/desertwitch/nativeio/internal/file"
	"github.com/desertwitch/nativeio/internal/handle"
	"github.com/dustin/go-humanize"
)

const catBufferSize = 256 << 10

// ctxReader stops a copy once its context is canceled.
type ctxReader struct {
	ctx context.Context //nolint:containedctx
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, fmt.Errorf("%w: %w", handle.ErrOperationCanceled, err)
	}

	return c.r.Read(p) //nolint:wrapcheck
}

// Cat writes a range of FILE to standard output, holding a shared lock on
// it while doing so.
func (app *App) Cat(ctx context.Context, args []string) error {
	flags := flag.NewFlagSet("cat", flag.ContinueOnError)
	flags.SetOutput(io.Discard)

	offsetStr := flags.String("offset", "0", "first byte to write")
	lengthStr := flags.String("length", "", "bytes to write, empty writes to the end")

	if err := flags.Parse(args); err != nil {
		return fmt.Errorf("%w: %w", ErrUsage, err)
	}
	if flags.NArg() != 1 {
		return fmt.Errorf("%w: cat needs FILE", ErrUsage)
	}

	offset, err := humanize.ParseBytes(*offsetStr)
	if err != nil {
		return fmt.Errorf("%w: offset: %w", ErrUsage, err)
	}

	f, err := file.Open(flags.Arg(0), handle.ModeRead, handle.CreationOpenExisting, app.settings.Caching, handle.FlagNone)
	if err != nil {
		return err //nolint:wrapcheck
	}
	defer f.Close()

	if f.RequiresAlignedIO() {
		slog.Debug("Switching to cached reads for unaligned output.", "path", f.Path())

		if err := f.SetKernelCaching(handle.CachingAll); err != nil {
			return err //nolint:wrapcheck
		}
	}

	size, err := f.Length()
	if err != nil {
		return err //nolint:wrapcheck
	}
	if offset >= size {
		return nil
	}

	n := size - offset
	if *lengthStr != "" {
		length, err := humanize.ParseBytes(*lengthStr)
		if err != nil {
			return fmt.Errorf("%w: length: %w", ErrUsage, err)
		}
		n = min(n, length)
	}
	if n == 0 {
		return nil
	}

	return f.WithLock(offset, n, false, deadline.FromContext(ctx), func() error {
		sr := io.NewSectionReader(f, int64(offset), int64(n)) //nolint:gosec
		if _, err := io.CopyBuffer(app.stdout, ctxReader{ctx: ctx, r: sr}, make([]byte, catBufferSize)); err != nil {
			return fmt.Errorf("failed to write: %w", err)
		}

		return nil
	})
}
