// Package transfer implements verified file transfers on top of the native
// file handles: data is copied with scatter-gather i/o under byte range
// locks, made durable with a barrier, verified by hash and only then renamed
// into place.
package transfer

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"hash"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/desertwitch/nativeio/internal/deadline"
	"github.com/desertwitch/nativeio/internal/file"
	"github.com/desertwitch/nativeio/internal/handle"
	"github.com/desertwitch/nativeio/internal/queue"
	"github.com/dustin/go-humanize"
	"github.com/zeebo/blake3"
)

// TempSuffix is appended to the destination path while it is written.
const TempSuffix = ".nativeio"

type osProvider interface {
	Stat(name string) (os.FileInfo, error)
	Rename(oldpath, newpath string) error
	Remove(name string) error
	MkdirAll(path string, perm os.FileMode) error
	Chmod(name string, mode os.FileMode) error
	Chtimes(name string, atime time.Time, mtime time.Time) error
}

// Job is a single file to transfer.
type Job struct {
	Source string
	Dest   string
	Size   uint64
}

// Options are the knobs of a [Handler].
type Options struct {
	// Caching of both source and destination handles.
	Caching handle.Caching
	// Flags of the destination handle.
	Flags handle.Flag
	// ChunkSize is the size of each scatter-gather buffer.
	ChunkSize int
	// Buffers is the number of scatter-gather buffers per request.
	Buffers int
	// LockTimeout bounds the wait for the byte range locks.
	LockTimeout time.Duration
	// Verify re-reads the destination and compares hashes before renaming.
	Verify bool
	// RemoveSource unlinks the source after a successful transfer.
	RemoveSource bool
	// Workers is the number of files copied at a time into the same
	// destination directory.
	Workers int
}

// Handler transfers files.
type Handler struct {
	OSOps osProvider
	Opts  Options
}

// NewHandler returns a pointer to a new [Handler].
func NewHandler(osOps osProvider, opts Options) *Handler {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = 1 << 20 //nolint:mnd
	}
	opts.Buffers = max(opts.Buffers, 1)
	opts.Workers = max(opts.Workers, 1)

	return &Handler{
		OSOps: osOps,
		Opts:  opts,
	}
}

// NewJobManager returns a queue manager which buckets jobs by destination
// directory. Buckets are processed concurrently.
func NewJobManager() *queue.Manager[string, *Job] {
	return queue.NewManager(
		func(j *Job) string { return filepath.Dir(j.Dest) },
		func(j *Job) uint64 { return j.Size },
	)
}

// ProcessQueue transfers all jobs of the manager, with [Options.Workers]
// jobs at a time per destination directory. Failed jobs are logged and
// skipped. An error is only returned when the context is canceled.
func (h *Handler) ProcessQueue(ctx context.Context, m *queue.Manager[string, *Job]) error {
	err := m.Process(ctx, h.Opts.Workers, func(q *queue.TransferQueue[*Job], worker int, job *Job) queue.Decision {
		if err := h.Copy(ctx, job, q.AddBytesTransferred); err != nil {
			slog.Warn("Skipped job: failure during processing",
				"path", job.Dest,
				"err", err,
				"job", job.Source,
				"worker", worker,
			)

			return queue.DecisionSkipped
		}

		slog.Info("Processed:",
			"path", job.Dest,
			"job", job.Source,
			"size", humanize.IBytes(job.Size),
			"worker", worker,
		)

		return queue.DecisionSuccess
	})
	if err != nil {
		return fmt.Errorf("(transfer) %w: %w", ErrContextError, err)
	}

	return nil
}

func (h *Handler) lockDeadline(ctx context.Context) (deadline.Deadline, context.CancelFunc) {
	if h.Opts.LockTimeout <= 0 {
		return deadline.FromContext(ctx), func() {}
	}

	lctx, cancel := context.WithTimeout(ctx, h.Opts.LockTimeout)

	return deadline.FromContext(lctx), cancel
}

// Copy transfers a single file. The destination is written under a
// temporary name, which is removed again on any failure. The progress
// function, if any, is told about every chunk written.
func (h *Handler) Copy(ctx context.Context, job *Job, progress func(uint64)) error {
	var complete bool

	src, err := file.Open(job.Source, handle.ModeRead, handle.CreationOpenExisting, h.Opts.Caching, handle.FlagNone)
	if err != nil {
		return fmt.Errorf("(transfer) failed to open source file: %w", err)
	}
	defer src.Close() //nolint:errcheck

	ld, cancel := h.lockDeadline(ctx)
	defer cancel()

	srcGuard, err := src.Lock(0, 0, false, ld)
	if err != nil {
		return fmt.Errorf("(transfer) failed to lock source file: %w", err)
	}
	defer srcGuard.Unlock() //nolint:errcheck

	length, err := src.Length()
	if err != nil {
		return fmt.Errorf("(transfer) %w", err)
	}

	if err := h.OSOps.MkdirAll(filepath.Dir(job.Dest), 0o755); err != nil { //nolint:mnd
		return fmt.Errorf("(transfer) failed to create destination directory: %w", err)
	}

	tmpPath := job.Dest + TempSuffix

	dst, err := file.Open(tmpPath, handle.ModeWrite, handle.CreationOnlyIfNotExist, h.Opts.Caching, h.Opts.Flags&^handle.FlagUnlinkOnClose)
	if err != nil {
		return fmt.Errorf("(transfer) failed to open destination file %s: %w", tmpPath, err)
	}
	defer func() {
		if !complete {
			if err := dst.Unlink(deadline.None()); err != nil {
				slog.Warn("Failed to remove intermediate file", "path", tmpPath, "err", err)
			}
		}
		dst.Close() //nolint:errcheck
	}()

	dstGuard, err := dst.Lock(0, 0, true, ld)
	if err != nil {
		return fmt.Errorf("(transfer) failed to lock destination file: %w", err)
	}
	defer dstGuard.Unlock() //nolint:errcheck

	align := 1
	if src.RequiresAlignedIO() || dst.RequiresAlignedIO() {
		if align, err = dst.BlockSize(); err != nil {
			return fmt.Errorf("(transfer) %w", err)
		}
	}

	bufs := newBuffers(h.Opts.Buffers, roundUp(h.Opts.ChunkSize, align), align)

	srcHasher := blake3.New()
	if err := h.copyData(ctx, src, dst, length, bufs, align, srcHasher, progress); err != nil {
		return err
	}

	if _, err := dst.Barrier(handle.IORequest[handle.ConstBuffer]{}, true, false, deadline.None()); err != nil {
		return fmt.Errorf("(transfer) failed to sync destination file: %w", err)
	}

	if h.Opts.Verify {
		dstHasher := blake3.New()
		if err := readAll(ctx, dst, length, bufs, dstHasher); err != nil {
			return fmt.Errorf("(transfer) failed to read back destination file: %w", err)
		}

		srcChecksum := hex.EncodeToString(srcHasher.Sum(nil))
		dstChecksum := hex.EncodeToString(dstHasher.Sum(nil))

		if srcChecksum != dstChecksum {
			return fmt.Errorf("(transfer) %w: %s (src) != %s (dst)", ErrHashMismatch, srcChecksum, dstChecksum)
		}
	}

	h.preserveMetadata(job.Source, tmpPath)

	if _, err := h.OSOps.Stat(job.Dest); err == nil {
		return fmt.Errorf("(transfer) %w", ErrRenameExists)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("(transfer) failed to check rename destination existence: %w", err)
	}

	if err := h.OSOps.Rename(tmpPath, job.Dest); err != nil {
		return fmt.Errorf("(transfer) failed to rename temporary file to destination file: %w", err)
	}

	complete = true

	if h.Opts.RemoveSource {
		if err := srcGuard.Unlock(); err != nil {
			slog.Warn("Failed to unlock source file", "path", job.Source, "err", err)
		}
		if err := src.Unlink(deadline.FromContext(ctx)); err != nil {
			return fmt.Errorf("(transfer) failed to remove source file: %w", err)
		}
	}

	return nil
}

// preserveMetadata carries the permissions and modification time of the
// source over. Failures are only logged.
func (h *Handler) preserveMetadata(src, dst string) {
	st, err := h.OSOps.Stat(src)
	if err != nil {
		slog.Warn("Warning (finalize): failure reading source metadata", "path", src, "err", err)

		return
	}

	if err := h.OSOps.Chmod(dst, st.Mode().Perm()); err != nil {
		slog.Warn("Warning (finalize): failure setting permissions", "path", dst, "err", err)
	}

	if err := h.OSOps.Chtimes(dst, time.Time{}, st.ModTime()); err != nil {
		slog.Warn("Warning (finalize): failure setting timestamp", "path", dst, "err", err)
	}
}

func (h *Handler) copyData(ctx context.Context, src, dst *file.File, length uint64, bufs []handle.Buffer, align int, hasher hash.Hash, progress func(uint64)) error {
	var offset uint64

	for offset < length {
		if ctx.Err() != nil {
			return fmt.Errorf("(transfer) %w: %w", handle.ErrOperationCanceled, ctx.Err())
		}

		res, err := src.Read(handle.IORequest[handle.Buffer]{Buffers: bufs, Offset: offset}, deadline.None())
		if err != nil {
			return fmt.Errorf("(transfer) failed to read source file: %w", err)
		}

		if res.BytesTransferred() == 0 {
			return fmt.Errorf("(transfer) %w: %d of %d bytes", ErrSourceChanged, offset, length)
		}

		filled := clip(res.Buffers, length-offset)

		var n uint64
		for _, b := range filled {
			hasher.Write(b) //nolint:errcheck
			n += uint64(len(b))
		}

		wres, err := dst.Write(handle.IORequest[handle.ConstBuffer]{Buffers: padded(filled, align), Offset: offset}, deadline.None())
		if err != nil {
			return fmt.Errorf("(transfer) failed to write destination file: %w", err)
		}
		if uint64(wres.BytesTransferred()) < n { //nolint:gosec
			return fmt.Errorf("(transfer) failed to write destination file: short write of %d bytes", wres.BytesTransferred())
		}

		offset += n
		if progress != nil {
			progress(n)
		}
	}

	if align > 1 {
		if _, err := dst.Truncate(length); err != nil {
			return fmt.Errorf("(transfer) failed to cut padding: %w", err)
		}
	}

	return nil
}

// readAll hashes the first length bytes of f.
func readAll(ctx context.Context, f *file.File, length uint64, bufs []handle.Buffer, hasher hash.Hash) error {
	var offset uint64

	for offset < length {
		if ctx.Err() != nil {
			return fmt.Errorf("(transfer) %w: %w", handle.ErrOperationCanceled, ctx.Err())
		}

		res, err := f.Read(handle.IORequest[handle.Buffer]{Buffers: bufs, Offset: offset}, deadline.None())
		if err != nil {
			return err
		}

		if res.BytesTransferred() == 0 {
			return fmt.Errorf("%w: destination shorter than %d bytes", ErrHashMismatch, length)
		}

		for _, b := range clip(res.Buffers, length-offset) {
			hasher.Write(b) //nolint:errcheck
			offset += uint64(len(b))
		}
	}

	return nil
}
