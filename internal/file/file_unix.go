//go:build unix

package file

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"

	"github.com/desertwitch/nativeio/internal/handle"
	"github.com/desertwitch/nativeio/internal/native"
	"github.com/desertwitch/nativeio/internal/syscalls"
	"golang.org/x/sys/unix"
)

type unixProvider interface {
	Open(path string, mode int, perm uint32) (int, error)
	Close(fd int) error
	Fstat(fd int, stat *unix.Stat_t) error
	Lstat(path string, stat *unix.Stat_t) error
	Ftruncate(fd int, length int64) error
	Fsync(fd int) error
	Unlink(path string) error
	Statfs(path string, buf *unix.Statfs_t) error
}

type platformOps = unixProvider

func defaultOps() platformOps {
	return &syscalls.Unix{}
}

// openFlags returns the open(2) flags and disposition for opening a file.
func openFlags(mode handle.Mode, creation handle.Creation, caching handle.Caching) (int, native.Disposition) {
	fl := unix.O_CLOEXEC
	var d native.Disposition

	switch mode {
	case handle.ModeAttrRead, handle.ModeRead:
		fl |= unix.O_RDONLY
		d |= native.DispositionReadable
	case handle.ModeAttrWrite, handle.ModeWrite:
		fl |= unix.O_RDWR
		d |= native.DispositionReadable | native.DispositionWritable
	case handle.ModeAppend:
		fl |= unix.O_WRONLY | unix.O_APPEND
		d |= native.DispositionWritable | native.DispositionAppendOnly
	default:
		fl |= unix.O_RDONLY
	}

	switch creation {
	case handle.CreationOnlyIfNotExist:
		fl |= unix.O_CREAT | unix.O_EXCL
	case handle.CreationIfNeeded:
		fl |= unix.O_CREAT
	case handle.CreationTruncate:
		fl |= unix.O_TRUNC
	case handle.CreationOpenExisting:
	}

	fl |= handle.CachingOpenFlags(caching)
	if caching.RequiresAlignedIO() && handle.AlignedIOSupported {
		d |= native.DispositionAlignedIO
	}

	return fl, d
}

func open(ops unixProvider, path string, mode handle.Mode, creation handle.Creation, caching handle.Caching, flags handle.Flag) (*File, error) {
	if caching == handle.CachingUnchanged {
		caching = handle.CachingAll
	}

	fl, d := openFlags(mode, creation, caching)
	if fl&unix.O_TRUNC != 0 && !mode.IsWritable() {
		return nil, fmt.Errorf("(open) truncation needs a writable mode: %w", unix.EINVAL)
	}

	fd, err := ops.Open(path, fl, DefaultPerm)
	if err != nil {
		return nil, fmt.Errorf("(open) %w", err)
	}

	if err := handle.ApplyCaching(fd, caching); err != nil {
		_ = ops.Close(fd)

		return nil, fmt.Errorf("(open-caching) %w", err)
	}

	var st unix.Stat_t
	if err := ops.Fstat(fd, &st); err != nil {
		_ = ops.Close(fd)

		return nil, fmt.Errorf("(open-fstat) %w", err)
	}
	switch st.Mode & unix.S_IFMT {
	case unix.S_IFDIR:
		_ = ops.Close(fd)

		return nil, fmt.Errorf("(open) %w", unix.EISDIR)
	case unix.S_IFREG, unix.S_IFBLK:
		d |= native.DispositionFile | native.DispositionSeekable
	}

	f := &File{
		IOHandle: handle.NewIO(native.New(uintptr(fd), d), caching, flags),
		path:     path,
		id:       handle.UniqueID{Hi: uint64(st.Dev), Lo: st.Ino}, //nolint:gosec,unconvert
		ops:      ops,
	}

	if f.AreSafetyFsyncsIssued() {
		if creation == handle.CreationTruncate {
			if err := ops.Fsync(fd); err != nil {
				f.IOHandle.Release()
				_ = ops.Close(fd)

				return nil, fmt.Errorf("(open-fsync) %w", err)
			}
		}
		if fl&unix.O_CREAT != 0 {
			f.syncParent(path)
		}
	}

	return f, nil
}

// syncParent persists the directory entry of a file. Linux is the only
// platform where an fsync of the file does not cover it.
func (f *File) syncParent(path string) {
	if runtime.GOOS != "linux" {
		return
	}

	dir, err := f.ops.Open(filepath.Dir(path), unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
	if err != nil {
		handle.Diagnose(slog.LevelWarn, "opening parent for safety fsync failed", handle.ErrorCode(err), 0)

		return
	}
	defer f.ops.Close(dir) //nolint:errcheck

	if err := f.ops.Fsync(dir); err != nil {
		handle.Diagnose(slog.LevelWarn, "safety fsync of parent failed", handle.ErrorCode(err), int64(dir))
	}
}

func (f *File) length() (uint64, error) {
	var st unix.Stat_t
	if err := f.ops.Fstat(f.Native().Fd(), &st); err != nil {
		return 0, fmt.Errorf("(fstat) %w", err)
	}

	return uint64(st.Size), nil //nolint:gosec
}

func (f *File) truncate(n uint64) error {
	fd := f.Native().Fd()

	if err := f.ops.Ftruncate(fd, int64(n)); err != nil { //nolint:gosec
		return fmt.Errorf("(ftruncate) %w", err)
	}

	if f.AreSafetyFsyncsIssued() {
		if err := f.ops.Fsync(fd); err != nil {
			return fmt.Errorf("(fsync) %w", err)
		}
	}

	return nil
}

func (f *File) unlink() error {
	path := f.Path()

	if !f.Flags().Has(handle.FlagDisableSafetyUnlinks) {
		var st unix.Stat_t
		if err := f.ops.Lstat(path, &st); err != nil {
			return fmt.Errorf("(lstat) %w", err)
		}
		if uint64(st.Dev) != f.id.Hi || st.Ino != f.id.Lo { //nolint:gosec,unconvert
			return fmt.Errorf("(unlink) %s: %w", path, ErrNotSameFile)
		}
	}

	if err := f.ops.Unlink(path); err != nil {
		return fmt.Errorf("(unlink) %w", err)
	}

	if f.AreSafetyFsyncsIssued() {
		f.syncParent(path)
	}

	return nil
}

func (f *File) unlinkOnClose() error {
	err := f.unlink()
	if errors.Is(err, unix.ENOENT) {
		return nil
	}
	if err == nil {
		f.unlinked = true
	}

	return err
}

// BlockSize returns the preferred i/o size of the filesystem holding the
// file, which is also a safe alignment for uncached i/o.
func (f *File) BlockSize() (int, error) {
	var buf unix.Statfs_t
	if err := f.ops.Statfs(filepath.Dir(f.path), &buf); err != nil {
		return 0, fmt.Errorf("(file-blocksize) %w", err)
	}

	return int(buf.Bsize), nil //nolint:unconvert
}
