// Package file implements handles to regular files opened by path, on top
// of the i/o handles of package handle.
package file

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/desertwitch/nativeio/internal/deadline"
	"github.com/desertwitch/nativeio/internal/handle"
)

const (
	// DefaultPerm is the permission of files this package creates.
	DefaultPerm = 0o660

	tempNameBytes = 16
	tempAttempts  = 8
)

// File is an [handle.IOHandle] to a regular file opened by path. It knows
// its unique identity, its length, and how to truncate and unlink itself.
type File struct {
	*handle.IOHandle

	path     string
	id       handle.UniqueID
	unlinked bool
	ops      platformOps
}

// Open opens or creates the file at path.
func Open(path string, mode handle.Mode, creation handle.Creation, caching handle.Caching, flags handle.Flag) (*File, error) {
	f, err := open(defaultOps(), path, mode, creation, caching, flags)
	if err != nil {
		handle.Diagnose(slog.LevelDebug, "open failed: "+path, handle.ErrorCode(err), 0)

		return nil, fmt.Errorf("(file-open) %w", err)
	}

	return f, nil
}

// Temp creates a new file with a random name in dir, or the temporary
// directory of the system if dir is empty.
func Temp(dir string, caching handle.Caching, flags handle.Flag) (*File, error) {
	if dir == "" {
		dir = os.TempDir()
	}

	var err error
	for range tempAttempts {
		var name string
		if name, err = RandomName(".tmp"); err != nil {
			return nil, fmt.Errorf("(file-temp) %w", err)
		}

		var f *File
		f, err = Open(filepath.Join(dir, name), handle.ModeWrite, handle.CreationOnlyIfNotExist, caching, flags)
		if err == nil {
			return f, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			break
		}
	}

	return nil, fmt.Errorf("(file-temp) %w", err)
}

// RandomName returns a random hexadecimal file name with the given suffix.
func RandomName(suffix string) (string, error) {
	b := make([]byte, tempNameBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("(random-name) %w", err)
	}

	return hex.EncodeToString(b) + suffix, nil
}

// Path returns the current path of the file. The operating system is asked
// first, so a file renamed since opening reports its new path. A file which
// was unlinked has no path.
func (f *File) Path() string {
	if f.unlinked {
		return ""
	}

	if p := f.IOHandle.Path(); p != "" {
		return p
	}

	return f.path
}

// UniqueID returns the device and inode, or volume and file index, of the
// file.
func (f *File) UniqueID() handle.UniqueID {
	return f.id
}

// Clone returns a new File to the same open file.
func (f *File) Clone() (*File, error) {
	c, err := f.IOHandle.Clone()
	if err != nil {
		return nil, fmt.Errorf("(file-clone) %w", err)
	}

	return &File{IOHandle: c, path: f.path, id: f.id, unlinked: f.unlinked, ops: f.ops}, nil
}

// Move transfers ownership to a new File, leaving f invalid.
func (f *File) Move() *File {
	n := &File{IOHandle: f.IOHandle.Move(), path: f.path, id: f.id, unlinked: f.unlinked, ops: f.ops}
	f.path, f.id, f.unlinked = "", handle.UniqueID{}, false

	return n
}

// Length returns the maximum extent of the file.
func (f *File) Length() (uint64, error) {
	n, err := f.length()
	if err != nil {
		return 0, fmt.Errorf("(file-length) %w", err)
	}

	return n, nil
}

// Truncate sets the maximum extent of the file, issuing a safety fsync when
// the caching calls for one. It returns the new length.
func (f *File) Truncate(n uint64) (uint64, error) {
	if err := f.truncate(n); err != nil {
		return 0, fmt.Errorf("(file-truncate) %w", err)
	}

	return n, nil
}

// Unlink removes the entry of the file from the filesystem. Unless
// [handle.FlagDisableSafetyUnlinks] is set, the entry is verified to still
// refer to this file first. The deadline is only checked for cancellation.
func (f *File) Unlink(d deadline.Deadline) error {
	if f.unlinked {
		return fmt.Errorf("(file-unlink) %w", ErrAlreadyUnlinked)
	}

	if d.Begin(time.Now()).Canceled() {
		return fmt.Errorf("(file-unlink) %w", handle.ErrOperationCanceled)
	}

	if err := f.unlink(); err != nil {
		return fmt.Errorf("(file-unlink) %w", err)
	}
	f.unlinked = true

	return nil
}

// Close unlinks the file first if [handle.FlagUnlinkOnClose] is set, then
// closes it. Closing an invalid File does nothing.
func (f *File) Close() error {
	if f.IOHandle == nil || !f.IsValid() {
		return nil
	}

	if f.Flags().Has(handle.FlagUnlinkOnClose) && !f.unlinked {
		if err := f.unlinkOnClose(); err != nil {
			return fmt.Errorf("(file-close) %w", err)
		}
	}

	if err := f.IOHandle.Close(); err != nil {
		return fmt.Errorf("(file-close) %w", err)
	}

	return nil
}

func (f *File) String() string {
	return fmt.Sprintf("file(%s, id=%s, %s)", f.path, f.id, f.IOHandle)
}
