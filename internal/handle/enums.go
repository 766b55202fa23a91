package handle

import (
	"fmt"
	"strings"
)

// Mode is the behavior of a handle: whether it reads, reads and writes, or
// appends atomically. Bit 0 set means writable.
type Mode uint8

const (
	// ModeUnchanged requests that an existing mode is kept.
	ModeUnchanged Mode = 0
	// ModeNone grants no ability to read or write anything, only to
	// synchronize.
	ModeNone Mode = 2
	// ModeAttrRead grants reading of metadata only.
	ModeAttrRead Mode = 4
	// ModeAttrWrite grants reading and writing of metadata only.
	ModeAttrWrite Mode = 5
	// ModeRead grants full read access.
	ModeRead Mode = 6
	// ModeWrite grants full read and write access.
	ModeWrite Mode = 7
	// ModeAppend grants atomic append-only access. All supported operating
	// systems guarantee this is atomic with respect to all other appenders of
	// the same file.
	ModeAppend Mode = 9
)

// IsWritable reports whether the mode permits any kind of write.
func (m Mode) IsWritable() bool {
	return m&1 != 0
}

func (m Mode) String() string {
	switch m {
	case ModeUnchanged:
		return "unchanged"
	case ModeNone:
		return "none"
	case ModeAttrRead:
		return "attr_read"
	case ModeAttrWrite:
		return "attr_write"
	case ModeRead:
		return "read"
	case ModeWrite:
		return "write"
	case ModeAppend:
		return "append"
	}

	return "<unknown>"
}

// Creation is what happens to the filesystem entry on opening.
type Creation uint8

const (
	// CreationOpenExisting fails if the entry is absent.
	CreationOpenExisting Creation = iota
	// CreationOnlyIfNotExist fails if the entry is present.
	CreationOnlyIfNotExist
	// CreationIfNeeded creates the entry if absent, else opens it.
	CreationIfNeeded
	// CreationTruncate atomically truncates existing content on open,
	// leaving the creation timestamp unmodified.
	CreationTruncate
)

func (c Creation) String() string {
	switch c {
	case CreationOpenExisting:
		return "open_existing"
	case CreationOnlyIfNotExist:
		return "only_if_not_exist"
	case CreationIfNeeded:
		return "if_needed"
	case CreationTruncate:
		return "truncate"
	}

	return "<unknown>"
}

// Caching is which i/o on a handle completes immediately due to kernel
// caching. Bit 0 set means safety fsyncs are issued, unless
// [FlagDisableSafetyFsyncs] is given.
type Caching uint8

const (
	// CachingUnchanged requests that the existing caching is kept.
	CachingUnchanged Caching = 0
	// CachingNone caches nothing: all reads and writes come from storage.
	// All i/o must be aligned.
	CachingNone Caching = 1
	// CachingOnlyMetadata caches metadata but not data, so i/o through the
	// handle does not evict cached data of other handles. All i/o must be
	// aligned.
	CachingOnlyMetadata Caching = 2
	// CachingReads caches reads only. Writes of data and metadata complete
	// only once they reach storage.
	CachingReads Caching = 3
	// CachingAll caches reads and writes of data and metadata; the kernel
	// flushes to storage whenever it decides. This is the default of every
	// operating system.
	CachingAll Caching = 4
	// CachingReadsAndMetadata caches reads and writes of metadata, but
	// writes of data complete only once they reach storage.
	CachingReadsAndMetadata Caching = 5
	// CachingTemporary caches everything and flushes only on the last close
	// in the system or under memory pressure.
	CachingTemporary Caching = 6
	// CachingSafetyFsyncs caches everything but issues safety fsyncs at
	// truncation and close.
	CachingSafetyFsyncs Caching = 7
)

//nolint:gochecknoglobals
var cachingNames = [...]string{
	"unchanged", "none", "only_metadata", "reads", "all",
	"reads_and_metadata", "temporary", "safety_fsyncs",
}

func (c Caching) String() string {
	if int(c) < len(cachingNames) {
		return cachingNames[c]
	}

	return "<unknown>"
}

// ParseCaching returns the [Caching] with the given name.
func ParseCaching(name string) (Caching, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	for i, n := range cachingNames {
		if n == name {
			return Caching(i), nil
		}
	}

	return CachingUnchanged, fmt.Errorf("(handle) %w: caching %q", ErrUnknownName, name)
}

// AreReadsFromCache reports whether reads are served from the kernel page
// cache.
func (c Caching) AreReadsFromCache() bool {
	return c != CachingNone && c != CachingOnlyMetadata
}

// AreWritesDurable reports whether writes are on storage when they complete.
func (c Caching) AreWritesDurable() bool {
	return c == CachingNone || c == CachingReads || c == CachingReadsAndMetadata
}

// AreSafetyFsyncsIssued reports whether safety fsyncs are issued for this
// caching under the given flags.
func (c Caching) AreSafetyFsyncsIssued(flags Flag) bool {
	return !flags.Has(FlagDisableSafetyFsyncs) && c&1 != 0
}

// RequiresAlignedIO reports whether the caching bypasses the page cache for
// data, which needs sector aligned buffers, offsets and lengths.
func (c Caching) RequiresAlignedIO() bool {
	return c == CachingNone || c == CachingOnlyMetadata
}

// Flag is a set of independent bits modifying handle behavior.
type Flag uint32

const (
	FlagNone Flag = 0

	// FlagUnlinkOnClose unlinks the filesystem entry when the handle closes.
	// On Windows, unless [FlagWinDisableUnlinkEmulation] is also given, this
	// is emulated by renaming the entry to a random name on close so that it
	// appears unlinked immediately, like on POSIX.
	FlagUnlinkOnClose Flag = 1 << 0

	// FlagDisableSafetyFsyncs suppresses the extra fsyncs issued for the
	// caching modes with bit 0 set: on truncation, on close and, on Linux, on
	// the parent directory whenever an entry might have been created or
	// removed.
	FlagDisableSafetyFsyncs Flag = 1 << 2

	// FlagDisableSafetyUnlinks skips comparing the inode behind the path with
	// the open handle before unlinking. Without the check a file renamed
	// since opening could be deleted in its place.
	FlagDisableSafetyUnlinks Flag = 1 << 3

	// FlagWinDisableUnlinkEmulation uses FILE_FLAG_DELETE_ON_CLOSE for
	// [FlagUnlinkOnClose] on Windows. The first close then makes the file
	// unavailable to any other opener.
	FlagWinDisableUnlinkEmulation Flag = 1 << 24

	// FlagOverlapped creates Windows handles with OVERLAPPED semantics.
	FlagOverlapped Flag = 1 << 28

	// FlagByteLockInsanity is set once a handle falls back to byte range
	// locks where closing any handle to the file releases all locks of the
	// process.
	FlagByteLockInsanity Flag = 1 << 29
)

//nolint:gochecknoglobals
var flagNames = []struct {
	bit  Flag
	name string
}{
	{FlagUnlinkOnClose, "unlink_on_close"},
	{FlagDisableSafetyFsyncs, "disable_safety_fsyncs"},
	{FlagDisableSafetyUnlinks, "disable_safety_unlinks"},
	{FlagWinDisableUnlinkEmulation, "win_disable_unlink_emulation"},
	{FlagOverlapped, "overlapped"},
	{FlagByteLockInsanity, "byte_lock_insanity"},
}

// Has reports whether all bits of o are set.
func (f Flag) Has(o Flag) bool {
	return f&o == o
}

func (f Flag) String() string {
	var parts []string
	for _, n := range flagNames {
		if f&n.bit != 0 {
			parts = append(parts, n.name)
		}
	}

	switch len(parts) {
	case 0:
		return "none"
	case 1:
		return parts[0]
	}

	return "(" + strings.Join(parts, "|") + ")"
}

// ParseFlags returns the [Flag] set for a comma separated list of names.
func ParseFlags(names string) (Flag, error) {
	var f Flag

	for _, name := range strings.Split(names, ",") {
		name = strings.TrimSpace(strings.ToLower(name))
		if name == "" || name == "none" {
			continue
		}

		found := false
		for _, n := range flagNames {
			if n.name == name {
				f |= n.bit
				found = true

				break
			}
		}
		if !found {
			return FlagNone, fmt.Errorf("(handle) %w: flag %q", ErrUnknownName, name)
		}
	}

	return f, nil
}
