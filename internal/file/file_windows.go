//go:build windows

package file

import (
	"errors"
	"fmt"
	"path/filepath"
	"unsafe"

	"github.com/desertwitch/nativeio/internal/handle"
	"github.com/desertwitch/nativeio/internal/native"
	"golang.org/x/sys/windows"
)

const (
	fileDispositionInfo = 4
	fileEndOfFileInfo   = 6

	sectorAlignment = 4096
)

type platformOps = struct{}

func defaultOps() platformOps {
	return struct{}{}
}

func createParams(mode handle.Mode, creation handle.Creation, caching handle.Caching, flags handle.Flag) (native.Disposition, uint32, uint32, uint32) {
	var d native.Disposition

	switch mode {
	case handle.ModeAttrRead, handle.ModeRead:
		d |= native.DispositionReadable
	case handle.ModeAttrWrite, handle.ModeWrite:
		d |= native.DispositionReadable | native.DispositionWritable
	case handle.ModeAppend:
		d |= native.DispositionWritable | native.DispositionAppendOnly
	}

	var disp uint32
	switch creation {
	case handle.CreationOnlyIfNotExist:
		disp = windows.CREATE_NEW
	case handle.CreationIfNeeded:
		disp = windows.OPEN_ALWAYS
	case handle.CreationTruncate:
		disp = windows.TRUNCATE_EXISTING
	default:
		disp = windows.OPEN_EXISTING
	}

	attrs := handle.CachingFileFlags(caching)
	if caching == handle.CachingTemporary {
		attrs |= windows.FILE_ATTRIBUTE_TEMPORARY
	}
	if caching.RequiresAlignedIO() {
		d |= native.DispositionAlignedIO
	}
	if flags.Has(handle.FlagOverlapped) {
		attrs |= windows.FILE_FLAG_OVERLAPPED
		d |= native.DispositionOverlapped
	}
	if flags.Has(handle.FlagUnlinkOnClose | handle.FlagWinDisableUnlinkEmulation) {
		attrs |= windows.FILE_FLAG_DELETE_ON_CLOSE
	}

	access := handle.AccessRights(d) | windows.DELETE

	return d, access, disp, attrs
}

func open(_ platformOps, path string, mode handle.Mode, creation handle.Creation, caching handle.Caching, flags handle.Flag) (*File, error) {
	if caching == handle.CachingUnchanged {
		caching = handle.CachingAll
	}

	d, access, disp, attrs := createParams(mode, creation, caching, flags)

	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, fmt.Errorf("(open) %w", err)
	}

	h, err := windows.CreateFile(p, access, handle.ShareAll, nil, disp, attrs|windows.FILE_ATTRIBUTE_NORMAL, 0)
	if err != nil {
		if errors.Is(err, windows.ERROR_DELETE_PENDING) {
			err = handle.ErrResourceUnavailableTryAgain
		}

		return nil, fmt.Errorf("(open) %w", err)
	}

	var info windows.ByHandleFileInformation
	if err := windows.GetFileInformationByHandle(h, &info); err != nil {
		_ = windows.CloseHandle(h)

		return nil, fmt.Errorf("(open-fileinfo) %w", err)
	}

	v, err := native.FromHandle(h, d)
	if err != nil {
		_ = windows.CloseHandle(h)

		return nil, fmt.Errorf("(open) %w", err)
	}

	return &File{
		IOHandle: handle.NewIO(v, caching, flags),
		path:     path,
		id: handle.UniqueID{
			Hi: uint64(info.VolumeSerialNumber),
			Lo: uint64(info.FileIndexHigh)<<32 | uint64(info.FileIndexLow), //nolint:mnd
		},
	}, nil
}

func (f *File) info() (windows.ByHandleFileInformation, error) {
	var info windows.ByHandleFileInformation
	err := windows.GetFileInformationByHandle(f.Native().Sys(), &info)

	return info, err
}

func (f *File) length() (uint64, error) {
	info, err := f.info()
	if err != nil {
		return 0, fmt.Errorf("(fileinfo) %w", err)
	}

	return uint64(info.FileSizeHigh)<<32 | uint64(info.FileSizeLow), nil //nolint:mnd
}

func (f *File) truncate(n uint64) error {
	eof := struct{ EndOfFile int64 }{int64(n)} //nolint:gosec

	if err := windows.SetFileInformationByHandle(f.Native().Sys(), fileEndOfFileInfo, (*byte)(unsafe.Pointer(&eof)), uint32(unsafe.Sizeof(eof))); err != nil {
		return fmt.Errorf("(set-eof) %w", err)
	}

	if f.AreSafetyFsyncsIssued() {
		if err := windows.FlushFileBuffers(f.Native().Sys()); err != nil {
			return fmt.Errorf("(flush) %w", err)
		}
	}

	return nil
}

// unlink renames the file to a random name first, so that the entry appears
// gone right away like on POSIX, then marks it for deletion.
func (f *File) unlink() error {
	path := f.Path()

	if !f.Flags().Has(handle.FlagDisableSafetyUnlinks) {
		if err := f.verifyPath(path); err != nil {
			return err
		}
	}

	if !f.Flags().Has(handle.FlagWinDisableUnlinkEmulation) {
		if name, err := RandomName(".deleted"); err == nil {
			dst := filepath.Join(filepath.Dir(path), "."+name)
			from, _ := windows.UTF16PtrFromString(path)
			to, _ := windows.UTF16PtrFromString(dst)
			if windows.MoveFileEx(from, to, 0) == nil {
				f.path = dst
			}
		}
	}

	del := struct{ DeleteFile bool }{true}
	if err := windows.SetFileInformationByHandle(f.Native().Sys(), fileDispositionInfo, (*byte)(unsafe.Pointer(&del)), uint32(unsafe.Sizeof(del))); err != nil {
		return fmt.Errorf("(set-delete) %w", err)
	}

	return nil
}

func (f *File) verifyPath(path string) error {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return fmt.Errorf("(verify) %w", err)
	}

	h, err := windows.CreateFile(p, windows.FILE_READ_ATTRIBUTES, handle.ShareAll, nil, windows.OPEN_EXISTING, windows.FILE_FLAG_BACKUP_SEMANTICS|windows.FILE_FLAG_OPEN_REPARSE_POINT, 0)
	if err != nil {
		return fmt.Errorf("(verify) %w", err)
	}
	defer windows.CloseHandle(h) //nolint:errcheck

	var info windows.ByHandleFileInformation
	if err := windows.GetFileInformationByHandle(h, &info); err != nil {
		return fmt.Errorf("(verify) %w", err)
	}

	if uint64(info.VolumeSerialNumber) != f.id.Hi || uint64(info.FileIndexHigh)<<32|uint64(info.FileIndexLow) != f.id.Lo {
		return fmt.Errorf("(unlink) %s: %w", path, ErrNotSameFile)
	}

	return nil
}

func (f *File) unlinkOnClose() error {
	if f.Flags().Has(handle.FlagWinDisableUnlinkEmulation) {
		return nil
	}

	err := f.unlink()
	if err == nil {
		f.unlinked = true
	}

	return err
}

// BlockSize returns an alignment satisfying uncached i/o on both 512 byte
// and 4K sector volumes.
func (f *File) BlockSize() (int, error) {
	return sectorAlignment, nil
}
