//go:build unix

package handle

import (
	"path/filepath"
	"testing"

	"github.com/desertwitch/nativeio/internal/native"
	"github.com/stretchr/testify/require"
	"golang.org/x/sys/unix"
)

func openNative(t *testing.T, path string, flags int) native.Handle {
	t.Helper()

	fd, err := unix.Open(path, flags|unix.O_CLOEXEC, 0o600)
	require.NoError(t, err)

	d := native.DispositionReadable
	switch flags & unix.O_ACCMODE {
	case unix.O_RDWR:
		d |= native.DispositionWritable
	case unix.O_WRONLY:
		d = native.DispositionWritable
	}
	if flags&unix.O_APPEND != 0 {
		d |= native.DispositionAppendOnly
	}

	v, err := native.FromFd(fd, d)
	require.NoError(t, err)

	return v
}

func openTemp(t *testing.T) (*IOHandle, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "data")
	h := NewIO(openNative(t, path, unix.O_RDWR|unix.O_CREAT), CachingAll, FlagNone)
	t.Cleanup(func() { _ = h.Close() })

	return h, path
}

func openPipe(t *testing.T) (*IOHandle, *IOHandle) {
	t.Helper()

	var p [2]int
	require.NoError(t, unix.Pipe(p[:]))
	unix.CloseOnExec(p[0])
	unix.CloseOnExec(p[1])

	rv, err := native.FromFd(p[0], native.DispositionReadable)
	require.NoError(t, err)
	wv, err := native.FromFd(p[1], native.DispositionWritable)
	require.NoError(t, err)

	r, w := NewIO(rv, CachingAll, FlagNone), NewIO(wv, CachingAll, FlagNone)
	t.Cleanup(func() {
		_ = r.Close()
		_ = w.Close()
	})

	return r, w
}
