package configuration

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/desertwitch/nativeio/internal/handle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noEnviron() []string { return nil }

// TestLoad_Success_Defaults tests that the defaults decode and validate.
func TestLoad_Success_Defaults(t *testing.T) {
	t.Parallel()

	h := NewHandler(newMockGenericConfigProvider(t))
	h.Environ = noEnviron

	s, err := h.Load()
	require.NoError(t, err)

	assert.Equal(t, handle.CachingAll, s.Caching)
	assert.Equal(t, handle.FlagNone, s.Flags)
	assert.Equal(t, 1<<20, s.ChunkSize)
	assert.Equal(t, 4, s.Buffers)
	assert.Equal(t, 5*time.Second, s.LockTimeout)
	assert.Equal(t, slog.LevelInfo, s.SlogLevel())
}

// TestLoad_Success_Precedence tests that the environment overrides files,
// which override the defaults.
func TestLoad_Success_Precedence(t *testing.T) {
	t.Parallel()

	reader := newMockGenericConfigProvider(t)
	reader.EXPECT().Read("a.env", "b.env").Return(map[string]string{
		KeyCaching:   "reads",
		KeyFlags:     "unlink_on_close, disable_safety_unlinks",
		KeyBuffers:   "8",
		"OTHER_KEY":  "ignored",
		KeyLogLevel:  "WARN",
		KeyChunkSize: "65536",
	}, nil).Once()

	h := NewHandler(reader)
	h.Environ = func() []string {
		return []string{"PATH=/bin", KeyCaching + "=none", KeyLockTimeout + "=250ms"}
	}

	s, err := h.Load("a.env", "b.env")
	require.NoError(t, err)

	assert.Equal(t, handle.CachingNone, s.Caching, "environment wins")
	assert.Equal(t, handle.FlagUnlinkOnClose|handle.FlagDisableSafetyUnlinks, s.Flags)
	assert.Equal(t, 8, s.Buffers)
	assert.Equal(t, 65536, s.ChunkSize)
	assert.Equal(t, 250*time.Millisecond, s.LockTimeout)
	assert.Equal(t, slog.LevelWarn, s.SlogLevel())
}

// TestLoad_Success_Dotenv tests reading a real file.
func TestLoad_Success_Dotenv(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nativeio.env")
	require.NoError(t, os.WriteFile(path, []byte("# tunables\nNATIVEIO_CACHING=safety_fsyncs\nNATIVEIO_BUFFERS=2\n"), 0o600))

	h := NewHandler(&DotenvReader{})
	h.Environ = noEnviron

	s, err := h.Load(path)
	require.NoError(t, err)
	assert.Equal(t, handle.CachingSafetyFsyncs, s.Caching)
	assert.Equal(t, 2, s.Buffers)
}

// TestDotenvReader_Success_Override tests that later files override earlier
// ones and that keys of other programs are dropped.
func TestDotenvReader_Success_Override(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	first := filepath.Join(dir, "site.env")
	second := filepath.Join(dir, "local.env")

	require.NoError(t, os.WriteFile(first, []byte("NATIVEIO_BUFFERS=2\nNATIVEIO_CACHING=reads\nHOME=/nowhere\n"), 0o600))
	require.NoError(t, os.WriteFile(second, []byte("export NATIVEIO_BUFFERS=16\nNATIVEIO_LOCK_TIMEOUT=\"1m\"\n"), 0o600))

	envMap, err := (&DotenvReader{}).Read(first, second)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		KeyBuffers:     "16",
		KeyCaching:     "reads",
		KeyLockTimeout: "1m",
	}, envMap)
}

// TestDotenvReader_Fail_UnknownKey tests that a misspelled tunable is
// rejected with the file it came from.
func TestDotenvReader_Fail_UnknownKey(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "typo.env")
	require.NoError(t, os.WriteFile(path, []byte("NATIVEIO_CACHNG=none\n"), 0o600))

	h := NewHandler(&DotenvReader{})
	h.Environ = noEnviron

	_, err := h.Load(path)
	require.ErrorIs(t, err, ErrInvalidSetting)
	assert.ErrorContains(t, err, "typo.env")
	assert.ErrorContains(t, err, "NATIVEIO_CACHNG")
}

// TestLoad_Fail_Read tests that reader errors are returned.
func TestLoad_Fail_Read(t *testing.T) {
	t.Parallel()

	readErr := errors.New("read failed")

	reader := newMockGenericConfigProvider(t)
	reader.EXPECT().Read("x.env").Return(nil, readErr).Once()

	h := NewHandler(reader)
	h.Environ = noEnviron

	_, err := h.Load("x.env")
	require.ErrorIs(t, err, readErr)
}

// TestLoad_Fail_MissingFile tests a missing file with the real reader.
func TestLoad_Fail_MissingFile(t *testing.T) {
	t.Parallel()

	h := NewHandler(&DotenvReader{})
	h.Environ = noEnviron

	_, err := h.Load(filepath.Join(t.TempDir(), "missing.env"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestDecode_Fail tests the rejection of invalid values.
func TestDecode_Fail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		key     string
		value   string
		invalid bool
	}{
		{"Fail_UnknownCaching", KeyCaching, "fast", false},
		{"Fail_UnchangedCaching", KeyCaching, "unchanged", true},
		{"Fail_UnknownFlag", KeyFlags, "unlink_on_close,bogus", false},
		{"Fail_ChunkTooSmall", KeyChunkSize, "512", true},
		{"Fail_ChunkNotNumber", KeyChunkSize, "lots", false},
		{"Fail_TooManyBuffers", KeyBuffers, "65", true},
		{"Fail_NegativeTimeout", KeyLockTimeout, "-1s", true},
		{"Fail_BadTimeout", KeyLockTimeout, "soon", false},
		{"Fail_LogLevel", KeyLogLevel, "trace", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := Defaults()
			m[tt.key] = tt.value

			_, err := Decode(m)
			require.Error(t, err)
			if tt.invalid {
				require.ErrorIs(t, err, ErrInvalidSetting)
			}
		})
	}
}

// TestSlogLevel_Success tests the level conversion.
func TestSlogLevel_Success(t *testing.T) {
	t.Parallel()

	assert.Equal(t, slog.LevelDebug, (&Settings{LogLevel: "debug"}).SlogLevel())
	assert.Equal(t, slog.LevelError, (&Settings{LogLevel: "error"}).SlogLevel())
	assert.Equal(t, slog.LevelInfo, (&Settings{LogLevel: "???"}).SlogLevel())
}
