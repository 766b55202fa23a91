package handle

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync/atomic"
	"syscall"
	"time"
)

//nolint:gochecknoglobals
var sink atomic.Pointer[slog.Logger]

func init() {
	sink.Store(slog.New(slog.DiscardHandler))
}

// SetLogger installs the logger receiving diagnostics of all handles. A nil
// logger silences them again.
func SetLogger(l *slog.Logger) {
	if l == nil {
		l = slog.New(slog.DiscardHandler)
	}
	sink.Store(l)
}

// Logger returns the logger receiving diagnostics of all handles.
func Logger() *slog.Logger {
	return sink.Load()
}

// Diagnose emits a diagnostic record with two numeric codes, typically the
// operating system error and the raw handle value. The record carries the
// call site of the function calling Diagnose.
func Diagnose(level slog.Level, msg string, code1, code2 int64) {
	l := sink.Load()

	ctx := context.Background()
	if !l.Enabled(ctx, level) {
		return
	}

	var pcs [1]uintptr
	runtime.Callers(2, pcs[:]) //nolint:mnd

	r := slog.NewRecord(time.Now(), level, msg, pcs[0])
	r.AddAttrs(slog.Int64("code1", code1), slog.Int64("code2", code2))

	_ = l.Handler().Handle(ctx, r)
}

// ErrorCode returns the operating system error number carried by err, or
// zero if there is none.
func ErrorCode(err error) int64 {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		return int64(errno)
	}

	return 0
}
