package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime/pprof"
	"strings"
)

const (
	profileCPU    = "cpu"
	profileAllocs = "allocs"

	// commandPlaceholder in a profile path is replaced by the command name.
	commandPlaceholder = "{cmd}"
)

// profilePath resolves the -cpuprofile or -memprofile argument for a
// command. An existing directory receives nativeio-<command>-<kind>.pprof,
// so repeated runs of different commands do not overwrite each other.
func profilePath(pattern, command, kind string) string {
	if pattern == "" {
		return ""
	}

	if fi, err := os.Stat(pattern); err == nil && fi.IsDir() {
		return filepath.Join(pattern, fmt.Sprintf("nativeio-%s-%s.pprof", command, kind))
	}

	return strings.ReplaceAll(pattern, commandPlaceholder, command)
}

// profiler records one pprof profile for as long as its context lives. CPU
// profiles are sampled throughout, allocation profiles are written at the
// end.
type profiler struct {
	kind   string
	path   string
	cancel context.CancelFunc
	done   chan struct{}
}

func newProfiler(ctx context.Context, kind, path string) *profiler {
	prof := &profiler{
		kind: kind,
		path: path,
		done: make(chan struct{}),
	}

	ctx, prof.cancel = context.WithCancel(ctx)

	go prof.profile(ctx)

	return prof
}

func (prof *profiler) profile(ctx context.Context) {
	defer close(prof.done)

	if prof.path == "" {
		return
	}

	if prof.kind == profileCPU {
		f, err := os.Create(prof.path)
		if err != nil {
			slog.Error("Could not create the cpu profile.", "path", prof.path, "err", err)

			return
		}
		defer f.Close()

		if err := pprof.StartCPUProfile(f); err != nil {
			slog.Error("Could not start the cpu profile.", "path", prof.path, "err", err)

			return
		}
		defer pprof.StopCPUProfile()
	}

	<-ctx.Done()

	if prof.kind == profileCPU {
		return
	}

	f, err := os.Create(prof.path)
	if err != nil {
		slog.Error("Could not create the "+prof.kind+" profile.", "path", prof.path, "err", err)

		return
	}
	defer f.Close()

	if err := pprof.Lookup(prof.kind).WriteTo(f, 0); err != nil {
		slog.Error("Could not write the "+prof.kind+" profile.", "path", prof.path, "err", err)
	}
}

// Stop ends the profile and waits for it to be written.
func (prof *profiler) Stop() {
	prof.cancel()
	<-prof.done

	if prof.path != "" {
		slog.Debug("Profile written.", "kind", prof.kind, "path", prof.path)
	}
}
