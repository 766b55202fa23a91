// Command nativeio exercises the native handle layer: it probes the caching
// modes of a filesystem, performs durable verified copies, holds byte range
// locks and reads file ranges.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/desertwitch/nativeio/internal/configuration"
	"github.com/desertwitch/nativeio/internal/handle"
)

//nolint:gochecknoglobals
var (
	ExitCode = 0
	Version  string

	configFile = flag.String("config", "", "read settings from this .env file")
	noColor    = flag.Bool("nocolor", false, "disable colored log output")
	cpuprofile = flag.String("cpuprofile", "", "write a cpu profile to this file or directory, {cmd} is the command")
	memprofile = flag.String("memprofile", "", "write an allocs profile to this file or directory, {cmd} is the command")
)

func usage() {
	out := flag.CommandLine.Output()

	fmt.Fprintf(out, "Usage: nativeio [flags] <command> [args]\n\n")
	fmt.Fprintf(out, "Commands:\n")
	fmt.Fprintf(out, "  probe [-dir D] [-workers N]                         report caching mode behavior\n")
	fmt.Fprintf(out, "  copy [-ui] [-move] [-verify=false] [-workers N] SRC DST\n")
	fmt.Fprintf(out, "                                                      durable verified copy\n")
	fmt.Fprintf(out, "  lock [-shared] [-hold D] [-wait D] FILE OFFSET LEN  hold a byte range lock\n")
	fmt.Fprintf(out, "  cat [-offset N] [-length N] FILE                    write a file range to stdout\n")
	fmt.Fprintf(out, "  version                                             print the version\n\n")
	fmt.Fprintf(out, "Flags:\n")
	flag.PrintDefaults()
}

func setupLogging(level slog.Leveler) *SlogManager {
	logs := NewSlogManager()
	logs.AddHandler("terminal", newTintHandler(os.Stderr, level, *noColor))
	slog.SetDefault(slog.New(logs))

	handle.SetLogger(slog.Default().With("component", "native"))

	return logs
}

func loadSettings() (*configuration.Settings, error) {
	var files []string
	if *configFile != "" {
		files = append(files, *configFile)
	}

	settings, err := configuration.NewHandler(&configuration.DotenvReader{}).Load(files...)
	if err != nil {
		return nil, fmt.Errorf("(main) %w", err)
	}

	return settings, nil
}

func main() {
	defer func() {
		os.Exit(ExitCode)
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	flag.Usage = usage
	flag.Parse()

	level := new(slog.LevelVar)
	logs := setupLogging(level)

	settings, err := loadSettings()
	if err != nil {
		slog.Error("Failed to load the configuration.", "err", err)
		ExitCode = 1

		return
	}
	level.Set(settings.SlogLevel())

	command := flag.Arg(0)
	app := NewApp(settings, logs, level, os.Stdout)

	setupSignalHandlers(cancel, app.LogStatus)

	resources := newResourceObserver(ctx, command, resourceSampleInterval)
	defer resources.Stop()

	cpuProfiler := newProfiler(ctx, profileCPU, profilePath(*cpuprofile, command, profileCPU))
	defer cpuProfiler.Stop()

	allocProfiler := newProfiler(ctx, profileAllocs, profilePath(*memprofile, command, profileAllocs))
	defer allocProfiler.Stop()

	if err := app.Run(ctx, flag.Args()); err != nil {
		if errors.Is(err, ErrUsage) {
			slog.Error("Invalid usage.", "err", err)
			flag.Usage()
			ExitCode = 2

			return
		}

		slog.Error("Command failed.", "err", err)
		ExitCode = 1
	}
}
