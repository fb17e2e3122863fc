package main

import (
	"fmt"
	"os"

	"github.com/smykla-skalski/cursor-updater/internal/crashdump"
	"github.com/smykla-skalski/cursor-updater/internal/xdg"
)

// crashRun describes the command in progress for crash reports. Commands
// update it as they go.
var crashRun = &crashdump.RunInfo{Command: "update"}

// handlePanic writes a crash report for a recovered panic and tells the user
// where it is. It never panics itself.
func handlePanic(recovered any) {
	fmt.Fprintf(os.Stderr, "panic: %v\n", recovered)

	info := crashdump.NewCollector(version).Collect(recovered, crashRun)

	writer, err := crashdump.NewFilesystemWriter(xdg.CrashDir())
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not save crash report: %v\n", err)

		return
	}

	path, err := writer.Write(info)
	if err != nil {
		fmt.Fprintf(os.Stderr, "could not save crash report: %v\n", err)

		return
	}

	fmt.Fprintf(os.Stderr, "crash dump saved to: %s\n", path)

	_, _ = writer.Prune(crashdump.DefaultMaxReports)

	fmt.Fprintln(os.Stderr, "please attach it when reporting the problem")
}
