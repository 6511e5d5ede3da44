package main

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

var (
	markOK   = color.New(color.FgGreen).Sprint("✓")
	markFail = color.New(color.FgRed).Sprint("✗")
	markHint = color.New(color.FgCyan).Sprint("→")
	markWarn = color.New(color.FgYellow).Sprint("!")
)

func printOK(out io.Writer, format string, args ...any) {
	fmt.Fprintf(out, "%s %s\n", markOK, fmt.Sprintf(format, args...))
}

func printFail(out io.Writer, format string, args ...any) {
	fmt.Fprintf(out, "%s %s\n", markFail, fmt.Sprintf(format, args...))
}

func printHint(out io.Writer, format string, args ...any) {
	fmt.Fprintf(out, "%s %s\n", markHint, fmt.Sprintf(format, args...))
}

func printWarn(out io.Writer, format string, args ...any) {
	fmt.Fprintf(out, "%s %s\n", markWarn, fmt.Sprintf(format, args...))
}

func highlight(s string) string {
	return color.YellowString(s)
}

func formatBytes(n int64) string {
	if n < 0 {
		n = 0
	}
	return humanize.Bytes(uint64(n))
}

func formatDuration(d time.Duration) string {
	if d < time.Hour {
		return fmt.Sprintf("%dm", int(d.Minutes()))
	}
	if d < 24*time.Hour {
		return fmt.Sprintf("%dh", int(d.Hours()))
	}
	return fmt.Sprintf("%dd", int(d.Hours()/24))
}

// startSpinner animates suffix on out while work runs. It returns nil when out
// is not a terminal; stopSpinner accepts that.
func startSpinner(out io.Writer, suffix string) *spinner.Spinner {
	f, ok := out.(*os.File)
	if !ok || !isatty.IsTerminal(f.Fd()) {
		return nil
	}
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(f))
	s.Suffix = suffix
	s.Start()
	return s
}

func stopSpinner(s *spinner.Spinner) {
	if s != nil {
		s.Stop()
	}
}
