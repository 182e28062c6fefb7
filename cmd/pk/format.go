package main

import (
	"io"
	"os"

	"github.com/zulandar/parkyard/internal/parking"
	"golang.org/x/term"
)

const (
	ansiReset = "\033[0m"
	ansiGreen = "\033[32m"
	ansiRed   = "\033[31m"
	ansiCyan  = "\033[36m"
	ansiDim   = "\033[2m"
)

// isTerminal reports whether w is a terminal file descriptor.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// colorize wraps s in an ANSI color when color is set.
func colorize(s, ansi string, color bool) string {
	if !color {
		return s
	}
	return ansi + s + ansiReset
}

// stepMark is the outcome column of a simulated step.
func stepMark(ok, color bool) string {
	if ok {
		return colorize("ok", ansiGreen, color)
	}
	return colorize("FAIL", ansiRed, color)
}

// stateLabel renders a request state for tables.
func stateLabel(st parking.State, color bool) string {
	switch st {
	case parking.StateAllocated, parking.StateOccupied:
		return colorize(string(st), ansiCyan, color)
	case parking.StateReleased, parking.StateCancelled:
		return colorize(string(st), ansiDim, color)
	default:
		return string(st)
	}
}
