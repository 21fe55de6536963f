package decoder

import (
	"io"
	"os"

	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// StdoutWriter returns an io.Writer for stdout, wrapped through
// go-colorable on Windows so ANSI sequences survive the console, the same
// role the teacher's terminal_writer.go gives these two dependencies.
// nanolog itself never colors anything — colorizing decoded output is a
// decoder-CLI concern — but the detection is exposed so main.go can decide
// whether to bother.
func StdoutWriter() io.Writer {
	return colorable.NewColorableStdout()
}

// IsTerminal reports whether stdout is attached to an interactive
// terminal, mirroring the teacher's isTerminal check (terminal_unix.go /
// terminal_windows.go) but through go-isatty instead of a hand-rolled
// ioctl, since the decoder CLI lives outside the hot logging path and has
// no reason to avoid the dependency.
func IsTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
}
