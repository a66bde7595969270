package main

import (
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/sydlexius/brainzmatch/internal/batch"
)

// progressPrinter shows batch progress: a single rewritten line on a
// terminal, one line per identity otherwise.
type progressPrinter struct {
	w   io.Writer
	tty bool
}

func newProgressPrinter(w io.Writer) *progressPrinter {
	return &progressPrinter{w: w, tty: isTerminal(w)}
}

func isTerminal(w io.Writer) bool {
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func (p *progressPrinter) update(pr batch.Progress) {
	status := progressStatus(pr)
	if p.tty {
		fmt.Fprintf(p.w, "\r\033[K[%d/%d] %d %s: %s", pr.Index, pr.Total, pr.Target.ReleaseID, pr.Target.TrackLabel, status)
		return
	}
	fmt.Fprintf(p.w, "[%d/%d] %d %s: %s\n", pr.Index, pr.Total, pr.Target.ReleaseID, pr.Target.TrackLabel, status)
}

func (p *progressPrinter) done() {
	if p.tty {
		fmt.Fprintln(p.w)
	}
}

func progressStatus(pr batch.Progress) string {
	switch {
	case pr.Skipped:
		return "skipped"
	case pr.Result.HasRecording():
		return string(pr.Result.RecordingMethod)
	case pr.Result.HasRelease():
		return string(pr.Result.ReleaseMethod) + ", no recording"
	default:
		return "no release"
	}
}
