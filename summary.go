package spindrift

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/pterm/pterm"
)

// Summary reports the outcome of one build.
type Summary struct {
	Found        int // droplet files dispatched for parsing
	Ignored      int // files rejected by extension
	Directories  int // sub-directories skipped
	ParseFailed  int
	RenderFailed int
	Succeeded    int

	// Droplets are the rendered droplets, newest first.
	Droplets []*Droplet
	// IndexErr is set when the index page failed to render.
	IndexErr error
	// Warnings collects failures of optional outputs (tag and author pages,
	// feed, sitemap, catalog).
	Warnings []error
	BuildID  string
	Duration time.Duration
}

// Failed is the number of found droplets that did not render.
func (s Summary) Failed() int {
	return s.Found - s.Succeeded
}

// Scanned is the number of files looked at, not counting directories.
func (s Summary) Scanned() int {
	return s.Found + s.Ignored
}

// Print writes the aggregate count block to w.
func (s Summary) Print(w io.Writer) error {
	table, err := pterm.DefaultTable.WithData(pterm.TableData{
		{"Scanned", strconv.Itoa(s.Scanned())},
		{"Ignored", strconv.Itoa(s.Ignored)},
		{"Failed", strconv.Itoa(s.Failed())},
		{"Succeeded", strconv.Itoa(s.Succeeded)},
	}).Srender()
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, pterm.Bold.Sprint("Build summary")); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, table); err != nil {
		return err
	}
	if s.IndexErr != nil {
		if _, err := fmt.Fprintf(w, "index not rendered: %v\n", s.IndexErr); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(w, "finished in %s\n", s.Duration.Round(time.Millisecond))
	return err
}
