package main

import (
	"fmt"
	"io"

	"fileset/internal/logging"
	"fileset/internal/scan"
)

const progressBucket = 25

// progressObserver prints one line per leaf in verbose mode and otherwise
// keeps a carriage-return progress counter on terminals.
type progressObserver struct {
	out     io.Writer
	verbose bool
	live    bool
	sampler *logging.ProgressSampler
	wrote   bool
}

func newProgressObserver(out io.Writer, verbose bool) *progressObserver {
	return &progressObserver{
		out:     out,
		verbose: verbose,
		live:    !verbose && isTerminal(out),
		sampler: logging.NewProgressSampler(progressBucket),
	}
}

func (p *progressObserver) Visit(v scan.Visit, count int) {
	if p.verbose {
		line := fmt.Sprintf("%s: %s\t%s", v.Kind.Label(), v.Path, v.Status)
		if v.Destination != "" {
			line += "\t" + v.Destination
		}
		fmt.Fprintln(p.out, line)
		return
	}
	if p.live && p.sampler.ShouldLog(count) {
		fmt.Fprintf(p.out, "\r%d files searched", count)
		p.wrote = true
	}
}

// finish prints the final count and ends the progress line.
func (p *progressObserver) finish(count int) {
	if p.wrote {
		fmt.Fprint(p.out, "\r")
	}
	fmt.Fprintf(p.out, "%d files searched\n", count)
	p.sampler.Reset()
	p.wrote = false
}
