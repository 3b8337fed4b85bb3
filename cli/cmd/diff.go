package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/withblock/lang"
)

// Diff prints the original and rewritten text of each expanded site.
type Diff struct {
	Files []string `arg:"" help:"Source files or '-' for stdin (default)." name:"file" optional:""`
	Jobs  int      `       help:"Maximum number of files expanded concurrently (0 for one per CPU)." short:"j" default:"0"`
	Where string   `       help:"Show only sites for which this expression is true."                               placeholder:"EXPR"`
}

// Run executes the diff command.
func (d *Diff) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	srcs, err := collectSources(d.Files)
	if err != nil {
		return err
	}

	opts, err := (&Expand{Where: d.Where}).options(ctx)
	if err != nil {
		return err
	}

	results, err := expandAll(ctx, srcs, (&Expand{Jobs: d.Jobs}).jobs(), false, opts...)
	if err != nil {
		return err
	}

	w := outputFrom(ctx)
	st := newDiffStyle(w)

	for _, x := range results {
		if err := st.write(w, x.src.name, x.result); err != nil {
			return err
		}
	}

	return nil
}

// diffStyle renders diff hunks. Styles are bound to a renderer for the
// output writer, so plain text is written when it is not a terminal.
type diffStyle struct {
	header  lipgloss.Style
	removed lipgloss.Style
	added   lipgloss.Style
}

func newDiffStyle(w io.Writer) diffStyle {
	r := lipgloss.NewRenderer(w)

	return diffStyle{
		header:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("6")),
		removed: r.NewStyle().Foreground(lipgloss.Color("1")),
		added:   r.NewStyle().Foreground(lipgloss.Color("2")),
	}
}

// write prints one hunk per expanded site of res. A nested site is part of
// its enclosing hunk unless the filter skipped the enclosing site.
func (st diffStyle) write(w io.Writer, name string, res *lang.Result) error {
	for _, s := range hunkSites(res.Sites) {

		var b strings.Builder

		b.WriteString(st.header.Render(fmt.Sprintf("@@ %s:%s %s!", name, s.Pos, s.Macro)) + "\n")

		for _, line := range strings.Split(s.Original, "\n") {
			b.WriteString(st.removed.Render("- "+line) + "\n")
		}

		for _, line := range strings.Split(s.Rewritten, "\n") {
			b.WriteString(st.added.Render("+ "+line) + "\n")
		}

		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}

	return nil
}

// hunkSites returns the expanded sites not covered by an expanded
// enclosing site. Sites are recorded innermost first, so the enclosing
// site of sites[i] is the next one with a smaller depth.
func hunkSites(sites []lang.Site) []lang.Site {
	var out []lang.Site

	for i, s := range sites {
		if s.Skipped {
			continue
		}

		if s.Depth > 0 {
			j := i + 1
			for j < len(sites) && sites[j].Depth >= s.Depth {
				j++
			}

			if j < len(sites) && !sites[j].Skipped {
				continue
			}
		}

		out = append(out, s)
	}

	return out
}
