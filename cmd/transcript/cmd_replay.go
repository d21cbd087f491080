package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/user/transcript/internal/fixture"
	"github.com/user/transcript/internal/viewsync"
)

var (
	replayWidth    float64
	replayDetached bool
	replayJSON     bool
	replayQuiet    bool
	replayOut      string
)

func init() {
	replayCmd.Flags().Float64Var(&replayWidth, "width", 0, "list width (default render.width)")
	replayCmd.Flags().BoolVar(&replayDetached, "detached", false, "replay as if the user had scrolled far from the bottom")
	replayCmd.Flags().BoolVar(&replayJSON, "json", false, "print the final snapshot as JSON")
	replayCmd.Flags().BoolVarP(&replayQuiet, "quiet", "q", false, "do not print instruction batches")
	replayCmd.Flags().StringVarP(&replayOut, "out", "o", "", "also write the final snapshot as JSON to this file")
	rootCmd.AddCommand(replayCmd)
}

var replayCmd = &cobra.Command{
	Use:   "replay <script.jsonl>",
	Short: "Replay a JSONL script and print the list instructions it produces",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		setupLogging(cfg)
		if replayWidth > 0 {
			cfg.Render.Width = replayWidth
		}

		steps, err := fixture.ReadFile(args[0])
		if err != nil {
			return err
		}
		factory, err := syncFactory(cfg)
		if err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}

		out := cmd.OutOrStdout()
		surface := newPrintSurface(out, replayQuiet || replayJSON)
		if replayDetached {
			surface.SetViewport(viewsync.Viewport{ContentHeight: 1e6, Height: 600})
		}
		view := factory(surface)

		for _, step := range steps {
			surface.label = fmt.Sprintf("%d:%s", step.Line, step.Op)
			fixture.Apply(view, step)
		}

		snap := view.Snapshot()
		if replayOut != "" {
			if err := writeSnapshotFile(replayOut, snap); err != nil {
				return fmt.Errorf("write snapshot: %w", err)
			}
		}
		if replayJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(snap)
		}
		if !replayQuiet {
			fmt.Fprintln(out)
		}
		return printSnapshot(out, snap)
	},
}

// printSurface records batches like a Recorder and echoes each to w.
type printSurface struct {
	*viewsync.Recorder
	w     io.Writer
	quiet bool
	label string
}

func newPrintSurface(w io.Writer, quiet bool) *printSurface {
	return &printSurface{Recorder: viewsync.NewRecorder(0), w: w, quiet: quiet}
}

func (p *printSurface) Apply(batch []viewsync.Instruction) {
	p.Recorder.Apply(batch)
	if p.quiet {
		return
	}
	parts := make([]string, len(batch))
	for i, in := range batch {
		parts[i] = in.String()
	}
	fmt.Fprintf(p.w, "%-10s %s\n", p.label, strings.Join(parts, " "))
}

func printSnapshot(w io.Writer, snap viewsync.Snapshot) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "events: %d\tmax_seq: %d\twidth: %g\n", snap.Events, snap.MaxSeq, snap.Width)
	for i, sec := range snap.Sections {
		header := "-"
		if sec.Header != nil {
			header = headerLabel(*sec.Header)
		}
		fmt.Fprintf(tw, "\n[%d] %s\t\t\t%g\n", i, header, sec.Height)
		for j, row := range sec.Rows {
			if row.Typing {
				preview := snap.TypingPreview
				if preview == "" {
					preview = "..."
				}
				fmt.Fprintf(tw, "  %d\ttyping\t%s\t%g\n", j, preview, row.Height)
				continue
			}
			who := "me"
			if row.IsReply {
				who = "them"
			}
			flags := row.ListPosition
			if row.DetailsVisible {
				flags += " +details"
			}
			fmt.Fprintf(tw, "  %d\t#%d %s/%s\t%s\t%g\n", j, row.Seq, row.Kind, who, flags, row.Height)
		}
	}
	return tw.Flush()
}

func writeSnapshotFile(path string, snap viewsync.Snapshot) error {
	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
