package main

import (
	"io"

	"github.com/spf13/cobra"

	"schedview/internal/layout"
	"schedview/internal/pipeline"
	"schedview/internal/render"
)

func timelineCmd(g *globals) *cobra.Command {
	var (
		tasks, icsFiles []string
		date            string
		format, out     string
		width           int
	)
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Lay out one day of tasks as a stacked bar per person",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			day, err := parseDay(date)
			if err != nil {
				return err
			}
			cfg := g.cfg
			all, err := pipeline.LoadTasks(g.inputs(tasks, icsFiles), pipeline.RangeFor(day, 0, cfg.FirstWeekday()), cfg.DefaultOwner)
			if err != nil {
				return err
			}

			view := layout.Timeline(layout.TasksOn(all, day), cfg.TimelineOptions())
			return withOutput(cmd, out, func(w io.Writer) error {
				switch format {
				case formatJSON:
					return render.WriteJSON(w, render.TimelineJSON(view))
				case formatHTML:
					page := render.DefaultPageOptions()
					page.Width = cfg.Capture.Width
					return render.TimelineHTML(w, view, cfg.Timeline.PlotWidth, page)
				default:
					opts := render.DefaultTermOptions()
					if width > 0 {
						opts.BarWidth = width
					}
					return render.TimelineText(w, view, opts)
				}
			})
		},
	}

	addSourceFlags(cmd, &tasks, &icsFiles)
	cmd.Flags().StringVar(&date, "date", "", "Day to show, YYYY-MM-DD (default: current UTC date)")
	cmd.Flags().IntVar(&width, "width", 0, "Bar width in terminal cells for text output")
	addOutputFlags(cmd, &format, &out)
	return cmd
}
