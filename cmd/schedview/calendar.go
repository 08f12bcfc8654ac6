package main

import (
	"io"

	"github.com/spf13/cobra"

	"schedview/internal/layout"
	"schedview/internal/pipeline"
	"schedview/internal/render"
)

func calendarCmd(g *globals) *cobra.Command {
	var (
		tasks, icsFiles []string
		offset          int
		today           string
		format, out     string
	)
	cmd := &cobra.Command{
		Use:   "calendar",
		Short: "Lay out one week of tasks as a day-by-hour grid",
		Long: `Lay out one week of tasks as a day-by-hour grid.

Tasks are bucketed by the UTC date of their start. The week is the one
containing --today, shifted by --offset weeks (negative for past weeks).
Tasks starting before the first hour row or below the grid are not drawn.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkFormat(format); err != nil {
				return err
			}
			day, err := parseDay(today)
			if err != nil {
				return err
			}
			cfg := g.cfg
			r := pipeline.RangeFor(day, offset, cfg.FirstWeekday())
			all, err := pipeline.LoadTasks(g.inputs(tasks, icsFiles), r, cfg.DefaultOwner)
			if err != nil {
				return err
			}

			view := layout.Calendar(all, cfg.CalendarOptions(day, offset))
			return withOutput(cmd, out, func(w io.Writer) error {
				switch format {
				case formatJSON:
					return render.WriteJSON(w, render.CalendarJSON(view))
				case formatHTML:
					page := render.DefaultPageOptions()
					page.Width = cfg.Capture.Width
					return render.CalendarHTML(w, view, cfg.Calendar.UnitHeight, page)
				default:
					return render.CalendarText(w, view)
				}
			})
		},
	}

	addSourceFlags(cmd, &tasks, &icsFiles)
	cmd.Flags().IntVar(&offset, "offset", 0, "Week offset from the current week (e.g. -1 for last week)")
	cmd.Flags().StringVar(&today, "today", "", "Reference date YYYY-MM-DD (default: current UTC date)")
	addOutputFlags(cmd, &format, &out)
	return cmd
}
