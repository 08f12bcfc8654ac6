package main

import (
	"fmt"

	"github.com/spf13/cobra"

	appLog "schedview/internal/log"
	"schedview/internal/pipeline"
)

func renderCmd(g *globals) *cobra.Command {
	var (
		tasks, icsFiles []string
		outDir, today   string
		offset          int
		png, planes     bool
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Write calendar and timeline artifacts (JSON, HTML, optional PNG and e-paper planes)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			day, err := parseDay(today)
			if err != nil {
				return err
			}
			if outDir == "" {
				outDir = g.cfg.OutputDir
			}
			res, err := pipeline.Run(cmd.Context(), g.cfg, g.inputs(tasks, icsFiles), pipeline.Options{
				Today:  day,
				Offset: offset,
				OutDir: outDir,
				PNG:    png,
				Planes: planes,
			})
			for _, f := range res.Files {
				fmt.Fprintln(cmd.OutOrStdout(), f)
			}
			if err != nil {
				appLog.Error("render failed", err, "out_dir", outDir)
			}
			return err
		},
	}

	addSourceFlags(cmd, &tasks, &icsFiles)
	cmd.Flags().StringVar(&outDir, "out-dir", "", "Output directory (default: config output_dir)")
	cmd.Flags().StringVar(&today, "today", "", "Reference date YYYY-MM-DD (default: current UTC date)")
	cmd.Flags().IntVar(&offset, "offset", 0, "Week offset of the calendar")
	cmd.Flags().BoolVar(&png, "png", false, "Capture PNG screenshots with headless Chromium")
	cmd.Flags().BoolVar(&planes, "planes", false, "Pack screenshots into black/red e-paper planes (implies --png)")
	return cmd
}
