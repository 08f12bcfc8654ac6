package main

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	appLog "schedview/internal/log"
	"schedview/internal/pipeline"
)

func watchCmd(g *globals) *cobra.Command {
	var (
		outDir      string
		png, planes bool
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-render on the configured cron schedule until interrupted",
		Long: `Re-render on the configured cron schedule until interrupted.

Every run reloads all sources from disk and recomputes both views for the
current UTC date. A failing source is logged and the rest still render.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := g.cfg
			if outDir == "" {
				outDir = cfg.OutputDir
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			pass := func() {
				_, err := pipeline.Run(ctx, cfg, pipeline.InputsFrom(cfg), pipeline.Options{
					Today:  now().UTC(),
					OutDir: outDir,
					PNG:    png,
					Planes: planes,
				})
				if err != nil {
					appLog.Error("scheduled render failed", err)
				}
			}

			sched := cron.New()
			if _, err := sched.AddFunc(cfg.RefreshCron, pass); err != nil {
				appLog.Error("invalid refresh schedule", err, "refresh", cfg.RefreshCron)
				return fmt.Errorf("invalid refresh schedule %q: %w", cfg.RefreshCron, err)
			}

			appLog.Info("watch started", "refresh", cfg.RefreshCron, "out_dir", outDir)
			pass()
			sched.Start()

			<-ctx.Done()
			appLog.Info("signal received, shutting down")
			<-sched.Stop().Done()
			appLog.Info("watch stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&outDir, "out-dir", "", "Output directory (default: config output_dir)")
	cmd.Flags().BoolVar(&png, "png", false, "Capture PNG screenshots with headless Chromium")
	cmd.Flags().BoolVar(&planes, "planes", false, "Pack screenshots into black/red e-paper planes (implies --png)")
	return cmd
}
