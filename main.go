package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"occupancy-optimizer/config"
	"occupancy-optimizer/utils"
)

var (
	cfg      *config.Config
	logger   *utils.Logger
	todayArg string
)

var rootCmd = &cobra.Command{
	Use:   "occupancy-optimizer",
	Short: "Suggest reservation moves that consolidate free nights",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = utils.NewLoggerWith(os.Stderr, cfg.LogLevel, cfg.LogFormat)
	},
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one analysis pass and print the suggested moves",
	RunE: func(cmd *cobra.Command, args []string) error {
		today, err := resolveToday()
		if err != nil {
			return err
		}

		logger.Info("=== Occupancy optimizer starting (today %s, source %s) ===", utils.FormatDate(today), cfg.Source)
		_, err = newPipeline(cfg, logger, os.Stdout).run(cmd.Context(), today)
		return err
	},
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Repeat the analysis pass on the SCHEDULE cron spec until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		p := newPipeline(cfg, logger, os.Stdout)
		c := cron.New()
		_, err := c.AddFunc(cfg.Schedule, func() {
			if _, err := p.run(ctx, time.Now()); err != nil {
				logger.Error("Scheduled pass failed: %v", err)
			}
		})
		if err != nil {
			return fmt.Errorf("invalid schedule %q: %w", cfg.Schedule, err)
		}

		c.Start()
		logger.Info("Scheduler started (%s)", cfg.Schedule)
		<-ctx.Done()

		<-c.Stop().Done()
		logger.Info("Scheduler stopped")
		return nil
	},
}

// resolveToday returns --today when given, otherwise the current date.
func resolveToday() (time.Time, error) {
	if todayArg == "" {
		return utils.Day(time.Now()), nil
	}
	t, err := utils.ParseDate(todayArg)
	if err != nil {
		return time.Time{}, fmt.Errorf("--today: %w", err)
	}
	return t, nil
}

// bindFlags registers the CLI flags over an already loaded cfg so env values
// become the flag defaults.
func bindFlags() {
	rootCmd.PersistentFlags().StringVar(&cfg.Source, "source", cfg.Source, "Inventory source: file or postgres")
	rootCmd.PersistentFlags().StringVar(&cfg.InputPath, "input", cfg.InputPath, "Properties file for the file source")
	rootCmd.PersistentFlags().StringVar(&cfg.HolidayPath, "holidays", cfg.HolidayPath, "Holiday calendar file")
	rootCmd.PersistentFlags().StringVar(&cfg.RegionCode, "region", cfg.RegionCode, "Region for properties without one")
	rootCmd.PersistentFlags().StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "debug, info, warn or error")
	runCmd.Flags().StringVar(&todayArg, "today", "", "Analyse as of this date (YYYY-MM-DD)")
	scheduleCmd.Flags().StringVar(&cfg.Schedule, "cron", cfg.Schedule, "Cron spec for repeated passes")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(scheduleCmd)
}

func main() {
	cfg = config.Load()
	bindFlags()

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
