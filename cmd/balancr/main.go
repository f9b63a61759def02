package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/christopherklint97/balancr/internal/config"
	"github.com/christopherklint97/balancr/internal/engine"
	"github.com/christopherklint97/balancr/internal/scheduler"
	"github.com/christopherklint97/balancr/internal/store"
	"github.com/christopherklint97/balancr/internal/toggl"
	"github.com/christopherklint97/balancr/internal/workday"
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "balancr",
	Short: "Monthly work-hour balance against your Toggl time log",
	Long:  "balancr compares the hours you logged in Toggl this month with the hours your work schedule expected, adjusted for declared holidays and half days.",
}

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Fetch this month's entries and show the balance",
	RunE:  runSync,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Alias for sync",
	RunE:  runSync,
}

var holidayCmd = &cobra.Command{
	Use:   "holiday",
	Short: "Manage declared holidays (0 expected hours)",
}

var halfdayCmd = &cobra.Command{
	Use:   "halfday",
	Short: "Manage declared half days (5 expected hours)",
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Keep syncing periodically and after day changes",
	RunE:  runWatch,
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop a running watcher",
	RunE:  runStop,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Open config file in your editor",
	RunE:  runConfig,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	holidayCmd.AddCommand(
		newAddCmd("holiday", (*store.DaySetStore).AddHoliday),
		newRemoveCmd("holiday", (*store.DaySetStore).RemoveHoliday),
		newListCmd("holiday", (*store.DaySetStore).Holidays),
		importCmd,
	)
	halfdayCmd.AddCommand(
		newAddCmd("half day", (*store.DaySetStore).AddHalfDay),
		newRemoveCmd("half day", (*store.DaySetStore).RemoveHalfDay),
		newListCmd("half day", (*store.DaySetStore).HalfDays),
	)

	rootCmd.AddCommand(syncCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(holidayCmd)
	rootCmd.AddCommand(halfdayCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger() *slog.Logger {
	if !verbose {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

func openDaySets(logger *slog.Logger) (*store.DB, *store.DaySetStore, error) {
	path, err := store.DefaultPath()
	if err != nil {
		return nil, nil, err
	}
	db, err := store.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("opening database: %w", err)
	}
	days, err := store.NewDaySetStore(db, logger)
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return db, days, nil
}

func newEngine(cfg *config.Config, days *store.DaySetStore, logger *slog.Logger) *engine.Engine {
	client := toggl.NewClient(cfg.Toggl.APIKey, cfg.Toggl.BaseURL, logger)
	creds := engine.Credentials{
		APIKey:      cfg.Toggl.APIKey,
		WorkspaceID: cfg.Toggl.WorkspaceID,
	}
	sched := workday.Schedule{
		WeekdayHours: cfg.Workweek.WeekdayHours,
		FridayHours:  cfg.Workweek.FridayHours,
		HalfDayHours: cfg.Workweek.HalfDayHours,
	}
	return engine.New(creds, client, days, logger, engine.WithSchedule(sched))
}

func runSync(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, days, err := openDaySets(logger)
	if err != nil {
		return err
	}
	defer db.Close()

	eng := newEngine(cfg, days, logger)
	res := eng.Sync(cmd.Context())
	fmt.Print(renderReport(res))
	return nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	logger := newLogger()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	db, days, err := openDaySets(logger)
	if err != nil {
		return err
	}
	defer db.Close()

	eng := newEngine(cfg, days, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	w := scheduler.NewWatcher(cfg, eng, days.Changes(), logger, func(res engine.Result) {
		fmt.Printf("[%s] %s", time.Now().Format("15:04"), renderReport(res))
	})
	return w.Run(ctx)
}

func runStop(cmd *cobra.Command, args []string) error {
	pid, err := scheduler.ReadPID()
	if err != nil {
		return err
	}

	process, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("finding process %d: %w", pid, err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("sending stop signal: %w", err)
	}

	fmt.Printf("Sent stop signal to balancr (PID %d)\n", pid)
	return nil
}

func runConfig(cmd *cobra.Command, args []string) error {
	if err := config.EnsureConfigDir(); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	configPath, err := config.ConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg := config.DefaultConfig()
		data := fmt.Sprintf(`[toggl]
api_key = "%s"
workspace_id = "%s"

[workweek]
weekday_hours = %.0f
friday_hours = %.0f
half_day_hours = %.0f

[watch]
interval_minutes = %d
notify = %t
notify_threshold_hours = %.0f
`,
			cfg.Toggl.APIKey,
			cfg.Toggl.WorkspaceID,
			cfg.Workweek.WeekdayHours,
			cfg.Workweek.FridayHours,
			cfg.Workweek.HalfDayHours,
			cfg.Watch.IntervalMinutes,
			cfg.Watch.Notify,
			cfg.Watch.NotifyThresholdHours,
		)
		if err := os.WriteFile(configPath, []byte(data), 0644); err != nil {
			return fmt.Errorf("writing default config: %w", err)
		}
	}

	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = "vi"
	}

	fmt.Printf("Opening %s with %s...\n", configPath, editor)

	proc := os.ProcAttr{
		Files: []*os.File{os.Stdin, os.Stdout, os.Stderr},
	}
	process, err := os.StartProcess(editor, []string{editor, configPath}, &proc)
	if err != nil {
		fmt.Printf("Could not open editor. Config file is at: %s\n", configPath)
		return nil
	}
	_, err = process.Wait()
	return err
}
