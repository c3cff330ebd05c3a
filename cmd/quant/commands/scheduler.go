package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/bistsignal/backend/internal/scheduler"
	"github.com/bistsignal/backend/internal/scheduler/jobs"
	"github.com/bistsignal/backend/pkg/redis"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "Manage the scheduler",
	Long: `Starts the scheduler daemon or manages its jobs.

Subcommands:
  start   - start the scheduler
  list    - registered jobs
  run     - run a job now
  status  - job run history (needs Redis)

Example:
  go run ./cmd/quant scheduler start
  go run ./cmd/quant scheduler list
  go run ./cmd/quant scheduler run macro_refresh`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "Start the scheduler",
		Long: `Starts the scheduler and schedules every registered job.
Times are market time (TZ_MARKET, default Europe/Istanbul).

Registered jobs:
- price_warmup:   weekdays 18:15 (popular symbols into the cache)
- macro_refresh:  weekdays 18:30 (macro snapshot)
- tcmb_rate_sync: daily 15:00 (TCMB policy rate)
- cache_cleanup:  every 5 minutes, only without Redis

Stop with Ctrl+C.`,
		RunE: runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "List registered jobs",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "Run a job now and wait for it",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}

	schedulerStatusCmd = &cobra.Command{
		Use:   "status",
		Short: "Show job run statistics",
		RunE:  showStatus,
	}
)

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)
	schedulerCmd.AddCommand(schedulerStatusCmd)
}

func runScheduler(cmd *cobra.Command, args []string) error {
	a, sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	if err := sched.LoadHistory(cmd.Context()); err != nil {
		a.log.WithError(err).Warn("Failed to load job history")
	}
	sched.Start()

	fmt.Println("✅ Scheduler started")
	fmt.Println("\nRegistered jobs:")
	for _, jobName := range sched.GetAllJobs() {
		schedule, _ := sched.Schedule(jobName)
		fmt.Printf("  - %-16s %s\n", jobName, schedule)
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	a, sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	fmt.Printf("Registered jobs (%s):\n", a.cfg.Timezone)
	for _, jobName := range sched.GetAllJobs() {
		schedule, _ := sched.Schedule(jobName)
		fmt.Printf("  - %-16s %s\n", jobName, schedule)
	}

	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	a, sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	fmt.Printf("Running job: %s\n", jobName)

	result, err := sched.RunJob(cmd.Context(), jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	if !result.Success {
		return fmt.Errorf("job %s failed after %d attempts: %s", jobName, result.Attempts, result.Error)
	}
	PrintSuccess(fmt.Sprintf("Job %s completed in %.2fs", jobName, result.Duration.Seconds()))
	return nil
}

func showStatus(cmd *cobra.Command, args []string) error {
	a, sched, err := initScheduler()
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer a.Close()

	if !a.redis.Enabled() {
		PrintWarning("Redis is disabled; run history is not kept between processes")
	}
	if err := sched.LoadHistory(cmd.Context()); err != nil {
		return err
	}

	stats := sched.GetJobStats()

	fmt.Println("Job Statistics:")
	fmt.Println()

	for _, jobName := range sched.GetAllJobs() {
		stat := stats[jobName]
		fmt.Printf("📊 %s\n", jobName)
		fmt.Printf("   Schedule: %s\n", stat.Schedule)
		fmt.Printf("   Total Runs: %d\n", stat.TotalRuns)
		fmt.Printf("   Success: %d (%.1f%%)\n", stat.SuccessCount, stat.SuccessRate*100)
		fmt.Printf("   Failures: %d\n", stat.FailureCount)

		if stat.LastRun != nil {
			fmt.Printf("   Last Run: %s\n", stat.LastRun.Format("2006-01-02 15:04:05"))
		}

		if stat.LastSuccess != nil {
			fmt.Printf("   Last Success: %s\n", stat.LastSuccess.Format("2006-01-02 15:04:05"))
		}

		if stat.LastFailure != nil {
			fmt.Printf("   Last Failure: %s (%s)\n", stat.LastFailure.Format("2006-01-02 15:04:05"), stat.LastError)
		}

		if stat.NextRun != nil {
			fmt.Printf("   Next Run: %s\n", stat.NextRun.Format("2006-01-02 15:04:05"))
		}

		if stat.ConsecutiveFailures >= staleAfterFailures {
			PrintError(fmt.Sprintf("%s failed %d times in a row; its data may be stale", jobName, stat.ConsecutiveFailures))
		}

		fmt.Println()
	}

	return nil
}

// staleAfterFailures flags a job in `scheduler status`
const staleAfterFailures = 3

// initScheduler wires the app and registers every job
func initScheduler() (*app, *scheduler.Scheduler, error) {
	// 1. Wire collaborators
	a, err := newApp()
	if err != nil {
		return nil, nil, err
	}

	// 2. Market time zone (validated by config.Load)
	loc, err := a.cfg.Location()
	if err != nil {
		a.Close()
		return nil, nil, err
	}

	// 3. Create scheduler
	sched := scheduler.New(a.log, loc).WithRetry(2, 5*time.Minute)
	if a.metrics != nil {
		sched.WithRecorder(a.metrics)
	}
	sched.WithHistoryStore(scheduler.NewCacheHistoryStore(a.cache, redis.JobHistoryKey))

	// 4. Register jobs
	registered := []scheduler.Job{
		jobs.NewPriceWarmupJob(a.prices, nil, a.strategy.Meta.DefaultPeriod, 4, a.log),
		jobs.NewMacroRefreshJob(a.collector, a.log),
		jobs.NewTCMBRateSyncJob(a.tcmb, a.snapshots, a.log),
	}
	if a.memory != nil {
		registered = append(registered, jobs.NewCacheCleanupJob(a.memory, a.log))
	}
	for _, job := range registered {
		if err := sched.AddJob(job); err != nil {
			a.Close()
			return nil, nil, err
		}
	}

	return a, sched, nil
}
