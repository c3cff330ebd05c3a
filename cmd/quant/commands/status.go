package commands

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"time"

	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check dependencies and configuration",
	Long: `Connects to every configured dependency and reports its state.

Checks:
- macro snapshot file (MACRO_DATA_PATH)
- Redis (REDIS_ENABLED)
- PostgreSQL (DATABASE_URL), with pool statistics

Example:
  go run ./cmd/quant status`,
	Args: cobra.NoArgs,
	RunE: runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	fmt.Println()
	PrintDoubleSeparator()
	PrintKeyValue("Env", a.cfg.Env, 12)
	PrintKeyValue("Config", fmt.Sprintf("%s (%s)", a.cfg.AnalysisConfig, a.brain.ConfigHash()[:12]), 12)
	PrintKeyValue("Snapshot", a.snapshots.Path(), 12)
	if a.db != nil {
		PrintKeyValue("Database", maskPassword(a.cfg.Database.URL), 12)
	} else {
		PrintKeyValue("Database", "disabled", 12)
	}
	if a.redis.Enabled() {
		PrintKeyValue("Cache", "redis "+a.redis.Addr(), 12)
	} else {
		PrintKeyValue("Cache", "in-process (REDIS_ENABLED=false)", 12)
	}
	PrintSeparator()

	ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()

	checks := a.healthChecks()
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	failed := 0
	for _, name := range names {
		if err := checks[name](ctx); err != nil {
			failed++
			PrintError(fmt.Sprintf("%-15s %v", name, err))
			continue
		}
		PrintSuccess(name)
	}

	if a.db != nil {
		if status, err := a.db.HealthCheck(ctx); err == nil {
			PrintSeparator()
			fmt.Println("📊 Connection Pool Statistics:")
			fmt.Printf("   Response Time: %v\n", status.ResponseTime)
			fmt.Printf("   Max Connections: %d\n", status.Stats.MaxConns)
			fmt.Printf("   Total Connections: %d\n", status.Stats.TotalConns)
			fmt.Printf("   Idle Connections: %d\n", status.Stats.IdleConns)
			fmt.Printf("   Acquire Count: %d\n", status.Stats.AcquireCount)
		}
	}
	PrintDoubleSeparator()

	if failed > 0 {
		return fmt.Errorf("%d of %d checks failed", failed, len(names))
	}
	return nil
}

// maskPassword hides the password of a database URL
func maskPassword(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return raw
	}
	if _, ok := u.User.Password(); ok {
		u.User = url.UserPassword(u.User.Username(), "xxxxx")
	}
	return u.String()
}
