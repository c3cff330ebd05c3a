package jobs

import (
	"context"
	"fmt"

	"github.com/bistsignal/backend/internal/contracts"
	"github.com/bistsignal/backend/pkg/logger"
)

// MacroRefresher rebuilds and stores the macro snapshot; *s0_data.MacroCollector satisfies it
type MacroRefresher interface {
	Refresh(ctx context.Context) (*contracts.MacroSnapshot, error)
}

// MacroRefreshJob refreshes the macro snapshot after the BIST close
// ⭐ SSOT: the macro snapshot schedule lives in this job only
type MacroRefreshJob struct {
	refresher MacroRefresher
	logger    *logger.Logger
}

// NewMacroRefreshJob creates a new macro refresh job
func NewMacroRefreshJob(refresher MacroRefresher, log *logger.Logger) *MacroRefreshJob {
	return &MacroRefreshJob{
		refresher: refresher,
		logger:    log,
	}
}

// Name returns the job name
func (j *MacroRefreshJob) Name() string {
	return "macro_refresh"
}

// Schedule returns the cron schedule (weekdays 18:30 market time)
func (j *MacroRefreshJob) Schedule() string {
	return "0 30 18 * * 1-5"
}

// Run executes the macro refresh
func (j *MacroRefreshJob) Run(ctx context.Context) error {
	j.logger.Info("Starting scheduled macro refresh")

	snapshot, err := j.refresher.Refresh(ctx)
	if err != nil {
		return fmt.Errorf("refresh macro snapshot: %w", err)
	}

	missing := 0
	for _, q := range []*contracts.FactorQuote{snapshot.USDTRY, snapshot.EURTRY, snapshot.Oil, snapshot.Gold} {
		if q == nil {
			missing++
		}
	}
	if snapshot.BIST100 == nil {
		missing++
	}

	j.logger.WithFields(map[string]interface{}{
		"last_update": snapshot.LastUpdate,
		"missing":     missing,
	}).Info("Macro refresh completed")
	return nil
}
