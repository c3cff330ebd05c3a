package jobs

import (
	"context"
	"fmt"
	"math"

	"github.com/bistsignal/backend/internal/contracts"
	"github.com/bistsignal/backend/internal/external/tcmb"
	"github.com/bistsignal/backend/pkg/logger"
)

// RateSource reads the published policy rate; *tcmb.Client satisfies it
type RateSource interface {
	FetchPolicyRate(ctx context.Context) (*tcmb.PolicyRate, error)
}

// RateStore holds the policy rate of the macro snapshot; *s0_data.SnapshotFileStore satisfies it
type RateStore interface {
	Load(ctx context.Context) (*contracts.MacroSnapshot, error)
	UpdateTCMBRate(ctx context.Context, rate float64) (*contracts.MacroSnapshot, error)
}

// TCMBRateSyncJob copies the published policy rate into the macro snapshot
type TCMBRateSyncJob struct {
	source RateSource
	store  RateStore
	logger *logger.Logger
}

// NewTCMBRateSyncJob creates a new policy rate sync job
func NewTCMBRateSyncJob(source RateSource, store RateStore, log *logger.Logger) *TCMBRateSyncJob {
	return &TCMBRateSyncJob{
		source: source,
		store:  store,
		logger: log,
	}
}

// Name returns the job name
func (j *TCMBRateSyncJob) Name() string {
	return "tcmb_rate_sync"
}

// Schedule returns the cron schedule (daily 15:00, after decision announcements)
func (j *TCMBRateSyncJob) Schedule() string {
	return "0 0 15 * * *"
}

// Run executes the sync; an unchanged rate leaves the snapshot untouched
func (j *TCMBRateSyncJob) Run(ctx context.Context) error {
	published, err := j.source.FetchPolicyRate(ctx)
	if err != nil {
		return fmt.Errorf("fetch policy rate: %w", err)
	}
	rate := published.Current.Rate

	current, err := j.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load macro snapshot: %w", err)
	}

	log := j.logger.WithFields(map[string]interface{}{
		"rate":           rate,
		"effective_date": published.Current.EffectiveDate.Format("2006-01-02"),
	})

	if current.TCMBRate != nil && math.Abs(*current.TCMBRate-rate) < 1e-9 {
		log.Debug("Policy rate unchanged")
		return nil
	}

	if _, err := j.store.UpdateTCMBRate(ctx, rate); err != nil {
		return fmt.Errorf("update policy rate: %w", err)
	}

	if current.TCMBRate != nil {
		log = log.WithField("previous", *current.TCMBRate)
	}
	log.Info("Policy rate updated")
	return nil
}
