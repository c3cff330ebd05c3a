package s0_data

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bistsignal/backend/internal/contracts"
)

// AnalysisRun is a stored report summary
type AnalysisRun struct {
	ID          string
	Symbol      string
	ConfigHash  string
	HybridScore float64
	Signal      string
	CreatedAt   time.Time
}

// AnalysisRepository keeps a history of produced reports in analysis_runs
type AnalysisRepository struct {
	db *pgxpool.Pool
}

// NewAnalysisRepository creates a new AnalysisRepository instance
func NewAnalysisRepository(db *pgxpool.Pool) *AnalysisRepository {
	return &AnalysisRepository{db: db}
}

// SaveReport stores report as JSONB keyed by its ID
func (r *AnalysisRepository) SaveReport(ctx context.Context, report *contracts.AnalysisReport) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}

	score := report.TechnicalScore
	signal := string(report.Aggregate.OverallSignal)
	if report.Hybrid != nil {
		score = report.Hybrid.HybridScore
		signal = string(report.Hybrid.Signal)
	}

	query := `
		INSERT INTO analysis_runs (id, symbol, config_hash, hybrid_score, signal, payload, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO NOTHING
	`

	_, err = r.db.Exec(ctx, query,
		report.ID,
		report.Symbol,
		report.ConfigHash,
		score,
		signal,
		payload,
		report.GeneratedAt,
	)
	if err != nil {
		return fmt.Errorf("insert analysis run: %w", err)
	}

	return nil
}

// RecentRuns returns the latest runs of symbol, newest first
func (r *AnalysisRepository) RecentRuns(ctx context.Context, symbol string, limit int) ([]AnalysisRun, error) {
	query := `
		SELECT id::text, symbol, config_hash, hybrid_score, signal, created_at
		FROM analysis_runs
		WHERE symbol = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, symbol, limit)
	if err != nil {
		return nil, fmt.Errorf("query analysis runs: %w", err)
	}
	defer rows.Close()

	var runs []AnalysisRun
	for rows.Next() {
		var run AnalysisRun
		if err := rows.Scan(&run.ID, &run.Symbol, &run.ConfigHash, &run.HybridScore, &run.Signal, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan analysis run: %w", err)
		}
		runs = append(runs, run)
	}

	return runs, rows.Err()
}
