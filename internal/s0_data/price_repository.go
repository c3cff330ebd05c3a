package s0_data

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bistsignal/backend/internal/contracts"
)

// PriceRepository persists daily bars in daily_prices
// ⭐ SSOT: price storage lives here only
type PriceRepository struct {
	pool *pgxpool.Pool
}

// NewPriceRepository creates a new price repository
func NewPriceRepository(pool *pgxpool.Pool) *PriceRepository {
	return &PriceRepository{pool: pool}
}

// LoadSeries returns the bars of symbol dated on or after from, ascending
func (r *PriceRepository) LoadSeries(ctx context.Context, symbol string, from time.Time) (*contracts.PriceSeries, error) {
	query := `
		SELECT trade_date, open, high, low, close, volume
		FROM daily_prices
		WHERE symbol = $1 AND trade_date >= $2
		ORDER BY trade_date ASC
	`

	rows, err := r.pool.Query(ctx, query, symbol, from)
	if err != nil {
		return nil, fmt.Errorf("query daily prices: %w", err)
	}
	defer rows.Close()

	series := &contracts.PriceSeries{Symbol: symbol}
	for rows.Next() {
		var (
			p      contracts.PricePoint
			volume int64
		)
		if err := rows.Scan(&p.Date, &p.Open, &p.High, &p.Low, &p.Close, &volume); err != nil {
			return nil, fmt.Errorf("scan daily price: %w", err)
		}
		p.Volume = float64(volume)
		series.Points = append(series.Points, p)
	}
	return series, rows.Err()
}

// SaveSeries upserts every bar of series in one batch
func (r *PriceRepository) SaveSeries(ctx context.Context, series *contracts.PriceSeries) error {
	if series.IsEmpty() {
		return nil
	}

	query := `
		INSERT INTO daily_prices (symbol, trade_date, open, high, low, close, volume, fetched_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, now())
		ON CONFLICT (symbol, trade_date) DO UPDATE SET
			open = EXCLUDED.open,
			high = EXCLUDED.high,
			low = EXCLUDED.low,
			close = EXCLUDED.close,
			volume = EXCLUDED.volume,
			fetched_at = EXCLUDED.fetched_at
	`

	batch := &pgx.Batch{}
	for _, p := range series.Points {
		batch.Queue(query, series.Symbol, p.Date, p.Open, p.High, p.Low, p.Close, int64(p.Volume))
	}

	results := r.pool.SendBatch(ctx, batch)
	defer results.Close()

	for range series.Points {
		if _, err := results.Exec(); err != nil {
			return fmt.Errorf("upsert daily price for %s: %w", series.Symbol, err)
		}
	}
	return nil
}

// LatestDate returns the newest stored bar date of symbol
func (r *PriceRepository) LatestDate(ctx context.Context, symbol string) (time.Time, bool, error) {
	var latest *time.Time
	err := r.pool.QueryRow(ctx, `SELECT max(trade_date) FROM daily_prices WHERE symbol = $1`, symbol).Scan(&latest)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("query latest date: %w", err)
	}
	if latest == nil {
		return time.Time{}, false, nil
	}
	return *latest, true, nil
}
