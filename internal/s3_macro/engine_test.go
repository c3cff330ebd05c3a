package s3_macro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bistsignal/backend/internal/contracts"
	"github.com/bistsignal/backend/pkg/logger"
)

func quote(current, change float64) *contracts.FactorQuote {
	return &contracts.FactorQuote{Current: contracts.Float(current), Change30D: contracts.Float(change)}
}

// reference snapshot: weakening lira, rate at 50, falling index, firm commodities
func referenceSnapshot() *contracts.MacroSnapshot {
	return &contracts.MacroSnapshot{
		LastUpdate: "2025-11-11",
		USDTRY:     quote(34.25, 3.2),
		EURTRY:     quote(37.80, 2.8),
		BIST100: &contracts.IndexQuote{
			Current:   contracts.Float(9500),
			Trend:     contracts.TrendDown,
			Change30D: contracts.Float(-5.5),
		},
		Oil:      quote(75.2, 8.3),
		Gold:     quote(2010.5, 4.2),
		TCMBRate: contracts.Float(50.0),
	}
}

func TestFactorWeightsSumToOne(t *testing.T) {
	sum := 0
	for _, factor := range FactorOrder {
		sum += factorWeightPercents[factor]
	}
	assert.Equal(t, 100, sum)
	assert.Len(t, factorWeightPercents, len(FactorOrder))
}

func TestScoreUSDTRY(t *testing.T) {
	tests := []struct {
		name      string
		q         *contracts.FactorQuote
		wantScore float64
		wantDesc  string
	}{
		{"reference", quote(34.25, 3.2), -4, "USD/TRY 34.2 TL (Normal seviye (30+), Hizli yukselis (+%3.2)) [-]"},
		{"high level amplifies rise", quote(42, 2), -4.6, "USD/TRY 42.0 TL (Orta-yuksek seviye (40+), Yukselis (+%2.0)) [-]"},
		{"low level softens fall", quote(28, -4), 3.8, "USD/TRY 28.0 TL (Dusuk seviye (<30), Hizli dusus (%-4.0)) [+]"},
		{"extreme clamps", quote(60, 30), -10, "USD/TRY 60.0 TL (Cok yuksek seviye (50+), Cok hizli yukselis (+%30.0)) [-]"},
		{"stable", quote(32, 0.2), 0, "USD/TRY 32.0 TL (Normal seviye (30+), Stabil (%0.2)) [!]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, desc, ok := ScoreUSDTRY(tt.q)
			assert.True(t, ok)
			assert.InDelta(t, tt.wantScore, score, 1e-9)
			assert.Equal(t, tt.wantDesc, desc)
		})
	}

	t.Run("missing", func(t *testing.T) {
		score, desc, ok := ScoreUSDTRY(&contracts.FactorQuote{Current: contracts.Float(34)})
		assert.False(t, ok)
		assert.Equal(t, 0.0, score)
		assert.Equal(t, "USD/TRY verisi eksik", desc)
	})
}

func TestScoreTCMBRate(t *testing.T) {
	tests := []struct {
		name      string
		rate      *float64
		prev      *float64
		wantScore float64
		wantDesc  string
	}{
		{"level only", contracts.Float(50), nil, -3, "TCMB %50.0 (Yuksek faiz (50+)) [-]"},
		{"hike at high level", contracts.Float(52.5), contracts.Float(50), -6.6, "TCMB %52.5 (Yuksek faiz (50+), Artti (+%2.5)) [-]"},
		{"cut", contracts.Float(42.5), contracts.Float(46), 2, "TCMB %42.5 (Orta faiz (40+), Dustu (%-3.5)) [+]"},
		{"unchanged", contracts.Float(35), contracts.Float(35), 0, "TCMB %35.0 (Normal faiz (30+), Sabit) [!]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, desc, ok := ScoreTCMBRate(tt.rate, tt.prev)
			assert.True(t, ok)
			assert.InDelta(t, tt.wantScore, score, 1e-9)
			assert.Equal(t, tt.wantDesc, desc)
		})
	}

	t.Run("missing", func(t *testing.T) {
		score, desc, ok := ScoreTCMBRate(nil, nil)
		assert.False(t, ok)
		assert.Equal(t, 0.0, score)
		assert.Equal(t, "TCMB faizi girilmemis (notr kabul)", desc)
	})
}

func TestScoreBIST100(t *testing.T) {
	tests := []struct {
		name      string
		q         *contracts.IndexQuote
		wantScore float64
		wantDesc  string
	}{
		{"down", &contracts.IndexQuote{Trend: contracts.TrendDown, Change30D: contracts.Float(-5.5)}, -6, "BIST100 dusus trendinde (son 30g: %-5.5) [-]"},
		{"sharp rally", &contracts.IndexQuote{Trend: contracts.TrendUp, Change30D: contracts.Float(12)}, 7.8, "BIST100 yukselis trendinde ve son 30 gunde %12.0 degisti [+]"},
		{"flat without change", &contracts.IndexQuote{Trend: contracts.TrendFlat}, 0, "BIST100 yatay seyrediyor [o]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, desc, ok := ScoreBIST100(tt.q)
			assert.True(t, ok)
			assert.InDelta(t, tt.wantScore, score, 1e-9)
			assert.Equal(t, tt.wantDesc, desc)
		})
	}
}

func TestScoreBIST100_Degraded(t *testing.T) {
	tests := []struct {
		name     string
		q        *contracts.IndexQuote
		wantDesc string
	}{
		{"missing", nil, "BIST100 verisi eksik"},
		{"empty trend", &contracts.IndexQuote{Change30D: contracts.Float(3)}, "BIST100 verisi eksik"},
		{"unknown trend", &contracts.IndexQuote{Trend: "sideways", Change30D: contracts.Float(12)}, "BIST100 trend bilinmiyor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, desc, ok := ScoreBIST100(tt.q)
			assert.False(t, ok)
			assert.Zero(t, score)
			assert.Equal(t, tt.wantDesc, desc)
		})
	}
}

func TestScoreOilAndGold(t *testing.T) {
	score, desc, ok := ScoreOil(quote(75.2, 8.3))
	assert.True(t, ok)
	assert.InDelta(t, -2.0, score, 1e-9)
	assert.Equal(t, "Petrol $75.2 (Orta-yuksek ($75+), Yukselis (+%8.3)) [-]", desc)

	// 90 and +12: level -2, momentum -2 x1.4
	score, _, _ = ScoreOil(quote(90, 12))
	assert.InDelta(t, -4.8, score, 1e-9)

	score, desc, ok = ScoreGold(quote(2010.5, 4.2))
	assert.True(t, ok)
	assert.InDelta(t, -1.0, score, 1e-9)
	assert.Equal(t, "Altin $2010.5 (Orta-yuksek ($2000+), Yukselis (+%4.2)) [!]", desc)

	// 2300 and +10: level -1.5, momentum -1.5 x1.5
	score, _, _ = ScoreGold(quote(2300, 10))
	assert.InDelta(t, -3.8, score, 1e-9)

	_, desc, ok = ScoreGold(nil)
	assert.False(t, ok)
	assert.Equal(t, "Altin verisi eksik", desc)
}

func TestEngine_ReferenceScenario(t *testing.T) {
	e := NewEngine(nil, logger.NewNop())

	got, err := e.Analyze(referenceSnapshot())
	require.NoError(t, err)

	assert.InDelta(t, -4.0, got.TotalScore, 1e-9)
	assert.InDelta(t, 30.0, got.NormalizedScore, 1e-9)
	assert.Equal(t, "[!] Makroekonomik ortam HAFIF OLUMSUZ - Risk var", got.Summary)
	assert.Equal(t, "2025-11-11", got.LastUpdate)

	require.Len(t, got.Components, 5)
	assert.InDelta(t, -4.0, got.Components[contracts.FactorUSDTRY].RawScore, 1e-9)
	assert.InDelta(t, -3.0, got.Components[contracts.FactorTCMBRate].RawScore, 1e-9)
	assert.InDelta(t, -6.0, got.Components[contracts.FactorBIST100].RawScore, 1e-9)
	assert.InDelta(t, 0.30, got.Components[contracts.FactorBIST100].Weight, 1e-12)
}

type degradedCounter struct{ factors []string }

func (c *degradedCounter) RecordAnalysis(string)             {}
func (c *degradedCounter) RecordIndicatorFailure(string)     {}
func (c *degradedCounter) RecordHybridScore(string, float64) {}
func (c *degradedCounter) RecordLatency(string, float64)     {}
func (c *degradedCounter) RecordMacroDegraded(f string)      { c.factors = append(c.factors, f) }

func TestEngine_MissingFactorsDegrade(t *testing.T) {
	counter := &degradedCounter{}
	e := NewEngine(counter, logger.NewNop())

	snap := referenceSnapshot()
	snap.Oil = nil
	snap.TCMBRate = nil
	snap.LastUpdate = ""

	got, err := e.Analyze(snap)
	require.NoError(t, err)

	assert.True(t, got.Components[contracts.FactorOil].Degraded)
	assert.Equal(t, "Petrol verisi eksik", got.Components[contracts.FactorOil].Description)
	assert.Equal(t, "TCMB faizi girilmemis (notr kabul)", got.Components[contracts.FactorTCMBRate].Description)
	assert.ElementsMatch(t, []string{contracts.FactorOil, contracts.FactorTCMBRate}, counter.factors)
	assert.Equal(t, "Bilinmiyor", got.LastUpdate)

	// -4*.3 + -6*.3 + -1*.05
	assert.InDelta(t, -3.05, got.TotalScore, 1e-9)
}

func TestEngine_MissingSnapshot(t *testing.T) {
	e := NewEngine(nil, logger.NewNop())
	_, err := e.Analyze(nil)
	assert.True(t, contracts.IsConfigError(err))
}

func TestEngine_EmptySnapshotIsNeutral(t *testing.T) {
	e := NewEngine(nil, logger.NewNop())
	got, err := e.Analyze(&contracts.MacroSnapshot{})
	require.NoError(t, err)

	assert.Equal(t, 0.0, got.TotalScore)
	assert.Equal(t, 50.0, got.NormalizedScore)
	assert.Equal(t, "[o] Makroekonomik ortam NOTR - Karma sinyaller", got.Summary)
}
