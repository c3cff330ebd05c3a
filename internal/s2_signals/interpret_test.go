package s2_signals

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bistsignal/backend/internal/contracts"
	ind "github.com/bistsignal/backend/internal/s1_indicators"
)

func TestInterpretRSI(t *testing.T) {
	tests := []struct {
		name         string
		value        float64
		wantSignal   contracts.SignalCategory
		wantStrength int
		wantZone     string
	}{
		{"deep overbought", 80, contracts.SignalSell, 30, "ASIRI ALIM"},
		{"overbought boundary", 70, contracts.SignalSell, 0, "ASIRI ALIM"},
		{"deep oversold", 20, contracts.SignalBuy, 30, "ASIRI SATIM"},
		{"oversold boundary", 30, contracts.SignalBuy, 0, "ASIRI SATIM"},
		{"rising", 60, contracts.SignalHoldBuy, 20, "YUKSELIS EGILIMI"},
		{"falling", 40, contracts.SignalHoldSell, 20, "DUSUS EGILIMI"},
		{"neutral upper edge", 55, contracts.SignalHold, 0, "NOTR"},
		{"neutral lower edge", 45, contracts.SignalHold, 0, "NOTR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InterpretRSI(tt.value)
			assert.Equal(t, tt.wantSignal, got.Record.Signal)
			assert.Equal(t, tt.wantStrength, got.Record.Strength)
			assert.Equal(t, tt.wantZone, got.Label)
			assert.Contains(t, got.Record.Description, "RSI")
		})
	}

	t.Run("undefined", func(t *testing.T) {
		got := InterpretRSI(math.NaN())
		assert.Equal(t, contracts.SignalHold, got.Record.Signal)
		assert.Equal(t, 0, got.Record.Strength)
		assert.Equal(t, "Yetersiz veri", got.Record.Description)
	})
}

func f(v float64) *float64 { return &v }

func TestInterpretMACD(t *testing.T) {
	tests := []struct {
		name         string
		macd, signal float64
		hist         float64
		prevMACD     *float64
		prevSignal   *float64
		wantSignal   contracts.SignalCategory
		wantStrength int
		wantDesc     string
	}{
		{
			name: "bullish crossover", macd: 1.5, signal: 1.2, hist: 0.3,
			prevMACD: f(1.0), prevSignal: f(1.2),
			wantSignal: contracts.SignalBuy, wantStrength: 80, wantDesc: "MACD pozitif kesisme! GUCLU AL sinyali (Histogram: 0.30)",
		},
		{
			name: "bearish crossover", macd: -1.5, signal: -1.2, hist: -0.3,
			prevMACD: f(-1.0), prevSignal: f(-1.2),
			wantSignal: contracts.SignalSell, wantStrength: 80, wantDesc: "MACD negatif kesisme! GUCLU SAT sinyali (Histogram: -0.30)",
		},
		{
			name: "above signal without cross", macd: 2, signal: 1, hist: 1,
			prevMACD: f(1.8), prevSignal: f(1.0),
			wantSignal: contracts.SignalHoldBuy, wantStrength: 10, wantDesc: "MACD pozitif bolgede, yukselis trendi devam ediyor",
		},
		{
			name: "below signal capped strength", macd: -20, signal: -5, hist: -15,
			prevMACD: f(-19), prevSignal: f(-5),
			wantSignal: contracts.SignalHoldSell, wantStrength: 50, wantDesc: "MACD negatif bolgede, dusus trendi devam ediyor",
		},
		{
			name: "no previous values", macd: 0.5, signal: -0.1, hist: 0.6,
			wantSignal: contracts.SignalHoldBuy, wantStrength: 6, wantDesc: "MACD notr bolgede",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InterpretMACD(tt.macd, tt.signal, tt.hist, tt.prevMACD, tt.prevSignal)
			assert.Equal(t, tt.wantSignal, got.Record.Signal)
			assert.Equal(t, tt.wantStrength, got.Record.Strength)
			assert.Equal(t, tt.wantDesc, got.Record.Description)
		})
	}
}

func TestInterpretBollinger(t *testing.T) {
	const upper, middle, lower = 110.0, 100.0, 90.0

	tests := []struct {
		name         string
		price        float64
		wantSignal   contracts.SignalCategory
		wantStrength int
		wantLabel    string
	}{
		{"touches upper band", 110, contracts.SignalSell, 70, "UST BAND - ASIRI ALIM"},
		{"touches lower band", 90, contracts.SignalBuy, 70, "ALT BAND - ASIRI SATIM"},
		{"upper zone", 106, contracts.SignalHoldSell, 40, "UST BOLGE"},
		{"lower zone", 94, contracts.SignalHoldBuy, 40, "ALT BOLGE"},
		{"above middle", 102, contracts.SignalHoldBuy, 20, "ORTA UST - YUKSELIS"},
		{"below middle", 98, contracts.SignalHoldSell, 20, "ORTA ALT - DUSUS"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InterpretBollinger(tt.price, upper, middle, lower)
			assert.Equal(t, tt.wantSignal, got.Record.Signal)
			assert.Equal(t, tt.wantStrength, got.Record.Strength)
			assert.Equal(t, tt.wantLabel, got.Label)
			assert.InDelta(t, 20.0, got.Values["band_width"], 1e-9)
		})
	}

	t.Run("zero width", func(t *testing.T) {
		got := InterpretBollinger(100, 100, 100, 100)
		assert.Equal(t, contracts.SignalHold, got.Record.Signal)
		assert.Equal(t, "Bant genisligi sifir", got.Record.Description)
	})

	t.Run("undefined bands", func(t *testing.T) {
		got := InterpretBollinger(100, math.NaN(), 100, 90)
		assert.Equal(t, "Yetersiz veri", got.Record.Description)
	})
}

func TestInterpretMovingAverages(t *testing.T) {
	tests := []struct {
		name         string
		mas          map[int]float64
		wantSignal   contracts.SignalCategory
		wantStrength int
		wantDesc     string
	}{
		{
			name:         "above all",
			mas:          map[int]float64{20: 90, 50: 85, 200: 80},
			wantSignal:   contracts.SignalBuy,
			wantStrength: 45,
			wantDesc:     "GUCLU YUKSELIS TRENDI. Fiyat 3/3 MA'nin ustunde.",
		},
		{
			name:         "above two of three",
			mas:          map[int]float64{20: 90, 50: 95, 200: 110},
			wantSignal:   contracts.SignalHoldBuy,
			wantStrength: 15,
			wantDesc:     "YUKSELIS EGILIMI. Fiyat 2/3 MA'nin ustunde.",
		},
		{
			name:         "split",
			mas:          map[int]float64{20: 90, 50: 110},
			wantSignal:   contracts.SignalHold,
			wantStrength: 0,
			wantDesc:     "NOTR / KARASIZ. Fiyat 1/2 MA'nin ustunde.",
		},
		{
			name:         "below all, warm-up skipped",
			mas:          map[int]float64{20: 110, 50: 120, 200: math.NaN()},
			wantSignal:   contracts.SignalSell,
			wantStrength: 30,
			wantDesc:     "GUCLU DUSUS TRENDI. Fiyat 0/2 MA'nin ustunde.",
		},
		{
			name:         "below all three",
			mas:          map[int]float64{20: 110, 50: 120, 200: 130},
			wantSignal:   contracts.SignalSell,
			wantStrength: 45,
			wantDesc:     "GUCLU DUSUS TRENDI. Fiyat 0/3 MA'nin ustunde.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InterpretMovingAverages(100, tt.mas)
			assert.Equal(t, tt.wantSignal, got.Record.Signal)
			assert.Equal(t, tt.wantStrength, got.Record.Strength)
			assert.Equal(t, tt.wantDesc, got.Record.Description)
		})
	}
}

func TestMovingAverageBands_Edges(t *testing.T) {
	tests := []struct {
		net   float64
		want  contracts.SignalCategory
		label string
	}{
		{25.01, contracts.SignalBuy, "GUCLU YUKSELIS TRENDI"},
		{25, contracts.SignalHoldBuy, "YUKSELIS EGILIMI"},
		{0, contracts.SignalHold, "NOTR / KARASIZ"},
		{-25, contracts.SignalHoldSell, "DUSUS EGILIMI"},
		{-25.01, contracts.SignalSell, "GUCLU DUSUS TRENDI"},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%v", tt.net), func(t *testing.T) {
			band, ok := Lookup(MovingAverageBands, tt.net)
			require.True(t, ok)
			assert.Equal(t, tt.want, band.Signal)
			assert.Equal(t, tt.label, band.Label)
		})
	}
}

func TestInterpretVolume(t *testing.T) {
	tests := []struct {
		name         string
		res          *ind.VolumeResult
		wantSignal   contracts.SignalCategory
		wantStrength int
		wantPrefix   string
	}{
		{
			name:         "burst with rising price",
			res:          &ind.VolumeResult{Ratio: 3.5, PriceChange: 1, PriceChangePct: 2, Status: ind.VolumeBurst},
			wantSignal:   contracts.SignalBuy,
			wantStrength: 70,
			wantPrefix:   "HACIM PATLAMASI!",
		},
		{
			name:         "burst with falling price",
			res:          &ind.VolumeResult{Ratio: 6, PriceChange: -1, PriceChangePct: -2, Status: ind.VolumeBurst},
			wantSignal:   contracts.SignalSell,
			wantStrength: 100,
			wantPrefix:   "HACIM PATLAMASI!",
		},
		{
			name:         "high with falling price",
			res:          &ind.VolumeResult{Ratio: 2, PriceChange: -1, PriceChangePct: -1, Status: ind.VolumeHigh},
			wantSignal:   contracts.SignalHoldSell,
			wantStrength: 50,
			wantPrefix:   "Yuksek hacim",
		},
		{
			name:         "very low with a large move",
			res:          &ind.VolumeResult{Ratio: 0.3, PriceChange: 1, PriceChangePct: 4, Status: ind.VolumeVeryLow},
			wantSignal:   contracts.SignalHold,
			wantStrength: 10,
			wantPrefix:   "Cok dusuk hacim (0.3x) ama",
		},
		{
			name:         "normal with a large move",
			res:          &ind.VolumeResult{Ratio: 1, PriceChange: 1, PriceChangePct: 4, Status: ind.VolumeNormal},
			wantSignal:   contracts.SignalHoldBuy,
			wantStrength: 30,
			wantPrefix:   "Normal hacim ama",
		},
		{
			name:         "normal and quiet",
			res:          &ind.VolumeResult{Ratio: 1, PriceChange: 0.1, PriceChangePct: 0.5, Status: ind.VolumeNormal},
			wantSignal:   contracts.SignalHold,
			wantStrength: 10,
			wantPrefix:   "Normal hacim, normal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InterpretVolume(tt.res)
			assert.Equal(t, tt.wantSignal, got.Record.Signal)
			assert.Equal(t, tt.wantStrength, got.Record.Strength)
			assert.Contains(t, got.Record.Description, tt.wantPrefix)
		})
	}
}

func TestLookup_OrderMatters(t *testing.T) {
	b, ok := Lookup(RSIBands, 70)
	assert.True(t, ok)
	assert.Equal(t, contracts.SignalSell, b.Signal)

	_, ok = Lookup(RSIBands, math.NaN())
	assert.False(t, ok)
}
