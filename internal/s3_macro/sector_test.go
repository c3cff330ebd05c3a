package s3_macro

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bistsignal/backend/internal/contracts"
)

func TestSectorOf(t *testing.T) {
	tests := []struct {
		symbol string
		want   contracts.Sector
	}{
		{"THYAO", contracts.SectorAirline},
		{" thyao.is ", contracts.SectorAirline},
		{"GARAN", contracts.SectorBank},
		{"EREGL", contracts.SectorExport},
		{"BIMAS", contracts.SectorRetail},
		{"ASELS", contracts.SectorTech},
		{"XXXXX", contracts.SectorNone},
	}

	for _, tt := range tests {
		t.Run(tt.symbol, func(t *testing.T) {
			assert.Equal(t, tt.want, SectorOf(tt.symbol))
		})
	}
}

func TestScoreSector(t *testing.T) {
	snap := referenceSnapshot()

	tests := []struct {
		name      string
		symbol    string
		wantScore float64
		wantDesc  string
	}{
		{
			name:      "airline",
			symbol:    "THYAO",
			wantScore: -9,
			wantDesc:  "HAVACILIK: Doviz yuksek (%3.2) [!], Petrol yuksek (%8.3) [!]",
		},
		{
			name:      "bank",
			symbol:    "GARAN",
			wantScore: 2,
			wantDesc:  "BANKACILIK: Yuksek faiz (%50.0) [+], Piyasa kotu (%-5.5) [!]",
		},
		{
			name:      "export",
			symbol:    "EREGL",
			wantScore: 5,
			wantDesc:  "İHRACATÇI SANAYİ: Doviz yuksek (%3.2) [+]",
		},
		{
			name:      "retail",
			symbol:    "BIMAS",
			wantScore: -7,
			wantDesc:  "PERAKENDE: Doviz yuksek (%3.2) [!], Piyasa kotu (%-5.5) [!]",
		},
		{
			name:      "recognized without formula",
			symbol:    "ASELS",
			wantScore: 0,
			wantDesc:  "Sektör: TECH (genel makro analiz kullanılıyor)",
		},
		{
			name:      "unknown",
			symbol:    "XXXXX",
			wantScore: 0,
			wantDesc:  "Sektör bilgisi yok (genel makro analiz kullanılıyor)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ScoreSector(tt.symbol, snap)
			assert.InDelta(t, tt.wantScore, got.RawScore, 1e-9)
			assert.Equal(t, tt.wantDesc, got.Description)
			assert.GreaterOrEqual(t, got.RawScore, -10.0)
			assert.LessOrEqual(t, got.RawScore, 10.0)
		})
	}
}

func TestScoreSector_ClampsAndEmpty(t *testing.T) {
	extreme := &contracts.MacroSnapshot{USDTRY: quote(40, 8), Oil: quote(90, 15)}
	got := ScoreSector("PGSUS", extreme)
	assert.Equal(t, -10.0, got.RawScore)

	got = ScoreSector("PGSUS", &contracts.MacroSnapshot{})
	assert.Equal(t, 0.0, got.RawScore)
	assert.Equal(t, "HAVACILIK: Veri yetersiz", got.Description)

	got = ScoreSector("EREGL", &contracts.MacroSnapshot{})
	assert.Equal(t, "İHRACATÇI: Veri yetersiz", got.Description)
}

func TestCombine(t *testing.T) {
	general := contracts.MacroAnalysis{TotalScore: -4.0}
	sector := contracts.SectorScore{Sector: contracts.SectorAirline, RawScore: -9}

	got := Combine(general, sector)
	assert.InDelta(t, -5.5, got.Combined, 1e-9)
	assert.InDelta(t, 22.5, got.CombinedNormalized, 1e-9)
	assert.Equal(t, contracts.SectorAirline, got.Sector.Sector)
}

func TestSectorSymbols(t *testing.T) {
	assert.Equal(t, []string{"PGSUS", "THYAO"}, SectorSymbols(contracts.SectorAirline))
	assert.Len(t, Sectors(), 9)
}
