package s3_macro

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bistsignal/backend/internal/contracts"
)

// sectorMembers is the static symbol list of each sector
var sectorMembers = map[contracts.Sector][]string{
	contracts.SectorAirline: {"THYAO", "PGSUS"},
	contracts.SectorBank:    {"GARAN", "AKBNK", "ISCTR", "YKBNK", "HALKB", "VAKBN"},
	contracts.SectorHolding: {"SAHOL", "KCHOL", "DOHOL", "TAVHL"},
	contracts.SectorEnergy:  {"TUPRS", "PETKM", "PENTA", "AKENR"},
	contracts.SectorTech:    {"ASELS", "LOGO", "NETAS", "KAREL"},
	contracts.SectorExport:  {"EREGL", "ARCLK", "VESTEL", "FROTO", "TOASO", "SISE"},
	contracts.SectorRetail:  {"BIMAS", "MGROS", "SOKM", "MAVI"},
	contracts.SectorTourism: {"MAALT", "AYCES", "KSTUR"},
	contracts.SectorTelecom: {"TTKOM", "TCELL", "TURKCELL"},
}

var symbolSector = func() map[string]contracts.Sector {
	out := make(map[string]contracts.Sector)
	for sector, symbols := range sectorMembers {
		for _, s := range symbols {
			out[s] = sector
		}
	}
	return out
}()

// NormalizeSymbol trims, upper-cases and strips the .IS exchange suffix
func NormalizeSymbol(symbol string) string {
	s := strings.ToUpper(strings.TrimSpace(symbol))
	return strings.TrimSuffix(s, ".IS")
}

// SectorOf returns the sector of symbol, or SectorNone when unknown
func SectorOf(symbol string) contracts.Sector {
	return symbolSector[NormalizeSymbol(symbol)]
}

// SectorSymbols returns the members of sector in alphabetical order
func SectorSymbols(sector contracts.Sector) []string {
	out := append([]string(nil), sectorMembers[sector]...)
	sort.Strings(out)
	return out
}

// Sectors returns every known sector tag in alphabetical order
func Sectors() []contracts.Sector {
	out := make([]contracts.Sector, 0, len(sectorMembers))
	for s := range sectorMembers {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// SectorScorer scores one sector from the macro snapshot
type SectorScorer func(snapshot *contracts.MacroSnapshot) (float64, string)

// sectorScorers is the dispatch table; sectors without an entry score 0
var sectorScorers = map[contracts.Sector]SectorScorer{
	contracts.SectorAirline: scoreAirline,
	contracts.SectorBank:    scoreBank,
	contracts.SectorExport:  scoreExport,
	contracts.SectorRetail:  scoreRetail,
}

// ScoreSector applies the sector-specific formula for symbol
func ScoreSector(symbol string, snapshot *contracts.MacroSnapshot) contracts.SectorScore {
	sector := SectorOf(symbol)
	if sector == contracts.SectorNone {
		return contracts.SectorScore{
			Sector:      contracts.SectorNone,
			Description: "Sektör bilgisi yok (genel makro analiz kullanılıyor)",
		}
	}

	scorer, ok := sectorScorers[sector]
	if !ok || snapshot == nil {
		return contracts.SectorScore{
			Sector:      sector,
			Description: fmt.Sprintf("Sektör: %s (genel makro analiz kullanılıyor)", strings.ToUpper(string(sector))),
		}
	}

	score, desc := scorer(snapshot)
	return contracts.SectorScore{
		Sector:      sector,
		RawScore:    clamp(score, -10, 10),
		Description: desc,
	}
}

func change(q *contracts.FactorQuote) *float64 {
	if q == nil || q.Change30D == nil || !finite(*q.Change30D) {
		return nil
	}
	return q.Change30D
}

func indexChange(q *contracts.IndexQuote) *float64 {
	if q == nil || q.Change30D == nil || !finite(*q.Change30D) {
		return nil
	}
	return q.Change30D
}

func describeSector(prefix, empty string, factors []string) string {
	if len(factors) == 0 {
		return empty
	}
	return prefix + strings.Join(factors, ", ")
}

// scoreAirline: a rising lira cost base (fuel, leases) and rising oil hurt
func scoreAirline(m *contracts.MacroSnapshot) (float64, string) {
	score := 0.0
	factors := make([]string, 0, 2)

	if usd := change(m.USDTRY); usd != nil {
		switch v := *usd; {
		case v >= 5:
			score -= 10
			factors = append(factors, fmt.Sprintf("Doviz cok yuksek (%%%.1f) [-]", v))
		case v >= 2:
			score -= 6
			factors = append(factors, fmt.Sprintf("Doviz yuksek (%%%.1f) [!]", v))
		case v <= -2:
			score += 6
			factors = append(factors, fmt.Sprintf("Doviz dusuyor (%%%.1f) [+]", v))
		}
	}

	if oil := change(m.Oil); oil != nil {
		switch v := *oil; {
		case v >= 10:
			score -= 6
			factors = append(factors, fmt.Sprintf("Petrol cok yuksek (%%%.1f) [-]", v))
		case v >= 5:
			score -= 3
			factors = append(factors, fmt.Sprintf("Petrol yuksek (%%%.1f) [!]", v))
		case v <= -5:
			score += 3
			factors = append(factors, fmt.Sprintf("Petrol dusuyor (%%%.1f) [+]", v))
		}
	}

	return score, describeSector("HAVACILIK: ", "HAVACILIK: Veri yetersiz", factors)
}

// scoreBank: high policy rates widen margins, a falling market raises credit risk
func scoreBank(m *contracts.MacroSnapshot) (float64, string) {
	score := 0.0
	factors := make([]string, 0, 2)

	if m.TCMBRate != nil && finite(*m.TCMBRate) {
		rate := *m.TCMBRate
		switch {
		case rate >= 50:
			score += 4
			factors = append(factors, fmt.Sprintf("Yuksek faiz (%%%s) [+]", formatRate(rate)))
		case rate >= 40:
			score += 2
			factors = append(factors, fmt.Sprintf("Orta faiz (%%%s) [o]", formatRate(rate)))
		default:
			score -= 2
			factors = append(factors, fmt.Sprintf("Dusuk faiz (%%%s) [!]", formatRate(rate)))
		}
	}

	if bist := indexChange(m.BIST100); bist != nil {
		switch v := *bist; {
		case v <= -10:
			score -= 5
			factors = append(factors, fmt.Sprintf("Piyasa cok kotu (%%%.1f) [-]", v))
		case v <= -5:
			score -= 2
			factors = append(factors, fmt.Sprintf("Piyasa kotu (%%%.1f) [!]", v))
		}
	}

	return score, describeSector("BANKACILIK: ", "BANKACILIK: Veri yetersiz", factors)
}

// scoreExport: a weaker lira against USD and EUR helps exporters
func scoreExport(m *contracts.MacroSnapshot) (float64, string) {
	score := 0.0
	factors := make([]string, 0, 2)

	if usd := change(m.USDTRY); usd != nil {
		switch v := *usd; {
		case v >= 5:
			score += 8
			factors = append(factors, fmt.Sprintf("Doviz cok yuksek (%%%.1f) [+]", v))
		case v >= 2:
			score += 5
			factors = append(factors, fmt.Sprintf("Doviz yuksek (%%%.1f) [+]", v))
		case v <= -3:
			score -= 5
			factors = append(factors, fmt.Sprintf("Doviz dusuyor (%%%.1f) [!]", v))
		}
	}

	if eur := change(m.EURTRY); eur != nil {
		switch v := *eur; {
		case v >= 3:
			score += 4
			factors = append(factors, fmt.Sprintf("Euro yuksek (%%%.1f) [+]", v))
		case v <= -3:
			score -= 3
			factors = append(factors, fmt.Sprintf("Euro dusuyor (%%%.1f) [!]", v))
		}
	}

	return score, describeSector("İHRACATÇI SANAYİ: ", "İHRACATÇI: Veri yetersiz", factors)
}

// scoreRetail: a weaker lira raises import costs, a strong market lifts spending
func scoreRetail(m *contracts.MacroSnapshot) (float64, string) {
	score := 0.0
	factors := make([]string, 0, 2)

	if usd := change(m.USDTRY); usd != nil {
		switch v := *usd; {
		case v >= 5:
			score -= 7
			factors = append(factors, fmt.Sprintf("Doviz cok yuksek (%%%.1f) [-]", v))
		case v >= 2:
			score -= 4
			factors = append(factors, fmt.Sprintf("Doviz yuksek (%%%.1f) [!]", v))
		case v <= -2:
			score += 4
			factors = append(factors, fmt.Sprintf("Doviz dusuyor (%%%.1f) [+]", v))
		}
	}

	if bist := indexChange(m.BIST100); bist != nil {
		switch v := *bist; {
		case v >= 5:
			score += 3
			factors = append(factors, fmt.Sprintf("Piyasa iyi (%%%.1f) [+]", v))
		case v <= -5:
			score -= 3
			factors = append(factors, fmt.Sprintf("Piyasa kotu (%%%.1f) [!]", v))
		}
	}

	return score, describeSector("PERAKENDE: ", "PERAKENDE: Veri yetersiz", factors)
}

// Blend weights of the general macro score and the sector score
const (
	DefaultGeneralBlend = 0.7
	DefaultSectorBlend  = 0.3
)

// Combine blends the general macro total with the sector score (0.7 / 0.3)
func Combine(general contracts.MacroAnalysis, sector contracts.SectorScore) contracts.CombinedMacro {
	return CombineWeighted(general, sector, DefaultGeneralBlend, DefaultSectorBlend)
}

// CombineWeighted blends with explicit weights; both are expected to sum to 1
func CombineWeighted(general contracts.MacroAnalysis, sector contracts.SectorScore, generalWeight, sectorWeight float64) contracts.CombinedMacro {
	combined := clamp(general.TotalScore*generalWeight+sector.RawScore*sectorWeight, -10, 10)
	return contracts.CombinedMacro{
		General:            general,
		Sector:             sector,
		Combined:           combined,
		CombinedNormalized: (combined + 10) * 5,
	}
}
