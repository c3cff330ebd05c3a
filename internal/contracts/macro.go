package contracts

// IndexTrend is the discrete trend flag of the equity index
type IndexTrend string

const (
	TrendUp   IndexTrend = "up"
	TrendDown IndexTrend = "down"
	TrendFlat IndexTrend = "flat"
)

// FactorQuote is the level and 30-day momentum of a macro factor
type FactorQuote struct {
	Current   *float64 `json:"current"`
	Change30D *float64 `json:"change_30d"`
}

// IndexQuote is the equity index level, trend and 30-day momentum
type IndexQuote struct {
	Current   *float64   `json:"current"`
	Trend     IndexTrend `json:"trend"`
	Change30D *float64   `json:"change_30d"`
}

// MacroSnapshot is the persisted macro input (config/macro_data.json)
// ⭐ SSOT: any field may be missing; scorers degrade to neutral instead of failing
type MacroSnapshot struct {
	LastUpdate       string       `json:"last_update"`
	USDTRY           *FactorQuote `json:"usd_try"`
	EURTRY           *FactorQuote `json:"eur_try"`
	BIST100          *IndexQuote  `json:"bist100"`
	Oil              *FactorQuote `json:"oil"`
	Gold             *FactorQuote `json:"gold"`
	TCMBRate         *float64     `json:"tcmb_rate"`
	PreviousTCMBRate *float64     `json:"previous_tcmb_rate,omitempty"`
}

// Float returns a pointer to v, for building snapshots in code
func Float(v float64) *float64 {
	return &v
}

// Macro factor keys
const (
	FactorUSDTRY   = "usd_try"
	FactorTCMBRate = "tcmb_rate"
	FactorBIST100  = "bist100"
	FactorOil      = "oil"
	FactorGold     = "gold"
)

// MacroFactorScore is the score of a single macro factor
type MacroFactorScore struct {
	Factor      string  `json:"factor"`
	RawScore    float64 `json:"score"` // -10 ~ 10
	Description string  `json:"description"`
	Weight      float64 `json:"weight"` // 0 ~ 1
	Degraded    bool    `json:"degraded,omitempty"`
}

// MacroAnalysis is the weighted macro verdict
type MacroAnalysis struct {
	TotalScore      float64                     `json:"total_score"`      // -10 ~ 10
	NormalizedScore float64                     `json:"normalized_score"` // 0 ~ 100
	Components      map[string]MacroFactorScore `json:"components"`
	Summary         string                      `json:"summary"`
	LastUpdate      string                      `json:"last_update"`
}

// Sector is the closed set of sector tags
type Sector string

const (
	SectorNone    Sector = ""
	SectorAirline Sector = "airline"
	SectorBank    Sector = "bank"
	SectorHolding Sector = "holding"
	SectorEnergy  Sector = "energy"
	SectorTech    Sector = "tech"
	SectorExport  Sector = "export"
	SectorRetail  Sector = "retail"
	SectorTourism Sector = "tourism"
	SectorTelecom Sector = "telecom"
)

// SectorScore is the sector-specific override for a symbol
type SectorScore struct {
	Sector      Sector  `json:"sector"`
	RawScore    float64 `json:"score"` // -10 ~ 10
	Description string  `json:"description"`
}

// CombinedMacro blends the general macro score with the sector score
type CombinedMacro struct {
	General            MacroAnalysis `json:"general"`
	Sector             SectorScore   `json:"sector"`
	Combined           float64       `json:"combined"`            // -10 ~ 10
	CombinedNormalized float64       `json:"combined_normalized"` // 0 ~ 100
}
