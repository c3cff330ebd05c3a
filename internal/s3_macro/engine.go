package s3_macro

import (
	"fmt"
	"math"
	"strconv"

	"github.com/bistsignal/backend/internal/contracts"
	"github.com/bistsignal/backend/pkg/logger"
)

// factorWeightPercents are the fixed factor weights in whole percent (sum 100)
var factorWeightPercents = map[string]int{
	contracts.FactorUSDTRY:   30,
	contracts.FactorTCMBRate: 25,
	contracts.FactorBIST100:  30,
	contracts.FactorOil:      10,
	contracts.FactorGold:     5,
}

// FactorOrder is the reporting order of the macro factors
var FactorOrder = []string{
	contracts.FactorUSDTRY,
	contracts.FactorTCMBRate,
	contracts.FactorBIST100,
	contracts.FactorOil,
	contracts.FactorGold,
}

// FactorWeight returns the weight of factor in [0,1]
func FactorWeight(factor string) float64 {
	return float64(factorWeightPercents[factor]) / 100
}

// levelMomentum describes a factor scored from its level and 30-day change
type levelMomentum struct {
	factor    string
	format    string // current, level desc, momentum desc, marker
	missing   string
	levels    []Bracket
	momentum  []Bracket
	amplify   func(level, change float64) float64
	threshold float64
}

var usdFactor = levelMomentum{
	factor:   contracts.FactorUSDTRY,
	format:   "USD/TRY %.1f TL (%s, %s) %s",
	missing:  "USD/TRY verisi eksik",
	levels:   USDLevelBrackets,
	momentum: USDMomentumBrackets,
	amplify: func(level, change float64) float64 {
		switch {
		case level >= 40 && change > 0:
			return 1.3
		case level < 35 && change < 0:
			return 0.7
		}
		return 1
	},
	threshold: 2,
}

var oilFactor = levelMomentum{
	factor:   contracts.FactorOil,
	format:   "Petrol $%.1f (%s, %s) %s",
	missing:  "Petrol verisi eksik",
	levels:   OilLevelBrackets,
	momentum: OilMomentumBrackets,
	amplify: func(level, change float64) float64 {
		if level >= 85 && change > 5 {
			return 1.4
		}
		return 1
	},
	threshold: 1.5,
}

var goldFactor = levelMomentum{
	factor:   contracts.FactorGold,
	format:   "Altin $%.1f (%s, %s) %s",
	missing:  "Altin verisi eksik",
	levels:   GoldLevelBrackets,
	momentum: GoldMomentumBrackets,
	amplify: func(level, change float64) float64 {
		if level >= 2200 && change > 8 {
			return 1.5
		}
		return 1
	},
	threshold: 1.5,
}

func (f levelMomentum) score(q *contracts.FactorQuote) (float64, string, bool) {
	if q == nil || q.Current == nil || q.Change30D == nil || !finite(*q.Current) || !finite(*q.Change30D) {
		return 0, f.missing, false
	}
	current, change := *q.Current, *q.Change30D

	level := Match(f.levels, current)
	momentum := Match(f.momentum, change)
	total := clamp(level.Score+momentum.Score*f.amplify(current, change), -10, 10)

	desc := fmt.Sprintf(f.format, current, level.describe(current), momentum.describe(change), marker(total, f.threshold))
	return round(total, 1), desc, true
}

// ScoreUSDTRY scores the currency level and 30-day momentum
func ScoreUSDTRY(q *contracts.FactorQuote) (float64, string, bool) { return usdFactor.score(q) }

// ScoreOil scores the oil level and 30-day momentum
func ScoreOil(q *contracts.FactorQuote) (float64, string, bool) { return oilFactor.score(q) }

// ScoreGold scores the gold level and 30-day momentum
func ScoreGold(q *contracts.FactorQuote) (float64, string, bool) { return goldFactor.score(q) }

// ScoreTCMBRate scores the policy rate level and, when the previous rate is
// known, the size of the last move. Hikes at an already high level weigh 1.2x.
func ScoreTCMBRate(rate, previous *float64) (float64, string, bool) {
	if rate == nil || !finite(*rate) {
		return 0, "TCMB faizi girilmemis (notr kabul)", false
	}
	current := *rate

	level := Match(RateLevelBrackets, current)
	changeScore := 0.0
	changeDesc := "Degisim bilinmiyor"
	if previous != nil && finite(*previous) {
		change := current - *previous
		b := Match(RateChangeBrackets, change)
		changeScore, changeDesc = b.Score, b.describe(change)
	}
	if current >= 50 && changeScore < 0 {
		changeScore *= 1.2
	}

	total := clamp(level.Score+changeScore, -10, 10)
	mark := marker(total, 2)

	var desc string
	if previous != nil && *previous != 0 {
		desc = fmt.Sprintf("TCMB %%%s (%s, %s) %s", formatRate(current), level.Label, changeDesc, mark)
	} else {
		desc = fmt.Sprintf("TCMB %%%s (%s) %s", formatRate(current), level.Label, mark)
	}
	return round(total, 1), desc, true
}

// ScoreBIST100 scores the index from its trend flag, amplified 1.3x on a
// 30-day move larger than 10%
func ScoreBIST100(q *contracts.IndexQuote) (float64, string, bool) {
	if q == nil || q.Trend == "" {
		return 0, "BIST100 verisi eksik", false
	}

	var (
		score     float64
		mark      string
		trendDesc string
	)
	switch q.Trend {
	case contracts.TrendUp:
		score, mark, trendDesc = 6, "[+]", "yukselis trendinde"
	case contracts.TrendDown:
		score, mark, trendDesc = -6, "[-]", "dusus trendinde"
	case contracts.TrendFlat:
		score, mark, trendDesc = 0, "[o]", "yatay seyrediyor"
	default:
		return 0, "BIST100 trend bilinmiyor", false
	}

	var desc string
	switch {
	case q.Change30D == nil || !finite(*q.Change30D):
		desc = fmt.Sprintf("BIST100 %s %s", trendDesc, mark)
	case math.Abs(*q.Change30D) > 10:
		score *= 1.3
		desc = fmt.Sprintf("BIST100 %s ve son 30 gunde %%%.1f degisti %s", trendDesc, *q.Change30D, mark)
	default:
		desc = fmt.Sprintf("BIST100 %s (son 30g: %%%.1f) %s", trendDesc, *q.Change30D, mark)
	}
	return round(clamp(score, -10, 10), 1), desc, true
}

// Engine computes the weighted macro verdict from a snapshot
type Engine struct {
	metrics contracts.MetricsRecorder
	logger  *logger.Logger
}

// NewEngine creates a new macro engine. metrics may be nil.
func NewEngine(metrics contracts.MetricsRecorder, log *logger.Logger) *Engine {
	return &Engine{metrics: metrics, logger: log}
}

// Analyze scores every factor and combines them with the fixed weights.
// A missing factor degrades to 0; a missing snapshot is a config error.
func (e *Engine) Analyze(snapshot *contracts.MacroSnapshot) (*contracts.MacroAnalysis, error) {
	if snapshot == nil {
		return nil, contracts.NewConfigError("macro.snapshot", "macro snapshot is missing")
	}

	type scored struct {
		score float64
		desc  string
		ok    bool
	}
	results := make(map[string]scored, len(FactorOrder))

	s, d, ok := ScoreUSDTRY(snapshot.USDTRY)
	results[contracts.FactorUSDTRY] = scored{s, d, ok}
	s, d, ok = ScoreTCMBRate(snapshot.TCMBRate, snapshot.PreviousTCMBRate)
	results[contracts.FactorTCMBRate] = scored{s, d, ok}
	s, d, ok = ScoreBIST100(snapshot.BIST100)
	results[contracts.FactorBIST100] = scored{s, d, ok}
	s, d, ok = ScoreOil(snapshot.Oil)
	results[contracts.FactorOil] = scored{s, d, ok}
	s, d, ok = ScoreGold(snapshot.Gold)
	results[contracts.FactorGold] = scored{s, d, ok}

	components := make(map[string]contracts.MacroFactorScore, len(FactorOrder))
	total := 0.0
	degraded := make([]string, 0)
	for _, factor := range FactorOrder {
		r := results[factor]
		w := FactorWeight(factor)
		components[factor] = contracts.MacroFactorScore{
			Factor:      factor,
			RawScore:    r.score,
			Description: r.desc,
			Weight:      w,
			Degraded:    !r.ok,
		}
		total += r.score * w

		if !r.ok {
			degraded = append(degraded, factor)
			if e.metrics != nil {
				e.metrics.RecordMacroDegraded(factor)
			}
		}
	}
	total = clamp(total, -10, 10)

	lastUpdate := snapshot.LastUpdate
	if lastUpdate == "" {
		lastUpdate = "Bilinmiyor"
	}

	analysis := &contracts.MacroAnalysis{
		TotalScore:      round(total, 2),
		NormalizedScore: round((total+10)*5, 1),
		Components:      components,
		Summary:         Match(SummaryBrackets, total).Label,
		LastUpdate:      lastUpdate,
	}

	if len(degraded) > 0 {
		e.logger.WithField("factors", degraded).Warn("Macro factors degraded to neutral")
	}
	e.logger.WithFields(map[string]interface{}{
		"total":      analysis.TotalScore,
		"normalized": analysis.NormalizedScore,
	}).Debug("Macro analysis completed")

	return analysis, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// formatRate prints a rate with at least one decimal (50 -> "50.0", 47.5 -> "47.5")
func formatRate(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
