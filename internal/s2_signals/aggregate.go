package s2_signals

import (
	"fmt"
	"math"

	"github.com/bistsignal/backend/internal/contracts"
)

// Aggregate folds indicator signals into one verdict.
// BUY-family strengths add to the score, SELL-family strengths subtract, HOLD only counts.
func Aggregate(signals []contracts.SignalRecord) contracts.AggregateSignal {
	if len(signals) == 0 {
		return contracts.AggregateSignal{
			OverallSignal: contracts.SignalHold,
			Confidence:    0,
			Description:   "Yeterli sinyal yok",
		}
	}

	agg := contracts.AggregateSignal{}
	score, total := 0, 0
	for _, s := range signals {
		switch {
		case s.Signal.IsBuyFamily():
			score += s.Strength
			agg.BuyCount++
		case s.Signal.IsSellFamily():
			score -= s.Strength
			agg.SellCount++
		default:
			agg.HoldCount++
		}
		total += s.Strength
	}

	band, _ := Lookup(AggregateBands, float64(score))
	s := float64(score)
	var confidence float64
	switch band.Signal {
	case contracts.SignalStrongBuy:
		confidence = math.Min(95, 60+s/10)
	case contracts.SignalBuy:
		confidence = math.Min(85, 50+s/10)
	case contracts.SignalHoldBuy:
		confidence = 40 + s/5
	case contracts.SignalStrongSell:
		confidence = math.Min(95, 60-s/10)
	case contracts.SignalSell:
		confidence = math.Min(85, 50-s/10)
	case contracts.SignalHoldSell:
		confidence = 40 - s/5
	default:
		confidence = 30
	}

	n := len(signals)
	agg.OverallSignal = band.Signal
	agg.Confidence = clampStrength(confidence)
	agg.Score = score
	agg.AvgStrength = total / n
	agg.Description = fmt.Sprintf("%d/%d gosterge ALIM, %d/%d gosterge SATIM sinyali veriyor.", agg.BuyCount, n, agg.SellCount, n)
	return agg
}

// TechnicalScore maps an aggregate verdict onto the 0-100 scale used by fusion.
// BUY-family verdicts land above 50, SELL-family below, HOLD at 50.
func TechnicalScore(agg contracts.AggregateSignal) float64 {
	half := float64(agg.Confidence) / 2
	switch {
	case agg.OverallSignal.IsBuyFamily():
		return math.Min(100, 50+half)
	case agg.OverallSignal.IsSellFamily():
		return math.Max(0, 50-half)
	default:
		return 50
	}
}
