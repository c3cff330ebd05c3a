package s1_indicators

import (
	"github.com/bistsignal/backend/internal/contracts"
)

// Default momentum parameters
const (
	DefaultRSIPeriod  = 14
	DefaultMACDFast   = 12
	DefaultMACDSlow   = 26
	DefaultMACDSignal = 9
)

// RSI computes the Relative Strength Index with Wilder smoothing.
// The first defined point is at index period; earlier points are NaN.
// avgLoss=0 yields 100 when there were gains and 50 when the window was flat.
func RSI(closes []float64, period int) ([]float64, error) {
	if period <= 0 {
		return nil, contracts.NewInputError("rsi", "period must be > 0, got %d", period)
	}
	if len(closes) <= period {
		return nil, contracts.NewDataQualityError("rsi", "need more than %d closes, got %d", period, len(closes))
	}

	out := undefinedSeries(len(closes))
	p := float64(period)

	var gainSum, lossSum float64
	for i := 1; i <= period; i++ {
		gain, loss := splitDelta(closes[i] - closes[i-1])
		gainSum += gain
		lossSum += loss
	}
	avgGain := gainSum / p
	avgLoss := lossSum / p
	out[period] = rsiValue(avgGain, avgLoss)

	for i := period + 1; i < len(closes); i++ {
		gain, loss := splitDelta(closes[i] - closes[i-1])
		avgGain = (avgGain*(p-1) + gain) / p
		avgLoss = (avgLoss*(p-1) + loss) / p
		out[i] = rsiValue(avgGain, avgLoss)
	}

	return out, nil
}

func splitDelta(delta float64) (gain, loss float64) {
	if delta > 0 {
		return delta, 0
	}
	return 0, -delta
}

func rsiValue(avgGain, avgLoss float64) float64 {
	if avgLoss == 0 {
		if avgGain == 0 {
			return 50
		}
		return 100
	}
	rs := avgGain / avgLoss
	return 100 - 100/(1+rs)
}

// MACDResult holds the three MACD series, aligned with the input
type MACDResult struct {
	MACD      []float64
	Signal    []float64
	Histogram []float64
}

// MACD computes fastEMA - slowEMA, its signal EMA and the histogram
func MACD(closes []float64, fast, slow, signal int) (*MACDResult, error) {
	if fast <= 0 || slow <= 0 || signal <= 0 {
		return nil, contracts.NewInputError("macd", "periods must be > 0 (fast=%d slow=%d signal=%d)", fast, slow, signal)
	}
	if fast >= slow {
		return nil, contracts.NewInputError("macd", "fast period %d must be below slow period %d", fast, slow)
	}
	if len(closes) < 2 {
		return nil, contracts.NewDataQualityError("macd", "need at least 2 closes, got %d", len(closes))
	}

	fastEMA, err := EMA(closes, fast)
	if err != nil {
		return nil, err
	}
	slowEMA, err := EMA(closes, slow)
	if err != nil {
		return nil, err
	}

	line := make([]float64, len(closes))
	for i := range closes {
		line[i] = fastEMA[i] - slowEMA[i]
	}

	signalLine, err := EMA(line, signal)
	if err != nil {
		return nil, err
	}

	hist := make([]float64, len(closes))
	for i := range line {
		hist[i] = line[i] - signalLine[i]
	}

	return &MACDResult{MACD: line, Signal: signalLine, Histogram: hist}, nil
}
