package s1_indicators

import (
	"math"

	"github.com/bistsignal/backend/internal/contracts"
)

// Default Bollinger parameters
const (
	DefaultBollingerPeriod = 20
	DefaultBollingerK      = 2.0
)

// BollingerResult holds the bands and band width (% of middle), aligned with the input
type BollingerResult struct {
	Upper     []float64
	Middle    []float64
	Lower     []float64
	BandWidth []float64
}

// Bollinger computes middle = SMA(period), upper/lower = middle ± k·sampleStd
func Bollinger(closes []float64, period int, k float64) (*BollingerResult, error) {
	if period < 2 {
		return nil, contracts.NewInputError("bollinger", "period must be >= 2, got %d", period)
	}
	if k < 0 {
		return nil, contracts.NewInputError("bollinger", "k must be >= 0, got %v", k)
	}
	if len(closes) < period {
		return nil, contracts.NewDataQualityError("bollinger", "need %d closes, got %d", period, len(closes))
	}

	middle, err := SMA(closes, period)
	if err != nil {
		return nil, err
	}

	res := &BollingerResult{
		Upper:     undefinedSeries(len(closes)),
		Middle:    middle,
		Lower:     undefinedSeries(len(closes)),
		BandWidth: undefinedSeries(len(closes)),
	}

	for i := period - 1; i < len(closes); i++ {
		std := sampleStdDev(closes[i-period+1:i+1], middle[i])
		res.Upper[i] = middle[i] + k*std
		res.Lower[i] = middle[i] - k*std
		if middle[i] != 0 {
			res.BandWidth[i] = (res.Upper[i] - res.Lower[i]) / math.Abs(middle[i]) * 100
		}
	}

	return res, nil
}

// PricePosition returns where price sits inside the bands (0 = lower, 100 = upper).
// ok is false when the bands are undefined or have zero width.
func PricePosition(price, upper, lower float64) (position float64, ok bool) {
	if !IsDefined(upper) || !IsDefined(lower) {
		return 0, false
	}
	width := upper - lower
	if width <= 0 {
		return 0, false
	}
	return (price - lower) / width * 100, true
}
