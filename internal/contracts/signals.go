package contracts

import "time"

// SignalCategory is the categorical output of one indicator or of the aggregate
type SignalCategory string

const (
	SignalStrongBuy  SignalCategory = "STRONG_BUY"
	SignalBuy        SignalCategory = "BUY"
	SignalHoldBuy    SignalCategory = "HOLD_BUY"
	SignalHold       SignalCategory = "HOLD"
	SignalHoldSell   SignalCategory = "HOLD_SELL"
	SignalSell       SignalCategory = "SELL"
	SignalStrongSell SignalCategory = "STRONG_SELL"
)

// IsBuyFamily reports STRONG_BUY, BUY and HOLD_BUY
func (c SignalCategory) IsBuyFamily() bool {
	return c == SignalStrongBuy || c == SignalBuy || c == SignalHoldBuy
}

// IsSellFamily reports STRONG_SELL, SELL and HOLD_SELL
func (c SignalCategory) IsSellFamily() bool {
	return c == SignalStrongSell || c == SignalSell || c == SignalHoldSell
}

// IsHoldFamily reports plain HOLD (and anything unrecognised)
func (c SignalCategory) IsHoldFamily() bool {
	return !c.IsBuyFamily() && !c.IsSellFamily()
}

// Indicator names used as keys in TechnicalAnalysis.Indicators
const (
	IndicatorRSI            = "RSI"
	IndicatorMACD           = "MACD"
	IndicatorBollinger      = "Bollinger Bands"
	IndicatorMovingAverages = "Moving Averages"
	IndicatorVolume         = "Volume"
)

// IndicatorNames lists the indicators in evaluation order
var IndicatorNames = []string{
	IndicatorRSI,
	IndicatorMACD,
	IndicatorBollinger,
	IndicatorMovingAverages,
	IndicatorVolume,
}

// SignalRecord is one interpreted indicator signal
type SignalRecord struct {
	Indicator   string         `json:"indicator"`
	Signal      SignalCategory `json:"signal"`
	Strength    int            `json:"strength"` // 0 ~ 100
	Description string         `json:"description"`
}

// IndicatorOutcome is the success/failure slot of a single indicator
// ⭐ SSOT: a failing indicator is recorded here instead of aborting the analysis
type IndicatorOutcome struct {
	Name   string             `json:"name"`
	OK     bool               `json:"ok"`
	Error  string             `json:"error,omitempty"`
	Signal *SignalRecord      `json:"signal,omitempty"`
	Values map[string]float64 `json:"values,omitempty"`
	Detail map[string]string  `json:"detail,omitempty"`
}

// TechnicalAnalysis is the S2 output for one symbol
type TechnicalAnalysis struct {
	Symbol       string                      `json:"symbol"`
	CurrentPrice float64                     `json:"current_price"`
	Date         time.Time                   `json:"date"`
	Indicators   map[string]IndicatorOutcome `json:"indicators"`
	Signals      []SignalRecord              `json:"signals"`
}

// FailedIndicators returns the names of indicators that could not be computed
func (t *TechnicalAnalysis) FailedIndicators() []string {
	failed := make([]string, 0)
	for name, outcome := range t.Indicators {
		if !outcome.OK {
			failed = append(failed, name)
		}
	}
	return failed
}

// AggregateSignal combines every indicator signal into one verdict
type AggregateSignal struct {
	OverallSignal SignalCategory `json:"overall_signal"`
	Confidence    int            `json:"confidence"` // 0 ~ 100
	Score         int            `json:"score"`
	BuyCount      int            `json:"buy_count"`
	SellCount     int            `json:"sell_count"`
	HoldCount     int            `json:"hold_count"`
	AvgStrength   int            `json:"avg_strength"`
	Description   string         `json:"description"`
}
