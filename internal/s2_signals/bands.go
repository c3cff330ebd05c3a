// Package s2_signals turns raw indicator readings into categorical signals
// and folds them into one technical verdict per symbol.
package s2_signals

import (
	"math"

	"github.com/bistsignal/backend/internal/contracts"
)

// Band is one row of an ordered threshold table.
// A value matches when v >= Min (or v > Min when Exclusive is set).
type Band struct {
	Min       float64
	Exclusive bool
	Signal    contracts.SignalCategory
	Label     string
}

func (b Band) matches(v float64) bool {
	if b.Exclusive {
		return v > b.Min
	}
	return v >= b.Min
}

// Lookup evaluates bands top-down and returns the first match
func Lookup(bands []Band, v float64) (Band, bool) {
	if math.IsNaN(v) {
		return Band{}, false
	}
	for _, b := range bands {
		if b.matches(v) {
			return b, true
		}
	}
	return Band{}, false
}

var negInf = math.Inf(-1)

// RSIBands: >=70 overbought, >55 rising, >=45 neutral, >30 falling, else oversold
var RSIBands = []Band{
	{Min: 70, Signal: contracts.SignalSell, Label: "ASIRI ALIM"},
	{Min: 55, Exclusive: true, Signal: contracts.SignalHoldBuy, Label: "YUKSELIS EGILIMI"},
	{Min: 45, Signal: contracts.SignalHold, Label: "NOTR"},
	{Min: 30, Exclusive: true, Signal: contracts.SignalHoldSell, Label: "DUSUS EGILIMI"},
	{Min: negInf, Signal: contracts.SignalBuy, Label: "ASIRI SATIM"},
}

// BollingerBands maps the price position inside the bands (0 = lower, 100 = upper).
// The middle row is resolved against the middle band by the interpreter.
var BollingerBands = []Band{
	{Min: 95, Signal: contracts.SignalSell, Label: "UST BAND - ASIRI ALIM"},
	{Min: 70, Exclusive: true, Signal: contracts.SignalHoldSell, Label: "UST BOLGE"},
	{Min: 30, Signal: contracts.SignalHold, Label: "ORTA"},
	{Min: 5, Exclusive: true, Signal: contracts.SignalHoldBuy, Label: "ALT BOLGE"},
	{Min: negInf, Signal: contracts.SignalBuy, Label: "ALT BAND - ASIRI SATIM"},
}

// MovingAverageBands maps the net above/below strength of all averages
var MovingAverageBands = []Band{
	{Min: 25, Exclusive: true, Signal: contracts.SignalBuy, Label: "GUCLU YUKSELIS TRENDI"},
	{Min: 0, Exclusive: true, Signal: contracts.SignalHoldBuy, Label: "YUKSELIS EGILIMI"},
	{Min: 0, Signal: contracts.SignalHold, Label: "NOTR / KARASIZ"},
	{Min: -25, Signal: contracts.SignalHoldSell, Label: "DUSUS EGILIMI"},
	{Min: negInf, Signal: contracts.SignalSell, Label: "GUCLU DUSUS TRENDI"},
}

// AggregateBands maps the summed signal score to the overall verdict
var AggregateBands = []Band{
	{Min: 100, Exclusive: true, Signal: contracts.SignalStrongBuy, Label: "GUCLU AL"},
	{Min: 50, Exclusive: true, Signal: contracts.SignalBuy, Label: "AL"},
	{Min: 0, Exclusive: true, Signal: contracts.SignalHoldBuy, Label: "TUT / AL EGILIMLI"},
	{Min: 0, Signal: contracts.SignalHold, Label: "TUT"},
	{Min: -50, Signal: contracts.SignalHoldSell, Label: "TUT / SAT EGILIMLI"},
	{Min: -100, Signal: contracts.SignalSell, Label: "SAT"},
	{Min: negInf, Signal: contracts.SignalStrongSell, Label: "GUCLU SAT"},
}
