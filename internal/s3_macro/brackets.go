// Package s3_macro scores the macro snapshot factor by factor and applies the
// sector override for a symbol.
package s3_macro

import (
	"fmt"
	"math"
	"strings"
)

// Bracket is one row of an ordered scoring table, matched when v >= Min.
// Label may carry a single %.1f verb that receives the scored value.
type Bracket struct {
	Min   float64
	Score float64
	Label string
}

var negInf = math.Inf(-1)

// Match evaluates brackets top-down; the last row must use -Inf
func Match(brackets []Bracket, v float64) Bracket {
	for _, b := range brackets {
		if v >= b.Min {
			return b
		}
	}
	return brackets[len(brackets)-1]
}

func (b Bracket) describe(v float64) string {
	if strings.Contains(b.Label, "%.1f") {
		return fmt.Sprintf(b.Label, v)
	}
	return b.Label
}

// USD/TRY
var (
	USDLevelBrackets = []Bracket{
		{50, -5, "Cok yuksek seviye (50+)"},
		{45, -4, "Yuksek seviye (45+)"},
		{40, -2, "Orta-yuksek seviye (40+)"},
		{35, -1, "Orta seviye (35+)"},
		{30, 0, "Normal seviye (30+)"},
		{negInf, 1, "Dusuk seviye (<30)"},
	}
	USDMomentumBrackets = []Bracket{
		{5, -6, "Cok hizli yukselis (+%%%.1f)"},
		{3, -4, "Hizli yukselis (+%%%.1f)"},
		{1.5, -2, "Yukselis (+%%%.1f)"},
		{0.5, -1, "Hafif yukselis (+%%%.1f)"},
		{-0.5, 0, "Stabil (%%%.1f)"},
		{-1.5, 1, "Hafif dusus (%%%.1f)"},
		{-3, 2, "Dusus (%%%.1f)"},
		{negInf, 4, "Hizli dusus (%%%.1f)"},
	}
)

// TCMB policy rate
var (
	RateLevelBrackets = []Bracket{
		{55, -4, "Cok yuksek faiz (55+)"},
		{50, -3, "Yuksek faiz (50+)"},
		{45, -2, "Orta-yuksek faiz (45+)"},
		{40, -1, "Orta faiz (40+)"},
		{30, 0, "Normal faiz (30+)"},
		{negInf, 1, "Dusuk faiz (<30)"},
	}
	RateChangeBrackets = []Bracket{
		{5, -5, "Cok artti (+%%%.1f)"},
		{2, -3, "Artti (+%%%.1f)"},
		{0.5, -1, "Hafif artti (+%%%.1f)"},
		{-0.5, 0, "Sabit"},
		{-2, 1, "Hafif dustu (%%%.1f)"},
		{-5, 3, "Dustu (%%%.1f)"},
		{negInf, 5, "Cok dustu (%%%.1f)"},
	}
)

// Brent oil
var (
	OilLevelBrackets = []Bracket{
		{100, -3, "Cok yuksek ($100+)"},
		{85, -2, "Yuksek ($85+)"},
		{75, -1, "Orta-yuksek ($75+)"},
		{60, 0, "Normal ($60+)"},
		{50, 1, "Dusuk ($50+)"},
		{negInf, 2, "Cok dusuk (<$50)"},
	}
	OilMomentumBrackets = []Bracket{
		{20, -3, "Cok hizli yukselis (+%%%.1f)"},
		{10, -2, "Hizli yukselis (+%%%.1f)"},
		{5, -1, "Yukselis (+%%%.1f)"},
		{-5, 0, "Stabil (%%%.1f)"},
		{-10, 1, "Dusus (%%%.1f)"},
		{-20, 2, "Hizli dusus (%%%.1f)"},
		{negInf, 3, "Cok hizli dusus (%%%.1f)"},
	}
)

// Gold
var (
	GoldLevelBrackets = []Bracket{
		{2400, -2, "Cok yuksek ($2400+) - Risk kacisi"},
		{2200, -1.5, "Yuksek ($2200+) - Temkinli"},
		{2000, -0.5, "Orta-yuksek ($2000+)"},
		{1800, 0, "Normal ($1800+)"},
		{1600, 0.5, "Dusuk ($1600+)"},
		{negInf, 1, "Cok dusuk (<$1600)"},
	}
	GoldMomentumBrackets = []Bracket{
		{15, -2.5, "Cok hizli yukselis (+%%%.1f)"},
		{8, -1.5, "Hizli yukselis (+%%%.1f)"},
		{3, -0.5, "Yukselis (+%%%.1f)"},
		{-3, 0, "Stabil (%%%.1f)"},
		{-8, 0.5, "Dusus (%%%.1f)"},
		{-15, 1.5, "Hizli dusus (%%%.1f)"},
		{negInf, 2.5, "Cok hizli dusus (%%%.1f)"},
	}
)

// SummaryBrackets map the weighted total to the overall macro verdict
var SummaryBrackets = []Bracket{
	{5, 0, "[+] Makroekonomik ortam OLUMLU - BIST icin destekleyici"},
	{2, 0, "[+] Makroekonomik ortam HAFIF OLUMLU - Dikkatli iyimserlik"},
	{-2, 0, "[o] Makroekonomik ortam NOTR - Karma sinyaller"},
	{-5, 0, "[!] Makroekonomik ortam HAFIF OLUMSUZ - Risk var"},
	{negInf, 0, "[-] Makroekonomik ortam OLUMSUZ - Yuksek risk"},
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// marker is the direction tag appended to factor descriptions
func marker(score, threshold float64) string {
	switch {
	case score < -threshold:
		return "[-]"
	case score < threshold:
		return "[!]"
	default:
		return "[+]"
	}
}
