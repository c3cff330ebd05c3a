package s2_signals

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/bistsignal/backend/internal/contracts"
	ind "github.com/bistsignal/backend/internal/s1_indicators"
)

// Interpretation is the categorical reading of one indicator together with
// the numbers and labels that explain it
type Interpretation struct {
	Record contracts.SignalRecord
	Label  string
	Values map[string]float64
	Detail map[string]string
}

func insufficient(indicator string) Interpretation {
	return Interpretation{
		Record: contracts.SignalRecord{
			Indicator:   indicator,
			Signal:      contracts.SignalHold,
			Description: "Yetersiz veri",
		},
		Label: "N/A",
	}
}

func clampStrength(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
}

var rsiDescriptions = map[string]string{
	"ASIRI ALIM":       "Asiri alim bolgesinde, duzeltme gelebilir.",
	"ASIRI SATIM":      "Asiri satim bolgesinde, yukselis firsati.",
	"YUKSELIS EGILIMI": "Yukselis egilimli, pozitif momentum.",
	"DUSUS EGILIMI":    "Dusus egilimli, negatif momentum.",
	"NOTR":             "Notr bolgede, net sinyal yok.",
}

// InterpretRSI maps an RSI value to a signal through RSIBands
func InterpretRSI(v float64) Interpretation {
	band, ok := Lookup(RSIBands, v)
	if !ok || !ind.IsDefined(v) {
		return insufficient(contracts.IndicatorRSI)
	}

	var strength float64
	switch band.Signal {
	case contracts.SignalSell:
		strength = math.Min(100, (v-70)*3)
	case contracts.SignalBuy:
		strength = math.Min(100, (30-v)*3)
	case contracts.SignalHoldBuy:
		strength = (v - 50) * 2
	case contracts.SignalHoldSell:
		strength = (50 - v) * 2
	}

	return Interpretation{
		Record: contracts.SignalRecord{
			Indicator:   contracts.IndicatorRSI,
			Signal:      band.Signal,
			Strength:    clampStrength(strength),
			Description: fmt.Sprintf("RSI %.1f - %s", v, rsiDescriptions[band.Label]),
		},
		Label:  band.Label,
		Values: map[string]float64{"rsi": round(v, 2)},
		Detail: map[string]string{"zone": band.Label},
	}
}

// MACD crossover labels
const (
	CrossoverBullish = "BULLISH"
	CrossoverBearish = "BEARISH"
)

// InterpretMACD detects a signal-line crossover against the previous point.
// Without previous values only the current side of the signal line is used.
func InterpretMACD(macd, signal, hist float64, prevMACD, prevSignal *float64) Interpretation {
	if !ind.IsDefined(macd) || !ind.IsDefined(signal) {
		return insufficient(contracts.IndicatorMACD)
	}

	histStrength := clampStrength(math.Min(50, math.Abs(hist)*10))
	category := contracts.SignalHoldSell
	if macd > signal {
		category = contracts.SignalHoldBuy
	}
	strength := histStrength
	crossover := ""

	if prevMACD != nil && prevSignal != nil && ind.IsDefined(*prevMACD) && ind.IsDefined(*prevSignal) {
		switch {
		case macd > signal && *prevMACD <= *prevSignal:
			crossover, category, strength = CrossoverBullish, contracts.SignalBuy, 80
		case macd < signal && *prevMACD >= *prevSignal:
			crossover, category, strength = CrossoverBearish, contracts.SignalSell, 80
		}
	}

	var desc string
	switch {
	case crossover == CrossoverBullish:
		desc = fmt.Sprintf("MACD pozitif kesisme! GUCLU AL sinyali (Histogram: %.2f)", hist)
	case crossover == CrossoverBearish:
		desc = fmt.Sprintf("MACD negatif kesisme! GUCLU SAT sinyali (Histogram: %.2f)", hist)
	case macd > 0 && signal > 0:
		desc = "MACD pozitif bolgede, yukselis trendi devam ediyor"
	case macd < 0 && signal < 0:
		desc = "MACD negatif bolgede, dusus trendi devam ediyor"
	default:
		desc = "MACD notr bolgede"
	}

	out := Interpretation{
		Record: contracts.SignalRecord{
			Indicator:   contracts.IndicatorMACD,
			Signal:      category,
			Strength:    strength,
			Description: desc,
		},
		Label: crossover,
		Values: map[string]float64{
			"macd":      round(macd, 4),
			"signal":    round(signal, 4),
			"histogram": round(hist, 4),
		},
	}
	if crossover != "" {
		out.Detail = map[string]string{"crossover": crossover}
	}
	return out
}

var bollingerDescriptions = map[string]string{
	"UST BAND - ASIRI ALIM":  "Fiyat ust banda dokundu (%.2f TL). Duzeltme gelebilir.",
	"ALT BAND - ASIRI SATIM": "Fiyat alt banda dokundu (%.2f TL). Toparlanma firsati.",
	"UST BOLGE":              "Fiyat ust bolgede (%.2f TL). Dikkatli olun.",
	"ALT BOLGE":              "Fiyat alt bolgede (%.2f TL). Potansiyel firsat.",
	"ORTA UST - YUKSELIS":    "Fiyat orta bandin ustunde (%.2f TL). Yukselis trendi.",
	"ORTA ALT - DUSUS":       "Fiyat orta bandin altinda (%.2f TL). Dusus trendi.",
}

// InterpretBollinger locates price inside the bands through BollingerBands.
// A zero band width is reported as a neutral reading, not an error.
func InterpretBollinger(price, upper, middle, lower float64) Interpretation {
	if !ind.IsDefined(upper) || !ind.IsDefined(middle) || !ind.IsDefined(lower) {
		return insufficient(contracts.IndicatorBollinger)
	}

	position, ok := ind.PricePosition(price, upper, lower)
	if !ok {
		return Interpretation{
			Record: contracts.SignalRecord{
				Indicator:   contracts.IndicatorBollinger,
				Signal:      contracts.SignalHold,
				Description: "Bant genisligi sifir",
			},
			Label:  "N/A",
			Values: map[string]float64{"upper": upper, "middle": middle, "lower": lower},
		}
	}

	band, _ := Lookup(BollingerBands, position)
	label := band.Label
	category := band.Signal
	var strength int
	switch label {
	case "UST BAND - ASIRI ALIM", "ALT BAND - ASIRI SATIM":
		strength = 70
	case "UST BOLGE", "ALT BOLGE":
		strength = 40
	default:
		strength = 20
		if price > middle {
			label, category = "ORTA UST - YUKSELIS", contracts.SignalHoldBuy
		} else {
			label, category = "ORTA ALT - DUSUS", contracts.SignalHoldSell
		}
	}

	bandWidth := 0.0
	if middle != 0 {
		bandWidth = (upper - lower) / middle * 100
	}

	return Interpretation{
		Record: contracts.SignalRecord{
			Indicator:   contracts.IndicatorBollinger,
			Signal:      category,
			Strength:    strength,
			Description: fmt.Sprintf(bollingerDescriptions[label], price),
		},
		Label: label,
		Values: map[string]float64{
			"upper":          round(upper, 2),
			"middle":         round(middle, 2),
			"lower":          round(lower, 2),
			"price_position": round(position, 1),
			"band_width":     round(bandWidth, 2),
		},
		Detail: map[string]string{"position": label},
	}
}

// InterpretMovingAverages scores +15 for every average below price and -15 for every one above.
// Undefined averages (still warming up) are skipped.
func InterpretMovingAverages(price float64, mas map[int]float64) Interpretation {
	periods := make([]int, 0, len(mas))
	for p, v := range mas {
		if ind.IsDefined(v) {
			periods = append(periods, p)
		}
	}
	sort.Ints(periods)

	positions := make([]string, 0, len(periods))
	values := make(map[string]float64, len(periods))
	net, above := 0, 0
	for _, p := range periods {
		v := mas[p]
		values[fmt.Sprintf("ma_%d", p)] = round(v, 2)
		if price > v {
			positions = append(positions, fmt.Sprintf("MA(%d) USTUNDE", p))
			net += 15
			above++
		} else {
			positions = append(positions, fmt.Sprintf("MA(%d) ALTINDA", p))
			net -= 15
		}
	}

	band, _ := Lookup(MovingAverageBands, float64(net))
	strength := net
	if strength < 0 {
		strength = -strength
	}

	return Interpretation{
		Record: contracts.SignalRecord{
			Indicator:   contracts.IndicatorMovingAverages,
			Signal:      band.Signal,
			Strength:    clampStrength(float64(strength)),
			Description: fmt.Sprintf("%s. Fiyat %d/%d MA'nin ustunde.", band.Label, above, len(positions)),
		},
		Label:  band.Label,
		Values: values,
		Detail: map[string]string{
			"overall_trend": band.Label,
			"ma_positions":  strings.Join(positions, ", "),
		},
	}
}

// InterpretVolume adds price direction to the volume band of the last bar
func InterpretVolume(v *ind.VolumeResult) Interpretation {
	if v == nil {
		return Interpretation{
			Record: contracts.SignalRecord{
				Indicator:   contracts.IndicatorVolume,
				Signal:      contracts.SignalHold,
				Description: "Hacim verisi yok",
			},
			Label: "N/A",
		}
	}

	up := v.PriceChange > 0
	var (
		category contracts.SignalCategory
		strength int
		desc     string
	)

	switch v.Status {
	case ind.VolumeBurst:
		strength = clampStrength(float64(int(v.Ratio * 20)))
		if up {
			category = contracts.SignalBuy
			desc = fmt.Sprintf("HACIM PATLAMASI! (%.1fx normal) + Fiyat yukseldi (%+.1f%%). GUCLU ALIM BASKI - Kurumsal alim olabilir!", v.Ratio, v.PriceChangePct)
		} else {
			category = contracts.SignalSell
			desc = fmt.Sprintf("HACIM PATLAMASI! (%.1fx normal) + Fiyat dustu (%+.1f%%). GUCLU SATIM BASKI - Kurumsal satim olabilir!", v.Ratio, v.PriceChangePct)
		}
	case ind.VolumeHigh:
		strength = clampStrength(float64(int(v.Ratio * 25)))
		if up {
			category = contracts.SignalHoldBuy
			desc = fmt.Sprintf("Yuksek hacim (%.1fx) + Fiyat yukseldi (%+.1f%%). Alim baski devam ediyor.", v.Ratio, v.PriceChangePct)
		} else {
			category = contracts.SignalHoldSell
			desc = fmt.Sprintf("Yuksek hacim (%.1fx) + Fiyat dustu (%+.1f%%). Satim baski devam ediyor.", v.Ratio, v.PriceChangePct)
		}
	case ind.VolumeVeryLow:
		category, strength = contracts.SignalHold, 10
		if math.Abs(v.PriceChangePct) > 2 {
			desc = fmt.Sprintf("Cok dusuk hacim (%.1fx) ama fiyat hareket etti (%+.1f%%). SUPLELI hareket, dikkatli olun!", v.Ratio, v.PriceChangePct)
		} else {
			desc = fmt.Sprintf("Cok dusuk hacim (%.1fx). Ilgi yok, beklemede kalin.", v.Ratio)
		}
	default:
		if math.Abs(v.PriceChangePct) > 3 {
			category, strength = contracts.SignalHoldSell, 30
			if up {
				category = contracts.SignalHoldBuy
			}
			desc = fmt.Sprintf("Normal hacim ama fiyat belirgin hareket etti (%+.1f%%). Orta seviye sinyal.", v.PriceChangePct)
		} else {
			category, strength = contracts.SignalHold, 10
			desc = "Normal hacim, normal fiyat hareketi. Net sinyal yok."
		}
	}

	return Interpretation{
		Record: contracts.SignalRecord{
			Indicator:   contracts.IndicatorVolume,
			Signal:      category,
			Strength:    strength,
			Description: desc,
		},
		Label: string(v.Status),
		Values: map[string]float64{
			"current_volume":   math.Trunc(v.CurrentVolume),
			"avg_volume":       math.Trunc(v.AvgVolume),
			"volume_ratio":     round(v.Ratio, 2),
			"price_change_pct": round(v.PriceChangePct, 2),
		},
		Detail: map[string]string{"volume_status": string(v.Status)},
	}
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
