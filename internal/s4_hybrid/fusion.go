// Package s4_hybrid fuses the technical score with the sector-adjusted macro
// score into the final recommendation.
package s4_hybrid

import (
	"fmt"
	"math"
	"strings"

	"github.com/bistsignal/backend/internal/contracts"
)

// DefaultWeights are the technical/macro fusion weights
var DefaultWeights = contracts.FusionWeights{Technical: 0.70, Macro: 0.30}

// Band maps a hybrid score floor to a signal and confidence
type Band struct {
	Min        float64
	Signal     contracts.HybridSignal
	Confidence contracts.Level
}

// ScoreBands are evaluated top-down
var ScoreBands = []Band{
	{65, contracts.HybridBuy, contracts.LevelHigh},
	{50, contracts.HybridBuy, contracts.LevelMedium},
	{40, contracts.HybridHold, contracts.LevelLow},
	{25, contracts.HybridSell, contracts.LevelMedium},
	{math.Inf(-1), contracts.HybridSell, contracts.LevelHigh},
}

var signalLabels = map[contracts.HybridSignal]string{
	contracts.HybridBuy:  "AL",
	contracts.HybridHold: "BEK",
	contracts.HybridSell: "SAT",
}

var levelLabels = map[contracts.Level]string{
	contracts.LevelHigh:   "YÜKSEK",
	contracts.LevelMedium: "ORTA",
	contracts.LevelLow:    "DÜŞÜK",
}

var directionLabels = map[contracts.Direction]string{
	contracts.DirectionBuy:  "ALIŞ",
	contracts.DirectionSell: "SATIŞ",
}

// SignalLabel returns the Turkish label of a hybrid signal
func SignalLabel(s contracts.HybridSignal) string { return signalLabels[s] }

// LevelLabel returns the Turkish label of a confidence or risk level
func LevelLabel(l contracts.Level) string { return levelLabels[l] }

// NormalizeWeights scales w so both weights sum to 1. Both must be positive.
func NormalizeWeights(w contracts.FusionWeights) (contracts.FusionWeights, error) {
	if !(w.Technical > 0) || !(w.Macro > 0) || math.IsInf(w.Technical, 0) || math.IsInf(w.Macro, 0) {
		return contracts.FusionWeights{}, contracts.NewConfigError("hybrid.weights",
			"weights must be positive (technical=%v macro=%v)", w.Technical, w.Macro)
	}
	// scale by the larger weight first so the sum cannot overflow
	m := math.Max(w.Technical, w.Macro)
	t, mac := w.Technical/m, w.Macro/m
	total := t + mac
	return contracts.FusionWeights{Technical: t / total, Macro: mac / total}, nil
}

func direction(score float64) contracts.Direction {
	if score >= 50 {
		return contracts.DirectionBuy
	}
	return contracts.DirectionSell
}

// Fuse combines technicalScore and macroNormalized (both 0-100) with weights.
// Reported weights are percentages; the hybrid score is rounded to 1 decimal.
func Fuse(technicalScore, macroNormalized float64, weights contracts.FusionWeights) (*contracts.HybridResult, error) {
	w, err := NormalizeWeights(weights)
	if err != nil {
		return nil, err
	}
	if math.IsNaN(technicalScore) || math.IsNaN(macroNormalized) {
		return nil, contracts.NewInputError("hybrid.fuse", "scores must be numbers (technical=%v macro=%v)", technicalScore, macroNormalized)
	}

	technicalScore = clamp(technicalScore, 0, 100)
	macroNormalized = clamp(macroNormalized, 0, 100)
	score := clamp(technicalScore*w.Technical+macroNormalized*w.Macro, 0, 100)

	var band Band
	for _, b := range ScoreBands {
		if score >= b.Min {
			band = b
			break
		}
	}

	techDir := direction(technicalScore)
	macroDir := direction(macroNormalized)

	alignment := contracts.Alignment{
		Status:      contracts.Aligned,
		Label:       "UYUMLU",
		Description: fmt.Sprintf("Teknik ve makro analiz %s yönünde uyumlu", directionLabels[techDir]),
	}
	if techDir != macroDir {
		alignment = contracts.Alignment{
			Status:      contracts.Conflict,
			Label:       "ÇATIŞMA",
			Description: fmt.Sprintf("Teknik %s, makro %s sinyali veriyor", directionLabels[techDir], directionLabels[macroDir]),
		}
	}

	risk := assessRisk(alignment.Status, band.Signal, macroDir, score)

	return &contracts.HybridResult{
		HybridScore:     round(score, 1),
		Signal:          band.Signal,
		SignalLabel:     signalLabels[band.Signal],
		Confidence:      band.Confidence,
		ConfidenceLabel: levelLabels[band.Confidence],
		Weights: contracts.FusionWeights{
			Technical: round(w.Technical*100, 1),
			Macro:     round(w.Macro*100, 1),
		},
		Technical: contracts.SideScore{Score: round(technicalScore, 1), Direction: techDir},
		Macro:     contracts.SideScore{Score: round(macroNormalized, 1), Direction: macroDir},
		Alignment: alignment,
		Risk:      risk,
	}, nil
}

func assessRisk(status contracts.AlignmentStatus, signal contracts.HybridSignal, macroDir contracts.Direction, score float64) contracts.Risk {
	var (
		level contracts.Level
		desc  string
	)
	switch {
	case status == contracts.Conflict && signal == contracts.HybridBuy && macroDir == contracts.DirectionSell:
		level, desc = contracts.LevelHigh, "Teknik olarak güçlü görünse de makro ortam olumsuz - dikkatli olun"
	case status == contracts.Conflict && signal == contracts.HybridSell && macroDir == contracts.DirectionBuy:
		level, desc = contracts.LevelMedium, "Teknik zayıf ama makro destekleyici - beklemek mantıklı olabilir"
	case status == contracts.Conflict:
		level, desc = contracts.LevelMedium, "Karma sinyaller - dikkatli pozisyon alın"
	case score >= 65 || score <= 35:
		level, desc = contracts.LevelLow, "Her iki analiz de aynı yönde - güvenilir sinyal"
	default:
		level, desc = contracts.LevelMedium, "Sinyaller uyumlu ama güven seviyesi orta"
	}
	return contracts.Risk{Level: level, Label: levelLabels[level], Description: desc}
}

// Recommend turns a fused result into advice lines: the signal/risk advice,
// a conflict warning, the sector note and the risk line
func Recommend(result *contracts.HybridResult, sector contracts.SectorScore) []string {
	if result == nil {
		return nil
	}

	lines := make([]string, 0, 5)
	switch result.Signal {
	case contracts.HybridBuy:
		switch result.Risk.Level {
		case contracts.LevelLow:
			lines = append(lines, "[+] AL pozisyonu acabilirsiniz. Hem teknik hem makro destekliyor.")
		case contracts.LevelMedium:
			lines = append(lines, "[!] AL pozisyonu icin uygun ama kucuk pozisyon tercih edin.")
		default:
			lines = append(lines, "[!] Teknik guclu ama makro riskli. Dikkatli olun veya bekleyin.")
		}
	case contracts.HybridSell:
		switch result.Risk.Level {
		case contracts.LevelLow:
			lines = append(lines, "[-] SAT sinyali guclu. Pozisyon varsa kapatmayi dusunun.")
		case contracts.LevelMedium:
			lines = append(lines, "[!] Zayif gorunuyor. Stop-loss koymadan pozisyon almayin.")
		default:
			lines = append(lines, "[!] Teknik zayif ama makro iyi. Bekleyip gozlemleyin.")
		}
	default:
		lines = append(lines, "[o] Net sinyal yok. Bekleyip gelismeleri takip edin.")
	}

	if result.Alignment.Status == contracts.Conflict {
		lines = append(lines,
			"[!] "+result.Alignment.Description,
			"[*] Catisan sinyaller var - daha fazla arastirma yapin.")
	}

	if sector.Sector != contracts.SectorNone {
		lines = append(lines, fmt.Sprintf("[S] Sektor (%s): %s", strings.ToUpper(string(sector.Sector)), sector.Description))
	}

	lines = append(lines, fmt.Sprintf("[R] Risk Seviyesi: %s - %s", result.Risk.Label, result.Risk.Description))
	return lines
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
