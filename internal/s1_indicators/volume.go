package s1_indicators

import (
	"github.com/bistsignal/backend/internal/contracts"
)

// Default volume parameters
const (
	DefaultVolumeAvgPeriod = 20
	DefaultVolumeThreshold = 1.5
	DefaultVolumeTrendSpan = 10
)

// VolumeStatus is the volume band of the last bar
type VolumeStatus string

const (
	VolumeBurst   VolumeStatus = "PATLAMA"
	VolumeHigh    VolumeStatus = "YUKSEK"
	VolumeVeryLow VolumeStatus = "COK_DUSUK"
	VolumeNormal  VolumeStatus = "NORMAL"
)

// VolumeResult is the raw volume reading of the last bar
type VolumeResult struct {
	CurrentVolume  float64      `json:"current_volume"`
	AvgVolume      float64      `json:"avg_volume"`
	Ratio          float64      `json:"volume_ratio"`
	PriceChange    float64      `json:"price_change"`
	PriceChangePct float64      `json:"price_change_pct"`
	Status         VolumeStatus `json:"status"`
}

// AnalyzeVolume compares the last volume with its trailing average.
// A zero average is treated as ratio 1 (no evidence either way).
func AnalyzeVolume(points []contracts.PricePoint, avgPeriod int, threshold float64) (*VolumeResult, error) {
	if avgPeriod <= 0 {
		return nil, contracts.NewInputError("volume", "average period must be > 0, got %d", avgPeriod)
	}
	if threshold <= 0 {
		return nil, contracts.NewInputError("volume", "threshold must be > 0, got %v", threshold)
	}
	if len(points) < 2 || len(points) < avgPeriod {
		return nil, contracts.NewDataQualityError("volume", "need %d bars, got %d", max(2, avgPeriod), len(points))
	}

	var sum float64
	for _, p := range points[len(points)-avgPeriod:] {
		sum += p.Volume
	}
	avg := sum / float64(avgPeriod)

	last := points[len(points)-1]
	prev := points[len(points)-2]

	res := &VolumeResult{
		CurrentVolume: last.Volume,
		AvgVolume:     avg,
		Ratio:         1,
		PriceChange:   last.Close - prev.Close,
	}
	if avg > 0 {
		res.Ratio = last.Volume / avg
	}
	if prev.Close != 0 {
		res.PriceChangePct = res.PriceChange / prev.Close * 100
	}

	switch {
	case res.Ratio >= threshold*2:
		res.Status = VolumeBurst
	case res.Ratio >= threshold:
		res.Status = VolumeHigh
	case res.Ratio < 0.5:
		res.Status = VolumeVeryLow
	default:
		res.Status = VolumeNormal
	}

	return res, nil
}

// VolumeTrendLabel is the direction of volume inside a recent window
type VolumeTrendLabel string

const (
	VolumeRising  VolumeTrendLabel = "ARTIS"
	VolumeFalling VolumeTrendLabel = "AZALIS"
	VolumeSteady  VolumeTrendLabel = "SABIT"
	VolumeUnknown VolumeTrendLabel = "BILINMIYOR"
)

// VolumeTrend compares the second half of the last period volumes with the first half
func VolumeTrend(volumes []float64, period int) VolumeTrendLabel {
	if period < 2 || len(volumes) < period {
		return VolumeUnknown
	}

	recent := volumes[len(volumes)-period:]
	half := period / 2
	first := mean(recent[:half])
	second := mean(recent[half:])

	ratio := 1.0
	if first > 0 {
		ratio = second / first
	}

	switch {
	case ratio > 1.2:
		return VolumeRising
	case ratio < 0.8:
		return VolumeFalling
	default:
		return VolumeSteady
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
