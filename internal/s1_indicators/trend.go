package s1_indicators

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bistsignal/backend/internal/contracts"
)

// MAType selects the moving average flavour
type MAType string

const (
	MATypeSMA MAType = "SMA"
	MATypeEMA MAType = "EMA"
)

// Default trend parameters
var DefaultMAPeriods = []int{20, 50, 200}

const DefaultCrossLookback = 10

// MovingAverages computes one moving average series per period
func MovingAverages(closes []float64, periods []int, maType MAType) (map[int][]float64, error) {
	if len(periods) == 0 {
		return nil, contracts.NewInputError("moving_averages", "no periods given")
	}
	if len(closes) == 0 {
		return nil, contracts.NewDataQualityError("moving_averages", "no closes")
	}

	kind := MAType(strings.ToUpper(string(maType)))
	out := make(map[int][]float64, len(periods))
	for _, p := range periods {
		var (
			series []float64
			err    error
		)
		switch kind {
		case MATypeSMA:
			series, err = SMA(closes, p)
		case MATypeEMA:
			series, err = EMA(closes, p)
		default:
			return nil, contracts.NewInputError("moving_averages", "unknown MA type %q (use SMA or EMA)", maType)
		}
		if err != nil {
			return nil, err
		}
		out[p] = series
	}
	return out, nil
}

// SortedPeriods returns the keys of an MA map in ascending order
func SortedPeriods(mas map[int][]float64) []int {
	periods := make([]int, 0, len(mas))
	for p := range mas {
		periods = append(periods, p)
	}
	sort.Ints(periods)
	return periods
}

// CrossType is the kind of moving average crossover found
type CrossType string

const (
	CrossGolden CrossType = "GOLDEN"
	CrossDeath  CrossType = "DEATH"
	CrossNone   CrossType = "NONE"
)

// Position is the current fast-vs-slow relation when no cross was found
type Position string

const (
	PositionAbove   Position = "ABOVE"
	PositionBelow   Position = "BELOW"
	PositionUnknown Position = "UNKNOWN"
)

// CrossResult describes the most recent crossover inside the lookback window
type CrossResult struct {
	Type        CrossType `json:"type"`
	DaysAgo     int       `json:"days_ago"`
	Position    Position  `json:"position"`
	Bullish     bool      `json:"bullish"`
	Description string    `json:"description"`
}

// DetectCross scans the latest lookback adjacent pairs, newest first, for a
// sign change of fast-slow. DaysAgo is 0 when the cross happened on the last bar.
func DetectCross(fast, slow []float64, lookback int) CrossResult {
	n := len(fast)
	if len(slow) < n {
		n = len(slow)
	}
	if n < 2 {
		return CrossResult{Type: CrossNone, Position: PositionUnknown, Description: "Yetersiz veri"}
	}
	fast = fast[len(fast)-n:]
	slow = slow[len(slow)-n:]

	limit := lookback + 1
	if n < limit {
		limit = n
	}

	for i := 1; i < limit; i++ {
		cur, prev := n-i, n-i-1
		if !IsDefined(fast[cur]) || !IsDefined(slow[cur]) || !IsDefined(fast[prev]) || !IsDefined(slow[prev]) {
			continue
		}

		if fast[cur] > slow[cur] && fast[prev] <= slow[prev] {
			return CrossResult{
				Type:        CrossGolden,
				DaysAgo:     i - 1,
				Position:    PositionAbove,
				Bullish:     true,
				Description: fmt.Sprintf("GOLDEN CROSS! MA kesisimi %d gun once gerceklesti - GUCLU AL sinyali", i-1),
			}
		}
		if fast[cur] < slow[cur] && fast[prev] >= slow[prev] {
			return CrossResult{
				Type:        CrossDeath,
				DaysAgo:     i - 1,
				Position:    PositionBelow,
				Description: fmt.Sprintf("DEATH CROSS! MA kesisimi %d gun once gerceklesti - GUCLU SAT sinyali", i-1),
			}
		}
	}

	lastFast, lastSlow := fast[n-1], slow[n-1]
	switch {
	case !IsDefined(lastFast) || !IsDefined(lastSlow):
		return CrossResult{Type: CrossNone, Position: PositionUnknown, Description: "Yetersiz veri"}
	case lastFast > lastSlow:
		return CrossResult{
			Type:        CrossNone,
			Position:    PositionAbove,
			Bullish:     true,
			Description: "Hizli MA yavas MA'nin ustunde - Yukselis trendi devam ediyor",
		}
	default:
		return CrossResult{
			Type:        CrossNone,
			Position:    PositionBelow,
			Description: "Hizli MA yavas MA'nin altinda - Dusus trendi devam ediyor",
		}
	}
}
