package strategyconfig

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ValidationError is a fatal configuration problem
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Warning is a recommendation violation (non-fatal)
type Warning struct {
	Code    string
	Message string
}

var validate = newValidator()

// newValidator reports fields by their YAML path
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// Validate checks the field rules and the cross-field constraints.
// The first problem is returned as a ValidationError.
func Validate(cfg *Config) error {
	if cfg == nil {
		return ValidationError{"config", "required"}
	}

	if err := validate.Struct(cfg); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return fieldError(fieldErrs[0])
		}
		return ValidationError{"config", err.Error()}
	}

	// === Indicators ===
	m := cfg.Indicators.MACD
	if m.Fast >= m.Slow {
		return ValidationError{"indicators.macd", fmt.Sprintf("fast=%d must be < slow=%d", m.Fast, m.Slow)}
	}

	ma := cfg.Indicators.MovingAverages
	seen := make(map[int]bool, len(ma.Periods))
	for i, p := range ma.Periods {
		if seen[p] {
			return ValidationError{fmt.Sprintf("indicators.moving_averages.periods[%d]", i), fmt.Sprintf("duplicate period %d", p)}
		}
		seen[p] = true
	}
	if ma.CrossFast >= ma.CrossSlow {
		return ValidationError{"indicators.moving_averages", "cross_fast must be < cross_slow"}
	}

	// === Macro ===
	if err := validateWeightsSum([]float64{cfg.Macro.GeneralWeight, cfg.Macro.SectorWeight}, 1.0, 1e-6); err != nil {
		return ValidationError{"macro", err.Error()}
	}

	return nil
}

// approxBars is the number of sessions a period covers
var approxBars = map[string]int{
	"5d":  5,
	"1mo": 21,
	"3mo": 63,
	"6mo": 126,
	"1y":  252,
	"2y":  504,
	"5y":  1260,
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	if bars, ok := approxBars[cfg.Meta.DefaultPeriod]; ok && bars < cfg.LongestWindow() {
		warnings = append(warnings, Warning{
			Code: "SHORT_PERIOD",
			Message: fmt.Sprintf("default_period %s gives ~%d bars, the longest indicator needs %d",
				cfg.Meta.DefaultPeriod, bars, cfg.LongestWindow()),
		})
	}

	if cfg.Hybrid.Macro > cfg.Hybrid.Technical {
		warnings = append(warnings, Warning{
			Code:    "MACRO_DOMINANT",
			Message: "macro_weight > technical_weight: signals will follow the macro cycle",
		})
	}

	if cfg.Indicators.Bollinger.K < 1.5 {
		warnings = append(warnings, Warning{
			Code:    "NARROW_BANDS",
			Message: "bollinger.k < 1.5: band touches will be frequent",
		})
	}

	return warnings
}

// === Helper Functions ===

func fieldError(fe validator.FieldError) ValidationError {
	// drop the root type name
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	var msg string
	switch fe.Tag() {
	case "required":
		msg = "required"
	case "oneof":
		msg = fmt.Sprintf("must be one of: %s", strings.ReplaceAll(fe.Param(), " ", ", "))
	case "gt":
		msg = fmt.Sprintf("must be > %s", fe.Param())
	case "gte":
		msg = fmt.Sprintf("must be >= %s", fe.Param())
	case "lte":
		msg = fmt.Sprintf("must be <= %s", fe.Param())
	case "min":
		msg = fmt.Sprintf("must have at least %s entries", fe.Param())
	default:
		msg = fmt.Sprintf("failed validation: %s", fe.Tag())
	}

	return ValidationError{Field: field, Message: msg}
}

func validateWeightsSum(weights []float64, target float64, epsilon float64) error {
	if len(weights) == 0 {
		return errors.New("must not be empty")
	}
	sum := 0.0
	for _, w := range weights {
		sum += w
	}
	if math.Abs(sum-target) > epsilon {
		return fmt.Errorf("weights must sum to %.2f, got %.4f", target, sum)
	}
	return nil
}
