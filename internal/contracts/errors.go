package contracts

import (
	"errors"
	"fmt"
)

// Error taxonomy shared by every pipeline stage
var (
	// ErrInput: empty/absent price series or a series shorter than a warm-up window
	ErrInput = errors.New("input error")

	// ErrDataQuality: a factor or indicator cannot be computed from the data it got
	ErrDataQuality = errors.New("data quality error")

	// ErrConfig: macro snapshot missing or malformed, invalid weights
	ErrConfig = errors.New("config error")
)

// AnalysisError carries the failing operation alongside its taxonomy kind
type AnalysisError struct {
	Kind error  // one of ErrInput, ErrDataQuality, ErrConfig
	Op   string // e.g. "rsi", "macro.snapshot"
	Err  error
}

func (e *AnalysisError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As
func (e *AnalysisError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewInputError wraps err as an input error for op
func NewInputError(op string, format string, args ...interface{}) error {
	return &AnalysisError{Kind: ErrInput, Op: op, Err: fmt.Errorf(format, args...)}
}

// NewDataQualityError wraps err as a data quality error for op
func NewDataQualityError(op string, format string, args ...interface{}) error {
	return &AnalysisError{Kind: ErrDataQuality, Op: op, Err: fmt.Errorf(format, args...)}
}

// NewConfigError wraps err as a config error for op
func NewConfigError(op string, format string, args ...interface{}) error {
	return &AnalysisError{Kind: ErrConfig, Op: op, Err: fmt.Errorf(format, args...)}
}

// IsInputError reports whether err belongs to the input class
func IsInputError(err error) bool {
	return errors.Is(err, ErrInput)
}

// IsDataQualityError reports whether err belongs to the data quality class
func IsDataQualityError(err error) bool {
	return errors.Is(err, ErrDataQuality)
}

// IsConfigError reports whether err belongs to the config class
func IsConfigError(err error) bool {
	return errors.Is(err, ErrConfig)
}
