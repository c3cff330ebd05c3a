package contracts

import "time"

// HybridSignal is the final three-way recommendation
type HybridSignal string

const (
	HybridBuy  HybridSignal = "BUY"
	HybridHold HybridSignal = "HOLD"
	HybridSell HybridSignal = "SELL"
)

// Level is shared by confidence and risk
type Level string

const (
	LevelHigh   Level = "HIGH"
	LevelMedium Level = "MEDIUM"
	LevelLow    Level = "LOW"
)

// Direction is the BUY/SELL lean of one side of the fusion
type Direction string

const (
	DirectionBuy  Direction = "BUY"
	DirectionSell Direction = "SELL"
)

// AlignmentStatus tells whether technical and macro point the same way
type AlignmentStatus string

const (
	Aligned  AlignmentStatus = "ALIGNED"
	Conflict AlignmentStatus = "CONFLICT"
)

// FusionWeights are the technical/macro weights (normalized to sum 1)
type FusionWeights struct {
	Technical float64 `json:"technical"`
	Macro     float64 `json:"macro"`
}

// SideScore is one input of the fusion and the direction it implies
type SideScore struct {
	Score     float64   `json:"score"` // 0 ~ 100
	Direction Direction `json:"direction"`
}

// Alignment describes the agreement of both sides
type Alignment struct {
	Status      AlignmentStatus `json:"status"`
	Label       string          `json:"label"` // UYUMLU / ÇATIŞMA
	Description string          `json:"description"`
}

// Risk describes the risk of acting on the hybrid signal
type Risk struct {
	Level       Level  `json:"level"`
	Label       string `json:"label"` // YÜKSEK / ORTA / DÜŞÜK
	Description string `json:"description"`
}

// HybridResult is the S4 output
type HybridResult struct {
	HybridScore     float64       `json:"hybrid_score"` // 0 ~ 100
	Signal          HybridSignal  `json:"signal"`
	SignalLabel     string        `json:"signal_label"` // AL / BEK / SAT
	Confidence      Level         `json:"confidence"`
	ConfidenceLabel string        `json:"confidence_label"`
	Weights         FusionWeights `json:"weights"`
	Technical       SideScore     `json:"technical"`
	Macro           SideScore     `json:"macro"`
	Alignment       Alignment     `json:"alignment"`
	Risk            Risk          `json:"risk"`
	Recommendation  []string      `json:"recommendation,omitempty"`
}

// AnalysisReport is everything handed to a reporting collaborator for one request
type AnalysisReport struct {
	ID             string             `json:"id"`
	Symbol         string             `json:"symbol"`
	GeneratedAt    time.Time          `json:"generated_at"`
	ConfigHash     string             `json:"config_hash,omitempty"`
	Technical      *TechnicalAnalysis `json:"technical"`
	Aggregate      AggregateSignal    `json:"aggregate"`
	TechnicalScore float64            `json:"technical_score"` // 0 ~ 100
	Macro          *CombinedMacro     `json:"macro,omitempty"`
	Hybrid         *HybridResult      `json:"hybrid,omitempty"`
	Suggestions    []string           `json:"suggestions,omitempty"`
	Warnings       []string           `json:"warnings,omitempty"`
}
