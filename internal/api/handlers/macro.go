package handlers

import (
	"context"
	"net/http"

	"github.com/bistsignal/backend/internal/contracts"
	"github.com/bistsignal/backend/pkg/logger"
)

// SnapshotManager reads the macro snapshot and records policy rates;
// *s0_data.SnapshotFileStore satisfies it
type SnapshotManager interface {
	Load(ctx context.Context) (*contracts.MacroSnapshot, error)
	UpdateTCMBRate(ctx context.Context, rate float64) (*contracts.MacroSnapshot, error)
}

// MacroHandler handles macro snapshot endpoints
type MacroHandler struct {
	snapshots SnapshotManager
	logger    *logger.Logger
}

// NewMacroHandler creates a new macro handler
func NewMacroHandler(snapshots SnapshotManager, log *logger.Logger) *MacroHandler {
	return &MacroHandler{
		snapshots: snapshots,
		logger:    log,
	}
}

// GetSnapshot returns the stored macro snapshot
// GET /api/macro
func (h *MacroHandler) GetSnapshot(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.snapshots.Load(r.Context())
	if err != nil {
		respondFailure(w, h.logger, err, "Failed to load macro snapshot")
		return
	}

	respondData(w, snapshot)
}

// TCMBRateRequest is the body of PUT /api/macro/tcmb-rate
type TCMBRateRequest struct {
	Rate *float64 `json:"rate" validate:"required,gte=0,lte=1000"`
}

// SetTCMBRate records a new central bank policy rate
// PUT /api/macro/tcmb-rate {"rate": 42.5}
func (h *MacroHandler) SetTCMBRate(w http.ResponseWriter, r *http.Request) {
	var req TCMBRateRequest
	if err := bindJSON(r, &req); err != nil {
		respondBindError(w, err)
		return
	}

	snapshot, err := h.snapshots.UpdateTCMBRate(r.Context(), *req.Rate)
	if err != nil {
		respondFailure(w, h.logger, err, "Failed to update TCMB rate")
		return
	}

	h.logger.WithField("rate", *req.Rate).Info("TCMB rate updated via API")
	respondData(w, snapshot)
}
