package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/valmyr/matchops/internal/domain/transfer"
	"github.com/valmyr/matchops/internal/usecase"
)

type recordTransferRequest struct {
	PlayerID    int64  `json:"playerId" validate:"required,gt=0"`
	TeamID      int64  `json:"teamId" validate:"gte=0"`
	PositionID  int64  `json:"positionId" validate:"gte=0"`
	GameID      int64  `json:"gameId" validate:"required,gt=0"`
	EffectiveAt string `json:"effectiveAt" validate:"required"`
}

type transferDTO struct {
	ID          int64     `json:"id"`
	PlayerID    int64     `json:"playerId"`
	TeamID      int64     `json:"teamId"`
	PositionID  int64     `json:"positionId,omitempty"`
	GameID      int64     `json:"gameId"`
	EffectiveAt time.Time `json:"effectiveAt"`
	RecordedAt  time.Time `json:"recordedAt"`
	Departure   bool      `json:"departure"`
}

func (h *Handler) RecordTransfer(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RecordTransfer")
	defer span.End()

	var req recordTransferRequest
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			writeError(ctx, w, fmt.Errorf("%w: request body is required", usecase.ErrInvalidInput))
			return
		}
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	effectiveAt, err := parseFlexibleTime(req.EffectiveAt)
	if err != nil {
		writeError(ctx, w, fmt.Errorf("%w: effectiveAt must be RFC 3339 or YYYY-MM-DD", usecase.ErrInvalidInput))
		return
	}

	entry, err := h.rosterService.RecordTransfer(ctx, usecase.RecordTransferInput{
		PlayerID:    req.PlayerID,
		TeamID:      req.TeamID,
		PositionID:  req.PositionID,
		GameID:      req.GameID,
		EffectiveAt: effectiveAt,
	})
	if err != nil {
		h.logger.WarnContext(ctx, "record transfer failed", "player_id", req.PlayerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusCreated, transferToDTO(entry))
}

func (h *Handler) ListPlayerTransfers(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPlayerTransfers")
	defer span.End()

	playerID, err := pathID(r, "playerID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	gameID, err := queryID(r, "gameId", true)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	entries, err := h.transfers.ListByPlayer(ctx, playerID, gameID)
	if err != nil {
		h.logger.WarnContext(ctx, "list transfers failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]transferDTO, 0, len(entries))
	for _, entry := range entries {
		items = append(items, transferToDTO(entry))
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func transferToDTO(entry transfer.Transfer) transferDTO {
	return transferDTO{
		ID:          entry.ID,
		PlayerID:    entry.PlayerID,
		TeamID:      entry.TeamID,
		PositionID:  entry.PositionID,
		GameID:      entry.GameID,
		EffectiveAt: entry.EffectiveAt,
		RecordedAt:  entry.RecordedAt,
		Departure:   entry.IsDeparture(),
	}
}

func parseFlexibleTime(raw string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts.UTC(), nil
	}
	ts, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, err
	}
	return ts.UTC(), nil
}
