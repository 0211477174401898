package httpapi

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"

	"github.com/valmyr/matchops/internal/domain/match"
	"github.com/valmyr/matchops/internal/usecase"
)

type importBatchRequest struct {
	Source       string   `json:"source" validate:"required"`
	TournamentID int64    `json:"tournamentId" validate:"required,gt=0"`
	GameID       int64    `json:"gameId" validate:"required,gt=0"`
	ExternalIDs  []string `json:"externalIds" validate:"required,min=1,max=500"`
}

func (h *Handler) RunImportBatchJob(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RunImportBatchJob")
	defer span.End()

	var req importBatchRequest
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

	source, err := match.ParseSource(req.Source)
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	report, err := h.importService.ImportBatch(ctx, usecase.ImportBatchInput{
		Source:       source,
		TournamentID: req.TournamentID,
		GameID:       req.GameID,
		ExternalIDs:  req.ExternalIDs,
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "import batch failed", "source", req.Source, "error", err)
		writeError(ctx, w, err)
		return
	}

	status := http.StatusOK
	if report.Failed > 0 {
		// Partial success still returns the full report; 207 signals that
		// some items need attention.
		status = http.StatusMultiStatus
	}
	writeSuccess(ctx, w, status, report)
}
