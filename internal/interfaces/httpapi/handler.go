package httpapi

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/valmyr/matchops/internal/domain/match"
	"github.com/valmyr/matchops/internal/domain/playerstat"
	"github.com/valmyr/matchops/internal/domain/series"
	"github.com/valmyr/matchops/internal/domain/transfer"
	"github.com/valmyr/matchops/internal/usecase"
)

type Handler struct {
	importService  *usecase.ImportService
	rosterService  *usecase.RosterService
	statsService   *usecase.StatsService
	versionService *usecase.VersionService
	matches        match.Repository
	statRows       playerstat.Repository
	seriesRepo     series.Repository
	transfers      transfer.Repository
	logger         *slog.Logger
	validator      *validator.Validate
}

func NewHandler(
	importService *usecase.ImportService,
	rosterService *usecase.RosterService,
	statsService *usecase.StatsService,
	versionService *usecase.VersionService,
	matches match.Repository,
	statRows playerstat.Repository,
	seriesRepo series.Repository,
	transfers transfer.Repository,
	logger *slog.Logger,
) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return &Handler{
		importService:  importService,
		rosterService:  rosterService,
		statsService:   statsService,
		versionService: versionService,
		matches:        matches,
		statRows:       statRows,
		seriesRepo:     seriesRepo,
		transfers:      transfers,
		logger:         logger,
		validator:      validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}
	return nil
}

func pathID(r *http.Request, name string) (int64, error) {
	raw := strings.TrimSpace(r.PathValue(name))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: %s must be a positive integer", usecase.ErrInvalidInput, name)
	}
	return id, nil
}

func queryID(r *http.Request, name string, required bool) (int64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		if required {
			return 0, fmt.Errorf("%w: query parameter %s is required", usecase.ErrInvalidInput, name)
		}
		return 0, nil
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: query parameter %s must be a positive integer", usecase.ErrInvalidInput, name)
	}
	return id, nil
}

// queryTime accepts RFC 3339 or a bare date; an absent parameter means now.
func queryTime(r *http.Request, name string) (time.Time, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return time.Now().UTC(), nil
	}
	if ts, err := time.Parse(time.RFC3339, raw); err == nil {
		return ts.UTC(), nil
	}
	if ts, err := time.Parse("2006-01-02", raw); err == nil {
		return ts.UTC(), nil
	}
	return time.Time{}, fmt.Errorf("%w: query parameter %s must be RFC 3339 or YYYY-MM-DD", usecase.ErrInvalidInput, name)
}
