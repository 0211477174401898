package httpapi

import "net/http"

func (h *Handler) GetPlayerStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPlayerStats")
	defer span.End()

	playerID, err := pathID(r, "playerID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	summary, err := h.statsService.PlayerSummary(ctx, playerID)
	if err != nil {
		h.logger.WarnContext(ctx, "player stats failed", "player_id", playerID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, summary)
}

func (h *Handler) GetTeamStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeamStats")
	defer span.End()

	teamID, err := pathID(r, "teamID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	summary, err := h.statsService.TeamSummary(ctx, teamID)
	if err != nil {
		h.logger.WarnContext(ctx, "team stats failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, summary)
}
