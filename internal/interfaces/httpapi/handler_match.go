package httpapi

import (
	"net/http"
	"time"

	"github.com/valmyr/matchops/internal/domain/playerstat"
)

type matchDTO struct {
	ID         int64         `json:"id"`
	SeriesID   int64         `json:"seriesId,omitempty"`
	Source     string        `json:"source"`
	ExternalID string        `json:"externalId,omitempty"`
	MapName    string        `json:"mapName"`
	PlayedAt   time.Time     `json:"playedAt"`
	Completed  bool          `json:"completed"`
	WinnerTeam int64         `json:"winnerTeamId,omitempty"`
	Rows       []statRowDTO  `json:"rows"`
}

type statRowDTO struct {
	PlayerID     int64  `json:"playerId,omitempty"`
	TeamID       int64  `json:"teamId,omitempty"`
	ExternalID   string `json:"externalId,omitempty"`
	ExternalName string `json:"externalName,omitempty"`
	Side         string `json:"side"`
	Kills        int    `json:"kills"`
	Deaths       int    `json:"deaths"`
	Assists      int    `json:"assists"`
	Damage       int    `json:"damage"`
	Rounds       int    `json:"rounds"`
	Won          bool   `json:"won"`
}

type seriesDTO struct {
	ID           int64     `json:"id"`
	TournamentID int64     `json:"tournamentId"`
	TeamAID      int64     `json:"teamAId"`
	TeamBID      int64     `json:"teamBId"`
	BestOf       int       `json:"bestOf,omitempty"`
	StartedAt    time.Time `json:"startedAt"`
}

func (h *Handler) GetMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetMatch")
	defer span.End()

	matchID, err := pathID(r, "matchID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	m, err := h.matches.GetByID(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "match lookup failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	rows, err := h.statRows.ListByMatch(ctx, matchID)
	if err != nil {
		h.logger.WarnContext(ctx, "match rows lookup failed", "match_id", matchID, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, matchDTO{
		ID:         m.ID,
		SeriesID:   m.SeriesID,
		Source:     string(m.Source),
		ExternalID: m.ExternalID,
		MapName:    m.MapName,
		PlayedAt:   m.PlayedAt,
		Completed:  m.Completed,
		WinnerTeam: m.WinnerTeam,
		Rows:       statRowsToDTO(rows),
	})
}

func (h *Handler) ListTournamentSeries(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTournamentSeries")
	defer span.End()

	tournamentID, err := pathID(r, "tournamentID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	list, err := h.seriesRepo.ListByTournament(ctx, tournamentID)
	if err != nil {
		h.logger.WarnContext(ctx, "series lookup failed", "tournament_id", tournamentID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]seriesDTO, 0, len(list))
	for _, sr := range list {
		items = append(items, seriesDTO{
			ID:           sr.ID,
			TournamentID: sr.TournamentID,
			TeamAID:      sr.TeamAID,
			TeamBID:      sr.TeamBID,
			BestOf:       sr.BestOf,
			StartedAt:    sr.StartedAt,
		})
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func statRowsToDTO(rows []playerstat.Row) []statRowDTO {
	out := make([]statRowDTO, 0, len(rows))
	for _, row := range rows {
		out = append(out, statRowDTO{
			PlayerID:     row.PlayerID,
			TeamID:       row.TeamID,
			ExternalID:   row.ExternalID,
			ExternalName: row.ExternalName,
			Side:         row.Side,
			Kills:        row.Kills,
			Deaths:       row.Deaths,
			Assists:      row.Assists,
			Damage:       row.Damage,
			Rounds:       row.Rounds,
			Won:          row.Won,
		})
	}
	return out
}
