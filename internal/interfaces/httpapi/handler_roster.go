package httpapi

import (
	"net/http"
	"time"
)

type rosterMemberDTO struct {
	PlayerID   int64     `json:"playerId"`
	Nickname   string    `json:"nickname,omitempty"`
	PositionID int64     `json:"positionId,omitempty"`
	Since      time.Time `json:"since"`
}

type rosterDTO struct {
	TeamID  int64             `json:"teamId"`
	GameID  int64             `json:"gameId"`
	AsOf    time.Time         `json:"asOf"`
	Members []rosterMemberDTO `json:"members"`
}

// GetTeamRoster answers "who played for this team at that moment": the ?at
// parameter defaults to now, ?positionId narrows to one position.
func (h *Handler) GetTeamRoster(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetTeamRoster")
	defer span.End()

	teamID, err := pathID(r, "teamID")
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	gameID, err := queryID(r, "gameId", true)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	positionID, err := queryID(r, "positionId", false)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	asOf, err := queryTime(r, "at")
	if err != nil {
		writeError(ctx, w, err)
		return
	}

	members, err := h.rosterService.RosterAt(ctx, teamID, gameID, asOf, positionID)
	if err != nil {
		h.logger.WarnContext(ctx, "roster lookup failed", "team_id", teamID, "error", err)
		writeError(ctx, w, err)
		return
	}

	items := make([]rosterMemberDTO, 0, len(members))
	for _, member := range members {
		items = append(items, rosterMemberDTO{
			PlayerID:   member.PlayerID,
			Nickname:   member.Nickname,
			PositionID: member.PositionID,
			Since:      member.Since,
		})
	}
	writeSuccess(ctx, w, http.StatusOK, rosterDTO{
		TeamID:  teamID,
		GameID:  gameID,
		AsOf:    asOf,
		Members: items,
	})
}
