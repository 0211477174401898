package transfer

import "time"

// FreeAgentTeamID is the sentinel target for a player leaving the scene.
const FreeAgentTeamID int64 = 0

// Transfer is one append-only ledger entry: the player joined the team in
// the position as of EffectiveAt, scoped to one game title. A new transfer
// implicitly ends the player's previous assignment for that game. Rows are
// never mutated or deleted; corrections are later rows, and same-day
// corrections win by insertion order (higher ID).
type Transfer struct {
	ID          int64
	PlayerID    int64
	TeamID      int64 // FreeAgentTeamID when the player leaves the scene
	PositionID  int64
	GameID      int64
	EffectiveAt time.Time
	RecordedAt  time.Time
}

// IsDeparture reports whether the entry removes the player from any roster.
func (t Transfer) IsDeparture() bool {
	return t.TeamID == FreeAgentTeamID
}
