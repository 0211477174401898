package playerstat

import "time"

// Row is one player's performance in one match. Rows are owned by their
// match and removed with it. PlayerID is 0 for unlinked participants; the
// external identifiers are preserved so the row can be claimed later.
type Row struct {
	ID           int64
	MatchID      int64
	PlayerID     int64
	TeamID       int64
	ExternalID   string // upstream account id, kept for unlinked rows
	ExternalName string
	Side         string // upstream side/faction label, e.g. "blue" or "faction1"
	Kills        int
	Deaths       int
	Assists      int
	Damage       int
	Rounds       int
	Won          bool
}

// MatchLine is the flat aggregation input: one row joined with the match
// facts the aggregator needs. Team-scoped lines sum the team's players
// per match before they reach the aggregator.
type MatchLine struct {
	MatchID  int64
	MapName  string
	PlayedAt time.Time
	Won      bool
	Kills    int
	Deaths   int
	Assists  int
	Damage   int
	Rounds   int
}
