package series

import (
	"errors"
	"time"
)

var ErrSameTeam = errors.New("series requires two distinct teams")

var ErrNotFound = errors.New("series not found")

// Series is a best-of-N contest between exactly two teams in a tournament.
// TeamAID and TeamBID are stored in insertion order; lookups treat the pair
// as unordered.
type Series struct {
	ID           int64
	TournamentID int64
	TeamAID      int64
	TeamBID      int64
	BestOf       int
	StartedAt    time.Time
}

// HasTeams reports whether the series is between the given unordered pair.
func (s Series) HasTeams(x, y int64) bool {
	return (s.TeamAID == x && s.TeamBID == y) || (s.TeamAID == y && s.TeamBID == x)
}
