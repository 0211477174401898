package player

import "errors"

var ErrNotFound = errors.New("player not found")

// Player is a reference entity carrying the external account identifiers
// importers use to link upstream participants to internal records.
type Player struct {
	ID        int64
	Nickname  string
	RealName  string
	RiotPUUID string // MOBA platform account id
	FaceitID  string // tactical-shooter platform account id
}
