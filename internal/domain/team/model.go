package team

import "errors"

var ErrNotFound = errors.New("team not found")

// Team is a reference entity; rosters are derived from the transfer ledger,
// never stored here.
type Team struct {
	ID     int64
	GameID int64
	Name   string
	Tag    string
}
