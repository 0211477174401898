package match

import (
	"errors"
	"strings"
	"time"
)

// Source identifies where a match record originated.
type Source string

const (
	// SourceInternal marks matches entered by hand, with no external id.
	SourceInternal Source = "internal"
	// SourceRiot marks matches pulled from the MOBA match-v5 API.
	SourceRiot Source = "riot"
	// SourceFaceit marks matches pulled from the tactical-shooter match API.
	SourceFaceit Source = "faceit"
)

var ErrUnknownSource = errors.New("unknown match source")

var ErrNotFound = errors.New("match not found")

// ErrDuplicateExternalID reports a write that would violate the
// (source, external_id) uniqueness of imported matches.
var ErrDuplicateExternalID = errors.New("match with this external id already exists")

func ParseSource(value string) (Source, error) {
	switch Source(strings.ToLower(strings.TrimSpace(value))) {
	case SourceInternal:
		return SourceInternal, nil
	case SourceRiot:
		return SourceRiot, nil
	case SourceFaceit:
		return SourceFaceit, nil
	default:
		return "", ErrUnknownSource
	}
}

// Match is one played game. Imported matches carry the upstream id;
// (Source, ExternalID) is unique for non-empty external ids and makes
// ingestion idempotent.
type Match struct {
	ID         int64
	SeriesID   int64 // 0 when the match could not be linked to a series
	Source     Source
	ExternalID string // empty for internal matches
	MapName    string
	PlayedAt   time.Time
	Completed  bool
	WinnerTeam int64 // internal team id, 0 when unresolved
}
