package usecase

import (
	"context"
	"time"

	"github.com/valmyr/matchops/internal/domain/match"
)

// NormalizedMatch is the source-agnostic shape every importer produces.
// Participants are keyed by upstream account id; linking to internal
// players happens in the coordinator, not in the importers.
type NormalizedMatch struct {
	Source     match.Source
	ExternalID string
	MapName    string
	PlayedAt   time.Time
	Completed  bool
	Teams      [2]NormalizedTeam
}

type NormalizedTeam struct {
	// Key is the upstream side label ("blue"/"red", "faction1"/"faction2").
	Key     string
	Won     bool
	Players []NormalizedPlayer
}

type NormalizedPlayer struct {
	ExternalID string
	Name       string
	Kills      int
	Deaths     int
	Assists    int
	Damage     int
	Rounds     int
}

// Importer fetches one external match and normalizes it.
//
// Error contract: ErrExternalMatchNotFound for a permanently invalid id;
// anything else is treated as transient and may be retried by the caller.
type Importer interface {
	Source() match.Source
	Import(ctx context.Context, externalID string) (NormalizedMatch, error)
}

// ImporterSet is the source-keyed importer lookup the coordinator dispatches
// through. New sources register here without touching the coordinator.
type ImporterSet map[match.Source]Importer

func NewImporterSet(importers ...Importer) ImporterSet {
	set := make(ImporterSet, len(importers))
	for _, imp := range importers {
		if imp == nil {
			continue
		}
		set[imp.Source()] = imp
	}
	return set
}

func (s ImporterSet) For(source match.Source) (Importer, bool) {
	imp, ok := s[source]
	return imp, ok
}
