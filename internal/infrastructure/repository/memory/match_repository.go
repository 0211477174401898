package memory

import (
	"context"
	"sort"

	"github.com/valmyr/matchops/internal/domain/match"
	"github.com/valmyr/matchops/internal/domain/playerstat"
	"github.com/valmyr/matchops/internal/domain/series"
)

type MatchRepository struct {
	store *Store
}

func NewMatchRepository(store *Store) *MatchRepository {
	return &MatchRepository{store: store}
}

func (r *MatchRepository) ExistsByExternal(_ context.Context, source match.Source, externalID string) (bool, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.matchExternals[externalKey(source, externalID)]
	return ok, nil
}

func (r *MatchRepository) GetByID(_ context.Context, id int64) (match.Match, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.matches[id]
	if !ok {
		return match.Match{}, match.ErrNotFound
	}
	return m, nil
}

func (r *MatchRepository) CreateImported(_ context.Context, unit match.ImportUnit) (match.Match, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	key := ""
	if unit.Match.ExternalID != "" {
		key = externalKey(unit.Match.Source, unit.Match.ExternalID)
		if _, ok := s.matchExternals[key]; ok {
			return match.Match{}, match.ErrDuplicateExternalID
		}
	}

	created := unit.Match
	if unit.TeamAID > 0 && unit.TeamBID > 0 && unit.TournamentID > 0 {
		created.SeriesID = s.findOrCreateSeriesLocked(unit)
	}

	s.nextMatchID++
	created.ID = s.nextMatchID
	s.matches[created.ID] = created
	if key != "" {
		s.matchExternals[key] = created.ID
	}

	rows := make([]playerstat.Row, 0, len(unit.Rows))
	for _, row := range unit.Rows {
		s.nextRowID++
		row.ID = s.nextRowID
		row.MatchID = created.ID
		rows = append(rows, row)
	}
	s.statRows[created.ID] = rows

	return created, nil
}

func (s *Store) findOrCreateSeriesLocked(unit match.ImportUnit) int64 {
	candidates := make([]series.Series, 0, 2)
	for _, sr := range s.series {
		if sr.TournamentID != unit.TournamentID || !sr.HasTeams(unit.TeamAID, unit.TeamBID) {
			continue
		}
		gap := unit.Match.PlayedAt.Sub(sr.StartedAt)
		if gap < 0 {
			gap = -gap
		}
		if gap <= match.SeriesLinkWindow {
			candidates = append(candidates, sr)
		}
	}
	if len(candidates) > 0 {
		sort.Slice(candidates, func(i, j int) bool {
			return candidates[i].StartedAt.Before(candidates[j].StartedAt)
		})
		return candidates[0].ID
	}

	s.nextSeriesID++
	s.series[s.nextSeriesID] = series.Series{
		ID:           s.nextSeriesID,
		TournamentID: unit.TournamentID,
		TeamAID:      unit.TeamAID,
		TeamBID:      unit.TeamBID,
		StartedAt:    unit.Match.PlayedAt,
	}
	return s.nextSeriesID
}
