package memory

import (
	"context"
	"sort"

	"github.com/valmyr/matchops/internal/domain/playerstat"
)

type StatRepository struct {
	store *Store
}

func NewStatRepository(store *Store) *StatRepository {
	return &StatRepository{store: store}
}

func (r *StatRepository) ListByMatch(_ context.Context, matchID int64) ([]playerstat.Row, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]playerstat.Row(nil), s.statRows[matchID]...), nil
}

func (r *StatRepository) ListLinesByPlayer(_ context.Context, playerID int64) ([]playerstat.MatchLine, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	lines := make([]playerstat.MatchLine, 0, 16)
	for matchID, rows := range s.statRows {
		m, ok := s.matches[matchID]
		if !ok || !m.Completed {
			continue
		}
		for _, row := range rows {
			if row.PlayerID != playerID {
				continue
			}
			lines = append(lines, playerstat.MatchLine{
				MatchID:  matchID,
				MapName:  m.MapName,
				PlayedAt: m.PlayedAt,
				Won:      row.Won,
				Kills:    row.Kills,
				Deaths:   row.Deaths,
				Assists:  row.Assists,
				Damage:   row.Damage,
				Rounds:   row.Rounds,
			})
		}
	}
	sortLinesNewestFirst(lines)
	return lines, nil
}

func (r *StatRepository) ListLinesByTeam(_ context.Context, teamID int64) ([]playerstat.MatchLine, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	lines := make([]playerstat.MatchLine, 0, 16)
	for matchID, rows := range s.statRows {
		m, ok := s.matches[matchID]
		if !ok || !m.Completed {
			continue
		}

		line := playerstat.MatchLine{MatchID: matchID, MapName: m.MapName, PlayedAt: m.PlayedAt}
		seen := false
		for _, row := range rows {
			if row.TeamID != teamID {
				continue
			}
			seen = true
			line.Won = line.Won || row.Won
			line.Kills += row.Kills
			line.Deaths += row.Deaths
			line.Assists += row.Assists
			line.Damage += row.Damage
			if row.Rounds > line.Rounds {
				line.Rounds = row.Rounds
			}
		}
		if seen {
			lines = append(lines, line)
		}
	}
	sortLinesNewestFirst(lines)
	return lines, nil
}

func sortLinesNewestFirst(lines []playerstat.MatchLine) {
	sort.Slice(lines, func(i, j int) bool {
		if !lines[i].PlayedAt.Equal(lines[j].PlayedAt) {
			return lines[i].PlayedAt.After(lines[j].PlayedAt)
		}
		return lines[i].MatchID > lines[j].MatchID
	})
}
