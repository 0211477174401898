package memory

import (
	"context"
	"sort"

	"github.com/valmyr/matchops/internal/domain/series"
)

type SeriesRepository struct {
	store *Store
}

func NewSeriesRepository(store *Store) *SeriesRepository {
	return &SeriesRepository{store: store}
}

func (r *SeriesRepository) GetByID(_ context.Context, id int64) (series.Series, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	sr, ok := s.series[id]
	if !ok {
		return series.Series{}, series.ErrNotFound
	}
	return sr, nil
}

func (r *SeriesRepository) ListByTournament(_ context.Context, tournamentID int64) ([]series.Series, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]series.Series, 0, len(s.series))
	for _, sr := range s.series {
		if sr.TournamentID == tournamentID {
			out = append(out, sr)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartedAt.Equal(out[j].StartedAt) {
			return out[i].StartedAt.Before(out[j].StartedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}
