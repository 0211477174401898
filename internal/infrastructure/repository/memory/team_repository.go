package memory

import (
	"context"
	"sort"

	"github.com/valmyr/matchops/internal/domain/team"
)

type TeamRepository struct {
	store *Store
}

func NewTeamRepository(store *Store) *TeamRepository {
	return &TeamRepository{store: store}
}

func (r *TeamRepository) GetByID(_ context.Context, id int64) (team.Team, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	t, ok := s.teams[id]
	if !ok {
		return team.Team{}, team.ErrNotFound
	}
	return t, nil
}

func (r *TeamRepository) ListByGame(_ context.Context, gameID int64) ([]team.Team, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]team.Team, 0, len(s.teams))
	for _, t := range s.teams {
		if t.GameID == gameID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
