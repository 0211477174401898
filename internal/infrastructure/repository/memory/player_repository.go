package memory

import (
	"context"

	"github.com/valmyr/matchops/internal/domain/player"
)

type PlayerRepository struct {
	store *Store
}

func NewPlayerRepository(store *Store) *PlayerRepository {
	return &PlayerRepository{store: store}
}

func (r *PlayerRepository) GetByID(_ context.Context, id int64) (player.Player, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.players[id]
	if !ok {
		return player.Player{}, player.ErrNotFound
	}
	return p, nil
}

func (r *PlayerRepository) FindByRiotPUUID(_ context.Context, puuid string) (player.Player, bool, error) {
	return r.find(func(p player.Player) bool { return puuid != "" && p.RiotPUUID == puuid })
}

func (r *PlayerRepository) FindByFaceitID(_ context.Context, faceitID string) (player.Player, bool, error) {
	return r.find(func(p player.Player) bool { return faceitID != "" && p.FaceitID == faceitID })
}

func (r *PlayerRepository) find(matches func(player.Player) bool) (player.Player, bool, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, p := range s.players {
		if matches(p) {
			return p, true, nil
		}
	}
	return player.Player{}, false, nil
}
