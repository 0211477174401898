package usecase

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/valmyr/matchops/internal/domain/match"
	"github.com/valmyr/matchops/internal/domain/player"
	"github.com/valmyr/matchops/internal/domain/playerstat"
	"github.com/valmyr/matchops/internal/domain/team"
	"github.com/valmyr/matchops/internal/domain/transfer"
)

type stubTransferRepo struct {
	mu      sync.Mutex
	entries []transfer.Transfer
	nextID  int64
}

func (r *stubTransferRepo) Append(_ context.Context, entry transfer.Transfer) (transfer.Transfer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	entry.ID = r.nextID
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now().UTC()
	}
	r.entries = append(r.entries, entry)
	return entry, nil
}

func (r *stubTransferRepo) ListByGameUntil(_ context.Context, gameID int64, until time.Time) ([]transfer.Transfer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]transfer.Transfer, 0, len(r.entries))
	for _, entry := range r.entries {
		if entry.GameID == gameID && !entry.EffectiveAt.After(until) {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].EffectiveAt.Equal(out[j].EffectiveAt) {
			return out[i].EffectiveAt.Before(out[j].EffectiveAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

func (r *stubTransferRepo) ListByPlayer(_ context.Context, playerID, gameID int64) ([]transfer.Transfer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]transfer.Transfer, 0, len(r.entries))
	for _, entry := range r.entries {
		if entry.PlayerID == playerID && entry.GameID == gameID {
			out = append(out, entry)
		}
	}
	return out, nil
}

func transferEntry(playerID, teamID int64, effective time.Time) transfer.Transfer {
	return transfer.Transfer{
		PlayerID:    playerID,
		TeamID:      teamID,
		GameID:      1,
		EffectiveAt: effective,
	}
}

type stubPlayerRepo struct {
	players map[int64]player.Player
}

func (r *stubPlayerRepo) GetByID(_ context.Context, id int64) (player.Player, error) {
	p, ok := r.players[id]
	if !ok {
		return player.Player{}, player.ErrNotFound
	}
	return p, nil
}

func (r *stubPlayerRepo) FindByRiotPUUID(_ context.Context, puuid string) (player.Player, bool, error) {
	for _, p := range r.players {
		if puuid != "" && p.RiotPUUID == puuid {
			return p, true, nil
		}
	}
	return player.Player{}, false, nil
}

func (r *stubPlayerRepo) FindByFaceitID(_ context.Context, faceitID string) (player.Player, bool, error) {
	for _, p := range r.players {
		if faceitID != "" && p.FaceitID == faceitID {
			return p, true, nil
		}
	}
	return player.Player{}, false, nil
}

type stubTeamRepo struct {
	teams map[int64]team.Team
}

func (r *stubTeamRepo) GetByID(_ context.Context, id int64) (team.Team, error) {
	t, ok := r.teams[id]
	if !ok {
		return team.Team{}, team.ErrNotFound
	}
	return t, nil
}

func (r *stubTeamRepo) ListByGame(_ context.Context, gameID int64) ([]team.Team, error) {
	out := make([]team.Team, 0, len(r.teams))
	for _, t := range r.teams {
		if t.GameID == gameID {
			out = append(out, t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

type stubMatchRepo struct {
	mu       sync.Mutex
	existing map[string]int64 // source|externalID -> match id
	imported []match.ImportUnit
	nextID   int64

	createErr error
}

func matchKey(source match.Source, externalID string) string {
	return string(source) + "|" + externalID
}

func (r *stubMatchRepo) ExistsByExternal(_ context.Context, source match.Source, externalID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.existing[matchKey(source, externalID)]
	return ok, nil
}

func (r *stubMatchRepo) GetByID(_ context.Context, id int64) (match.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, unit := range r.imported {
		if unit.Match.ID == id {
			return unit.Match, nil
		}
	}
	return match.Match{}, match.ErrNotFound
}

func (r *stubMatchRepo) CreateImported(_ context.Context, unit match.ImportUnit) (match.Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.createErr != nil {
		return match.Match{}, r.createErr
	}

	key := matchKey(unit.Match.Source, unit.Match.ExternalID)
	if _, ok := r.existing[key]; ok {
		return match.Match{}, match.ErrDuplicateExternalID
	}

	r.nextID++
	unit.Match.ID = r.nextID
	if r.existing == nil {
		r.existing = make(map[string]int64)
	}
	r.existing[key] = unit.Match.ID
	r.imported = append(r.imported, unit)
	return unit.Match, nil
}

type stubStatRepo struct {
	rows  map[int64][]playerstat.Row
	lines []playerstat.MatchLine
}

func (r *stubStatRepo) ListByMatch(_ context.Context, matchID int64) ([]playerstat.Row, error) {
	return r.rows[matchID], nil
}

func (r *stubStatRepo) ListLinesByPlayer(_ context.Context, playerID int64) ([]playerstat.MatchLine, error) {
	return r.lines, nil
}

func (r *stubStatRepo) ListLinesByTeam(_ context.Context, teamID int64) ([]playerstat.MatchLine, error) {
	return r.lines, nil
}
