package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/valmyr/matchops/internal/domain/player"
	"github.com/valmyr/matchops/internal/domain/team"
	"github.com/valmyr/matchops/internal/domain/transfer"
	"github.com/valmyr/matchops/internal/platform/logging"
)

// RosterMember is one player on a team roster as of a point in time.
type RosterMember struct {
	PlayerID   int64
	Nickname   string
	PositionID int64
	Since      time.Time
}

type RecordTransferInput struct {
	PlayerID    int64
	TeamID      int64 // transfer.FreeAgentTeamID for a departure
	PositionID  int64
	GameID      int64
	EffectiveAt time.Time
}

// RosterService answers point-in-time roster questions from the append-only
// transfer ledger. Rosters are never stored as state; every answer is a
// replay of the ledger up to the requested instant.
type RosterService struct {
	transfers transfer.Repository
	teams     team.Repository
	players   player.Repository
	logger    *logging.Logger
	now       func() time.Time
}

func NewRosterService(
	transfers transfer.Repository,
	teams team.Repository,
	players player.Repository,
	logger *logging.Logger,
) *RosterService {
	if logger == nil {
		logger = logging.Default()
	}
	return &RosterService{
		transfers: transfers,
		teams:     teams,
		players:   players,
		logger:    logger,
		now:       time.Now,
	}
}

// RecordTransfer appends a ledger entry. Corrections are new entries; nothing
// is ever updated in place.
func (s *RosterService) RecordTransfer(ctx context.Context, input RecordTransferInput) (transfer.Transfer, error) {
	ctx, span := startUsecaseSpan(ctx, "RosterService.RecordTransfer")
	defer span.End()

	if input.PlayerID <= 0 {
		return transfer.Transfer{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}
	if input.GameID <= 0 {
		return transfer.Transfer{}, fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}
	if input.TeamID < 0 {
		return transfer.Transfer{}, fmt.Errorf("%w: team id must not be negative", ErrInvalidInput)
	}
	if input.EffectiveAt.IsZero() {
		return transfer.Transfer{}, fmt.Errorf("%w: effective date is required", ErrInvalidInput)
	}

	if _, err := s.players.GetByID(ctx, input.PlayerID); err != nil {
		if errors.Is(err, player.ErrNotFound) {
			return transfer.Transfer{}, fmt.Errorf("%w: player %d", ErrNotFound, input.PlayerID)
		}
		return transfer.Transfer{}, fmt.Errorf("load player %d: %w", input.PlayerID, err)
	}
	if input.TeamID != transfer.FreeAgentTeamID {
		if _, err := s.teams.GetByID(ctx, input.TeamID); err != nil {
			if errors.Is(err, team.ErrNotFound) {
				return transfer.Transfer{}, fmt.Errorf("%w: team %d", ErrNotFound, input.TeamID)
			}
			return transfer.Transfer{}, fmt.Errorf("load team %d: %w", input.TeamID, err)
		}
	}

	entry, err := s.transfers.Append(ctx, transfer.Transfer{
		PlayerID:    input.PlayerID,
		TeamID:      input.TeamID,
		PositionID:  input.PositionID,
		GameID:      input.GameID,
		EffectiveAt: input.EffectiveAt.UTC(),
		RecordedAt:  s.now().UTC(),
	})
	if err != nil {
		return transfer.Transfer{}, fmt.Errorf("append transfer: %w", err)
	}

	s.logger.InfoContext(ctx, "transfer recorded",
		"transfer_id", entry.ID,
		"player_id", entry.PlayerID,
		"team_id", entry.TeamID,
		"game_id", entry.GameID,
		"effective_at", entry.EffectiveAt,
	)
	return entry, nil
}

// AssignmentsAt returns each player's assignment as of asOf: the last ledger
// entry per player in (EffectiveAt, ID) order. Departures are included so
// callers can tell "left the scene" apart from "never seen".
func (s *RosterService) AssignmentsAt(ctx context.Context, gameID int64, asOf time.Time) (map[int64]transfer.Transfer, error) {
	if gameID <= 0 {
		return nil, fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}
	if asOf.IsZero() {
		asOf = s.now()
	}

	entries, err := s.transfers.ListByGameUntil(ctx, gameID, asOf.UTC())
	if err != nil {
		return nil, fmt.Errorf("list transfers for game %d: %w", gameID, err)
	}

	assignments := make(map[int64]transfer.Transfer, len(entries))
	for _, entry := range entries {
		assignments[entry.PlayerID] = entry
	}
	return assignments, nil
}

// RosterAt returns the team's roster as of asOf, ordered by (Since, PlayerID).
// positionID filters to one position when > 0.
func (s *RosterService) RosterAt(ctx context.Context, teamID, gameID int64, asOf time.Time, positionID int64) ([]RosterMember, error) {
	ctx, span := startUsecaseSpan(ctx, "RosterService.RosterAt")
	defer span.End()

	if teamID <= 0 {
		return nil, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}
	if _, err := s.teams.GetByID(ctx, teamID); err != nil {
		if errors.Is(err, team.ErrNotFound) {
			return nil, fmt.Errorf("%w: team %d", ErrNotFound, teamID)
		}
		return nil, fmt.Errorf("load team %d: %w", teamID, err)
	}

	assignments, err := s.AssignmentsAt(ctx, gameID, asOf)
	if err != nil {
		return nil, err
	}

	members := make([]RosterMember, 0, 8)
	for playerID, entry := range assignments {
		if entry.TeamID != teamID {
			continue
		}
		if positionID > 0 && entry.PositionID != positionID {
			continue
		}

		member := RosterMember{
			PlayerID:   playerID,
			PositionID: entry.PositionID,
			Since:      entry.EffectiveAt,
		}
		if p, getErr := s.players.GetByID(ctx, playerID); getErr == nil {
			member.Nickname = p.Nickname
		}
		members = append(members, member)
	}

	sort.Slice(members, func(i, j int) bool {
		if !members[i].Since.Equal(members[j].Since) {
			return members[i].Since.Before(members[j].Since)
		}
		return members[i].PlayerID < members[j].PlayerID
	})
	return members, nil
}
