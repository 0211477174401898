package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/valmyr/matchops/internal/domain/player"
	qb "github.com/valmyr/matchops/internal/platform/querybuilder"
)

var playerColumns = []string{"id", "nickname", "real_name", "riot_puuid", "faceit_id"}

type PlayerRepository struct {
	db *sqlx.DB
}

func NewPlayerRepository(db *sqlx.DB) *PlayerRepository {
	return &PlayerRepository{db: db}
}

func (r *PlayerRepository) GetByID(ctx context.Context, id int64) (player.Player, error) {
	query, args, err := qb.Select(playerColumns...).
		From("players").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return player.Player{}, fmt.Errorf("build player query: %w", err)
	}

	var row playerRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNoRows(err) {
			return player.Player{}, player.ErrNotFound
		}
		return player.Player{}, fmt.Errorf("query player %d: %w", id, err)
	}
	return row.toDomain(), nil
}

func (r *PlayerRepository) FindByRiotPUUID(ctx context.Context, puuid string) (player.Player, bool, error) {
	return r.findByExternal(ctx, "riot_puuid", puuid)
}

func (r *PlayerRepository) FindByFaceitID(ctx context.Context, faceitID string) (player.Player, bool, error) {
	return r.findByExternal(ctx, "faceit_id", faceitID)
}

func (r *PlayerRepository) findByExternal(ctx context.Context, column, value string) (player.Player, bool, error) {
	if value == "" {
		return player.Player{}, false, nil
	}

	query, args, err := qb.Select(playerColumns...).
		From("players").
		Where(qb.Eq(column, value)).
		Limit(1).
		ToSQL()
	if err != nil {
		return player.Player{}, false, fmt.Errorf("build player lookup: %w", err)
	}

	var row playerRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNoRows(err) {
			return player.Player{}, false, nil
		}
		return player.Player{}, false, fmt.Errorf("lookup player by %s: %w", column, err)
	}
	return row.toDomain(), true, nil
}
