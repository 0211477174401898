package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/valmyr/matchops/internal/domain/playerstat"
	qb "github.com/valmyr/matchops/internal/platform/querybuilder"
)

type StatRepository struct {
	db *sqlx.DB
}

func NewStatRepository(db *sqlx.DB) *StatRepository {
	return &StatRepository{db: db}
}

func (r *StatRepository) ListByMatch(ctx context.Context, matchID int64) ([]playerstat.Row, error) {
	query, args, err := qb.Select(
		"id", "match_id", "player_id", "team_id", "external_id", "external_name", "side",
		"kills", "deaths", "assists", "damage", "rounds", "won",
	).
		From("player_stat_rows").
		Where(qb.Eq("match_id", matchID)).
		OrderBy("id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build stat rows query: %w", err)
	}

	var rows []statRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query stat rows for match %d: %w", matchID, err)
	}

	out := make([]playerstat.Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}

// ListLinesByPlayer joins each of the player's rows with its match facts.
// Incomplete matches are excluded: aggregates only ever cover finished games.
func (r *StatRepository) ListLinesByPlayer(ctx context.Context, playerID int64) ([]playerstat.MatchLine, error) {
	query, args, err := qb.Select(
		"m.id AS match_id", "m.map_name", "m.played_at",
		"r.won", "r.kills", "r.deaths", "r.assists", "r.damage", "r.rounds",
	).
		From("player_stat_rows r JOIN matches m ON m.id = r.match_id").
		Where(
			qb.Eq("r.player_id", playerID),
			qb.Eq("m.completed", true),
		).
		OrderBy("m.played_at DESC", "m.id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build player lines query: %w", err)
	}

	return r.selectLines(ctx, query, args)
}

// ListLinesByTeam sums the team's rows per match before returning, so one
// line is one match regardless of roster size.
func (r *StatRepository) ListLinesByTeam(ctx context.Context, teamID int64) ([]playerstat.MatchLine, error) {
	query, args, err := qb.Select(
		"m.id AS match_id", "m.map_name", "m.played_at",
		"bool_or(r.won) AS won",
		"COALESCE(SUM(r.kills), 0) AS kills",
		"COALESCE(SUM(r.deaths), 0) AS deaths",
		"COALESCE(SUM(r.assists), 0) AS assists",
		"COALESCE(SUM(r.damage), 0) AS damage",
		"COALESCE(MAX(r.rounds), 0) AS rounds",
	).
		From("player_stat_rows r JOIN matches m ON m.id = r.match_id").
		Where(
			qb.Eq("r.team_id", teamID),
			qb.Eq("m.completed", true),
		).
		GroupBy("m.id", "m.map_name", "m.played_at").
		OrderBy("m.played_at DESC", "m.id DESC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build team lines query: %w", err)
	}

	return r.selectLines(ctx, query, args)
}

func (r *StatRepository) selectLines(ctx context.Context, query string, args []any) ([]playerstat.MatchLine, error) {
	var rows []matchLineRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query match lines: %w", err)
	}

	out := make([]playerstat.MatchLine, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
