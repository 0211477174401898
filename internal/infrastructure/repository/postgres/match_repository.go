package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/valmyr/matchops/internal/domain/match"
	qb "github.com/valmyr/matchops/internal/platform/querybuilder"
)

var matchColumns = []string{
	"id", "series_id", "source", "external_id", "map_name", "played_at", "completed", "winner_team_id",
}

type MatchRepository struct {
	db *sqlx.DB
}

func NewMatchRepository(db *sqlx.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) ExistsByExternal(ctx context.Context, source match.Source, externalID string) (bool, error) {
	query, args, err := qb.Select("1").
		From("matches").
		Where(
			qb.Eq("source", string(source)),
			qb.Eq("external_id", externalID),
		).
		Limit(1).
		ToSQL()
	if err != nil {
		return false, fmt.Errorf("build exists query: %w", err)
	}

	var one int
	if err := r.db.GetContext(ctx, &one, query, args...); err != nil {
		if isNoRows(err) {
			return false, nil
		}
		return false, fmt.Errorf("query match existence: %w", err)
	}
	return true, nil
}

func (r *MatchRepository) GetByID(ctx context.Context, id int64) (match.Match, error) {
	query, args, err := qb.Select(matchColumns...).
		From("matches").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return match.Match{}, fmt.Errorf("build match query: %w", err)
	}

	var row matchRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNoRows(err) {
			return match.Match{}, match.ErrNotFound
		}
		return match.Match{}, fmt.Errorf("query match %d: %w", id, err)
	}
	return row.toDomain(), nil
}

// CreateImported persists the whole unit in one transaction. The series is
// found by (unordered team pair, tournament, start proximity) or created; a
// concurrent insert of the same external id surfaces as ErrDuplicateExternalID
// via the partial unique index on (source, external_id).
func (r *MatchRepository) CreateImported(ctx context.Context, unit match.ImportUnit) (match.Match, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return match.Match{}, fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	seriesID := int64(0)
	if unit.TeamAID > 0 && unit.TeamBID > 0 && unit.TournamentID > 0 {
		seriesID, err = r.findOrCreateSeries(ctx, tx, unit)
		if err != nil {
			return match.Match{}, err
		}
	}

	query, args, err := qb.InsertInto("matches").
		Columns("series_id", "source", "external_id", "map_name", "played_at", "completed", "winner_team_id").
		Values(
			nullInt64(seriesID),
			string(unit.Match.Source),
			nullString(unit.Match.ExternalID),
			unit.Match.MapName,
			unit.Match.PlayedAt.UTC(),
			unit.Match.Completed,
			nullInt64(unit.Match.WinnerTeam),
		).
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		return match.Match{}, fmt.Errorf("build match insert: %w", err)
	}

	created := unit.Match
	created.SeriesID = seriesID
	if err := tx.GetContext(ctx, &created.ID, query, args...); err != nil {
		if isUniqueViolation(err) {
			return match.Match{}, match.ErrDuplicateExternalID
		}
		return match.Match{}, fmt.Errorf("insert match: %w", err)
	}

	if len(unit.Rows) > 0 {
		insert := qb.InsertInto("player_stat_rows").
			Columns("match_id", "player_id", "team_id", "external_id", "external_name", "side",
				"kills", "deaths", "assists", "damage", "rounds", "won")
		for _, row := range unit.Rows {
			insert.Values(
				created.ID,
				nullInt64(row.PlayerID),
				nullInt64(row.TeamID),
				nullString(row.ExternalID),
				row.ExternalName,
				row.Side,
				row.Kills,
				row.Deaths,
				row.Assists,
				row.Damage,
				row.Rounds,
				row.Won,
			)
		}
		rowsQuery, rowsArgs, buildErr := insert.ToSQL()
		if buildErr != nil {
			return match.Match{}, fmt.Errorf("build stat rows insert: %w", buildErr)
		}
		if _, execErr := tx.ExecContext(ctx, rowsQuery, rowsArgs...); execErr != nil {
			return match.Match{}, fmt.Errorf("insert stat rows: %w", execErr)
		}
	}

	if err := tx.Commit(); err != nil {
		return match.Match{}, fmt.Errorf("commit import: %w", err)
	}
	return created, nil
}

func (r *MatchRepository) findOrCreateSeries(ctx context.Context, tx *sqlx.Tx, unit match.ImportUnit) (int64, error) {
	windowStart := unit.Match.PlayedAt.Add(-match.SeriesLinkWindow).UTC()
	windowEnd := unit.Match.PlayedAt.Add(match.SeriesLinkWindow).UTC()

	query, args, err := qb.Select("id").
		From("series").
		Where(
			qb.Eq("tournament_id", unit.TournamentID),
			qb.Expr("((team_a_id = ? AND team_b_id = ?) OR (team_a_id = ? AND team_b_id = ?))",
				unit.TeamAID, unit.TeamBID, unit.TeamBID, unit.TeamAID),
			qb.Expr("started_at BETWEEN ? AND ?", windowStart, windowEnd),
		).
		OrderBy("started_at ASC").
		Limit(1).
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build series query: %w", err)
	}

	var seriesID int64
	err = tx.GetContext(ctx, &seriesID, query, args...)
	if err == nil {
		return seriesID, nil
	}
	if !isNoRows(err) {
		return 0, fmt.Errorf("query series: %w", err)
	}

	insert, insertArgs, err := qb.InsertInto("series").
		Columns("tournament_id", "team_a_id", "team_b_id", "best_of", "started_at").
		Values(unit.TournamentID, unit.TeamAID, unit.TeamBID, 0, unit.Match.PlayedAt.UTC()).
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		return 0, fmt.Errorf("build series insert: %w", err)
	}
	if err := tx.GetContext(ctx, &seriesID, insert, insertArgs...); err != nil {
		return 0, fmt.Errorf("insert series: %w", err)
	}
	return seriesID, nil
}
