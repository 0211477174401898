package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/valmyr/matchops/internal/domain/team"
	qb "github.com/valmyr/matchops/internal/platform/querybuilder"
)

var teamColumns = []string{"id", "game_id", "name", "tag"}

type TeamRepository struct {
	db *sqlx.DB
}

func NewTeamRepository(db *sqlx.DB) *TeamRepository {
	return &TeamRepository{db: db}
}

func (r *TeamRepository) GetByID(ctx context.Context, id int64) (team.Team, error) {
	query, args, err := qb.Select(teamColumns...).
		From("teams").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return team.Team{}, fmt.Errorf("build team query: %w", err)
	}

	var row teamRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNoRows(err) {
			return team.Team{}, team.ErrNotFound
		}
		return team.Team{}, fmt.Errorf("query team %d: %w", id, err)
	}
	return row.toDomain(), nil
}

func (r *TeamRepository) ListByGame(ctx context.Context, gameID int64) ([]team.Team, error) {
	query, args, err := qb.Select(teamColumns...).
		From("teams").
		Where(qb.Eq("game_id", gameID)).
		OrderBy("name ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build teams query: %w", err)
	}

	var rows []teamRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query teams for game %d: %w", gameID, err)
	}

	out := make([]team.Team, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
