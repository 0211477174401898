package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/valmyr/matchops/internal/domain/series"
	qb "github.com/valmyr/matchops/internal/platform/querybuilder"
)

var seriesColumns = []string{"id", "tournament_id", "team_a_id", "team_b_id", "best_of", "started_at"}

type SeriesRepository struct {
	db *sqlx.DB
}

func NewSeriesRepository(db *sqlx.DB) *SeriesRepository {
	return &SeriesRepository{db: db}
}

func (r *SeriesRepository) GetByID(ctx context.Context, id int64) (series.Series, error) {
	query, args, err := qb.Select(seriesColumns...).
		From("series").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return series.Series{}, fmt.Errorf("build series query: %w", err)
	}

	var row seriesRow
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNoRows(err) {
			return series.Series{}, series.ErrNotFound
		}
		return series.Series{}, fmt.Errorf("query series %d: %w", id, err)
	}
	return row.toDomain(), nil
}

func (r *SeriesRepository) ListByTournament(ctx context.Context, tournamentID int64) ([]series.Series, error) {
	query, args, err := qb.Select(seriesColumns...).
		From("series").
		Where(qb.Eq("tournament_id", tournamentID)).
		OrderBy("started_at ASC", "id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build series list query: %w", err)
	}

	var rows []seriesRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query series for tournament %d: %w", tournamentID, err)
	}

	out := make([]series.Series, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
