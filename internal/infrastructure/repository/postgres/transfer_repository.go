package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/valmyr/matchops/internal/domain/transfer"
	qb "github.com/valmyr/matchops/internal/platform/querybuilder"
)

var transferColumns = []string{
	"id", "player_id", "team_id", "position_id", "game_id", "effective_at", "recorded_at",
}

// TransferRepository is append-only: there is no update or delete path, by
// construction. Corrections are new rows.
type TransferRepository struct {
	db *sqlx.DB
}

func NewTransferRepository(db *sqlx.DB) *TransferRepository {
	return &TransferRepository{db: db}
}

func (r *TransferRepository) Append(ctx context.Context, entry transfer.Transfer) (transfer.Transfer, error) {
	recordedAt := entry.RecordedAt
	if recordedAt.IsZero() {
		recordedAt = time.Now()
	}

	query, args, err := qb.InsertInto("transfers").
		Columns("player_id", "team_id", "position_id", "game_id", "effective_at", "recorded_at").
		Values(
			entry.PlayerID,
			entry.TeamID,
			entry.PositionID,
			entry.GameID,
			entry.EffectiveAt.UTC(),
			recordedAt.UTC(),
		).
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		return transfer.Transfer{}, fmt.Errorf("build transfer insert: %w", err)
	}

	created := entry
	created.RecordedAt = recordedAt.UTC()
	if err := r.db.GetContext(ctx, &created.ID, query, args...); err != nil {
		return transfer.Transfer{}, fmt.Errorf("insert transfer: %w", err)
	}
	return created, nil
}

func (r *TransferRepository) ListByGameUntil(ctx context.Context, gameID int64, until time.Time) ([]transfer.Transfer, error) {
	query, args, err := qb.Select(transferColumns...).
		From("transfers").
		Where(
			qb.Eq("game_id", gameID),
			qb.Lte("effective_at", until.UTC()),
		).
		OrderBy("effective_at ASC", "id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build transfers query: %w", err)
	}

	return r.selectTransfers(ctx, query, args)
}

func (r *TransferRepository) ListByPlayer(ctx context.Context, playerID, gameID int64) ([]transfer.Transfer, error) {
	query, args, err := qb.Select(transferColumns...).
		From("transfers").
		Where(
			qb.Eq("player_id", playerID),
			qb.Eq("game_id", gameID),
		).
		OrderBy("effective_at ASC", "id ASC").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build player transfers query: %w", err)
	}

	return r.selectTransfers(ctx, query, args)
}

func (r *TransferRepository) selectTransfers(ctx context.Context, query string, args []any) ([]transfer.Transfer, error) {
	var rows []transferRow
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("query transfers: %w", err)
	}

	out := make([]transfer.Transfer, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toDomain())
	}
	return out, nil
}
