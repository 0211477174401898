package transfer

import (
	"context"
	"time"
)

type Repository interface {
	// Append records a new ledger entry and returns it with ID and
	// RecordedAt assigned. Existing rows are never touched.
	Append(ctx context.Context, entry Transfer) (Transfer, error)
	// ListByGameUntil returns every entry for the game with
	// EffectiveAt <= until, ordered by (EffectiveAt, ID) ascending so the
	// last entry seen per player is their assignment as of that instant.
	ListByGameUntil(ctx context.Context, gameID int64, until time.Time) ([]Transfer, error)
	ListByPlayer(ctx context.Context, playerID, gameID int64) ([]Transfer, error)
}
