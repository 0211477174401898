package player

import "context"

type Repository interface {
	GetByID(ctx context.Context, id int64) (Player, error)
	// FindByRiotPUUID and FindByFaceitID resolve external account ids to
	// internal players. The bool is false when no player carries the id;
	// that is not an error.
	FindByRiotPUUID(ctx context.Context, puuid string) (Player, bool, error)
	FindByFaceitID(ctx context.Context, faceitID string) (Player, bool, error)
}
