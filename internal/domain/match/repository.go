package match

import (
	"context"
	"time"

	"github.com/valmyr/matchops/internal/domain/playerstat"
)

// ImportUnit is everything one external match persists atomically: the match
// row, its series linkage inputs and all per-player stat rows. Either the
// whole unit commits or none of it does.
type ImportUnit struct {
	Match        Match
	TeamAID      int64 // 0 when the side could not be resolved
	TeamBID      int64
	TournamentID int64
	Rows         []playerstat.Row
}

// SeriesLinkWindow bounds how far apart two maps of the same best-of-N
// contest may start and still be treated as one series.
const SeriesLinkWindow = 48 * time.Hour

type Repository interface {
	ExistsByExternal(ctx context.Context, source Source, externalID string) (bool, error)
	GetByID(ctx context.Context, id int64) (Match, error)
	// CreateImported persists the unit in one transaction, creating or
	// reusing the series for (team pair, tournament, time proximity).
	// Returns ErrDuplicateExternalID when the idempotency key already exists.
	CreateImported(ctx context.Context, unit ImportUnit) (Match, error)
}
