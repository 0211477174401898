package series

import "context"

type Repository interface {
	GetByID(ctx context.Context, id int64) (Series, error)
	ListByTournament(ctx context.Context, tournamentID int64) ([]Series, error)
}
