package team

import "context"

type Repository interface {
	GetByID(ctx context.Context, id int64) (Team, error)
	ListByGame(ctx context.Context, gameID int64) ([]Team, error)
}
