package playerstat

import "context"

type Repository interface {
	ListByMatch(ctx context.Context, matchID int64) ([]Row, error)
	// ListLinesByPlayer returns one line per completed match the player
	// appeared in, newest first.
	ListLinesByPlayer(ctx context.Context, playerID int64) ([]MatchLine, error)
	// ListLinesByTeam returns one line per completed match, with the team's
	// player rows already summed.
	ListLinesByTeam(ctx context.Context, teamID int64) ([]MatchLine, error)
}
