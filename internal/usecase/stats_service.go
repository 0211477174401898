package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/valmyr/matchops/internal/domain/player"
	"github.com/valmyr/matchops/internal/domain/playerstat"
	"github.com/valmyr/matchops/internal/domain/team"
	"github.com/valmyr/matchops/internal/platform/cache"
	"github.com/valmyr/matchops/internal/platform/logging"
)

// Composite rating weights. The rating blends kills per round, survival
// (1 - deaths per round) and assists per round into a single scalar where
// ~1.0 is a strong performance. Changing any weight changes every published
// rating, so the golden values in the tests must move with them.
const (
	ratingKillsPerRound   = 0.85
	ratingSurvival        = 0.70
	ratingAssistsPerRound = 0.25
)

// Summary is the aggregate of a set of match lines.
type Summary struct {
	Matches int     `json:"matches"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	WinRate float64 `json:"winRate"`

	Kills   int `json:"kills"`
	Deaths  int `json:"deaths"`
	Assists int `json:"assists"`
	Damage  int `json:"damage"`
	Rounds  int `json:"rounds"`

	Rating float64 `json:"rating"`

	Maps []MapBreakdown `json:"maps"`
}

// MapBreakdown is the same aggregate scoped to one map, map name ascending.
type MapBreakdown struct {
	MapName string  `json:"mapName"`
	Matches int     `json:"matches"`
	Wins    int     `json:"wins"`
	WinRate float64 `json:"winRate"`
	Kills   int     `json:"kills"`
	Deaths  int     `json:"deaths"`
	Assists int     `json:"assists"`
	Rounds  int     `json:"rounds"`
	Rating  float64 `json:"rating"`
}

// Rating computes the composite performance rating over a stat total.
// Zero rounds rate as 0 rather than dividing by zero; a negative blend
// (more deaths than rounds can excuse) clamps to 0.
func Rating(kills, deaths, assists, rounds int) float64 {
	if rounds <= 0 {
		return 0
	}

	r := float64(rounds)
	raw := float64(kills)/r*ratingKillsPerRound +
		(1-float64(deaths)/r)*ratingSurvival +
		float64(assists)/r*ratingAssistsPerRound
	if raw < 0 {
		raw = 0
	}
	return round2(raw)
}

// Summarize folds match lines into a Summary. It is pure: no I/O, no clock.
func Summarize(lines []playerstat.MatchLine) Summary {
	summary := Summary{}
	byMap := make(map[string]*MapBreakdown)

	for _, line := range lines {
		summary.Matches++
		if line.Won {
			summary.Wins++
		} else {
			summary.Losses++
		}
		summary.Kills += line.Kills
		summary.Deaths += line.Deaths
		summary.Assists += line.Assists
		summary.Damage += line.Damage
		summary.Rounds += line.Rounds

		mb, ok := byMap[line.MapName]
		if !ok {
			mb = &MapBreakdown{MapName: line.MapName}
			byMap[line.MapName] = mb
		}
		mb.Matches++
		if line.Won {
			mb.Wins++
		}
		mb.Kills += line.Kills
		mb.Deaths += line.Deaths
		mb.Assists += line.Assists
		mb.Rounds += line.Rounds
	}

	if summary.Matches > 0 {
		summary.WinRate = round2(float64(summary.Wins) / float64(summary.Matches))
	}
	summary.Rating = Rating(summary.Kills, summary.Deaths, summary.Assists, summary.Rounds)

	summary.Maps = make([]MapBreakdown, 0, len(byMap))
	for _, mb := range byMap {
		if mb.Matches > 0 {
			mb.WinRate = round2(float64(mb.Wins) / float64(mb.Matches))
		}
		mb.Rating = Rating(mb.Kills, mb.Deaths, mb.Assists, mb.Rounds)
		summary.Maps = append(summary.Maps, *mb)
	}
	sort.Slice(summary.Maps, func(i, j int) bool {
		return summary.Maps[i].MapName < summary.Maps[j].MapName
	})

	return summary
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// StatsService serves player and team aggregates over persisted stat rows.
// Aggregation happens on read; summaries are cached briefly since imports
// land in bursts and re-reading the same profile is the common case.
type StatsService struct {
	stats   playerstat.Repository
	players player.Repository
	teams   team.Repository
	cache   *cache.Store
	logger  *logging.Logger
}

func NewStatsService(
	stats playerstat.Repository,
	players player.Repository,
	teams team.Repository,
	store *cache.Store,
	logger *logging.Logger,
) *StatsService {
	if logger == nil {
		logger = logging.Default()
	}
	return &StatsService{
		stats:   stats,
		players: players,
		teams:   teams,
		cache:   store,
		logger:  logger,
	}
}

func (s *StatsService) PlayerSummary(ctx context.Context, playerID int64) (Summary, error) {
	ctx, span := startUsecaseSpan(ctx, "StatsService.PlayerSummary")
	defer span.End()

	if playerID <= 0 {
		return Summary{}, fmt.Errorf("%w: player id is required", ErrInvalidInput)
	}
	if _, err := s.players.GetByID(ctx, playerID); err != nil {
		if errors.Is(err, player.ErrNotFound) {
			return Summary{}, fmt.Errorf("%w: player %d", ErrNotFound, playerID)
		}
		return Summary{}, fmt.Errorf("load player %d: %w", playerID, err)
	}

	return s.summarize(ctx, "player-stats:"+strconv.FormatInt(playerID, 10), func(ctx context.Context) ([]playerstat.MatchLine, error) {
		return s.stats.ListLinesByPlayer(ctx, playerID)
	})
}

func (s *StatsService) TeamSummary(ctx context.Context, teamID int64) (Summary, error) {
	ctx, span := startUsecaseSpan(ctx, "StatsService.TeamSummary")
	defer span.End()

	if teamID <= 0 {
		return Summary{}, fmt.Errorf("%w: team id is required", ErrInvalidInput)
	}
	if _, err := s.teams.GetByID(ctx, teamID); err != nil {
		if errors.Is(err, team.ErrNotFound) {
			return Summary{}, fmt.Errorf("%w: team %d", ErrNotFound, teamID)
		}
		return Summary{}, fmt.Errorf("load team %d: %w", teamID, err)
	}

	return s.summarize(ctx, "team-stats:"+strconv.FormatInt(teamID, 10), func(ctx context.Context) ([]playerstat.MatchLine, error) {
		return s.stats.ListLinesByTeam(ctx, teamID)
	})
}

// InvalidatePlayer and InvalidateTeam drop cached summaries after an import
// touches the underlying rows.
func (s *StatsService) InvalidatePlayer(ctx context.Context, playerID int64) {
	s.cache.Delete(ctx, "player-stats:"+strconv.FormatInt(playerID, 10))
}

func (s *StatsService) InvalidateTeam(ctx context.Context, teamID int64) {
	s.cache.Delete(ctx, "team-stats:"+strconv.FormatInt(teamID, 10))
}

func (s *StatsService) summarize(ctx context.Context, cacheKey string, load func(context.Context) ([]playerstat.MatchLine, error)) (Summary, error) {
	value, err := s.cache.GetOrLoad(ctx, cacheKey, func(ctx context.Context) (any, error) {
		lines, loadErr := load(ctx)
		if loadErr != nil {
			return nil, fmt.Errorf("list match lines: %w", loadErr)
		}
		return Summarize(lines), nil
	})
	if err != nil {
		return Summary{}, err
	}

	summary, ok := value.(Summary)
	if !ok {
		return Summary{}, fmt.Errorf("unexpected cached summary type %T", value)
	}
	return summary, nil
}
