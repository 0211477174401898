package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/valmyr/matchops/internal/domain/player"
	"github.com/valmyr/matchops/internal/domain/playerstat"
	"github.com/valmyr/matchops/internal/domain/team"
	"github.com/valmyr/matchops/internal/platform/cache"
	"github.com/valmyr/matchops/internal/platform/logging"
)

func TestRatingGoldenValues(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name                            string
		kills, deaths, assists, rounds int
		want                            float64
	}{
		{"strong performance", 20, 15, 5, 26, 1.00},
		{"below average", 10, 20, 4, 30, 0.55},
		{"zero impact", 0, 24, 0, 24, 0.00},
		{"no rounds", 10, 5, 3, 0, 0.00},
	}

	for _, tc := range cases {
		if got := Rating(tc.kills, tc.deaths, tc.assists, tc.rounds); got != tc.want {
			t.Fatalf("%s: Rating(%d,%d,%d,%d)=%v want=%v",
				tc.name, tc.kills, tc.deaths, tc.assists, tc.rounds, got, tc.want)
		}
	}
}

func TestSummarizeEmptyInput(t *testing.T) {
	t.Parallel()

	got := Summarize(nil)
	if got.Matches != 0 || got.WinRate != 0 || got.Rating != 0 {
		t.Fatalf("empty summary: got=%+v", got)
	}
	if len(got.Maps) != 0 {
		t.Fatalf("empty summary maps: got=%+v", got.Maps)
	}
}

func TestSummarizeAggregatesAndBreaksDownByMap(t *testing.T) {
	t.Parallel()

	now := time.Now().UTC()
	lines := []playerstat.MatchLine{
		{MatchID: 1, MapName: "de_mirage", PlayedAt: now, Won: true, Kills: 20, Deaths: 15, Assists: 5, Damage: 2000, Rounds: 26},
		{MatchID: 2, MapName: "de_nuke", PlayedAt: now, Won: false, Kills: 10, Deaths: 20, Assists: 4, Damage: 1500, Rounds: 30},
		{MatchID: 3, MapName: "de_mirage", PlayedAt: now, Won: true, Kills: 25, Deaths: 10, Assists: 8, Damage: 2300, Rounds: 24},
	}

	got := Summarize(lines)

	if got.Matches != 3 || got.Wins != 2 || got.Losses != 1 {
		t.Fatalf("counts: got=%+v", got)
	}
	if got.WinRate != 0.67 {
		t.Fatalf("win rate: got=%v want=0.67", got.WinRate)
	}
	if got.Kills != 55 || got.Deaths != 45 || got.Assists != 17 || got.Damage != 5800 || got.Rounds != 80 {
		t.Fatalf("totals: got=%+v", got)
	}
	if want := Rating(55, 45, 17, 80); got.Rating != want {
		t.Fatalf("rating: got=%v want=%v", got.Rating, want)
	}

	if len(got.Maps) != 2 {
		t.Fatalf("map breakdown: got=%+v", got.Maps)
	}
	// Sorted by map name ascending.
	mirage, nuke := got.Maps[0], got.Maps[1]
	if mirage.MapName != "de_mirage" || nuke.MapName != "de_nuke" {
		t.Fatalf("map order: got=%s,%s", mirage.MapName, nuke.MapName)
	}
	if mirage.Matches != 2 || mirage.Wins != 2 || mirage.WinRate != 1.00 {
		t.Fatalf("mirage breakdown: got=%+v", mirage)
	}
	if nuke.Matches != 1 || nuke.Wins != 0 || nuke.WinRate != 0.00 {
		t.Fatalf("nuke breakdown: got=%+v", nuke)
	}
	if want := Rating(45, 25, 13, 50); mirage.Rating != want {
		t.Fatalf("mirage rating: got=%v want=%v", mirage.Rating, want)
	}
}

func newStatsFixture(lines []playerstat.MatchLine) *StatsService {
	stats := &stubStatRepo{lines: lines}
	players := &stubPlayerRepo{players: map[int64]player.Player{
		10: {ID: 10, Nickname: "alpha"},
	}}
	teams := &stubTeamRepo{teams: map[int64]team.Team{
		1: {ID: 1, GameID: 1, Name: "Team One"},
	}}
	return NewStatsService(stats, players, teams, cache.NewStore(time.Minute), logging.NewNop())
}

func TestPlayerSummary(t *testing.T) {
	t.Parallel()

	svc := newStatsFixture([]playerstat.MatchLine{
		{MatchID: 1, MapName: "de_mirage", Won: true, Kills: 20, Deaths: 15, Assists: 5, Rounds: 26},
	})

	got, err := svc.PlayerSummary(context.Background(), 10)
	if err != nil {
		t.Fatalf("PlayerSummary: %v", err)
	}
	if got.Matches != 1 || got.Rating != 1.00 {
		t.Fatalf("summary: got=%+v", got)
	}

	if _, err := svc.PlayerSummary(context.Background(), 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown player: got=%v want=%v", err, ErrNotFound)
	}
	if _, err := svc.PlayerSummary(context.Background(), 0); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("zero id: got=%v want=%v", err, ErrInvalidInput)
	}
}

func TestTeamSummaryZeroMatches(t *testing.T) {
	t.Parallel()

	svc := newStatsFixture(nil)

	got, err := svc.TeamSummary(context.Background(), 1)
	if err != nil {
		t.Fatalf("TeamSummary: %v", err)
	}
	if got.Matches != 0 || got.WinRate != 0 || got.Rating != 0 {
		t.Fatalf("zero-match summary: got=%+v", got)
	}

	if _, err := svc.TeamSummary(context.Background(), 99); !errors.Is(err, ErrNotFound) {
		t.Fatalf("unknown team: got=%v want=%v", err, ErrNotFound)
	}
}
