package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/valmyr/matchops/internal/domain/match"
	"github.com/valmyr/matchops/internal/domain/playerstat"
)

func importUnit(externalID string, playedAt time.Time) match.ImportUnit {
	return match.ImportUnit{
		Match: match.Match{
			Source:     match.SourceFaceit,
			ExternalID: externalID,
			MapName:    "de_mirage",
			PlayedAt:   playedAt,
			Completed:  true,
			WinnerTeam: 1,
		},
		TeamAID:      1,
		TeamBID:      2,
		TournamentID: 7,
		Rows: []playerstat.Row{
			{PlayerID: 1, TeamID: 1, ExternalID: "x-1", Side: "faction1", Kills: 20, Deaths: 15, Assists: 5, Rounds: 26, Won: true},
			{PlayerID: 2, TeamID: 2, ExternalID: "x-2", Side: "faction2", Kills: 15, Deaths: 20, Assists: 3, Rounds: 26},
		},
	}
}

func TestCreateImportedIsIdempotentPerExternalID(t *testing.T) {
	t.Parallel()

	repo := NewMatchRepository(NewStore())
	ctx := context.Background()
	playedAt := time.Date(2024, 5, 1, 18, 0, 0, 0, time.UTC)

	created, err := repo.CreateImported(ctx, importUnit("1-abc", playedAt))
	if err != nil {
		t.Fatalf("CreateImported: %v", err)
	}
	if created.ID == 0 || created.SeriesID == 0 {
		t.Fatalf("created: got=%+v", created)
	}

	if _, err := repo.CreateImported(ctx, importUnit("1-abc", playedAt)); !errors.Is(err, match.ErrDuplicateExternalID) {
		t.Fatalf("duplicate import: got=%v want=%v", err, match.ErrDuplicateExternalID)
	}

	exists, err := repo.ExistsByExternal(ctx, match.SourceFaceit, "1-abc")
	if err != nil || !exists {
		t.Fatalf("ExistsByExternal: exists=%v err=%v", exists, err)
	}
	exists, err = repo.ExistsByExternal(ctx, match.SourceRiot, "1-abc")
	if err != nil || exists {
		t.Fatalf("existence must be scoped per source: exists=%v err=%v", exists, err)
	}
}

func TestCreateImportedLinksSeriesWithinWindow(t *testing.T) {
	t.Parallel()

	repo := NewMatchRepository(NewStore())
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	first, err := repo.CreateImported(ctx, importUnit("map-1", base))
	if err != nil {
		t.Fatalf("CreateImported: %v", err)
	}

	// Same pair, same tournament, a few hours later: same series.
	second, err := repo.CreateImported(ctx, importUnit("map-2", base.Add(3*time.Hour)))
	if err != nil {
		t.Fatalf("CreateImported: %v", err)
	}
	if second.SeriesID != first.SeriesID {
		t.Fatalf("series link: got=%d want=%d", second.SeriesID, first.SeriesID)
	}

	// Swapped sides still count as the same pair.
	swapped := importUnit("map-3", base.Add(5*time.Hour))
	swapped.TeamAID, swapped.TeamBID = 2, 1
	third, err := repo.CreateImported(ctx, swapped)
	if err != nil {
		t.Fatalf("CreateImported: %v", err)
	}
	if third.SeriesID != first.SeriesID {
		t.Fatalf("unordered pair link: got=%d want=%d", third.SeriesID, first.SeriesID)
	}

	// Outside the window: a new series.
	fourth, err := repo.CreateImported(ctx, importUnit("map-4", base.Add(72*time.Hour)))
	if err != nil {
		t.Fatalf("CreateImported: %v", err)
	}
	if fourth.SeriesID == first.SeriesID {
		t.Fatalf("matches %v apart must not share a series", 72*time.Hour)
	}
}

func TestCreateImportedWithoutResolvedTeamsSkipsSeries(t *testing.T) {
	t.Parallel()

	repo := NewMatchRepository(NewStore())
	unit := importUnit("unlinked-1", time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC))
	unit.TeamAID, unit.TeamBID = 0, 0

	created, err := repo.CreateImported(context.Background(), unit)
	if err != nil {
		t.Fatalf("CreateImported: %v", err)
	}
	if created.SeriesID != 0 {
		t.Fatalf("unresolved teams must not create a series, got=%d", created.SeriesID)
	}
}

func TestStatRepositoryLines(t *testing.T) {
	t.Parallel()

	store := NewStore()
	matches := NewMatchRepository(store)
	stats := NewStatRepository(store)
	ctx := context.Background()
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	if _, err := matches.CreateImported(ctx, importUnit("m-1", base)); err != nil {
		t.Fatalf("CreateImported: %v", err)
	}
	if _, err := matches.CreateImported(ctx, importUnit("m-2", base.Add(time.Hour))); err != nil {
		t.Fatalf("CreateImported: %v", err)
	}

	// Incomplete matches stay out of the aggregates.
	pending := importUnit("m-3", base.Add(2*time.Hour))
	pending.Match.Completed = false
	if _, err := matches.CreateImported(ctx, pending); err != nil {
		t.Fatalf("CreateImported: %v", err)
	}

	playerLines, err := stats.ListLinesByPlayer(ctx, 1)
	if err != nil {
		t.Fatalf("ListLinesByPlayer: %v", err)
	}
	if len(playerLines) != 2 {
		t.Fatalf("player lines: got=%d want=2", len(playerLines))
	}
	if !playerLines[0].PlayedAt.After(playerLines[1].PlayedAt) {
		t.Fatalf("player lines must be newest first: %+v", playerLines)
	}

	teamLines, err := stats.ListLinesByTeam(ctx, 1)
	if err != nil {
		t.Fatalf("ListLinesByTeam: %v", err)
	}
	if len(teamLines) != 2 {
		t.Fatalf("team lines: got=%d want=2", len(teamLines))
	}
	if teamLines[0].Kills != 20 || !teamLines[0].Won {
		t.Fatalf("team line aggregation: got=%+v", teamLines[0])
	}
}
