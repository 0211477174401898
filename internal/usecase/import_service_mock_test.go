package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/valmyr/matchops/internal/domain/match"
	"github.com/valmyr/matchops/internal/domain/player"
	"github.com/valmyr/matchops/internal/domain/team"
	"github.com/valmyr/matchops/internal/platform/cache"
	"github.com/valmyr/matchops/internal/platform/logging"
)

type mockImporter struct {
	mock.Mock
}

func (m *mockImporter) Source() match.Source {
	args := m.Called()
	return args.Get(0).(match.Source)
}

func (m *mockImporter) Import(ctx context.Context, externalID string) (NormalizedMatch, error) {
	args := m.Called(ctx, externalID)
	return args.Get(0).(NormalizedMatch), args.Error(1)
}

func TestImportBatchNotFoundIsPermanentUsingMock(t *testing.T) {
	t.Parallel()

	importer := &mockImporter{}
	importer.On("Source").Return(match.SourceRiot)
	importer.
		On("Import", mock.Anything, "NA1_gone").
		Return(NormalizedMatch{}, ErrExternalMatchNotFound).
		Once()

	matches := &stubMatchRepo{existing: make(map[string]int64)}
	players := &stubPlayerRepo{players: map[int64]player.Player{}}
	teams := &stubTeamRepo{teams: map[int64]team.Team{}}
	roster := NewRosterService(&stubTransferRepo{}, teams, players, logging.NewNop())
	statsSvc := NewStatsService(&stubStatRepo{}, players, teams, cache.NewStore(time.Minute), logging.NewNop())

	svc := NewImportService(
		NewImporterSet(importer),
		matches,
		players,
		roster,
		statsSvc,
		nil,
		logging.NewNop(),
		1,
	)

	report, err := svc.ImportBatch(context.Background(), ImportBatchInput{
		Source:       match.SourceRiot,
		TournamentID: 7,
		GameID:       1,
		ExternalIDs:  []string{"NA1_gone"},
	})
	if err != nil {
		t.Fatalf("import batch: %v", err)
	}
	if report.Failed != 1 || len(report.Items) != 1 {
		t.Fatalf("unexpected report: %+v", report)
	}
	item := report.Items[0]
	if item.Status != ImportStatusFailed || item.Reason != ImportReasonNotFound {
		t.Fatalf("unexpected item: %+v", item)
	}

	importer.AssertExpectations(t)
}
