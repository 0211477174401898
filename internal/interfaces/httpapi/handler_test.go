package httpapi

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sonic "github.com/bytedance/sonic"

	"github.com/valmyr/matchops/internal/domain/match"
	"github.com/valmyr/matchops/internal/domain/player"
	"github.com/valmyr/matchops/internal/domain/team"
	"github.com/valmyr/matchops/internal/infrastructure/repository/memory"
	"github.com/valmyr/matchops/internal/platform/cache"
	"github.com/valmyr/matchops/internal/platform/logging"
	"github.com/valmyr/matchops/internal/usecase"
)

const testJobToken = "test-job-token"

type fixedImporter struct {
	payload usecase.NormalizedMatch
}

func (f *fixedImporter) Source() match.Source { return match.SourceFaceit }

func (f *fixedImporter) Import(_ context.Context, externalID string) (usecase.NormalizedMatch, error) {
	payload := f.payload
	payload.ExternalID = externalID
	return payload, nil
}

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	store := memory.NewStore()
	store.AddTeam(team.Team{ID: 1, GameID: 1, Name: "Meridian", Tag: "MER"})
	store.AddTeam(team.Team{ID: 2, GameID: 1, Name: "Northlight", Tag: "NL"})
	store.AddPlayer(player.Player{ID: 10, Nickname: "alpha", FaceitID: "fp-10"})
	store.AddPlayer(player.Player{ID: 11, Nickname: "bravo", FaceitID: "fp-11"})

	matches := memory.NewMatchRepository(store)
	statRows := memory.NewStatRepository(store)
	transfers := memory.NewTransferRepository(store)
	players := memory.NewPlayerRepository(store)
	teams := memory.NewTeamRepository(store)
	seriesRepo := memory.NewSeriesRepository(store)

	importer := &fixedImporter{payload: usecase.NormalizedMatch{
		Source:    match.SourceFaceit,
		MapName:   "de_mirage",
		PlayedAt:  time.Date(2024, 5, 10, 18, 0, 0, 0, time.UTC),
		Completed: true,
		Teams: [2]usecase.NormalizedTeam{
			{Key: "faction1", Won: true, Players: []usecase.NormalizedPlayer{
				{ExternalID: "fp-10", Name: "alpha", Kills: 20, Deaths: 15, Assists: 5, Damage: 2000, Rounds: 26},
			}},
			{Key: "faction2", Players: []usecase.NormalizedPlayer{
				{ExternalID: "fp-11", Name: "bravo", Kills: 15, Deaths: 20, Assists: 3, Damage: 1700, Rounds: 26},
			}},
		},
	}}

	rosterService := usecase.NewRosterService(transfers, teams, players, logging.NewNop())
	statsService := usecase.NewStatsService(statRows, players, teams, cache.NewStore(time.Minute), logging.NewNop())
	importService := usecase.NewImportService(
		usecase.NewImporterSet(importer), matches, players, rosterService, statsService,
		nil, logging.NewNop(), 2,
	)
	versionService := usecase.NewVersionService(staticVersions{"14.3.1", "14.2.1"}, cache.NewStore(time.Minute), logging.NewNop())

	handler := NewHandler(
		importService, rosterService, statsService, versionService,
		matches, statRows, seriesRepo, transfers,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	)
	return NewRouter(handler, slog.New(slog.NewTextHandler(io.Discard, nil)), nil, testJobToken)
}

type staticVersions []string

func (s staticVersions) ListAssetVersions(context.Context) ([]string, error) {
	return s, nil
}

func doJSONRequest(t *testing.T, router http.Handler, method, target, body string, headers map[string]string) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var envelope map[string]any
	if err := sonic.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
	return rec, envelope
}

func TestImportBatchEndToEnd(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	auth := map[string]string{"X-Internal-Job-Token": testJobToken}

	// Put both players on rosters before the match date.
	for _, body := range []string{
		`{"playerId":10,"teamId":1,"gameId":1,"effectiveAt":"2024-01-01"}`,
		`{"playerId":11,"teamId":2,"gameId":1,"effectiveAt":"2024-01-01"}`,
	} {
		rec, _ := doJSONRequest(t, router, http.MethodPost, "/v1/transfers", body, auth)
		if rec.Code != http.StatusCreated {
			t.Fatalf("record transfer: status=%d body=%s", rec.Code, rec.Body.String())
		}
	}

	rec, envelope := doJSONRequest(t, router, http.MethodPost, "/v1/internal/jobs/import-batch",
		`{"source":"faceit","tournamentId":7,"gameId":1,"externalIds":["1-abc"]}`, auth)
	if rec.Code != http.StatusOK {
		t.Fatalf("import batch: status=%d body=%s", rec.Code, rec.Body.String())
	}
	data := envelope["data"].(map[string]any)
	if data["imported"].(float64) != 1 {
		t.Fatalf("import report: %v", data)
	}

	// Idempotent: re-running the same batch skips.
	rec, envelope = doJSONRequest(t, router, http.MethodPost, "/v1/internal/jobs/import-batch",
		`{"source":"faceit","tournamentId":7,"gameId":1,"externalIds":["1-abc"]}`, auth)
	if rec.Code != http.StatusOK {
		t.Fatalf("repeat import: status=%d", rec.Code)
	}
	data = envelope["data"].(map[string]any)
	if data["skipped"].(float64) != 1 || data["imported"].(float64) != 0 {
		t.Fatalf("repeat import report: %v", data)
	}

	// The imported rows feed the aggregates.
	rec, envelope = doJSONRequest(t, router, http.MethodGet, "/v1/players/10/stats", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("player stats: status=%d body=%s", rec.Code, rec.Body.String())
	}
	stats := envelope["data"].(map[string]any)
	if stats["matches"].(float64) != 1 || stats["rating"].(float64) != 1.00 {
		t.Fatalf("player stats: %v", stats)
	}

	rec, envelope = doJSONRequest(t, router, http.MethodGet, "/v1/teams/1/stats", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("team stats: status=%d", rec.Code)
	}
	stats = envelope["data"].(map[string]any)
	if stats["winRate"].(float64) != 1.00 {
		t.Fatalf("team stats: %v", stats)
	}
}

func TestImportBatchRequiresToken(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	rec, _ := doJSONRequest(t, router, http.MethodPost, "/v1/internal/jobs/import-batch",
		`{"source":"faceit","tournamentId":7,"gameId":1,"externalIds":["1-abc"]}`, nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status: got=%d want=%d", rec.Code, http.StatusUnauthorized)
	}
}

func TestGetTeamRosterAsOf(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	auth := map[string]string{"X-Internal-Job-Token": testJobToken}

	for _, body := range []string{
		`{"playerId":10,"teamId":1,"gameId":1,"effectiveAt":"2024-01-01"}`,
		`{"playerId":10,"teamId":2,"gameId":1,"effectiveAt":"2024-06-01"}`,
	} {
		rec, _ := doJSONRequest(t, router, http.MethodPost, "/v1/transfers", body, auth)
		if rec.Code != http.StatusCreated {
			t.Fatalf("record transfer: status=%d", rec.Code)
		}
	}

	rec, envelope := doJSONRequest(t, router, http.MethodGet, "/v1/teams/1/roster?gameId=1&at=2024-03-01", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("roster: status=%d body=%s", rec.Code, rec.Body.String())
	}
	members := envelope["data"].(map[string]any)["members"].([]any)
	if len(members) != 1 {
		t.Fatalf("roster at 2024-03-01: %v", members)
	}

	rec, envelope = doJSONRequest(t, router, http.MethodGet, "/v1/teams/1/roster?gameId=1&at=2024-07-01", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("roster: status=%d", rec.Code)
	}
	members = envelope["data"].(map[string]any)["members"].([]any)
	if len(members) != 0 {
		t.Fatalf("roster after departure: %v", members)
	}

	rec, _ = doJSONRequest(t, router, http.MethodGet, "/v1/teams/99/roster?gameId=1", "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown team: status=%d", rec.Code)
	}
}

func TestResolveVersionEndpoint(t *testing.T) {
	t.Parallel()

	router := newTestRouter(t)
	rec, envelope := doJSONRequest(t, router, http.MethodGet, "/v1/versions/resolve?hint=14.2.876.123", "", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got=%d", rec.Code)
	}
	data := envelope["data"].(map[string]any)
	if data["resolved"].(string) != "14.2.1" {
		t.Fatalf("resolved: %v", data)
	}
}
