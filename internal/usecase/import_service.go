package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"

	"github.com/valmyr/matchops/internal/domain/match"
	"github.com/valmyr/matchops/internal/domain/player"
	"github.com/valmyr/matchops/internal/domain/playerstat"
	"github.com/valmyr/matchops/internal/platform/id"
	"github.com/valmyr/matchops/internal/platform/logging"
)

const (
	ImportStatusImported = "imported"
	ImportStatusSkipped  = "skipped"
	ImportStatusFailed   = "failed"
)

// Failure reasons carried on batch items. not_found is permanent; transient
// and persist_failed are retryable by resubmitting the id.
const (
	ImportReasonAlreadyImported = "already_imported"
	ImportReasonNotFound        = "not_found"
	ImportReasonTransient       = "transient"
	ImportReasonPersistFailed   = "persist_failed"
	ImportReasonCanceled        = "canceled"
)

const defaultImportWorkers = 4

type ImportBatchInput struct {
	Source       match.Source
	TournamentID int64
	GameID       int64
	ExternalIDs  []string
}

type ImportItem struct {
	ExternalID string `json:"externalId"`
	Status     string `json:"status"`
	Reason     string `json:"reason,omitempty"`
	Message    string `json:"message,omitempty"`
	MatchID    int64  `json:"matchId,omitempty"`
}

// BatchReport is the per-batch outcome. A batch never fails as a whole:
// each id succeeds, skips or fails independently.
type BatchReport struct {
	BatchID     string       `json:"batchId"`
	Source      match.Source `json:"source"`
	Requested   int          `json:"requested"`
	Imported    int          `json:"imported"`
	Skipped     int          `json:"skipped"`
	Failed      int          `json:"failed"`
	WorkerCount int          `json:"workerCount"`
	Items       []ImportItem `json:"items"`
}

// ImportService coordinates batch ingestion: dispatch to the right importer,
// idempotency against already-imported ids, player linking, roster-based team
// resolution and atomic persistence per match.
type ImportService struct {
	importers  ImporterSet
	matches    match.Repository
	players    player.Repository
	roster     *RosterService
	stats      *StatsService
	ids        id.Generator
	logger     *logging.Logger
	maxWorkers int
}

func NewImportService(
	importers ImporterSet,
	matches match.Repository,
	players player.Repository,
	roster *RosterService,
	stats *StatsService,
	ids id.Generator,
	logger *logging.Logger,
	maxWorkers int,
) *ImportService {
	if logger == nil {
		logger = logging.Default()
	}
	if maxWorkers < 1 {
		maxWorkers = defaultImportWorkers
	}
	if ids == nil {
		ids = id.NewRandomGenerator()
	}
	return &ImportService{
		importers:  importers,
		matches:    matches,
		players:    players,
		roster:     roster,
		stats:      stats,
		ids:        ids,
		logger:     logger,
		maxWorkers: maxWorkers,
	}
}

// ImportBatch ingests the given external ids concurrently. Item order in the
// report mirrors the request. Cancellation stops scheduling new ids; ids not
// yet attempted are reported as canceled, in-flight ids run to completion.
func (s *ImportService) ImportBatch(ctx context.Context, input ImportBatchInput) (BatchReport, error) {
	ctx, span := startUsecaseSpan(ctx, "ImportService.ImportBatch")
	defer span.End()

	importer, ok := s.importers.For(input.Source)
	if !ok {
		return BatchReport{}, fmt.Errorf("%w: no importer for source %q", ErrInvalidInput, input.Source)
	}
	if input.TournamentID <= 0 {
		return BatchReport{}, fmt.Errorf("%w: tournament id is required", ErrInvalidInput)
	}
	if input.GameID <= 0 {
		return BatchReport{}, fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}

	externalIDs := dedupeIDs(input.ExternalIDs)
	if len(externalIDs) == 0 {
		return BatchReport{}, fmt.Errorf("%w: at least one external id is required", ErrInvalidInput)
	}

	batchID, err := s.ids.NewID()
	if err != nil {
		return BatchReport{}, fmt.Errorf("generate batch id: %w", err)
	}

	workers := s.maxWorkers
	if workers > len(externalIDs) {
		workers = len(externalIDs)
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		return BatchReport{}, fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		wg       sync.WaitGroup
		imported atomic.Int64
		skipped  atomic.Int64
		failed   atomic.Int64
	)
	items := make([]ImportItem, len(externalIDs))

	for i, externalID := range externalIDs {
		i, externalID := i, externalID

		if ctx.Err() != nil {
			items[i] = ImportItem{
				ExternalID: externalID,
				Status:     ImportStatusFailed,
				Reason:     ImportReasonCanceled,
				Message:    ctx.Err().Error(),
			}
			failed.Add(1)
			continue
		}

		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()

			item := s.importOne(ctx, importer, input, externalID)
			items[i] = item
			switch item.Status {
			case ImportStatusImported:
				imported.Add(1)
			case ImportStatusSkipped:
				skipped.Add(1)
			default:
				failed.Add(1)
			}
		})
		if submitErr != nil {
			wg.Done()
			items[i] = ImportItem{
				ExternalID: externalID,
				Status:     ImportStatusFailed,
				Reason:     ImportReasonTransient,
				Message:    submitErr.Error(),
			}
			failed.Add(1)
		}
	}
	wg.Wait()

	report := BatchReport{
		BatchID:     batchID,
		Source:      input.Source,
		Requested:   len(externalIDs),
		Imported:    int(imported.Load()),
		Skipped:     int(skipped.Load()),
		Failed:      int(failed.Load()),
		WorkerCount: workers,
		Items:       items,
	}

	s.logger.InfoContext(ctx, "import batch finished",
		"batch_id", report.BatchID,
		"source", report.Source,
		"requested", report.Requested,
		"imported", report.Imported,
		"skipped", report.Skipped,
		"failed", report.Failed,
	)
	return report, nil
}

func (s *ImportService) importOne(ctx context.Context, importer Importer, input ImportBatchInput, externalID string) ImportItem {
	item := ImportItem{ExternalID: externalID}

	exists, err := s.matches.ExistsByExternal(ctx, input.Source, externalID)
	if err != nil {
		item.Status = ImportStatusFailed
		item.Reason = ImportReasonPersistFailed
		item.Message = err.Error()
		return item
	}
	if exists {
		item.Status = ImportStatusSkipped
		item.Reason = ImportReasonAlreadyImported
		return item
	}

	normalized, err := importer.Import(ctx, externalID)
	if err != nil {
		item.Status = ImportStatusFailed
		item.Message = err.Error()
		if errors.Is(err, ErrExternalMatchNotFound) {
			item.Reason = ImportReasonNotFound
		} else {
			item.Reason = ImportReasonTransient
		}
		return item
	}

	unit, linkedPlayers, err := s.buildImportUnit(ctx, input, normalized)
	if err != nil {
		item.Status = ImportStatusFailed
		item.Reason = ImportReasonPersistFailed
		item.Message = err.Error()
		return item
	}

	created, err := s.matches.CreateImported(ctx, unit)
	if err != nil {
		if errors.Is(err, match.ErrDuplicateExternalID) {
			// Lost the race against a concurrent import of the same id.
			item.Status = ImportStatusSkipped
			item.Reason = ImportReasonAlreadyImported
			return item
		}
		item.Status = ImportStatusFailed
		item.Reason = ImportReasonPersistFailed
		item.Message = err.Error()
		return item
	}

	if s.stats != nil {
		for _, playerID := range linkedPlayers {
			s.stats.InvalidatePlayer(ctx, playerID)
		}
		if unit.TeamAID > 0 {
			s.stats.InvalidateTeam(ctx, unit.TeamAID)
		}
		if unit.TeamBID > 0 {
			s.stats.InvalidateTeam(ctx, unit.TeamBID)
		}
	}

	s.logger.DebugContext(ctx, "match imported",
		"source", input.Source,
		"external_id", externalID,
		"match_id", created.ID,
	)
	item.Status = ImportStatusImported
	item.MatchID = created.ID
	return item
}

// buildImportUnit links upstream participants to internal players and
// resolves each side to an internal team by majority vote over the linked
// players' ledger assignments at match time. Unlinked players and unresolved
// sides are kept: rows land with zero ids and can be claimed later.
func (s *ImportService) buildImportUnit(ctx context.Context, input ImportBatchInput, normalized NormalizedMatch) (match.ImportUnit, []int64, error) {
	assignments, err := s.roster.AssignmentsAt(ctx, input.GameID, normalized.PlayedAt)
	if err != nil {
		return match.ImportUnit{}, nil, fmt.Errorf("resolve assignments: %w", err)
	}

	unit := match.ImportUnit{
		Match: match.Match{
			Source:     normalized.Source,
			ExternalID: normalized.ExternalID,
			MapName:    normalized.MapName,
			PlayedAt:   normalized.PlayedAt.UTC(),
			Completed:  normalized.Completed,
		},
		TournamentID: input.TournamentID,
	}

	linked := make([]int64, 0, 10)
	sideTeams := [2]int64{}

	for sideIdx, side := range normalized.Teams {
		votes := make(map[int64]int)

		for _, participant := range side.Players {
			row := playerstat.Row{
				ExternalID:   participant.ExternalID,
				ExternalName: participant.Name,
				Side:         side.Key,
				Kills:        participant.Kills,
				Deaths:       participant.Deaths,
				Assists:      participant.Assists,
				Damage:       participant.Damage,
				Rounds:       participant.Rounds,
				Won:          side.Won,
			}

			p, ok, findErr := s.findPlayer(ctx, input.Source, participant.ExternalID)
			if findErr != nil {
				return match.ImportUnit{}, nil, fmt.Errorf("link participant %s: %w", participant.ExternalID, findErr)
			}
			if ok {
				row.PlayerID = p.ID
				linked = append(linked, p.ID)
				if assignment, has := assignments[p.ID]; has && !assignment.IsDeparture() {
					votes[assignment.TeamID]++
				}
			}

			unit.Rows = append(unit.Rows, row)
		}

		sideTeams[sideIdx] = majorityTeam(votes)
	}

	// Both sides resolving to the same team means the ledger is inconsistent
	// with the match; drop the resolution rather than guessing.
	if sideTeams[0] != 0 && sideTeams[0] == sideTeams[1] {
		s.logger.WarnContext(ctx, "both sides resolved to the same team, leaving match unlinked",
			"external_id", normalized.ExternalID,
			"team_id", sideTeams[0],
		)
		sideTeams = [2]int64{}
	}

	unit.TeamAID = sideTeams[0]
	unit.TeamBID = sideTeams[1]

	for sideIdx, side := range normalized.Teams {
		teamID := sideTeams[sideIdx]
		if teamID == 0 {
			continue
		}
		if side.Won {
			unit.Match.WinnerTeam = teamID
		}
		for i := range unit.Rows {
			if unit.Rows[i].Side == side.Key {
				unit.Rows[i].TeamID = teamID
			}
		}
	}

	return unit, linked, nil
}

func (s *ImportService) findPlayer(ctx context.Context, source match.Source, externalID string) (player.Player, bool, error) {
	if externalID == "" {
		return player.Player{}, false, nil
	}
	switch source {
	case match.SourceRiot:
		return s.players.FindByRiotPUUID(ctx, externalID)
	case match.SourceFaceit:
		return s.players.FindByFaceitID(ctx, externalID)
	default:
		return player.Player{}, false, nil
	}
}

// majorityTeam picks the team with the most votes; ties resolve to no team.
func majorityTeam(votes map[int64]int) int64 {
	best, bestCount, tied := int64(0), 0, false
	for teamID, count := range votes {
		switch {
		case count > bestCount:
			best, bestCount, tied = teamID, count, false
		case count == bestCount:
			tied = true
		}
	}
	if tied || bestCount == 0 {
		return 0
	}
	return best
}

func dedupeIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, raw := range ids {
		id := strings.TrimSpace(raw)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
