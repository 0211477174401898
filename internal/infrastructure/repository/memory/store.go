package memory

import (
	"sync"

	"github.com/valmyr/matchops/internal/domain/match"
	"github.com/valmyr/matchops/internal/domain/player"
	"github.com/valmyr/matchops/internal/domain/playerstat"
	"github.com/valmyr/matchops/internal/domain/series"
	"github.com/valmyr/matchops/internal/domain/team"
	"github.com/valmyr/matchops/internal/domain/transfer"
)

// Store is the shared in-memory dataset behind the memory repositories.
// It backs local development and tests when no database is configured;
// the repositories over it enforce the same contracts as the postgres ones,
// including import idempotency and append-only transfers.
type Store struct {
	mu sync.RWMutex

	matches        map[int64]match.Match
	matchExternals map[string]int64 // source|external_id -> match id
	statRows       map[int64][]playerstat.Row
	series         map[int64]series.Series
	transfers      []transfer.Transfer
	players        map[int64]player.Player
	teams          map[int64]team.Team

	nextMatchID    int64
	nextSeriesID   int64
	nextRowID      int64
	nextTransferID int64
}

func NewStore() *Store {
	return &Store{
		matches:        make(map[int64]match.Match),
		matchExternals: make(map[string]int64),
		statRows:       make(map[int64][]playerstat.Row),
		series:         make(map[int64]series.Series),
		players:        make(map[int64]player.Player),
		teams:          make(map[int64]team.Team),
	}
}

func externalKey(source match.Source, externalID string) string {
	return string(source) + "|" + externalID
}

// AddPlayer and AddTeam are for seeding and tests.
func (s *Store) AddPlayer(p player.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[p.ID] = p
}

func (s *Store) AddTeam(t team.Team) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.teams[t.ID] = t
}
