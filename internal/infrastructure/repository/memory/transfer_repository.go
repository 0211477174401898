package memory

import (
	"context"
	"sort"
	"time"

	"github.com/valmyr/matchops/internal/domain/transfer"
)

type TransferRepository struct {
	store *Store
}

func NewTransferRepository(store *Store) *TransferRepository {
	return &TransferRepository{store: store}
}

func (r *TransferRepository) Append(_ context.Context, entry transfer.Transfer) (transfer.Transfer, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextTransferID++
	entry.ID = s.nextTransferID
	if entry.RecordedAt.IsZero() {
		entry.RecordedAt = time.Now().UTC()
	}
	s.transfers = append(s.transfers, entry)
	return entry, nil
}

func (r *TransferRepository) ListByGameUntil(_ context.Context, gameID int64, until time.Time) ([]transfer.Transfer, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]transfer.Transfer, 0, len(s.transfers))
	for _, entry := range s.transfers {
		if entry.GameID == gameID && !entry.EffectiveAt.After(until) {
			out = append(out, entry)
		}
	}
	sortTransfers(out)
	return out, nil
}

func (r *TransferRepository) ListByPlayer(_ context.Context, playerID, gameID int64) ([]transfer.Transfer, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]transfer.Transfer, 0, 8)
	for _, entry := range s.transfers {
		if entry.PlayerID == playerID && entry.GameID == gameID {
			out = append(out, entry)
		}
	}
	sortTransfers(out)
	return out, nil
}

func sortTransfers(entries []transfer.Transfer) {
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].EffectiveAt.Equal(entries[j].EffectiveAt) {
			return entries[i].EffectiveAt.Before(entries[j].EffectiveAt)
		}
		return entries[i].ID < entries[j].ID
	})
}
