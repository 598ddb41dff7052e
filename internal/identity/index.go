package identity

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/avatarworks/gateway/internal/models"
)

// Index is the in-memory, append-only mirror of the identity store.
// Readers take an immutable snapshot without locking; Append is
// single-writer under a mutex and publishes a fresh slice, so a resolve
// racing an enroll sees either the old or the new snapshot, never a
// half-written one.
type Index struct {
	mu       sync.Mutex // serializes Append and Reload
	snapshot atomic.Pointer[[]models.Identity]
}

func NewIndex() *Index {
	idx := &Index{}
	empty := []models.Identity{}
	idx.snapshot.Store(&empty)
	return idx
}

// Reload replaces the mirror with the store's current contents. Called at
// process start; identities are insertion-ordered by ListAll.
func (idx *Index) Reload(ctx context.Context, store Store) error {
	identities, err := store.ListAll(ctx)
	if err != nil {
		return err
	}
	if identities == nil {
		identities = []models.Identity{}
	}

	idx.mu.Lock()
	idx.snapshot.Store(&identities)
	idx.mu.Unlock()
	return nil
}

// Append publishes a snapshot extended with the newly enrolled identity.
func (idx *Index) Append(identity models.Identity) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	old := *idx.snapshot.Load()
	next := make([]models.Identity, len(old)+1)
	copy(next, old)
	next[len(old)] = identity
	idx.snapshot.Store(&next)
}

// Snapshot returns the current mirror in insertion order. Callers must
// not mutate it.
func (idx *Index) Snapshot() []models.Identity {
	return *idx.snapshot.Load()
}

func (idx *Index) Len() int {
	return len(idx.Snapshot())
}
