package identity

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/avatarworks/gateway/internal/models"
)

func TestIndexAppendVisibility(t *testing.T) {
	idx := NewIndex()
	if idx.Len() != 0 {
		t.Fatalf("fresh index len = %d", idx.Len())
	}

	a := models.Identity{ID: uuid.New(), DisplayName: "a"}
	b := models.Identity{ID: uuid.New(), DisplayName: "b"}
	idx.Append(a)
	idx.Append(b)

	snap := idx.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("snapshot len = %d, want 2", len(snap))
	}
	if snap[0].ID != a.ID || snap[1].ID != b.ID {
		t.Fatal("snapshot not in insertion order")
	}
}

func TestIndexSnapshotIsStable(t *testing.T) {
	idx := NewIndex()
	idx.Append(models.Identity{ID: uuid.New(), DisplayName: "a"})

	snap := idx.Snapshot()
	idx.Append(models.Identity{ID: uuid.New(), DisplayName: "b"})

	if len(snap) != 1 {
		t.Fatalf("earlier snapshot grew to %d entries", len(snap))
	}
	if idx.Len() != 2 {
		t.Fatalf("index len = %d, want 2", idx.Len())
	}
}

func TestIndexReload(t *testing.T) {
	store := &fakeStore{}
	for _, name := range []string{"a", "b", "c"} {
		if _, err := store.Create(context.Background(), name, []float32{1}, ""); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	idx := NewIndex()
	if err := idx.Reload(context.Background(), store); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if idx.Len() != 3 {
		t.Fatalf("index len = %d, want 3", idx.Len())
	}
}

func TestIndexConcurrentReadersAndWriter(t *testing.T) {
	idx := NewIndex()

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				snap := idx.Snapshot()
				// Snapshots must always be prefix-consistent.
				for j, identity := range snap {
					if identity.DisplayName == "" {
						t.Errorf("entry %d has empty name", j)
						return
					}
				}
			}
		}()
	}

	for i := 0; i < 200; i++ {
		idx.Append(models.Identity{ID: uuid.New(), DisplayName: "n"})
	}
	close(stop)
	wg.Wait()

	if idx.Len() != 200 {
		t.Fatalf("index len = %d, want 200", idx.Len())
	}
}
