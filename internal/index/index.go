// Package index keeps one in-memory vector collection per owner. The
// index is a cache over the external note repository: it is rebuilt
// from lifecycle notifications and never persisted here.
package index

import (
	"fmt"
	"sync"

	"github.com/xxxsen/noterag/internal/model"
)

// Entry pairs a note's current embedding with the snapshot used for
// display. There is at most one entry per note id.
type Entry struct {
	NoteID    string
	Embedding model.Embedding
	Snapshot  model.NoteSnapshot
}

// Index holds one owner's entries. Writes are exclusive with each
// other and with reads, so a ranking pass never observes a
// half-written entry.
type Index struct {
	mu      sync.RWMutex
	dim     int
	entries map[string]Entry
}

func New(dim int) *Index {
	return &Index{
		dim:     dim,
		entries: make(map[string]Entry),
	}
}

func (idx *Index) Dimension() int {
	return idx.dim
}

// Upsert inserts or atomically replaces the entry for noteID. A vector
// of the wrong length is a programming defect upstream and is rejected
// loudly rather than masked.
func (idx *Index) Upsert(noteID string, emb model.Embedding, snap model.NoteSnapshot) error {
	if noteID == "" {
		return fmt.Errorf("note id is required")
	}
	if len(emb.Values) != idx.dim {
		return fmt.Errorf("embedding dimension %d does not match index dimension %d", len(emb.Values), idx.dim)
	}
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.entries[noteID] = Entry{NoteID: noteID, Embedding: emb, Snapshot: snap}
	return nil
}

// Remove is idempotent; removing an unknown id is a no-op.
func (idx *Index) Remove(noteID string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	delete(idx.entries, noteID)
}

func (idx *Index) Get(noteID string) (Entry, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	entry, ok := idx.entries[noteID]
	return entry, ok
}

// All returns a point-in-time copy of the current entries. Each call
// reflects the latest state; callers may iterate freely without
// holding any lock.
func (idx *Index) All() []Entry {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	out := make([]Entry, 0, len(idx.entries))
	for _, entry := range idx.entries {
		out = append(out, entry)
	}
	return out
}

func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.entries)
}

// Registry hands out one Index per owner, creating them on demand.
// Owner isolation is structural: an index has no way to reach another
// owner's entries.
type Registry struct {
	mu     sync.Mutex
	dim    int
	owners map[string]*Index
}

func NewRegistry(dim int) *Registry {
	return &Registry{
		dim:    dim,
		owners: make(map[string]*Index),
	}
}

func (r *Registry) Owner(ownerID string) *Index {
	r.mu.Lock()
	defer r.mu.Unlock()
	idx, ok := r.owners[ownerID]
	if !ok {
		idx = New(r.dim)
		r.owners[ownerID] = idx
	}
	return idx
}

// Drop discards an owner's whole partition, e.g. on account deletion.
func (r *Registry) Drop(ownerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.owners, ownerID)
}
