package engine

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"

	"github.com/celerix-dev/cadastro/pkg/schema"
)

// MemStore is a thread-safe store of validated batches.
//
// Disk writes run in the background. Every Put and Delete bumps a per-ID
// generation, and a background write only touches disk while its generation
// is still the latest one, so the file always ends up matching the last call.
type MemStore struct {
	mu        sync.RWMutex
	data      map[string]schema.Batch
	gens      map[string]uint64
	persister *Persistence
	log       zerolog.Logger
	wg        sync.WaitGroup
	diskMu    sync.Mutex
}

// NewMemStore initializes a store.
// It accepts existing data (from LoadAll) and an optional persister.
func NewMemStore(initialData map[string]schema.Batch, p *Persistence, log zerolog.Logger) *MemStore {
	if initialData == nil {
		initialData = make(map[string]schema.Batch)
	}
	return &MemStore{
		data:      initialData,
		gens:      make(map[string]uint64),
		persister: p,
		log:       log,
	}
}

// Wait waits for all background persistence tasks to complete.
func (m *MemStore) Wait() {
	m.wg.Wait()
}

func (m *MemStore) Put(b schema.Batch) error {
	b = copyBatch(b)

	m.mu.Lock()
	m.data[b.ID] = b
	gen := m.bump(b.ID)
	m.mu.Unlock()

	m.persist(b.ID, gen, func() error { return m.persister.SaveBatch(b) }, "persist batch")
	return nil
}

func (m *MemStore) Get(id string) (schema.Batch, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	b, ok := m.data[id]
	if !ok {
		return schema.Batch{}, ErrBatchNotFound
	}
	return copyBatch(b), nil
}

// List returns batch IDs, oldest first.
func (m *MemStore) List() ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]string, 0, len(m.data))
	for id := range m.data {
		list = append(list, id)
	}
	sort.Slice(list, func(i, j int) bool {
		a, b := m.data[list[i]], m.data[list[j]]
		if a.CreatedAt.Equal(b.CreatedAt) {
			return a.ID < b.ID
		}
		return a.CreatedAt.Before(b.CreatedAt)
	})
	return list, nil
}

func (m *MemStore) Delete(id string) error {
	m.mu.Lock()
	_, ok := m.data[id]
	if !ok {
		m.mu.Unlock()
		return ErrBatchNotFound
	}
	delete(m.data, id)
	gen := m.bump(id)
	m.mu.Unlock()

	m.persist(id, gen, func() error { return m.persister.RemoveBatch(id) }, "remove batch file")
	return nil
}

// bump advances the generation of id. Callers hold m.mu.
func (m *MemStore) bump(id string) uint64 {
	m.gens[id]++
	return m.gens[id]
}

// persist runs op in the background unless a newer Put or Delete for the same
// ID has been issued by the time it gets the disk lock. The generation check
// and the write happen under diskMu, so a newer op always lands after an
// older one.
func (m *MemStore) persist(id string, gen uint64, op func() error, msg string) {
	if m.persister == nil {
		return
	}
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()

		m.diskMu.Lock()
		defer m.diskMu.Unlock()

		m.mu.RLock()
		stale := m.gens[id] != gen
		m.mu.RUnlock()
		if stale {
			return
		}
		if err := op(); err != nil {
			m.log.Error().Err(err).Str("batch", id).Msg(msg)
		}
	}()
}

// copyBatch detaches the record and summary slices/maps so callers cannot
// mutate stored state.
func copyBatch(b schema.Batch) schema.Batch {
	recs := make([]schema.ValidatedRecord, len(b.Records))
	for i, r := range b.Records {
		if r.Reasons != nil {
			r.Reasons = append([]string(nil), r.Reasons...)
		}
		recs[i] = r
	}
	b.Records = recs

	if b.Summary.FieldFailures != nil {
		ff := make(map[string]int, len(b.Summary.FieldFailures))
		for k, v := range b.Summary.FieldFailures {
			ff[k] = v
		}
		b.Summary.FieldFailures = ff
	}
	return b
}
