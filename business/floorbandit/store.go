package floorbandit

import (
	"sort"
	"sync"
)

// experimentStore owns the in-memory experiment registry. The outer RWMutex
// guards the map itself; each entry carries its own mutex so updates to one
// segment never block decisions on another.
type experimentStore struct {
	mu      sync.RWMutex
	entries map[string]*storeEntry
}

type storeEntry struct {
	mu  sync.Mutex
	exp *Experiment
}

func newExperimentStore() *experimentStore {
	return &experimentStore{
		entries: make(map[string]*storeEntry),
	}
}

func (st *experimentStore) get(key string) (*storeEntry, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()

	entry, ok := st.entries[key]
	return entry, ok
}

// getOrCreate returns the entry for key, building the experiment on first
// access. The double-checked write lock keeps two concurrent first-accesses
// from creating duplicates.
func (st *experimentStore) getOrCreate(key string, build func() *Experiment) (*storeEntry, bool) {
	st.mu.RLock()
	entry, ok := st.entries[key]
	st.mu.RUnlock()
	if ok {
		return entry, false
	}

	st.mu.Lock()
	defer st.mu.Unlock()

	if entry, ok := st.entries[key]; ok {
		return entry, false
	}

	entry = &storeEntry{exp: build()}
	st.entries[key] = entry

	return entry, true
}

// put inserts a loaded experiment, replacing any existing entry. Used by the
// startup warm load only.
func (st *experimentStore) put(exp *Experiment) {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.entries[exp.key()] = &storeEntry{exp: exp}
}

// remove deletes the entry; the removal is visible to all subsequent calls
// immediately.
func (st *experimentStore) remove(key string) bool {
	st.mu.Lock()
	defer st.mu.Unlock()

	_, ok := st.entries[key]
	delete(st.entries, key)

	return ok
}

// list returns entries in stable key order.
func (st *experimentStore) list() []*storeEntry {
	st.mu.RLock()
	defer st.mu.RUnlock()

	keys := make([]string, 0, len(st.entries))
	for k := range st.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]*storeEntry, 0, len(keys))
	for _, k := range keys {
		out = append(out, st.entries[k])
	}

	return out
}

func (st *experimentStore) size() int {
	st.mu.RLock()
	defer st.mu.RUnlock()

	return len(st.entries)
}
