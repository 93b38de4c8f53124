package neat

import "sync"

// Pair is the (origin, destination) key of a structural event.
type Pair struct {
	Origin      int
	Destination int
}

// Registry hands out historical markings. Within one epoch the same
// (origin, destination) pair always yields the same id; a new pair always
// yields a strictly greater id than any issued before, across resets too.
type Registry struct {
	mu    sync.Mutex
	next  int
	cache map[Pair]int
}

// NewRegistry creates a registry whose first fresh marking is first.
func NewRegistry(first int) *Registry {
	return &Registry{next: first, cache: make(map[Pair]int)}
}

// Mark returns the marking for the pair, allocating one if the pair is new this epoch.
func (r *Registry) Mark(origin, destination int) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := Pair{Origin: origin, Destination: destination}
	if id, ok := r.cache[key]; ok {
		return id
	}
	id := r.next
	r.next++
	r.cache[key] = id
	return id
}

// Last returns the most recently issued marking, or first-1 if none was issued.
func (r *Registry) Last() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.next - 1
}

// Reset forgets the memoized pairs. Counters keep increasing.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cache = make(map[Pair]int)
}

// History bundles the node and connection registries of one evolution run.
// It is shared by every genome of the run and reset between epochs.
type History struct {
	Nodes       *Registry
	Connections *Registry
}

// NewHistory reserves node ids [0, inputs+outputs) for I/O nodes.
func NewHistory(inputs, outputs int) *History {
	return &History{
		Nodes:       NewRegistry(inputs + outputs),
		Connections: NewRegistry(0),
	}
}

// Reset starts a new epoch on both registries.
func (h *History) Reset() {
	h.Nodes.Reset()
	h.Connections.Reset()
}

// RegistrySnapshot is the serializable state of a Registry.
type RegistrySnapshot struct {
	Next  int
	Cache map[Pair]int
}

// HistorySnapshot is the serializable state of a History.
type HistorySnapshot struct {
	Nodes       RegistrySnapshot
	Connections RegistrySnapshot
}

func (r *Registry) snapshot() RegistrySnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	cache := make(map[Pair]int, len(r.cache))
	for k, v := range r.cache {
		cache[k] = v
	}
	return RegistrySnapshot{Next: r.next, Cache: cache}
}

func restoreRegistry(s RegistrySnapshot) *Registry {
	r := NewRegistry(s.Next)
	for k, v := range s.Cache {
		r.cache[k] = v
	}
	return r
}

// Snapshot captures both registries.
func (h *History) Snapshot() HistorySnapshot {
	return HistorySnapshot{Nodes: h.Nodes.snapshot(), Connections: h.Connections.snapshot()}
}

// RestoreHistory rebuilds a History from a snapshot.
func RestoreHistory(s HistorySnapshot) *History {
	return &History{Nodes: restoreRegistry(s.Nodes), Connections: restoreRegistry(s.Connections)}
}
