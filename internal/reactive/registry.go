package reactive

import "sync"

// Registry tracks every Job currently known to the admin surface, keyed
// by job id. One registry is shared across the HTTP/WebSocket handlers.
type Registry struct {
	mu   sync.RWMutex
	data map[string]*Job
}

func NewRegistry() *Registry {
	return &Registry{data: make(map[string]*Job)}
}

func (r *Registry) Register(j *Job) {
	r.mu.Lock()
	r.data[j.ID] = j
	r.mu.Unlock()
}

func (r *Registry) Unregister(id string) {
	r.mu.Lock()
	delete(r.data, id)
	r.mu.Unlock()
}

func (r *Registry) Get(id string) (*Job, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	j, ok := r.data[id]
	return j, ok
}

func (r *Registry) Snapshot() []*Job {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Job, 0, len(r.data))
	for _, j := range r.data {
		out = append(out, j)
	}
	return out
}

func (r *Registry) ForEach(fn func(*Job) bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, j := range r.data {
		if !fn(j) {
			break
		}
	}
}

// SnapshotView renders every tracked job as a plain JSON-friendly map,
// for GET /jobs.
func (r *Registry) SnapshotView() []map[string]any {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]map[string]any, 0, len(r.data))
	for _, j := range r.data {
		j.Mu.RLock()
		item := map[string]any{
			"id":          j.ID,
			"kind":        j.Kind,
			"table":       j.Table,
			"rowsRead":    j.RowsRead,
			"rowsWritten": j.RowsWritten,
			"done":        j.Done,
			"clients":     len(j.Clients),
		}
		j.Mu.RUnlock()
		out = append(out, item)
	}
	return out
}

// CleanupOrphans drops every completed job with no subscribed clients,
// returning how many were removed.
func (r *Registry) CleanupOrphans() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for id, j := range r.data {
		j.Mu.RLock()
		orphan := j.Done && len(j.Clients) == 0
		j.Mu.RUnlock()
		if orphan {
			delete(r.data, id)
			count++
		}
	}
	return count
}
