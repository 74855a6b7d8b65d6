package reactive

import "sync"

// Job tracks one in-flight or completed bulk-load COPY, the unit admin
// clients subscribe to for live progress (spec.md §6.4: "bulk-load
// progress is optional and reported by row count").
type Job struct {
	ID          string
	Kind        string // "node_copy" | "rel_copy" | "rdf_graph"
	Table       string
	RowsRead    int64
	RowsWritten int64
	Done        bool
	Err         string
	Clients     map[*Client]struct{}
	Mu          sync.RWMutex
}

// Client abstracts over the admin WebSocket connection so this package
// never imports gorilla/websocket directly.
type Client struct {
	Send func(msgType string, payload any) error
}

// ProgressEvent is one row-count update for a COPY; internal/engine emits
// one when a COPY finishes, and internal/progress's Consumer applies it to
// the matching Job and broadcasts the result.
type ProgressEvent struct {
	JobID       string
	RowsRead    int64
	RowsWritten int64
	Done        bool
	Err         string
}

// Deps lets callers inject the broadcast function without a global
// singleton.
type Deps struct {
	Broadcast func(job *Job, msgType string, payload any)
}
