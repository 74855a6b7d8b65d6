// Package progress fans out bulk-load COPY progress events to the
// reactive.Registry's subscribed jobs, the same "decode envelope, match
// against live registrations, dispatch" shape the teacher used to turn
// Postgres WAL change events into live-query refreshes — generalized
// here from row-level WAL events to row-count progress events emitted by
// internal/engine.
package progress

import (
	"encoding/json"
	"log"

	"github.com/oriondb/oriondb/internal/reactive"
	"go.uber.org/zap"
)

// Envelope is the wire shape a running COPY's progress events arrive in
// (e.g. over the admin server's internal progress channel or a sidecar
// process); one envelope may batch several jobs' updates.
type Envelope struct {
	Events []reactive.ProgressEvent `json:"events"`
}

// Consumer applies each ProgressEvent in an Envelope to its matching Job
// and broadcasts the result.
type Consumer struct {
	Reg  *reactive.Registry
	Deps reactive.Deps
}

func (c *Consumer) OnMessage(line []byte) {
	var env Envelope
	if err := json.Unmarshal(line, &env); err != nil {
		log.Printf("progress decode error: %v", err)
		return
	}
	if len(env.Events) == 0 {
		return
	}

	for _, evt := range env.Events {
		elog := zap.L().With(zap.String("job_id", evt.JobID))
		job, ok := c.Reg.Get(evt.JobID)
		if !ok {
			elog.Debug("progress_event_unregistered_job")
			continue
		}
		elog.Debug("progress_event",
			zap.Int64("rows_read", evt.RowsRead),
			zap.Int64("rows_written", evt.RowsWritten),
			zap.Bool("done", evt.Done),
		)
		reactive.ApplyProgress(c.Deps, job, evt)
	}
}
