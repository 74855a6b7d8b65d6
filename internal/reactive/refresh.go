package reactive

// ApplyProgress folds one ProgressEvent into its Job's counters and
// broadcasts the updated snapshot to every subscribed client. This is the
// same "mutate shared state under its own lock, then fan out" shape the
// teacher's PartialRefresh used for live SQL row diffs, simplified here
// since a progress update never needs to re-run a query — it only needs
// the counters a COPY already computed.
func ApplyProgress(deps Deps, job *Job, evt ProgressEvent) {
	job.Mu.Lock()
	job.RowsRead = evt.RowsRead
	job.RowsWritten = evt.RowsWritten
	job.Done = evt.Done
	job.Err = evt.Err
	snapshot := map[string]any{
		"id":          job.ID,
		"kind":        job.Kind,
		"table":       job.Table,
		"rowsRead":    job.RowsRead,
		"rowsWritten": job.RowsWritten,
		"done":        job.Done,
	}
	if job.Err != "" {
		snapshot["error"] = job.Err
	}
	job.Mu.Unlock()

	msgType := "progress"
	if evt.Done {
		msgType = "done"
	}
	if evt.Err != "" {
		msgType = "error"
	}
	deps.Broadcast(job, msgType, snapshot)
}
