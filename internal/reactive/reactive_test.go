package reactive

import (
	"sync"
	"testing"
)

func TestRegistryRegisterGetUnregister(t *testing.T) {
	r := NewRegistry()
	job := &Job{ID: "job-1", Kind: "node_copy", Table: "Person"}
	r.Register(job)

	got, ok := r.Get("job-1")
	if !ok || got != job {
		t.Fatalf("Get(job-1) = (%v, %v), want (%v, true)", got, ok, job)
	}

	r.Unregister("job-1")
	if _, ok := r.Get("job-1"); ok {
		t.Fatalf("job-1 still present after Unregister")
	}
}

func TestRegistrySnapshotAndForEach(t *testing.T) {
	r := NewRegistry()
	r.Register(&Job{ID: "a"})
	r.Register(&Job{ID: "b"})

	if n := len(r.Snapshot()); n != 2 {
		t.Fatalf("Snapshot len = %d, want 2", n)
	}

	seen := map[string]bool{}
	r.ForEach(func(j *Job) bool {
		seen[j.ID] = true
		return true
	})
	if !seen["a"] || !seen["b"] {
		t.Fatalf("ForEach missed jobs: %v", seen)
	}
}

func TestRegistrySnapshotView(t *testing.T) {
	r := NewRegistry()
	r.Register(&Job{ID: "job-1", Kind: "rdf_graph", Table: "kg", RowsWritten: 4, Done: true})

	views := r.SnapshotView()
	if len(views) != 1 {
		t.Fatalf("SnapshotView len = %d, want 1", len(views))
	}
	v := views[0]
	if v["id"] != "job-1" || v["kind"] != "rdf_graph" || v["rowsWritten"] != int64(4) || v["done"] != true {
		t.Fatalf("SnapshotView entry = %+v", v)
	}
}

func TestRegistryCleanupOrphans(t *testing.T) {
	r := NewRegistry()
	done := &Job{ID: "done-no-clients", Done: true}
	stillWatched := &Job{ID: "done-with-client", Done: true, Clients: map[*Client]struct{}{
		{Send: func(string, any) error { return nil }}: {},
	}}
	running := &Job{ID: "running"}
	r.Register(done)
	r.Register(stillWatched)
	r.Register(running)

	if n := r.CleanupOrphans(); n != 1 {
		t.Fatalf("CleanupOrphans removed %d, want 1", n)
	}
	if _, ok := r.Get("done-no-clients"); ok {
		t.Fatalf("done-no-clients should have been dropped")
	}
	if _, ok := r.Get("done-with-client"); !ok {
		t.Fatalf("done-with-client should survive (has a subscriber)")
	}
	if _, ok := r.Get("running"); !ok {
		t.Fatalf("running should survive (not done)")
	}
}

func TestApplyProgressUpdatesJobAndBroadcastsProgress(t *testing.T) {
	job := &Job{ID: "job-1", Kind: "node_copy", Table: "Person"}
	var gotMsgType string
	var gotPayload map[string]any
	deps := Deps{Broadcast: func(j *Job, msgType string, payload any) {
		gotMsgType = msgType
		gotPayload = payload.(map[string]any)
	}}

	ApplyProgress(deps, job, ProgressEvent{RowsRead: 10, RowsWritten: 10})

	if gotMsgType != "progress" {
		t.Fatalf("msgType = %q, want progress", gotMsgType)
	}
	if gotPayload["rowsWritten"] != int64(10) {
		t.Fatalf("payload = %+v", gotPayload)
	}
	job.Mu.RLock()
	defer job.Mu.RUnlock()
	if job.RowsWritten != 10 || job.Done {
		t.Fatalf("job not updated: %+v", job)
	}
}

func TestApplyProgressBroadcastsDoneAndError(t *testing.T) {
	job := &Job{ID: "job-1"}
	var msgTypes []string
	deps := Deps{Broadcast: func(_ *Job, msgType string, _ any) {
		msgTypes = append(msgTypes, msgType)
	}}

	ApplyProgress(deps, job, ProgressEvent{RowsWritten: 5, Done: true})
	ApplyProgress(deps, job, ProgressEvent{Err: "boom"})

	if len(msgTypes) != 2 || msgTypes[0] != "done" || msgTypes[1] != "error" {
		t.Fatalf("msgTypes = %v, want [done error]", msgTypes)
	}
}

func TestApplyProgressConcurrentSafety(t *testing.T) {
	job := &Job{ID: "job-1"}
	deps := Deps{Broadcast: func(*Job, string, any) {}}

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int64) {
			defer wg.Done()
			ApplyProgress(deps, job, ProgressEvent{RowsWritten: n})
		}(int64(i))
	}
	wg.Wait()
}
