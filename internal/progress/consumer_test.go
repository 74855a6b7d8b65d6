package progress

import (
	"encoding/json"
	"testing"

	"github.com/oriondb/oriondb/internal/reactive"
)

func TestConsumerOnMessageAppliesKnownJob(t *testing.T) {
	reg := reactive.NewRegistry()
	job := &reactive.Job{ID: "job-1", Kind: "node_copy", Table: "Person"}
	reg.Register(job)

	var gotMsgType string
	deps := reactive.Deps{Broadcast: func(_ *reactive.Job, msgType string, _ any) {
		gotMsgType = msgType
	}}
	c := &Consumer{Reg: reg, Deps: deps}

	line, err := json.Marshal(Envelope{Events: []reactive.ProgressEvent{
		{JobID: "job-1", RowsRead: 3, RowsWritten: 3, Done: true},
	}})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	c.OnMessage(line)

	if gotMsgType != "done" {
		t.Fatalf("Broadcast msgType = %q, want done", gotMsgType)
	}
	job.Mu.RLock()
	defer job.Mu.RUnlock()
	if job.RowsWritten != 3 || !job.Done {
		t.Fatalf("job not updated: %+v", job)
	}
}

func TestConsumerOnMessageIgnoresUnregisteredJob(t *testing.T) {
	reg := reactive.NewRegistry()
	called := false
	deps := reactive.Deps{Broadcast: func(*reactive.Job, string, any) { called = true }}
	c := &Consumer{Reg: reg, Deps: deps}

	line, _ := json.Marshal(Envelope{Events: []reactive.ProgressEvent{{JobID: "missing"}}})
	c.OnMessage(line)

	if called {
		t.Fatalf("Broadcast should not fire for an unregistered job id")
	}
}

func TestConsumerOnMessageIgnoresMalformedEnvelope(t *testing.T) {
	reg := reactive.NewRegistry()
	c := &Consumer{Reg: reg, Deps: reactive.Deps{Broadcast: func(*reactive.Job, string, any) {
		t.Fatalf("Broadcast should not fire on a decode error")
	}}}

	c.OnMessage([]byte("not json"))
}

func TestConsumerOnMessageHandlesMultipleEventsInOneEnvelope(t *testing.T) {
	reg := reactive.NewRegistry()
	jobA := &reactive.Job{ID: "a"}
	jobB := &reactive.Job{ID: "b"}
	reg.Register(jobA)
	reg.Register(jobB)

	seen := map[string]bool{}
	deps := reactive.Deps{Broadcast: func(j *reactive.Job, _ string, _ any) { seen[j.ID] = true }}
	c := &Consumer{Reg: reg, Deps: deps}

	line, _ := json.Marshal(Envelope{Events: []reactive.ProgressEvent{
		{JobID: "a", RowsWritten: 1},
		{JobID: "b", RowsWritten: 2, Done: true},
	}})
	c.OnMessage(line)

	if !seen["a"] || !seen["b"] {
		t.Fatalf("expected both jobs to receive a broadcast, got %v", seen)
	}
}
