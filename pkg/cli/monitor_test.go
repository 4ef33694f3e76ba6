package cli

import (
	"context"
	"testing"
	"time"
)

func TestMonitorRunCancelsOnceOnEarlyJobFailure(t *testing.T) {
	// Job A fails while the run is still in progress; the run only
	// reports completed (cancelled) two polls later.
	provider := &fakeProvider{
		snapshots: []RunSnapshot{
			{Status: "in_progress", Jobs: []JobSnapshot{
				{DatabaseID: 1, Name: "a", Conclusion: "failure"},
				{DatabaseID: 2, Name: "b"},
			}},
			{Status: "in_progress", Jobs: []JobSnapshot{
				{DatabaseID: 1, Name: "a", Conclusion: "failure"},
				{DatabaseID: 2, Name: "b"},
			}},
			{Status: "completed", Conclusion: "cancelled", Jobs: []JobSnapshot{
				{DatabaseID: 1, Name: "a", Conclusion: "failure"},
				{DatabaseID: 2, Name: "b", Conclusion: "cancelled"},
			}},
		},
	}

	outcome, err := monitorRun(context.Background(), provider, RunReference{DatabaseID: 42}, 0)
	if err != nil {
		t.Fatalf("monitorRun returned error: %v", err)
	}
	if provider.cancelCalls != 1 {
		t.Errorf("monitorRun issued %d cancel requests, want exactly 1", provider.cancelCalls)
	}
	if !outcome.FailureDetected {
		t.Error("monitorRun did not set FailureDetected")
	}
	if outcome.Snapshot.Conclusion != "cancelled" {
		t.Errorf("terminal snapshot conclusion = %q, want cancelled", outcome.Snapshot.Conclusion)
	}
}

func TestMonitorRunFailureFlagIsMonotonic(t *testing.T) {
	// A failing job triggers the flag, then later snapshots look healthy
	// and the run even completes with a success conclusion. The flag
	// must not revert.
	provider := &fakeProvider{
		snapshots: []RunSnapshot{
			{Status: "in_progress", Jobs: []JobSnapshot{
				{DatabaseID: 1, Name: "flaky", Conclusion: "failure"},
			}},
			{Status: "in_progress", Jobs: []JobSnapshot{
				{DatabaseID: 1, Name: "flaky", Conclusion: "success"},
			}},
			{Status: "completed", Conclusion: "success", Jobs: []JobSnapshot{
				{DatabaseID: 1, Name: "flaky", Conclusion: "success"},
			}},
		},
	}

	outcome, err := monitorRun(context.Background(), provider, RunReference{DatabaseID: 42}, 0)
	if err != nil {
		t.Fatalf("monitorRun returned error: %v", err)
	}
	if !outcome.FailureDetected {
		t.Error("FailureDetected reverted to false after later healthy snapshots")
	}
}

func TestMonitorRunFlagsRunAlreadyCompletedWithFailure(t *testing.T) {
	// Terminal on the very first poll: no cancel, no extra tick, still
	// flagged via the final conclusion.
	provider := &fakeProvider{
		snapshots: []RunSnapshot{
			{Status: "completed", Conclusion: "failure", Jobs: []JobSnapshot{
				{DatabaseID: 1, Name: "build", Conclusion: "failure"},
			}},
		},
	}

	outcome, err := monitorRun(context.Background(), provider, RunReference{DatabaseID: 42}, time.Hour)
	if err != nil {
		t.Fatalf("monitorRun returned error: %v", err)
	}
	if !outcome.FailureDetected {
		t.Error("monitorRun did not flag a run already completed with a failing conclusion")
	}
	if provider.getCalls != 1 {
		t.Errorf("monitorRun polled %d times, want 1 (no extra tick after terminal state)", provider.getCalls)
	}
	if provider.cancelCalls != 0 {
		t.Errorf("monitorRun cancelled an already completed run %d times", provider.cancelCalls)
	}
}

func TestMonitorRunSuccessfulRun(t *testing.T) {
	provider := &fakeProvider{
		snapshots: []RunSnapshot{
			{Status: "queued"},
			{Status: "in_progress", Jobs: []JobSnapshot{{DatabaseID: 1, Name: "build"}}},
			{Status: "completed", Conclusion: "success", Jobs: []JobSnapshot{
				{DatabaseID: 1, Name: "build", Conclusion: "success"},
			}},
		},
	}

	outcome, err := monitorRun(context.Background(), provider, RunReference{DatabaseID: 42}, 0)
	if err != nil {
		t.Fatalf("monitorRun returned error: %v", err)
	}
	if outcome.FailureDetected {
		t.Error("monitorRun flagged a successful run")
	}
	if provider.cancelCalls != 0 {
		t.Errorf("monitorRun cancelled a healthy run %d times", provider.cancelCalls)
	}
	if provider.getCalls != 3 {
		t.Errorf("monitorRun polled %d times, want 3", provider.getCalls)
	}
}

func TestMonitorRunSkippedJobsAreNotFailures(t *testing.T) {
	provider := &fakeProvider{
		snapshots: []RunSnapshot{
			{Status: "in_progress", Jobs: []JobSnapshot{
				{DatabaseID: 1, Name: "optional", Conclusion: "skipped"},
				{DatabaseID: 2, Name: "build"},
			}},
			{Status: "completed", Conclusion: "success", Jobs: []JobSnapshot{
				{DatabaseID: 1, Name: "optional", Conclusion: "skipped"},
				{DatabaseID: 2, Name: "build", Conclusion: "success"},
			}},
		},
	}

	outcome, err := monitorRun(context.Background(), provider, RunReference{DatabaseID: 42}, 0)
	if err != nil {
		t.Fatalf("monitorRun returned error: %v", err)
	}
	if outcome.FailureDetected {
		t.Error("monitorRun treated a skipped job as failing")
	}
	if provider.cancelCalls != 0 {
		t.Errorf("monitorRun issued %d cancel requests for skipped jobs", provider.cancelCalls)
	}
}
