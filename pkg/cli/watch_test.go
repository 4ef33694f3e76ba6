package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/github/gh-watch-run/pkg/testutil"
	"github.com/stretchr/testify/require"
)

func TestWatchWorkflowRunEndToEnd(t *testing.T) {
	outputRoot := testutil.TempDir(t, "watch-*")
	provider := &fakeProvider{
		listPages: [][]RunListEntry{{
			{DatabaseID: 42, CreatedAt: time.Now().UTC().Add(time.Minute)},
		}},
		snapshots: []RunSnapshot{
			{Status: "queued"},
			{Status: "in_progress", Jobs: []JobSnapshot{{DatabaseID: 1001, Name: "build"}}},
			{Status: "completed", Conclusion: "success", Jobs: []JobSnapshot{
				{DatabaseID: 1001, Name: "build", Conclusion: "success"},
				{DatabaseID: 1002, Name: "test", Conclusion: "success"},
			}},
		},
		logs:        map[int64]string{1001: "building\n", 1002: "testing\n"},
		downloadErr: ErrNoArtifacts,
	}

	err := WatchWorkflowRun(context.Background(), provider, WatchOptions{
		Workflow:     "CI",
		Ref:          "main",
		PollInterval: time.Millisecond,
		OutputRoot:   outputRoot,
	})
	require.NoError(t, err)

	require.Equal(t, 1, provider.startCalls, "controller should trigger exactly one run")
	require.Equal(t, 0, provider.cancelCalls)
	// Three monitor polls plus the collector's final fetch.
	require.Equal(t, 4, provider.getCalls)

	outDir := filepath.Join(outputRoot, "run-42")
	for _, name := range []string{"run.json", "job-1001-build.log", "job-1002-test.log"} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("expected output file %s: %v", name, err)
		}
	}
}

func TestWatchWorkflowRunAttachesToExistingRun(t *testing.T) {
	outputRoot := testutil.TempDir(t, "watch-*")
	provider := &fakeProvider{
		snapshots: []RunSnapshot{
			{Status: "completed", Conclusion: "success", Jobs: []JobSnapshot{
				{DatabaseID: 1001, Name: "build", Conclusion: "success"},
			}},
		},
		downloadErr: ErrNoArtifacts,
	}

	err := WatchWorkflowRun(context.Background(), provider, WatchOptions{
		Workflow:     "CI",
		RunID:        99,
		PollInterval: time.Millisecond,
		OutputRoot:   outputRoot,
	})
	require.NoError(t, err)
	require.Equal(t, 0, provider.startCalls, "attaching must not trigger a new run")
	require.Equal(t, 0, provider.listCalls, "attaching must not hit the run list")
}

func TestWatchWorkflowRunCollectsOnFailure(t *testing.T) {
	outputRoot := testutil.TempDir(t, "watch-*")
	provider := &fakeProvider{
		snapshots: []RunSnapshot{
			{Status: "in_progress", Jobs: []JobSnapshot{
				{DatabaseID: 1001, Name: "build", Conclusion: "failure"},
			}},
			{Status: "completed", Conclusion: "cancelled", Jobs: []JobSnapshot{
				{DatabaseID: 1001, Name: "build", Conclusion: "failure"},
			}},
		},
		downloadErr: ErrNoArtifacts,
	}

	err := WatchWorkflowRun(context.Background(), provider, WatchOptions{
		Workflow:     "CI",
		RunID:        77,
		PollInterval: time.Millisecond,
		OutputRoot:   outputRoot,
	})

	var runFailed *RunFailedError
	require.ErrorAs(t, err, &runFailed)
	require.Equal(t, int64(77), runFailed.RunID)
	require.Equal(t, 1, provider.cancelCalls)

	// Log retrieval must never be skipped on failure.
	if _, statErr := os.Stat(filepath.Join(outputRoot, "run-77", "run.json")); statErr != nil {
		t.Errorf("expected run.json despite failure: %v", statErr)
	}
}

func TestWatchWorkflowRunPropagatesProviderErrors(t *testing.T) {
	provider := &fakeProvider{
		startErr: errors.New("gh workflow run failed"),
	}

	err := WatchWorkflowRun(context.Background(), provider, WatchOptions{
		Workflow:     "CI",
		Ref:          "main",
		PollInterval: time.Millisecond,
		OutputRoot:   testutil.TempDir(t, "watch-*"),
	})
	require.Error(t, err)

	var runFailed *RunFailedError
	require.False(t, errors.As(err, &runFailed), "transport errors must not be classified as run failures")
}

func TestSummaryLineNamesRunAndOutputDir(t *testing.T) {
	outcome := RunOutcome{
		Run:       RunReference{DatabaseID: 42},
		OutputDir: filepath.Join("logs", "gh-actions", "run-42"),
	}

	line := summaryLine(outcome)
	if !strings.Contains(line, "42") || !strings.Contains(line, outcome.OutputDir) {
		t.Errorf("summary line %q does not mention run id and output directory", line)
	}

	outcome.FailureDetected = true
	line = summaryLine(outcome)
	if !strings.Contains(line, "failed") {
		t.Errorf("failure summary line %q does not say failed", line)
	}
}

func TestWatchCommandRequiresRefWithoutRunID(t *testing.T) {
	cmd := NewWatchCommand()
	cmd.SetArgs([]string{})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	err := cmd.Execute()
	var usageErr *UsageError
	require.ErrorAs(t, err, &usageErr)
}

func TestWatchCommandRejectsNonPositivePollInterval(t *testing.T) {
	cmd := NewWatchCommand()
	cmd.SetArgs([]string{"--ref", "main", "--poll", "0"})
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)

	err := cmd.Execute()
	var usageErr *UsageError
	require.ErrorAs(t, err, &usageErr)
}
