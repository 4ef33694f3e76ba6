package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/github/gh-watch-run/pkg/console"
	"github.com/github/gh-watch-run/pkg/logger"
)

var watchLog = logger.New("cli:watch")

// WatchOptions configures a single watch invocation.
type WatchOptions struct {
	Workflow     string        // Workflow name or file
	Ref          string        // Git ref/branch; required when triggering
	Repo         string        // Repository override (owner/name)
	RunID        int64         // Existing run to attach to; 0 triggers a new run
	PollInterval time.Duration // Fixed interval between polls
	OutputRoot   string        // Root directory for per-run output folders
	Verbose      bool
}

// WatchWorkflowRun runs the full lifecycle: trigger (unless attaching to
// an existing run), locate, monitor to completion, then collect logs and
// artifacts. Collection always happens, success or failure; failing runs
// are the ones whose logs are wanted most.
//
// Returns nil on success, a *RunFailedError when the run or any of its
// jobs concluded with a classified failure, and the underlying provider
// error on transport problems.
func WatchWorkflowRun(ctx context.Context, provider RunProvider, opts WatchOptions) error {
	watchLog.Printf("Watching: workflow=%s, ref=%s, repo=%s, runID=%d, poll=%s", opts.Workflow, opts.Ref, opts.Repo, opts.RunID, opts.PollInterval)

	run := RunReference{
		DatabaseID: opts.RunID,
		Workflow:   opts.Workflow,
		Ref:        opts.Ref,
		Repo:       opts.Repo,
	}

	if run.DatabaseID == 0 {
		// The trigger timestamp is captured before the start request so
		// the locator can tell the new run apart from earlier runs on
		// the same ref. Second precision matches gh's createdAt field.
		since := time.Now().UTC().Truncate(time.Second)
		if err := provider.StartRun(ctx, opts.Workflow, opts.Ref, opts.Repo); err != nil {
			return err
		}
		located, err := locateRun(ctx, provider, opts.Workflow, opts.Ref, opts.Repo, since, opts.PollInterval)
		if err != nil {
			return err
		}
		run = located
		fmt.Fprintln(os.Stderr, console.FormatInfoMessage(fmt.Sprintf("Started run %d", run.DatabaseID)))
	} else {
		watchLog.Printf("Attaching to existing run %d", run.DatabaseID)
	}

	outcome, err := monitorRun(ctx, provider, run, opts.PollInterval)
	if err != nil {
		return err
	}
	outcome.OutputDir = filepath.Join(opts.OutputRoot, fmt.Sprintf("run-%d", run.DatabaseID))

	if err := collectRunOutputs(ctx, provider, run, outcome.OutputDir, opts.Verbose); err != nil {
		return err
	}

	fmt.Fprintln(os.Stderr, summaryLine(outcome))
	if outcome.FailureDetected {
		return &RunFailedError{RunID: run.DatabaseID, OutputDir: outcome.OutputDir}
	}
	return nil
}

// summaryLine renders the final one-line summary naming the run and where
// its outputs were saved.
func summaryLine(outcome RunOutcome) string {
	if outcome.FailureDetected {
		return console.FormatErrorMessage(fmt.Sprintf("Run %d failed; logs/artifacts saved to %s", outcome.Run.DatabaseID, outcome.OutputDir))
	}
	return console.FormatSuccessMessage(fmt.Sprintf("Run %d succeeded; logs/artifacts saved to %s", outcome.Run.DatabaseID, outcome.OutputDir))
}
