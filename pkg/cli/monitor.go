package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/github/gh-watch-run/pkg/console"
	"github.com/github/gh-watch-run/pkg/logger"
)

var monitorLog = logger.New("cli:monitor")

// monitorRun polls a run at a fixed interval until it completes and
// returns the terminal outcome (OutputDir not yet set).
//
// The loop moves through three states: polling, cancel-requested, and
// completed. While the run is still in progress, the first snapshot in
// which any job carries a failing conclusion triggers exactly one cancel
// request; polling then continues, because cancellation is asynchronous
// and the run only stops once GitHub reports it completed. On completion
// the failure flag is OR-ed with the final conclusion's classification,
// so a run that only degrades on its last snapshot is still caught. The
// flag is monotonic: nothing ever resets it.
//
// The completed check happens before the sleep, so a run that is already
// terminal on the first poll returns without an extra tick. There is no
// overall deadline; a hung remote run polls until the context is
// cancelled.
func monitorRun(ctx context.Context, provider RunProvider, run RunReference, interval time.Duration) (RunOutcome, error) {
	monitorLog.Printf("Monitoring run %d at %s intervals", run.DatabaseID, interval)

	outcome := RunOutcome{Run: run}
	cancelRequested := false

	for {
		snapshot, err := provider.GetRun(ctx, run.DatabaseID, run.Repo)
		if err != nil {
			return RunOutcome{}, err
		}
		monitorLog.Printf("Run %d: status=%s, conclusion=%s, jobs=%d", run.DatabaseID, snapshot.Status, snapshot.Conclusion, len(snapshot.Jobs))

		if !cancelRequested && !snapshot.Completed() {
			if job, failing := firstFailingJob(snapshot.Jobs); failing {
				outcome.FailureDetected = true
				cancelRequested = true
				monitorLog.Printf("Job %d (%s) concluded %s while run %d still %s; requesting cancellation", job.DatabaseID, job.Name, job.Conclusion, run.DatabaseID, snapshot.Status)
				fmt.Fprintln(os.Stderr, console.FormatWarningMessage(fmt.Sprintf("Failure detected in job %q; cancelling run %d", job.Name, run.DatabaseID)))
				if err := provider.CancelRun(ctx, run.DatabaseID, run.Repo); err != nil {
					return RunOutcome{}, err
				}
			}
		}

		if snapshot.Completed() {
			if IsFailingConclusion(snapshot.Conclusion) {
				outcome.FailureDetected = true
			}
			outcome.Snapshot = *snapshot
			monitorLog.Printf("Run %d completed: conclusion=%s, failureDetected=%v", run.DatabaseID, snapshot.Conclusion, outcome.FailureDetected)
			return outcome, nil
		}

		if err := sleepContext(ctx, interval); err != nil {
			return RunOutcome{}, err
		}
	}
}

// firstFailingJob returns the first job whose conclusion classifies as a
// failure, if any.
func firstFailingJob(jobs []JobSnapshot) (JobSnapshot, bool) {
	for _, job := range jobs {
		if IsFailingConclusion(job.Conclusion) {
			return job, true
		}
	}
	return JobSnapshot{}, false
}
