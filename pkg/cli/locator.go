package cli

import (
	"context"
	"time"

	"github.com/github/gh-watch-run/pkg/logger"
)

var locatorLog = logger.New("cli:locator")

// locateRun polls the provider's run list until a run created at or after
// since appears, and returns a reference to it. It retries indefinitely
// with a fixed interval: if the trigger silently never produced a run,
// only context cancellation breaks the loop.
//
// When several runs qualify, the first entry in provider order wins. For
// GitHub that order is most-recent-first; this is a provider-order
// dependency inherited from the gh CLI, not a tie-break this tool imposes.
func locateRun(ctx context.Context, provider RunProvider, workflow, ref, repo string, since time.Time, interval time.Duration) (RunReference, error) {
	locatorLog.Printf("Locating run: workflow=%s, ref=%s, repo=%s, since=%s", workflow, ref, repo, since.Format(time.RFC3339))

	for {
		runs, err := provider.ListRuns(ctx, workflow, ref, repo)
		if err != nil {
			return RunReference{}, err
		}

		for _, run := range runs {
			if !run.CreatedAt.Before(since) {
				locatorLog.Printf("Located run %d created at %s", run.DatabaseID, run.CreatedAt.Format(time.RFC3339))
				return RunReference{
					DatabaseID: run.DatabaseID,
					Workflow:   workflow,
					Ref:        ref,
					Repo:       repo,
				}, nil
			}
		}

		locatorLog.Printf("No run created at or after %s among %d listed runs, retrying", since.Format(time.RFC3339), len(runs))
		if err := sleepContext(ctx, interval); err != nil {
			return RunReference{}, err
		}
	}
}

// sleepContext sleeps for the given duration or until the context is
// cancelled, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
