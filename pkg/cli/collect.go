package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/github/gh-watch-run/pkg/console"
	"github.com/github/gh-watch-run/pkg/logger"
	"github.com/github/gh-watch-run/pkg/stringutil"
)

var collectLog = logger.New("cli:collect")

// collectRunOutputs persists everything needed for offline inspection of
// a terminal run: the full snapshot as run.json, one log file per job,
// and the run's artifacts under artifacts/. It is idempotent: calling it
// again against an unchanged remote run rewrites the same content into
// the same (pre-existing) directories.
//
// Only the artifact download is best-effort: runs without artifacts are
// common and must not abort collection. Every other failure propagates,
// since missing logs defeat the point of collecting.
func collectRunOutputs(ctx context.Context, provider RunProvider, run RunReference, outDir string, verbose bool) error {
	collectLog.Printf("Collecting outputs for run %d into %s", run.DatabaseID, outDir)

	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create run output directory: %w", err)
	}

	// One more full fetch so the persisted snapshot includes any job
	// state that settled after the monitor's terminal poll.
	snapshot, err := provider.GetRun(ctx, run.DatabaseID, run.Repo)
	if err != nil {
		return err
	}

	data, err := marshalSortedJSON(snapshot)
	if err != nil {
		return fmt.Errorf("failed to serialize run %d snapshot: %w", run.DatabaseID, err)
	}
	runJSONPath := filepath.Join(outDir, runJSONFileName)
	if err := os.WriteFile(runJSONPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", runJSONPath, err)
	}
	if verbose {
		fmt.Fprintln(os.Stderr, console.FormatVerboseMessage(fmt.Sprintf("Wrote %s", runJSONPath)))
	}

	for _, job := range snapshot.Jobs {
		if job.DatabaseID == 0 {
			collectLog.Printf("Skipping job %q without an identifier", job.Name)
			continue
		}
		logText, err := provider.FetchJobLog(ctx, run.DatabaseID, job.DatabaseID, run.Repo)
		if err != nil {
			return err
		}
		logPath := filepath.Join(outDir, jobLogFileName(job))
		if err := os.WriteFile(logPath, []byte(logText), 0644); err != nil {
			return fmt.Errorf("failed to write job log %s: %w", logPath, err)
		}
		if verbose {
			fmt.Fprintln(os.Stderr, console.FormatVerboseMessage(fmt.Sprintf("Wrote %s", logPath)))
		}
	}

	artifactsDir := filepath.Join(outDir, artifactsDirName)
	if err := os.MkdirAll(artifactsDir, 0755); err != nil {
		return fmt.Errorf("failed to create artifacts directory: %w", err)
	}

	// Best-effort: this is the one call site where provider errors are
	// deliberately discarded. A run with no artifacts is not an error.
	if err := provider.DownloadArtifacts(ctx, run.DatabaseID, artifactsDir, run.Repo); err != nil {
		if errors.Is(err, ErrNoArtifacts) {
			collectLog.Printf("Run %d has no artifacts", run.DatabaseID)
		} else {
			collectLog.Printf("Artifact download for run %d failed: %v", run.DatabaseID, err)
			if verbose {
				fmt.Fprintln(os.Stderr, console.FormatWarningMessage(fmt.Sprintf("Failed to download artifacts for run %d: %v", run.DatabaseID, err)))
			}
		}
	}

	return nil
}

// jobLogFileName builds the per-job log file name, embedding the job id
// and a sanitized form of the display name. Falls back to "job" when the
// name sanitizes to nothing.
func jobLogFileName(job JobSnapshot) string {
	name := stringutil.SanitizeFileName(job.Name)
	if name == "" {
		name = "job"
	}
	return fmt.Sprintf("job-%d-%s.log", job.DatabaseID, name)
}

// marshalSortedJSON serializes v as indented JSON with lexically sorted
// keys, via a map round trip. Sorted keys keep run.json reproducible
// across invocations so snapshots diff cleanly.
func marshalSortedJSON(v any) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	var tree any
	if err := json.Unmarshal(raw, &tree); err != nil {
		return nil, err
	}
	return json.MarshalIndent(tree, "", "  ")
}
