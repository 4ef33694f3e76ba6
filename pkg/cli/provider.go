package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/github/gh-watch-run/pkg/console"
	"github.com/github/gh-watch-run/pkg/ghcli"
	"github.com/github/gh-watch-run/pkg/logger"
)

var providerLog = logger.New("cli:provider")

// RunProvider abstracts the CI platform operations the run lifecycle
// needs. The production implementation shells out to the gh CLI; tests
// substitute a scripted fake.
type RunProvider interface {
	// StartRun triggers a new run of the workflow on the given ref.
	StartRun(ctx context.Context, workflow, ref, repo string) error
	// ListRuns lists recent runs of the workflow on the given ref, in
	// provider order (most recent first for GitHub).
	ListRuns(ctx context.Context, workflow, ref, repo string) ([]RunListEntry, error)
	// GetRun fetches the current snapshot of a run including its jobs.
	GetRun(ctx context.Context, runID int64, repo string) (*RunSnapshot, error)
	// CancelRun requests cancellation of a run. Cancellation is
	// asynchronous; the run keeps reporting in_progress until GitHub
	// winds it down.
	CancelRun(ctx context.Context, runID int64, repo string) error
	// FetchJobLog fetches the raw log text for one job of a run.
	FetchJobLog(ctx context.Context, runID, jobID int64, repo string) (string, error)
	// DownloadArtifacts downloads all run artifacts into destDir. Returns
	// ErrNoArtifacts when the run produced none.
	DownloadArtifacts(ctx context.Context, runID int64, destDir, repo string) error
}

// GHProvider implements RunProvider over the GitHub CLI.
type GHProvider struct {
	Verbose bool
}

var _ RunProvider = (*GHProvider)(nil)

// repoArgs returns the --repo flag pair when a repository override is set.
func repoArgs(repo string) []string {
	if repo == "" {
		return nil
	}
	return []string{"--repo", repo}
}

// ghOutput runs a gh command through go-gh and returns stdout, wrapping
// failures with the exit code and stderr detail gh reported.
func ghOutput(ctx context.Context, args []string) ([]byte, error) {
	providerLog.Printf("Executing: gh %v", args)
	stdout, stderr, err := ghcli.ExecWithOutput(ctx, args...)
	if err != nil {
		return nil, wrapGHError(err, stderr.String(), args)
	}
	return stdout.Bytes(), nil
}

// wrapGHError extracts the exit code and stderr detail from a failed gh
// invocation. The stderr argument carries go-gh's captured stderr buffer;
// when empty, exec's own Stderr field is consulted. gh exits with status 4
// when authentication is missing.
func wrapGHError(err error, stderr string, args []string) error {
	if strings.Contains(err.Error(), "executable file not found") || strings.Contains(err.Error(), "could not find gh") {
		return fmt.Errorf("GitHub CLI (gh) is required but not available: %w", err)
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if stderr == "" {
			stderr = string(exitErr.Stderr)
		}
		stderr = strings.TrimSpace(stderr)
		providerLog.Printf("gh command failed with exit code %d: gh %v, stderr: %s", exitErr.ExitCode(), args, stderr)
		if exitErr.ExitCode() == 4 {
			return fmt.Errorf("GitHub CLI authentication required. Run 'gh auth login' first")
		}
		if stderr != "" {
			return fmt.Errorf("gh %s failed (exit code %d): %w: %s", args[0], exitErr.ExitCode(), err, stderr)
		}
		return fmt.Errorf("gh %s failed (exit code %d): %w", args[0], exitErr.ExitCode(), err)
	}
	providerLog.Printf("gh command failed: gh %v: %v", args, err)
	return fmt.Errorf("gh %s failed: %w", args[0], err)
}

// StartRun triggers a new workflow run via `gh workflow run`.
func (p *GHProvider) StartRun(ctx context.Context, workflow, ref, repo string) error {
	args := append([]string{"workflow", "run", workflow, "-r", ref}, repoArgs(repo)...)
	if p.Verbose {
		fmt.Fprintln(os.Stderr, console.FormatCommandMessage("gh "+strings.Join(args, " ")))
	}
	output, err := ghcli.RunCombined(ctx, fmt.Sprintf("Triggering workflow %s...", workflow), args...)
	if err != nil {
		if len(output) > 0 {
			fmt.Fprintf(os.Stderr, "%s", output)
		}
		return wrapGHError(err, "", args)
	}
	return nil
}

// ListRuns lists runs of the workflow on the ref via `gh run list`.
func (p *GHProvider) ListRuns(ctx context.Context, workflow, ref, repo string) ([]RunListEntry, error) {
	args := append([]string{
		"run", "list",
		"--workflow", workflow,
		"--branch", ref,
		"--json", "databaseId,createdAt,status,headSha",
	}, repoArgs(repo)...)

	output, err := ghOutput(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("failed to list workflow runs: %w", err)
	}
	if len(output) == 0 || !json.Valid(output) {
		return nil, fmt.Errorf("gh run list returned invalid JSON")
	}

	var runs []RunListEntry
	if err := json.Unmarshal(output, &runs); err != nil {
		return nil, fmt.Errorf("failed to parse workflow runs: %w", err)
	}
	return runs, nil
}

// GetRun fetches a run snapshot via `gh run view --json`.
func (p *GHProvider) GetRun(ctx context.Context, runID int64, repo string) (*RunSnapshot, error) {
	args := append([]string{
		"run", "view", strconv.FormatInt(runID, 10),
		"--json", "status,conclusion,updatedAt,jobs",
	}, repoArgs(repo)...)

	output, err := ghOutput(ctx, args)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch run %d: %w", runID, err)
	}
	if !json.Valid(output) {
		return nil, fmt.Errorf("gh run view returned invalid JSON for run %d", runID)
	}

	var snapshot RunSnapshot
	if err := json.Unmarshal(output, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to parse run %d: %w", runID, err)
	}
	return &snapshot, nil
}

// CancelRun requests cancellation via `gh run cancel`.
func (p *GHProvider) CancelRun(ctx context.Context, runID int64, repo string) error {
	args := append([]string{"run", "cancel", strconv.FormatInt(runID, 10)}, repoArgs(repo)...)
	providerLog.Printf("Executing: gh %v", args)
	output, err := ghcli.ExecContext(ctx, args...).CombinedOutput()
	if err != nil {
		if len(output) > 0 {
			providerLog.Printf("gh run cancel output: %s", output)
		}
		return fmt.Errorf("failed to cancel run %d: %w", runID, wrapGHError(err, string(output), args))
	}
	return nil
}

// FetchJobLog fetches one job's log text via `gh run view --log --job`.
func (p *GHProvider) FetchJobLog(ctx context.Context, runID, jobID int64, repo string) (string, error) {
	args := append([]string{
		"run", "view", strconv.FormatInt(runID, 10),
		"--log", "--job", strconv.FormatInt(jobID, 10),
	}, repoArgs(repo)...)

	output, err := ghOutput(ctx, args)
	if err != nil {
		return "", fmt.Errorf("failed to fetch log for job %d of run %d: %w", jobID, runID, err)
	}
	return string(output), nil
}

// DownloadArtifacts downloads all run artifacts via `gh run download`.
// A run without artifacts maps to ErrNoArtifacts so callers can treat it
// as a non-error.
func (p *GHProvider) DownloadArtifacts(ctx context.Context, runID int64, destDir, repo string) error {
	args := append([]string{"run", "download", strconv.FormatInt(runID, 10), "--dir", destDir}, repoArgs(repo)...)
	if p.Verbose {
		fmt.Fprintln(os.Stderr, console.FormatCommandMessage("gh "+strings.Join(args, " ")))
	}

	output, err := ghcli.RunCombined(ctx, fmt.Sprintf("Downloading artifacts for run %d...", runID), args...)
	if err != nil {
		if strings.Contains(string(output), "no valid artifacts") || strings.Contains(string(output), "not found") {
			providerLog.Printf("No artifacts for run %d (gh run download reported none)", runID)
			return ErrNoArtifacts
		}
		return fmt.Errorf("failed to download artifacts for run %d: %w (output: %s)", runID, wrapGHError(err, "", args), strings.TrimSpace(string(output)))
	}
	return nil
}
