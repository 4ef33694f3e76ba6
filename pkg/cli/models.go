package cli

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"
)

const (
	// DefaultWorkflow is the workflow watched when none is given.
	DefaultWorkflow = "CI"
	// DefaultPollSeconds is the default interval between status polls.
	DefaultPollSeconds = 10
	// runJSONFileName is the snapshot file written into each run folder.
	runJSONFileName = "run.json"
	// artifactsDirName is the subdirectory artifacts are downloaded into.
	artifactsDirName = "artifacts"
)

// DefaultOutputRoot is the directory run folders are created under when
// --output is not given.
var DefaultOutputRoot = filepath.Join("logs", "gh-actions")

// RunReference identifies a single workflow run. It is immutable once a
// run has been located or supplied explicitly via --run-id.
type RunReference struct {
	DatabaseID int64
	Workflow   string
	Ref        string
	Repo       string // owner/name, empty for the current repository
}

// JobSnapshot is a point-in-time view of one job within a run. Conclusion
// is empty while the job is still running.
type JobSnapshot struct {
	DatabaseID int64  `json:"databaseId"`
	Name       string `json:"name"`
	Conclusion string `json:"conclusion"`
}

// RunSnapshot is a point-in-time view of a run as reported by
// `gh run view --json status,conclusion,updatedAt,jobs`. Snapshots are
// ephemeral; each poll replaces the previous one and only the terminal
// snapshot is persisted.
type RunSnapshot struct {
	Status     string        `json:"status"`
	Conclusion string        `json:"conclusion"`
	UpdatedAt  time.Time     `json:"updatedAt"`
	Jobs       []JobSnapshot `json:"jobs"`
}

// Completed reports whether the run has reached its terminal status. Any
// status other than "completed" (queued, in_progress, waiting, ...) is
// non-terminal.
func (s *RunSnapshot) Completed() bool {
	return s.Status == "completed"
}

// RunListEntry is one row of `gh run list --json
// databaseId,createdAt,status,headSha`, used during run discovery.
type RunListEntry struct {
	DatabaseID int64     `json:"databaseId"`
	CreatedAt  time.Time `json:"createdAt"`
	Status     string    `json:"status"`
	HeadSha    string    `json:"headSha"`
}

// RunOutcome is the terminal result of monitoring a run. It is constructed
// exactly once, after the monitor loop breaks. FailureDetected is
// monotonic: once true it never reverts.
type RunOutcome struct {
	Run             RunReference
	Snapshot        RunSnapshot
	FailureDetected bool
	OutputDir       string
}

// FailConclusions is the set of run/job conclusions classified as
// failures. Everything outside this set (success, skipped, neutral, or an
// empty conclusion while a job is still running) is non-failing.
var FailConclusions = map[string]bool{
	"failure":         true,
	"cancelled":       true,
	"timed_out":       true,
	"startup_failure": true,
	"action_required": true,
}

// IsFailingConclusion reports whether a conclusion counts as a failure.
func IsFailingConclusion(conclusion string) bool {
	return FailConclusions[conclusion]
}

// ErrNoArtifacts indicates that a workflow run has no artifacts.
var ErrNoArtifacts = errors.New("no artifacts found for this run")

// UsageError marks invalid command-line argument combinations. It is
// raised before any provider call and mapped to exit status 2.
type UsageError struct {
	Message string
}

func (e *UsageError) Error() string {
	return e.Message
}

// RunFailedError marks the expected business outcome of a failed run. It
// is not a tool error: the run completed, its logs were collected, and
// the failure is surfaced as exit status 1.
type RunFailedError struct {
	RunID     int64
	OutputDir string
}

func (e *RunFailedError) Error() string {
	return fmt.Sprintf("run %d concluded with a failure", e.RunID)
}
