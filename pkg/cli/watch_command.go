package cli

import (
	"fmt"
	"time"

	"github.com/github/gh-watch-run/pkg/ghcli"
	"github.com/spf13/cobra"
)

// NewWatchCommand creates the root command. The whole tool is a single
// operation, so there are no subcommands: flags select between triggering
// a fresh run and attaching to an existing one.
func NewWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gh-watch-run",
		Short: "Trigger a GitHub Actions workflow run and watch it to completion",
		Long: `Trigger a GitHub Actions workflow run, poll it until completion, and save
its logs and artifacts for offline inspection.

While the run is in progress, any job that concludes with a failure causes
the remaining run to be cancelled so no compute is wasted on a result that
is already known. Whatever the outcome, the final run snapshot (run.json),
one log file per job, and the run's artifacts are written into a per-run
folder under the output directory.

Defaults for --workflow, --repo, --poll and --output may be placed in
.github/watch-run.yml; explicit flags always win.

Exit status:
  0  run succeeded
  1  run or any job concluded with a failure (logs still collected)
  2  usage error
  3  GitHub CLI / transport error

Examples:
  gh-watch-run --ref main                      # Trigger the CI workflow on main and watch it
  gh-watch-run --workflow deploy --ref v1.2.3  # Trigger a different workflow
  gh-watch-run --run-id 1234567890             # Attach to an already-running run
  gh-watch-run --ref main --repo owner/name    # Watch a run in another repository
  gh-watch-run --ref main --poll 30 -o ./out   # Slower polling, custom output root`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			workflow, _ := cmd.Flags().GetString("workflow")
			ref, _ := cmd.Flags().GetString("ref")
			repo, _ := cmd.Flags().GetString("repo")
			runID, _ := cmd.Flags().GetInt64("run-id")
			poll, _ := cmd.Flags().GetInt("poll")
			output, _ := cmd.Flags().GetString("output")
			verbose, _ := cmd.Flags().GetBool("verbose")

			cfg, err := loadFileConfig(defaultConfigPath)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("workflow") && cfg.Workflow != "" {
				workflow = cfg.Workflow
			}
			if !cmd.Flags().Changed("repo") && cfg.Repo != "" {
				repo = cfg.Repo
			}
			if !cmd.Flags().Changed("poll") && cfg.Poll > 0 {
				poll = cfg.Poll
			}
			if !cmd.Flags().Changed("output") && cfg.Output != "" {
				output = cfg.Output
			}

			// Usage validation happens before any provider call.
			if runID == 0 && ref == "" {
				return &UsageError{Message: "--ref is required when --run-id is not provided"}
			}
			if poll <= 0 {
				return &UsageError{Message: fmt.Sprintf("--poll must be a positive number of seconds, got %d", poll)}
			}

			if !ghcli.IsAvailable() {
				return fmt.Errorf("GitHub CLI (gh) is required but not available")
			}

			return WatchWorkflowRun(cmd.Context(), &GHProvider{Verbose: verbose}, WatchOptions{
				Workflow:     workflow,
				Ref:          ref,
				Repo:         repo,
				RunID:        runID,
				PollInterval: time.Duration(poll) * time.Second,
				OutputRoot:   output,
				Verbose:      verbose,
			})
		},
	}

	cmd.Flags().StringP("workflow", "w", DefaultWorkflow, "Workflow name or file to run")
	cmd.Flags().StringP("ref", "r", "", "Git ref/branch to run against (required when starting a run)")
	cmd.Flags().String("repo", "", "GitHub repository (owner/name), defaults to the current repository")
	cmd.Flags().Int64("run-id", 0, "Existing run ID to monitor instead of triggering a new run")
	cmd.Flags().Int("poll", DefaultPollSeconds, "Poll interval in seconds")
	cmd.Flags().StringP("output", "o", DefaultOutputRoot, "Directory to store logs and artifacts under")
	cmd.Flags().BoolP("verbose", "v", false, "Enable verbose output")

	return cmd
}
