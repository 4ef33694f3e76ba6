// Package ghcli wraps invocations of the GitHub CLI (gh), which this tool
// uses as its transport to the GitHub Actions API.
package ghcli

import (
	"bytes"
	"context"
	"os"
	"os/exec"

	"github.com/cli/go-gh/v2"
	"github.com/github/gh-watch-run/pkg/console"
	"github.com/github/gh-watch-run/pkg/logger"
	"github.com/github/gh-watch-run/pkg/tty"
)

var ghcliLog = logger.New("ghcli:ghcli")

// ExecContext creates an exec.Cmd for gh with context support and proper
// token configuration.
//
// Usage:
//
//	cmd := ghcli.ExecContext(ctx, "run", "cancel", "42")
//	err := cmd.Run()
func ExecContext(ctx context.Context, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, "gh", args...)
	ghcliLog.Printf("Prepared gh command: gh %v", args)

	// gh resolves auth from GH_TOKEN first; fall back to GITHUB_TOKEN when
	// only the latter is set (e.g. inside Actions runners).
	if os.Getenv("GH_TOKEN") == "" {
		if githubToken := os.Getenv("GITHUB_TOKEN"); githubToken != "" {
			ghcliLog.Print("GH_TOKEN not set, using GITHUB_TOKEN for gh CLI")
			cmd.Env = append(os.Environ(), "GH_TOKEN="+githubToken)
		}
	}

	return cmd
}

// ExecWithOutput executes a gh CLI command using go-gh/v2 and returns
// stdout and stderr separately. go-gh locates the gh binary the same way
// interactive gh invocations do, so the two buffers arrive unmixed and the
// stderr text can be surfaced in error messages.
func ExecWithOutput(ctx context.Context, args ...string) (stdout, stderr bytes.Buffer, err error) {
	ghcliLog.Printf("Executing gh CLI command via go-gh/v2: gh %v", args)
	return gh.ExecContext(ctx, args...)
}

// IsAvailable reports whether the gh CLI can be found on PATH.
func IsAvailable() bool {
	_, err := exec.LookPath("gh")
	return err == nil
}

// RunCombined executes a gh CLI command with a spinner and returns combined
// stdout+stderr output. The spinner is only shown in interactive terminals,
// giving feedback during network round trips. Use this when error messages
// from stderr matter.
//
// Usage:
//
//	output, err := ghcli.RunCombined(ctx, "Triggering workflow...", "workflow", "run", "CI")
func RunCombined(ctx context.Context, spinnerMessage string, args ...string) ([]byte, error) {
	cmd := ExecContext(ctx, args...)

	if tty.IsStderrTerminal() {
		spinner := console.NewSpinner(spinnerMessage)
		spinner.Start()
		output, err := cmd.CombinedOutput()
		spinner.Stop()
		return output, err
	}

	return cmd.CombinedOutput()
}
