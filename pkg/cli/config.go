package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/github/gh-watch-run/pkg/fileutil"
	"github.com/github/gh-watch-run/pkg/logger"
	"github.com/goccy/go-yaml"
)

var configLog = logger.New("cli:config")

// defaultConfigPath is the repo-local defaults file, read relative to the
// working directory like the rest of the .github tree.
var defaultConfigPath = filepath.Join(".github", "watch-run.yml")

// fileConfig holds optional defaults read from .github/watch-run.yml.
// Explicit command-line flags always win over these.
type fileConfig struct {
	Workflow string `yaml:"workflow"`
	Repo     string `yaml:"repo"`
	Poll     int    `yaml:"poll"`
	Output   string `yaml:"output"`
}

// loadFileConfig reads the optional config file. A missing file yields an
// empty config, not an error; a malformed one is reported so a typo does
// not silently fall back to built-in defaults.
func loadFileConfig(path string) (fileConfig, error) {
	var cfg fileConfig

	if !fileutil.FileExists(path) {
		configLog.Printf("No config file at %s", path)
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	configLog.Printf("Loaded config from %s: workflow=%q, repo=%q, poll=%d, output=%q", path, cfg.Workflow, cfg.Repo, cfg.Poll, cfg.Output)
	return cfg, nil
}
