package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

const configFileName = "rrgen.toml"

// fileConfig is the content of rrgen.toml. All keys are optional:
//
//	patterns = ["./..."]
//	tests = true
//	output-dir = "gen"
//	max-rounds = 3
//	parallel = 4
//
//	[options]
//	allowedTypes = "string,time.Time"
type fileConfig struct {
	Patterns  []string          `toml:"patterns"`
	Tests     bool              `toml:"tests"`
	OutputDir string            `toml:"output-dir"`
	OutputURL string            `toml:"output-url"`
	MaxRounds int               `toml:"max-rounds"`
	Parallel  int               `toml:"parallel"`
	Options   map[string]string `toml:"options"`
}

// findConfig looks for rrgen.toml in startDir and its parents.
func findConfig(startDir string) (string, bool, error) {
	if startDir == "" {
		startDir = "."
	}
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", false, fmt.Errorf("failed to resolve start directory: %w", err)
	}
	for {
		candidate := filepath.Join(dir, configFileName)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true, nil
		} else if !errors.Is(err, os.ErrNotExist) {
			return "", false, fmt.Errorf("failed to stat %q: %w", candidate, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return "", false, nil
}

func loadConfig(path string) (fileConfig, error) {
	var cfg fileConfig
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return fileConfig{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fileConfig{}, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return cfg, nil
}

// parseOptionFlags turns -A key=value flags into an options map.
func parseOptionFlags(flags []string) (map[string]string, error) {
	opts := make(map[string]string, len(flags))
	for _, f := range flags {
		k, v, ok := strings.Cut(f, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid option %q: expecting key=value", f)
		}
		opts[k] = v
	}
	return opts, nil
}
