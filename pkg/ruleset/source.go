package ruleset

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// FileSource loads rulesets from YAML files on disk. The path can be a
// single file or a directory; directories are walked and every .yaml/.yml
// file is loaded.
type FileSource struct {
	path   string
	logger *slog.Logger
}

// NewFileSource creates a file-based ruleset source.
func NewFileSource(path string, logger *slog.Logger) *FileSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileSource{
		path:   path,
		logger: logger.With("component", "ruleset.source"),
	}
}

// Path returns the configured source path.
func (s *FileSource) Path() string {
	return s.path
}

// Load loads all rulesets from the configured path. Files that fail to
// parse are skipped with a warning so one broken file does not take down
// every ruleset.
func (s *FileSource) Load(ctx context.Context) ([]*Ruleset, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path %q: %w", s.path, err)
	}

	var rulesets []*Ruleset

	if info.IsDir() {
		rulesets, err = s.loadDirectory(ctx)
		if err != nil {
			return nil, err
		}
	} else {
		rs, err := ParseFile(s.path)
		if err != nil {
			return nil, err
		}
		rulesets = []*Ruleset{rs}
	}

	s.logger.Info("loaded rulesets",
		"path", s.path,
		"ruleset_count", len(rulesets),
	)

	return rulesets, nil
}

// loadDirectory loads every ruleset file under a directory.
func (s *FileSource) loadDirectory(ctx context.Context) ([]*Ruleset, error) {
	var rulesets []*Ruleset

	err := filepath.Walk(s.path, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}

		ext := filepath.Ext(path)
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}

		rs, err := ParseFile(path)
		if err != nil {
			s.logger.Warn("failed to load ruleset file, skipping",
				"path", path,
				"error", err,
			)
			return nil
		}

		rulesets = append(rulesets, rs)
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %q: %w", s.path, err)
	}

	return rulesets, nil
}
