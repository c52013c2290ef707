// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package diag

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Entry is an artifact on disk.
type Entry struct {
	Path     string
	ModTime  time.Time
	Artifact *Artifact
}

// List reads the artifacts in dir, newest first. A missing directory has no
// artifacts. Files that do not decode are skipped.
func List(ctx context.Context, dir string) ([]Entry, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Errorf("reading diagnostics directory: %w", err)
	}

	logger := zerolog.Ctx(ctx)
	var entries []Entry
	for _, f := range files {
		if f.IsDir() || !strings.HasSuffix(f.Name(), ".json") {
			continue
		}
		path := filepath.Join(dir, f.Name())

		info, err := f.Info()
		if err != nil {
			return nil, errors.Errorf("reading %s: %w", path, err)
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Errorf("reading %s: %w", path, err)
		}
		var a Artifact
		if err := json.Unmarshal(data, &a); err != nil {
			logger.Debug().Err(err).Str("path", path).Msg("skipping undecodable artifact")
			continue
		}
		entries = append(entries, Entry{Path: path, ModTime: info.ModTime(), Artifact: &a})
	}

	slices.SortFunc(entries, func(a, b Entry) int {
		if c := b.Artifact.CreatedAt.Compare(a.Artifact.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.Path, b.Path)
	})
	return entries, nil
}

// Filter keeps entries whose target fuzzily contains query, ignoring case.
// An empty query keeps everything.
func Filter(entries []Entry, query string) []Entry {
	if query == "" {
		return entries
	}
	var out []Entry
	for _, e := range entries {
		if fuzzy.MatchFold(query, e.Artifact.Target) {
			out = append(out, e)
		}
	}
	return out
}

// Prune removes files in dir matching glob that were last modified more than
// olderThan ago, and returns their paths.
func Prune(ctx context.Context, dir, glob string, olderThan time.Duration) ([]string, error) {
	if !doublestar.ValidatePattern(glob) {
		return nil, errors.Errorf("invalid glob %q", glob)
	}

	matches, err := doublestar.Glob(os.DirFS(dir), glob)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Errorf("matching %q: %w", glob, err)
	}

	cutoff := time.Now().Add(-olderThan)
	var removed []string
	for _, m := range matches {
		path := filepath.Join(dir, filepath.FromSlash(m))
		info, err := os.Lstat(path)
		if err != nil {
			return removed, errors.Errorf("checking %s: %w", path, err)
		}
		if !info.Mode().IsRegular() || !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			return removed, errors.Errorf("removing %s: %w", path, err)
		}
		removed = append(removed, path)
	}

	zerolog.Ctx(ctx).Debug().Str("dir", dir).Int("removed", len(removed)).Msg("pruned diagnostics")
	return removed, nil
}
