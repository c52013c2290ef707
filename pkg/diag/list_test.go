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
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emitAt(t *testing.T, sink *FileSink, target string, at time.Time) string {
	t.Helper()
	path, err := sink.Emit(testContext(t), &Artifact{Reason: "no_match", Target: target, CreatedAt: at})
	require.NoError(t, err)
	return path
}

func TestList(t *testing.T) {
	ctx := testContext(t)
	dir := t.TempDir()
	sink := NewFileSink(dir)

	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	older := emitAt(t, sink, "/repo/pkg/server/handler.go", base)
	newer := emitAt(t, sink, "/repo/cmd/main.go", base.Add(time.Hour))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))

	entries, err := List(ctx, dir)
	require.NoError(t, err, "list should succeed")
	require.Len(t, entries, 2, "only decodable artifacts are listed")
	assert.Equal(t, newer, entries[0].Path, "newest first")
	assert.Equal(t, older, entries[1].Path)

	t.Run("missing_directory", func(t *testing.T) {
		entries, err := List(ctx, filepath.Join(dir, "absent"))
		require.NoError(t, err, "missing directory is empty")
		assert.Empty(t, entries)
	})

	t.Run("filter", func(t *testing.T) {
		got := Filter(entries, "HANDLER")
		require.Len(t, got, 1, "fuzzy filter ignores case")
		assert.Equal(t, older, got[0].Path)

		got = Filter(entries, "cmdmain")
		require.Len(t, got, 1, "characters need only appear in order")
		assert.Equal(t, newer, got[0].Path)

		assert.Len(t, Filter(entries, ""), 2, "empty query keeps everything")
		assert.Empty(t, Filter(entries, "zzz"), "unrelated query keeps nothing")
	})
}

func TestPrune(t *testing.T) {
	ctx := testContext(t)
	dir := t.TempDir()
	sink := NewFileSink(dir)

	old := emitAt(t, sink, "a.go", time.Now().Add(-48*time.Hour))
	fresh := emitAt(t, sink, "b.go", time.Now())
	stale := time.Now().Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(old, stale, stale))

	notes := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(notes, []byte("x"), 0644))
	require.NoError(t, os.Chtimes(notes, stale, stale))

	removed, err := Prune(ctx, dir, "*.json", 24*time.Hour)
	require.NoError(t, err, "prune should succeed")
	assert.Equal(t, []string{old}, removed, "only old artifacts are removed")

	assert.FileExists(t, fresh, "fresh artifact is kept")
	assert.FileExists(t, notes, "files outside the glob are kept")

	_, err = Prune(ctx, dir, "[", time.Hour)
	assert.Error(t, err, "bad glob should fail")
}
