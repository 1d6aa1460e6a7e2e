// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package kb

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/scholar-tui/internal/model"
)

func openTestLibrary(t *testing.T) *Library {
	t.Helper()
	lib, err := Open(filepath.Join(t.TempDir(), "library.db"))
	require.NoError(t, err)
	t.Cleanup(func() { lib.Close() })
	return lib
}

func samplePapers() []model.PaperReference {
	return []model.PaperReference{
		{
			Title:    "arXiv:1706.03762",
			URL:      "https://arxiv.org/abs/1706.03762",
			PDFURL:   "https://arxiv.org/pdf/1706.03762.pdf",
			Abstract: "Click to view paper details",
		},
		{
			Title:    "arXiv:2301.00001",
			URL:      "https://arxiv.org/abs/2301.00001",
			PDFURL:   "https://arxiv.org/pdf/2301.00001.pdf",
			Abstract: "Click to view paper details",
		},
	}
}

func TestSaveAndList(t *testing.T) {
	lib := openTestLibrary(t)
	ctx := context.Background()

	saved, err := lib.SavePapers(ctx, samplePapers())
	require.NoError(t, err)
	assert.Equal(t, 2, saved)

	entries, err := lib.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	for _, e := range entries {
		assert.NotZero(t, e.ID)
		assert.NotEmpty(t, e.Paper.Title)
		assert.False(t, e.SavedAt.IsZero())
	}
}

func TestSaveDeduplicatesByURL(t *testing.T) {
	lib := openTestLibrary(t)
	ctx := context.Background()

	_, err := lib.SavePapers(ctx, samplePapers())
	require.NoError(t, err)

	// Saving the same papers again inserts nothing.
	saved, err := lib.SavePapers(ctx, samplePapers())
	require.NoError(t, err)
	assert.Equal(t, 0, saved)

	count, err := lib.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestSaveEmptyIsNoOp(t *testing.T) {
	lib := openTestLibrary(t)
	saved, err := lib.SavePapers(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, saved)
}

func TestSearch(t *testing.T) {
	lib := openTestLibrary(t)
	ctx := context.Background()
	_, err := lib.SavePapers(ctx, samplePapers())
	require.NoError(t, err)

	entries, err := lib.Search(ctx, "1706")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "arXiv:1706.03762", entries[0].Paper.Title)

	entries, err = lib.Search(ctx, "arxiv")
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = lib.Search(ctx, "nothing-matches")
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDelete(t *testing.T) {
	lib := openTestLibrary(t)
	ctx := context.Background()
	_, err := lib.SavePapers(ctx, samplePapers())
	require.NoError(t, err)

	require.NoError(t, lib.Delete(ctx, "https://arxiv.org/abs/1706.03762"))

	count, err := lib.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Deleting an unknown URL is fine.
	require.NoError(t, lib.Delete(ctx, "https://arxiv.org/abs/9999.99999"))
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "library.db")
	ctx := context.Background()

	lib, err := Open(path)
	require.NoError(t, err)
	_, err = lib.SavePapers(ctx, samplePapers())
	require.NoError(t, err)
	require.NoError(t, lib.Close())

	reopened, err := Open(path)
	require.NoError(t, err)
	defer reopened.Close()

	count, err := reopened.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
