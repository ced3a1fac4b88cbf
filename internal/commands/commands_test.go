package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dastanaron/signupsaver/internal/config"
	"github.com/dastanaron/signupsaver/internal/logger"
	"github.com/dastanaron/signupsaver/internal/models"
	"github.com/dastanaron/signupsaver/internal/parser"
	"github.com/dastanaron/signupsaver/internal/popup"
	"github.com/dastanaron/signupsaver/internal/repository"
	"github.com/dastanaron/signupsaver/internal/service"
)

type env struct {
	store     *repository.MemoryStore
	folders   *service.FolderService
	bookmarks *service.BookmarkService
	out       *bytes.Buffer
}

func newEnv(t *testing.T, strict bool) *env {
	t.Helper()
	store := repository.NewMemoryStore()

	var v service.TargetValidator
	if strict {
		pv, err := service.NewPatternValidator(config.DefaultTargetPattern)
		require.NoError(t, err)
		v = pv
	}

	return &env{
		store:     store,
		folders:   service.NewFolderService(store, logger.Nop()),
		bookmarks: service.NewBookmarkService(store, v, logger.Nop()),
		out:       &bytes.Buffer{},
	}
}

func (e *env) folderBookmarks(t *testing.T) []models.Bookmark {
	t.Helper()
	ctx := context.Background()
	id, err := e.folders.Find(ctx, models.DefaultFolderName)
	require.NoError(t, err)
	if id == "" {
		return nil
	}
	list, err := e.bookmarks.List(ctx, id)
	require.NoError(t, err)
	return list
}

const importFile = `<!DOCTYPE NETSCAPE-Bookmark-file-1>
<DL><p>
    <DT><A HREF="https://www.signupgenius.com/go/ONE">Potluck</A>
    <DT><A HREF="https://www.signupgenius.com/go/TWO">Car Wash</A>
    <DT><A HREF="https://www.signupgenius.com/go/ONE">Potluck</A>
    <DT><A HREF="https://example.com">Not a target</A>
</DL><p>
`

func TestImport(t *testing.T) {
	e := newEnv(t, true)
	cmd := NewImportCommand(models.DefaultFolderName, e.folders, e.bookmarks, e.out)

	stats, err := cmd.Import(context.Background(), strings.NewReader(importFile))
	require.NoError(t, err)

	assert.Equal(t, ImportStats{Created: 2, Duplicate: 1, Rejected: 1}, stats)
	assert.Contains(t, e.out.String(), "Imported 2 bookmarks")

	list := e.folderBookmarks(t)
	require.Len(t, list, 2)
	assert.Equal(t, "Car Wash", list[0].Title)
	assert.Equal(t, "Potluck", list[1].Title)
}

func TestImport_NoLinks(t *testing.T) {
	e := newEnv(t, false)
	cmd := NewImportCommand(models.DefaultFolderName, e.folders, e.bookmarks, e.out)

	stats, err := cmd.Import(context.Background(), strings.NewReader("<p>empty</p>"))
	require.NoError(t, err)
	assert.Equal(t, ImportStats{}, stats)
	assert.Contains(t, e.out.String(), "No bookmarks found.")

	id, err := e.folders.Find(context.Background(), models.DefaultFolderName)
	require.NoError(t, err)
	assert.Empty(t, id, "an empty import must not create the folder")
}

func TestImport_MissingFile(t *testing.T) {
	e := newEnv(t, false)
	cmd := NewImportCommand(models.DefaultFolderName, e.folders, e.bookmarks, e.out)

	_, err := cmd.Execute(context.Background(), filepath.Join(t.TempDir(), "missing.html"))
	assert.Error(t, err)
}

func TestExport_RoundTrip(t *testing.T) {
	e := newEnv(t, false)
	ctx := context.Background()

	folderID, err := e.folders.Resolve(ctx, models.DefaultFolderName)
	require.NoError(t, err)
	_, err = e.bookmarks.Save(ctx, "Fish & Chips", "https://example.com/?a=1&b=2", folderID)
	require.NoError(t, err)
	_, err = e.bookmarks.Save(ctx, "Potluck", "https://www.signupgenius.com/go/ONE", folderID)
	require.NoError(t, err)

	var buf bytes.Buffer
	n, err := NewExportCommand(models.DefaultFolderName, e.folders, e.bookmarks, e.out).Export(ctx, &buf)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.True(t, strings.HasPrefix(buf.String(), "<!DOCTYPE NETSCAPE-Bookmark-file-1>"))
	assert.Contains(t, buf.String(), "<H3>SignUpSaver</H3>")
	assert.Contains(t, buf.String(), "Fish &amp; Chips")

	tabs, err := parser.ParseBookmarksHTML(&buf)
	require.NoError(t, err)
	assert.Equal(t, []models.Tab{
		{Title: "Potluck", URL: "https://www.signupgenius.com/go/ONE"},
		{Title: "Fish & Chips", URL: "https://example.com/?a=1&b=2"},
	}, tabs)
}

func TestExport_MissingFolder(t *testing.T) {
	e := newEnv(t, false)

	var buf bytes.Buffer
	n, err := NewExportCommand(models.DefaultFolderName, e.folders, e.bookmarks, e.out).Export(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
	assert.Contains(t, buf.String(), "<H3>SignUpSaver</H3>")
}

func TestExport_Execute(t *testing.T) {
	e := newEnv(t, false)
	path := filepath.Join(t.TempDir(), "out.html")

	require.NoError(t, NewExportCommand(models.DefaultFolderName, e.folders, e.bookmarks, e.out).Execute(context.Background(), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "NETSCAPE-Bookmark-file-1")
	assert.Contains(t, e.out.String(), "Exported 0 bookmarks")
}

func TestClearDoubles(t *testing.T) {
	e := newEnv(t, false)
	ctx := context.Background()

	folderID, err := e.folders.Resolve(ctx, models.DefaultFolderName)
	require.NoError(t, err)

	// duplicates can only come from direct store writes, e.g. another process
	for _, b := range []struct{ title, url string }{
		{"Potluck", "https://www.signupgenius.com/go/ONE"},
		{"Car Wash", "https://www.signupgenius.com/go/TWO"},
		{"Potluck", "https://www.signupgenius.com/go/ONE"},
		{"Potluck", "https://www.signupgenius.com/go/ONE"},
	} {
		_, err := e.store.Create(ctx, repository.CreateDetails{ParentID: folderID, Title: b.title, URL: b.url})
		require.NoError(t, err)
	}

	deleted, err := NewClearDoublesCommand(models.DefaultFolderName, e.folders, e.bookmarks, e.out).Execute(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	list := e.folderBookmarks(t)
	require.Len(t, list, 2)
	assert.Equal(t, "Potluck", list[0].Title)
	assert.Equal(t, "Car Wash", list[1].Title)
	assert.Contains(t, e.out.String(), "Deleted 2 duplicate bookmark(s).")
}

func TestClearDoubles_NoFolder(t *testing.T) {
	e := newEnv(t, false)

	deleted, err := NewClearDoublesCommand(models.DefaultFolderName, e.folders, e.bookmarks, e.out).Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)
	assert.Contains(t, e.out.String(), "No duplicate bookmarks found.")
}

func TestConsoleSurface(t *testing.T) {
	var buf bytes.Buffer
	s := NewConsoleSurface(&buf)

	s.Prepend(models.Bookmark{ID: "3", Title: "Potluck", URL: "https://www.signupgenius.com/go/ONE"})
	s.Remove("3")
	s.Notify(popup.StatusAddition)

	assert.Equal(t, "3\tPotluck\thttps://www.signupgenius.com/go/ONE\nBookmark added\n", buf.String())
}
