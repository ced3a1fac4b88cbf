package popup

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dastanaron/signupsaver/internal/logger"
	"github.com/dastanaron/signupsaver/internal/models"
	"github.com/dastanaron/signupsaver/internal/repository"
	"github.com/dastanaron/signupsaver/internal/service"
)

type fakeList struct {
	rows []models.Bookmark
}

func (l *fakeList) Append(b models.Bookmark)  { l.rows = append(l.rows, b) }
func (l *fakeList) Prepend(b models.Bookmark) { l.rows = append([]models.Bookmark{b}, l.rows...) }
func (l *fakeList) Remove(id string) {
	for i, b := range l.rows {
		if b.ID == id {
			l.rows = append(l.rows[:i], l.rows[i+1:]...)
			return
		}
	}
}

func (l *fakeList) titles() []string {
	var out []string
	for _, b := range l.rows {
		out = append(out, b.Title)
	}
	return out
}

type fakeStatus struct {
	keys []StatusKey
}

func (s *fakeStatus) Notify(key StatusKey) { s.keys = append(s.keys, key) }

func (s *fakeStatus) last() StatusKey {
	if len(s.keys) == 0 {
		return ""
	}
	return s.keys[len(s.keys)-1]
}

type tabFunc func() (models.Tab, error)

func (f tabFunc) ActiveTab(context.Context) (models.Tab, error) { return f() }

type fixture struct {
	store  *repository.MemoryStore
	list   *fakeList
	status *fakeStatus
	tab    models.Tab
	popup  *Popup
}

func newFixture(t *testing.T, strict bool) *fixture {
	t.Helper()
	f := &fixture{
		store:  repository.NewMemoryStore(),
		list:   &fakeList{},
		status: &fakeStatus{},
	}

	var validator service.TargetValidator
	if strict {
		v, err := service.NewPatternValidator(`^https?://(www\.)?signupgenius\.com/go/\S+$`)
		require.NoError(t, err)
		validator = v
	}

	f.popup = New(Deps{
		Folders:   service.NewFolderService(f.store, logger.Nop()),
		Bookmarks: service.NewBookmarkService(f.store, validator, logger.Nop()),
		Tabs:      tabFunc(func() (models.Tab, error) { return f.tab, nil }),
		List:      f.list,
		Status:    f.status,
	})
	return f
}

func (f *fixture) folderCount(t *testing.T) int {
	nodes, err := f.store.Search(context.Background(), repository.Query{Title: models.DefaultFolderName})
	require.NoError(t, err)
	return len(nodes)
}

func TestOpen_NoFolderRendersNothing(t *testing.T) {
	f := newFixture(t, false)

	require.NoError(t, f.popup.Open(context.Background()))
	assert.Empty(t, f.list.rows)
	assert.Equal(t, 0, f.folderCount(t), "opening must not create the folder")
	assert.Empty(t, f.status.keys)
}

func TestOpen_RendersFolderInStoreOrder(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	for _, title := range []string{"first", "second"} {
		f.tab = models.Tab{Title: title, URL: "https://example.com/" + title}
		_, err := f.popup.Save(ctx)
		require.NoError(t, err)
	}

	reopened := &fakeList{}
	f.popup.list = reopened
	require.NoError(t, f.popup.Open(ctx))
	assert.Equal(t, []string{"second", "first"}, reopened.titles())
}

func TestSave_CreatesFolderAndPrependsRow(t *testing.T) {
	f := newFixture(t, true)
	f.tab = models.Tab{Title: "Event Signup", URL: "https://www.signupgenius.com/go/ABC123"}

	res, err := f.popup.Save(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.OutcomeCreated, res.Outcome)
	assert.False(t, res.IsExistingBookmark())
	assert.Equal(t, 0, res.Bookmark.Index)
	assert.Equal(t, 1, f.folderCount(t))
	assert.Equal(t, []string{"Event Signup"}, f.list.titles())
	assert.Equal(t, StatusAddition, f.status.last())
}

func TestSave_DuplicateLeavesListAlone(t *testing.T) {
	f := newFixture(t, true)
	f.tab = models.Tab{Title: "Event Signup", URL: "https://www.signupgenius.com/go/ABC123"}
	ctx := context.Background()

	_, err := f.popup.Save(ctx)
	require.NoError(t, err)

	res, err := f.popup.Save(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.OutcomeDuplicate, res.Outcome)
	assert.True(t, res.IsExistingBookmark())
	assert.Len(t, f.list.rows, 1)
	assert.Equal(t, StatusExists, f.status.last())
}

func TestSave_RejectedTarget(t *testing.T) {
	f := newFixture(t, true)
	f.tab = models.Tab{Title: "Random Page", URL: "https://example.com"}

	res, err := f.popup.Save(context.Background())
	require.NoError(t, err)

	assert.Equal(t, models.OutcomeRejected, res.Outcome)
	assert.True(t, res.IsExistingBookmark())
	assert.Empty(t, res.Bookmark.Title)
	assert.Empty(t, res.Bookmark.URL)
	assert.Empty(t, f.list.rows)
	assert.Equal(t, StatusNotValidTarget, f.status.last())
}

func TestSave_TabFailure(t *testing.T) {
	f := newFixture(t, false)
	boom := errors.New("no active tab")
	f.popup.tabs = tabFunc(func() (models.Tab, error) { return models.Tab{}, boom })

	_, err := f.popup.Save(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, StatusUnknown, f.status.last())
	assert.Equal(t, 0, f.folderCount(t))
}

func TestDelete_RemovesRow(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	var ids []string
	for _, title := range []string{"a", "b", "c"} {
		f.tab = models.Tab{Title: title, URL: "https://example.com/" + title}
		res, err := f.popup.Save(ctx)
		require.NoError(t, err)
		ids = append(ids, res.Bookmark.ID)
	}

	require.NoError(t, f.popup.Delete(ctx, ids[1]))
	assert.Equal(t, []string{"c", "a"}, f.list.titles())
	assert.Equal(t, StatusRemoval, f.status.last())
}

func TestDelete_UnknownIDLeavesList(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()
	f.tab = models.Tab{Title: "a", URL: "https://example.com/a"}
	_, err := f.popup.Save(ctx)
	require.NoError(t, err)

	err = f.popup.Delete(ctx, "12345")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Len(t, f.list.rows, 1)
	assert.Equal(t, StatusUnknown, f.status.last())
}

func TestStaticTab(t *testing.T) {
	tab, err := StaticTab{Title: "t", URL: "u"}.ActiveTab(context.Background())
	require.NoError(t, err)
	assert.Equal(t, models.Tab{Title: "t", URL: "u"}, tab)
}
