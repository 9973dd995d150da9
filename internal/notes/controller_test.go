package notes

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/idilsaglam/notish/internal/model"
	"github.com/idilsaglam/notish/internal/store"
)

// fakeStore is an in-memory store.Store that records calls and can be told to fail.
type fakeStore struct {
	rows   []model.Note // oldest first
	nextID int64
	calls  int
	failOn map[string]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1, failOn: map[string]error{}}
}

func (f *fakeStore) hit(op string) error {
	f.calls++
	if err, ok := f.failOn[op]; ok {
		return store.Wrap(op, err)
	}
	return nil
}

func (f *fakeStore) index(id int64) int {
	for i, n := range f.rows {
		if n.ID == id {
			return i
		}
	}
	return -1
}

func (f *fakeStore) Insert(_ context.Context, text string) (int64, error) {
	if err := f.hit("insert"); err != nil {
		return 0, err
	}
	id := f.nextID
	f.nextID++
	f.rows = append(f.rows, model.Note{ID: id, Text: text, Timestamp: time.Unix(id, 0).UTC()})
	return id, nil
}

func (f *fakeStore) Get(_ context.Context, id int64) (model.Note, error) {
	if err := f.hit("get"); err != nil {
		return model.Note{}, err
	}
	i := f.index(id)
	if i < 0 {
		return model.Note{}, store.ErrNotFound
	}
	return f.rows[i], nil
}

func (f *fakeStore) All(context.Context) ([]model.Note, error) {
	if err := f.hit("list"); err != nil {
		return nil, err
	}
	out := make([]model.Note, 0, len(f.rows))
	for i := len(f.rows) - 1; i >= 0; i-- {
		out = append(out, f.rows[i])
	}
	return out, nil
}

func (f *fakeStore) Update(_ context.Context, n model.Note) error {
	if err := f.hit("update"); err != nil {
		return err
	}
	i := f.index(n.ID)
	if i < 0 {
		return store.ErrNotFound
	}
	f.rows[i].Text = n.Text
	return nil
}

func (f *fakeStore) Delete(_ context.Context, n model.Note) error {
	if err := f.hit("delete"); err != nil {
		return err
	}
	i := f.index(n.ID)
	if i < 0 {
		return store.ErrNotFound
	}
	f.rows = append(f.rows[:i], f.rows[i+1:]...)
	return nil
}

func (f *fakeStore) Count(context.Context) (int, error) {
	if err := f.hit("count"); err != nil {
		return 0, err
	}
	return len(f.rows), nil
}

// recordingView keeps the last signal of each kind.
type recordingView struct {
	list        []model.Note
	renders     int
	empty       bool
	validations []string
	errs        []error
}

func (v *recordingView) RenderList(n []model.Note)      { v.list = n; v.renders++ }
func (v *recordingView) ShowEmptyState(e bool)          { v.empty = e }
func (v *recordingView) ShowValidationError(msg string) { v.validations = append(v.validations, msg) }
func (v *recordingView) ShowError(err error)            { v.errs = append(v.errs, err) }

func setup(t *testing.T) (*Controller, *fakeStore, *recordingView) {
	t.Helper()
	fs := newFakeStore()
	v := &recordingView{}
	c := New(fs, zaptest.NewLogger(t).Sugar())
	c.Attach(v)
	require.NoError(t, c.Load(context.Background()))
	return c, fs, v
}

func texts(notes []model.Note) []string {
	out := make([]string, 0, len(notes))
	for _, n := range notes {
		out = append(out, n.Text)
	}
	return out
}

func TestLoad_EmptyStateShown(t *testing.T) {
	_, _, v := setup(t)
	assert.True(t, v.empty)
	assert.Empty(t, v.list)
}

func TestCreate_PrependsNewest(t *testing.T) {
	ctx := context.Background()
	c, fs, v := setup(t)

	for _, text := range []string{"Buy milk", "Call bank", "Water plants"} {
		n, err := c.Create(ctx, text)
		require.NoError(t, err)
		assert.Equal(t, text, c.Notes()[0].Text)
		assert.Equal(t, n, c.Notes()[0])

		all, err := fs.All(ctx)
		require.NoError(t, err)
		assert.Equal(t, text, all[0].Text)
	}

	assert.Equal(t, []string{"Water plants", "Call bank", "Buy milk"}, texts(v.list))
	assert.False(t, v.empty)
}

func TestUpdate_KeepsIDAndPosition(t *testing.T) {
	ctx := context.Background()
	c, fs, v := setup(t)
	_, err := c.Create(ctx, "Buy milk")
	require.NoError(t, err)
	_, err = c.Create(ctx, "Call bank")
	require.NoError(t, err)

	n, err := c.Update(ctx, 1, "Buy oat milk")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n.ID)

	got, err := fs.Get(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "Buy oat milk", got.Text)
	assert.Equal(t, []string{"Call bank", "Buy oat milk"}, texts(v.list))
}

func TestDelete_RemovesByPosition(t *testing.T) {
	ctx := context.Background()
	c, fs, v := setup(t)
	_, err := c.Create(ctx, "Buy milk")
	require.NoError(t, err)
	_, err = c.Create(ctx, "Call bank")
	require.NoError(t, err)

	before, _ := fs.Count(ctx)
	n, err := c.Delete(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "Call bank", n.Text)

	after, _ := fs.Count(ctx)
	assert.Equal(t, before-1, after)
	assert.Equal(t, []string{"Buy milk"}, texts(c.Notes()))

	_, err = c.Delete(ctx, 0)
	require.NoError(t, err)
	assert.True(t, v.empty)
}

func TestBlankText_NeverReachesStore(t *testing.T) {
	ctx := context.Background()
	c, fs, v := setup(t)
	_, err := c.Create(ctx, "keep")
	require.NoError(t, err)
	fs.calls = 0

	for _, blank := range []string{"", " ", "\t\n"} {
		_, err := c.Create(ctx, blank)
		assert.ErrorIs(t, err, ErrBlankNote)

		_, err = c.Update(ctx, 0, blank)
		assert.ErrorIs(t, err, ErrBlankNote)
	}

	assert.Zero(t, fs.calls)
	assert.Len(t, v.validations, 6)
	assert.Equal(t, ValidationMessage, v.validations[0])
	assert.Equal(t, []string{"keep"}, texts(c.Notes()))
}

func TestStorageFailure_MirrorUnchanged(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")

	for _, op := range []string{"insert", "update", "delete"} {
		t.Run(op, func(t *testing.T) {
			c, fs, v := setup(t)
			_, err := c.Create(ctx, "original")
			require.NoError(t, err)
			fs.failOn[op] = boom

			switch op {
			case "insert":
				_, err = c.Create(ctx, "new")
			case "update":
				_, err = c.Update(ctx, 0, "changed")
			case "delete":
				_, err = c.Delete(ctx, 0)
			}

			var se *store.StorageError
			require.ErrorAs(t, err, &se)
			assert.ErrorIs(t, err, boom)
			assert.Equal(t, []string{"original"}, texts(c.Notes()))
			require.Len(t, v.errs, 1)
			assert.False(t, v.empty)
		})
	}
}

func TestNotFound_Surfaced(t *testing.T) {
	ctx := context.Background()
	c, fs, v := setup(t)
	_, err := c.Create(ctx, "vanishes")
	require.NoError(t, err)

	// removed behind the controller's back
	fs.rows = nil

	_, err = c.Update(ctx, 0, "edit")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = c.Delete(ctx, 0)
	assert.ErrorIs(t, err, store.ErrNotFound)

	assert.Len(t, v.errs, 2)
	assert.Equal(t, []string{"vanishes"}, texts(c.Notes()))
}

func TestPositionOutOfRange(t *testing.T) {
	ctx := context.Background()
	c, fs, _ := setup(t)
	fs.calls = 0

	for _, pos := range []int{-1, 0, 3} {
		_, err := c.Delete(ctx, pos)
		var pe *PositionError
		require.ErrorAs(t, err, &pe, fmt.Sprint(pos))
		assert.Equal(t, 0, pe.Len)
	}
	assert.Zero(t, fs.calls)
}

func TestCreate_ReadBackFailureResyncs(t *testing.T) {
	ctx := context.Background()
	c, fs, v := setup(t)
	_, err := c.Create(ctx, "first")
	require.NoError(t, err)
	fs.failOn["get"] = errors.New("io")

	_, err = c.Create(ctx, "second")
	var se *store.StorageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "get", se.Op)

	count, err := fs.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, count, c.Len())
	assert.Equal(t, []string{"second", "first"}, texts(c.Notes()))
	assert.Equal(t, []string{"second", "first"}, texts(v.list))
	assert.Len(t, v.errs, 1)
}

func TestCreate_ReadBackAndResyncFail(t *testing.T) {
	ctx := context.Background()
	c, fs, _ := setup(t)
	_, err := c.Create(ctx, "first")
	require.NoError(t, err)
	fs.failOn["get"] = errors.New("io")
	fs.failOn["list"] = errors.New("io")

	_, err = c.Create(ctx, "second")
	require.Error(t, err)
	assert.Equal(t, []string{"first"}, texts(c.Notes()))
}
