package store_test

import (
	"context"
	"testing"

	"github.com/katalvlaran/ptens/atoms"
	"github.com/katalvlaran/ptens/device"
	"github.com/katalvlaran/ptens/ptensors"
	"github.com/katalvlaran/ptens/session"
	"github.com/katalvlaran/ptens/store"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*session.Session, *ptensors.Pack1) {
	t.Helper()
	s, err := session.New(session.WithSeed(3))
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, s.Close()) })
	a, err := atoms.FromSlices([][]int{{0, 1, 2}, {5}})
	require.NoError(t, err)
	p, err := ptensors.Gaussian(s, a, 2, 1, device.Host)
	require.NoError(t, err)
	return s, p
}

// TestPutGetListDelete covers the in-memory lifecycle.
func TestPutGetListDelete(t *testing.T) {
	ctx := context.Background()
	s, p := setup(t)
	st, err := store.OpenInMemory()
	require.NoError(t, err)
	defer st.Close()

	require.NoError(t, st.Put(ctx, "b", p))
	require.NoError(t, st.Put(ctx, "a", p))
	names, err := st.List(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, names)

	q, err := st.Get(ctx, s, "a")
	require.NoError(t, err)
	require.True(t, p.Equal(q))

	require.NoError(t, st.Delete(ctx, "a"))
	_, err = st.Get(ctx, s, "a")
	require.ErrorIs(t, err, store.ErrNotFound)
	require.ErrorIs(t, st.Delete(ctx, "a"), store.ErrNotFound)

	require.ErrorIs(t, st.Put(ctx, "x/y", p), store.ErrBadName)
	require.ErrorIs(t, st.Put(ctx, "", p), store.ErrBadName)
}

// TestPersistsAcrossOpen reopens an on-disk store.
func TestPersistsAcrossOpen(t *testing.T) {
	ctx := context.Background()
	s, p := setup(t)
	dir := t.TempDir()

	st, err := store.Open(dir, store.WithSyncWrites(false))
	require.NoError(t, err)
	require.NoError(t, st.Put(ctx, "weights", p))
	require.NoError(t, st.Close())

	st, err = store.Open(dir)
	require.NoError(t, err)
	defer st.Close()
	q, err := st.Get(ctx, s, "weights")
	require.NoError(t, err)
	require.True(t, p.Equal(q))

	_, err = store.Open("")
	require.ErrorIs(t, err, store.ErrNoPath)
}
