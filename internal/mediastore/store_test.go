package mediastore

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/helixir/book-catalog-service/internal/domain"
)

func newTestStore(t *testing.T) (*Store, afero.Fs) {
	t.Helper()
	fsys := afero.NewMemMapFs()
	return NewWithFs(fsys, "media", zerolog.Nop()), fsys
}

func TestStoreSaveLoad(t *testing.T) {
	ctx := context.Background()

	t.Run("round trip preserves bytes", func(t *testing.T) {
		store, _ := newTestStore(t)
		id := uuid.New().String()
		data := []byte{0x89, 'P', 'N', 'G', 0x00, 0xff}

		require.NoError(t, store.Save(ctx, id, data))

		got, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, data, got)
	})

	t.Run("blob lands under the root keyed by id", func(t *testing.T) {
		store, fsys := newTestStore(t)
		id := uuid.New().String()

		require.NoError(t, store.Save(ctx, id, []byte("x")))

		exists, err := afero.Exists(fsys, "media/"+id)
		require.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("no temp files remain after save", func(t *testing.T) {
		store, fsys := newTestStore(t)
		require.NoError(t, store.Save(ctx, uuid.New().String(), []byte("x")))

		entries, err := afero.ReadDir(fsys, "media")
		require.NoError(t, err)
		require.Len(t, entries, 1)
	})

	t.Run("missing blob is a typed not found", func(t *testing.T) {
		store, _ := newTestStore(t)
		_, err := store.Load(ctx, uuid.New().String())
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("empty payload round trips", func(t *testing.T) {
		store, _ := newTestStore(t)
		id := uuid.New().String()
		require.NoError(t, store.Save(ctx, id, []byte{}))

		got, err := store.Load(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, got)
	})
}

func TestStoreRejectsBadIDs(t *testing.T) {
	ctx := context.Background()
	store, fsys := newTestStore(t)

	bad := []string{
		"",
		"short",
		"../../../../etc/passwd",
		"..%2f..%2fescape-attempt-xx",
		"aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa",
	}
	for _, id := range bad {
		assert.ErrorIs(t, store.Save(ctx, id, []byte("x")), domain.ErrInvalidInput, "save %q", id)

		_, err := store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrInvalidInput, "load %q", id)
	}

	// Nothing may have been written for any rejected id.
	exists, err := afero.DirExists(fsys, "media")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStoreHonorsCancellation(t *testing.T) {
	store, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	id := uuid.New().String()
	assert.Error(t, store.Save(ctx, id, []byte("x")))

	_, err := store.Load(ctx, id)
	assert.Error(t, err)
}
