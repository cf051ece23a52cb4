package favorites

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"recipebrowser"
	"recipebrowser/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func recipe(id, name string, ings ...recipebrowser.Ingredient) recipebrowser.Recipe {
	return recipebrowser.Recipe{ID: id, Name: name, Ingredients: ings}
}

func ing(name, measure string) recipebrowser.Ingredient {
	return recipebrowser.Ingredient{Name: name, Measure: measure}
}

func TestLoad(t *testing.T) {
	persisted, err := json.Marshal([]recipebrowser.Recipe{
		recipe("1", "Omelette", ing("Eggs", "2")),
		recipe("2", "Pancakes", ing("Milk", "1 cup")),
	})
	require.NoError(t, err)

	tests := []struct {
		name    string
		state   storage.State
		wantIDs []string
	}{
		{
			name:    "persisted favorites",
			state:   storage.NewMemoryState(persisted),
			wantIDs: []string{"1", "2"},
		},
		{
			name:    "nothing persisted",
			state:   storage.NewMemoryState(nil),
			wantIDs: nil,
		},
		{
			name:    "malformed document",
			state:   storage.NewMemoryState([]byte("{not json")),
			wantIDs: nil,
		},
		{
			name:    "wrong shape",
			state:   storage.NewMemoryState([]byte(`{"favorites": true}`)),
			wantIDs: nil,
		},
		{
			name:    "unreadable state",
			state:   storage.NewMemoryStateWithErrors(errors.New("disk on fire"), nil),
			wantIDs: nil,
		},
		{
			name:    "duplicates and blank ids are dropped",
			state:   storage.NewMemoryState([]byte(`[{"id":"1","name":"a"},{"id":"1","name":"b"},{"id":"","name":"c"}]`)),
			wantIDs: []string{"1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := Load(context.Background(), tt.state, quietLogger())

			var ids []string
			for _, r := range store.List() {
				ids = append(ids, r.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestStore_Toggle(t *testing.T) {
	ctx := context.Background()

	t.Run("double toggle restores membership", func(t *testing.T) {
		for _, initial := range [][]recipebrowser.Recipe{nil, {recipe("1", "Omelette")}} {
			b, _ := json.Marshal(initial)
			store := Load(ctx, storage.NewMemoryState(b), quietLogger())
			before := store.IsFavorite("1")

			_, err := store.Toggle(ctx, recipe("1", "Omelette"))
			require.NoError(t, err)
			assert.NotEqual(t, before, store.IsFavorite("1"))

			_, err = store.Toggle(ctx, recipe("1", "Omelette"))
			require.NoError(t, err)
			assert.Equal(t, before, store.IsFavorite("1"))
		}
	})

	t.Run("reports resulting membership", func(t *testing.T) {
		store := Load(ctx, storage.NewMemoryState(nil), quietLogger())

		added, err := store.Toggle(ctx, recipe("1", "Omelette"))
		require.NoError(t, err)
		assert.True(t, added)

		added, err = store.Toggle(ctx, recipe("1", "Omelette"))
		require.NoError(t, err)
		assert.False(t, added)
	})

	t.Run("removal keeps insertion order of the rest", func(t *testing.T) {
		store := Load(ctx, storage.NewMemoryState(nil), quietLogger())
		for _, id := range []string{"1", "2", "3"} {
			_, err := store.Toggle(ctx, recipe(id, "r"+id))
			require.NoError(t, err)
		}

		_, err := store.Toggle(ctx, recipe("2", "r2"))
		require.NoError(t, err)

		list := store.List()
		require.Len(t, list, 2)
		assert.Equal(t, "1", list[0].ID)
		assert.Equal(t, "3", list[1].ID)
		assert.True(t, store.IsFavorite("3"))
		assert.False(t, store.IsFavorite("2"))
	})

	t.Run("every mutation persists", func(t *testing.T) {
		state := storage.NewMemoryState(nil)
		store := Load(ctx, state, quietLogger())

		_, err := store.Toggle(ctx, recipe("1", "Omelette"))
		require.NoError(t, err)
		_, err = store.Toggle(ctx, recipe("1", "Omelette"))
		require.NoError(t, err)

		assert.Equal(t, 2, state.Saves())
		assert.JSONEq(t, `[]`, string(state.Bytes()))
	})

	t.Run("failed write rolls back", func(t *testing.T) {
		store := Load(ctx, storage.NewMemoryStateWithErrors(nil, errors.New("read-only")), quietLogger())

		added, err := store.Toggle(ctx, recipe("1", "Omelette"))
		require.Error(t, err)
		assert.False(t, added)
		assert.Contains(t, err.Error(), "save favorites")
		assert.False(t, store.IsFavorite("1"))
		assert.Equal(t, 0, store.Len())
	})

	t.Run("invalid recipes are rejected", func(t *testing.T) {
		store := Load(ctx, storage.NewMemoryState(nil), quietLogger())
		for _, r := range []recipebrowser.Recipe{
			recipe("", "Nameless"),
			recipe("1", ""),
			recipe("2", "Stew", ing("", "1 tbsp")),
		} {
			_, err := store.Toggle(ctx, r)
			assert.Error(t, err)
		}
		assert.Zero(t, store.Len())
	})
}

func TestStore_AddRemove(t *testing.T) {
	ctx := context.Background()
	state := storage.NewMemoryState(nil)
	store := Load(ctx, state, quietLogger())

	require.NoError(t, store.Add(ctx, recipe("1", "Omelette")))
	require.NoError(t, store.Add(ctx, recipe("1", "Omelette (again)")))
	assert.Equal(t, 1, store.Len())
	assert.Equal(t, "Omelette", store.List()[0].Name)
	assert.Equal(t, 1, state.Saves())

	require.NoError(t, store.Remove(ctx, "missing"))
	assert.Equal(t, 1, state.Saves())

	require.NoError(t, store.Remove(ctx, "1"))
	assert.Equal(t, 0, store.Len())
	assert.Equal(t, 2, state.Saves())
}

func TestStore_PersistenceRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "favorites.json")

	r := recipe("52772", "Teriyaki Chicken Casserole", ing("soy sauce", "3/4 cup"), ing("water", "1/2 cup"))
	r.Category = "Chicken"
	r.Video = "https://www.youtube.com/watch?v=4aZr5hZXP_s"

	store := Load(ctx, storage.NewFileState(path), quietLogger())
	_, err := store.Toggle(ctx, r)
	require.NoError(t, err)

	reloaded := Load(ctx, storage.NewFileState(path), quietLogger())
	require.True(t, reloaded.IsFavorite("52772"))
	assert.Equal(t, []recipebrowser.Recipe{r}, reloaded.List())
}

func TestStore_ListIsACopy(t *testing.T) {
	ctx := context.Background()
	store := Load(ctx, storage.NewMemoryState(nil), quietLogger())
	require.NoError(t, store.Add(ctx, recipe("1", "Omelette")))

	list := store.List()
	list[0].Name = "changed"

	assert.Equal(t, "Omelette", store.List()[0].Name)
}
