package favorites

import (
	"context"
	"testing"

	"recipebrowser"
	"recipebrowser/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregate(t *testing.T) {
	tests := []struct {
		name    string
		recipes []recipebrowser.Recipe
		want    []recipebrowser.AggregatedIngredient
	}{
		{
			name: "first seen order and measure",
			recipes: []recipebrowser.Recipe{
				recipe("a", "A", ing("eggs", "2")),
				recipe("b", "B", ing("eggs", "1"), ing("milk", "1 cup")),
			},
			want: []recipebrowser.AggregatedIngredient{
				{Name: "eggs", Measure: "2", Count: 2},
				{Name: "milk", Measure: "1 cup", Count: 1},
			},
		},
		{
			name: "units are never reconciled",
			recipes: []recipebrowser.Recipe{
				recipe("a", "A", ing("flour", "2 cups")),
				recipe("b", "B", ing("flour", "500 g")),
			},
			want: []recipebrowser.AggregatedIngredient{
				{Name: "flour", Measure: "2 cups", Count: 2},
			},
		},
		{
			name: "not alphabetical",
			recipes: []recipebrowser.Recipe{
				recipe("a", "A", ing("zucchini", "1"), ing("apple", "2")),
			},
			want: []recipebrowser.AggregatedIngredient{
				{Name: "zucchini", Measure: "1", Count: 1},
				{Name: "apple", Measure: "2", Count: 1},
			},
		},
		{
			name:    "no favorites",
			recipes: nil,
			want:    []recipebrowser.AggregatedIngredient{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Aggregate(tt.recipes))
		})
	}
}

func TestStore_AggregateIngredientsTracksMutations(t *testing.T) {
	ctx := context.Background()
	store := Load(ctx, storage.NewMemoryState(nil), quietLogger())

	a := recipe("a", "A", ing("eggs", "2"))
	b := recipe("b", "B", ing("eggs", "1"), ing("milk", "1 cup"))
	require.NoError(t, store.Add(ctx, a))
	require.NoError(t, store.Add(ctx, b))

	assert.Equal(t, []recipebrowser.AggregatedIngredient{
		{Name: "eggs", Measure: "2", Count: 2},
		{Name: "milk", Measure: "1 cup", Count: 1},
	}, store.AggregateIngredients())

	_, err := store.Toggle(ctx, a)
	require.NoError(t, err)

	assert.Equal(t, []recipebrowser.AggregatedIngredient{
		{Name: "eggs", Measure: "1", Count: 1},
		{Name: "milk", Measure: "1 cup", Count: 1},
	}, store.AggregateIngredients())
}
