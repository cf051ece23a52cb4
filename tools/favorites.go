package tools

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

type FavoriteToggle struct {
	lister    Lister
	favorites Favorites
}

func NewFavoriteToggle(lister Lister, favorites Favorites) *FavoriteToggle {
	return &FavoriteToggle{lister: lister, favorites: favorites}
}

func (t *FavoriteToggle) Name() string  { return "favorite_toggle" }
func (t *FavoriteToggle) Title() string { return "Toggle Favorite" }
func (t *FavoriteToggle) Description() string {
	return "Adds the recipe to favorites, or removes it if it is already there."
}

func (t *FavoriteToggle) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"id": {Type: "string"},
		},
		Required: []string{"id"},
	}
}

func (t *FavoriteToggle) OutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"id":       {Type: "string"},
			"favorite": {Type: "boolean"},
		},
		Required: []string{"id", "favorite"},
	}
}

func (t *FavoriteToggle) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	id, err := requiredStringArg(input, "id")
	if err != nil {
		return nil, err
	}

	// Removal works from the stored snapshot, so a recipe the catalog lost can
	// still be dropped.
	if t.favorites.IsFavorite(id) {
		if err := t.favorites.Remove(ctx, id); err != nil {
			return nil, err
		}
		return map[string]any{"id": id, "favorite": false}, nil
	}

	// Favorites hold full recipes so the shopping list has ingredients.
	d, err := t.lister.Detail(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.NotFound {
		return nil, fmt.Errorf("recipe %s not found", id)
	}

	favorite, err := t.favorites.Toggle(ctx, *d.Recipe)
	if err != nil {
		return nil, err
	}
	return map[string]any{"id": id, "favorite": favorite}, nil
}

type FavoriteIngredients struct{ favorites Favorites }

func NewFavoriteIngredients(favorites Favorites) *FavoriteIngredients {
	return &FavoriteIngredients{favorites: favorites}
}

func (t *FavoriteIngredients) Name() string  { return "favorite_ingredients" }
func (t *FavoriteIngredients) Title() string { return "Favorites Shopping List" }
func (t *FavoriteIngredients) Description() string {
	return "Combines the ingredients of all favorite recipes, counting how many recipes use each."
}

func (t *FavoriteIngredients) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object"}
}

func (t *FavoriteIngredients) OutputSchema() *jsonschema.Schema {
	minCount := 1.0
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"favorites": {Type: "integer"},
			"ingredients": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"ingredient": {Type: "string"},
						"measure":    {Type: "string"},
						"count":      {Type: "integer", Minimum: &minCount},
					},
					Required: []string{"ingredient", "measure", "count"},
				},
			},
		},
		Required: []string{"favorites", "ingredients"},
	}
}

func (t *FavoriteIngredients) Run(_ context.Context, _ map[string]any) (map[string]any, error) {
	return toMap(struct {
		Favorites   int `json:"favorites"`
		Ingredients any `json:"ingredients"`
	}{
		Favorites:   len(t.favorites.List()),
		Ingredients: t.favorites.AggregateIngredients(),
	})
}
