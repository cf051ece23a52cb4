package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

type RecipeDetail struct {
	lister    Lister
	favorites Favorites
}

func NewRecipeDetail(lister Lister, favorites Favorites) *RecipeDetail {
	return &RecipeDetail{lister: lister, favorites: favorites}
}

func (t *RecipeDetail) Name() string  { return "recipe_detail" }
func (t *RecipeDetail) Title() string { return "Get Recipe" }
func (t *RecipeDetail) Description() string {
	return "Returns the full recipe for an id, including ingredients and whether it is a favorite."
}

func (t *RecipeDetail) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"id": {Type: "string"},
		},
		Required: []string{"id"},
	}
}

func (t *RecipeDetail) OutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"recipe":    recipeSchema(),
			"not_found": {Type: "boolean"},
			"favorite":  {Type: "boolean"},
		},
		Required: []string{"not_found", "favorite"},
	}
}

func (t *RecipeDetail) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	id, err := requiredStringArg(input, "id")
	if err != nil {
		return nil, err
	}

	d, err := t.lister.Detail(ctx, id)
	if err != nil {
		return nil, err
	}

	out, err := toMap(d)
	if err != nil {
		return nil, err
	}
	out["favorite"] = t.favorites.IsFavorite(id)
	return out, nil
}
