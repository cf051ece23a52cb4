package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"recipebrowser/listing"
)

type RecipeList struct{ lister Lister }

func NewRecipeList(lister Lister) *RecipeList { return &RecipeList{lister: lister} }

func (t *RecipeList) Name() string  { return "recipe_list" }
func (t *RecipeList) Title() string { return "List Recipes" }
func (t *RecipeList) Description() string {
	return "Returns one page of recipes. A search term wins over the category; with neither, all categories are listed."
}

func (t *RecipeList) InputSchema() *jsonschema.Schema {
	minPage := 1.0
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"search":   {Type: "string"},
			"category": {Type: "string"},
			"page":     {Type: "integer", Minimum: &minPage},
		},
	}
}

func (t *RecipeList) OutputSchema() *jsonschema.Schema {
	minPage := 1.0
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"items":       {Type: "array", Items: recipeSchema()},
			"page":        {Type: "integer", Minimum: &minPage},
			"total_pages": {Type: "integer", Minimum: &minPage},
			"total":       {Type: "integer"},
			"source":      {Type: "string"},
			"reset_page":  {Type: "boolean"},
		},
		Required: []string{"items", "page", "total_pages", "total", "source"},
	}
}

func (t *RecipeList) Run(ctx context.Context, input map[string]any) (map[string]any, error) {
	page, err := intArg(input, "page", 1)
	if err != nil {
		return nil, err
	}

	res, err := t.lister.Resolve(ctx, listing.Query{
		Search:   stringArg(input, "search"),
		Category: stringArg(input, "category"),
		Page:     page,
	})
	if err != nil {
		return nil, err
	}
	return toMap(res)
}
