package tools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"
)

type CategoryList struct{ lister Lister }

func NewCategoryList(lister Lister) *CategoryList { return &CategoryList{lister: lister} }

func (t *CategoryList) Name() string        { return "category_list" }
func (t *CategoryList) Title() string       { return "List Categories" }
func (t *CategoryList) Description() string { return "Returns the recipe category names." }

func (t *CategoryList) InputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{Type: "object"}
}

func (t *CategoryList) OutputSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"categories": {Type: "array", Items: &jsonschema.Schema{Type: "string"}},
		},
		Required: []string{"categories"},
	}
}

func (t *CategoryList) Run(ctx context.Context, _ map[string]any) (map[string]any, error) {
	cats, err := t.lister.Categories(ctx)
	if err != nil {
		return nil, err
	}
	if cats == nil {
		cats = []string{}
	}
	return map[string]any{"categories": cats}, nil
}
