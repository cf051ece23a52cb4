// Package tools exposes browse and favorites operations as named tools with JSON
// schemas, so they can be driven from the CLI or a function-calling model.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/jsonschema"

	"recipebrowser"
	"recipebrowser/listing"
)

type Tool interface {
	Name() string
	Title() string
	Description() string
	InputSchema() *jsonschema.Schema
	OutputSchema() *jsonschema.Schema
	Run(ctx context.Context, input map[string]any) (output map[string]any, err error)
}

type Call struct {
	Name      string         `json:"name"`
	Input     map[string]any `json:"input"`
	ToolUseID string         `json:"tool_use_id,omitempty"`
}

// Lister is the part of the list controller the tools use.
type Lister interface {
	Resolve(ctx context.Context, q listing.Query) (listing.Result, error)
	Detail(ctx context.Context, id string) (listing.Detail, error)
	Categories(ctx context.Context) ([]string, error)
}

// Favorites is the part of the favorites store the tools use.
type Favorites interface {
	Toggle(ctx context.Context, recipe recipebrowser.Recipe) (bool, error)
	Remove(ctx context.Context, id string) error
	IsFavorite(id string) bool
	List() []recipebrowser.Recipe
	AggregateIngredients() []recipebrowser.AggregatedIngredient
}

// toMap marshals v -> map[string]any to keep outputs uniform.
func toMap(v any) (map[string]any, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode output: %w", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return nil, fmt.Errorf("decode output: %w", err)
	}
	return m, nil
}

func stringArg(input map[string]any, name string) string {
	s, _ := input[name].(string)
	return strings.TrimSpace(s)
}

func requiredStringArg(input map[string]any, name string) (string, error) {
	s := stringArg(input, name)
	if s == "" {
		return "", fmt.Errorf("missing required input %q", name)
	}
	return s, nil
}

// intArg reads a whole number. Decoded JSON numbers arrive as float64.
func intArg(input map[string]any, name string, def int) (int, error) {
	switch v := input[name].(type) {
	case nil:
		return def, nil
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case float64:
		if v != math.Trunc(v) {
			return 0, fmt.Errorf("input %q must be a whole number, got %v", name, v)
		}
		return int(v), nil
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, fmt.Errorf("input %q: %w", name, err)
		}
		return int(n), nil
	default:
		return 0, fmt.Errorf("input %q must be a number, got %T", name, v)
	}
}

func recipeSchema() *jsonschema.Schema {
	return &jsonschema.Schema{
		Type: "object",
		Properties: map[string]*jsonschema.Schema{
			"id":        {Type: "string"},
			"name":      {Type: "string"},
			"category":  {Type: "string"},
			"area":      {Type: "string"},
			"thumbnail": {Type: "string"},
			"ingredients": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type: "object",
					Properties: map[string]*jsonschema.Schema{
						"ingredient": {Type: "string"},
						"measure":    {Type: "string"},
					},
				},
			},
		},
		Required: []string{"id", "name"},
	}
}
