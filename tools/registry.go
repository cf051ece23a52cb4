package tools

import (
	"context"
	"fmt"
	"slices"
	"strings"
)

// Registry maps tool names to implementations
type Registry map[string]Tool

// NewRegistry creates a registry with the browse and favorites tools.
func NewRegistry(lister Lister, favorites Favorites) (*Registry, error) {
	if lister == nil {
		return nil, fmt.Errorf("tools: lister is required")
	}
	if favorites == nil {
		return nil, fmt.Errorf("tools: favorites is required")
	}

	all := []Tool{
		NewRecipeList(lister),
		NewRecipeDetail(lister, favorites),
		NewCategoryList(lister),
		NewFavoriteToggle(lister, favorites),
		NewFavoriteIngredients(favorites),
	}

	registry := make(Registry, len(all))
	for _, tool := range all {
		registry[tool.Name()] = tool
	}
	return &registry, nil
}

// GetTools returns all tools in the registry sorted by name
func (r *Registry) GetTools() []Tool {
	tools := make([]Tool, 0, len(*r))
	for _, tool := range *r {
		tools = append(tools, tool)
	}
	slices.SortFunc(tools, func(a, b Tool) int { return strings.Compare(a.Name(), b.Name()) })
	return tools
}

// GetTool retrieves a tool by name from the registry
func (r Registry) GetTool(name string) (Tool, error) {
	tool, exists := r[name]
	if !exists {
		return nil, fmt.Errorf("tool %q not found in registry", name)
	}
	return tool, nil
}

// Dispatch runs the named tool with the call's input.
func (r Registry) Dispatch(ctx context.Context, call Call) (map[string]any, error) {
	tool, err := r.GetTool(call.Name)
	if err != nil {
		return nil, err
	}
	input := call.Input
	if input == nil {
		input = map[string]any{}
	}
	out, err := tool.Run(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", call.Name, err)
	}
	return out, nil
}
