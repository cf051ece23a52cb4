package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParamsInput(t *testing.T) {
	tests := []struct {
		name   string
		params Params
		want   map[string]any
	}{
		{name: "empty", params: Params{Tool: "category_list"}, want: map[string]any{}},
		{
			name:   "list",
			params: Params{Tool: "recipe_list", Search: "pie", Category: "Beef", Page: 2},
			want:   map[string]any{"search": "pie", "category": "Beef", "page": 2},
		},
		{name: "detail", params: Params{Tool: "recipe_detail", ID: "52772"}, want: map[string]any{"id": "52772"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.params.input())
		})
	}
}
