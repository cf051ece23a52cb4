package recipebrowser

import (
	"context"
	"net/http"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type SlackClient interface {
	PostMessage(ctx context.Context, channel string, message string) error
}

// Catalog is the remote recipe provider.
type Catalog interface {
	ListCategories(ctx context.Context) ([]string, error)
	FilterByCategory(ctx context.Context, category string) ([]Recipe, error)
	SearchByName(ctx context.Context, query string) ([]Recipe, error)
	// LookupByID returns ErrNotFound when the catalog has no recipe with that id.
	LookupByID(ctx context.Context, id string) (*Recipe, error)
}

// Recipe is an immutable snapshot of a catalog recipe.
type Recipe struct {
	ID           string       `json:"id"`
	Name         string       `json:"name"`
	Category     string       `json:"category,omitempty"`
	Area         string       `json:"area,omitempty"`
	Instructions string       `json:"instructions,omitempty"`
	Thumbnail    string       `json:"thumbnail,omitempty"`
	Video        string       `json:"video,omitempty"`
	Source       string       `json:"source,omitempty"`
	Tags         []string     `json:"tags,omitempty"`
	Ingredients  []Ingredient `json:"ingredients"`
}

// Ingredient is a single (name, measure) line of a recipe.
type Ingredient struct {
	Name    string `json:"ingredient"`
	Measure string `json:"measure"`
}

// AggregatedIngredient is one row of the combined shopping list.
type AggregatedIngredient struct {
	Name    string `json:"ingredient"`
	Measure string `json:"measure"`
	Count   int    `json:"count"`
}

// HasVideo reports whether the recipe links to an external video.
func (r Recipe) HasVideo() bool {
	return r.Video != ""
}

// IsValid checks the fields a persisted or received recipe must carry.
func (r Recipe) IsValid() bool {
	if r.ID == "" || r.Name == "" {
		return false
	}
	for _, ing := range r.Ingredients {
		if ing.Name == "" {
			return false
		}
	}
	return true
}
