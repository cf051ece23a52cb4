package main

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"

	"recipebrowser"
	"recipebrowser/listing"
)

func TestPrintResult(t *testing.T) {
	isFavorite := func(id string) bool { return id == "2" }

	tests := []struct {
		name     string
		result   listing.Result
		contains []string
	}{
		{
			name:     "loading",
			result:   listing.Result{Page: 1, IsLoading: true},
			contains: []string{"Loading..."},
		},
		{
			name:     "empty",
			result:   listing.Result{Page: 1, TotalPages: 1, Source: listing.SourceSearch},
			contains: []string{"No recipes found.", "Page 1 of 1 (0 recipes, search)"},
		},
		{
			name: "page reset with favorite mark",
			result: listing.Result{
				Items: []recipebrowser.Recipe{
					{ID: "1", Name: "Pie", Category: "Beef"},
					{ID: "2", Name: "Stew", Category: "Beef"},
				},
				Page:       1,
				TotalPages: 1,
				Total:      2,
				Source:     listing.SourceCategory,
				ResetPage:  true,
				Stale:      true,
			},
			contains: []string{
				"Page out of range, showing page 1.",
				"*  2  Stew",
				"Page 1 of 1 (2 recipes, category), refreshing",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			printResult(&buf, tt.result, isFavorite)
			for _, want := range tt.contains {
				assert.Contains(t, buf.String(), want)
			}
		})
	}
}

func TestPrintRecipe(t *testing.T) {
	var buf bytes.Buffer
	printRecipe(&buf, recipebrowser.Recipe{
		ID:          "52772",
		Name:        "Teriyaki Chicken Casserole",
		Category:    "Chicken",
		Area:        "Japanese",
		Tags:        []string{"Meat", "Casserole"},
		Video:       "https://www.youtube.com/watch?v=4aZr5hZXP_s",
		Ingredients: []recipebrowser.Ingredient{{Name: "soy sauce", Measure: "3/4 cup"}},
	}, true)

	out := buf.String()
	assert.Contains(t, out, "Teriyaki Chicken Casserole *")
	assert.Contains(t, out, "Chicken / Japanese")
	assert.Contains(t, out, "Tags: Meat, Casserole")
	assert.Contains(t, out, "soy sauce")
	assert.Contains(t, out, "Video: https://www.youtube.com/watch?v=4aZr5hZXP_s")
	assert.NotContains(t, out, "Source:")
}

func TestPromptSerializesOutput(t *testing.T) {
	res := listing.Result{
		Items:      []recipebrowser.Recipe{{ID: "1", Name: "Pie", Category: "Beef"}},
		Page:       1,
		TotalPages: 1,
		Total:      1,
		Source:     listing.SourceAll,
	}
	noFavorites := func(string) bool { return false }

	var single bytes.Buffer
	(&prompt{w: &single, isFavorite: noFavorites}).render(res)
	block := single.String()

	var buf bytes.Buffer
	p := &prompt{w: &buf, isFavorite: noFavorites}

	const writers = 16
	var wg sync.WaitGroup
	for range writers {
		wg.Add(2)
		go func() {
			defer wg.Done()
			p.render(res)
		}()
		go func() {
			defer wg.Done()
			fmt.Fprintf(p, "unknown command %q\n> ", "x")
		}()
	}
	wg.Wait()

	out := buf.String()
	assert.Equal(t, writers, strings.Count(out, block), "every render is written whole")
	assert.Equal(t, writers, strings.Count(out, "unknown command \"x\"\n> "))
	assert.Len(t, out, writers*(len(block)+len("unknown command \"x\"\n> ")))
}
