package recipebrowser

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFdump(t *testing.T) {
	var buf bytes.Buffer
	Fdump(&buf, Recipe{ID: "52772", Name: "Teriyaki Chicken Casserole"})

	out := buf.String()
	assert.Contains(t, out, "dump_test.go:")
	assert.Contains(t, out, `ID: (string) (len=5) "52772"`)
	assert.Contains(t, out, "Teriyaki Chicken Casserole")
}

func TestRecipe(t *testing.T) {
	tests := []struct {
		name      string
		recipe    Recipe
		wantValid bool
		wantVideo bool
	}{
		{name: "complete", recipe: Recipe{ID: "1", Name: "Pie", Video: "https://youtu.be/x"}, wantValid: true, wantVideo: true},
		{name: "no video", recipe: Recipe{ID: "1", Name: "Pie"}, wantValid: true},
		{name: "missing id", recipe: Recipe{Name: "Pie"}},
		{name: "missing name", recipe: Recipe{ID: "1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantValid, tt.recipe.IsValid())
			assert.Equal(t, tt.wantVideo, tt.recipe.HasVideo())
		})
	}
}
