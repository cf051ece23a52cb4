package catalog

import (
	"strconv"
	"strings"

	"recipebrowser"
)

// maxIngredients is the number of strIngredientN/strMeasureN pairs a meal carries.
const maxIngredients = 20

// wireMeal is one entry of the "meals" array. Every field is a string or null.
type wireMeal map[string]*string

type wireMeals struct {
	Meals []wireMeal `json:"meals"`
}

type wireCategory struct {
	Category string `json:"strCategory"`
}

type wireCategories struct {
	Meals []wireCategory `json:"meals"`
}

func (m wireMeal) str(field string) string {
	if v := m[field]; v != nil {
		return strings.TrimSpace(*v)
	}
	return ""
}

// toRecipe collapses the indexed ingredient/measure fields into an ordered slice,
// skipping pairs with an empty ingredient name.
func (m wireMeal) toRecipe() recipebrowser.Recipe {
	r := recipebrowser.Recipe{
		ID:           m.str("idMeal"),
		Name:         m.str("strMeal"),
		Category:     m.str("strCategory"),
		Area:         m.str("strArea"),
		Instructions: m.str("strInstructions"),
		Thumbnail:    m.str("strMealThumb"),
		Video:        m.str("strYoutube"),
		Source:       m.str("strSource"),
		Tags:         splitTags(m.str("strTags")),
		Ingredients:  make([]recipebrowser.Ingredient, 0),
	}

	for i := 1; i <= maxIngredients; i++ {
		n := strconv.Itoa(i)
		name := m.str("strIngredient" + n)
		if name == "" {
			continue
		}
		r.Ingredients = append(r.Ingredients, recipebrowser.Ingredient{
			Name:    name,
			Measure: m.str("strMeasure" + n),
		})
	}
	return r
}

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

func toRecipes(meals []wireMeal) []recipebrowser.Recipe {
	out := make([]recipebrowser.Recipe, 0, len(meals))
	for _, m := range meals {
		if m == nil {
			continue
		}
		out = append(out, m.toRecipe())
	}
	return out
}
