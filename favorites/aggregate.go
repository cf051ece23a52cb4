package favorites

import "recipebrowser"

// Aggregate groups the ingredients of recipes by name. Rows come out in order of
// first appearance, carry the measure seen first and count every occurrence.
// Measures are never merged or converted.
func Aggregate(recipes []recipebrowser.Recipe) []recipebrowser.AggregatedIngredient {
	out := make([]recipebrowser.AggregatedIngredient, 0)
	pos := make(map[string]int)

	for _, r := range recipes {
		for _, ing := range r.Ingredients {
			if i, ok := pos[ing.Name]; ok {
				out[i].Count++
				continue
			}
			pos[ing.Name] = len(out)
			out = append(out, recipebrowser.AggregatedIngredient{
				Name:    ing.Name,
				Measure: ing.Measure,
				Count:   1,
			})
		}
	}
	return out
}
