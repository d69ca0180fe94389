// Package tables reads the tabulated blade property files: the XV-15 style
// structural .tip tables and the aerodynamic .dat planform tables. Parsing is
// deliberately forgiving about header drift, units rows and ragged data; the
// output series are sorted, deduplicated and axis-remapped once here so the
// rest of the pipeline only ever sees clean (y, z)-based quantities.
package tables

import (
	"sort"
	"strconv"
	"strings"
)

// tokenize splits a line on whitespace, treating commas as separators too.
func tokenize(line string) []string {
	return strings.Fields(strings.ReplaceAll(line, ",", " "))
}

// isNumericRow reports whether every token parses as a float.
func isNumericRow(tokens []string) bool {
	if len(tokens) == 0 {
		return false
	}
	for _, t := range tokens {
		if _, err := strconv.ParseFloat(t, 64); err != nil {
			return false
		}
	}
	return true
}

// looksLikeUnitsLine is the heuristic for a non-numeric line right after a
// header that only carries unit tokens.
func looksLikeUnitsLine(tokens []string) bool {
	text := strings.ToLower(strings.Join(tokens, " "))
	for _, k := range []string{"deg", "adim", "unit", "lb", "slug", "ft", "m", "kg", "**", "[]", "rad", "in", "mm", "cm"} {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// normToken uppercases and strips non-alphanumeric characters, so headers
// like "...ROTAN" or "Chord(m)" still map by substring.
func normToken(s string) string {
	var b strings.Builder
	for _, r := range strings.ToUpper(strings.TrimSpace(s)) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func parseFloats(tokens []string) []float64 {
	out := make([]float64, len(tokens))
	for i, t := range tokens {
		v, _ := strconv.ParseFloat(t, 64)
		out[i] = v
	}
	return out
}

// sortDedupe stably sorts the station column ascending and collapses
// duplicate stations by averaging, applying the same reordering and grouping
// to every dependent column.
func sortDedupe(x []float64, cols [][]float64) ([]float64, [][]float64) {
	order := make([]int, len(x))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool { return x[order[a]] < x[order[b]] })

	var xs []float64
	var groups [][]int
	for _, idx := range order {
		v := x[idx]
		if len(xs) > 0 && v == xs[len(xs)-1] {
			groups[len(groups)-1] = append(groups[len(groups)-1], idx)
			continue
		}
		xs = append(xs, v)
		groups = append(groups, []int{idx})
	}

	out := make([][]float64, len(cols))
	for c, col := range cols {
		reduced := make([]float64, len(groups))
		for i, g := range groups {
			sum := 0.0
			for _, idx := range g {
				sum += col[idx]
			}
			reduced[i] = sum / float64(len(g))
		}
		out[c] = reduced
	}
	return xs, out
}
