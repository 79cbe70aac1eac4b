package domain

import (
	"math"
	"sort"
)

// Mean retourne la moyenne arithmétique; 0 pour une série vide
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// StdDev retourne l'écart-type échantillon (ddof=1); 0 si moins de 2 points
func StdDev(values []float64) float64 {
	n := len(values)
	if n < 2 {
		return 0
	}
	mean := Mean(values)
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(n-1))
}

// Median retourne la médiane; 0 pour une série vide
func Median(values []float64) float64 {
	return Quantile(values, 0.5)
}

// Quantile calcule le quantile q par interpolation linéaire sur la série triée
// (position q*(n-1), même convention que les outils d'analyse usuels)
func Quantile(values []float64, q float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	sorted := make([]float64, n)
	copy(sorted, values)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[n-1]
	}

	pos := q * float64(n-1)
	lo := int(math.Floor(pos))
	frac := pos - float64(lo)
	if lo+1 >= n {
		return sorted[n-1]
	}
	return sorted[lo] + frac*(sorted[lo+1]-sorted[lo])
}

// PercentileRanks calcule le rang fractionnaire de chaque valeur dans [0,1],
// ex-aequo moyennés (rang moyen / n)
func PercentileRanks(values []float64) []float64 {
	n := len(values)
	ranks := make([]float64, n)
	if n == 0 {
		return ranks
	}

	for i, v := range values {
		less, equal := 0, 0
		for _, other := range values {
			if other < v {
				less++
			} else if other == v {
				equal++
			}
		}
		// Rang moyen des ex-aequo: (less+1 .. less+equal) → less + (equal+1)/2
		ranks[i] = (float64(less) + (float64(equal)+1)/2) / float64(n)
	}
	return ranks
}

// TopIndices retourne les indices de rang centile >= 0.8, valeurs décroissantes,
// limités à n
func TopIndices(values []float64, n int) []int {
	ranks := PercentileRanks(values)
	idx := filterIndices(ranks, func(r float64) bool { return r >= 0.8 })
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] > values[idx[b]] })
	return limit(idx, n)
}

// BottomIndices retourne les indices de rang centile <= 0.2, valeurs croissantes,
// limités à n
func BottomIndices(values []float64, n int) []int {
	ranks := PercentileRanks(values)
	idx := filterIndices(ranks, func(r float64) bool { return r <= 0.2 })
	sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })
	return limit(idx, n)
}

// MiddleIndices retourne les indices de rang strictement entre 0.2 et 0.8,
// ordonnés par distance croissante au rang médian, limités à n
func MiddleIndices(values []float64, n int) []int {
	ranks := PercentileRanks(values)
	idx := filterIndices(ranks, func(r float64) bool { return r > 0.2 && r < 0.8 })
	sort.SliceStable(idx, func(a, b int) bool {
		return math.Abs(ranks[idx[a]]-0.5) < math.Abs(ranks[idx[b]]-0.5)
	})
	return limit(idx, n)
}

func filterIndices(ranks []float64, keep func(float64) bool) []int {
	var idx []int
	for i, r := range ranks {
		if keep(r) {
			idx = append(idx, i)
		}
	}
	return idx
}

func limit(idx []int, n int) []int {
	if n > 0 && len(idx) > n {
		return idx[:n]
	}
	return idx
}
