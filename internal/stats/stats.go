// Package stats provides the small statistics kit used during SV merging:
// mean, population standard deviation, interval overlap, and mode selection.
package stats

import (
	"fmt"
	"math"
)

// Number constrains the element types the kit operates on. Genomic
// positions are int64; the stddev helpers also accept plain floats.
type Number interface {
	~int | ~int64 | ~float64
}

// Mean returns the arithmetic mean of data.
// Calling Mean with an empty slice is a programming error and panics.
func Mean[T Number](data []T) float64 {
	if len(data) == 0 {
		panic("stats: Mean of empty slice")
	}
	var sum float64
	for _, x := range data {
		sum += float64(x)
	}
	return sum / float64(len(data))
}

// Stddev returns the population standard deviation of data with one
// degree of freedom, the convention used for STDDEV_POS reporting.
func Stddev[T Number](data []T) float64 {
	return StddevWithDOF(data, 1)
}

// StddevWithDOF returns the population standard deviation of data using
// the given degrees of freedom. Fewer than two samples yield 0.0.
func StddevWithDOF[T Number](data []T, dof int) float64 {
	n := len(data)
	if n < 2 {
		return 0.0
	}
	mean := Mean(data)
	var ssd float64
	for _, x := range data {
		d := float64(x) - mean
		ssd += d * d
	}
	return math.Sqrt(ssd / float64(n-dof))
}

// StddevNoOutliers returns the population standard deviation of data,
// excluding squared-deviation terms larger than five times their mean
// before the final division. Fewer than two samples yield 0.0.
func StddevNoOutliers[T Number](data []T, dof int) float64 {
	n := len(data)
	if n < 2 {
		return 0.0
	}
	mean := Mean(data)
	sq := make([]float64, n)
	for i, x := range data {
		d := float64(x) - mean
		sq[i] = d * d
	}
	meanSq := Mean(sq)
	var ssd float64
	for _, v := range sq {
		if v <= 5*meanSq {
			ssd += v
		}
	}
	return math.Sqrt(ssd / float64(n-dof))
}

// OverlapPercentage returns the percentage of overlapping positions between
// the half-open intervals [b1,e1) and [b2,e2), relative to the larger of the
// two intervals. The result is in [0.0, 100.0] and symmetric in its
// arguments. Each interval must satisfy begin <= end; violating that is a
// programming error and panics.
func OverlapPercentage(b1, e1, b2, e2 int64) float64 {
	if b1 > e1 || b2 > e2 {
		panic(fmt.Sprintf("stats: invalid interval in OverlapPercentage(%d, %d, %d, %d)", b1, e1, b2, e2))
	}

	overlapping := min(e1, e2) - max(b1, b2)
	if overlapping < 0 {
		overlapping = 0
	}
	larger := max(e1-b1, e2-b2)
	if larger < 1 {
		larger = 1
	}
	return 100.0 * float64(overlapping) / float64(larger)
}

// MostCommon returns the most frequent element of items, which may be any
// comparable type including structs used as composite keys. Ties are broken
// deterministically in favor of the element whose first occurrence is
// earliest. Calling MostCommon with an empty slice panics.
func MostCommon[T comparable](items []T) T {
	if len(items) == 0 {
		panic("stats: MostCommon of empty slice")
	}

	counts := make(map[T]int, len(items))
	firstSeen := make(map[T]int, len(items))
	for i, item := range items {
		if _, ok := counts[item]; !ok {
			firstSeen[item] = i
		}
		counts[item]++
	}

	best := items[0]
	for item, n := range counts {
		if n > counts[best] || (n == counts[best] && firstSeen[item] < firstSeen[best]) {
			best = item
		}
	}
	return best
}
