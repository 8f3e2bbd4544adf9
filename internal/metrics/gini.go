// Package metrics computes and records per-tick summaries of the wealth
// distribution.
package metrics

import "sort"

// Gini computes the Gini coefficient of a wealth distribution.
//
// With wealths sorted ascending as x_0 <= ... <= x_{n-1}:
//
//	B = Σ x_i·(n−i) / (n·Σx_i)
//	G = 1 + 1/n − 2B
//
// A distribution with zero total wealth has no defined Gini; by policy it
// reports 0 (everyone equally broke) rather than dividing by zero. An empty
// distribution also reports 0.
func Gini(wealths []int) float64 {
	n := len(wealths)
	if n == 0 {
		return 0
	}

	sorted := make([]int, n)
	copy(sorted, wealths)
	sort.Ints(sorted)

	total := 0
	for _, x := range sorted {
		total += x
	}
	if total == 0 {
		return 0
	}

	var weighted float64
	for i, x := range sorted {
		weighted += float64(x) * float64(n-i)
	}
	b := weighted / (float64(n) * float64(total))
	return 1 + 1/float64(n) - 2*b
}
