// SPDX-License-Identifier: MIT

package atoms

// ValidatePermutation checks that pi is a bijection on [0, n).
//
// Returns ErrBadPermutation on a length mismatch, an out-of-range entry or a
// repeated entry. Complexity: O(n) time, O(n) scratch.
func ValidatePermutation(pi []int, n int) error {
	if len(pi) != n {
		return ErrBadPermutation
	}
	seen := make([]bool, n)
	for _, j := range pi {
		if j < 0 || j >= n || seen[j] {
			return ErrBadPermutation
		}
		seen[j] = true
	}

	return nil
}
