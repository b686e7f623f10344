package id

import (
	"fmt"
	"strconv"
)

// Base is the first account number ever assigned.
const Base int64 = 1001

// Format renders an account number as its canonical string form.
func Format(n int64) string {
	return strconv.FormatInt(n, 10)
}

// Parse parses a canonical account number string.
func Parse(s string) (int64, error) {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid account number %q: %w", s, err)
	}
	if n < Base {
		return 0, fmt.Errorf("invalid account number %q: below base %d", s, Base)
	}
	return n, nil
}

// Less reports whether account number a orders before b numerically.
// Unparseable numbers fall back to string order so the result is still total.
func Less(a, b string) bool {
	na, errA := Parse(a)
	nb, errB := Parse(b)
	if errA != nil || errB != nil {
		return a < b
	}
	return na < nb
}
