// internal/app/system/ordinal/ordinal.go
//
// Package ordinal formats the ordinal branch names used in family trees.
// Order 1 keeps the spelled-out traditional form; higher orders use the
// numeric suffix form ("2nd", "3rd", "11th", "21st", ...).
package ordinal

import "strconv"

// Suffix returns the English ordinal suffix for n (1 -> "st", 2 -> "nd").
func Suffix(n int) string {
	if n < 0 {
		n = -n
	}
	switch n % 100 {
	case 11, 12, 13:
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}

// BranchName returns the display name for a branch at the given order.
// Purely presentational; callers may rename branches afterward.
func BranchName(order int) string {
	if order == 1 {
		return "First Wife's Branch"
	}
	return strconv.Itoa(order) + Suffix(order) + " Wife's Branch"
}
