package pages

import (
	"math"
	"unicode"
)

// PageIndex returns the first contiguous run of decimal digits in name as a page number.
// Any Unicode decimal digit counts, so "page٣.png" is page 3. The second return value is
// false when name has no digits or the run does not fit in an int; such files are still
// usable, they just take no part in gap detection.
//
// Only the first run counts: "scan_2024_007.png" yields 2024. Ordering uses every ASCII run
// (see NaturalKey), so the two rules deliberately differ for names with several numbers.
func PageIndex(name string) (int, bool) {
	n, found := 0, false
	for _, r := range name {
		if !unicode.IsDigit(r) {
			if found {
				break
			}
			continue
		}
		found = true
		d := digitValue(r)
		if n > (math.MaxInt-d)/10 {
			return 0, false
		}
		n = n*10 + d
	}
	return n, found
}

// digitValue returns the value of a decimal digit rune.
// Unicode lays decimal digits out in runs of ten starting at zero, some blocks back to back,
// so the offset from the start of the run modulo ten is the value.
func digitValue(r rune) int {
	start := r
	for unicode.IsDigit(start - 1) {
		start--
	}
	return int(r-start) % 10
}
