package pages

import (
	"strconv"
	"strings"
)

// Segment is one run of a natural ordering key: either text or a number
type Segment struct {
	Text   string // Lower-cased text, set when IsNum is false
	Digits string // Decimal digits without leading zeros ("" for zero), set when IsNum is true
	IsNum  bool
}

// Key is the natural ordering key of a file name.
// Segments alternate between text and number, starting with a (possibly empty) text segment.
type Key []Segment

// NaturalKey splits name into alternating text and digit runs.
// Digit runs compare by integer value and text runs compare case-insensitively,
// so "page2.png" sorts before "page10.png".
func NaturalKey(name string) Key {
	key := Key{}
	i := 0
	for {
		start := i
		for i < len(name) && !isDigit(name[i]) {
			i++
		}
		key = append(key, Segment{Text: strings.ToLower(name[start:i])})
		if i == len(name) {
			return key
		}

		start = i
		for i < len(name) && isDigit(name[i]) {
			i++
		}
		key = append(key, Segment{Digits: strings.TrimLeft(name[start:i], "0"), IsNum: true})
		if i == len(name) {
			// A trailing digit run is followed by an empty text run
			key = append(key, Segment{})
			return key
		}
	}
}

// Compare orders two keys segment by segment.
// It returns -1 if a sorts before b, +1 if after and 0 if they are equal.
func Compare(a, b Key) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if c := compareSegment(a[i], b[i]); c != 0 {
			return c
		}
	}
	switch {
	case len(a) < len(b):
		return -1
	case len(a) > len(b):
		return 1
	}
	return 0
}

func compareSegment(a, b Segment) int {
	if a.IsNum != b.IsNum {
		// Keys always alternate in the same way, so this only happens for hand-built keys
		if a.IsNum {
			return -1
		}
		return 1
	}
	if !a.IsNum {
		return strings.Compare(a.Text, b.Text)
	}
	// Arbitrary-size integers: a longer run without leading zeros is the larger number
	if len(a.Digits) != len(b.Digits) {
		if len(a.Digits) < len(b.Digits) {
			return -1
		}
		return 1
	}
	return strings.Compare(a.Digits, b.Digits)
}

// String renders the key for debugging, numbers in angle brackets
func (k Key) String() string {
	var b strings.Builder
	for _, s := range k {
		if s.IsNum {
			n := s.Digits
			if n == "" {
				n = "0"
			}
			b.WriteString("<" + n + ">")
			continue
		}
		b.WriteString(strconv.Quote(s.Text))
	}
	return b.String()
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
