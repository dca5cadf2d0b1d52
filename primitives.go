package dmp

import (
	"strings"
	"unicode/utf8"
)

// unescaper reverses percent-encoding for the small set of characters the
// delta and patch text formats leave unescaped (see DiffToDelta/PatchToText),
// mirroring JavaScript's encodeURI rather than full URL escaping. Case
// sensitive: it matches only uppercase hex, which is what url.QueryEscape
// emits.
var unescaper = strings.NewReplacer(
	"%21", "!", "%7E", "~", "%27", "'",
	"%28", "(", "%29", ")", "%3B", ";",
	"%2F", "/", "%3F", "?", "%3A", ":",
	"%40", "@", "%26", "&", "%3D", "=",
	"%2B", "+", "%24", "$", "%2C", ",",
	"%23", "#", "%2A", "*",
)

// DiffCommonPrefix determines the common prefix length of two strings.
func (config *Config) DiffCommonPrefix(text1, text2 string) int {
	return commonPrefixLength([]rune(text1), []rune(text2))
}

// DiffCommonSuffix determines the common suffix length of two strings.
func (config *Config) DiffCommonSuffix(text1, text2 string) int {
	return commonSuffixLength([]rune(text1), []rune(text2))
}

// DiffCommonOverlap determines if the suffix of one string is the prefix of
// another.
func (config *Config) DiffCommonOverlap(text1, text2 string) int {
	text1Length := len(text1)
	text2Length := len(text2)
	if text1Length == 0 || text2Length == 0 {
		return 0
	}
	if text1Length > text2Length {
		text1 = text1[text1Length-text2Length:]
	} else if text1Length < text2Length {
		text2 = text2[0:text1Length]
	}
	textLength := min(text1Length, text2Length)
	if text1 == text2 {
		return textLength
	}
	// Start by looking for a single character match and increase length
	// until no match is found.
	// Performance analysis: http://neil.fraser.name/news/2010/11/04/
	best := 0
	length := 1
	for {
		pattern := text1[textLength-length:]
		found := strings.Index(text2, pattern)
		if found == -1 {
			break
		}
		length += found
		if found == 0 || text1[textLength-length:] == text2[0:length] {
			best = length
			length++
		}
	}
	return best
}

// commonPrefixLength returns the length of the common prefix of two rune
// slices.
func commonPrefixLength(text1, text2 []rune) int {
	n := 0
	for ; n < len(text1) && n < len(text2); n++ {
		if text1[n] != text2[n] {
			return n
		}
	}
	return n
}

// commonSuffixLength returns the length of the common suffix of two rune
// slices. Linear rather than binary search: see
// https://github.com/sergi/go-diff/issues/54.
func commonSuffixLength(text1, text2 []rune) int {
	i1, i2 := len(text1), len(text2)
	for n := 0; ; n++ {
		i1--
		i2--
		if i1 < 0 || i2 < 0 || text1[i1] != text2[i2] {
			return n
		}
	}
}

// indexOf returns the first index of pattern in s, starting at s[i].
func indexOf(s, pattern string, i int) int {
	if i > len(s)-1 {
		return -1
	}
	if i <= 0 {
		return strings.Index(s, pattern)
	}
	ind := strings.Index(s[i:], pattern)
	if ind == -1 {
		return -1
	}
	return ind + i
}

// lastIndexOf returns the last index of pattern in s, searching only s up to
// and including the rune at s[i].
func lastIndexOf(s, pattern string, i int) int {
	if i < 0 {
		return -1
	}
	if i >= len(s) {
		return strings.LastIndex(s, pattern)
	}
	_, size := utf8.DecodeRuneInString(s[i:])
	return strings.LastIndex(s[:i+size], pattern)
}

// runesIndexOf returns the index of pattern in target, starting at
// target[i].
func runesIndexOf(target, pattern []rune, i int) int {
	if i > len(target)-1 {
		return -1
	}
	if i <= 0 {
		return runesIndex(target, pattern)
	}
	ind := runesIndex(target[i:], pattern)
	if ind == -1 {
		return -1
	}
	return ind + i
}

func runesEqual(r1, r2 []rune) bool {
	if len(r1) != len(r2) {
		return false
	}
	for i, c := range r1 {
		if c != r2[i] {
			return false
		}
	}
	return true
}

// runesIndex is the equivalent of strings.Index for rune slices.
func runesIndex(r1, r2 []rune) int {
	last := len(r1) - len(r2)
	for i := 0; i <= last; i++ {
		if runesEqual(r1[i:i+len(r2)], r2) {
			return i
		}
	}
	return -1
}

func min(x, y int) int {
	if x < y {
		return x
	}
	return y
}

func max(x, y int) int {
	if x > y {
		return x
	}
	return y
}

// splice removes amount elements from slice at index index, replacing them
// with elements.
func splice(slice []Diff, index, amount int, elements ...Diff) []Diff {
	if len(elements) == amount {
		copy(slice[index:], elements)
		return slice
	}
	if len(elements) < amount {
		copy(slice[index:], elements)
		copy(slice[index+len(elements):], slice[index+amount:])
		end := len(slice) - amount + len(elements)
		tail := slice[end:]
		for i := range tail {
			tail[i] = Diff{}
		}
		return slice[:end]
	}
	need := len(slice) - amount + len(elements)
	for len(slice) < need {
		slice = append(slice, Diff{})
	}
	copy(slice[index+len(elements):], slice[index+amount:])
	copy(slice[index:], elements)
	return slice
}
