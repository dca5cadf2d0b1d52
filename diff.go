package dmp

import (
	"time"
)

// Op is the diff operation enum.
type Op int

// Op values.
const (
	// OpDelete marks a deletion from text1.
	OpDelete Op = -1
	// OpInsert marks an insertion from text2.
	OpInsert Op = 1
	// OpEqual marks a run common to both texts.
	OpEqual Op = 0
)

// Diff is a single (operation, text) record. A diff sequence is canonical
// (the output of DiffCleanupMerge) when no two adjacent records share an
// Op, no OpEqual record is empty, and no adjacent (delete, insert) pair
// shares a common prefix or suffix.
type Diff struct {
	Op   Op
	Text string
}

// Diff finds the differences between two texts.
func (config *Config) Diff(text1, text2 string, checklines bool) []Diff {
	return config.DiffRunes([]rune(text1), []rune(text2), checklines)
}

// DiffRunes finds the differences between two rune sequences.
func (config *Config) DiffRunes(text1, text2 []rune, checklines bool) []Diff {
	var deadline time.Time
	if config.DiffTimeout > 0 {
		deadline = time.Now().Add(config.DiffTimeout)
	}
	return config.diffRunes(text1, text2, checklines, deadline)
}

func (config *Config) diffRunes(text1, text2 []rune, checklines bool, deadline time.Time) []Diff {
	if runesEqual(text1, text2) {
		var diffs []Diff
		if len(text1) > 0 {
			diffs = append(diffs, Diff{OpEqual, string(text1)})
		}
		return diffs
	}
	// Trim off common prefix and suffix (speedup); restore them as bookends
	// around whatever compute produces for the remaining middle.
	commonlength := commonPrefixLength(text1, text2)
	commonprefix := text1[:commonlength]
	text1 = text1[commonlength:]
	text2 = text2[commonlength:]
	commonlength = commonSuffixLength(text1, text2)
	commonsuffix := text1[len(text1)-commonlength:]
	text1 = text1[:len(text1)-commonlength]
	text2 = text2[:len(text2)-commonlength]
	diffs := config.diffCompute(text1, text2, checklines, deadline)
	if len(commonprefix) != 0 {
		diffs = append([]Diff{{OpEqual, string(commonprefix)}}, diffs...)
	}
	if len(commonsuffix) != 0 {
		diffs = append(diffs, Diff{OpEqual, string(commonsuffix)})
	}
	return config.DiffCleanupMerge(diffs)
}

// diffCompute finds the differences between two rune slices known to share
// no common prefix or suffix.
func (config *Config) diffCompute(text1, text2 []rune, checklines bool, deadline time.Time) []Diff {
	diffs := []Diff{}
	if len(text1) == 0 {
		return append(diffs, Diff{OpInsert, string(text2)})
	} else if len(text2) == 0 {
		return append(diffs, Diff{OpDelete, string(text1)})
	}
	var longtext, shorttext []rune
	if len(text1) > len(text2) {
		longtext = text1
		shorttext = text2
	} else {
		longtext = text2
		shorttext = text1
	}
	if i := runesIndex(longtext, shorttext); i != -1 {
		// The shorter text is wholly contained in the longer one.
		op := OpInsert
		if len(text1) > len(text2) {
			op = OpDelete
		}
		return []Diff{
			{op, string(longtext[:i])},
			{OpEqual, string(shorttext)},
			{op, string(longtext[i+len(shorttext):])},
		}
	} else if len(shorttext) == 1 {
		// After the substring check above, a single character can't be an
		// equality.
		return []Diff{
			{OpDelete, string(text1)},
			{OpInsert, string(text2)},
		}
	} else if hm := config.diffHalfMatch(text1, text2); hm != nil {
		text1A, text1B := hm[0], hm[1]
		text2A, text2B := hm[2], hm[3]
		midCommon := hm[4]
		diffsA := config.diffRunes(text1A, text2A, checklines, deadline)
		diffsB := config.diffRunes(text1B, text2B, checklines, deadline)
		diffs := diffsA
		diffs = append(diffs, Diff{OpEqual, string(midCommon)})
		diffs = append(diffs, diffsB...)
		return diffs
	} else if checklines && len(text1) > 100 && len(text2) > 100 {
		return config.diffLineMode(text1, text2, deadline)
	}
	return config.diffBisect(text1, text2, deadline)
}

// DiffBisect finds the 'middle snake' of a diff, splits the problem in two,
// and returns the recursively constructed diff.
//
// See Myers's 1986 paper: An O(ND) Difference Algorithm and Its Variations.
func (config *Config) DiffBisect(text1, text2 string, deadline time.Time) []Diff {
	return config.diffBisect([]rune(text1), []rune(text2), deadline)
}

func (config *Config) diffBisect(runes1, runes2 []rune, deadline time.Time) []Diff {
	runes1Len, runes2Len := len(runes1), len(runes2)
	maxD := (runes1Len + runes2Len + 1) / 2
	vOffset := maxD
	vLength := 2 * maxD
	v1 := make([]int, vLength)
	v2 := make([]int, vLength)
	for i := range v1 {
		v1[i] = -1
		v2[i] = -1
	}
	v1[vOffset+1] = 0
	v2[vOffset+1] = 0
	delta := runes1Len - runes2Len
	// If the total character count is odd, the front path collides with
	// the reverse path.
	front := delta%2 != 0
	k1start, k1end := 0, 0
	k2start, k2end := 0, 0
	for d := 0; d < maxD; d++ {
		if !deadline.IsZero() && d%16 == 0 && time.Now().After(deadline) {
			break
		}
		// Walk the front path one step.
		for k1 := -d + k1start; k1 <= d-k1end; k1 += 2 {
			k1Offset := vOffset + k1
			var x1 int
			if k1 == -d || (k1 != d && v1[k1Offset-1] < v1[k1Offset+1]) {
				x1 = v1[k1Offset+1]
			} else {
				x1 = v1[k1Offset-1] + 1
			}
			y1 := x1 - k1
			for x1 < runes1Len && y1 < runes2Len && runes1[x1] == runes2[y1] {
				x1++
				y1++
			}
			v1[k1Offset] = x1
			switch {
			case x1 > runes1Len:
				k1end += 2
			case y1 > runes2Len:
				k1start += 2
			case front:
				k2Offset := vOffset + delta - k1
				if k2Offset >= 0 && k2Offset < vLength && v2[k2Offset] != -1 {
					x2 := runes1Len - v2[k2Offset]
					if x1 >= x2 {
						return config.diffBisectSplit(runes1, runes2, x1, y1, deadline)
					}
				}
			}
		}
		// Walk the reverse path one step.
		for k2 := -d + k2start; k2 <= d-k2end; k2 += 2 {
			k2Offset := vOffset + k2
			var x2 int
			if k2 == -d || (k2 != d && v2[k2Offset-1] < v2[k2Offset+1]) {
				x2 = v2[k2Offset+1]
			} else {
				x2 = v2[k2Offset-1] + 1
			}
			y2 := x2 - k2
			for x2 < runes1Len && y2 < runes2Len && runes1[runes1Len-x2-1] == runes2[runes2Len-y2-1] {
				x2++
				y2++
			}
			v2[k2Offset] = x2
			switch {
			case x2 > runes1Len:
				k2end += 2
			case y2 > runes2Len:
				k2start += 2
			case !front:
				k1Offset := vOffset + delta - k2
				if k1Offset >= 0 && k1Offset < vLength && v1[k1Offset] != -1 {
					x1 := v1[k1Offset]
					y1 := vOffset + x1 - k1Offset
					mirroredX2 := runes1Len - x2
					if x1 >= mirroredX2 {
						return config.diffBisectSplit(runes1, runes2, x1, y1, deadline)
					}
				}
			}
		}
	}
	// No commonality found within the depth budget, or the deadline fired:
	// return the coarse, non-optimal diff.
	return []Diff{
		{OpDelete, string(runes1)},
		{OpInsert, string(runes2)},
	}
}

func (config *Config) diffBisectSplit(runes1, runes2 []rune, x, y int, deadline time.Time) []Diff {
	runes1a, runes1b := runes1[:x], runes1[x:]
	runes2a, runes2b := runes2[:y], runes2[y:]
	diffs := config.diffRunes(runes1a, runes2a, false, deadline)
	diffsb := config.diffRunes(runes1b, runes2b, false, deadline)
	return append(diffs, diffsb...)
}
