package dmp

import (
	"strings"
	"time"
)

// lineAlphabetCeiling bounds how many distinct lines DiffLinesToChars may
// encode as synthetic single-rune tokens. Go's native string/rune pair can
// represent any Unicode scalar value, so nothing stops this package from
// using the full 0x10FFFF range; it deliberately doesn't, so that line-mode
// diffs stay comparable across ports of this algorithm that encode into a
// 16-bit code unit. 0xD7FF is the highest scalar value below the UTF-16
// surrogate range.
const lineAlphabetCeiling = 0xD7FF

// diffLineMode does a quick line-level diff on both rune slices, then
// rediffs the parts at character granularity for accuracy. This speedup can
// produce non-minimal diffs.
func (config *Config) diffLineMode(text1, text2 []rune, deadline time.Time) []Diff {
	etext1, etext2, linearray, err := config.diffLinesToStrings(string(text1), string(text2))
	if err != nil {
		// Too many distinct lines to encode; fall back to the
		// character-granularity path instead of failing the whole diff.
		return config.diffBisect(text1, text2, deadline)
	}
	diffs := config.diffRunes([]rune(etext1), []rune(etext2), false, deadline)
	diffs = config.DiffCharsToLines(diffs, linearray)
	// Eliminate freak matches (e.g. blank lines).
	diffs = config.DiffCleanupSemantic(diffs)
	// Rediff any replacement blocks character-by-character. A trailing
	// sentinel equality flushes the final pending pair.
	diffs = append(diffs, Diff{OpEqual, ""})
	pointer := 0
	countDelete, countInsert := 0, 0
	var textDelete, textInsert string
	for pointer < len(diffs) {
		switch diffs[pointer].Op {
		case OpInsert:
			countInsert++
			textInsert += diffs[pointer].Text
		case OpDelete:
			countDelete++
			textDelete += diffs[pointer].Text
		case OpEqual:
			if countDelete >= 1 && countInsert >= 1 {
				diffs = splice(diffs, pointer-countDelete-countInsert, countDelete+countInsert)
				pointer = pointer - countDelete - countInsert
				a := config.diffRunes([]rune(textDelete), []rune(textInsert), false, deadline)
				for j := len(a) - 1; j >= 0; j-- {
					diffs = splice(diffs, pointer, 0, a[j])
				}
				pointer = pointer + len(a)
			}
			countInsert, countDelete = 0, 0
			textDelete, textInsert = "", ""
		}
		pointer++
	}
	return diffs[:len(diffs)-1] // Drop the sentinel.
}

// DiffLinesToChars splits two texts into a list of lines, and reduces the
// texts to strings of synthetic characters where each character represents
// one line. unique_lines[0] is always the empty string (reserved, unused):
// '\x00' would be a valid line index but confuses debuggers and terminals,
// so index zero is sacrificed instead.
//
// Returns ErrAlphabetOverflow if the two texts together contain more
// distinct lines than the alphabet can index.
func (config *Config) DiffLinesToChars(text1, text2 string) (string, string, []string, error) {
	return config.diffLinesToStrings(text1, text2)
}

// DiffLinesToRunes is DiffLinesToChars with its two encoded texts returned
// as rune slices, ready to feed into DiffRunes.
func (config *Config) DiffLinesToRunes(text1, text2 string) ([]rune, []rune, []string, error) {
	chars1, chars2, lineArray, err := config.diffLinesToStrings(text1, text2)
	if err != nil {
		return nil, nil, nil, err
	}
	return []rune(chars1), []rune(chars2), lineArray, nil
}

// DiffCharsToLines rehydrates the text in a diff from a string of synthetic
// characters (one rune per line, as produced by DiffLinesToChars) back to the
// original lines of text.
func (config *Config) DiffCharsToLines(diffs []Diff, lineArray []string) []Diff {
	hydrated := make([]Diff, 0, len(diffs))
	for _, d := range diffs {
		runes := []rune(d.Text)
		text := make([]string, len(runes))
		for i, r := range runes {
			text[i] = lineArray[r]
		}
		d.Text = strings.Join(text, "")
		hydrated = append(hydrated, d)
	}
	return hydrated
}

func (config *Config) diffLinesToStrings(text1, text2 string) (string, string, []string, error) {
	lineArray := []string{""} // lineArray[0] is reserved; see DiffLinesToChars.
	lineHash := map[string]int{}
	strIndexArray1 := diffLinesToStringsMunge(text1, &lineArray, lineHash)
	strIndexArray2 := diffLinesToStringsMunge(text2, &lineArray, lineHash)
	if len(lineArray)-1 > lineAlphabetCeiling {
		return "", "", nil, ErrAlphabetOverflow
	}
	return intArrayToString(strIndexArray1), intArrayToString(strIndexArray2), lineArray, nil
}

// diffLinesToStringsMunge splits text into lines, appending newly seen ones
// to lineArray and recording their index in lineHash so repeats reuse it.
func diffLinesToStringsMunge(text string, lineArray *[]string, lineHash map[string]int) []uint32 {
	lineStart := 0
	lineEnd := -1
	var strs []uint32
	for lineEnd < len(text)-1 {
		lineEnd = indexOf(text, "\n", lineStart)
		if lineEnd == -1 {
			lineEnd = len(text) - 1
		}
		line := text[lineStart : lineEnd+1]
		lineStart = lineEnd + 1
		if lineValue, ok := lineHash[line]; ok {
			strs = append(strs, uint32(lineValue))
		} else {
			*lineArray = append(*lineArray, line)
			lineHash[line] = len(*lineArray) - 1
			strs = append(strs, uint32(len(*lineArray)-1))
		}
	}
	return strs
}

func intArrayToString(ns []uint32) string {
	if len(ns) == 0 {
		return ""
	}
	b := make([]rune, len(ns))
	for i, n := range ns {
		b[i] = rune(n)
	}
	return string(b)
}
