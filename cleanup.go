package dmp

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// boundary regexps used by DiffCleanupSemanticLossless to score how well an
// edit boundary lands on a natural break in the text.
var (
	nonAlphaNumericRE = regexp.MustCompile(`[^a-zA-Z0-9]`)
	whitespaceRE      = regexp.MustCompile(`\s`)
	crlfRE            = regexp.MustCompile(`[\r\n]`)
	blankEndRE        = regexp.MustCompile(`\n\r?\n$`)
)

// DiffCleanupSemantic reduces the number of edits by eliminating
// semantically trivial equalities.
func (config *Config) DiffCleanupSemantic(diffs []Diff) []Diff {
	changes := false
	equalities := make([]int, 0, len(diffs)) // Stack of indices where equalities are found.
	var lastequality string
	var pointer int
	var lengthInsertions1, lengthDeletions1 int // Changed characters prior to the equality.
	var lengthInsertions2, lengthDeletions2 int // Changed characters after the equality.
	for pointer < len(diffs) {
		if diffs[pointer].Op == OpEqual {
			equalities = append(equalities, pointer)
			lengthInsertions1 = lengthInsertions2
			lengthDeletions1 = lengthDeletions2
			lengthInsertions2 = 0
			lengthDeletions2 = 0
			lastequality = diffs[pointer].Text
		} else {
			if diffs[pointer].Op == OpInsert {
				lengthInsertions2 += utf8.RuneCountInString(diffs[pointer].Text)
			} else {
				lengthDeletions2 += utf8.RuneCountInString(diffs[pointer].Text)
			}
			// Eliminate an equality that is smaller than or equal to the
			// edits on both sides of it.
			difference1 := max(lengthInsertions1, lengthDeletions1)
			difference2 := max(lengthInsertions2, lengthDeletions2)
			if utf8.RuneCountInString(lastequality) > 0 &&
				utf8.RuneCountInString(lastequality) <= difference1 &&
				utf8.RuneCountInString(lastequality) <= difference2 {
				insPoint := equalities[len(equalities)-1]
				diffs = splice(diffs, insPoint, 0, Diff{OpDelete, lastequality})
				diffs[insPoint+1].Op = OpInsert // Second copy becomes an insert.
				equalities = equalities[:len(equalities)-1]
				if len(equalities) > 0 {
					equalities = equalities[:len(equalities)-1]
				}
				pointer = -1
				if len(equalities) > 0 {
					pointer = equalities[len(equalities)-1]
				}
				lengthInsertions1, lengthDeletions1 = 0, 0
				lengthInsertions2, lengthDeletions2 = 0, 0
				lastequality = ""
				changes = true
			}
		}
		pointer++
	}
	if changes {
		diffs = config.DiffCleanupMerge(diffs)
	}
	diffs = config.DiffCleanupSemanticLossless(diffs)
	// Find overlaps between deletions and insertions, e.g.
	//   <del>abcxxx</del><ins>xxxdef</ins> -> <del>abc</del>xxx<ins>def</ins>
	//   <del>xxxabc</del><ins>defxxx</ins> -> <ins>def</ins>xxx<del>abc</del>
	// Only extract an overlap if it is at least half the length of the
	// deletion or of the insertion.
	pointer = 1
	for pointer < len(diffs) {
		if diffs[pointer-1].Op == OpDelete && diffs[pointer].Op == OpInsert {
			deletion := diffs[pointer-1].Text
			insertion := diffs[pointer].Text
			overlapLength1 := config.DiffCommonOverlap(deletion, insertion)
			overlapLength2 := config.DiffCommonOverlap(insertion, deletion)
			if overlapLength1 >= overlapLength2 {
				if float64(overlapLength1) >= float64(utf8.RuneCountInString(deletion))/2 ||
					float64(overlapLength1) >= float64(utf8.RuneCountInString(insertion))/2 {
					diffs = splice(diffs, pointer, 0, Diff{OpEqual, insertion[:overlapLength1]})
					diffs[pointer-1].Text = deletion[:len(deletion)-overlapLength1]
					diffs[pointer+1].Text = insertion[overlapLength1:]
					pointer++
				}
			} else {
				if float64(overlapLength2) >= float64(utf8.RuneCountInString(deletion))/2 ||
					float64(overlapLength2) >= float64(utf8.RuneCountInString(insertion))/2 {
					overlap := Diff{OpEqual, deletion[:overlapLength2]}
					diffs = splice(diffs, pointer, 0, overlap)
					diffs[pointer-1].Op = OpInsert
					diffs[pointer-1].Text = insertion[:len(insertion)-overlapLength2]
					diffs[pointer+1].Op = OpDelete
					diffs[pointer+1].Text = deletion[overlapLength2:]
					pointer++
				}
			}
			pointer++
		}
		pointer++
	}
	return diffs
}

// diffCleanupSemanticScore scores an internal boundary from 6 (best) to 0
// (worst) on how well it lands on a natural break in the text. A closure
// over no external state, kept a free function so it stays trivially
// testable in isolation.
func diffCleanupSemanticScore(one, two string) int {
	if len(one) == 0 || len(two) == 0 {
		return 6 // Edges are the best.
	}
	// Each port of this algorithm treats "whitespace" and "non-alphanumeric"
	// slightly differently; since the scoring only affects cosmetics, this
	// uses Go's own regexp semantics rather than forcing cross-port parity.
	rune1, _ := utf8.DecodeLastRuneInString(one)
	rune2, _ := utf8.DecodeRuneInString(two)
	char1 := string(rune1)
	char2 := string(rune2)
	nonAlphaNumeric1 := nonAlphaNumericRE.MatchString(char1)
	nonAlphaNumeric2 := nonAlphaNumericRE.MatchString(char2)
	whitespace1 := nonAlphaNumeric1 && whitespaceRE.MatchString(char1)
	whitespace2 := nonAlphaNumeric2 && whitespaceRE.MatchString(char2)
	lineBreak1 := whitespace1 && crlfRE.MatchString(char1)
	lineBreak2 := whitespace2 && crlfRE.MatchString(char2)
	blankLine1 := lineBreak1 && blankEndRE.MatchString(one)
	blankLine2 := lineBreak2 && blankEndRE.MatchString(two)
	switch {
	case blankLine1 || blankLine2:
		return 5 // Blank lines.
	case lineBreak1 || lineBreak2:
		return 4 // Line breaks.
	case nonAlphaNumeric1 && !whitespace1 && whitespace2:
		return 3 // End of sentence.
	case whitespace1 || whitespace2:
		return 2
	case nonAlphaNumeric1 || nonAlphaNumeric2:
		return 1
	}
	return 0
}

// DiffCleanupSemanticLossless looks for single edits surrounded on both
// sides by equalities, and shifts them sideways to align with a word
// boundary, e.g. "The c<ins>at c</ins>ame." becomes "The <ins>cat </ins>came."
func (config *Config) DiffCleanupSemanticLossless(diffs []Diff) []Diff {
	pointer := 1
	for pointer < len(diffs)-1 {
		if diffs[pointer-1].Op == OpEqual && diffs[pointer+1].Op == OpEqual {
			equality1 := diffs[pointer-1].Text
			edit := diffs[pointer].Text
			equality2 := diffs[pointer+1].Text
			// Shift the edit as far left as possible first.
			commonOffset := config.DiffCommonSuffix(equality1, edit)
			if commonOffset > 0 {
				commonString := edit[len(edit)-commonOffset:]
				equality1 = equality1[:len(equality1)-commonOffset]
				edit = commonString + edit[:len(edit)-commonOffset]
				equality2 = commonString + equality2
			}
			// Then step right one character at a time, looking for the best
			// boundary score.
			bestEquality1 := equality1
			bestEdit := edit
			bestEquality2 := equality2
			bestScore := diffCleanupSemanticScore(equality1, edit) +
				diffCleanupSemanticScore(edit, equality2)
			for len(edit) != 0 && len(equality2) != 0 {
				_, sz := utf8.DecodeRuneInString(edit)
				if len(equality2) < sz || edit[:sz] != equality2[:sz] {
					break
				}
				equality1 += edit[:sz]
				edit = edit[sz:] + equality2[:sz]
				equality2 = equality2[sz:]
				score := diffCleanupSemanticScore(equality1, edit) +
					diffCleanupSemanticScore(edit, equality2)
				if score >= bestScore { // >= favors trailing over leading whitespace.
					bestScore = score
					bestEquality1 = equality1
					bestEdit = edit
					bestEquality2 = equality2
				}
			}
			if diffs[pointer-1].Text != bestEquality1 {
				if len(bestEquality1) != 0 {
					diffs[pointer-1].Text = bestEquality1
				} else {
					diffs = splice(diffs, pointer-1, 1)
					pointer--
				}
				diffs[pointer].Text = bestEdit
				if len(bestEquality2) != 0 {
					diffs[pointer+1].Text = bestEquality2
				} else {
					diffs = append(diffs[:pointer+1], diffs[pointer+2:]...)
					pointer--
				}
			}
		}
		pointer++
	}
	return diffs
}

// DiffCleanupEfficiency reduces the number of edits by eliminating
// operationally trivial equalities, trading some semantic purity for a
// shorter diff when DiffEditCost says the edit overhead isn't worth it.
func (config *Config) DiffCleanupEfficiency(diffs []Diff) []Diff {
	changes := false
	type equality struct {
		data int
		next *equality
	}
	var equalities *equality
	lastequality := "" // Always equal to the top-of-stack equality's text.
	pointer := 0
	preIns, preDel := false, false   // Insert/delete before the last equality.
	postIns, postDel := false, false // Insert/delete after the last equality.
	for pointer < len(diffs) {
		if diffs[pointer].Op == OpEqual {
			if len(diffs[pointer].Text) < config.DiffEditCost && (postIns || postDel) {
				equalities = &equality{data: pointer, next: equalities}
				preIns = postIns
				preDel = postDel
				lastequality = diffs[pointer].Text
			} else {
				equalities = nil
				lastequality = ""
			}
			postIns, postDel = false, false
		} else {
			if diffs[pointer].Op == OpDelete {
				postDel = true
			} else {
				postIns = true
			}
			// Five shapes get split here:
			//   <ins>A</ins><del>B</del>XY<ins>C</ins><del>D</del>
			//   <ins>A</ins>X<ins>C</ins><del>D</del>
			//   <ins>A</ins><del>B</del>X<ins>C</ins>
			//   <del>A</del>X<ins>C</ins><del>D</del>
			//   <ins>A</ins><del>B</del>X<del>C</del>
			var sumPres int
			if preIns {
				sumPres++
			}
			if preDel {
				sumPres++
			}
			if postIns {
				sumPres++
			}
			if postDel {
				sumPres++
			}
			if len(lastequality) > 0 &&
				((preIns && preDel && postIns && postDel) ||
					(len(lastequality) < config.DiffEditCost/2 && sumPres == 3)) {
				insPoint := equalities.data
				diffs = splice(diffs, insPoint, 0, Diff{OpDelete, lastequality})
				diffs[insPoint+1].Op = OpInsert
				equalities = equalities.next
				lastequality = ""
				if preIns && preDel {
					// Nothing here affects the previous entry; keep going.
					postIns, postDel = true, true
					equalities = nil
				} else {
					if equalities != nil {
						equalities = equalities.next
					}
					if equalities != nil {
						pointer = equalities.data
					} else {
						pointer = -1
					}
					postIns, postDel = false, false
				}
				changes = true
			}
		}
		pointer++
	}
	if changes {
		diffs = config.DiffCleanupMerge(diffs)
	}
	return diffs
}

// DiffCleanupMerge reorders and merges adjacent edits of the same kind, and
// factors out any prefix/suffix shared between a delete and an insert pair.
func (config *Config) DiffCleanupMerge(diffs []Diff) []Diff {
	diffs = append(diffs, Diff{OpEqual, ""}) // Sentinel simplifies the scan below.
	pointer := 0
	countDelete, countInsert := 0, 0
	var commonlength int
	var textDelete, textInsert []rune
	for pointer < len(diffs) {
		switch diffs[pointer].Op {
		case OpInsert:
			countInsert++
			textInsert = append(textInsert, []rune(diffs[pointer].Text)...)
			pointer++
		case OpDelete:
			countDelete++
			textDelete = append(textDelete, []rune(diffs[pointer].Text)...)
			pointer++
		case OpEqual:
			if countDelete+countInsert > 1 {
				if countDelete != 0 && countInsert != 0 {
					commonlength = commonPrefixLength(textInsert, textDelete)
					if commonlength != 0 {
						x := pointer - countDelete - countInsert
						if x > 0 && diffs[x-1].Op == OpEqual {
							diffs[x-1].Text += string(textInsert[:commonlength])
						} else {
							diffs = append([]Diff{{OpEqual, string(textInsert[:commonlength])}}, diffs...)
							pointer++
						}
						textInsert = textInsert[commonlength:]
						textDelete = textDelete[commonlength:]
					}
					commonlength = commonSuffixLength(textInsert, textDelete)
					if commonlength != 0 {
						insertIndex := len(textInsert) - commonlength
						deleteIndex := len(textDelete) - commonlength
						diffs[pointer].Text = string(textInsert[insertIndex:]) + diffs[pointer].Text
						textInsert = textInsert[:insertIndex]
						textDelete = textDelete[:deleteIndex]
					}
				}
				switch {
				case countDelete == 0:
					diffs = splice(diffs, pointer-countInsert, countDelete+countInsert,
						Diff{OpInsert, string(textInsert)})
				case countInsert == 0:
					diffs = splice(diffs, pointer-countDelete, countDelete+countInsert,
						Diff{OpDelete, string(textDelete)})
				default:
					diffs = splice(diffs, pointer-countDelete-countInsert, countDelete+countInsert,
						Diff{OpDelete, string(textDelete)},
						Diff{OpInsert, string(textInsert)})
				}
				pointer = pointer - countDelete - countInsert + 1
				if countDelete != 0 {
					pointer++
				}
				if countInsert != 0 {
					pointer++
				}
			} else if pointer != 0 && diffs[pointer-1].Op == OpEqual {
				diffs[pointer-1].Text += diffs[pointer].Text
				diffs = append(diffs[:pointer], diffs[pointer+1:]...)
			} else {
				pointer++
			}
			countInsert, countDelete = 0, 0
			textDelete, textInsert = nil, nil
		}
	}
	if len(diffs[len(diffs)-1].Text) == 0 {
		diffs = diffs[:len(diffs)-1] // Drop the sentinel.
	}
	// Second pass: shift single edits sideways to absorb a neighboring
	// equality entirely, e.g. "A<ins>BA</ins>C" -> "<ins>AB</ins>AC".
	changes := false
	pointer = 1
	for pointer < len(diffs)-1 {
		if diffs[pointer-1].Op == OpEqual && diffs[pointer+1].Op == OpEqual {
			if strings.HasSuffix(diffs[pointer].Text, diffs[pointer-1].Text) {
				diffs[pointer].Text = diffs[pointer-1].Text +
					diffs[pointer].Text[:len(diffs[pointer].Text)-len(diffs[pointer-1].Text)]
				diffs[pointer+1].Text = diffs[pointer-1].Text + diffs[pointer+1].Text
				diffs = splice(diffs, pointer-1, 1)
				changes = true
			} else if strings.HasPrefix(diffs[pointer].Text, diffs[pointer+1].Text) {
				diffs[pointer-1].Text += diffs[pointer+1].Text
				diffs[pointer].Text = diffs[pointer].Text[len(diffs[pointer+1].Text):] + diffs[pointer+1].Text
				diffs = splice(diffs, pointer+1, 1)
				changes = true
			}
		}
		pointer++
	}
	if changes {
		diffs = config.DiffCleanupMerge(diffs)
	}
	return diffs
}
