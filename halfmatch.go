package dmp

// DiffHalfMatch checks whether the two texts share a substring that is at
// least half the length of the longer text. This speedup can produce
// non-minimal diffs, so it is skipped entirely when DiffTimeout is zero (no
// deadline means the caller asked for an optimal diff, not a fast one).
func (config *Config) DiffHalfMatch(text1, text2 string) []string {
	runeSlices := config.diffHalfMatch([]rune(text1), []rune(text2))
	if runeSlices == nil {
		return nil
	}
	result := make([]string, len(runeSlices))
	for i, r := range runeSlices {
		result[i] = string(r)
	}
	return result
}

func (config *Config) diffHalfMatch(text1, text2 []rune) [][]rune {
	if config.DiffTimeout <= 0 {
		// Don't risk a non-optimal diff when there's no time pressure.
		return nil
	}
	var longtext, shorttext []rune
	if len(text1) > len(text2) {
		longtext = text1
		shorttext = text2
	} else {
		longtext = text2
		shorttext = text1
	}
	if len(longtext) < 4 || len(shorttext)*2 < len(longtext) {
		return nil // Pointless.
	}
	// Probe two seed positions -- the second and third quarter of the
	// longer text -- and keep whichever yields the longer match.
	hm1 := config.diffHalfMatchI(longtext, shorttext, (len(longtext)+3)/4)
	hm2 := config.diffHalfMatchI(longtext, shorttext, (len(longtext)+1)/2)
	var hm [][]rune
	switch {
	case hm1 == nil && hm2 == nil:
		return nil
	case hm2 == nil:
		hm = hm1
	case hm1 == nil:
		hm = hm2
	default:
		if len(hm1[4]) > len(hm2[4]) {
			hm = hm1
		} else {
			hm = hm2
		}
	}
	if len(text1) > len(text2) {
		return hm
	}
	return [][]rune{hm[2], hm[3], hm[0], hm[1], hm[4]}
}

// diffHalfMatchI checks whether a substring of shorttext exists within
// longtext such that the substring is at least half the length of longtext.
// Returns the prefix of longtext, the suffix of longtext, the prefix of
// shorttext, the suffix of shorttext, and the common middle, or nil if no
// such match exists.
func (config *Config) diffHalfMatchI(longtext, shorttext []rune, i int) [][]rune {
	var bestCommonA, bestCommonB []rune
	var bestCommonLen int
	var bestLongtextA, bestLongtextB []rune
	var bestShorttextA, bestShorttextB []rune
	// Seed with a 1/4-length substring of longtext at position i.
	seed := longtext[i : i+len(longtext)/4]
	for j := runesIndexOf(shorttext, seed, 0); j != -1; j = runesIndexOf(shorttext, seed, j+1) {
		prefixLength := commonPrefixLength(longtext[i:], shorttext[j:])
		suffixLength := commonSuffixLength(longtext[:i], shorttext[:j])
		if bestCommonLen < suffixLength+prefixLength {
			bestCommonA = shorttext[j-suffixLength : j]
			bestCommonB = shorttext[j : j+prefixLength]
			bestCommonLen = len(bestCommonA) + len(bestCommonB)
			bestLongtextA = longtext[:i-suffixLength]
			bestLongtextB = longtext[i+prefixLength:]
			bestShorttextA = shorttext[:j-suffixLength]
			bestShorttextB = shorttext[j+prefixLength:]
		}
	}
	if bestCommonLen*2 < len(longtext) {
		return nil
	}
	return [][]rune{
		bestLongtextA,
		bestLongtextB,
		bestShorttextA,
		bestShorttextB,
		append(bestCommonA, bestCommonB...),
	}
}
