package dmp

import (
	"fmt"
	"math"
)

// Match locates the best instance of pattern in text near loc. Returns -1 if
// no match is found.
func (config *Config) Match(text, pattern string, loc int) int {
	loc = max(0, min(loc, len(text)))
	if text == pattern {
		return 0 // Shortcut; the algorithm doesn't guarantee this on its own.
	} else if len(text) == 0 {
		return -1
	} else if loc+len(pattern) <= len(text) && text[loc:loc+len(pattern)] == pattern {
		return loc // Perfect match at the perfect spot (includes the empty pattern).
	}
	return config.MatchBitap(text, pattern, loc)
}

// MatchChecked is Match with an explicit ceiling check: the Bitap bit-vector
// state fits in a machine word only up to MatchMaxBits pattern characters,
// so a caller handing patterns of unbounded size to Match should use this
// instead to get ErrPatternTooLong rather than a silently truncated search.
func (config *Config) MatchChecked(text, pattern string, loc int) (int, error) {
	if config.MatchMaxBits != 0 && len(pattern) > config.MatchMaxBits {
		return -1, fmt.Errorf("%w: pattern has %d characters, limit is %d", ErrPatternTooLong, len(pattern), config.MatchMaxBits)
	}
	return config.Match(text, pattern, loc), nil
}

// MatchBitap locates the best instance of pattern in text near loc using the
// Bitap algorithm. Returns -1 if no match was found.
func (config *Config) MatchBitap(text, pattern string, loc int) int {
	s := config.MatchAlphabet(pattern)
	scoreThreshold := config.MatchThreshold
	// A nearby exact match tightens the threshold before the fuzzy search
	// even starts (speedup).
	bestLoc := indexOf(text, pattern, loc)
	if bestLoc != -1 {
		scoreThreshold = math.Min(config.matchBitapScore(0, bestLoc, loc, pattern), scoreThreshold)
		bestLoc = lastIndexOf(text, pattern, loc+len(pattern))
		if bestLoc != -1 {
			scoreThreshold = math.Min(config.matchBitapScore(0, bestLoc, loc, pattern), scoreThreshold)
		}
	}
	matchmask := 1 << uint(len(pattern)-1)
	bestLoc = -1
	var binMin, binMid int
	binMax := len(pattern) + len(text)
	lastRd := []int{}
	for d := 0; d < len(pattern); d++ {
		// Binary-search how far from loc this error level can stray while
		// staying under the threshold.
		binMin = 0
		binMid = binMax
		for binMin < binMid {
			if config.matchBitapScore(d, loc+binMid, loc, pattern) <= scoreThreshold {
				binMin = binMid
			} else {
				binMax = binMid
			}
			binMid = (binMax-binMin)/2 + binMin
		}
		binMax = binMid // This iteration's result bounds the next.
		start := max(1, loc-binMid+1)
		finish := min(loc+binMid, len(text)) + len(pattern)
		rd := make([]int, finish+2)
		rd[finish+1] = (1 << uint(d)) - 1
		for j := finish; j >= start; j-- {
			var charMatch int
			if len(text) <= j-1 {
				charMatch = 0
			} else if _, ok := s[text[j-1]]; !ok {
				charMatch = 0
			} else {
				charMatch = s[text[j-1]]
			}
			if d == 0 {
				rd[j] = ((rd[j+1] << 1) | 1) & charMatch
			} else {
				rd[j] = ((rd[j+1]<<1)|1)&charMatch | (((lastRd[j+1] | lastRd[j]) << 1) | 1) | lastRd[j+1]
			}
			if (rd[j] & matchmask) != 0 {
				score := config.matchBitapScore(d, j-1, loc, pattern)
				if score <= scoreThreshold {
					scoreThreshold = score
					bestLoc = j - 1
					if bestLoc > loc {
						// Still approaching loc; don't overshoot further.
						start = max(1, 2*loc-bestLoc)
					} else {
						// Past loc already; it's downhill from here.
						break
					}
				}
			}
		}
		if config.matchBitapScore(d+1, loc, loc, pattern) > scoreThreshold {
			break // No hope of a better match at a higher error level.
		}
		lastRd = rd
	}
	return bestLoc
}

// matchBitapScore computes the score for a match with e errors at location
// x, where loc is the location to search around.
func (config *Config) matchBitapScore(e, x, loc int, pattern string) float64 {
	accuracy := float64(e) / float64(len(pattern))
	proximity := math.Abs(float64(loc - x))
	if config.MatchDistance == 0 {
		if proximity == 0 {
			return accuracy
		}
		return 1.0
	}
	return accuracy + proximity/float64(config.MatchDistance)
}

// MatchAlphabet builds the Bitap algorithm's per-character bitmask alphabet
// for pattern.
func (config *Config) MatchAlphabet(pattern string) map[byte]int {
	s := map[byte]int{}
	charPattern := []byte(pattern)
	for _, c := range charPattern {
		if _, ok := s[c]; !ok {
			s[c] = 0
		}
	}
	i := 0
	for _, c := range charPattern {
		s[c] |= int(uint(1) << uint(len(pattern)-i-1))
		i++
	}
	return s
}
