package dmp

import "errors"

// Sentinel errors returned by dmp. Callers should compare against these
// with errors.Is rather than matching error strings.
var (
	// ErrInvalidConfig is returned by Config.Validate when a tunable is out
	// of its permitted range or two tunables are mutually inconsistent.
	ErrInvalidConfig = errors.New("dmp: invalid config")

	// ErrInvalidDelta is returned by DiffFromDelta when the delta string is
	// malformed: an unknown leading token character, a non-numeric or
	// negative count, or a count that over/under-consumes the source text.
	ErrInvalidDelta = errors.New("dmp: invalid delta")

	// ErrInvalidPatchHeader is returned by PatchFromText when a line that
	// should be a "@@ -l,n +l,n @@" header does not match that grammar.
	ErrInvalidPatchHeader = errors.New("dmp: invalid patch header")

	// ErrInvalidPatchLine is returned by PatchFromText when a patch body
	// line starts with something other than '+', '-', ' ', or '@'.
	ErrInvalidPatchLine = errors.New("dmp: invalid patch line")

	// ErrAlphabetOverflow is returned by DiffLinesToChars/DiffLinesToRunes
	// when the two texts together contain more distinct lines than the
	// code-unit alphabet can index. This is a configuration-ceiling error,
	// not a soft failure: callers must either accept fewer distinct lines
	// or diff at character granularity instead.
	ErrAlphabetOverflow = errors.New("dmp: too many distinct lines for line-mode diffing")

	// ErrPatternTooLong is returned by MatchChecked when the pattern exceeds
	// MatchMaxBits; Bitap's state is packed into a machine word and cannot
	// represent a longer pattern.
	ErrPatternTooLong = errors.New("dmp: pattern too long for bitap")
)
