// Command dmp is a command-line front end for the dmp library: computing
// diffs, fuzzy-matching patterns, and making/applying patches from files.
package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/alecthomas/kong"
	"github.com/pkg/profile"

	"github.com/textdmp/dmp"
)

var CLI struct {
	Timeout              time.Duration `default:"1s" help:"Diff bisect deadline (0 disables the timeout)."`
	EditCost             int           `default:"4" help:"Cost of an empty edit, for DiffCleanupEfficiency."`
	MatchDistance        int           `default:"1000" help:"How far a match may drift from its expected location."`
	MatchMaxBits         int           `default:"32" help:"Bitap pattern-length ceiling."`
	PatchMargin          int           `default:"4" help:"Context chunk size around each patch."`
	PatchDeleteThreshold float64       `default:"0.5" help:"How closely a large deletion's contents must match."`
	Profile              bool          `help:"Profile CPU usage for the duration of the run."`

	Diff struct {
		File1        *os.File `arg help:"First file."`
		File2        *os.File `arg help:"Second file."`
		NoCheckLines bool     `help:"Disable the line-mode speedup for large inputs."`
	} `cmd help:"Diff two files and print the result as colored text."`

	Match struct {
		File      *os.File `arg help:"File to search."`
		Pattern   string   `arg help:"Pattern to fuzzily locate."`
		Loc       int      `arg help:"Expected location of the match."`
		Threshold float64  `default:"-1" help:"Override MatchThreshold for this search."`
		Distance  int      `default:"-1" help:"Override MatchDistance for this search."`
	} `cmd help:"Fuzzily locate a pattern inside a file."`

	Patch struct {
		Make struct {
			File1 *os.File `arg help:"Original file."`
			File2 *os.File `arg help:"Revised file."`
		} `cmd help:"Write the patch text to turn file1 into file2."`

		Apply struct {
			File      *os.File `arg help:"File to patch."`
			PatchFile *os.File `arg help:"Patch text, as produced by 'patch make'."`
		} `cmd help:"Apply a patch to a file."`
	} `cmd help:"Make or apply patches."`
}

func buildConfig() *dmp.Config {
	config := dmp.NewDefaultConfig()
	config.DiffTimeout = CLI.Timeout
	config.DiffEditCost = CLI.EditCost
	config.MatchDistance = CLI.MatchDistance
	config.MatchMaxBits = CLI.MatchMaxBits
	config.PatchMargin = CLI.PatchMargin
	config.PatchDeleteThreshold = CLI.PatchDeleteThreshold
	return config
}

func readAll(f *os.File) string {
	b, err := io.ReadAll(f)
	if err != nil {
		fmt.Fprintln(os.Stderr, "dmp:", err)
		os.Exit(1)
	}
	return string(b)
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Description("Compute diffs, fuzzy-match patterns, and make/apply patches."))

	if CLI.Profile {
		defer profile.Start(profile.ProfilePath(".")).Stop()
	}

	config := buildConfig()
	if err := config.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "dmp:", err)
		os.Exit(1)
	}

	switch ctx.Command() {
	case "diff <file1> <file2>":
		runDiff(config)
	case "match <file> <pattern> <loc>":
		runMatch(config)
	case "patch make <file1> <file2>":
		runPatchMake(config)
	case "patch apply <file> <patch-file>":
		runPatchApply(config)
	default:
		ctx.Fatalf("unknown command %q", ctx.Command())
	}
}

func runDiff(config *dmp.Config) {
	text1 := readAll(CLI.Diff.File1)
	text2 := readAll(CLI.Diff.File2)
	diffs := config.Diff(text1, text2, !CLI.Diff.NoCheckLines)
	fmt.Print(config.DiffPrettyText(diffs))
}

func runMatch(config *dmp.Config) {
	text := readAll(CLI.Match.File)
	if CLI.Match.Threshold >= 0 {
		config.MatchThreshold = CLI.Match.Threshold
	}
	if CLI.Match.Distance >= 0 {
		config.MatchDistance = CLI.Match.Distance
	}
	loc, err := config.MatchChecked(text, CLI.Match.Pattern, CLI.Match.Loc)
	if err != nil {
		fmt.Fprintln(os.Stderr, "dmp:", err)
		os.Exit(1)
	}
	fmt.Println(strconv.Itoa(loc))
}

func runPatchMake(config *dmp.Config) {
	text1 := readAll(CLI.Patch.Make.File1)
	text2 := readAll(CLI.Patch.Make.File2)
	patches := config.PatchMake(text1, text2)
	fmt.Print(config.PatchToText(patches))
}

func runPatchApply(config *dmp.Config) {
	text := readAll(CLI.Patch.Apply.File)
	patchText := readAll(CLI.Patch.Apply.PatchFile)
	patches, err := config.PatchFromText(patchText)
	if err != nil {
		fmt.Fprintln(os.Stderr, "dmp:", err)
		os.Exit(1)
	}
	result, applied := config.PatchApply(patches, text)
	fmt.Print(result)
	var summary strings.Builder
	for i, ok := range applied {
		if ok {
			fmt.Fprintf(&summary, "patch %d: applied\n", i)
		} else {
			fmt.Fprintf(&summary, "patch %d: not applied\n", i)
		}
	}
	fmt.Fprint(os.Stderr, summary.String())
}
