// Package tags extracts @nist control-tag annotations from source text.
// A tag associates a line of code with a NIST 800-53 control id and an
// optional quoted justification:
//
//	// @nist ia-2 "User authentication"
//	# @nist au-2
//	/* @nist si-10 "Validate request bodies" */
//
// The parser is purely lexical: it works on raw text regardless of comment
// style, skips anything that does not match the tag grammar, and never fails
// on malformed input.
package tags

import (
	"regexp"
	"strings"
)

// Tag is a single parsed annotation occurrence. Tags are created fresh on
// every parse and never mutated.
type Tag struct {
	// ControlID is the annotated control id, normalized to lowercase. It is
	// recorded as written and is not validated against any catalog.
	ControlID string
	// Description is the quoted justification text, without the quotes.
	// Empty when the tag carries no description.
	Description string
	// HasDescription distinguishes an absent description from an empty
	// quoted one (`@nist ia-2` vs `@nist ia-2 ""`).
	HasDescription bool
	// Offset is the byte offset of the @nist marker within the text.
	Offset int
	// Line and Column are the 1-based position of the marker.
	Line   int
	Column int
	// SourceFile identifies the originating file. It is supplied by the
	// caller and opaque to the engine.
	SourceFile string
}

// Marker is the literal annotation marker searched for in source text.
const Marker = "@nist"

// tagRE matches one tag occurrence: the literal marker, a control-id token,
// and an optional double-quoted description on the same line. Only the id is
// matched case-insensitively (normalized to lowercase on capture); the marker
// itself must be lowercase so that the parser and ContainsMarker agree on
// which lines carry a tag. The \b guard rejects partial tokens such as
// "ia-2x".
var tagRE = regexp.MustCompile(`@nist[ \t]+((?i:[a-z]{2})-[0-9]+)\b(?:[ \t]+"([^"\n]*)")?`)

// Parse extracts all tag occurrences from text, in the order they appear
// (left-to-right, top-to-bottom). Regions that do not match the grammar are
// skipped; re-parsing identical text yields an identical sequence.
func Parse(text []byte, sourceFile string) []Tag {
	matches := tagRE.FindAllSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}

	lineStarts := computeLineStarts(text)

	out := make([]Tag, 0, len(matches))
	for _, m := range matches {
		start := m[0]
		line := findLine(lineStarts, start)

		tag := Tag{
			ControlID:  strings.ToLower(string(text[m[2]:m[3]])),
			Offset:     start,
			Line:       line + 1,
			Column:     start - lineStarts[line] + 1,
			SourceFile: sourceFile,
		}
		if m[4] >= 0 {
			tag.Description = string(text[m[4]:m[5]])
			tag.HasDescription = true
		}
		out = append(out, tag)
	}
	return out
}

// ContainsMarker reports whether a single line of text carries the @nist
// marker. Used by the validator's proximity check.
func ContainsMarker(line string) bool {
	return strings.Contains(line, Marker)
}

// computeLineStarts returns the byte offset of the start of each line.
func computeLineStarts(text []byte) []int {
	starts := []int{0}
	for i, b := range text {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// findLine returns the 0-based line index for the given byte offset using a
// linear scan over the precomputed line start offsets.
func findLine(lineStarts []int, offset int) int {
	for i := len(lineStarts) - 1; i >= 0; i-- {
		if lineStarts[i] <= offset {
			return i
		}
	}
	return 0
}
