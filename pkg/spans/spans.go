// Package spans locates contraction spans inside tagged sentences.
//
// A contraction token is a token whose surface begins with an apostrophe
// and whose tag is not the possessive marker. That tag check is the sole
// possessive/contraction signal ("Peter 's house" vs "it 's cold") and is
// a hard dependency on tagger quality; a mis-tagged possessive will be
// treated as a contraction. Known limitation, not a bug.
package spans

import (
	"fmt"
	"strings"

	"github.com/couzinie/uncontract/pkg/tagger"
)

// maxClitics caps how many apostrophe continuations attach to one head
// ("Who" + "'d" + "'ve"). English has no deeper stacking.
const maxClitics = 2

// Span is a run of 2-3 tokens forming one contraction: the head word plus
// its apostrophe continuations. Start and End are inclusive indices into
// the sentence; Tokens aliases nothing from the caller.
type Span struct {
	Start  int
	End    int
	Tokens []tagger.TaggedToken
}

// Surface reconstructs the contracted surface string by concatenating the
// constituent tokens with no separator: "Who"+"'d"+"'ve" -> "Who'd've".
func (s Span) Surface() string {
	var b strings.Builder
	for _, tok := range s.Tokens {
		b.WriteString(tok.Word)
	}
	return b.String()
}

// InvalidSpanError flags a malformed span: an apostrophe run with no
// preceding head word, or a replacement that does not align with the span.
type InvalidSpanError struct {
	Index  int
	Reason string
}

func (e *InvalidSpanError) Error() string {
	return fmt.Sprintf("invalid span at index %d: %s", e.Index, e.Reason)
}

// Find scans a tagged sentence left to right and returns the contraction
// spans, non-overlapping and in order. Maximal runs of adjacent
// contraction tokens are grouped and the single token preceding the run
// becomes the span head.
//
// A run starting at index 0 has no head; that is a precondition violation
// in the input. Find still returns every well-formed span and reports the
// malformed run through the error, so callers can log it and continue.
func Find(sent []tagger.TaggedToken) ([]Span, error) {
	var out []Span
	var headless *InvalidSpanError

	i := 0
	for i < len(sent) {
		if !isContractionToken(sent[i]) {
			i++
			continue
		}

		// Measure the maximal run of adjacent contraction tokens.
		runStart := i
		for i < len(sent) && isContractionToken(sent[i]) {
			i++
		}
		runLen := i - runStart

		if runStart == 0 {
			if headless == nil {
				headless = &InvalidSpanError{Index: 0, Reason: "apostrophe token with no preceding head word"}
			}
			continue
		}
		if runLen > maxClitics {
			// Keep the head plus the first two clitics; the overflow
			// tokens cannot start a span of their own.
			runLen = maxClitics
		}

		start, end := runStart-1, runStart+runLen-1
		out = append(out, Span{
			Start:  start,
			End:    end,
			Tokens: append([]tagger.TaggedToken(nil), sent[start:end+1]...),
		})
	}

	if headless != nil {
		return out, headless
	}
	return out, nil
}

func isContractionToken(tok tagger.TaggedToken) bool {
	return strings.HasPrefix(tok.Word, "'") && tok.Tag != tagger.PossessiveTag
}
