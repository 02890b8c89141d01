// Package tagger defines the part-of-speech tagging boundary.
// The contraction engine never depends on a concrete tagger; anything
// that can turn a token sequence into (word, tag) pairs plugs in here.
package tagger

import (
	"context"
	"fmt"
)

// PossessiveTag is the Penn Treebank tag for the possessive marker ("'s"
// in "Peter's house"). It is the sole signal separating possessive
// apostrophes from contraction clitics.
const PossessiveTag = "POS"

// TaggedToken pairs a surface word with its grammatical tag.
type TaggedToken struct {
	Word string
	Tag  string
}

// Tagger maps a token sequence to a tagged sequence of equal length.
type Tagger interface {
	Tag(ctx context.Context, words []string) ([]TaggedToken, error)
}

// TaggingError reports that the underlying tagging service failed or
// returned output that does not align with the input.
type TaggingError struct {
	Op  string
	Err error
}

func (e *TaggingError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("tagger: %s", e.Op)
	}
	return fmt.Sprintf("tagger: %s: %v", e.Op, e.Err)
}

func (e *TaggingError) Unwrap() error { return e.Err }

// Words strips the tags from a tagged sentence.
func Words(sent []TaggedToken) []string {
	out := make([]string, len(sent))
	for i, tok := range sent {
		out[i] = tok.Word
	}
	return out
}
