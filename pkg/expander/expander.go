// Package expander rewrites contractions in tagged text into their full
// forms. Unambiguous contractions are expanded directly; ambiguous ones
// are resolved through learned frequency statistics when available, and
// flagged, never guessed, when they are not.
package expander

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/couzinie/uncontract/pkg/contractions"
	"github.com/couzinie/uncontract/pkg/disambig"
	"github.com/couzinie/uncontract/pkg/spans"
	"github.com/couzinie/uncontract/pkg/tagger"
)

// AmbiguousMarker prefixes the text form of a sentence whose contraction
// could not be resolved. The original tokens are kept so no information is
// lost downstream.
const AmbiguousMarker = "AMBIGUOUS"

// Result is one output sentence. Ambiguous results retain the original
// tokens of the span that could not be resolved.
type Result struct {
	Tokens    []string
	Ambiguous bool
}

// Option configures an Expander.
type Option func(*Expander)

// WithLogger sets the diagnostic logger (default: no-op).
func WithLogger(log *zap.Logger) Option {
	return func(e *Expander) { e.log = log }
}

// WithFrequencies supplies a learned disambiguation table. Without one,
// every multi-candidate contraction is surfaced as ambiguous.
func WithFrequencies(dict *disambig.Table) Option {
	return func(e *Expander) { e.dict = dict }
}

// Expander expands contractions against a static table and optional
// learned frequencies. Read-only after construction.
type Expander struct {
	table *contractions.Table
	dict  *disambig.Table
	log   *zap.Logger
}

// New creates an Expander over the given contraction table.
func New(table *contractions.Table, opts ...Option) *Expander {
	e := &Expander{table: table, log: zap.NewNop()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand processes one tagged sentence. A sentence without contraction
// spans comes back unchanged as a single result. Otherwise each span
// produces its own result: expanded when the span resolves, or flagged
// ambiguous with the original tokens retained. Expansion never errors the
// whole sentence; malformed spans are logged and skipped per the error
// policy.
func (e *Expander) Expand(sent []tagger.TaggedToken) []Result {
	found, err := spans.Find(sent)
	if err != nil {
		// Headless apostrophe run: precondition violation in the input.
		// The well-formed spans are still processed.
		e.log.Error("malformed sentence", zap.Error(err))
	}

	base := tagger.Words(sent)
	if len(found) == 0 {
		return []Result{{Tokens: base}}
	}

	out := make([]Result, 0, len(found))
	for _, span := range found {
		out = append(out, e.expandSpan(base, span))
	}
	return out
}

func (e *Expander) expandSpan(base []string, span spans.Span) Result {
	surface := span.Surface()

	candidates, ok := e.table.Lookup(surface)
	if !ok {
		e.log.Warn("unknown contraction, span left unexpanded",
			zap.String("surface", surface))
		return Result{Tokens: copyTokens(base)}
	}

	// Each candidate phrase must split into exactly one word per span
	// token; anything else silently misaligns the sentence, so it is
	// rejected loudly instead.
	spanLen := len(span.Tokens)
	split := make([][]string, len(candidates))
	for i, phrase := range candidates {
		words := strings.Fields(phrase)
		if len(words) != spanLen {
			e.log.Error("expansion word count does not match span, span skipped",
				zap.String("surface", surface),
				zap.String("expansion", phrase),
				zap.Int("span_len", spanLen))
			return Result{Tokens: copyTokens(base)}
		}
		split[i] = words
	}

	if len(candidates) == 1 {
		return Result{Tokens: applyReplacement(base, span, split[0])}
	}

	if e.dict != nil {
		key := spanKey(span)
		if chosen, ok := e.dict.Resolve(key, candidates); ok {
			for i, phrase := range candidates {
				if phrase == chosen {
					return Result{Tokens: applyReplacement(base, span, split[i])}
				}
			}
		}
	}

	// Irreducibly ambiguous: surface it, keep the original tokens.
	return Result{Tokens: copyTokens(base), Ambiguous: true}
}

// spanKey builds the learned-table key: lower-cased span surfaces plus the
// observed tag sequence, the same shape the corpus builder records.
func spanKey(span spans.Span) disambig.Key {
	words := make([]string, len(span.Tokens))
	tags := make([]string, len(span.Tokens))
	for i, tok := range span.Tokens {
		words[i] = strings.ToLower(tok.Word)
		tags[i] = tok.Tag
	}
	return disambig.Key{Words: words, Tags: tags}
}

func applyReplacement(base []string, span spans.Span, words []string) []string {
	out := copyTokens(base)
	for i, word := range words {
		out[span.Start+i] = word
	}
	return out
}

func copyTokens(base []string) []string {
	return append([]string(nil), base...)
}

// ExpandText is the plain-text convenience used by batch jobs: tokenize,
// tag, expand, rejoin. Ambiguous results carry the AMBIGUOUS marker as
// their first token. One input sentence can yield several output lines
// when it holds several contraction spans.
func (e *Expander) ExpandText(ctx context.Context, tg tagger.Tagger, text string) ([]string, error) {
	tokens := tagger.Tokenize(text)
	tagged, err := tg.Tag(ctx, tokens)
	if err != nil {
		return nil, err
	}

	var lines []string
	for _, res := range e.Expand(tagged) {
		toks := res.Tokens
		if res.Ambiguous {
			toks = append([]string{AmbiguousMarker}, toks...)
		}
		lines = append(lines, tagger.Rejoin(toks))
	}
	return lines, nil
}
