// Package builder runs the offline corpus pass that learns contraction
// disambiguation statistics. Each expandable word span in the corpus is
// contracted, the contracted sentence is re-tagged, and the observed
// (contracted tokens, tag sequence) -> expansion frequency is accumulated
// into a disambig.Table for the expander to consult later.
package builder

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/coregx/ahocorasick"
	"github.com/orsinium-labs/stopwords"
	"go.uber.org/zap"

	"github.com/couzinie/uncontract/pkg/contractions"
	"github.com/couzinie/uncontract/pkg/disambig"
	"github.com/couzinie/uncontract/pkg/tagger"
)

// Stats aggregates one build run. Returned rather than kept as package
// state so the builder stays reentrant and testable.
type Stats struct {
	Sentences   int // sentences consumed from the corpus
	Skipped     int // sentences the prefilter rejected
	Contracted  int // contraction observations recorded
	NewRecords  int // distinct (tokens, tags) keys created
	Ambiguities int // keys that gained a second distinct expansion
	TagFailures int // sentences dropped because re-tagging failed
}

// Option configures a Builder.
type Option func(*Builder)

// WithLogger sets the diagnostic logger (default: no-op).
func WithLogger(log *zap.Logger) Option {
	return func(b *Builder) { b.log = log }
}

// WithGeneralization toggles recording of named-entity placeholder keys
// for pronoun-headed contractions (default: on).
func WithGeneralization(on bool) Option {
	return func(b *Builder) { b.generalize = on }
}

// Builder accumulates disambiguation statistics over a corpus. Not safe
// for concurrent use: the table and counters are shared mutable
// accumulators, and sentences are processed strictly sequentially.
type Builder struct {
	inverted   map[string]string // lower-cased expansion phrase -> canonical contraction
	dict       *disambig.Table
	tg         tagger.Tagger
	prefilter  *ahocorasick.Automaton
	stop       *stopwords.Stopwords
	log        *zap.Logger
	generalize bool
}

// New creates a Builder over the ambiguous entries of the contraction
// table. Unambiguous contractions are left out: they expand directly and
// need no learned statistics.
func New(table *contractions.Table, tg tagger.Tagger, opts ...Option) (*Builder, error) {
	b := &Builder{
		inverted:   table.InvertAmbiguous(),
		dict:       disambig.NewTable(),
		tg:         tg,
		stop:       stopwords.MustGet("en"),
		log:        zap.NewNop(),
		generalize: true,
	}
	for _, opt := range opts {
		opt(b)
	}

	// Prefilter automaton over every ambiguous expansion phrase. Phrases
	// are wrapped in spaces so matches land on word boundaries only.
	if len(b.inverted) > 0 {
		patterns := make([]string, 0, len(b.inverted))
		for phrase := range b.inverted {
			patterns = append(patterns, " "+phrase+" ")
		}
		ac, err := ahocorasick.NewBuilder().
			AddStrings(patterns).
			SetMatchKind(ahocorasick.LeftmostLongest).
			SetPrefilter(true).
			Build()
		if err != nil {
			return nil, fmt.Errorf("build prefilter automaton: %w", err)
		}
		b.prefilter = ac
	}
	return b, nil
}

// Table returns the accumulated disambiguation table.
func (b *Builder) Table() *disambig.Table { return b.dict }

// Run consumes a corpus of pre-split sentences. Counts in the table only
// ever grow; running twice over the same corpus from a fresh Builder
// yields identical tables. Cancellation is honored between sentences.
func (b *Builder) Run(ctx context.Context, corpus [][]string) (Stats, error) {
	var stats Stats
	for _, sent := range corpus {
		if err := ctx.Err(); err != nil {
			return stats, err
		}
		stats.Sentences++

		if !b.mayContract(sent) {
			stats.Skipped++
			continue
		}
		if err := b.processSentence(ctx, sent, &stats); err != nil {
			return stats, err
		}
	}
	return stats, nil
}

// mayContract is the O(len) prefilter: does any ambiguous expansion phrase
// occur in the sentence at all?
func (b *Builder) mayContract(sent []string) bool {
	if b.prefilter == nil {
		return false
	}
	haystack := " " + strings.ToLower(strings.Join(sent, " ")) + " "
	return len(b.prefilter.FindAllOverlapping([]byte(haystack))) > 0
}

// processSentence runs the greedy window scan: at each position try the
// 3-word, then 2-word, then 1-word window against the inverted table. A
// hit consumes its window; a miss slides the scan by one word.
func (b *Builder) processSentence(ctx context.Context, sent []string, stats *Stats) error {
	j := 0
	for j < len(sent) {
		window, canonical := b.matchAt(sent, j)
		if window == 0 {
			j++
			continue
		}

		contracted, err := splitCanonical(canonical, window)
		if err != nil {
			// Malformed table entry; the table is broken, not the corpus.
			return err
		}

		if err := b.record(ctx, sent, j, window, contracted, stats); err != nil {
			var tagErr *tagger.TaggingError
			if errors.As(err, &tagErr) {
				// Fatal for this sentence only.
				stats.TagFailures++
				b.log.Warn("re-tagging failed, dropping sentence",
					zap.Strings("sentence", sent),
					zap.Error(err))
				return nil
			}
			return err
		}
		j += window
	}
	return nil
}

func (b *Builder) matchAt(sent []string, j int) (window int, canonical string) {
	for n := 3; n >= 1; n-- {
		if j+n > len(sent) {
			continue
		}
		phrase := strings.ToLower(strings.Join(sent[j:j+n], " "))
		if c, ok := b.inverted[phrase]; ok {
			return n, c
		}
	}
	return 0, ""
}

// record rewrites the span with the contracted tokens, re-tags the full
// sentence, and increments the frequency of the originally observed
// expansion under the aligned (tokens, tags) key.
func (b *Builder) record(ctx context.Context, sent []string, j, window int, contracted []string, stats *Stats) error {
	rewritten := make([]string, 0, len(sent)-window+len(contracted))
	rewritten = append(rewritten, sent[:j]...)
	rewritten = append(rewritten, contracted...)
	rewritten = append(rewritten, sent[j+window:]...)

	tagged, err := b.tg.Tag(ctx, rewritten)
	if err != nil {
		return err
	}
	if len(tagged) != len(rewritten) {
		return &tagger.TaggingError{
			Op: fmt.Sprintf("misaligned output: %d tokens in, %d out", len(rewritten), len(tagged)),
		}
	}

	tags := make([]string, window)
	for i := 0; i < window; i++ {
		tags[i] = tagged[j+i].Tag
	}

	key := disambig.Key{Words: contracted, Tags: tags}
	expansion := strings.ToLower(strings.Join(sent[j:j+window], " "))

	newKey, newExpansion := b.dict.Add(key, expansion)
	stats.Contracted++
	if newKey {
		stats.NewRecords++
	}
	if newExpansion {
		stats.Ambiguities++
		b.log.Info("ambiguity added",
			zap.Strings("words", key.Words),
			zap.Strings("tags", key.Tags),
			zap.String("expansion", expansion))
	}

	// Pronoun-headed keys are also recorded under the named-entity
	// placeholder so the expander can back off for name heads.
	if b.generalize && b.stop.Contains(contracted[0]) {
		b.dict.Add(key.Generalize(), expansion)
	}
	return nil
}

// splitCanonical splits a canonical contraction back into its token form:
// "she'd've" replacing a 3-word window becomes ["she", "'d", "'ve"]. The
// apostrophe-segment count must equal the window size; anything else means
// the static table pairs a contraction with an expansion of a different
// word count, which is a malformed table and fails loudly.
func splitCanonical(canonical string, window int) ([]string, error) {
	if window == 1 {
		if strings.ContainsRune(canonical[1:], '\'') {
			return nil, fmt.Errorf(
				"single-word contraction %q has internal apostrophes: expansion/window mismatch in table", canonical)
		}
		return []string{canonical}, nil
	}
	parts := strings.Split(canonical, "'")
	if len(parts) != window {
		return nil, fmt.Errorf(
			"contraction %q splits into %d segments but replaces %d words: malformed table entry",
			canonical, len(parts), window)
	}
	out := make([]string, len(parts))
	out[0] = parts[0]
	for i := 1; i < len(parts); i++ {
		out[i] = "'" + parts[i]
	}
	return out, nil
}
