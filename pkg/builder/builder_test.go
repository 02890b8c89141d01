package builder

import (
	"context"
	"strings"
	"testing"

	"github.com/couzinie/uncontract/pkg/contractions"
	"github.com/couzinie/uncontract/pkg/disambig"
	"github.com/couzinie/uncontract/pkg/tagger"
)

// mapTagger is a deterministic stand-in for the external tagging model.
type mapTagger struct {
	tags  map[string]string
	calls int
	fail  bool
}

func (m *mapTagger) Tag(_ context.Context, words []string) ([]tagger.TaggedToken, error) {
	m.calls++
	if m.fail {
		return nil, &tagger.TaggingError{Op: "service down"}
	}
	out := make([]tagger.TaggedToken, len(words))
	for i, w := range words {
		tag, ok := m.tags[strings.ToLower(w)]
		if !ok {
			tag = "NN"
		}
		out[i] = tagger.TaggedToken{Word: w, Tag: tag}
	}
	return out, nil
}

func defaultTags() map[string]string {
	return map[string]string{
		"she": "PRP", "it": "PRP", "i": "PRP", "who": "WP",
		"'d": "MD", "'ll": "MD", "'s": "VBZ", "'m": "VBP", "'ve": "VB",
		"would": "MD", "will": "MD", "had": "VBD", "has": "VBZ",
		"is": "VBZ", "go": "VB", "gone": "VBN",
	}
}

func testContractions() *contractions.Table {
	return contractions.New([]contractions.Entry{
		{Contraction: "i'm", Expansions: []string{"i am"}},
		{Contraction: "she'd", Expansions: []string{"she would", "she had"}},
		{Contraction: "it's", Expansions: []string{"it is", "it has"}},
		{Contraction: "'ll", Expansions: []string{"will", "shall"}},
	})
}

func TestBuildRecordsFrequencies(t *testing.T) {
	tg := &mapTagger{tags: defaultTags()}
	b, err := New(testContractions(), tg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	corpus := [][]string{
		{"She", "would", "go"},
		{"She", "would", "go"},
		{"She", "had", "gone"},
	}
	stats, err := b.Run(context.Background(), corpus)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Contracted != 3 {
		t.Errorf("Contracted = %d, want 3", stats.Contracted)
	}

	key := disambig.Key{Words: []string{"she", "'d"}, Tags: []string{"PRP", "MD"}}
	rec, ok := b.Table().Lookup(key)
	if !ok {
		t.Fatalf("no record for %v", key)
	}
	if rec.Counts["she would"] != 2 || rec.Counts["she had"] != 1 {
		t.Errorf("counts = %v", rec.Counts)
	}
}

func TestBuildCountsAmbiguities(t *testing.T) {
	tg := &mapTagger{tags: defaultTags()}
	b, _ := New(testContractions(), tg)

	corpus := [][]string{
		{"She", "would", "go"},
		{"She", "had", "gone"},
	}
	stats, err := b.Run(context.Background(), corpus)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	// Same key, two distinct expansions: the core ambiguity case.
	if stats.Ambiguities != 1 {
		t.Errorf("Ambiguities = %d, want 1", stats.Ambiguities)
	}
	if stats.NewRecords != 1 {
		t.Errorf("NewRecords = %d, want 1", stats.NewRecords)
	}
}

func TestBuildSkipsUnambiguous(t *testing.T) {
	tg := &mapTagger{tags: defaultTags()}
	b, _ := New(testContractions(), tg)

	// "i am" expands only one way; the builder must not learn it.
	stats, err := b.Run(context.Background(), [][]string{{"I", "am", "happy"}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Contracted != 0 {
		t.Errorf("Contracted = %d, want 0", stats.Contracted)
	}
	if stats.Skipped != 1 {
		t.Errorf("Skipped = %d, want 1 (prefilter)", stats.Skipped)
	}
}

func TestBuildSingleWordWindow(t *testing.T) {
	tg := &mapTagger{tags: defaultTags()}
	b, _ := New(testContractions(), tg)

	stats, err := b.Run(context.Background(), [][]string{{"It", "will", "go"}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.Contracted != 1 {
		t.Fatalf("Contracted = %d, want 1", stats.Contracted)
	}

	rec, ok := b.Table().Lookup(disambig.Key{Words: []string{"'ll"}, Tags: []string{"MD"}})
	if !ok || rec.Counts["will"] != 1 {
		t.Errorf("single-word record = %v, %v", rec, ok)
	}
}

func TestBuildDeterministic(t *testing.T) {
	corpus := [][]string{
		{"She", "would", "go"},
		{"It", "has", "gone"},
		{"She", "had", "gone"},
		{"It", "is", "here"},
	}
	run := func() string {
		b, _ := New(testContractions(), &mapTagger{tags: defaultTags()})
		if _, err := b.Run(context.Background(), corpus); err != nil {
			t.Fatalf("Run failed: %v", err)
		}
		data, err := b.Table().Marshal()
		if err != nil {
			t.Fatalf("Marshal failed: %v", err)
		}
		return string(data)
	}
	if run() != run() {
		t.Error("two identical runs produced different tables")
	}
}

func TestBuildDropsSentenceOnTaggingFailure(t *testing.T) {
	tg := &mapTagger{tags: defaultTags(), fail: true}
	b, _ := New(testContractions(), tg)

	stats, err := b.Run(context.Background(), [][]string{{"She", "would", "go"}})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if stats.TagFailures != 1 {
		t.Errorf("TagFailures = %d, want 1", stats.TagFailures)
	}
	if b.Table().Len() != 0 {
		t.Errorf("table has %d keys after tagging failure, want 0", b.Table().Len())
	}
}

func TestBuildHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	b, _ := New(testContractions(), &mapTagger{tags: defaultTags()})
	stats, err := b.Run(ctx, [][]string{{"She", "would", "go"}})
	if err == nil {
		t.Fatal("want context error")
	}
	if stats.Sentences != 0 {
		t.Errorf("processed %d sentences after cancel", stats.Sentences)
	}
}

func TestBuildGeneralizesPronounHeads(t *testing.T) {
	b, _ := New(testContractions(), &mapTagger{tags: defaultTags()})
	if _, err := b.Run(context.Background(), [][]string{{"She", "would", "go"}}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	key := disambig.Key{Words: []string{"she", "'d"}, Tags: []string{"PRP", "MD"}}
	if _, ok := b.Table().LookupGeneralized(key); !ok {
		t.Error("no placeholder record for pronoun-headed key")
	}
}

func TestSplitCanonical(t *testing.T) {
	got, err := splitCanonical("who'd've", 3)
	if err != nil {
		t.Fatalf("splitCanonical failed: %v", err)
	}
	want := []string{"who", "'d", "'ve"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("splitCanonical = %v, want %v", got, want)
			break
		}
	}
}

func TestSplitCanonicalMismatchFailsLoudly(t *testing.T) {
	if _, err := splitCanonical("she'd", 3); err == nil {
		t.Error("want error for 2-segment contraction replacing 3 words")
	}
	if _, err := splitCanonical("she'd", 1); err == nil {
		t.Error("want error for multi-segment contraction replacing 1 word")
	}
}
