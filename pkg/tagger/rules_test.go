package tagger

import (
	"context"
	"testing"
)

func tagWords(t *testing.T, words ...string) []TaggedToken {
	t.Helper()
	tagged, err := NewRuleTagger().Tag(context.Background(), words)
	if err != nil {
		t.Fatalf("Tag failed: %v", err)
	}
	if len(tagged) != len(words) {
		t.Fatalf("Tag returned %d tokens for %d words", len(tagged), len(words))
	}
	return tagged
}

func TestPossessiveAfterProperNoun(t *testing.T) {
	tagged := tagWords(t, "Peter", "'s", "house")
	if tagged[1].Tag != PossessiveTag {
		t.Errorf("'s after %q tagged %s, want %s", "Peter", tagged[1].Tag, PossessiveTag)
	}
}

func TestContractionAfterPronoun(t *testing.T) {
	tagged := tagWords(t, "It", "'s", "cold")
	if tagged[1].Tag == PossessiveTag {
		t.Errorf("'s after pronoun tagged possessive")
	}
}

func TestAuxiliaryAfterProperNoun(t *testing.T) {
	// "Catherine's been thinking": the participle to the right marks the
	// clitic as auxiliary "has", not possession.
	tagged := tagWords(t, "Catherine", "'s", "been", "thinking")
	if tagged[1].Tag != "VBZ" {
		t.Errorf("'s before participle tagged %s, want VBZ", tagged[1].Tag)
	}
}

func TestCliticTags(t *testing.T) {
	cases := []struct {
		words []string
		idx   int
		want  string
	}{
		{[]string{"I", "'m", "happy"}, 1, "VBP"},
		{[]string{"They", "'re", "here"}, 1, "VBP"},
		{[]string{"It", "'ll", "work"}, 1, "MD"},
		{[]string{"She", "'d", "go"}, 1, "MD"},
		{[]string{"Who", "'d", "'ve", "thought"}, 2, "VB"},
		{[]string{"do", "n't", "go"}, 1, "RB"},
	}
	for _, tc := range cases {
		tagged := tagWords(t, tc.words...)
		if tagged[tc.idx].Tag != tc.want {
			t.Errorf("%v: token %d tagged %s, want %s", tc.words, tc.idx, tagged[tc.idx].Tag, tc.want)
		}
	}
}

func TestCapitalizedContentWordIsProperNoun(t *testing.T) {
	tagged := tagWords(t, "The", "wizard", "met", "Gandalf")
	if tagged[3].Tag != "NNP" {
		t.Errorf("Gandalf tagged %s, want NNP", tagged[3].Tag)
	}
	// Sentence-initial function word must not become a proper noun.
	if tagged[0].Tag != "DT" {
		t.Errorf("The tagged %s, want DT", tagged[0].Tag)
	}
}

func TestDeterminerForcesNoun(t *testing.T) {
	tagged := tagWords(t, "the", "thinking")
	if tagged[1].Tag != "NN" {
		t.Errorf("noun after determiner tagged %s, want NN", tagged[1].Tag)
	}
}
