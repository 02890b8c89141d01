package tagger

import (
	"context"
	"strings"
	"unicode"

	"github.com/orsinium-labs/stopwords"
)

// RuleTagger is an in-process fallback tagger emitting Penn Treebank tags.
// It uses a 2-pass approach:
//  1. Baseline: closed-class lexicon lookup + suffix heuristics
//  2. Reinforcement: contextual correction rules, including the
//     possessive-vs-contraction decision for apostrophe clitics
//
// It exists so the engine runs without an external tagging service; for
// corpus-scale builds an external model behind ExecTagger is the better
// choice.
type RuleTagger struct {
	lexicon map[string]string
	stop    *stopwords.Stopwords
}

// NewRuleTagger creates a RuleTagger with the default English lexicon.
func NewRuleTagger() *RuleTagger {
	t := &RuleTagger{
		lexicon: make(map[string]string),
		stop:    stopwords.MustGet("en"),
	}
	t.loadDefaultLexicon()
	return t
}

// Tag implements Tagger. It never fails; the error return satisfies the
// interface contract.
func (t *RuleTagger) Tag(_ context.Context, words []string) ([]TaggedToken, error) {
	tags := make([]string, len(words))

	// Pass 1: Baseline (static)
	for i, word := range words {
		tags[i] = t.lookupBaseline(word)
	}

	// Pass 2: Context reinforcement
	for i := range tags {
		word := words[i]

		if strings.HasPrefix(word, "'") || word == "n't" {
			tags[i] = t.cliticTag(words, tags, i)
			continue
		}

		prev := ""
		if i > 0 {
			prev = tags[i-1]
		}

		// Determiner forces noun: "the [run]"
		if prev == "DT" && isVerbal(tags[i]) {
			tags[i] = "NN"
			continue
		}
		// Modal forces base verb: "will [attack]"
		if prev == "MD" && isNominal(tags[i]) {
			tags[i] = "VB"
		}
	}

	out := make([]TaggedToken, len(words))
	for i, word := range words {
		out[i] = TaggedToken{Word: word, Tag: tags[i]}
	}
	return out, nil
}

// cliticTag resolves apostrophe-leading tokens. The "'s" case is the hard
// one: after a nominal it is possessive unless the next word reads like a
// participle ("Catherine's been thinking").
func (t *RuleTagger) cliticTag(words, tags []string, i int) string {
	switch strings.ToLower(words[i]) {
	case "'m", "'re":
		return "VBP"
	case "'ve":
		if i > 0 && tags[i-1] == "MD" {
			// "would've": perfect auxiliary after a modal
			return "VB"
		}
		return "VBP"
	case "'ll", "'d":
		return "MD"
	case "n't", "'t":
		return "RB"
	case "'s":
		if i > 0 && (tags[i-1] == "NN" || tags[i-1] == "NNS" || tags[i-1] == "NNP") {
			if i+1 < len(tags) && (tags[i+1] == "VBN" || tags[i+1] == "VBG") {
				return "VBZ"
			}
			return PossessiveTag
		}
		return "VBZ"
	case "'":
		return PossessiveTag
	}
	return "VBP"
}

func (t *RuleTagger) lookupBaseline(word string) string {
	lower := fastLower(word)
	if tag, ok := t.lexicon[lower]; ok {
		return tag
	}
	return t.inferTag(word, lower)
}

func (t *RuleTagger) inferTag(word, lower string) string {
	if len(word) == 1 {
		ch := rune(word[0])
		if unicode.IsPunct(ch) {
			switch ch {
			case ',':
				return ","
			case ':', ';':
				return ":"
			default:
				return "."
			}
		}
		if unicode.IsDigit(ch) {
			return "CD"
		}
	}

	// Capitalized content word: proper noun. Capitalized function words
	// (sentence-initial "The", "She") are caught by the stopword check.
	if r := firstRune(word); unicode.IsUpper(r) && !t.stop.Contains(lower) {
		return "NNP"
	}

	// Suffix heuristics
	switch {
	case strings.HasSuffix(lower, "ly"):
		return "RB"
	case strings.HasSuffix(lower, "ing"):
		return "VBG"
	case strings.HasSuffix(lower, "ed"):
		return "VBD"
	case strings.HasSuffix(lower, "ness"), strings.HasSuffix(lower, "tion"),
		strings.HasSuffix(lower, "ment"), strings.HasSuffix(lower, "ity"):
		return "NN"
	case strings.HasSuffix(lower, "ful"), strings.HasSuffix(lower, "less"),
		strings.HasSuffix(lower, "ous"), strings.HasSuffix(lower, "ive"),
		strings.HasSuffix(lower, "able"), strings.HasSuffix(lower, "ible"):
		return "JJ"
	case strings.HasSuffix(lower, "s") && len(lower) > 3:
		return "NNS"
	}

	return "NN"
}

func isVerbal(tag string) bool  { return strings.HasPrefix(tag, "VB") }
func isNominal(tag string) bool { return strings.HasPrefix(tag, "NN") }

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}

// fastLower returns the string if it contains no uppercase characters,
// otherwise returns strings.ToLower(s). Avoids allocation for common case.
func fastLower(s string) string {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if 'A' <= c && c <= 'Z' {
			return strings.ToLower(s)
		}
	}
	return s
}

func (t *RuleTagger) loadDefaultLexicon() {
	add := func(tag string, words ...string) {
		for _, w := range words {
			t.lexicon[w] = tag
		}
	}

	add("DT", "the", "a", "an", "this", "that", "these", "those", "some",
		"any", "no", "every", "each", "all", "both", "another")
	add("PRP$", "my", "your", "his", "its", "our", "their")
	add("PRP", "i", "you", "he", "she", "it", "we", "they", "me", "him",
		"her", "us", "them", "myself", "yourself", "himself", "herself",
		"itself", "ourselves", "themselves")
	add("WP", "who", "whom", "what")
	add("WP$", "whose")
	add("WDT", "which")
	add("WRB", "when", "where", "why", "how")
	add("EX", "there")
	add("TO", "to")
	add("IN", "in", "on", "at", "for", "with", "by", "from", "of", "about",
		"into", "through", "during", "before", "after", "above", "below",
		"between", "under", "over", "against", "among", "around", "behind",
		"beside", "beyond", "near", "upon", "within", "without", "if",
		"because", "while", "although", "unless", "until", "since")
	add("CC", "and", "or", "but", "nor", "yet", "so")
	add("MD", "can", "could", "will", "would", "shall", "should", "may",
		"might", "must")
	add("VBZ", "is", "has", "does")
	add("VBP", "am", "are", "have", "do")
	add("VBD", "was", "were", "had", "did", "went", "said", "saw", "knew",
		"took", "got", "made", "thought", "came")
	add("VB", "be", "go", "come", "say", "see", "know", "take", "get",
		"make", "think", "let")
	add("VBN", "been", "gone", "done", "seen", "known", "taken", "made")
	add("VBG", "being", "having", "doing", "going", "thinking")
	add("RB", "not", "very", "quite", "rather", "really", "too", "just",
		"only", "now", "then", "here", "always", "never", "often",
		"sometimes", "already", "still", "even", "anyway")
	add("JJ", "good", "bad", "new", "old", "great", "small", "large", "big",
		"little", "young", "long", "short", "high", "low", "early", "late",
		"difficult", "sure", "happy", "legal")
	add("NN", "man", "woman", "child", "person", "world", "house", "cat",
		"dog", "car", "day", "time", "way", "thing", "work")
	add("UH", "oh", "well", "yes", "yeah")
}
