package tagger

import (
	"strings"
	"unicode"
)

// Tokenize splits raw text into word-level tokens. Punctuation becomes its
// own token. A token carrying an internal apostrophe is iteratively re-split
// at each apostrophe until no token other than the first holds an apostrophe
// outside position 0, so "Who'd've" becomes ["Who", "'d", "'ve"].
func Tokenize(text string) []string {
	var out []string
	var word strings.Builder

	flush := func() {
		if word.Len() > 0 {
			out = append(out, splitClitics(word.String())...)
			word.Reset()
		}
	}

	for _, r := range text {
		// Normalize curly apostrophes to straight so clitic detection
		// works on either form.
		if r == '’' || r == '‘' {
			r = '\''
		}
		switch {
		case unicode.IsSpace(r):
			flush()
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '-':
			word.WriteRune(r)
		default:
			flush()
			out = append(out, string(r))
		}
	}
	flush()
	return out
}

// splitClitics re-splits a token at every apostrophe past position 0.
func splitClitics(tok string) []string {
	out := make([]string, 0, 2)
	rest := tok
	for {
		i := strings.IndexByte(rest[1:], '\'')
		if i < 0 {
			out = append(out, rest)
			return out
		}
		i++ // offset for the skipped first byte
		out = append(out, rest[:i])
		rest = rest[i:]
	}
}

// Rejoin assembles tokens back into plain text. The synthetic space that
// tokenization inserted before each apostrophe-leading token is removed,
// exactly once: applying Rejoin's cleanup to its own output is a no-op.
func Rejoin(tokens []string) string {
	joined := strings.Join(tokens, " ")
	return strings.ReplaceAll(joined, " '", "'")
}
