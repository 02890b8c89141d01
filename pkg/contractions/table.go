// Package contractions holds the static contraction dictionary: canonical
// contracted surface forms ("i'm", "'ll", "who'd've") mapped to their
// ordered candidate expansions. The table is curated out of band, loaded
// once per run, and never mutated afterwards.
package contractions

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Entry is one contraction with its ordered candidate expansions. An entry
// with a single expansion is unambiguous; two or more require
// disambiguation. Candidate order matters: it is the documented tie-break
// order at expansion time.
type Entry struct {
	Contraction string
	Expansions  []string
}

// Ambiguous reports whether the entry needs disambiguation.
func (e Entry) Ambiguous() bool { return len(e.Expansions) > 1 }

// Table is the loaded contraction dictionary. Entries keep their
// declaration order; lookups go through an index keyed by the surface form
// exactly as declared.
type Table struct {
	entries []Entry
	index   map[string]int
}

// New builds a Table from entries, preserving their order. A later entry
// with a duplicate surface form replaces the earlier one in the index but
// keeps the earlier declaration position.
func New(entries []Entry) *Table {
	t := &Table{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		t.entries = append(t.entries, e)
		t.index[e.Contraction] = len(t.entries) - 1
	}
	return t
}

// Len returns the number of entries.
func (t *Table) Len() int { return len(t.entries) }

// Entries returns the entries in declaration order. The slice is shared;
// callers must treat it as read-only.
func (t *Table) Entries() []Entry { return t.entries }

// Lookup resolves a surface form to its candidate expansions. The exact
// form is tried first, then the lower-cased form; when the lower-cased form
// matches and the original began with an upper-case letter, every
// candidate's first letter is capitalized to match ("It's" yields "It is").
// The returned slice is always a copy.
func (t *Table) Lookup(surface string) ([]string, bool) {
	if i, ok := t.index[surface]; ok {
		return append([]string(nil), t.entries[i].Expansions...), true
	}
	lower := strings.ToLower(surface)
	i, ok := t.index[lower]
	if !ok {
		return nil, false
	}
	out := append([]string(nil), t.entries[i].Expansions...)
	if startsUpper(surface) {
		for j, phrase := range out {
			out[j] = capitalize(phrase)
		}
	}
	return out, true
}

// Ambiguous returns the entries with two or more expansions, in
// declaration order.
func (t *Table) Ambiguous() []Entry {
	var out []Entry
	for _, e := range t.entries {
		if e.Ambiguous() {
			out = append(out, e)
		}
	}
	return out
}

// Invert builds the reverse index from expansion phrase to canonical
// contraction, used by the corpus builder. Entries are visited in
// declaration order and a collision (two contractions claiming the same
// phrase) is resolved last-write-wins. That precedence is a deliberate,
// documented policy: it fixes which contraction the builder observes and
// therefore the training data itself.
func (t *Table) Invert() map[string]string {
	out := make(map[string]string)
	for _, e := range t.entries {
		for _, phrase := range e.Expansions {
			out[phrase] = e.Contraction
		}
	}
	return out
}

// InvertAmbiguous is Invert restricted to ambiguous entries. Unambiguous
// contractions never need learned statistics, so the builder only scans
// for these phrases.
func (t *Table) InvertAmbiguous() map[string]string {
	out := make(map[string]string)
	for _, e := range t.entries {
		if !e.Ambiguous() {
			continue
		}
		for _, phrase := range e.Expansions {
			out[phrase] = e.Contraction
		}
	}
	return out
}

func startsUpper(s string) bool {
	for _, r := range s {
		return unicode.IsUpper(r)
	}
	return false
}

// capitalize upper-cases the first letter of a phrase, leaving the rest
// untouched ("she would" -> "She would").
func capitalize(phrase string) string {
	r, size := utf8.DecodeRuneInString(phrase)
	if r == utf8.RuneError && size <= 1 {
		return phrase
	}
	return string(unicode.ToUpper(r)) + phrase[size:]
}
