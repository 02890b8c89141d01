// Package disambig holds the learned disambiguation table: frequency
// statistics mapping a (contracted tokens, tag sequence) key to the
// expansion phrases observed for it in a corpus. The corpus builder writes
// it once per run; the expander reads it to resolve ambiguous contractions.
package disambig

import (
	"sort"
	"strings"
)

// Placeholder stands in for a named-entity head word in generalized keys,
// so statistics learned from pronoun heads carry over to name heads with
// the same clitic and tag shape.
const Placeholder = "<NE>"

// Key identifies one contraction context: the contracted token surfaces
// (lower-cased) and the tag sequence observed on them, aligned 1:1.
type Key struct {
	Words []string
	Tags  []string
}

// Generalize returns a copy of the key with the head word and head tag
// replaced by Placeholder.
func (k Key) Generalize() Key {
	if len(k.Words) == 0 {
		return k
	}
	words := append([]string(nil), k.Words...)
	tags := append([]string(nil), k.Tags...)
	words[0] = Placeholder
	tags[0] = Placeholder
	return Key{Words: words, Tags: tags}
}

// encode produces the canonical map key. Tokens never contain spaces, so a
// space join is unambiguous.
func (k Key) encode() string {
	return strings.Join(k.Words, " ") + "\t" + strings.Join(k.Tags, " ")
}

func (k Key) String() string { return k.encode() }

// Record is the frequency mapping for one key. Counts only grow during a
// corpus pass; a record is created on first observation and updated, never
// replaced, afterwards.
type Record struct {
	Key    Key
	Counts map[string]int
}

// Table is the learned disambiguation table.
type Table struct {
	records map[string]*Record
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{records: make(map[string]*Record)}
}

// Len returns the number of distinct keys.
func (t *Table) Len() int { return len(t.records) }

// Add increments the count for (key, expansion) by one, creating the
// record if absent. It reports whether the key was new and whether the
// expansion was new for an existing key; the latter is the ambiguity case
// the table exists to capture.
func (t *Table) Add(key Key, expansion string) (newKey, newExpansion bool) {
	enc := key.encode()
	rec, ok := t.records[enc]
	if !ok {
		rec = &Record{Key: key, Counts: make(map[string]int)}
		t.records[enc] = rec
		newKey = true
	}
	if _, seen := rec.Counts[expansion]; !seen && !newKey {
		newExpansion = true
	}
	rec.Counts[expansion]++
	return newKey, newExpansion
}

// Lookup returns the record for a key, if present.
func (t *Table) Lookup(key Key) (*Record, bool) {
	rec, ok := t.records[key.encode()]
	return rec, ok
}

// LookupGeneralized retries Lookup with the key's head replaced by the
// named-entity placeholder.
func (t *Table) LookupGeneralized(key Key) (*Record, bool) {
	return t.Lookup(key.Generalize())
}

// Records returns all records sorted by key, for deterministic
// serialization and iteration.
func (t *Table) Records() []*Record {
	out := make([]*Record, 0, len(t.records))
	for _, rec := range t.records {
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Key.encode() < out[j].Key.encode()
	})
	return out
}

// Resolve picks an expansion for key among candidates: the candidate with
// the highest observed count wins, ties broken by candidate order
// (first-listed wins, mirroring the static table's declaration order).
// Candidates are matched case-insensitively, so capitalized lookups still
// hit lower-cased corpus statistics; the chosen candidate is returned in
// the caller's casing. ok is false when the key (and its generalized
// variant) is unknown or no candidate was ever observed: that case is
// irreducibly ambiguous and must be surfaced, never guessed.
func (t *Table) Resolve(key Key, candidates []string) (string, bool) {
	rec, ok := t.Lookup(key)
	if !ok {
		rec, ok = t.LookupGeneralized(key)
	}
	if !ok {
		return "", false
	}

	best, bestCount := "", 0
	for _, cand := range candidates {
		count := rec.Counts[strings.ToLower(cand)]
		if count > bestCount {
			best, bestCount = cand, count
		}
	}
	if bestCount == 0 {
		return "", false
	}
	return best, true
}
