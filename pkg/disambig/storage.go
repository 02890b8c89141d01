package disambig

import (
	"fmt"
	"os"
	"sort"
	"strconv"

	"gopkg.in/yaml.v3"
)

// StorageError reports a missing or malformed persisted disambiguation
// table. Fatal for the run, like its contraction-table counterpart.
type StorageError struct {
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("disambiguation table %s: %v", e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// recordDoc is the on-disk shape of one record. Expansions stays a raw
// node because the format evolved: older tables persist a plain list of
// expansion phrases, newer ones a phrase-to-count mapping. Readers must
// accept both.
type recordDoc struct {
	Words      []string  `yaml:"words"`
	Tags       []string  `yaml:"tags"`
	Expansions yaml.Node `yaml:"expansions"`
}

// Load reads a persisted disambiguation table. Both storage variants are
// accepted; the frequency-agnostic list variant is read as count 1 per
// phrase.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &StorageError{Path: path, Err: err}
	}
	t, err := Parse(data)
	if err != nil {
		return nil, &StorageError{Path: path, Err: err}
	}
	return t, nil
}

// Parse decodes YAML table content. Split from Load for testability.
func Parse(data []byte) (*Table, error) {
	var docs []recordDoc
	if err := yaml.Unmarshal(data, &docs); err != nil {
		return nil, err
	}

	t := NewTable()
	for i, doc := range docs {
		if len(doc.Words) == 0 || len(doc.Words) != len(doc.Tags) {
			return nil, fmt.Errorf("record %d: words/tags misaligned (%d vs %d)",
				i, len(doc.Words), len(doc.Tags))
		}
		key := Key{Words: doc.Words, Tags: doc.Tags}
		enc := key.encode()

		counts, err := decodeExpansions(&doc.Expansions)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if len(counts) == 0 {
			return nil, fmt.Errorf("record %d: no expansions", i)
		}

		rec, ok := t.records[enc]
		if !ok {
			rec = &Record{Key: key, Counts: make(map[string]int)}
			t.records[enc] = rec
		}
		for phrase, count := range counts {
			rec.Counts[phrase] += count
		}
	}
	return t, nil
}

func decodeExpansions(node *yaml.Node) (map[string]int, error) {
	switch node.Kind {
	case yaml.SequenceNode:
		// Frequency-agnostic variant: each listed phrase counts once.
		var phrases []string
		if err := node.Decode(&phrases); err != nil {
			return nil, err
		}
		counts := make(map[string]int, len(phrases))
		for _, p := range phrases {
			counts[p]++
		}
		return counts, nil
	case yaml.MappingNode:
		var counts map[string]int
		if err := node.Decode(&counts); err != nil {
			return nil, err
		}
		for phrase, count := range counts {
			if count <= 0 {
				return nil, fmt.Errorf("expansion %q: non-positive count %d", phrase, count)
			}
		}
		return counts, nil
	default:
		return nil, fmt.Errorf("expansions must be a list or a mapping")
	}
}

// Save writes the table in the frequency-aware variant, records sorted by
// key and expansions sorted by phrase, so identical tables serialize to
// identical bytes.
func (t *Table) Save(path string) error {
	data, err := t.Marshal()
	if err != nil {
		return &StorageError{Path: path, Err: err}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return &StorageError{Path: path, Err: err}
	}
	return nil
}

// Marshal serializes the table to YAML bytes.
func (t *Table) Marshal() ([]byte, error) {
	root := &yaml.Node{Kind: yaml.SequenceNode}
	for _, rec := range t.Records() {
		root.Content = append(root.Content, recordNode(rec))
	}
	return yaml.Marshal(root)
}

func recordNode(rec *Record) *yaml.Node {
	counts := &yaml.Node{Kind: yaml.MappingNode}
	phrases := make([]string, 0, len(rec.Counts))
	for p := range rec.Counts {
		phrases = append(phrases, p)
	}
	sort.Strings(phrases)
	for _, p := range phrases {
		counts.Content = append(counts.Content,
			scalarNode(p),
			&yaml.Node{Kind: yaml.ScalarNode, Value: strconv.Itoa(rec.Counts[p]), Tag: "!!int"},
		)
	}

	node := &yaml.Node{Kind: yaml.MappingNode}
	node.Content = append(node.Content,
		scalarNode("words"), sequenceNode(rec.Key.Words),
		scalarNode("tags"), sequenceNode(rec.Key.Tags),
		scalarNode("expansions"), counts,
	)
	return node
}

func scalarNode(s string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: s, Tag: "!!str"}
}

func sequenceNode(items []string) *yaml.Node {
	node := &yaml.Node{Kind: yaml.SequenceNode, Style: yaml.FlowStyle}
	for _, item := range items {
		node.Content = append(node.Content, scalarNode(item))
	}
	return node
}
