package contractions

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// StorageError reports that the backing store for the contraction table is
// absent or malformed. It is fatal: the table is curated out of band and a
// bad entry would poison every run.
type StorageError struct {
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("contraction table %s: %v", e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Load reads a contraction table from a YAML mapping of contracted surface
// form to a list of expansion phrases:
//
//	i'm: [i am]
//	she'd: [she would, she had]
//
// Document order is preserved; it drives both lookup tie-breaks and the
// inversion precedence.
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
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) != 1 {
		return nil, fmt.Errorf("expected a single YAML document")
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping at the top level, got %v", root.Tag)
	}

	entries := make([]Entry, 0, len(root.Content)/2)
	for i := 0; i+1 < len(root.Content); i += 2 {
		keyNode, valNode := root.Content[i], root.Content[i+1]

		var expansions []string
		if err := valNode.Decode(&expansions); err != nil {
			return nil, fmt.Errorf("entry %q: %w", keyNode.Value, err)
		}
		if len(expansions) == 0 {
			return nil, fmt.Errorf("entry %q: empty expansion list", keyNode.Value)
		}
		entries = append(entries, Entry{
			Contraction: keyNode.Value,
			Expansions:  expansions,
		})
	}
	return New(entries), nil
}
