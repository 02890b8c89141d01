package tagger

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// ExecTagger shells out to an external tagging model (a Stanford-style
// tagger wrapped in a script, or any command speaking the same protocol).
//
// Protocol: one input token per line on stdin; one "word<TAB>tag" line per
// token on stdout, in input order.
type ExecTagger struct {
	Command string
	Args    []string
}

// NewExecTagger creates an adapter around the given command.
func NewExecTagger(command string, args ...string) *ExecTagger {
	return &ExecTagger{Command: command, Args: args}
}

// Tag implements Tagger by spawning one tagging process per call.
func (t *ExecTagger) Tag(ctx context.Context, words []string) ([]TaggedToken, error) {
	cmd := exec.CommandContext(ctx, t.Command, t.Args...)
	cmd.Stdin = strings.NewReader(strings.Join(words, "\n") + "\n")

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			err = fmt.Errorf("%w: %s", err, msg)
		}
		return nil, &TaggingError{Op: "run " + t.Command, Err: err}
	}

	lines := strings.Split(strings.TrimRight(stdout.String(), "\n"), "\n")
	if len(lines) != len(words) {
		return nil, &TaggingError{
			Op: fmt.Sprintf("parse output: %d tokens in, %d lines out", len(words), len(lines)),
		}
	}

	out := make([]TaggedToken, len(lines))
	for i, line := range lines {
		word, tag, ok := strings.Cut(line, "\t")
		if !ok {
			return nil, &TaggingError{Op: fmt.Sprintf("parse output line %d: %q", i+1, line)}
		}
		out[i] = TaggedToken{Word: word, Tag: tag}
	}
	return out, nil
}
