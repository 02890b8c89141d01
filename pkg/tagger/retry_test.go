package tagger

import (
	"context"
	"errors"
	"testing"
	"time"
)

// flakyTagger fails a fixed number of times before succeeding.
type flakyTagger struct {
	failures int
	calls    int
}

func (f *flakyTagger) Tag(_ context.Context, words []string) ([]TaggedToken, error) {
	f.calls++
	if f.calls <= f.failures {
		return nil, &TaggingError{Op: "transient failure"}
	}
	out := make([]TaggedToken, len(words))
	for i, w := range words {
		out[i] = TaggedToken{Word: w, Tag: "NN"}
	}
	return out, nil
}

func TestRetryRecovers(t *testing.T) {
	flaky := &flakyTagger{failures: 2}
	tg := Retry(flaky, 3, 0, nil)

	tagged, err := tg.Tag(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("Tag failed after retries: %v", err)
	}
	if len(tagged) != 2 {
		t.Fatalf("got %d tokens, want 2", len(tagged))
	}
	if flaky.calls != 3 {
		t.Errorf("made %d calls, want 3", flaky.calls)
	}
}

func TestRetryExhausted(t *testing.T) {
	flaky := &flakyTagger{failures: 5}
	tg := Retry(flaky, 3, 0, nil)

	_, err := tg.Tag(context.Background(), []string{"a"})
	var tagErr *TaggingError
	if !errors.As(err, &tagErr) {
		t.Fatalf("want TaggingError, got %v", err)
	}
	if flaky.calls != 3 {
		t.Errorf("made %d calls, want 3", flaky.calls)
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	flaky := &flakyTagger{failures: 100}
	tg := Retry(flaky, 10, time.Second, nil)

	if _, err := tg.Tag(ctx, []string{"a"}); err == nil {
		t.Fatal("want error on canceled context")
	}
	if flaky.calls != 1 {
		t.Errorf("made %d calls after cancel, want 1", flaky.calls)
	}
}
