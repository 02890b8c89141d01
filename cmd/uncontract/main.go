// Command uncontract drives the two batch jobs of the contraction engine:
// "build" learns a disambiguation table from a corpus, "expand" rewrites
// contractions in text using the static table plus learned statistics.
package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/couzinie/uncontract/pkg/tagger"
)

func main() {
	root := &cobra.Command{
		Use:           "uncontract",
		Short:         "Expand English contractions using POS context and corpus statistics",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().Bool("verbose", false, "enable debug logging")

	root.AddCommand(newBuildCmd(), newExpandCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger(cmd *cobra.Command) (*zap.Logger, error) {
	verbose, _ := cmd.Flags().GetBool("verbose")
	if verbose {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	return cfg.Build()
}

// taggerFlags are shared between build and expand: which tagger to run and
// how patient to be with it.
type taggerFlags struct {
	command string
	retries int
	timeout time.Duration
}

func (f *taggerFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.command, "tagger", "",
		"external tagger command (token per line in, word<TAB>tag per line out); empty uses the built-in rule tagger")
	cmd.Flags().IntVar(&f.retries, "tagger-retries", 3, "tagging attempts before giving up on a sentence")
	cmd.Flags().DurationVar(&f.timeout, "tagger-timeout", 30*time.Second, "per-attempt tagging timeout")
}

func (f *taggerFlags) build(log *zap.Logger) tagger.Tagger {
	var base tagger.Tagger
	if f.command != "" {
		parts := strings.Fields(f.command)
		base = tagger.NewExecTagger(parts[0], parts[1:]...)
	} else {
		base = tagger.NewRuleTagger()
	}
	return tagger.Retry(base, f.retries, f.timeout, log)
}
