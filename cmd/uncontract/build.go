package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/couzinie/uncontract/internal/store"
	"github.com/couzinie/uncontract/pkg/builder"
	"github.com/couzinie/uncontract/pkg/contractions"
	"github.com/couzinie/uncontract/pkg/tagger"
)

func newBuildCmd() *cobra.Command {
	var (
		tableFlags   taggerFlags
		tablePath    string
		corpusPath   string
		outPath      string
		dbPath       string
		noGeneralize bool
	)

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Learn a disambiguation table from a corpus",
		Long: `Scans a corpus (one sentence per line), contracts every expandable
word span, re-tags the contracted sentences, and writes the learned
(tokens, tags) -> expansion frequency table.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, err := newLogger(cmd)
			if err != nil {
				return err
			}
			defer log.Sync()

			table, err := contractions.Load(tablePath)
			if err != nil {
				return err
			}

			corpus, err := readCorpus(corpusPath)
			if err != nil {
				return err
			}

			tg := tableFlags.build(log)
			b, err := builder.New(table, tg,
				builder.WithLogger(log),
				builder.WithGeneralization(!noGeneralize))
			if err != nil {
				return err
			}

			// Cancellation granularity is one sentence: Ctrl-C stops
			// before the next sentence, never mid-record.
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			stats, runErr := b.Run(ctx, corpus)
			log.Info("build finished",
				zap.Int("sentences", stats.Sentences),
				zap.Int("skipped", stats.Skipped),
				zap.Int("contracted", stats.Contracted),
				zap.Int("new_records", stats.NewRecords),
				zap.Int("ambiguities", stats.Ambiguities),
				zap.Int("tag_failures", stats.TagFailures))
			if runErr != nil && ctx.Err() == nil {
				return runErr
			}

			if err := b.Table().Save(outPath); err != nil {
				return err
			}
			log.Info("wrote disambiguation table",
				zap.String("path", outPath),
				zap.Int("keys", b.Table().Len()))

			if dbPath != "" {
				s, err := store.NewSQLiteStoreWithDSN(dbPath)
				if err != nil {
					return err
				}
				defer s.Close()
				if err := s.SaveTable(b.Table()); err != nil {
					return err
				}
				if err := s.RecordRun(stats); err != nil {
					return err
				}
				log.Info("saved table to sqlite", zap.String("db", dbPath))
			}
			return runErr
		},
	}

	cmd.Flags().StringVar(&tablePath, "contractions", "contractions.yaml", "static contraction table (YAML)")
	cmd.Flags().StringVar(&corpusPath, "corpus", "", "corpus file, one sentence per line (required)")
	cmd.Flags().StringVar(&outPath, "out", "disambiguations.yaml", "output disambiguation table (YAML)")
	cmd.Flags().StringVar(&dbPath, "db", "", "also persist the table and run stats to this sqlite file")
	cmd.Flags().BoolVar(&noGeneralize, "no-generalize", false, "disable named-entity placeholder keys")
	tableFlags.register(cmd)
	cmd.MarkFlagRequired("corpus")

	return cmd
}

// readCorpus loads a line-per-sentence corpus and tokenizes each line.
func readCorpus(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	var corpus [][]string
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		corpus = append(corpus, tagger.Tokenize(line))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read corpus: %w", err)
	}
	return corpus, nil
}
