package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/couzinie/uncontract/internal/store"
	"github.com/couzinie/uncontract/pkg/contractions"
	"github.com/couzinie/uncontract/pkg/disambig"
	"github.com/couzinie/uncontract/pkg/expander"
)

func newExpandCmd() *cobra.Command {
	var (
		tableFlags taggerFlags
		tablePath  string
		dictPath   string
		dbPath     string
		inPath     string
		outPath    string
	)

	cmd := &cobra.Command{
		Use:   "expand",
		Short: "Expand contractions in text",
		Long: `Reads text (one sentence per line), expands contractions, and writes
the rewritten sentences. A sentence whose contraction cannot be resolved
is emitted with a leading ` + expander.AmbiguousMarker + ` marker and its
original tokens intact.`,
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

			opts := []expander.Option{expander.WithLogger(log)}
			switch {
			case dictPath != "":
				dict, err := disambig.Load(dictPath)
				if err != nil {
					return err
				}
				opts = append(opts, expander.WithFrequencies(dict))
			case dbPath != "":
				s, err := store.NewSQLiteStoreWithDSN(dbPath)
				if err != nil {
					return err
				}
				defer s.Close()
				dict, err := s.LoadTable()
				if err != nil {
					return err
				}
				opts = append(opts, expander.WithFrequencies(dict))
			default:
				log.Warn("no disambiguation table supplied, ambiguous contractions will be flagged")
			}
			e := expander.New(table, opts...)

			in, closeIn, err := openInput(inPath)
			if err != nil {
				return err
			}
			defer closeIn()

			out, closeOut, err := openOutput(outPath)
			if err != nil {
				return err
			}
			defer closeOut()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
			defer stop()

			tg := tableFlags.build(log)
			w := bufio.NewWriter(out)
			defer w.Flush()

			scanner := bufio.NewScanner(in)
			scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
			for scanner.Scan() {
				if err := ctx.Err(); err != nil {
					return err
				}
				line := scanner.Text()
				if line == "" {
					fmt.Fprintln(w)
					continue
				}
				expanded, err := e.ExpandText(ctx, tg, line)
				if err != nil {
					return err
				}
				for _, sent := range expanded {
					fmt.Fprintln(w, sent)
				}
			}
			return scanner.Err()
		},
	}

	cmd.Flags().StringVar(&tablePath, "contractions", "contractions.yaml", "static contraction table (YAML)")
	cmd.Flags().StringVar(&dictPath, "disambiguations", "", "learned disambiguation table (YAML)")
	cmd.Flags().StringVar(&dbPath, "db", "", "load the learned table from this sqlite file instead")
	cmd.Flags().StringVar(&inPath, "in", "", "input text file (default: stdin)")
	cmd.Flags().StringVar(&outPath, "out", "", "output file (default: stdout)")
	tableFlags.register(cmd)

	return cmd
}

func openInput(path string) (io.Reader, func() error, error) {
	if path == "" {
		return os.Stdin, func() error { return nil }, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, fmt.Errorf("open input: %w", err)
	}
	return f, f.Close, nil
}

func openOutput(path string) (io.Writer, func() error, error) {
	if path == "" {
		return os.Stdout, func() error { return nil }, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("create output: %w", err)
	}
	return f, f.Close, nil
}
