// Command parattice-dump builds or inspects a paraphrase lattice from the
// command line: it loads a dictionary and an input sentence, builds a
// lattice, and renders it as DOT, a search-index projection, or the binary
// wire format, following the cobra root-command-plus-subcommands shape the
// pack's own CLI (codenerd's cmd/nerd) uses, with a zap logger wired through
// PersistentPreRunE exactly as that teacher-adjacent CLI does.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/parattice/parattice-go/builder"
	"github.com/parattice/parattice-go/codec"
	"github.com/parattice/parattice-go/dict"
	"github.com/parattice/parattice-go/dot"
	"github.com/parattice/parattice-go/internal/diag"
	"github.com/parattice/parattice-go/lattice"
	"github.com/parattice/parattice-go/searchindex"
)

var (
	verbose     bool
	dictPath    string
	shrink      bool
	maxDepth    int
	outputPath  string
	logger      *zap.Logger
	diagLogger  diag.Logger
)

var rootCmd = &cobra.Command{
	Use:   "parattice-dump",
	Short: "Build and inspect paraphrase lattices",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		diagLogger = diag.Wrap(logger)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&dictPath, "dict", "", "path to a JSON dictionary file (groups of phrases of tokens)")
	rootCmd.PersistentFlags().BoolVar(&shrink, "shrink", false, "run the branch-merging shrink pass")
	rootCmd.PersistentFlags().IntVar(&maxDepth, "max-depth", 4, "maximum paraphrase-of-paraphrase recursion depth")
	rootCmd.MarkPersistentFlagRequired("dict")

	rootCmd.PersistentFlags().StringVarP(&outputPath, "out", "o", "", "output path (default: stdout)")

	rootCmd.AddCommand(dotCmd, indexCmd, encodeCmd)
}

var dotCmd = &cobra.Command{
	Use:   "dot [tokens...]",
	Short: "build a lattice from the given tokens and render it as Graphviz DOT",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := buildFromArgs(args)
		if err != nil {
			return err
		}
		return writeOutput([]byte(dot.Write(l)))
	},
}

var indexCmd = &cobra.Command{
	Use:   "index [tokens...]",
	Short: "build a lattice and print its search-index projection as JSON",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := buildFromArgs(args)
		if err != nil {
			return err
		}
		records, pool := searchindex.Project(l)
		out, err := json.MarshalIndent(struct {
			Records []searchindex.Record `json:"records"`
			Pool    string               `json:"pool"`
		}{Records: records, Pool: string(pool)}, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal index: %w", err)
		}
		return writeOutput(out)
	},
}

var encodeCmd = &cobra.Command{
	Use:   "encode [tokens...]",
	Short: "build a lattice and print its binary wire encoding",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		l, err := buildFromArgs(args)
		if err != nil {
			return err
		}
		out, err := codec.Encode(l)
		if err != nil {
			return fmt.Errorf("encode lattice: %w", err)
		}
		return writeOutput(out)
	},
}

func buildFromArgs(args []string) (*lattice.Lattice, error) {
	d, err := loadDict()
	if err != nil {
		return nil, err
	}
	words := make(dict.Phrase, len(args))
	for i, tok := range args {
		words[i] = []byte(tok)
	}
	return builder.Build(d, words, builder.Options{
		Shrink:   shrink,
		MaxDepth: maxDepth,
		Logger:   diagLogger,
	})
}

func loadDict() (*dict.Dict, error) {
	raw, err := os.ReadFile(dictPath)
	if err != nil {
		return nil, fmt.Errorf("read dict: %w", err)
	}
	var groups [][]([][]string)
	if err := json.Unmarshal(raw, &groups); err != nil {
		return nil, fmt.Errorf("parse dict json: %w", err)
	}
	parsed := make([]([]dict.Phrase), len(groups))
	for i, g := range groups {
		phrases := make([]dict.Phrase, len(g))
		for j, p := range g {
			phrase := make(dict.Phrase, len(p))
			for k, tok := range p {
				phrase[k] = []byte(tok)
			}
			phrases[j] = phrase
		}
		parsed[i] = phrases
	}
	return dict.New(parsed)
}

func writeOutput(data []byte) error {
	if outputPath == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(outputPath, data, 0o644)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
