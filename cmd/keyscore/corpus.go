package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/keyscore/internal/config"
	"github.com/verte-zerg/keyscore/internal/corpus"
	"github.com/verte-zerg/keyscore/internal/model"
	"github.com/verte-zerg/keyscore/internal/render"
	"github.com/verte-zerg/keyscore/internal/store"
)

func newCorpusCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "corpus",
		Short: "Manage imported frequency corpora",
	}
	cmd.AddCommand(newCorpusImportCmd(opts))
	cmd.AddCommand(newCorpusListCmd(opts))
	cmd.AddCommand(newCorpusDeleteCmd())
	return cmd
}

func newCorpusImportCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import a corpus from CSV tables or a word list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCorpusImportCmd(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.name, "name", "", "corpus name (default: directory or file name)")
	cmd.Flags().StringVar(&opts.dir, "dir", "", "directory with unigrams.csv, bigrams.csv and trigrams.csv")
	cmd.Flags().StringVar(&opts.words, "words", "", "word list to count n-grams from")
	cmd.MarkFlagsMutuallyExclusive("dir", "words")
	cmd.MarkFlagsOneRequired("dir", "words")
	return cmd
}

func runCorpusImportCmd(cmd *cobra.Command, opts *options) error {
	fileCfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	km, err := fileCfg.KeymapOrDefault()
	if err != nil {
		return err
	}

	var c model.Corpus
	var source string
	if opts.dir != "" {
		var dropped corpus.Dropped
		c, dropped, err = corpus.LoadDir(opts.dir, km)
		if err != nil {
			return fmt.Errorf("failed to load corpus: %w", err)
		}
		logDropped(dropped)
		source = "dir:" + opts.dir
	} else {
		words, err := corpus.LoadWords(opts.words)
		if err != nil {
			return fmt.Errorf("failed to load word list: %w", err)
		}
		c = corpus.FromWords(strings.TrimSuffix(filepath.Base(opts.words), filepath.Ext(opts.words)), words, km)
		source = "words:" + opts.words
	}
	if opts.name != "" {
		c.Name = opts.name
	}
	if len(c.Unigrams) == 0 {
		return fmt.Errorf("corpus %q has no mapped unigrams", c.Name)
	}

	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	if err := st.SaveCorpus(cmd.Context(), c, source, time.Now()); err != nil {
		return fmt.Errorf("failed to save corpus: %w", err)
	}
	logErrln(fmt.Sprintf("Imported %s: %d unigrams, %d bigrams, %d trigrams",
		c.Name, len(c.Unigrams), len(c.Bigrams), len(c.Trigrams)))
	return nil
}

func newCorpusListCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List imported corpora",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runCorpusListCmd(cmd, opts)
		},
	}
	addFormatFlag(cmd, opts)
	return cmd
}

func runCorpusListCmd(cmd *cobra.Command, opts *options) error {
	if !render.ValidFormat(opts.format) {
		return fmt.Errorf("--format must be plain, grid or markdown")
	}
	st, err := store.Open(config.DefaultDBPath())
	if err != nil {
		return fmt.Errorf("failed to open db: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close db: %v\n", cerr)
		}
	}()
	infos, err := st.ListCorpora(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to list corpora: %w", err)
	}
	if len(infos) == 0 {
		logErrf("No corpora found. Import with: keyscore corpus import --dir <path>\n")
		return nil
	}
	rows := make([][]string, 0, len(infos))
	for _, info := range infos {
		rows = append(rows, []string{
			info.Name,
			strconv.Itoa(info.Unigrams),
			strconv.Itoa(info.Bigrams),
			strconv.Itoa(info.Trigrams),
			info.ImportedAt.Local().Format("2006-01-02 15:04"),
			info.Source,
		})
	}
	headers := []string{"Name", "Unigrams", "Bigrams", "Trigrams", "Imported", "Source"}
	if err := render.Table(cmd.OutOrStdout(), "", headers, rows, opts.format, map[int]bool{1: true, 2: true, 3: true}); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newCorpusDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete NAME",
		Short: "Delete an imported corpus",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(config.DefaultDBPath())
			if err != nil {
				return fmt.Errorf("failed to open db: %w", err)
			}
			defer func() {
				if cerr := st.Close(); cerr != nil {
					logErrf("failed to close db: %v\n", cerr)
				}
			}()
			if err := st.DeleteCorpus(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to delete corpus: %w", err)
			}
			return nil
		},
	}
}
