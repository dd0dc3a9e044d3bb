// Package main provides the CLI entrypoint for keyscore.
package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/verte-zerg/keyscore/internal/config"
	"github.com/verte-zerg/keyscore/internal/corpus"
	"github.com/verte-zerg/keyscore/internal/metrics"
	"github.com/verte-zerg/keyscore/internal/model"
	"github.com/verte-zerg/keyscore/internal/render"
	"github.com/verte-zerg/keyscore/internal/store"
	"github.com/verte-zerg/keyscore/internal/viewer"
)

const (
	defaultScale    = metrics.DefaultScale
	defaultUnplaced = "exclude"
	defaultFormat   = render.FormatPlain
	defaultWorkers  = 4
)

type options struct {
	configPath string
	verbose    bool

	layout   string
	file     string
	corpus   string
	dir      string
	words    string
	name     string
	scale    float64
	unplaced string
	format   string
	workers  int
}

// env is what every scoring command needs, resolved from config and flags.
type env struct {
	keymap model.Keymap
	hand   model.Hand
	engine metrics.Engine
	corpus model.Corpus
}

var logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	rootCmd := &cobra.Command{
		Use:           "keyscore",
		Short:         "Keyboard layout ergonomics scorer",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			level := slog.LevelWarn
			if opts.verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
		},
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", config.DefaultConfigPath(), "config file path")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug details to stderr")

	rootCmd.AddCommand(newScoreCmd(opts))
	rootCmd.AddCommand(newBatchCmd(opts))
	rootCmd.AddCommand(newViewCmd(opts))
	rootCmd.AddCommand(newGeometryCmd(opts))
	rootCmd.AddCommand(newCorpusCmd(opts))
	rootCmd.AddCommand(newConfigCmd(opts))

	return rootCmd
}

func addScoringFlags(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringVar(&opts.corpus, "corpus", "", "name of an imported corpus")
	cmd.Flags().StringVar(&opts.dir, "dir", "", "directory with unigrams.csv, bigrams.csv and trigrams.csv")
	cmd.Flags().StringVar(&opts.words, "words", "", "word list to count n-grams from (one word per line, optional count)")
	cmd.Flags().Float64Var(&opts.scale, "scale", defaultScale, "metric scale factor")
	cmd.Flags().StringVar(&opts.unplaced, "unplaced", defaultUnplaced, "unigram policy for unplaced characters (exclude|strict)")
	cmd.MarkFlagsMutuallyExclusive("corpus", "dir", "words")
}

func addFormatFlag(cmd *cobra.Command, opts *options) {
	cmd.Flags().StringVar(&opts.format, "format", defaultFormat, "output format (plain|grid|markdown)")
}

func newScoreCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score one layout",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScoreCmd(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.layout, "layout", "", "layout string in row-major order ('_' leaves a key empty)")
	_ = cmd.MarkFlagRequired("layout")
	addScoringFlags(cmd, opts)
	addFormatFlag(cmd, opts)
	return cmd
}

func runScoreCmd(cmd *cobra.Command, opts *options) error {
	e, err := loadEnv(cmd, opts)
	if err != nil {
		return err
	}
	seq, err := render.ParseLayout(opts.layout, e.keymap)
	if err != nil {
		return fmt.Errorf("invalid --layout: %w", err)
	}
	report, err := e.engine.ScoreSequence(seq, e.hand, e.corpus)
	if err != nil {
		return fmt.Errorf("failed to score layout: %w", err)
	}
	out := cmd.OutOrStdout()
	if err := render.Layout(out, "Layout", render.ToLetters(report.Layout, e.keymap), opts.format); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := render.Scores(out, report, opts.format); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newBatchCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Score one layout per line of a file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBatchCmd(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.file, "file", "", "file with one layout per line ('-' for stdin)")
	cmd.Flags().IntVar(&opts.workers, "workers", defaultWorkers, "layouts scored in parallel")
	_ = cmd.MarkFlagRequired("file")
	addScoringFlags(cmd, opts)
	addFormatFlag(cmd, opts)
	return cmd
}

func runBatchCmd(cmd *cobra.Command, opts *options) error {
	e, err := loadEnv(cmd, opts)
	if err != nil {
		return err
	}
	lines, err := readLayouts(cmd, opts.file)
	if err != nil {
		return err
	}
	seqs := make([][]model.Code, 0, len(lines))
	for i, line := range lines {
		seq, err := render.ParseLayout(line, e.keymap)
		if err != nil {
			return fmt.Errorf("layout %d: %w", i+1, err)
		}
		seqs = append(seqs, seq)
	}
	logger.Debug("scoring layouts", "count", len(seqs), "workers", opts.workers)
	reports, err := e.engine.ScoreAll(cmd.Context(), seqs, e.hand, e.corpus, opts.workers)
	if err != nil {
		return fmt.Errorf("failed to score layouts: %w", err)
	}
	if err := render.Batch(cmd.OutOrStdout(), reports, e.keymap, opts.format); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func readLayouts(cmd *cobra.Command, path string) ([]string, error) {
	var scanner *bufio.Scanner
	if path == "-" {
		scanner = bufio.NewScanner(cmd.InOrStdin())
	} else {
		file, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open layouts: %w", err)
		}
		defer func() {
			if cerr := file.Close(); cerr != nil {
				logErrf("failed to close layouts: %v\n", cerr)
			}
		}()
		scanner = bufio.NewScanner(file)
	}
	var lines []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read layouts: %w", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("no layouts in %s", path)
	}
	return lines, nil
}

func newViewCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view",
		Short: "Browse a scored layout interactively",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runViewCmd(cmd, opts)
		},
	}
	cmd.Flags().StringVar(&opts.layout, "layout", "", "layout string in row-major order ('_' leaves a key empty)")
	_ = cmd.MarkFlagRequired("layout")
	addScoringFlags(cmd, opts)
	return cmd
}

func runViewCmd(cmd *cobra.Command, opts *options) error {
	e, err := loadEnv(cmd, opts)
	if err != nil {
		return err
	}
	seq, err := render.ParseLayout(opts.layout, e.keymap)
	if err != nil {
		return fmt.Errorf("invalid --layout: %w", err)
	}
	report, err := e.engine.ScoreSequence(seq, e.hand, e.corpus)
	if err != nil {
		return fmt.Errorf("failed to score layout: %w", err)
	}
	title := fmt.Sprintf("%s · corpus %s", opts.layout, e.corpus.Name)
	program := tea.NewProgram(viewer.NewModel(title, report, e.hand, e.keymap), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run viewer: %w", err)
	}
	return nil
}

func newGeometryCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "geometry",
		Short: "Print the configured key matrices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGeometryCmd(cmd, opts)
		},
	}
	addFormatFlag(cmd, opts)
	return cmd
}

func runGeometryCmd(cmd *cobra.Command, opts *options) error {
	fileCfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	applyStringConfig(cmd, "format", &opts.format, fileCfg.Scoring.Format)
	if !render.ValidFormat(opts.format) {
		return fmt.Errorf("--format must be plain, grid or markdown")
	}
	g, err := fileCfg.GeometryOrDefault()
	if err != nil {
		return err
	}
	hand := g.Combined()
	out := cmd.OutOrStdout()
	if err := render.Matrix(out, "Template", hand.Template, opts.format); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := render.Matrix(out, "Fingers", hand.Fingers, opts.format); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := render.Matrix(out, "Effort", hand.Effort, opts.format); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if len(hand.Distance) > 0 {
		if err := render.Matrix(out, "Distance", hand.Distance, opts.format); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return nil
}

func loadEnv(cmd *cobra.Command, opts *options) (env, error) {
	fileCfg, err := config.LoadConfig(opts.configPath)
	if err != nil {
		return env{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyFloatConfig(cmd, "scale", &opts.scale, fileCfg.Scoring.Scale)
	applyStringConfig(cmd, "unplaced", &opts.unplaced, fileCfg.Scoring.Unplaced)
	applyStringConfig(cmd, "format", &opts.format, fileCfg.Scoring.Format)
	applyIntConfig(cmd, "workers", &opts.workers, fileCfg.Scoring.Workers)
	if !cmd.Flags().Changed("corpus") && !cmd.Flags().Changed("dir") && !cmd.Flags().Changed("words") {
		applyStringConfig(cmd, "corpus", &opts.corpus, fileCfg.Corpus.Name)
		if opts.corpus == "" {
			applyStringConfig(cmd, "dir", &opts.dir, fileCfg.Corpus.Dir)
		}
	}

	if err := validateOptions(opts); err != nil {
		return env{}, err
	}
	policy, err := config.ParsePolicy(opts.unplaced)
	if err != nil {
		return env{}, err
	}
	km, err := fileCfg.KeymapOrDefault()
	if err != nil {
		return env{}, err
	}
	g, err := fileCfg.GeometryOrDefault()
	if err != nil {
		return env{}, err
	}

	engine := metrics.NewEngine()
	engine.Scale = opts.scale
	engine.Policy = policy
	engine.StretchPairs = fileCfg.StretchPairs()

	c, err := loadCorpus(cmd.Context(), opts, km)
	if err != nil {
		return env{}, err
	}
	logger.Debug("corpus loaded", "name", c.Name, "unigrams", len(c.Unigrams), "bigrams", len(c.Bigrams), "trigrams", len(c.Trigrams))

	return env{
		keymap: km,
		hand:   g.Combined(),
		engine: engine,
		corpus: c,
	}, nil
}

func loadCorpus(ctx context.Context, opts *options, km model.Keymap) (model.Corpus, error) {
	switch {
	case opts.dir != "":
		c, dropped, err := corpus.LoadDir(opts.dir, km)
		if err != nil {
			return model.Corpus{}, fmt.Errorf("failed to load corpus: %w", err)
		}
		logDropped(dropped)
		return c, nil
	case opts.words != "":
		words, err := corpus.LoadWords(opts.words)
		if err != nil {
			return model.Corpus{}, fmt.Errorf("failed to load word list: %w", err)
		}
		return corpus.FromWords(strings.TrimSuffix(filepath.Base(opts.words), filepath.Ext(opts.words)), words, km), nil
	case opts.corpus != "":
		st, err := store.Open(config.DefaultDBPath())
		if err != nil {
			return model.Corpus{}, fmt.Errorf("failed to open db: %w", err)
		}
		defer func() {
			if cerr := st.Close(); cerr != nil {
				logErrf("failed to close db: %v\n", cerr)
			}
		}()
		c, err := st.LoadCorpus(ctx, opts.corpus)
		if err != nil {
			return model.Corpus{}, fmt.Errorf("failed to load corpus: %w", err)
		}
		return c, nil
	default:
		return model.Corpus{}, fmt.Errorf("no corpus given: use --corpus, --dir or --words, or set [corpus] in %s", opts.configPath)
	}
}

func logDropped(d corpus.Dropped) {
	if d == (corpus.Dropped{}) {
		return
	}
	logger.Debug("dropped malformed rows", "unigrams", d.Unigrams, "bigrams", d.Bigrams, "trigrams", d.Trigrams)
}

func validateOptions(opts *options) error {
	if opts.scale <= 0 {
		return fmt.Errorf("--scale must be > 0")
	}
	if opts.format != "" && !render.ValidFormat(opts.format) {
		return fmt.Errorf("--format must be plain, grid or markdown")
	}
	if opts.workers < 0 {
		return fmt.Errorf("--workers must be >= 0")
	}
	return nil
}

func newConfigCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			return runConfigCmd(opts)
		},
	}
}

func runConfigCmd(opts *options) error {
	path := opts.configPath
	if err := writeDefaultConfig(path); err != nil {
		return err
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func writeDefaultConfig(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if flag := cmd.Flags().Lookup(name); flag == nil || flag.Changed {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if flag := cmd.Flags().Lookup(name); flag == nil || flag.Changed {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if flag := cmd.Flags().Lookup(name); flag == nil || flag.Changed {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# keyscore configuration
# Uncomment a value to enable it. CLI flags override config values.

[scoring]
# scale = %.1f            # Metric scale factor
# unplaced = %q     # Unigram policy for unplaced characters (exclude|strict)
# workers = %d              # Layouts scored in parallel by "batch"
# format = %q         # Output format (plain|grid|markdown)
# stretch-pairs = [[5, 7], [4, 2]]  # Lateral stretch column pairs (default: derived from width)

[corpus]
# name = "english"        # Imported corpus used when no corpus flag is given
# dir = "/path/to/csv"    # Or a directory with unigrams.csv, bigrams.csv, trigrams.csv

# [keymap]                # Symbol to code; defaults to a=1 ... z=26
# a = 1
# b = 2

# Template: 0 = open key, -1 = blocked. Finger 0 is not counted by hand balance.
# [geometry.left]
# template = [[0, 0, 0, 0, 0], [0, 0, 0, 0, 0], [0, 0, 0, 0, 0]]
# fingers  = [[0, 1, 2, 3, 4], [0, 1, 2, 3, 4], [0, 1, 2, 3, 4]]
# effort   = [[0.0, 0.0, 0.0, 0.0, 0.0], [0.0, 0.0, 0.0, 0.0, 0.0], [0.0, 0.0, 0.0, 0.0, 0.0]]
# distance = [[0.18, 0.18, 0.18, 0.18, 0.23], [0.0, 0.0, 0.0, 0.0, 0.20], [0.18, 0.18, 0.18, 0.18, 0.30]]
#
# [geometry.right]
# template = [[0, 0, 0, 0, 0], [0, 0, 0, 0, 0], [0, 0, 0, 0, 0]]
# fingers  = [[5, 5, 6, 7, 8], [5, 5, 6, 7, 8], [5, 5, 6, 7, 8]]
# effort   = [[0.0, 0.0, 0.0, 0.0, 0.0], [0.0, 0.0, 0.0, 0.0, 0.0], [0.0, 0.0, 0.0, 0.0, 0.0]]
# distance = [[0.23, 0.18, 0.18, 0.18, 0.18], [0.20, 0.0, 0.0, 0.0, 0.0], [0.30, 0.18, 0.18, 0.18, 0.18]]
`,
		defaultScale,
		defaultUnplaced,
		defaultWorkers,
		defaultFormat,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
