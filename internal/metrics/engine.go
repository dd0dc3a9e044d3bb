package metrics

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/verte-zerg/keyscore/internal/layout"
	"github.com/verte-zerg/keyscore/internal/model"
)

// Metric names, in report order.
const (
	NameSameFinger     = "sfb"
	NameLateralStretch = "lsb"
	NameScissors       = "scissors"
	NameUnigramEffort  = "effort"
	NameHandBalance    = "balance"
)

// Titles maps metric names to display titles.
var Titles = map[string]string{
	NameSameFinger:     "Same-finger bigrams",
	NameLateralStretch: "Lateral stretch bigrams",
	NameScissors:       "Scissors",
	NameUnigramEffort:  "Unigram effort",
	NameHandBalance:    "Hand balance",
}

// Score is one named metric result.
type Score struct {
	Name  string
	Value float64
}

// Report holds the metric results for one layout.
type Report struct {
	Sequence []model.Code
	Layout   [][]int
	Scores   []Score
}

// Value returns the score of a metric by name.
func (r Report) Value(name string) (float64, bool) {
	for _, s := range r.Scores {
		if s.Name == name {
			return s.Value, true
		}
	}
	return 0, false
}

// Engine evaluates all metrics with shared settings. The zero value is
// not usable; start from NewEngine.
type Engine struct {
	Scale  float64
	Policy model.UnplacedPolicy
	// StretchPairs overrides the center pairs derived from layout width.
	StretchPairs []ColumnPair
}

// NewEngine returns an engine with the default scale and the exclude policy.
func NewEngine() Engine {
	return Engine{Scale: DefaultScale, Policy: model.Exclude}
}

// Evaluate scores one placement built on hand.
func (e Engine) Evaluate(p model.Placement, hand model.Hand, corpus model.Corpus) (Report, error) {
	pairs := e.StretchPairs
	if len(pairs) == 0 {
		pairs = CenterPairs(hand.Width())
	}
	effort, err := unigramEffort(corpus.Unigrams, p, e.Policy, e.Scale)
	if err != nil {
		return Report{}, err
	}
	usage := layout.Usage(p, corpus.Unigrams)
	return Report{
		Scores: []Score{
			{Name: NameSameFinger, Value: accumulatePairs(corpus.Bigrams, p, sameFinger).score(e.Scale)},
			{Name: NameLateralStretch, Value: accumulatePairs(corpus.Bigrams, p, stretch(pairs)).score(e.Scale)},
			{Name: NameScissors, Value: accumulatePairs(corpus.Bigrams, p, scissor).score(e.Scale)},
			{Name: NameUnigramEffort, Value: effort},
			{Name: NameHandBalance, Value: handBalance(usage, hand.Fingers, e.Scale)},
		},
	}, nil
}

// ScoreSequence builds a candidate sequence on hand and scores it.
func (e Engine) ScoreSequence(seq []model.Code, hand model.Hand, corpus model.Corpus) (Report, error) {
	res, err := layout.Build(seq, hand)
	if err != nil {
		return Report{}, err
	}
	report, err := e.Evaluate(res.Placement, hand, corpus)
	if err != nil {
		return Report{}, err
	}
	report.Sequence = seq
	report.Layout = res.Layout
	return report, nil
}

// ScoreAll scores candidate sequences on up to workers goroutines. The
// corpus and hand are shared read-only. Reports keep the input order.
func (e Engine) ScoreAll(ctx context.Context, seqs [][]model.Code, hand model.Hand, corpus model.Corpus, workers int) ([]Report, error) {
	reports := make([]Report, len(seqs))
	g, gctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, seq := range seqs {
		i, seq := i, seq
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			report, err := e.ScoreSequence(seq, hand, corpus)
			if err != nil {
				return fmt.Errorf("layout %d: %w", i+1, err)
			}
			reports[i] = report
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
