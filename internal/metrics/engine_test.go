package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/verte-zerg/keyscore/internal/layout"
	"github.com/verte-zerg/keyscore/internal/model"
)

func testHand() model.Hand {
	hand := model.DefaultGeometry().Combined()
	for r := range hand.Effort {
		for c := range hand.Effort[r] {
			hand.Effort[r][c] = 0.1
		}
	}
	return hand
}

func TestEngineScoreSequence(t *testing.T) {
	hand := testHand()
	// Codes 1 and 11 share column 0 (finger 0); 2 and 22 are rows 0 and 2
	// on columns 1 and 2.
	seq := make([]model.Code, 30)
	for i := range seq {
		seq[i] = model.Code(i + 1)
	}
	corpus := model.Corpus{
		Unigrams: []model.Unigram{{Code: 1, Freq: 1}, {Code: 30, Freq: 1}},
		Bigrams: []model.Bigram{
			{A: 1, B: 11, Freq: 10},
			{A: 2, B: 23, Freq: 5},
			{A: 99, B: 1, Freq: 1000},
		},
	}
	report, err := NewEngine().ScoreSequence(seq, hand, corpus)
	if err != nil {
		t.Fatalf("ScoreSequence failed: %v", err)
	}
	if len(report.Scores) != 5 {
		t.Fatalf("expected 5 scores, got %d", len(report.Scores))
	}
	if got, _ := report.Value(NameSameFinger); !almostEqual(got, 1100) {
		t.Fatalf("expected sfb 1100, got %v", got)
	}
	if got, _ := report.Value(NameScissors); !almostEqual(got, 550) {
		t.Fatalf("expected scissors 550, got %v", got)
	}
	if got, _ := report.Value(NameUnigramEffort); !almostEqual(got, 20) {
		t.Fatalf("expected effort 20, got %v", got)
	}
	// Code 1 sits on finger 0, so only code 30 is counted, on the right.
	if got, _ := report.Value(NameHandBalance); !almostEqual(got, 50) {
		t.Fatalf("expected balance 50, got %v", got)
	}
	if report.Layout[0][0] != 1 || report.Layout[2][9] != 30 {
		t.Fatalf("unexpected layout: %v", report.Layout)
	}
}

func TestEngineStrictPolicy(t *testing.T) {
	engine := NewEngine()
	engine.Policy = model.Strict
	corpus := model.Corpus{Unigrams: []model.Unigram{{Code: 42, Freq: 1}}}
	_, err := engine.ScoreSequence([]model.Code{1}, testHand(), corpus)
	if !errors.Is(err, ErrUnplaced) {
		t.Fatalf("expected ErrUnplaced, got %v", err)
	}
}

func TestEngineScaleAndStretchOverride(t *testing.T) {
	engine := NewEngine()
	engine.Scale = 1
	engine.StretchPairs = []ColumnPair{{A: 0, B: 1}}
	res, err := layout.Build([]model.Code{1, 2}, testHand())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	report, err := engine.Evaluate(res.Placement, testHand(), model.Corpus{
		Bigrams: []model.Bigram{{A: 1, B: 2, Freq: 2}},
	})
	if err != nil {
		t.Fatalf("Evaluate failed: %v", err)
	}
	if got, _ := report.Value(NameLateralStretch); !almostEqual(got, 2.2) {
		t.Fatalf("expected lsb 2.2, got %v", got)
	}
}

func TestEngineScoreAllKeepsOrder(t *testing.T) {
	seqs := [][]model.Code{
		{1, 2},
		{2, 1},
		{1, 0, 2},
	}
	corpus := model.Corpus{Unigrams: []model.Unigram{{Code: 1, Freq: 1}}}
	reports, err := NewEngine().ScoreAll(context.Background(), seqs, testHand(), corpus, 2)
	if err != nil {
		t.Fatalf("ScoreAll failed: %v", err)
	}
	if len(reports) != len(seqs) {
		t.Fatalf("expected %d reports, got %d", len(seqs), len(reports))
	}
	if reports[0].Layout[0][0] != 1 || reports[1].Layout[0][0] != 2 || reports[2].Layout[0][1] != 2 {
		t.Fatalf("reports out of order")
	}
}

func TestEngineScoreAllReportsBuildErrors(t *testing.T) {
	seqs := [][]model.Code{{1, 2}, {3, 3}}
	_, err := NewEngine().ScoreAll(context.Background(), seqs, testHand(), model.Corpus{}, 1)
	if !errors.Is(err, layout.ErrDuplicateCode) {
		t.Fatalf("expected ErrDuplicateCode, got %v", err)
	}
}

func TestEngineScoreAllCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewEngine().ScoreAll(ctx, [][]model.Code{{1}}, testHand(), model.Corpus{}, 1)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}
