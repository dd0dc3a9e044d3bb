package layout

import (
	"errors"
	"math"
	"testing"

	"github.com/verte-zerg/keyscore/internal/model"
)

func threeSlotHand() model.Hand {
	return model.Hand{
		Template: [][]int{{0, model.Blocked, 0, 0}},
		Fingers:  [][]int{{1, 2, 3, 4}},
		Effort:   [][]float64{{0.1, 0.9, 0.2, 0.3}},
	}
}

func TestApplySkipsZerosWithoutConsumingSlots(t *testing.T) {
	hand := threeSlotHand()
	got := Apply([]model.Code{0, 5, 0, 7}, hand.Template)
	want := []int{5, 0, 7, 0}
	if len(got) != 1 || len(got[0]) != len(want) {
		t.Fatalf("unexpected shape: %v", got)
	}
	for i, v := range want {
		if got[0][i] != v {
			t.Fatalf("expected %v, got %v", want, got[0])
		}
	}
}

func TestApplyDropsExcessEntries(t *testing.T) {
	got := Apply([]model.Code{1, 2, 3, 4, 5}, threeSlotHand().Template)
	want := []int{1, 0, 2, 3}
	for i, v := range want {
		if got[0][i] != v {
			t.Fatalf("expected %v, got %v", want, got[0])
		}
	}
}

func TestApplyDoesNotModifyTemplate(t *testing.T) {
	hand := threeSlotHand()
	Apply([]model.Code{9}, hand.Template)
	if hand.Template[0][0] != 0 || hand.Template[0][1] != model.Blocked {
		t.Fatalf("template was modified: %v", hand.Template)
	}
}

func TestBuildRecordsSlotAttributes(t *testing.T) {
	res, err := Build([]model.Code{0, 5, 0, 7}, threeSlotHand())
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(res.Placement) != 2 {
		t.Fatalf("expected 2 placed codes, got %d", len(res.Placement))
	}
	k5, ok := res.Placement.Get(5)
	if !ok || k5.Row != 0 || k5.Col != 0 || k5.Finger != 1 || k5.Weight != 0.1 {
		t.Fatalf("unexpected key for 5: %+v", k5)
	}
	k7, ok := res.Placement.Get(7)
	if !ok || k7.Col != 2 || k7.Finger != 3 || k7.Weight != 0.2 {
		t.Fatalf("unexpected key for 7: %+v", k7)
	}
	if _, ok := res.Placement.Get(0); ok {
		t.Fatalf("code 0 must never be placed")
	}
}

func TestBuildRejectsDuplicateCodes(t *testing.T) {
	_, err := Build([]model.Code{4, 4}, threeSlotHand())
	if !errors.Is(err, ErrDuplicateCode) {
		t.Fatalf("expected ErrDuplicateCode, got %v", err)
	}
}

func TestBuildIgnoresDuplicatesBeyondOpenSlots(t *testing.T) {
	if _, err := Build([]model.Code{1, 2, 3, 1}, threeSlotHand()); err != nil {
		t.Fatalf("dropped entries must not be validated: %v", err)
	}
}

func TestBuildRejectsShapeMismatch(t *testing.T) {
	hand := threeSlotHand()
	hand.Effort = [][]float64{{0.1, 0.2}}
	if _, err := Build([]model.Code{1}, hand); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected ErrShapeMismatch, got %v", err)
	}
}

func TestBuildDefaultGeometry(t *testing.T) {
	hand := model.DefaultGeometry().Combined()
	seq := make([]model.Code, 26)
	for i := range seq {
		seq[i] = model.Code(i + 1)
	}
	res, err := Build(seq, hand)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(res.Placement) != 26 {
		t.Fatalf("unexpected placement size %d", len(res.Placement))
	}
	k, _ := res.Placement.Get(11)
	if k.Row != 1 || k.Col != 0 || k.Finger != 0 {
		t.Fatalf("unexpected key for 11: %+v", k)
	}
	k, _ = res.Placement.Get(16)
	if k.Row != 1 || k.Col != 5 || k.Finger != 5 {
		t.Fatalf("unexpected key for 16: %+v", k)
	}
}

func TestUsageNormalizesPlacedFrequencies(t *testing.T) {
	p := model.Placement{
		1: {Row: 0, Col: 0, Finger: 1, Weight: 0.5},
		2: {Row: 0, Col: 1, Finger: 2, Weight: 0.5},
	}
	usage := Usage(p, []model.Unigram{
		{Code: 1, Freq: 30},
		{Code: 2, Freq: 10},
		{Code: 9, Freq: 1000},
	})
	if math.Abs(usage[1].Weight-0.75) > 1e-9 || math.Abs(usage[2].Weight-0.25) > 1e-9 {
		t.Fatalf("unexpected usage weights: %+v", usage)
	}
	if usage[1].Finger != 1 || p[1].Weight != 0.5 {
		t.Fatalf("usage must copy keys without touching the source")
	}
}
