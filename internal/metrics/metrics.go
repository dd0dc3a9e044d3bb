// Package metrics scores placements for ergonomic cost.
//
// Every metric is a pure function of its inputs. Records that reference a
// character without a key contribute nothing.
package metrics

import (
	"errors"
	"fmt"
	"math"

	"github.com/verte-zerg/keyscore/internal/model"
)

// DefaultScale multiplies every raw metric total.
const DefaultScale = 100.0

// ErrUnplaced is returned by strict unigram effort for a code without a key.
var ErrUnplaced = errors.New("character has no placement")

// ColumnPair is two columns that form a lateral stretch when typed in
// sequence, in either order.
type ColumnPair struct {
	A int
	B int
}

// CenterPairs returns the stretch pairs next to the center split of a
// layout of the given width: each innermost column paired with the
// column two further out on the opposite side of it.
func CenterPairs(width int) []ColumnPair {
	half := width / 2
	centers := [2]int{half, half - 1}
	pairs := make([]ColumnPair, 0, len(centers))
	for i, c3 := range centers {
		pairs = append(pairs, ColumnPair{A: c3, B: c3 + (2 - 4*i)})
	}
	return pairs
}

type trigger func(a, b model.Key) bool

type pairTotals struct {
	freq   float64
	effort float64
}

func (t pairTotals) score(scale float64) float64 {
	return t.freq*scale + t.effort*scale
}

func accumulatePairs(bigrams []model.Bigram, p model.Placement, match trigger) pairTotals {
	var t pairTotals
	for _, bg := range bigrams {
		a, ok := p.Get(bg.A)
		if !ok {
			continue
		}
		b, ok := p.Get(bg.B)
		if !ok {
			continue
		}
		if !match(a, b) {
			continue
		}
		t.freq += bg.Freq
		t.effort += ((a.Weight + b.Weight) / 2) * bg.Freq
	}
	return t
}

func sameFinger(a, b model.Key) bool {
	return a.Finger == b.Finger
}

func scissor(a, b model.Key) bool {
	return absInt(a.Row-b.Row) == 2 && absInt(a.Col-b.Col) == 1 && a.Finger != b.Finger
}

func stretch(pairs []ColumnPair) trigger {
	return func(a, b model.Key) bool {
		for _, pr := range pairs {
			if (a.Col == pr.A && b.Col == pr.B) || (b.Col == pr.A && a.Col == pr.B) {
				return true
			}
		}
		return false
	}
}

// SameFinger scores bigrams typed twice in a row by one finger.
func SameFinger(bigrams []model.Bigram, p model.Placement) float64 {
	return accumulatePairs(bigrams, p, sameFinger).score(DefaultScale)
}

// LateralStretch scores bigrams that stretch across the given column
// pairs. Only columns are compared, rows are ignored.
func LateralStretch(bigrams []model.Bigram, p model.Placement, pairs []ColumnPair) float64 {
	return accumulatePairs(bigrams, p, stretch(pairs)).score(DefaultScale)
}

// Scissors scores bigrams two rows apart on adjacent columns typed by
// different fingers.
func Scissors(bigrams []model.Bigram, p model.Placement) float64 {
	return accumulatePairs(bigrams, p, scissor).score(DefaultScale)
}

// UnigramEffort sums frequency times effort weight over placed characters.
func UnigramEffort(unigrams []model.Unigram, p model.Placement, policy model.UnplacedPolicy) (float64, error) {
	return unigramEffort(unigrams, p, policy, DefaultScale)
}

func unigramEffort(unigrams []model.Unigram, p model.Placement, policy model.UnplacedPolicy, scale float64) (float64, error) {
	sum := 0.0
	for _, u := range unigrams {
		k, ok := p.Get(u.Code)
		if !ok {
			if policy == model.Strict {
				return 0, fmt.Errorf("%w: code %d", ErrUnplaced, u.Code)
			}
			continue
		}
		sum += u.Freq * k.Weight
	}
	return sum * scale, nil
}

// HandBalance scores the usage difference between hands. Key weights in
// p are usage weights. A finger belongs to the left hand when it appears
// in the first half of any row of fingerMap and to the right hand when
// it appears in the second half. Finger 0 belongs to neither.
func HandBalance(p model.Placement, fingerMap [][]int) float64 {
	return handBalance(p, fingerMap, DefaultScale)
}

func handBalance(p model.Placement, fingerMap [][]int, scale float64) float64 {
	left, right := HandFingers(fingerMap)
	var leftUsage, rightUsage float64
	for _, k := range p {
		if _, ok := left[k.Finger]; ok {
			leftUsage += k.Weight
		} else if _, ok := right[k.Finger]; ok {
			rightUsage += k.Weight
		}
	}
	return math.Abs(leftUsage-rightUsage) * scale
}

// HandFingers splits the finger ids of a full-width finger matrix into
// left and right sets by column half.
func HandFingers(fingerMap [][]int) (left, right map[int]struct{}) {
	left = map[int]struct{}{}
	right = map[int]struct{}{}
	for _, row := range fingerMap {
		half := len(row) / 2
		for c, f := range row {
			if f == 0 {
				continue
			}
			if c < half {
				left[f] = struct{}{}
			} else {
				right[f] = struct{}{}
			}
		}
	}
	return left, right
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
