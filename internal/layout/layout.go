// Package layout turns candidate character sequences into placements.
package layout

import (
	"errors"
	"fmt"

	"github.com/verte-zerg/keyscore/internal/model"
)

var (
	// ErrShapeMismatch is returned when the template, finger and effort
	// matrices do not share one shape.
	ErrShapeMismatch = errors.New("geometry shape mismatch")
	// ErrDuplicateCode is returned when a candidate places a code twice.
	ErrDuplicateCode = errors.New("duplicate character code")
)

// Result is a materialized candidate layout.
type Result struct {
	// Layout has the template's shape; slots hold a code or 0.
	Layout    [][]int
	Placement model.Placement
}

// OpenSlots lists the open template slots in row-major order.
func OpenSlots(template [][]int) []model.Slot {
	var slots []model.Slot
	for r, row := range template {
		for c, v := range row {
			if v == 0 {
				slots = append(slots, model.Slot{Row: r, Col: c})
			}
		}
	}
	return slots
}

// Apply fills the open slots of a template with the non-zero entries of
// seq, in order. Zero entries do not consume a slot. Entries beyond the
// last open slot are dropped and unfilled slots stay 0. Blocked slots
// are 0 in the output.
func Apply(seq []model.Code, template [][]int) [][]int {
	out, _ := assign(seq, template)
	return out
}

// Build materializes a candidate sequence against a full-width hand.
func Build(seq []model.Code, hand model.Hand) (Result, error) {
	if err := checkShape(hand); err != nil {
		return Result{}, err
	}
	grid, slots := assign(seq, hand.Template)
	placement := make(model.Placement, len(slots))
	for _, s := range slots {
		code := model.Code(grid[s.Row][s.Col])
		if _, ok := placement[code]; ok {
			return Result{}, fmt.Errorf("%w: %d", ErrDuplicateCode, code)
		}
		placement[code] = model.Key{
			Row:    s.Row,
			Col:    s.Col,
			Finger: hand.Fingers[s.Row][s.Col],
			Weight: hand.Effort[s.Row][s.Col],
		}
	}
	return Result{Layout: grid, Placement: placement}, nil
}

// Usage derives the placement used by the hand-balance metric: each
// placed character keeps its position and finger, and its weight becomes
// its share of the total unigram frequency of placed characters.
func Usage(p model.Placement, unigrams []model.Unigram) model.Placement {
	freq := make(map[model.Code]float64, len(unigrams))
	total := 0.0
	for _, u := range unigrams {
		if _, ok := p[u.Code]; !ok {
			continue
		}
		freq[u.Code] += u.Freq
		total += u.Freq
	}
	out := make(model.Placement, len(p))
	for code, key := range p {
		key.Weight = 0
		if total > 0 {
			key.Weight = freq[code] / total
		}
		out[code] = key
	}
	return out
}

// assign returns the filled grid and the slots that received a code.
func assign(seq []model.Code, template [][]int) ([][]int, []model.Slot) {
	grid := make([][]int, len(template))
	for r, row := range template {
		grid[r] = make([]int, len(row))
	}
	open := OpenSlots(template)
	next := 0
	for _, code := range seq {
		if code == 0 {
			continue
		}
		if next >= len(open) {
			break
		}
		s := open[next]
		grid[s.Row][s.Col] = int(code)
		next++
	}
	return grid, open[:next]
}

func checkShape(hand model.Hand) error {
	if len(hand.Fingers) != len(hand.Template) || len(hand.Effort) != len(hand.Template) {
		return fmt.Errorf("%w: %d template rows, %d finger rows, %d effort rows",
			ErrShapeMismatch, len(hand.Template), len(hand.Fingers), len(hand.Effort))
	}
	for r, row := range hand.Template {
		if len(hand.Fingers[r]) != len(row) || len(hand.Effort[r]) != len(row) {
			return fmt.Errorf("%w: row %d", ErrShapeMismatch, r)
		}
	}
	return nil
}
