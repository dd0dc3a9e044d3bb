package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/verte-zerg/keyscore/internal/model"
)

// ErrConfig marks invalid configuration.
var ErrConfig = errors.New("invalid configuration")

// Validate checks that both hands are rectangular, that each hand's four
// matrices share one shape, that the hands have equal shapes, and that
// no finger id is used on both hands.
func Validate(g model.Geometry) error {
	if err := validateHand("left", g.Left); err != nil {
		return err
	}
	if err := validateHand("right", g.Right); err != nil {
		return err
	}
	if g.Left.Rows() != g.Right.Rows() || g.Left.Width() != g.Right.Width() {
		return fmt.Errorf("%w: left hand is %dx%d but right hand is %dx%d", ErrConfig,
			g.Left.Rows(), g.Left.Width(), g.Right.Rows(), g.Right.Width())
	}
	left := fingerSet(g.Left.Fingers)
	for f := range fingerSet(g.Right.Fingers) {
		if _, ok := left[f]; ok {
			return fmt.Errorf("%w: finger %d is used on both hands", ErrConfig, f)
		}
	}
	return nil
}

func validateHand(name string, h model.Hand) error {
	rows, width := h.Rows(), h.Width()
	if rows == 0 || width == 0 {
		return fmt.Errorf("%w: %s template is empty", ErrConfig, name)
	}
	if err := checkMatrix(name, "template", h.Template, rows, width); err != nil {
		return err
	}
	if err := checkMatrix(name, "fingers", h.Fingers, rows, width); err != nil {
		return err
	}
	if err := checkMatrix(name, "effort", h.Effort, rows, width); err != nil {
		return err
	}
	if h.Distance != nil {
		if err := checkMatrix(name, "distance", h.Distance, rows, width); err != nil {
			return err
		}
	}
	for r, row := range h.Effort {
		for c, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
				return fmt.Errorf("%w: %s effort[%d][%d] = %v", ErrConfig, name, r, c, v)
			}
		}
	}
	return nil
}

func checkMatrix[T any](hand, matrix string, m [][]T, rows, width int) error {
	if len(m) != rows {
		return fmt.Errorf("%w: %s %s has %d rows, want %d", ErrConfig, hand, matrix, len(m), rows)
	}
	for r, row := range m {
		if len(row) != width {
			return fmt.Errorf("%w: %s %s row %d has %d columns, want %d", ErrConfig, hand, matrix, r, len(row), width)
		}
	}
	return nil
}

func fingerSet(m [][]int) map[int]struct{} {
	set := map[int]struct{}{}
	for _, row := range m {
		for _, f := range row {
			if f != 0 {
				set[f] = struct{}{}
			}
		}
	}
	return set
}
