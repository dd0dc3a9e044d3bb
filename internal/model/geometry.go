package model

// Hand holds the per-key matrices of one keyboard half. All four
// matrices share the same shape.
type Hand struct {
	Template [][]int
	Fingers  [][]int
	Effort   [][]float64
	// Distance is carried for display only; no metric reads it.
	Distance [][]float64
}

// Geometry is a split keyboard described by its two halves.
type Geometry struct {
	Left  Hand
	Right Hand
}

// Combined joins the halves row by row into one full-width hand.
func (g Geometry) Combined() Hand {
	return Hand{
		Template: CombineRows(g.Left.Template, g.Right.Template),
		Fingers:  CombineRows(g.Left.Fingers, g.Right.Fingers),
		Effort:   CombineRows(g.Left.Effort, g.Right.Effort),
		Distance: CombineRows(g.Left.Distance, g.Right.Distance),
	}
}

// Rows returns the row count of the template.
func (h Hand) Rows() int {
	return len(h.Template)
}

// Width returns the width of the first template row.
func (h Hand) Width() int {
	if len(h.Template) == 0 {
		return 0
	}
	return len(h.Template[0])
}

// DefaultGeometry returns a 3x5-per-hand keyboard with every key open,
// zero effort and the classic column finger assignment.
func DefaultGeometry() Geometry {
	return Geometry{
		Left: Hand{
			Template: [][]int{
				{0, 0, 0, 0, 0},
				{0, 0, 0, 0, 0},
				{0, 0, 0, 0, 0},
			},
			Fingers: [][]int{
				{0, 1, 2, 3, 4},
				{0, 1, 2, 3, 4},
				{0, 1, 2, 3, 4},
			},
			Effort: [][]float64{
				{0, 0, 0, 0, 0},
				{0, 0, 0, 0, 0},
				{0, 0, 0, 0, 0},
			},
			Distance: [][]float64{
				{0.18, 0.18, 0.18, 0.18, 0.23},
				{0.00, 0.00, 0.00, 0.00, 0.20},
				{0.18, 0.18, 0.18, 0.18, 0.30},
			},
		},
		Right: Hand{
			Template: [][]int{
				{0, 0, 0, 0, 0},
				{0, 0, 0, 0, 0},
				{0, 0, 0, 0, 0},
			},
			Fingers: [][]int{
				{5, 5, 6, 7, 8},
				{5, 5, 6, 7, 8},
				{5, 5, 6, 7, 8},
			},
			Effort: [][]float64{
				{0, 0, 0, 0, 0},
				{0, 0, 0, 0, 0},
				{0, 0, 0, 0, 0},
			},
			Distance: [][]float64{
				{0.23, 0.18, 0.18, 0.18, 0.18},
				{0.20, 0.00, 0.00, 0.00, 0.00},
				{0.30, 0.18, 0.18, 0.18, 0.18},
			},
		},
	}
}

// CombineRows concatenates two matrices row by row. Extra rows of the
// taller matrix are dropped.
func CombineRows[T any](left, right [][]T) [][]T {
	n := len(left)
	if len(right) < n {
		n = len(right)
	}
	out := make([][]T, n)
	for i := 0; i < n; i++ {
		row := make([]T, 0, len(left[i])+len(right[i]))
		row = append(row, left[i]...)
		row = append(row, right[i]...)
		out[i] = row
	}
	return out
}
