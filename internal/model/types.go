// Package model defines shared data structures.
package model

// Code identifies one character. Zero means "no assignment".
type Code int

// Blocked marks a template slot that can never hold a character.
// Any non-zero template value is treated as blocked.
const Blocked = -1

// Slot is a (row, column) position in a geometry matrix.
type Slot struct {
	Row int
	Col int
}

// Key is the placement record of one character.
//
// Weight holds the slot's effort weight. For the hand-balance metric the
// same field carries the character's usage weight instead.
type Key struct {
	Row    int
	Col    int
	Finger int
	Weight float64
}

// Placement maps a character code to its key. It is built once per
// candidate layout and not modified afterwards.
type Placement map[Code]Key

// Get returns the key of a code and whether the code is placed.
func (p Placement) Get(code Code) (Key, bool) {
	k, ok := p[code]
	return k, ok
}

// Unigram is a single-character frequency record.
type Unigram struct {
	Code Code
	Freq float64
}

// Bigram is an ordered character pair frequency record.
type Bigram struct {
	A    Code
	B    Code
	Freq float64
}

// Trigram is an ordered character triple frequency record.
type Trigram struct {
	A    Code
	B    Code
	C    Code
	Freq float64
}

// Corpus groups the frequency tables of one text source.
type Corpus struct {
	Name     string
	Unigrams []Unigram
	Bigrams  []Bigram
	Trigrams []Trigram
}

// UnplacedPolicy selects how unigram effort treats codes without a key.
type UnplacedPolicy int

const (
	// Exclude skips unplaced codes, like the bigram metrics do.
	Exclude UnplacedPolicy = iota
	// Strict fails on the first unplaced code.
	Strict
)

// String implements fmt.Stringer.
func (p UnplacedPolicy) String() string {
	switch p {
	case Strict:
		return "strict"
	default:
		return "exclude"
	}
}
